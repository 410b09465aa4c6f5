package migrate

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

var (
	sqlFileRe = regexp.MustCompile(`^(\d{14})_[a-z0-9_]+\.sql$`)
)

// ValidateDir checks every dialect directory under root: filenames, goose
// headers, and that each migration version exists for every dialect.
func ValidateDir(root string) error {
	if root == "" {
		return fmt.Errorf("dir is required")
	}

	versions := map[string]map[string]string{} // dialect -> version -> filename
	for dialect := range gooseDialects {
		seen, err := validateDialectDir(filepath.Join(root, dialect))
		if err != nil {
			return err
		}
		versions[dialect] = seen
	}

	dialects := make([]string, 0, len(versions))
	for d := range versions {
		dialects = append(dialects, d)
	}
	sort.Strings(dialects)

	for _, d := range dialects {
		for version, name := range versions[d] {
			for _, other := range dialects {
				if _, ok := versions[other][version]; !ok {
					return fmt.Errorf("migration %q exists for %s but not for %s", name, d, other)
				}
			}
		}
	}
	return nil
}

func validateDialectDir(dir string) (map[string]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dir %q: %w", dir, err)
	}

	seen := map[string]string{}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !strings.HasSuffix(name, ".sql") {
			continue
		}

		m := sqlFileRe.FindStringSubmatch(name)
		if m == nil {
			return nil, fmt.Errorf("invalid migration filename %q (expected YYYYMMDDHHMMSS_name.sql)", name)
		}

		version := m[1]
		if prev, ok := seen[version]; ok {
			return nil, fmt.Errorf("duplicate migration version %s in %q and %q", version, prev, name)
		}
		seen[version] = name

		full := filepath.Join(dir, name)
		b, err := os.ReadFile(full)
		if err != nil {
			return nil, fmt.Errorf("read file %q: %w", full, err)
		}

		txt := string(b)
		if !strings.Contains(txt, "-- +goose Up") {
			return nil, fmt.Errorf("migration %q missing \"-- +goose Up\"", full)
		}
		if !strings.Contains(txt, "-- +goose Down") {
			return nil, fmt.Errorf("migration %q missing \"-- +goose Down\"", full)
		}
	}
	return seen, nil
}
