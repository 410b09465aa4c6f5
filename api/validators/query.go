package validators

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	pkgerrors "github.com/nyudevops/shopcarts/pkg/errors"
)

const maxQueryStringLen = 255

// OptionalQueryInt returns nil when key is absent.
func OptionalQueryInt(r *http.Request, key string) (*int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return nil, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "query parameter must be an integer").WithDetails(map[string]any{"field": key})
	}
	return &value, nil
}

func OptionalQueryFloat(r *http.Request, key string) (*float64, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return nil, nil
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "query parameter must be numeric").WithDetails(map[string]any{"field": key})
	}
	return &value, nil
}

func OptionalQueryString(r *http.Request, key string) *string {
	if !r.URL.Query().Has(key) {
		return nil
	}
	value := SanitizeString(r.URL.Query().Get(key), maxQueryStringLen)
	if value == "" {
		return nil
	}
	return &value
}

// PathInt parses an integer route parameter. A malformed id cannot name a
// resource, so it is reported as not found.
func PathInt(r *http.Request, key string) (int, error) {
	raw := chi.URLParam(r, key)
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, pkgerrors.New(pkgerrors.CodeNotFound, "resource not found").WithDetails(map[string]any{"field": key})
	}
	return value, nil
}
