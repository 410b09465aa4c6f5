package shopcarts

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/nyudevops/shopcarts/pkg/migrate"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)

	sqlDB, err := conn.DB()
	require.NoError(t, err)
	require.NoError(t, migrate.Run(context.Background(), sqlDB, migrate.Source{Dialect: "sqlite"}, "up"))

	t.Cleanup(func() { _ = sqlDB.Close() })
	return conn
}

func ptr[T any](v T) *T {
	return &v
}
