// Package storetest opens migrated in-memory databases for tests.
package storetest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/schema"
	pkgdb "github.com/Skotchmaster/storefront/pkg/db"
)

func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := pkgdb.Open(context.Background(), pkgdb.DriverSQLite, ":memory:")
	require.NoError(t, err)
	require.NoError(t, schema.Migrate(db))

	t.Cleanup(func() { _ = pkgdb.Close(db) })
	return db
}
