package db

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_SQLiteInMemory(t *testing.T) {
	db, err := Open(context.Background(), DriverSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = Close(db) })

	var one int
	require.NoError(t, db.Raw("SELECT 1").Scan(&one).Error)
	assert.Equal(t, 1, one)
}

func TestOpen_Errors(t *testing.T) {
	_, err := Open(context.Background(), DriverSQLite, "")
	require.Error(t, err)

	_, err = Open(context.Background(), "mysql", "dsn")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported")
}
