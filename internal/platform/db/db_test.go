package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRebind(t *testing.T) {
	q := "INSERT INTO t (a, b) VALUES (?, ?)"
	assert.Equal(t, q, SQLite.Rebind(q))
	assert.Equal(t, "INSERT INTO t (a, b) VALUES ($1, $2)", Postgres.Rebind(q))
}

func TestOpenFromEnvFallsBackToSQLite(t *testing.T) {
	conn, dialect, err := OpenFromEnv("  ", ":memory:")
	require.NoError(t, err)
	defer conn.Close()

	assert.Equal(t, SQLite, dialect)
	var one int
	require.NoError(t, conn.QueryRow("SELECT 1").Scan(&one))
	assert.Equal(t, 1, one)
}
