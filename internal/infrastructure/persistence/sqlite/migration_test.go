package sqlite

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigration_NewDatabase(t *testing.T) {
	ctx := context.Background()
	db, err := sql.Open("sqlite3", filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	defer db.Close()

	migrator := NewMigrator(db)
	require.NoError(t, migrator.Migrate(ctx))

	version, err := migrator.Version(ctx)
	require.NoError(t, err)
	assert.Equal(t, schemaVersion, version)

	for _, table := range []string{"work_items", "epic_subtasks", "view_history"} {
		var name string
		err := db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		require.NoError(t, err, "table %s should exist", table)
	}
}

func TestMigration_Idempotent(t *testing.T) {
	ctx := context.Background()
	db, err := sql.Open("sqlite3", filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	defer db.Close()

	migrator := NewMigrator(db)
	require.NoError(t, migrator.Migrate(ctx))
	require.NoError(t, migrator.Migrate(ctx))

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count))
	assert.Equal(t, 1, count)
}

func TestMigration_EmptyVersion(t *testing.T) {
	ctx := context.Background()
	db, err := sql.Open("sqlite3", filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	defer db.Close()

	migrator := NewMigrator(db)
	require.NoError(t, migrator.ensureMigrationsTable(ctx))

	version, err := migrator.Version(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, version)
}

func TestSplitSQLStatements(t *testing.T) {
	script := "-- comment\nCREATE TABLE a (x INTEGER);\n\nCREATE INDEX i ON a(x);\n"
	stmts := splitSQLStatements(script)
	require.Len(t, stmts, 2)
	assert.Equal(t, "CREATE TABLE a (x INTEGER)", stmts[0])
	assert.Equal(t, "CREATE INDEX i ON a(x)", stmts[1])
}
