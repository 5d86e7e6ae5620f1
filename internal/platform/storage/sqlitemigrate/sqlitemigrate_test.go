package sqlitemigrate

import (
	"database/sql"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	_ "modernc.org/sqlite"
)

const sampleMigration = `-- +migrate Up
CREATE TABLE widgets (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL
);

-- +migrate Down
DROP TABLE widgets;
`

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	sqlDB, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })
	return sqlDB
}

func TestApplyMigrationsRunsUpSectionOnce(t *testing.T) {
	sqlDB := openTestDB(t)
	migrationFS := fstest.MapFS{
		"migrations/0001_widgets.sql": &fstest.MapFile{Data: []byte(sampleMigration)},
	}

	if err := ApplyMigrations(sqlDB, migrationFS, "migrations"); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if _, err := sqlDB.Exec("INSERT INTO widgets (id, name) VALUES ('w1', 'widget')"); err != nil {
		t.Fatalf("expected widgets table created: %v", err)
	}

	// Second run must be a no-op, not a table-exists failure.
	if err := ApplyMigrations(sqlDB, migrationFS, "migrations"); err != nil {
		t.Fatalf("reapply: %v", err)
	}

	var count int
	if err := sqlDB.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count); err != nil {
		t.Fatalf("count migrations: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected one recorded migration, got %d", count)
	}
}

func TestApplyMigrationsOrdersFilesLexicographically(t *testing.T) {
	sqlDB := openTestDB(t)
	migrationFS := fstest.MapFS{
		"migrations/0002_rows.sql": &fstest.MapFile{Data: []byte(
			"-- +migrate Up\nINSERT INTO widgets (id, name) VALUES ('w1', 'widget');\n",
		)},
		"migrations/0001_widgets.sql": &fstest.MapFile{Data: []byte(sampleMigration)},
	}

	if err := ApplyMigrations(sqlDB, migrationFS, "migrations"); err != nil {
		t.Fatalf("apply: %v", err)
	}
	var count int
	if err := sqlDB.QueryRow("SELECT COUNT(*) FROM widgets").Scan(&count); err != nil {
		t.Fatalf("count widgets: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected seeded row, got %d", count)
	}
}

func TestExtractUpMigration(t *testing.T) {
	up := ExtractUpMigration(sampleMigration)
	if !strings.Contains(up, "CREATE TABLE widgets") {
		t.Fatalf("expected create statement, got %q", up)
	}
	if strings.Contains(up, "DROP TABLE") {
		t.Fatalf("down section leaked into up SQL: %q", up)
	}

	noMarkers := "CREATE TABLE plain (id TEXT);"
	if got := ExtractUpMigration(noMarkers); got != noMarkers {
		t.Fatalf("expected passthrough for unmarked content, got %q", got)
	}
}

func TestApplyMigrationsRequiresDB(t *testing.T) {
	if err := ApplyMigrations(nil, fstest.MapFS{}, "."); err == nil {
		t.Fatal("expected error for nil db")
	}
}
