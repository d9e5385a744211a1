// Package database provides connection setup for MariaDB and Redis.
// This file validates migration SQL files to catch schema mistakes early.
package database

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

// migrationsDir returns the absolute path to db/migrations/ from the project root.
func migrationsDir(t *testing.T) string {
	t.Helper()
	_, thisFile, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("cannot determine test file path")
	}
	// thisFile is internal/database/migrate_test.go, project root is two dirs up.
	projectRoot := filepath.Join(filepath.Dir(thisFile), "..", "..")
	dir := filepath.Join(projectRoot, "db", "migrations")
	if _, err := os.Stat(dir); err != nil {
		t.Fatalf("migrations directory not found at %s: %v", dir, err)
	}
	return dir
}

// TestMigrations_UpDownPairs verifies every .up.sql migration has a matching
// .down.sql. golang-migrate refuses to roll back past an unpaired version,
// which turns a bad deploy into a manual recovery.
func TestMigrations_UpDownPairs(t *testing.T) {
	dir := migrationsDir(t)
	ups, err := filepath.Glob(filepath.Join(dir, "*.up.sql"))
	if err != nil {
		t.Fatalf("globbing migration files: %v", err)
	}
	if len(ups) == 0 {
		t.Fatal("no .up.sql migrations found")
	}

	for _, up := range ups {
		down := strings.TrimSuffix(up, ".up.sql") + ".down.sql"
		if _, err := os.Stat(down); err != nil {
			t.Errorf("missing down migration for %s", filepath.Base(up))
		}
	}
}

// TestMigrations_VersionColumnNeverClientWritten scans migrations for the
// songs.version column definition. The column must carry a default so the
// store fully owns it; an INSERT listing version explicitly would let a
// client smuggle in a starting value.
func TestMigrations_VersionColumnNeverClientWritten(t *testing.T) {
	dir := migrationsDir(t)
	ups, err := filepath.Glob(filepath.Join(dir, "*.up.sql"))
	if err != nil {
		t.Fatalf("globbing migration files: %v", err)
	}

	var found bool
	for _, up := range ups {
		data, err := os.ReadFile(up)
		if err != nil {
			t.Fatalf("reading %s: %v", up, err)
		}
		content := strings.ToLower(string(data))
		if strings.Contains(content, "version") && strings.Contains(content, "create table songs") {
			found = true
			if !strings.Contains(content, "version") || !strings.Contains(content, "default 0") {
				t.Errorf("%s: songs.version must default to 0", filepath.Base(up))
			}
		}
	}
	if !found {
		t.Error("no migration defines the songs table with a version column")
	}
}
