package db

import (
	"path/filepath"
	"testing"
)

func TestOpenMemory(t *testing.T) {
	d, err := OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory() error: %v", err)
	}
	defer d.Close()

	var count int
	if err := d.QueryRow("SELECT COUNT(*) FROM snapshot_entries").Scan(&count); err != nil {
		t.Errorf("table snapshot_entries: %v", err)
	}
}

func TestMigrateIdempotent(t *testing.T) {
	d, err := OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory() error: %v", err)
	}
	defer d.Close()

	// Running migrate again should not fail.
	if err := d.migrate(); err != nil {
		t.Fatalf("second migrate() error: %v", err)
	}
}

func TestOpenDirPersists(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")

	d, err := OpenDir(dir)
	if err != nil {
		t.Fatalf("OpenDir() error: %v", err)
	}
	if d.Path() != filepath.Join(dir, FileName) {
		t.Errorf("Path() = %q", d.Path())
	}
	if _, err := d.Exec(`INSERT INTO snapshot_entries (key, value) VALUES ('k', 'v')`); err != nil {
		t.Fatalf("insert: %v", err)
	}
	d.Close()

	d, err = OpenDir(dir)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer d.Close()

	var v string
	if err := d.QueryRow(`SELECT value FROM snapshot_entries WHERE key = 'k'`).Scan(&v); err != nil {
		t.Fatalf("select: %v", err)
	}
	if v != "v" {
		t.Errorf("value = %q, want v", v)
	}
}
