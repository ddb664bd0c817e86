// Package testhelper builds farm backup fixtures for tests.
package testhelper

import (
	"archive/zip"
	"bytes"
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite"
)

// DBFileName is the database base name the fixtures use.
const DBFileName = "farm.db"

// Schema DDL of the backup tables, grouped by feature.
const (
	AnimalsDDL = `CREATE TABLE animals (
		id INTEGER PRIMARY KEY, tag TEXT, status TEXT, sex TEXT, role TEXT,
		group_name TEXT, cohort TEXT, photo_path TEXT)`

	FeedDDL = `CREATE TABLE feed_types (id INTEGER PRIMARY KEY, name TEXT NOT NULL, unit TEXT);
		CREATE TABLE feed_usage (
			id INTEGER PRIMARY KEY, date TEXT, group_name TEXT, feed_type_id INTEGER,
			amount REAL, unit TEXT, unit_cost REAL)`

	StoragesDDL = `CREATE TABLE storages (id INTEGER PRIMARY KEY, name TEXT NOT NULL)`

	PooledDDL = `CREATE TABLE inventory_pools (id INTEGER PRIMARY KEY, storage_id INTEGER, feed_type_id INTEGER);
		CREATE TABLE inventory_pool_transactions (id INTEGER PRIMARY KEY, pool_id INTEGER, kind TEXT, quantity REAL)`

	LegacyDDL = `CREATE TABLE inventory_lots (id INTEGER PRIMARY KEY, storage_id INTEGER, feed_type_id INTEGER);
		CREATE TABLE inventory_lot_transactions (id INTEGER PRIMARY KEY, lot_id INTEGER, kind TEXT, quantity REAL)`

	BreedingDDL = `CREATE TABLE breeding_sessions (
			id INTEGER PRIMARY KEY, group_name TEXT, start_date TEXT, end_date TEXT,
			gestation_days INTEGER, notes TEXT);
		CREATE TABLE breeding_exposures (
			id INTEGER PRIMARY KEY, session_id INTEGER, animal_tag TEXT, status TEXT, exposed INTEGER,
			observed_breeding_date TEXT, preg_check_date TEXT, result TEXT, due_date TEXT,
			notes TEXT, photo_path TEXT)`
)

// NewDatabase creates a SQLite file in a temp dir, runs the statements and
// returns the file path. The file exists even with no statements.
func NewDatabase(t *testing.T, statements ...string) string {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), DBFileName)
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatalf("testhelper: open sqlite: %v", err)
	}
	defer func() { _ = db.Close() }()

	// Writing the header creates the file even when no statements follow.
	if _, err := db.Exec("PRAGMA user_version = 1"); err != nil {
		t.Fatalf("testhelper: init sqlite: %v", err)
	}
	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("testhelper: exec %q: %v", stmt, err)
		}
	}
	return dbPath
}

// NewArchive zips the database at dbPath under dbEntry together with the
// extra files and returns the archive bytes. An empty dbEntry leaves the
// database out.
func NewArchive(t *testing.T, dbPath, dbEntry string, extra map[string][]byte) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	if dbEntry != "" {
		data, err := os.ReadFile(dbPath)
		if err != nil {
			t.Fatalf("testhelper: read database: %v", err)
		}
		writeEntry(t, zw, dbEntry, data)
	}
	for name, data := range extra {
		writeEntry(t, zw, name, data)
	}

	if err := zw.Close(); err != nil {
		t.Fatalf("testhelper: close zip: %v", err)
	}
	return buf.Bytes()
}

// FarmArchive builds an archive with every table populated: two animals (one
// with a photo present in the archive, one pointing at a missing file), a feed
// log, a pooled inventory and one breeding session with two exposures.
func FarmArchive(t *testing.T) []byte {
	t.Helper()

	dbPath := NewDatabase(t,
		AnimalsDDL, FeedDDL, StoragesDDL, PooledDDL, BreedingDDL,
		`INSERT INTO animals VALUES
			(1, 'A-001', 'active', 'F', 'breeder', 'North', '2023', 'photos/a1.jpg'),
			(2, 'A-002', 'sold', 'M', 'sire', 'South', '2022', 'photos/gone.png'),
			(3, 'A-003', 'active', 'F', 'breeder', 'North', '2024', NULL)`,
		`INSERT INTO feed_types VALUES (1, 'Hay', 'bales')`,
		`INSERT INTO storages VALUES (1, 'Barn A')`,
		`INSERT INTO feed_usage VALUES (1, '2024-03-01', 'North', 1, 4, 'bales', 12.5)`,
		`INSERT INTO inventory_pools VALUES (1, 1, 1)`,
		`INSERT INTO inventory_pool_transactions VALUES (1, 1, 'ADD', 100), (2, 1, 'REMOVE', 30), (3, 1, 'ADJUST', -5)`,
		`INSERT INTO breeding_sessions VALUES (1, 'North', '2024-01-10', '2024-02-10', 150, 'spring')`,
		`INSERT INTO breeding_exposures VALUES
			(1, 1, 'A-001', 'exposed', 1, '2024-01-12', '2024-02-20', 'pregnant', '2024-06-10', '', 'photos/a1.jpg'),
			(2, 1, 'A-003', 'exposed', 1, NULL, NULL, NULL, NULL, 'late', NULL)`,
	)

	return NewArchive(t, dbPath, "backup/"+DBFileName, map[string][]byte{
		"photos/a1.jpg": []byte("jpeg-bytes"),
	})
}

func writeEntry(t *testing.T, zw *zip.Writer, name string, data []byte) {
	t.Helper()

	w, err := zw.Create(name)
	if err != nil {
		t.Fatalf("testhelper: create zip entry %s: %v", name, err)
	}
	if _, err := w.Write(data); err != nil {
		t.Fatalf("testhelper: write zip entry %s: %v", name, err)
	}
}
