package artifacts

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

// LoadSQLite reads a bundle from a read-only SQLite file holding an
// artifacts(name, kind, payload) table
func LoadSQLite(path string) (*Bundle, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("failed to open bundle: %w", err)
	}

	db, err := sql.Open("sqlite3", "file:"+path+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("failed to open bundle %s: %w", path, err)
	}
	defer db.Close()

	// Verify it's a bundle before reading
	var count int
	err = db.QueryRow("SELECT count(*) FROM sqlite_master WHERE type IN ('table','view') AND name='artifacts'").Scan(&count)
	if err != nil {
		return nil, fmt.Errorf("failed to inspect bundle %s: %w", path, err)
	}
	if count == 0 {
		return nil, fmt.Errorf("%s is not an artifact bundle", path)
	}

	rows, err := db.Query("SELECT name, kind, payload FROM artifacts")
	if err != nil {
		return nil, fmt.Errorf("failed to read artifacts: %w", err)
	}
	defer rows.Close()

	entries := make(map[string][]byte)
	kindHint := ""
	for rows.Next() {
		var name, kind string
		var payload []byte
		if err := rows.Scan(&name, &kind, &payload); err != nil {
			return nil, fmt.Errorf("failed to scan artifact row: %w", err)
		}
		entries[name] = payload
		if name == EntryClassifier {
			kindHint = kind
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read artifacts: %w", err)
	}

	return build(path, entries, kindHint)
}

// PackSQLite writes the files of an artifact directory into a new bundle
// at out. The bundle is built beside out and renamed into place, so an
// existing bundle survives a failed pack.
func PackSQLite(dir string, names Names, out string) error {
	if _, err := LoadDir(dir, names); err != nil {
		return fmt.Errorf("refusing to pack invalid directory: %w", err)
	}

	tmp := out + ".tmp"
	if err := os.Remove(tmp); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to clear %s: %w", tmp, err)
	}

	if err := writeBundle(dir, names, tmp); err != nil {
		os.Remove(tmp)
		return err
	}

	if err := os.Rename(tmp, out); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to replace %s: %w", out, err)
	}
	return nil
}

// writeBundle creates a fresh bundle file at path
func writeBundle(dir string, names Names, path string) error {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return fmt.Errorf("failed to create bundle: %w", err)
	}
	defer db.Close()

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`CREATE TABLE artifacts (name TEXT PRIMARY KEY, kind TEXT NOT NULL, payload BLOB NOT NULL)`); err != nil {
		return fmt.Errorf("failed to create artifacts table: %w", err)
	}

	files := []struct {
		entry, file, kind string
	}{
		{EntryClassifier, names.Classifier, kindFromName(names.Classifier)},
		{EntryMinMax, names.MinMax, "minmax"},
		{EntryStandard, names.Standard, "standard"},
		{EntryManifest, names.Manifest, "manifest"},
	}
	for _, f := range files {
		if f.file == "" {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, f.file))
		if err != nil {
			if os.IsNotExist(err) && f.entry == EntryManifest {
				continue
			}
			return fmt.Errorf("failed to read %s: %w", f.file, err)
		}
		if _, err := tx.Exec("INSERT INTO artifacts (name, kind, payload) VALUES (?, ?, ?)", f.entry, f.kind, data); err != nil {
			return fmt.Errorf("failed to insert %s: %w", f.entry, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	return db.Close()
}
