package artifacts

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const bundleDir = "testdata/bundle"

// copyBundle copies the test bundle so individual files can be removed
func copyBundle(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	entries, err := os.ReadDir(bundleDir)
	require.NoError(t, err)
	for _, entry := range entries {
		data, err := os.ReadFile(filepath.Join(bundleDir, entry.Name()))
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(filepath.Join(dir, entry.Name()), data, 0644))
	}
	return dir
}

func TestLoadDir(t *testing.T) {
	b, err := LoadDir(bundleDir, DefaultNames())
	require.NoError(t, err)
	defer b.Close()

	assert.Equal(t, "test", b.Manifest.Version)
	assert.Equal(t, 7, b.MinMax.Dim())
	assert.Equal(t, 7, b.Standard.Dim())

	scaled, err := b.MinMax.Transform([]float64{90, 42, 43, 20.87, 82, 6.5, 202.9})
	require.NoError(t, err)
	class, err := b.Classifier.Predict(context.Background(), scaled)
	require.NoError(t, err)
	assert.Equal(t, 1, class)
}

func TestLoadDirWithoutManifest(t *testing.T) {
	dir := copyBundle(t)
	require.NoError(t, os.Remove(filepath.Join(dir, "manifest.json")))

	b, err := LoadDir(dir, DefaultNames())
	require.NoError(t, err)
	assert.Equal(t, "", b.Manifest.Version)
	assert.Equal(t, "forest", b.Classifier.Info()["kind"])
}

func TestLoadDirMissingArtifact(t *testing.T) {
	for _, name := range []string{"classifier.json", "minmaxscaler.json", "standscaler.json"} {
		t.Run(name, func(t *testing.T) {
			dir := copyBundle(t)
			require.NoError(t, os.Remove(filepath.Join(dir, name)))

			_, err := LoadDir(dir, DefaultNames())
			assert.ErrorIs(t, err, ErrMissingArtifact)
		})
	}
}

func TestLoadDirWrongWidth(t *testing.T) {
	dir := copyBundle(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "minmaxscaler.json"), []byte(`{"min":[0],"scale":[1]}`), 0644))

	_, err := LoadDir(dir, DefaultNames())
	assert.Error(t, err)
}

func TestPackAndLoadSQLite(t *testing.T) {
	out := filepath.Join(t.TempDir(), "bundle.db")
	require.NoError(t, PackSQLite(bundleDir, DefaultNames(), out))

	fromDB, err := LoadSQLite(out)
	require.NoError(t, err)
	defer fromDB.Close()

	fromDir, err := LoadDir(bundleDir, DefaultNames())
	require.NoError(t, err)

	assert.Equal(t, fromDir.MinMax, fromDB.MinMax)
	assert.Equal(t, fromDir.Standard, fromDB.Standard)
	assert.Equal(t, fromDir.Manifest, fromDB.Manifest)
	assert.Equal(t, out, fromDB.Source)

	// Packing again replaces the previous bundle
	require.NoError(t, PackSQLite(bundleDir, DefaultNames(), out))
}

func TestPackSQLiteKeepsBundleOnFailure(t *testing.T) {
	out := filepath.Join(t.TempDir(), "bundle.db")
	require.NoError(t, PackSQLite(bundleDir, DefaultNames(), out))

	// A non-empty directory in the way of the scratch file makes the pack fail
	require.NoError(t, os.MkdirAll(filepath.Join(out+".tmp", "busy"), 0755))
	assert.Error(t, PackSQLite(bundleDir, DefaultNames(), out))

	b, err := LoadSQLite(out)
	require.NoError(t, err)
	b.Close()
}

func TestPackSQLiteLeavesNoScratchFile(t *testing.T) {
	out := filepath.Join(t.TempDir(), "bundle.db")
	require.NoError(t, PackSQLite(bundleDir, DefaultNames(), out))

	_, err := os.Stat(out + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

func TestLoadSQLiteNotABundle(t *testing.T) {
	path := filepath.Join(t.TempDir(), "other.db")
	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	_, err = db.Exec(`CREATE TABLE tiles (zoom_level INTEGER)`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	_, err = LoadSQLite(path)
	assert.Error(t, err)
}

func TestLoadSQLiteMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.db")
	_, err := LoadSQLite(path)
	assert.Error(t, err)

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr), "loading must not create the file")
}
