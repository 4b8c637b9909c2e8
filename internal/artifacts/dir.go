package artifacts

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// LoadDir reads a bundle from individual files in dir
func LoadDir(dir string, names Names) (*Bundle, error) {
	files := map[string]string{
		EntryClassifier: names.Classifier,
		EntryMinMax:     names.MinMax,
		EntryStandard:   names.Standard,
		EntryManifest:   names.Manifest,
	}

	entries := make(map[string][]byte, len(files))
	for entry, name := range files {
		if name == "" {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			// The manifest is optional, the rest is caught by build
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("failed to read %s: %w", name, err)
		}
		entries[entry] = data
	}

	return build(dir, entries, kindFromName(names.Classifier))
}
