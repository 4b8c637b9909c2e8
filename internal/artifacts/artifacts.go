package artifacts

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/kartoza/crop-advisor/internal/classifier"
	"github.com/kartoza/crop-advisor/internal/features"
	"github.com/kartoza/crop-advisor/internal/scaler"
)

// Entry names used inside a bundle
const (
	EntryClassifier = "classifier"
	EntryMinMax     = "minmaxscaler"
	EntryStandard   = "standscaler"
	EntryManifest   = "manifest"
)

// ErrMissingArtifact is returned when a required entry is absent
var ErrMissingArtifact = errors.New("missing artifact")

// Manifest describes an exported model bundle
type Manifest struct {
	Format         string `json:"format"`
	Version        string `json:"version"`
	Description    string `json:"description"`
	Created        string `json:"created"`
	ClassifierKind string `json:"classifier_kind"`
}

// Names maps bundle entries to files in an artifact directory
type Names struct {
	Classifier string `yaml:"classifier"`
	MinMax     string `yaml:"minmax"`
	Standard   string `yaml:"standard"`
	Manifest   string `yaml:"manifest"`
}

// DefaultNames returns the file names written by the export script
func DefaultNames() Names {
	return Names{
		Classifier: "classifier.json",
		MinMax:     "minmaxscaler.json",
		Standard:   "standscaler.json",
		Manifest:   "manifest.json",
	}
}

// Bundle holds the loaded model artifacts. It is immutable once built and
// shared by all requests.
type Bundle struct {
	Classifier classifier.Classifier
	MinMax     *scaler.MinMax
	Standard   *scaler.Standard
	Manifest   Manifest
	Source     string
}

// Close releases classifier resources
func (b *Bundle) Close() error {
	if b == nil || b.Classifier == nil {
		return nil
	}
	return classifier.Close(b.Classifier)
}

// Info summarizes the bundle for the info endpoint
func (b *Bundle) Info() map[string]interface{} {
	return map[string]interface{}{
		"source":     b.Source,
		"version":    b.Manifest.Version,
		"classifier": b.Classifier.Info(),
		"features":   b.MinMax.Dim(),
	}
}

// build decodes raw entries into a bundle
func build(source string, entries map[string][]byte, kindHint string) (*Bundle, error) {
	var manifest Manifest
	if data, ok := entries[EntryManifest]; ok {
		if err := json.Unmarshal(data, &manifest); err != nil {
			return nil, fmt.Errorf("failed to parse manifest: %w", err)
		}
	}

	for _, name := range []string{EntryClassifier, EntryMinMax, EntryStandard} {
		if _, ok := entries[name]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingArtifact, name)
		}
	}

	minMax, err := scaler.LoadMinMax(bytes.NewReader(entries[EntryMinMax]))
	if err != nil {
		return nil, err
	}
	if minMax.Dim() != features.Count {
		return nil, fmt.Errorf("min-max scaler has %d features, want %d", minMax.Dim(), features.Count)
	}

	standard, err := scaler.LoadStandard(bytes.NewReader(entries[EntryStandard]))
	if err != nil {
		return nil, err
	}

	kind := manifest.ClassifierKind
	if kind == "" {
		kind = kindHint
	}
	model, err := classifier.Load(kind, entries[EntryClassifier])
	if err != nil {
		return nil, fmt.Errorf("failed to load classifier: %w", err)
	}

	return &Bundle{
		Classifier: model,
		MinMax:     minMax,
		Standard:   standard,
		Manifest:   manifest,
		Source:     source,
	}, nil
}

// kindFromName guesses the classifier kind from its file name
func kindFromName(name string) string {
	if strings.EqualFold(filepath.Ext(name), ".onnx") {
		return classifier.KindONNX
	}
	return classifier.KindForest
}
