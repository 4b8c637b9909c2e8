package classifier

import (
	"context"
	"errors"
	"fmt"
)

// Supported artifact kinds
const (
	KindForest = "forest"
	KindTree   = "tree"
	KindONNX   = "onnx"
)

var (
	// ErrUnsupportedKind is returned by Load for unknown artifact kinds
	ErrUnsupportedKind = errors.New("unsupported classifier kind")
	// ErrEmptyModel is returned when an artifact holds no trees or nodes
	ErrEmptyModel = errors.New("classifier has no trees")
)

// Classifier maps a scaled feature vector to a crop class id.
// Implementations must be safe for concurrent use.
type Classifier interface {
	Predict(ctx context.Context, features []float64) (int, error)
	Info() map[string]interface{}
}

// Load decodes a classifier artifact of the given kind
func Load(kind string, data []byte) (Classifier, error) {
	var (
		c   Classifier
		err error
	)
	switch kind {
	case KindForest, "":
		c, err = LoadForest(data)
	case KindTree:
		c, err = LoadTree(data)
	case KindONNX:
		c, err = LoadONNX(data, DefaultONNXConfig())
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedKind, kind)
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Close releases resources held by c, if any
func Close(c Classifier) error {
	if closer, ok := c.(interface{ Close() error }); ok {
		return closer.Close()
	}
	return nil
}
