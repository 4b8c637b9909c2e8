//go:build !onnx

package classifier

import (
	"context"
	"errors"
)

// Stub implementation when ONNX Runtime is not available.
// Build with -tags onnx to enable the real implementation.

// ErrONNXUnavailable is returned when the binary was built without ONNX support
var ErrONNXUnavailable = errors.New("built without onnx tag. Rebuild with: go build -tags onnx")

// ONNXClassifier is a stub when built without the onnx tag
type ONNXClassifier struct{}

// LoadONNX always fails without ONNX Runtime
func LoadONNX(_ []byte, _ ONNXConfig) (*ONNXClassifier, error) {
	return nil, ErrONNXUnavailable
}

// Predict is unavailable without ONNX Runtime
func (c *ONNXClassifier) Predict(_ context.Context, _ []float64) (int, error) {
	return 0, ErrONNXUnavailable
}

// Info returns stub info
func (c *ONNXClassifier) Info() map[string]interface{} {
	return map[string]interface{}{
		"kind":      KindONNX,
		"available": false,
		"message":   ErrONNXUnavailable.Error(),
	}
}

// Close is a no-op
func (c *ONNXClassifier) Close() error {
	return nil
}
