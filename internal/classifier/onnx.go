//go:build onnx

package classifier

import (
	"context"
	"fmt"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
)

// ONNXClassifier runs an exported scikit-learn model through ONNX Runtime
type ONNXClassifier struct {
	cfg          ONNXConfig
	session      *ort.AdvancedSession
	inputTensor  *ort.Tensor[float32]
	outputTensor *ort.Tensor[int64]

	// the session reuses its bound tensors, so runs are serialized
	mu sync.Mutex
}

var ortInit sync.Once
var ortInitErr error

// LoadONNX creates a session from serialized ONNX model bytes
func LoadONNX(data []byte, cfg ONNXConfig) (*ONNXClassifier, error) {
	ortInit.Do(func() {
		if cfg.SharedLibraryPath != "" {
			ort.SetSharedLibraryPath(cfg.SharedLibraryPath)
		}
		ortInitErr = ort.InitializeEnvironment()
	})
	if ortInitErr != nil {
		return nil, fmt.Errorf("failed to initialize ONNX environment: %w", ortInitErr)
	}

	inputTensor, err := ort.NewEmptyTensor[float32](ort.NewShape(1, int64(cfg.Features)))
	if err != nil {
		return nil, fmt.Errorf("failed to create input tensor: %w", err)
	}

	outputTensor, err := ort.NewEmptyTensor[int64](ort.NewShape(1))
	if err != nil {
		inputTensor.Destroy()
		return nil, fmt.Errorf("failed to create output tensor: %w", err)
	}

	session, err := ort.NewAdvancedSessionWithONNXData(data,
		[]string{cfg.InputName}, []string{cfg.OutputName},
		[]ort.ArbitraryTensor{inputTensor}, []ort.ArbitraryTensor{outputTensor},
		nil)
	if err != nil {
		inputTensor.Destroy()
		outputTensor.Destroy()
		return nil, fmt.Errorf("failed to create ONNX session: %w", err)
	}

	return &ONNXClassifier{
		cfg:          cfg,
		session:      session,
		inputTensor:  inputTensor,
		outputTensor: outputTensor,
	}, nil
}

// Predict runs inference and returns the label output
func (c *ONNXClassifier) Predict(ctx context.Context, features []float64) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if len(features) != c.cfg.Features {
		return 0, fmt.Errorf("onnx model expects %d features, got %d", c.cfg.Features, len(features))
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	input := c.inputTensor.GetData()
	for i, f := range features {
		input[i] = float32(f)
	}

	if err := c.session.Run(); err != nil {
		return 0, fmt.Errorf("inference failed: %w", err)
	}
	return int(c.outputTensor.GetData()[0]), nil
}

// Info describes the session bindings
func (c *ONNXClassifier) Info() map[string]interface{} {
	return map[string]interface{}{
		"kind":     KindONNX,
		"input":    c.cfg.InputName,
		"output":   c.cfg.OutputName,
		"features": c.cfg.Features,
	}
}

// Close destroys the session and its tensors
func (c *ONNXClassifier) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.inputTensor != nil {
		c.inputTensor.Destroy()
	}
	if c.outputTensor != nil {
		c.outputTensor.Destroy()
	}
	if c.session != nil {
		return c.session.Destroy()
	}
	return nil
}
