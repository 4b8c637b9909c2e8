//go:build !onnx

package classifier

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestONNXStub(t *testing.T) {
	c, err := Load(KindONNX, []byte{0x08})
	assert.ErrorIs(t, err, ErrONNXUnavailable)
	assert.Nil(t, c)

	var stub ONNXClassifier
	_, err = stub.Predict(context.Background(), make([]float64, 7))
	assert.ErrorIs(t, err, ErrONNXUnavailable)
	assert.Equal(t, false, stub.Info()["available"])
}
