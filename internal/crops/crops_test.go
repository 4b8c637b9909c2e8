package crops

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestName(t *testing.T) {
	tests := []struct {
		id   int
		want string
	}{
		{1, "Rice"},
		{14, "Pomegranate"},
		{22, "Coffee"},
		{0, UnknownCrop},
		{23, UnknownCrop},
		{-4, UnknownCrop},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Name(tt.id), "id %d", tt.id)
	}
}

func TestAllSorted(t *testing.T) {
	all := All()
	assert.Len(t, all, 22)
	for i, c := range all {
		assert.Equal(t, i+1, c.ID)
		assert.True(t, Known(c.ID))
	}
}
