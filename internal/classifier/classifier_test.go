package classifier

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stump splits on feature 0 at 0.5
const stump = `{"nodes":[
	{"feature":0,"threshold":0.5,"left":1,"right":2,"class":0},
	{"feature":-1,"class":1},
	{"feature":-1,"class":22}
]}`

const forest = `{"n_features":2,"trees":[
	{"nodes":[{"feature":0,"threshold":0.5,"left":1,"right":2},{"feature":-1,"class":3},{"feature":-1,"class":5}]},
	{"nodes":[{"feature":1,"threshold":0.5,"left":1,"right":2},{"feature":-1,"class":3},{"feature":-1,"class":5}]},
	{"nodes":[{"feature":-1,"class":5}]}
]}`

func TestTreePredict(t *testing.T) {
	c, err := Load(KindTree, []byte(stump))
	require.NoError(t, err)

	class, err := c.Predict(context.Background(), []float64{0.2})
	require.NoError(t, err)
	assert.Equal(t, 1, class)

	class, err = c.Predict(context.Background(), []float64{0.5})
	require.NoError(t, err)
	assert.Equal(t, 1, class, "threshold is inclusive on the left")

	class, err = c.Predict(context.Background(), []float64{0.9})
	require.NoError(t, err)
	assert.Equal(t, 22, class)
}

func TestForestMajorityVote(t *testing.T) {
	c, err := Load(KindForest, []byte(forest))
	require.NoError(t, err)

	tests := []struct {
		name     string
		features []float64
		want     int
	}{
		{"two low votes", []float64{0.1, 0.1}, 3},
		{"split goes to 5", []float64{0.9, 0.1}, 5},
		{"all high", []float64{0.9, 0.9}, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			class, err := c.Predict(context.Background(), tt.features)
			require.NoError(t, err)
			assert.Equal(t, tt.want, class)
		})
	}

	_, err = c.Predict(context.Background(), []float64{0.1})
	assert.Error(t, err)
}

func TestForestTieGoesToLowestClass(t *testing.T) {
	f, err := LoadForest([]byte(`{"trees":[
		{"nodes":[{"feature":-1,"class":9}]},
		{"nodes":[{"feature":-1,"class":4}]}
	]}`))
	require.NoError(t, err)

	for i := 0; i < 20; i++ {
		class, err := f.Predict(context.Background(), []float64{0})
		require.NoError(t, err)
		assert.Equal(t, 4, class)
	}
}

func TestLoadRejectsBadArtifacts(t *testing.T) {
	tests := []struct {
		name string
		kind string
		data string
	}{
		{"empty forest", KindForest, `{"trees":[]}`},
		{"empty tree", KindTree, `{"nodes":[]}`},
		{"dangling child", KindTree, `{"nodes":[{"feature":0,"threshold":1,"left":1,"right":7}]}`},
		{"self loop", KindTree, `{"nodes":[{"feature":0,"threshold":1,"left":0,"right":0}]}`},
		{"garbage", KindForest, `{{`},
		{"unknown kind", "svm", `{}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := Load(tt.kind, []byte(tt.data))
			assert.Error(t, err)
			assert.Nil(t, c)
		})
	}
}

func TestPredictHonoursContext(t *testing.T) {
	c, err := Load(KindTree, []byte(stump))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = c.Predict(ctx, []float64{0.1})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestInfo(t *testing.T) {
	c, err := Load(KindForest, []byte(forest))
	require.NoError(t, err)

	info := c.Info()
	assert.Equal(t, KindForest, info["kind"])
	assert.Equal(t, 3, info["trees"])
	assert.NoError(t, Close(c))
}
