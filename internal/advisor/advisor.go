package advisor

import (
	"context"
	"errors"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"github.com/kartoza/crop-advisor/internal/artifacts"
	"github.com/kartoza/crop-advisor/internal/crops"
	"github.com/kartoza/crop-advisor/internal/features"
)

// NoSuitableCrop is the message for the all-zero input vector
const NoSuitableCrop = "No suitable crop can be cultivated with these inputs."

// ErrModelUnavailable is returned when no artifact bundle was loaded
var ErrModelUnavailable = errors.New("model artifacts not loaded")

// Recommendation is the outcome for one set of readings
type Recommendation struct {
	ClassID int    `json:"class_id"`
	Crop    string `json:"crop"`
	Known   bool   `json:"known"`
	NoCrop  bool   `json:"no_crop"`
	Message string `json:"message"`
	Cached  bool   `json:"-"`
}

// Options tunes an Advisor
type Options struct {
	// CacheSize bounds the number of memoized vectors, 0 disables caching
	CacheSize int
	Logger    *zap.Logger
	// LoadErr is reported in place of ErrModelUnavailable's detail
	LoadErr error
}

// Advisor turns readings into crop recommendations. It is safe for
// concurrent use; the bundle is never mutated.
type Advisor struct {
	bundle  *artifacts.Bundle
	cache   *lru.Cache[features.Vector, int]
	logger  *zap.Logger
	loadErr error
}

// New creates an Advisor around a loaded bundle. A nil bundle is accepted
// so the form keeps working when artifacts failed to load.
func New(bundle *artifacts.Bundle, opts Options) (*Advisor, error) {
	a := &Advisor{
		bundle:  bundle,
		logger:  opts.Logger,
		loadErr: opts.LoadErr,
	}
	if a.logger == nil {
		a.logger = zap.NewNop()
	}
	if opts.CacheSize > 0 {
		cache, err := lru.New[features.Vector, int](opts.CacheSize)
		if err != nil {
			return nil, fmt.Errorf("failed to create prediction cache: %w", err)
		}
		a.cache = cache
	}
	return a, nil
}

// Ready reports whether a model bundle is loaded
func (a *Advisor) Ready() bool {
	return a.bundle != nil
}

// Bundle returns the loaded artifacts, or nil
func (a *Advisor) Bundle() *artifacts.Bundle {
	return a.bundle
}

// Recommend validates v and returns the recommended crop.
// The all-zero vector short-circuits without touching the model.
func (a *Advisor) Recommend(ctx context.Context, v features.Vector) (Recommendation, error) {
	if v.IsZero() {
		return Recommendation{NoCrop: true, Message: NoSuitableCrop}, nil
	}
	if err := v.Validate(); err != nil {
		return Recommendation{}, err
	}

	classID, cached, err := a.classify(ctx, v)
	if err != nil {
		return Recommendation{}, err
	}

	name := crops.Name(classID)
	rec := Recommendation{
		ClassID: classID,
		Crop:    name,
		Known:   crops.Known(classID),
		Message: Sentence(name),
		Cached:  cached,
	}
	a.logger.Debug("Recommendation",
		zap.Int("class_id", classID),
		zap.String("crop", name),
		zap.Bool("cached", cached))
	return rec, nil
}

func (a *Advisor) classify(ctx context.Context, v features.Vector) (int, bool, error) {
	if a.bundle == nil {
		if a.loadErr != nil {
			return 0, false, fmt.Errorf("%w: %v", ErrModelUnavailable, a.loadErr)
		}
		return 0, false, ErrModelUnavailable
	}

	if a.cache != nil {
		if id, ok := a.cache.Get(v); ok {
			return id, true, nil
		}
	}

	scaled, err := a.bundle.MinMax.Transform(v.Slice())
	if err != nil {
		return 0, false, fmt.Errorf("failed to scale features: %w", err)
	}
	id, err := a.bundle.Classifier.Predict(ctx, scaled)
	if err != nil {
		return 0, false, fmt.Errorf("prediction failed: %w", err)
	}

	if a.cache != nil {
		a.cache.Add(v, id)
	}
	return id, false, nil
}

// Sentence formats the result line for a crop name
func Sentence(crop string) string {
	return fmt.Sprintf("%s is the best crop to be cultivated right there", crop)
}
