package features

import (
	"errors"
	"math"
	"net/url"
	"strconv"
	"strings"
)

// Count is the number of readings in a feature vector
const Count = 7

// Validation sentinels. Their messages are shown to the user verbatim.
var (
	ErrInvalidInput = errors.New("Please provide valid inputs")
	ErrOutOfRange   = errors.New("Inputs out of range")
)

// ValidationError reports which field failed and why
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string { return e.Err.Error() }

func (e *ValidationError) Unwrap() error { return e.Err }

// Field describes one form input and its accepted range
type Field struct {
	Key   string  `json:"key"`
	Label string  `json:"label"`
	Unit  string  `json:"unit,omitempty"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
}

// Fields lists the inputs in feature vector order.
// The "Phosporus" key is what existing forms post.
var Fields = [Count]Field{
	{Key: "Nitrogen", Label: "Nitrogen", Unit: "kg/ha", Min: 0, Max: 200},
	{Key: "Phosporus", Label: "Phosphorus", Unit: "kg/ha", Min: 0, Max: 200},
	{Key: "Potassium", Label: "Potassium", Unit: "kg/ha", Min: 0, Max: 500},
	{Key: "Temperature", Label: "Temperature", Unit: "°C", Min: -10, Max: 100},
	{Key: "Humidity", Label: "Humidity", Unit: "%", Min: 0, Max: 100},
	{Key: "Ph", Label: "pH", Min: 0, Max: 14},
	{Key: "Rainfall", Label: "Rainfall", Unit: "mm", Min: 0, Max: 1000},
}

// Vector holds one set of readings in Fields order
type Vector [Count]float64

// Slice returns a copy of the vector as a slice
func (v Vector) Slice() []float64 {
	out := make([]float64, Count)
	copy(out, v[:])
	return out
}

// IsZero reports whether every reading is zero
func (v Vector) IsZero() bool {
	for _, f := range v {
		if f != 0 {
			return false
		}
	}
	return true
}

// Validate checks each reading against its inclusive range
func (v Vector) Validate() error {
	for i, f := range v {
		field := Fields[i]
		if math.IsNaN(f) || f < field.Min || f > field.Max {
			return &ValidationError{Field: field.Key, Err: ErrOutOfRange}
		}
	}
	return nil
}

// Parse reads every field through get. Empty or non-numeric values yield
// ErrInvalidInput. Ranges are not checked here; see Validate.
func Parse(get func(key string) string) (Vector, error) {
	var v Vector
	raw := make([]string, Count)
	for i, field := range Fields {
		raw[i] = strings.TrimSpace(get(field.Key))
		if raw[i] == "" {
			return v, &ValidationError{Field: field.Key, Err: ErrInvalidInput}
		}
	}
	for i, field := range Fields {
		f, err := strconv.ParseFloat(raw[i], 64)
		if err != nil {
			return v, &ValidationError{Field: field.Key, Err: ErrInvalidInput}
		}
		v[i] = f
	}
	return v, nil
}

// ParseValues parses submitted form values
func ParseValues(values url.Values) (Vector, error) {
	return Parse(values.Get)
}

// ParseStrings parses positional arguments in Fields order
func ParseStrings(args []string) (Vector, error) {
	if len(args) != Count {
		return Vector{}, &ValidationError{Err: ErrInvalidInput}
	}
	return Parse(func(key string) string {
		for i, field := range Fields {
			if field.Key == key {
				return args[i]
			}
		}
		return ""
	})
}

// Values renders the vector back into form values
func (v Vector) Values() url.Values {
	values := url.Values{}
	for i, field := range Fields {
		values.Set(field.Key, strconv.FormatFloat(v[i], 'f', -1, 64))
	}
	return values
}
