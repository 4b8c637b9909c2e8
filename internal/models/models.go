package models

import "github.com/kartoza/crop-advisor/internal/features"

// PredictRequest is the JSON body of POST /api/predict.
// Pointers distinguish a missing reading from a zero reading.
type PredictRequest struct {
	Nitrogen    *float64 `json:"nitrogen"`
	Phosphorus  *float64 `json:"phosphorus"`
	Potassium   *float64 `json:"potassium"`
	Temperature *float64 `json:"temperature"`
	Humidity    *float64 `json:"humidity"`
	Ph          *float64 `json:"ph"`
	Rainfall    *float64 `json:"rainfall"`
}

// Vector converts the request into a feature vector
func (r PredictRequest) Vector() (features.Vector, error) {
	var v features.Vector
	for i, p := range []*float64{r.Nitrogen, r.Phosphorus, r.Potassium, r.Temperature, r.Humidity, r.Ph, r.Rainfall} {
		if p == nil {
			return v, &features.ValidationError{Field: features.Fields[i].Key, Err: features.ErrInvalidInput}
		}
		v[i] = *p
	}
	return v, nil
}

// PredictResponse contains the recommendation
type PredictResponse struct {
	ID      string `json:"id"`
	ClassID int    `json:"class_id,omitempty"`
	Crop    string `json:"crop,omitempty"`
	NoCrop  bool   `json:"no_crop,omitempty"`
	Message string `json:"message"`
}

// ErrorResponse is returned for rejected or failed predictions
type ErrorResponse struct {
	ID    string `json:"id,omitempty"`
	Error string `json:"error"`
}
