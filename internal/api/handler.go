package api

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"net/url"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/kartoza/crop-advisor/internal/advisor"
	"github.com/kartoza/crop-advisor/internal/config"
	"github.com/kartoza/crop-advisor/internal/crops"
	"github.com/kartoza/crop-advisor/internal/features"
	"github.com/kartoza/crop-advisor/internal/models"
)

//go:embed templates/*.html
var templateFS embed.FS

// Handler serves the recommendation form and the JSON API
type Handler struct {
	advisor *advisor.Advisor
	cfg     config.Config
	logger  *zap.Logger
	tmpl    *template.Template
}

// NewHandler creates a new handler around an advisor
func NewHandler(adv *advisor.Advisor, cfg config.Config, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	printer := message.NewPrinter(language.English)
	funcs := template.FuncMap{
		"num": func(f float64) string { return printer.Sprintf("%v", f) },
	}
	return &Handler{
		advisor: adv,
		cfg:     cfg,
		logger:  logger,
		tmpl:    template.Must(template.New("").Funcs(funcs).ParseFS(templateFS, "templates/*.html")),
	}
}

// RegisterRoutes sets up the form and API routes
func (h *Handler) RegisterRoutes(r *mux.Router) {
	// Form
	r.HandleFunc("/", h.handleIndex).Methods("GET")
	r.HandleFunc("/predict", h.handlePredict).Methods("POST")

	// Health and info
	r.HandleFunc("/health", h.handleHealth).Methods("GET")
	r.HandleFunc("/info", h.handleInfo).Methods("GET")

	// JSON prediction
	r.HandleFunc("/api/predict", h.handleAPIPredict).Methods("POST")
}

// respondJSON sends a JSON response
func (h *Handler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("Error encoding response", zap.Error(err))
	}
}

// fieldView is one form input as rendered
type fieldView struct {
	features.Field
	Value string
}

type pageData struct {
	Fields  []fieldView
	Result  string
	Version string
}

// render writes the form page, re-filling any submitted values
func (h *Handler) render(w http.ResponseWriter, values url.Values, result string) {
	data := pageData{Result: result, Version: h.cfg.Version}
	for _, field := range features.Fields {
		data.Fields = append(data.Fields, fieldView{Field: field, Value: values.Get(field.Key)})
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.tmpl.ExecuteTemplate(w, "index.html", data); err != nil {
		h.logger.Error("Error rendering page", zap.Error(err))
	}
}

// handleIndex renders the empty form
func (h *Handler) handleIndex(w http.ResponseWriter, r *http.Request) {
	h.render(w, nil, "")
}

// handlePredict renders the form with the recommendation or the reason
// there is none. It never fails with an error status.
func (h *Handler) handlePredict(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.render(w, nil, errorMessage(err))
		return
	}
	result := h.recommend(r.Context(), r.PostForm)
	h.render(w, r.PostForm, result)
}

// recommend turns submitted values into the result line
func (h *Handler) recommend(ctx context.Context, values url.Values) (result string) {
	defer func() {
		if p := recover(); p != nil {
			h.logger.Error("Panic during prediction", zap.Any("panic", p))
			result = fmt.Sprintf("An error occurred: %v", p)
		}
	}()

	v, err := features.ParseValues(values)
	if err != nil {
		return errorMessage(err)
	}
	rec, err := h.advisor.Recommend(ctx, v)
	if err != nil {
		if !isValidation(err) {
			h.logger.Warn("Prediction failed", zap.Error(err))
		}
		return errorMessage(err)
	}
	return rec.Message
}

func isValidation(err error) bool {
	var verr *features.ValidationError
	return errors.As(err, &verr)
}

// errorMessage shows validation errors verbatim and anything else
// behind a generic prefix
func errorMessage(err error) string {
	if isValidation(err) {
		return err.Error()
	}
	return "An error occurred: " + err.Error()
}

// handleHealth returns server health status
func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleInfo returns server and model information
func (h *Handler) handleInfo(w http.ResponseWriter, r *http.Request) {
	info := map[string]interface{}{
		"version":      h.cfg.Version,
		"model_loaded": h.advisor.Ready(),
		"fields":       features.Fields,
		"crops":        crops.All(),
	}
	if b := h.advisor.Bundle(); b != nil {
		info["model"] = b.Info()
	}
	h.respondJSON(w, http.StatusOK, info)
}

// handleAPIPredict is the JSON counterpart of the form
func (h *Handler) handleAPIPredict(w http.ResponseWriter, r *http.Request) {
	id := uuid.New().String()

	var req models.PredictRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondJSON(w, http.StatusBadRequest, models.ErrorResponse{ID: id, Error: "invalid request body"})
		return
	}

	v, err := req.Vector()
	if err != nil {
		h.respondJSON(w, http.StatusBadRequest, models.ErrorResponse{ID: id, Error: err.Error()})
		return
	}

	rec, err := h.advisor.Recommend(r.Context(), v)
	switch {
	case err == nil:
	case isValidation(err):
		h.respondJSON(w, http.StatusBadRequest, models.ErrorResponse{ID: id, Error: err.Error()})
		return
	case errors.Is(err, advisor.ErrModelUnavailable):
		h.respondJSON(w, http.StatusServiceUnavailable, models.ErrorResponse{ID: id, Error: errorMessage(err)})
		return
	default:
		h.logger.Warn("Prediction failed", zap.String("id", id), zap.Error(err))
		h.respondJSON(w, http.StatusInternalServerError, models.ErrorResponse{ID: id, Error: errorMessage(err)})
		return
	}

	h.respondJSON(w, http.StatusOK, models.PredictResponse{
		ID:      id,
		ClassID: rec.ClassID,
		Crop:    rec.Crop,
		NoCrop:  rec.NoCrop,
		Message: rec.Message,
	})
}
