package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/ps-vitor/salgspriser/internal/api/models"
	"github.com/ps-vitor/salgspriser/internal/export"
	"github.com/ps-vitor/salgspriser/internal/services/property"
)

type APIHandler struct {
	propertyService *property.PropertyService
	metrics         http.Handler
	log             zerolog.Logger
}

// NewAPIHandler serves the stored records. metrics may be nil.
func NewAPIHandler(propertyService *property.PropertyService, metrics http.Handler, log zerolog.Logger) *APIHandler {
	return &APIHandler{propertyService: propertyService, metrics: metrics, log: log}
}

func (h *APIHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/health", h.handleHealth).Methods(http.MethodGet)
	if h.metrics != nil {
		r.Handle("/metrics", h.metrics).Methods(http.MethodGet)
	}
	r.HandleFunc("/api/records", h.handleRecords).Methods(http.MethodGet)
	r.HandleFunc("/api/records.geojson", h.handleGeoJSON).Methods(http.MethodGet)
	r.HandleFunc("/api/summary", h.handleSummary).Methods(http.MethodGet)
}

func (h *APIHandler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *APIHandler) handleRecords(w http.ResponseWriter, r *http.Request) {
	records, err := h.propertyService.FindAll(r.Context())
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, models.FromRecords(records))
}

func (h *APIHandler) handleGeoJSON(w http.ResponseWriter, r *http.Request) {
	records, err := h.propertyService.FindAll(r.Context())
	if err != nil {
		h.fail(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/geo+json")
	if err := export.WriteGeoJSON(w, records); err != nil {
		h.log.Error().Err(err).Msg("write geojson")
	}
}

func (h *APIHandler) handleSummary(w http.ResponseWriter, r *http.Request) {
	sum, err := h.propertyService.Summary(r.Context())
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

func (h *APIHandler) fail(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.log.Error().Err(err).Int("status", status).Msg("request failed")
	}
	writeJSON(w, status, models.Error{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
