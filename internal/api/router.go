package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"gsweb/internal/logger"
	"gsweb/internal/metrics"
	"gsweb/internal/models"
	"gsweb/internal/profiles"

	"github.com/google/uuid"
)

// maxBodyBytes bounds a profile table upload.
const maxBodyBytes = 1 << 20

// API serves the TX profile table over HTTP.
type API struct {
	service *profiles.Service
	logger  logger.Logger
}

// errorResponse is the JSON body of every non-2xx reply.
type errorResponse struct {
	Error  string              `json:"error"`
	Fields []models.FieldError `json:"fields,omitempty"`
}

// New builds the HTTP handler. collector may be nil, in which case requests
// are not instrumented and /metrics is not served.
func New(service *profiles.Service, log logger.Logger, collector *metrics.Collector) http.Handler {
	api := &API{
		service: service,
		logger:  log,
	}

	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/v1/ping", collector.Instrument("ping", api.handlePing))
	mux.HandleFunc("GET /api/v1/txprofiles", collector.Instrument("txprofiles", api.handleGetProfiles))
	mux.HandleFunc("POST /api/v1/txprofiles", collector.Instrument("txprofiles", api.handleReplaceProfiles))
	mux.HandleFunc("PUT /api/v1/txprofiles", collector.Instrument("txprofiles", api.handleReplaceProfiles))
	mux.HandleFunc("GET /api/v1/txprofiles/defaults", collector.Instrument("txprofiles_defaults", api.handleDefaults))
	if collector != nil {
		mux.Handle("GET /metrics", collector.Handler())
	}

	return api.withRequestID(mux)
}

// withRequestID tags every request with an X-Request-ID, keeping one the
// caller already sent.
func (a *API) withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.New().String()
		}
		w.Header().Set("X-Request-ID", id)
		a.logger.Debugf("%s %s request_id=%s", r.Method, r.URL.Path, id)
		next.ServeHTTP(w, r)
	})
}

func (a *API) handlePing(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (a *API) handleGetProfiles(w http.ResponseWriter, r *http.Request) {
	list, err := a.service.Get(r.Context())
	if err != nil {
		a.logger.Errorf("Failed to load profiles: %v", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (a *API) handleReplaceProfiles(w http.ResponseWriter, r *http.Request) {
	var list []models.TxProfile
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&list); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: fmt.Sprintf("invalid profile list: %v", err)})
		return
	}

	err := a.service.Replace(r.Context(), list)
	var verrs models.ValidationErrors
	switch {
	case err == nil:
		w.WriteHeader(http.StatusNoContent)
	case errors.As(err, &verrs):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "profile validation failed", Fields: verrs})
	case errors.Is(err, profiles.ErrInvalidPartition):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	default:
		a.logger.Errorf("Failed to replace profiles: %v", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
	}
}

func (a *API) handleDefaults(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.service.Axis().Ladder())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
