package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/vsinha/picklist/pkg/application/dto"
	"github.com/vsinha/picklist/pkg/domain/services/allocation"
)

// Allocator runs one pick list allocation
type Allocator interface {
	Allocate(ctx context.Context, req dto.AllocateRequest) (*dto.PickListResult, error)
}

// RouterConfig configures the HTTP surface
type RouterConfig struct {
	AllowedOrigins []string
	// Gatherer serves /metrics when set
	Gatherer prometheus.Gatherer
	Logger   zerolog.Logger
	// MaxBodyBytes caps request bodies; zero means 1 MiB
	MaxBodyBytes int64
}

type handler struct {
	allocator Allocator
	logger    zerolog.Logger
	maxBody   int64
}

// NewRouter builds the API routes over allocator
func NewRouter(allocator Allocator, cfg RouterConfig) http.Handler {
	h := &handler{
		allocator: allocator,
		logger:    cfg.Logger,
		maxBody:   cfg.MaxBodyBytes,
	}
	if h.maxBody <= 0 {
		h.maxBody = 1 << 20
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(h.logRequests)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	if cfg.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/pick-lists/allocate", h.allocate)
	})

	return r
}

type errorResponse struct {
	Error     string `json:"error"`
	LineIndex *int   `json:"line_index,omitempty"`
	ItemCode  string `json:"item_code,omitempty"`
}

func (h *handler) allocate(w http.ResponseWriter, r *http.Request) {
	var req dto.AllocateRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, h.maxBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body: " + err.Error()})
		return
	}

	result, err := h.allocator.Allocate(r.Context(), req)
	if err != nil {
		var pe *allocation.PreconditionError
		if errors.As(err, &pe) {
			resp := errorResponse{Error: err.Error(), ItemCode: string(pe.ItemCode)}
			if pe.LineIndex >= 0 {
				idx := pe.LineIndex
				resp.LineIndex = &idx
			}
			writeJSON(w, http.StatusUnprocessableEntity, resp)
			return
		}
		hlog(h.logger, r).Error().Err(err).Msg("allocation failed")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "allocation failed"})
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (h *handler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		hlog(h.logger, r).Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}

func hlog(logger zerolog.Logger, r *http.Request) *zerolog.Logger {
	l := logger.With().Str("request_id", middleware.GetReqID(r.Context())).Logger()
	return &l
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
