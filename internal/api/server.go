// Package api exposes the launchpad over HTTP.
package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"agent-launchpad/internal/apperr"
	"agent-launchpad/internal/domain"
	"agent-launchpad/internal/fees"
	"agent-launchpad/internal/launch"
	"agent-launchpad/internal/observability"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

// RequestIDHeader carries the per-request id in both directions.
const RequestIDHeader = "X-Request-ID"

// Launcher is the launch orchestrator.
type Launcher interface {
	CreatePost(ctx context.Context, req launch.CreatePostRequest) (*launch.CreatePostResult, error)
	Launch(ctx context.Context, req launch.LaunchRequest) (*launch.LaunchResult, error)
	Confirm(ctx context.Context, mint, signature string) (*domain.Token, error)
	SubmitSignedTransaction(ctx context.Context, signedTx string) (string, error)
	GetToken(ctx context.Context, mint string) (*domain.Token, error)
	ListTokens(ctx context.Context) ([]*domain.Token, error)
	Stats(ctx context.Context) (*launch.Stats, error)
}

// FeeEngine claims and distributes creator fees.
type FeeEngine interface {
	Claim(ctx context.Context, mint string, priorityFeeSOL *float64) (*fees.ClaimResult, error)
	Distribute(ctx context.Context, mint string, amount *uint64) (*fees.DistributeResult, error)
	Status(ctx context.Context, mint string) (*fees.Status, error)
	History(ctx context.Context, mint string) ([]*domain.FeeEvent, error)
}

var (
	_ Launcher  = (*launch.Service)(nil)
	_ FeeEngine = (*fees.Engine)(nil)
)

// Server routes HTTP requests to the services.
type Server struct {
	launcher Launcher
	fees     FeeEngine
	log      *slog.Logger
	now      func() time.Time
	metrics  http.Handler
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.log = l }
}

// WithClock overrides time.Now for the health endpoint.
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// WithMetricsHandler replaces the prometheus handler served at /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) { s.metrics = h }
}

// NewServer creates a Server.
func NewServer(l Launcher, f FeeEngine, opts ...Option) *Server {
	s := &Server{
		launcher: l,
		fees:     f,
		log:      slog.Default(),
		now:      time.Now,
		metrics:  observability.Handler(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.Use(s.requestID, s.instrument)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	api.HandleFunc("/moltbook/post", s.handleCreatePost).Methods(http.MethodPost)
	api.HandleFunc("/launch", s.handleLaunch).Methods(http.MethodPost)
	api.HandleFunc("/launch/confirm", s.handleConfirm).Methods(http.MethodPost)
	api.HandleFunc("/tx/send", s.handleSendTx).Methods(http.MethodPost)
	api.HandleFunc("/token/{mint}", s.handleGetToken).Methods(http.MethodGet)
	api.HandleFunc("/tokens", s.handleListTokens).Methods(http.MethodGet)
	api.HandleFunc("/stats", s.handleStats).Methods(http.MethodGet)
	api.HandleFunc("/fees/claim", s.handleClaim).Methods(http.MethodPost)
	api.HandleFunc("/fees/distribute", s.handleDistribute).Methods(http.MethodPost)
	api.HandleFunc("/fees/{mint}", s.handleFeeStatus).Methods(http.MethodGet)
	api.HandleFunc("/fees/{mint}/history", s.handleFeeHistory).Methods(http.MethodGet)

	r.Handle("/metrics", s.metrics).Methods(http.MethodGet)
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		s.writeError(w, req, apperr.NotFound("Route not found"))
	})
	return r
}

type ctxKey int

const requestIDKey ctxKey = iota

// RequestID returns the id assigned to the request carrying ctx.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

func (s *Server) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey, id)))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		route := r.URL.Path
		if cur := mux.CurrentRoute(r); cur != nil {
			if tpl, err := cur.GetPathTemplate(); err == nil {
				route = tpl
			}
		}
		elapsed := time.Since(start)
		observability.RecordHTTPRequest(route, rec.status, elapsed.Seconds())
		s.log.Debug("http request",
			"request_id", RequestID(r.Context()),
			"method", r.Method,
			"route", route,
			"status", rec.status,
			"duration", elapsed,
		)
	})
}

// detached keeps orchestrations running when the client disconnects, so a
// committed step is never abandoned halfway.
func detached(r *http.Request) context.Context {
	return context.WithoutCancel(r.Context())
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperr.Validation("Invalid JSON body")
	}
	return nil
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Warn("write response failed", "error", err)
	}
}

type errorBody struct {
	Code    apperr.Code `json:"code"`
	Message string      `json:"message"`
}

type errorResponse struct {
	Success bool      `json:"success"`
	Error   errorBody `json:"error"`
}

// StatusFor maps an error to its HTTP status.
func StatusFor(err error) int {
	if apperr.CodeOf(err) == apperr.CodeNotFound {
		return http.StatusNotFound
	}
	if apperr.ClientFault(err) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusFor(err)
	code, msg := apperr.Public(err)

	attrs := []any{"request_id", RequestID(r.Context()), "path", r.URL.Path, "code", code, "error", err}
	if e, ok := apperr.From(err); ok {
		for k, v := range e.Metadata() {
			attrs = append(attrs, k, v)
		}
	}
	if status >= http.StatusInternalServerError {
		s.log.Error("request failed", attrs...)
	} else {
		s.log.Info("request rejected", attrs...)
	}

	s.writeJSON(w, status, errorResponse{Error: errorBody{Code: code, Message: msg}})
}
