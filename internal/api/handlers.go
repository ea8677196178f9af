// Package api serves predictions, metrics and reference data over HTTP.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/yourusername/chase-predictor/internal/match"
	"github.com/yourusername/chase-predictor/internal/metrics"
	"github.com/yourusername/chase-predictor/internal/prediction"
	"github.com/yourusername/chase-predictor/internal/reference"
)

// MaxBodySize limits the size of request bodies and live frames to 64KB
const MaxBodySize = 64 << 10

// Predictor is the prediction surface the handlers call
type Predictor interface {
	Predict(ctx context.Context, req prediction.Request) (*prediction.Outcome, error)
	Metrics(state match.MatchState) match.DerivedMetrics
	Timeline(state match.MatchState) *prediction.Timeline
}

// Config wires the handler's collaborators. RateLimit is requests per second
// across all clients; zero disables limiting.
type Config struct {
	Predictor      Predictor
	Catalog        *reference.Catalog
	Logger         *logrus.Logger
	AllowedOrigins []string
	RateLimit      float64
	RateBurst      int
	MetricsEnabled bool
	MetricsPath    string
}

// Handler holds the HTTP handlers
type Handler struct {
	predictor Predictor
	catalog   *reference.Catalog
	logger    *logrus.Entry
	limiter   *rate.Limiter
	upgrader  websocket.Upgrader
	cfg       Config
}

// New creates a handler
func New(cfg Config) *Handler {
	limiter := rate.NewLimiter(rate.Inf, 0)
	if cfg.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateBurst)
	}

	h := &Handler{
		predictor: cfg.Predictor,
		catalog:   cfg.Catalog,
		logger:    cfg.Logger.WithField("component", "api"),
		limiter:   limiter,
		cfg:       cfg,
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin:     h.checkOrigin,
	}
	return h
}

// Routes builds the router
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(h.requestID)
	r.Use(h.instrument)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: h.cfg.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", RequestIDHeader},
		ExposedHeaders: []string{RequestIDHeader},
		MaxAge:         300,
	}))

	if h.cfg.MetricsEnabled {
		path := h.cfg.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		r.Handle(path, metrics.Handler())
	}

	r.Route("/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(h.rateLimit)
			r.Post("/predictions", h.CreatePrediction)
			r.Post("/metrics", h.ComputeMetrics)
			r.Post("/timeline", h.ProjectTimeline)
		})

		r.Get("/live", h.Live)

		r.Route("/reference", func(r chi.Router) {
			r.Get("/teams", h.ListTeams)
			r.Get("/teams/{team}", h.GetTeam)
			r.Get("/venues", h.ListVenues)
			r.Get("/matchup", h.GetMatchup)
		})
	})

	return r
}

// NewHTTPServer wraps the routes in a server with the configured timeouts
func NewHTTPServer(addr string, handler http.Handler, readTimeout, writeTimeout time.Duration) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadTimeout:       readTimeout,
		ReadHeaderTimeout: readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       60 * time.Second,
	}
}

func (h *Handler) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || len(h.cfg.AllowedOrigins) == 0 {
		return true
	}
	for _, allowed := range h.cfg.AllowedOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}
	return false
}
