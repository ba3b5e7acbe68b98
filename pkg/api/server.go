// Package api serves the grid codec over HTTP as a small JSON API.
package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/1F47E/nato-grid/pkg/gridcode"
	"github.com/1F47E/nato-grid/pkg/places"
	"github.com/go-playground/validator/v10"
	ut "github.com/go-playground/universal-translator"
	"github.com/julienschmidt/httprouter"
	"github.com/justinas/alice"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

type Config struct {
	Port    int
	Timeout time.Duration
	BaseURL string

	// RateLimit caps requests per second across all clients; zero disables it.
	RateLimit float64
	Burst     int
}

type Server struct {
	codec    *gridcode.Codec
	places   *places.Registry
	cfg      Config
	log      *zap.Logger
	validate *validator.Validate
	trans    ut.Translator
	gatherer *prometheus.Registry
	metrics  *metrics
	limiter  *rate.Limiter
}

// NewServer wires the handlers. registry may be nil, in which case place
// lookups report not found.
func NewServer(codec *gridcode.Codec, registry *places.Registry, cfg Config, log *zap.Logger) *Server {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	var limiter *rate.Limiter
	if cfg.RateLimit > 0 {
		burst := cfg.Burst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}

	validate, trans := newValidator()
	return &Server{
		codec:    codec,
		places:   registry,
		cfg:      cfg,
		log:      log,
		validate: validate,
		trans:    trans,
		gatherer: reg,
		metrics:  newMetrics(reg),
		limiter:  limiter,
	}
}

// Handler returns the router wrapped in the middleware chain.
func (s *Server) Handler() http.Handler {
	router := httprouter.New()

	router.GET("/api/encode", s.encode)
	router.GET("/api/decode", s.decode)
	router.GET("/api/parse", s.parse)
	router.GET("/api/share", s.shareLink)
	router.GET("/api/places/nearest", s.nearest)
	router.GET("/health", s.health)
	router.Handler(http.MethodGet, "/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))

	router.NotFound = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.notFoundResponse(w, r, errors.New("the requested resource could not be found"))
	})
	router.MethodNotAllowed = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.errorResponse(w, r, http.StatusMethodNotAllowed,
			fmt.Sprintf("the %s method is not supported for this resource", r.Method))
	})

	corsHandler := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	})

	return alice.New(
		corsHandler.Handler,
		s.logRequests,
		s.metrics.middleware(router),
		s.rateLimit,
		s.recoverPanic,
	).Then(router)
}

// Run listens on the configured port until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", s.cfg.Port),
		Handler: s.Handler(),
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
		ReadTimeout:       s.cfg.Timeout,
		WriteTimeout:      s.cfg.Timeout,
		IdleTimeout:       4 * s.cfg.Timeout,
		ReadHeaderTimeout: s.cfg.Timeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		s.log.Info("API listening", zap.Int("port", s.cfg.Port))
		serverErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.log.Info("Context canceled, shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.Timeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
