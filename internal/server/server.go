// Package server implements the book-rating dashboard over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/KaramelBytes/bookdash/internal/analysis"
	"github.com/KaramelBytes/bookdash/internal/animation"
	"github.com/KaramelBytes/bookdash/internal/dataset"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"go.uber.org/zap"
)

// Options configures a Server.
type Options struct {
	// Slider bounds the year range selector; requests are clamped into it.
	Slider   dataset.YearRange
	Analysis analysis.Options
	// Animation is optional; nil disables the decorative header.
	Animation *animation.Fetcher
	Logger    *zap.Logger
}

// DefaultSlider is the year selector's range.
var DefaultSlider = dataset.YearRange{Lo: 1950, Hi: 2020}

// Server serves the dashboard page, its charts and a JSON API. The dataset
// is shared read-only; per-user state is the range carried by each request.
type Server struct {
	src     *dataset.Source
	opt     Options
	logger  *zap.Logger
	metrics *Metrics
	router  chi.Router

	animOnce sync.Once
	anim     json.RawMessage
}

// New builds a Server over src.
func New(src *dataset.Source, opt Options) *Server {
	if opt.Slider == (dataset.YearRange{}) {
		opt.Slider = DefaultSlider
	}
	if opt.Analysis.TopN <= 0 {
		opt.Analysis = analysis.DefaultOptions()
	}
	if opt.Logger == nil {
		opt.Logger = zap.NewNop()
	}
	s := &Server{src: src, opt: opt, logger: opt.Logger}
	s.metrics = newMetrics(func() float64 {
		if ds := src.Current(); ds != nil {
			return float64(len(ds.Records))
		}
		return 0
	})
	if opt.Animation != nil {
		prev := opt.Animation.Observer
		opt.Animation.Observer = func(result string) {
			s.metrics.observeAnimation(result)
			if prev != nil {
				prev(result)
			}
		}
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/", s.handleIndex)
	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	r.Get("/charts/{name}.svg", s.handleChart)
	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		r.Get("/view", s.handleView)
		r.Get("/bounds", s.handleBounds)
	})
	return r
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// compute filters the current dataset and derives every aggregate.
func (s *Server) compute(endpoint string, rng dataset.YearRange) *analysis.View {
	start := time.Now()
	var records []dataset.Record
	if ds := s.src.Current(); ds != nil {
		records = ds.Records
	}
	v := analysis.Compute(records, rng, s.opt.Analysis)
	s.metrics.recomputes.WithLabelValues(endpoint).Inc()
	s.metrics.recomputeDur.Observe(time.Since(start).Seconds())
	return v
}

// animationDoc fetches the decorative document once per process, detached
// from the triggering request's cancellation.
func (s *Server) animationDoc(ctx context.Context) json.RawMessage {
	if s.opt.Animation == nil {
		return nil
	}
	s.animOnce.Do(func() {
		s.anim = s.opt.Animation.Fetch(context.WithoutCancel(ctx))
	})
	return s.anim
}

// Run listens on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("dashboard listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()
	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen %s: %w", addr, err)
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
