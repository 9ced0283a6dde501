package server

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strconv"
	"time"

	"github.com/KaramelBytes/bookdash/internal/charts"
	"github.com/KaramelBytes/bookdash/internal/dataset"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"go.uber.org/zap"
)

// RangeError reports an unusable lo/hi query parameter.
type RangeError struct {
	Param string
	Value string
	Err   error
}

func (e *RangeError) Error() string {
	if e.Param == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("invalid %s %q: %v", e.Param, e.Value, e.Err)
}

func (e *RangeError) Unwrap() error { return e.Err }

// parseRange reads lo and hi from the query. Missing values default to the
// slider bounds; present values are clamped into them. A range that shares
// no year with the slider is rejected.
func (s *Server) parseRange(r *http.Request) (dataset.YearRange, error) {
	rng := s.opt.Slider
	q := r.URL.Query()
	for _, p := range []struct {
		name string
		dst  *int
	}{{"lo", &rng.Lo}, {"hi", &rng.Hi}} {
		raw := q.Get(p.name)
		if raw == "" {
			continue
		}
		v, err := strconv.Atoi(raw)
		if err != nil {
			return rng, &RangeError{Param: p.name, Value: raw, Err: errors.New("not an integer year")}
		}
		*p.dst = v
	}
	if err := rng.Validate(); err != nil {
		return rng, &RangeError{Err: err}
	}
	if !rng.Overlaps(s.opt.Slider) {
		return rng, &RangeError{Err: fmt.Errorf("year range %s lies outside %s", rng, s.opt.Slider)}
	}
	return rng.Clamp(s.opt.Slider), nil
}

type errorBody struct {
	Error string `json:"error"`
}

func renderError(w http.ResponseWriter, r *http.Request, status int, err error) {
	render.Status(r, status)
	render.JSON(w, r, errorBody{Error: err.Error()})
}

func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	rng, err := s.parseRange(r)
	if err != nil {
		renderError(w, r, http.StatusBadRequest, err)
		return
	}
	render.JSON(w, r, s.compute("view", rng))
}

type boundsBody struct {
	Dataset  *dataset.YearRange `json:"dataset"`
	Slider   dataset.YearRange  `json:"slider"`
	Records  int                `json:"records"`
	LoadedAt time.Time          `json:"loaded_at"`
}

func (s *Server) handleBounds(w http.ResponseWriter, r *http.Request) {
	body := boundsBody{Slider: s.opt.Slider}
	if ds := s.src.Current(); ds != nil {
		if b, ok := ds.Bounds(); ok {
			body.Dataset = &b
		}
		body.Records = len(ds.Records)
		body.LoadedAt = ds.LoadedAt
	}
	render.JSON(w, r, body)
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	rng, err := s.parseRange(r)
	if err != nil {
		renderError(w, r, http.StatusBadRequest, err)
		return
	}
	name := chi.URLParam(r, "name")
	if !slices.Contains(charts.SVGNames, name) {
		renderError(w, r, http.StatusNotFound, fmt.Errorf("%w: %s", charts.ErrUnknownChart, name))
		return
	}
	var buf bytes.Buffer
	err = charts.Render(&buf, name, s.compute("chart", rng))
	if errors.Is(err, charts.ErrNoData) {
		buf.Reset()
		err = charts.Placeholder(&buf, "No data in the selected range")
	}
	if err != nil {
		s.logger.Error("render chart", zap.String("chart", name), zap.Error(err))
		renderError(w, r, http.StatusInternalServerError, errors.New("chart rendering failed"))
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	if s.src.Current() == nil {
		status = "no dataset"
		render.Status(r, http.StatusServiceUnavailable)
	}
	render.JSON(w, r, map[string]string{"status": status})
}
