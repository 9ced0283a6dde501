// Package animation fetches the decorative Lottie animation shown on the
// dashboard's landing tab.
package animation

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// DefaultTimeout bounds a single fetch.
const DefaultTimeout = 5 * time.Second

// maxBody caps the animation document size.
const maxBody = 4 << 20

// Result labels reported to the Observer.
const (
	ResultOK      = "ok"
	ResultStatus  = "bad_status"
	ResultError   = "error"
	ResultInvalid = "invalid_json"
)

// Fetcher downloads an animation document. A failed fetch yields nil.
type Fetcher struct {
	URL     string
	Timeout time.Duration
	Client  *http.Client
	Logger  *zap.Logger
	// Observer, if set, is called with one of the Result labels after each fetch.
	Observer func(result string)
}

// New returns a Fetcher for url with the default client.
func New(url string, timeout time.Duration, logger *zap.Logger) *Fetcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Fetcher{URL: url, Timeout: timeout, Client: http.DefaultClient, Logger: logger}
}

// Fetch performs one GET of the animation URL. Any failure (transport error,
// a non-200 status, or a body that is not JSON) returns nil. No retry.
func (f *Fetcher) Fetch(ctx context.Context) json.RawMessage {
	doc, err := f.fetch(ctx)
	result := ResultOK
	if err != nil {
		result = classify(err)
		if f.Logger != nil {
			f.Logger.Debug("animation unavailable", zap.String("url", f.URL), zap.Error(err))
		}
	}
	if f.Observer != nil {
		f.Observer(result)
	}
	return doc
}

type statusError struct{ code int }

func (e *statusError) Error() string { return fmt.Sprintf("unexpected status %d", e.code) }

type invalidError struct{}

func (invalidError) Error() string { return "response is not a JSON document" }

func classify(err error) string {
	switch err.(type) {
	case *statusError:
		return ResultStatus
	case invalidError:
		return ResultInvalid
	}
	return ResultError
}

func (f *Fetcher) fetch(ctx context.Context) (json.RawMessage, error) {
	if f.URL == "" {
		return nil, fmt.Errorf("no animation url configured")
	}
	timeout := f.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get animation: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, &statusError{code: resp.StatusCode}
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, fmt.Errorf("read animation: %w", err)
	}
	if !json.Valid(body) {
		return nil, invalidError{}
	}
	return json.RawMessage(body), nil
}
