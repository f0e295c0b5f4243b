// Package httpsink persists UserActivity records by POSTing their JSON shape
// verbatim to an HTTP endpoint.
package httpsink

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-gateway"
)

// Sink POSTs activity records to a single endpoint.
type Sink struct {
	endpoint string
	token    string
	client   *http.Client
}

// Option customizes a Sink.
type Option func(*Sink)

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(s *Sink) {
		if client != nil {
			s.client = client
		}
	}
}

// WithBearerToken attaches an Authorization header to every request.
func WithBearerToken(token string) Option {
	return func(s *Sink) {
		s.token = token
	}
}

// New creates a Sink for endpoint.
func New(endpoint string, opts ...Option) *Sink {
	s := &Sink{
		endpoint: endpoint,
		client:   &http.Client{Timeout: 10 * time.Second},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}

	return s
}

var _ gateway.AuditSink = &Sink{}

// Persist implements gateway.AuditSink.
func (s *Sink) Persist(ctx context.Context, activity gateway.UserActivity) error {
	body, err := json.Marshal(activity)
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to marshal activity")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewBuffer(body))
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to build sink request")
	}
	req.Header.Set("Content-Type", "application/json")
	if s.token != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", s.token))
	}

	res, err := s.client.Do(req)
	if err != nil {
		return errors.Wrap(err, errors.CategoryOperation, "audit sink request failed")
	}
	defer res.Body.Close()

	if _, err := io.ReadAll(res.Body); err != nil {
		return errors.Wrap(err, errors.CategoryOperation, "failed to read sink response")
	}

	if res.StatusCode >= http.StatusBadRequest {
		return errors.New(
			fmt.Sprintf("audit sink returned status code %d", res.StatusCode),
			errors.CategoryOperation,
		)
	}

	return nil
}
