package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"centre-block/internal/metrics"
	"centre-block/internal/models"

	"go.uber.org/zap"
)

// FailureKind classifies why a directory fetch produced no centres.
type FailureKind string

const (
	// ApiUnavailable covers network errors, timeouts and non-2xx replies.
	ApiUnavailable FailureKind = "api_unavailable"
	// InvalidResponse means the body was not JSON or not a JSON array.
	InvalidResponse FailureKind = "invalid_response"
)

// DirectoryError is returned for every failed directory fetch.
type DirectoryError struct {
	Kind FailureKind
	Err  error
}

func (e *DirectoryError) Error() string {
	return fmt.Sprintf("centre directory %s: %v", e.Kind, e.Err)
}

func (e *DirectoryError) Unwrap() error { return e.Err }

// IsFailureKind reports whether err is a DirectoryError of the given kind.
func IsFailureKind(err error, kind FailureKind) bool {
	var dErr *DirectoryError
	return errors.As(err, &dErr) && dErr.Kind == kind
}

// maxDirectoryBytes bounds how much of an upstream body is read.
const maxDirectoryBytes = 16 << 20

// Directory is one successful fetch: the body exactly as received plus the
// decoded centre objects.
type Directory struct {
	Raw     json.RawMessage
	Centres []models.CentreRecord
}

// DirectoryFetcher is what the resolver needs from a directory client.
type DirectoryFetcher interface {
	FetchAllCentres(ctx context.Context) ([]models.CentreRecord, error)
}

// DirectoryClient reads the whole centre directory from one fixed endpoint.
// It never retries; callers decide whether to try again.
type DirectoryClient struct {
	url        string
	userAgent  string
	maxBytes   int64
	httpClient *http.Client
	logr       *zap.Logger
}

// NewDirectoryClient creates a client for url with a bounded timeout.
func NewDirectoryClient(url, userAgent string, timeout time.Duration, logr *zap.Logger) *DirectoryClient {
	return &DirectoryClient{
		url:        url,
		userAgent:  userAgent,
		maxBytes:   maxDirectoryBytes,
		httpClient: &http.Client{Timeout: timeout},
		logr:       logr,
	}
}

// FetchAllCentres returns the decoded centre records.
func (c *DirectoryClient) FetchAllCentres(ctx context.Context) ([]models.CentreRecord, error) {
	dir, err := c.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	return dir.Centres, nil
}

// Fetch issues a single GET for the directory and validates that the body is
// a JSON array.
func (c *DirectoryClient) Fetch(ctx context.Context) (*Directory, error) {
	start := time.Now()
	dir, err := c.fetch(ctx)
	metrics.DirectoryFetchDurationMs.Observe(float64(time.Since(start).Milliseconds()))

	if err != nil {
		var dErr *DirectoryError
		if errors.As(err, &dErr) {
			metrics.DirectoryFetchTotal.WithLabelValues(string(dErr.Kind)).Inc()
		}
		c.logr.Warn("directory fetch failed",
			zap.String("url", c.url),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		return nil, err
	}

	metrics.DirectoryFetchTotal.WithLabelValues("ok").Inc()
	c.logr.Debug("directory fetched",
		zap.Int("centres", len(dir.Centres)),
		zap.Duration("elapsed", time.Since(start)))
	return dir, nil
}

func (c *DirectoryClient) fetch(ctx context.Context) (*Directory, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, &DirectoryError{Kind: ApiUnavailable, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &DirectoryError{Kind: ApiUnavailable, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, &DirectoryError{
			Kind: ApiUnavailable,
			Err:  fmt.Errorf("unexpected status %d", resp.StatusCode),
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBytes+1))
	if err != nil {
		return nil, &DirectoryError{Kind: ApiUnavailable, Err: fmt.Errorf("read body: %w", err)}
	}
	if int64(len(body)) > c.maxBytes {
		return nil, &DirectoryError{
			Kind: InvalidResponse,
			Err:  fmt.Errorf("directory too large: over %d bytes", c.maxBytes),
		}
	}

	centres, err := decodeCentres(body)
	if err != nil {
		return nil, &DirectoryError{Kind: InvalidResponse, Err: err}
	}

	return &Directory{Raw: body, Centres: centres}, nil
}

// decodeCentres accepts only a JSON array. Elements that are not objects are
// dropped since they cannot carry an id.
func decodeCentres(body []byte) ([]models.CentreRecord, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var payload any
	if err := dec.Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode body: %w", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("trailing data after JSON value")
	}

	items, ok := payload.([]any)
	if !ok {
		return nil, fmt.Errorf("expected a JSON array, got %T", payload)
	}

	centres := make([]models.CentreRecord, 0, len(items))
	for _, item := range items {
		if obj, ok := item.(map[string]any); ok {
			centres = append(centres, models.CentreRecord(obj))
		}
	}
	return centres, nil
}
