// Package dataset fetches the FRE filings index and the compensation-plans
// workbook and turns them into typed, name-normalized records.
package dataset

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"FRELookup/internal/domain"
	"FRELookup/internal/ports"
)

const (
	defaultTimeout = 15 * time.Second
	maxBodyBytes   = 64 << 20
)

// Loader downloads both datasets over HTTP.
type Loader struct {
	client     *http.Client
	filingsURL string
	plansURL   string
	maxBody    int64
	logger     *slog.Logger
}

var _ ports.DatasetSource = (*Loader)(nil)

// NewLoader wires an HTTP client; a nil client gets a 15s timeout.
func NewLoader(client *http.Client, filingsURL, plansURL string, log *slog.Logger) *Loader {
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	return &Loader{
		client:     client,
		filingsURL: filingsURL,
		plansURL:   plansURL,
		maxBody:    maxBodyBytes,
		logger:     log,
	}
}

// Load fetches and parses both datasets. Any failure is reported as
// domain.ErrDataUnavailable and no partial result is returned.
func (l *Loader) Load(ctx context.Context) (domain.Filings, domain.Plans, error) {
	started := time.Now()

	raw, err := l.fetch(ctx, l.filingsURL)
	if err != nil {
		return domain.Filings{}, domain.Plans{}, unavailable("filings", err)
	}
	filings, err := ParseFilings(bytes.NewReader(raw))
	if err != nil {
		return domain.Filings{}, domain.Plans{}, unavailable("filings", err)
	}

	raw, err = l.fetch(ctx, l.plansURL)
	if err != nil {
		return domain.Filings{}, domain.Plans{}, unavailable("plans", err)
	}
	plans, err := ParsePlans(bytes.NewReader(raw))
	if err != nil {
		return domain.Filings{}, domain.Plans{}, unavailable("plans", err)
	}

	l.debug("datasets loaded",
		"filings", len(filings.Records),
		"plans", len(plans.Records),
		"elapsed", time.Since(started))
	return filings, plans, nil
}

func (l *Loader) fetch(ctx context.Context, resourceURL string) ([]byte, error) {
	if resourceURL == "" {
		return nil, fmt.Errorf("resource url is not configured")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, resourceURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", "FRELookup/1.0")

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request %s: %w", resourceURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s returned %s", resourceURL, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, l.maxBody+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", resourceURL, err)
	}
	if int64(len(body)) > l.maxBody {
		return nil, fmt.Errorf("%s exceeds %d bytes", resourceURL, l.maxBody)
	}
	return body, nil
}

func unavailable(which string, err error) error {
	return fmt.Errorf("%w: %s: %v", domain.ErrDataUnavailable, which, err)
}

func (l *Loader) debug(msg string, args ...interface{}) {
	if l.logger != nil {
		l.logger.Debug(msg, args...)
	}
}
