package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/glorpus-work/apod/internal/logger"
	apoderrors "github.com/glorpus-work/apod/pkg/errors"
	"github.com/glorpus-work/apod/pkg/fsutil"
	"github.com/glorpus-work/apod/pkg/metrics"
)

const (
	// DefaultUserAgent is sent when no user agent is configured.
	DefaultUserAgent = "apod/1.0"

	chunkSize = 4 * 1024
)

// HTTPFetcher is the HTTP implementation of Fetcher.
type HTTPFetcher struct {
	client    *http.Client
	userAgent string
	metrics   *metrics.Metrics
}

// Option configures an HTTPFetcher.
type Option func(*HTTPFetcher)

// WithMetrics records fetch counters on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(f *HTTPFetcher) { f.metrics = m }
}

// WithHTTPClient replaces the underlying client. The timeout passed to
// NewHTTPFetcher is ignored in that case.
func WithHTTPClient(c *http.Client) Option {
	return func(f *HTTPFetcher) { f.client = c }
}

// NewHTTPFetcher creates a fetcher with the given timeout and user agent.
func NewHTTPFetcher(timeout time.Duration, userAgent string, opts ...Option) *HTTPFetcher {
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	f := &HTTPFetcher{
		client:    &http.Client{Timeout: timeout},
		userAgent: userAgent,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch implements Fetcher.
func (f *HTTPFetcher) Fetch(ctx context.Context, req Request) (res Result, err error) {
	start := time.Now()
	defer func() {
		f.metrics.ObserveFetch(req.Kind.String(), outcomeOf(err), time.Since(start), res.Bytes)
	}()

	if err := ctx.Err(); err != nil {
		return Result{}, apoderrors.Cancelled(err)
	}
	if req.Destination == "" {
		return Result{}, fmt.Errorf("empty destination: %w", apoderrors.ErrInvalidPath)
	}

	resp, err := f.doRequest(ctx, req.URL)
	if err != nil {
		return Result{}, err
	}
	defer func() { _ = resp.Body.Close() }()

	tmp, err := fsutil.CreateTempSibling(req.Destination)
	if err != nil {
		return Result{}, &apoderrors.TransferError{Op: "create temp file", Err: err}
	}
	tmpPath := tmp.Name()

	written, err := copyWithProgress(ctx, tmp, resp.Body, resp.ContentLength, req.OnProgress)
	if closeErr := tmp.Close(); err == nil && closeErr != nil {
		err = &apoderrors.TransferError{Op: "close temp file", Err: closeErr}
	}
	if err != nil {
		_ = os.Remove(tmpPath)
		return Result{}, err
	}

	if err := fsutil.Move(tmpPath, req.Destination); err != nil {
		_ = os.Remove(tmpPath)
		return Result{}, &apoderrors.TransferError{Op: "finalize download", Err: err}
	}

	logger.Debug("Fetched artifact", logger.Fields{
		"url":   req.URL,
		"path":  req.Destination,
		"bytes": written,
	})
	return Result{Path: req.Destination, Bytes: written}, nil
}

func (f *HTTPFetcher) doRequest(ctx context.Context, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, http.NoBody)
	if err != nil {
		return nil, &apoderrors.TransferError{Op: "create request", Err: err}
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, apoderrors.Cancelled(ctxErr)
		}
		return nil, &apoderrors.TransferError{Op: "request", Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_ = resp.Body.Close()
		return nil, &apoderrors.RemoteError{URL: rawURL, StatusCode: resp.StatusCode}
	}
	return resp, nil
}

// copyWithProgress copies body to w in chunkSize pieces, checking ctx before
// every read. Progress is reported only when total is known.
func copyWithProgress(ctx context.Context, w io.Writer, body io.Reader, total int64, onProgress ProgressFunc) (int64, error) {
	buf := make([]byte, chunkSize)
	var written int64
	last := -1

	for {
		if err := ctx.Err(); err != nil {
			return written, apoderrors.Cancelled(err)
		}

		n, readErr := body.Read(buf)
		if n > 0 {
			if _, err := w.Write(buf[:n]); err != nil {
				return written, &apoderrors.TransferError{Op: "write", Err: err}
			}
			written += int64(n)

			if total > 0 && onProgress != nil {
				if pct := percent(written, total); pct > last {
					last = pct
					onProgress(pct)
				}
			}
		}

		if errors.Is(readErr, io.EOF) {
			return written, nil
		}
		if readErr != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return written, apoderrors.Cancelled(ctxErr)
			}
			return written, &apoderrors.TransferError{Op: "read body", Err: readErr}
		}
	}
}

func percent(done, total int64) int {
	if done >= total {
		return 100
	}
	return int(done * 100 / total)
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeOK
	case errors.Is(err, apoderrors.ErrCancelled):
		return metrics.OutcomeCancelled
	case errors.Is(err, apoderrors.ErrRemote):
		return metrics.OutcomeRemote
	default:
		return metrics.OutcomeTransfer
	}
}
