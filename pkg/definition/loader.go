// Package definition obtains the metadata document for a date, from the
// cache when present and from the remote API otherwise.
package definition

import (
	"context"
	"os"

	"github.com/glorpus-work/apod/internal/logger"
	"github.com/glorpus-work/apod/pkg/cache"
	"github.com/glorpus-work/apod/pkg/download"
	apoderrors "github.com/glorpus-work/apod/pkg/errors"
	"github.com/glorpus-work/apod/pkg/metrics"
	"github.com/glorpus-work/apod/pkg/model"
)

// Loader loads definitions through the cache.
type Loader struct {
	store    cache.Locator
	fetcher  download.Fetcher
	endpoint Endpoint
	flight   *cache.Flight
	metrics  *metrics.Metrics
}

// Option configures a Loader.
type Option func(*Loader)

// WithFlight shares in-flight de-duplication with other components.
func WithFlight(f *cache.Flight) Option {
	return func(l *Loader) { l.flight = f }
}

// WithMetrics records cache hits on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(l *Loader) { l.metrics = m }
}

// NewLoader creates a Loader.
func NewLoader(store cache.Locator, fetcher download.Fetcher, endpoint Endpoint, opts ...Option) *Loader {
	l := &Loader{
		store:    store,
		fetcher:  fetcher,
		endpoint: endpoint,
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.flight == nil {
		l.flight = &cache.Flight{}
	}
	return l
}

// Load returns the definition for date. A cached file is trusted as-is and
// never causes a network call. Fetch failures are returned unchanged.
func (l *Loader) Load(ctx context.Context, date model.DateKey) (*model.Definition, error) {
	if err := ctx.Err(); err != nil {
		return nil, apoderrors.Cancelled(err)
	}

	path := l.store.PathFor(date, model.KindDefinition)
	if l.store.Exists(date, model.KindDefinition) {
		logger.Debug("Definition cache hit", logger.Fields{"date": date.String(), "path": path})
		l.metrics.IncCacheHit(model.KindDefinition.String())
		return ReadFile(path)
	}

	key := model.CacheKey{Date: date, Kind: model.KindDefinition}
	err := l.flight.Do(ctx, key, func() error {
		// a previous flight may have populated the file since the check above
		if l.store.Exists(date, model.KindDefinition) {
			return nil
		}
		u, err := l.endpoint.URLFor(date)
		if err != nil {
			return err
		}
		logger.Debug("Definition cache miss", logger.Fields{"date": date.String()})
		_, err = l.fetcher.Fetch(ctx, download.Request{
			URL:         u,
			Destination: path,
			Kind:        model.KindDefinition,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return ReadFile(path)
}

// ReadFile parses the definition stored at path. Malformed content yields a
// *errors.ParseError; a service version outside the supported range is only
// logged.
func ReadFile(path string) (*model.Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &apoderrors.TransferError{Op: "read definition", Err: err}
	}
	def, err := model.ParseDefinition(data)
	if err != nil {
		return nil, &apoderrors.ParseError{Path: path, Err: err}
	}
	if err := model.CheckServiceVersion(def.ServiceVersion); err != nil {
		logger.Warn("Unexpected service version", logger.Fields{"path": path, "error": err.Error()})
	}
	return def, nil
}
