// Package media downloads the binary artifact described by a definition.
package media

import (
	"context"

	"github.com/glorpus-work/apod/internal/logger"
	"github.com/glorpus-work/apod/pkg/cache"
	"github.com/glorpus-work/apod/pkg/download"
	apoderrors "github.com/glorpus-work/apod/pkg/errors"
	"github.com/glorpus-work/apod/pkg/metrics"
	"github.com/glorpus-work/apod/pkg/model"
)

// URLSelector picks the URL to download for a definition.
type URLSelector func(def *model.Definition) string

// PreferHD selects the high definition URL when present.
func PreferHD(def *model.Definition) string {
	if def.HDURL != "" {
		return def.HDURL
	}
	return def.URL
}

// StandardOnly always selects the standard URL.
func StandardOnly(def *model.Definition) string {
	return def.URL
}

// Downloader places media artifacts in the cache.
type Downloader struct {
	store    cache.Locator
	fetcher  download.Fetcher
	flight   *cache.Flight
	selector URLSelector
	metrics  *metrics.Metrics
}

// Option configures a Downloader.
type Option func(*Downloader)

// WithFlight shares in-flight de-duplication with other components.
func WithFlight(f *cache.Flight) Option {
	return func(d *Downloader) { d.flight = f }
}

// WithURLSelector replaces PreferHD.
func WithURLSelector(s URLSelector) Option {
	return func(d *Downloader) { d.selector = s }
}

// WithMetrics records cache hits and unsupported definitions on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(d *Downloader) { d.metrics = m }
}

// NewDownloader creates a Downloader.
func NewDownloader(store cache.Locator, fetcher download.Fetcher, opts ...Option) *Downloader {
	d := &Downloader{
		store:    store,
		fetcher:  fetcher,
		selector: PreferHD,
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.flight == nil {
		d.flight = &cache.Flight{}
	}
	return d
}

// Download makes sure the media of def is cached and returns its path.
// Definitions whose media type is not an image fail with
// *errors.UnsupportedMediaKindError before any I/O. onProgress is only called
// when this call performs the transfer.
func (d *Downloader) Download(ctx context.Context, def *model.Definition, onProgress download.ProgressFunc) (string, error) {
	if !def.IsImage() {
		d.metrics.IncUnsupported()
		return "", &apoderrors.UnsupportedMediaKindError{Kind: def.MediaType}
	}
	if err := ctx.Err(); err != nil {
		return "", apoderrors.Cancelled(err)
	}

	sourceURL := d.selector(def)
	if path, ok := d.store.Lookup(def.Date, model.Media); ok {
		logger.Debug("Media cache hit", logger.Fields{"date": def.Date.String(), "path": path})
		d.metrics.IncCacheHit(model.Media.String())
		return path, nil
	}

	dest := d.store.PathForURL(def.Date, model.Media, sourceURL)
	key := model.CacheKey{Date: def.Date, Kind: model.Media}
	err := d.flight.Do(ctx, key, func() error {
		if _, ok := d.store.Lookup(def.Date, model.Media); ok {
			return nil
		}
		_, err := d.fetcher.Fetch(ctx, download.Request{
			URL:         sourceURL,
			Destination: dest,
			Kind:        model.Media,
			OnProgress:  onProgress,
		})
		return err
	})
	if err != nil {
		return "", err
	}

	if path, ok := d.store.Lookup(def.Date, model.Media); ok {
		return path, nil
	}
	return dest, nil
}
