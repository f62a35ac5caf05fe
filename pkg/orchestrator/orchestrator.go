// Package orchestrator composes the definition loader and the media
// downloader into the per-date pipeline consumed by the presentation layer.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/glorpus-work/apod/internal/logger"
	"github.com/glorpus-work/apod/pkg/cache"
	"github.com/glorpus-work/apod/pkg/definition"
	"github.com/glorpus-work/apod/pkg/download"
	apoderrors "github.com/glorpus-work/apod/pkg/errors"
	"github.com/glorpus-work/apod/pkg/hooks"
	"github.com/glorpus-work/apod/pkg/index"
	"github.com/glorpus-work/apod/pkg/media"
	"github.com/glorpus-work/apod/pkg/metrics"
	"github.com/glorpus-work/apod/pkg/model"
)

// Orchestrator ties the definition loader, media downloader and cache
// together. It keeps no per-call state; concurrent calls are independent.
type Orchestrator struct {
	Definitions DefinitionLoader
	Media       MediaDownloader
	Cache       cache.Locator
	Scanner     UnsupportedScanner
	Scripts     ScriptRunner // optional
	Hooks       Hooks        // Hooks for progress and event notifications
	Concurrency int          // Prefetch parallelism, defaults to 4
	Now         func() time.Time
}

// New wires the default components around store and fetcher. The loader and
// the downloader share one in-flight registry.
func New(store *cache.Store, fetcher download.Fetcher, endpoint definition.Endpoint, m *metrics.Metrics) *Orchestrator {
	flight := &cache.Flight{}
	return &Orchestrator{
		Definitions: definition.NewLoader(store, fetcher, endpoint,
			definition.WithFlight(flight), definition.WithMetrics(m)),
		Media: media.NewDownloader(store, fetcher,
			media.WithFlight(flight), media.WithMetrics(m)),
		Cache:   store,
		Scanner: index.NewScanner(nil),
	}
}

func emit(h Hooks, e Event) {
	if h.OnEvent != nil {
		h.OnEvent(e)
	}
}

// GetAstronomyOfTheDay loads the definition of date and makes sure its media
// is cached. It is GetPicture without the media path.
//
// When the media kind is not downloadable the definition is returned together
// with an error matching errors.ErrUnsupportedMediaKind, so that callers can
// show the metadata and record the date.
func (o *Orchestrator) GetAstronomyOfTheDay(ctx context.Context, date model.DateKey, onProgress download.ProgressFunc) (*model.Definition, error) {
	pic, err := o.GetPicture(ctx, date, onProgress)
	return pic.Definition, err
}

// GetPicture loads the definition of date and makes sure its media is cached.
// MediaPath is the file the downloader placed, keyed by the date the
// definition carries. Unsupported media yields the definition, an empty path
// and an error matching errors.ErrUnsupportedMediaKind.
func (o *Orchestrator) GetPicture(ctx context.Context, date model.DateKey, onProgress download.ProgressFunc) (Picture, error) {
	r := o.newRun(date)

	if err := o.ValidateDate(date); err != nil {
		return Picture{}, r.finish(err)
	}

	r.transition(StateLoadingDefinition, "loading definition")
	def, err := o.Definitions.Load(ctx, date)
	if err != nil {
		return Picture{}, r.finish(err)
	}
	if def.Date != date {
		r.log.Warn("Definition date differs from requested date", "definition_date", def.Date.String())
	}

	r.transition(StateDownloadingMedia, def.Title)
	cachedBefore := o.mediaCached(def.Date)
	path, err := o.Media.Download(ctx, def, onProgress)
	if err != nil {
		if errors.Is(err, apoderrors.ErrUnsupportedMediaKind) {
			o.runScript(ctx, r, hooks.Unsupported, hooks.ContextFor(def, ""))
			return Picture{Definition: def}, r.finish(err)
		}
		return Picture{}, r.finish(err)
	}

	r.transition(StateComplete, path)
	r.log.Info("Astronomy picture ready", "path", path)
	if !cachedBefore {
		o.runScript(ctx, r, hooks.PostDownload, hooks.ContextFor(def, path))
	}
	return Picture{Definition: def, MediaPath: path}, nil
}

// ValidateDate rejects the zero date and dates after today (UTC).
func (o *Orchestrator) ValidateDate(date model.DateKey) error {
	if date.IsZero() {
		return apoderrors.ErrInvalidDate
	}
	today := model.DateKeyFromTime(o.now().UTC())
	if date.After(today) {
		return fmt.Errorf("%w: %s is after %s", apoderrors.ErrFutureDate, date, today)
	}
	return nil
}

// ScanUnsupportedDates returns the dates whose cached definition describes
// media that cannot be downloaded.
func (o *Orchestrator) ScanUnsupportedDates() map[model.DateKey]struct{} {
	scanner := o.Scanner
	if scanner == nil {
		scanner = index.NewScanner(nil)
	}
	return scanner.Collect(o.Cache.Directory())
}

// MediaPath returns the cached media path of date, if present.
func (o *Orchestrator) MediaPath(date model.DateKey) (string, bool) {
	if o.Cache == nil {
		return "", false
	}
	return o.Cache.Lookup(date, model.Media)
}

func (o *Orchestrator) mediaCached(date model.DateKey) bool {
	_, ok := o.MediaPath(date)
	return ok
}

func (o *Orchestrator) now() time.Time {
	if o.Now != nil {
		return o.Now()
	}
	return time.Now()
}

// Hook failures are logged and never fail the request.
func (o *Orchestrator) runScript(ctx context.Context, r *run, hookType hooks.HookType, hctx hooks.Context) {
	if o.Scripts == nil {
		return
	}
	if err := o.Scripts.Execute(ctx, hookType, hctx); err != nil {
		r.log.Warn("Hook failed", "hook", string(hookType), "error", err.Error())
	}
}

// run tracks the state of one GetAstronomyOfTheDay call.
type run struct {
	hooks Hooks
	id    string
	date  model.DateKey
	state State
	log   *slog.Logger
}

func (o *Orchestrator) newRun(date model.DateKey) *run {
	id := uuid.NewString()
	return &run{
		hooks: o.Hooks,
		id:    id,
		date:  date,
		state: StateIdle,
		log:   logger.With(logger.Fields{"request_id": id, "date": date.String()}),
	}
}

func (r *run) transition(to State, msg string) {
	r.state = to
	r.log.Debug("State changed", "state", to.String(), "msg", msg)
	emit(r.hooks, Event{Phase: to, ID: r.id, Date: r.date, Msg: msg})
}

// finish moves the run to Failed or Cancelled and returns err unchanged.
func (r *run) finish(err error) error {
	to := StateFailed
	if apoderrors.IsCancelled(err) {
		to = StateCancelled
	}
	r.state = to
	r.log.Debug("State changed", "state", to.String(), "error", err.Error())
	emit(r.hooks, Event{Phase: to, ID: r.id, Date: r.date, Msg: err.Error(), Err: err})
	return err
}
