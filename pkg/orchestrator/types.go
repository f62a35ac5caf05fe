//go:generate mockgen -destination=./mocks/orchestrator.go . DefinitionLoader,MediaDownloader,ScriptRunner

package orchestrator

import (
	"context"

	"github.com/glorpus-work/apod/pkg/download"
	"github.com/glorpus-work/apod/pkg/hooks"
	"github.com/glorpus-work/apod/pkg/model"
)

// DefinitionLoader obtains the definition of a date.
type DefinitionLoader interface {
	Load(ctx context.Context, date model.DateKey) (*model.Definition, error)
}

// MediaDownloader makes sure the media of a definition is cached.
type MediaDownloader interface {
	Download(ctx context.Context, def *model.Definition, onProgress download.ProgressFunc) (string, error)
}

// UnsupportedScanner collects the dates with non-downloadable media in a cache directory.
type UnsupportedScanner interface {
	Collect(dir string) map[model.DateKey]struct{}
}

// ScriptRunner executes user hook scripts.
type ScriptRunner interface {
	Execute(ctx context.Context, hookType hooks.HookType, hctx hooks.Context) error
}

// Picture is a definition together with the path of its cached media.
type Picture struct {
	Definition *model.Definition
	MediaPath  string // empty when the media is not downloadable
}

// State is the position of one request in the pipeline.
type State int

// Pipeline states. Complete, Failed and Cancelled are terminal.
const (
	StateIdle State = iota
	StateLoadingDefinition
	StateDownloadingMedia
	StateComplete
	StateFailed
	StateCancelled
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoadingDefinition:
		return "loading-definition"
	case StateDownloadingMedia:
		return "downloading-media"
	case StateComplete:
		return "complete"
	case StateFailed:
		return "failed"
	case StateCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Terminal reports whether no transition leaves s.
func (s State) Terminal() bool {
	return s == StateComplete || s == StateFailed || s == StateCancelled
}

// Event represents a simple progress notification.
type Event struct {
	Phase State
	ID    string // request id, shared by all events of one call
	Date  model.DateKey
	Msg   string
	Err   error // set for Failed and Cancelled
}

// Hooks carries callbacks for progress events.
type Hooks struct {
	OnEvent func(Event)
}

// PrefetchOptions control Prefetch.
type PrefetchOptions struct {
	WithMedia   bool
	Concurrency int                  // overrides Orchestrator.Concurrency when > 0
	OnResult    func(PrefetchResult) // called once per date, never concurrently
}

// PrefetchResult is the outcome for one date of a Prefetch.
type PrefetchResult struct {
	Date       model.DateKey
	Definition *model.Definition
	MediaPath  string
	Err        error
}
