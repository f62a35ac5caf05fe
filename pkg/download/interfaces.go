//go:generate mockgen -destination=./mocks/download.go . Fetcher
package download

import (
	"context"

	"github.com/glorpus-work/apod/pkg/model"
)

// Fetcher streams one remote resource into a local file.
type Fetcher interface {
	// Fetch downloads req.URL to req.Destination. The destination is written
	// only when the whole body has been received; on any failure it is left
	// untouched.
	Fetch(ctx context.Context, req Request) (Result, error)
}

// ProgressFunc receives the completed percentage (0..100) of a transfer whose
// size is known. Values are strictly increasing.
type ProgressFunc func(percent int)

// Request describes one fetch.
type Request struct {
	URL         string
	Destination string             // absolute path the artifact is written to
	Kind        model.ArtifactKind // only used for metrics and logging
	OnProgress  ProgressFunc       // optional
}

// Result is the outcome of a successful fetch.
type Result struct {
	Path  string
	Bytes int64
}
