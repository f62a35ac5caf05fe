package cache

import "github.com/glorpus-work/apod/pkg/model"

// Locator maps cache keys to local file paths and answers existence checks.
// It provides no concurrency control; see Flight.
type Locator interface {
	// PathFor returns the path for date and kind using the kind's default extension.
	PathFor(date model.DateKey, kind model.ArtifactKind) string
	// PathForURL returns the path for date and kind with the extension of sourceURL.
	PathForURL(date model.DateKey, kind model.ArtifactKind, sourceURL string) string
	// Exists reports whether an artifact is cached for date and kind.
	Exists(date model.DateKey, kind model.ArtifactKind) bool
	// Lookup returns the path of the cached artifact for date and kind, if any.
	Lookup(date model.DateKey, kind model.ArtifactKind) (string, bool)
	// Directory returns the cache directory.
	Directory() string
}

// CleanOptions specifies what to clean from the cache.
type CleanOptions struct {
	All         bool
	Definitions bool
	Media       bool
}

// CleanResult contains information about what was cleaned.
type CleanResult struct {
	TotalFreed      int64
	DefinitionFreed int64
	MediaFreed      int64
	FilesRemoved    int
}

// Info represents cache information.
type Info struct {
	Directory       string
	TotalSize       int64
	DefinitionSize  int64
	DefinitionFiles int
	MediaSize       int64
	MediaFiles      int
}
