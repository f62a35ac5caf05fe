package hooks

import "github.com/glorpus-work/apod/pkg/model"

// HookType represents the type of hooks.
type HookType string

// Supported hooks types.
const (
	// PostDownload runs after the media of a date has been fetched.
	PostDownload HookType = "post-download"
	// Unsupported runs when a definition's media kind cannot be downloaded.
	Unsupported HookType = "unsupported"
)

// HookTypes lists every supported hook type.
var HookTypes = []HookType{PostDownload, Unsupported}

// Valid reports whether t is a supported hook type.
func (t HookType) Valid() bool {
	for _, known := range HookTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Context contains information passed to hooks.
type Context struct {
	Date        model.DateKey
	Title       string
	Explanation string
	MediaKind   string
	MediaPath   string // empty for Unsupported
	Vars        map[string]interface{}
}

// ContextFor builds the hook context of def.
func ContextFor(def *model.Definition, mediaPath string) Context {
	return Context{
		Date:        def.Date,
		Title:       def.Title,
		Explanation: def.Explanation,
		MediaKind:   def.MediaType,
		MediaPath:   mediaPath,
	}
}
