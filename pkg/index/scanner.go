// Package index derives the set of dates whose cached definition describes
// media the pipeline cannot download.
package index

import (
	"errors"
	"io/fs"
	"iter"
	"maps"
	"slices"
	"strings"

	"github.com/glorpus-work/apod/internal/logger"
	"github.com/glorpus-work/apod/pkg/cache"
	"github.com/glorpus-work/apod/pkg/definition"
	"github.com/glorpus-work/apod/pkg/model"
)

// SkipFunc is called for every definition file that could not be read or parsed.
type SkipFunc func(path string, err error)

// LogSkipped is the default SkipFunc.
func LogSkipped(path string, err error) {
	logger.Warn("Skipping unreadable definition", logger.Fields{
		"path":  path,
		"error": err.Error(),
	})
}

// Scanner enumerates cached definitions.
type Scanner struct {
	onSkip SkipFunc
}

// NewScanner creates a scanner. A nil onSkip selects LogSkipped.
func NewScanner(onSkip SkipFunc) *Scanner {
	if onSkip == nil {
		onSkip = LogSkipped
	}
	return &Scanner{onSkip: onSkip}
}

// Scan lazily yields the date of every parsable definition in dir whose media
// type is not downloadable. Corrupt files are reported to the skip hook and
// do not end the sequence. The directory is re-read on every iteration.
func (s *Scanner) Scan(dir string) iter.Seq[model.DateKey] {
	return func(yield func(model.DateKey) bool) {
		files, err := cache.NewStore(dir).DefinitionFiles()
		if errors.Is(err, fs.ErrNotExist) {
			return
		}
		if err != nil {
			s.onSkip(dir, err)
			return
		}
		for _, path := range files {
			def, err := definition.ReadFile(path)
			if err != nil {
				s.onSkip(path, err)
				continue
			}
			if def.IsImage() {
				continue
			}
			if !yield(def.Date) {
				return
			}
		}
	}
}

// Collect returns the Scan result as a set.
func (s *Scanner) Collect(dir string) map[model.DateKey]struct{} {
	set := make(map[model.DateKey]struct{})
	for date := range s.Scan(dir) {
		set[date] = struct{}{}
	}
	return set
}

// Sorted returns the dates of set in ascending order.
func Sorted(set map[model.DateKey]struct{}) []model.DateKey {
	return slices.SortedFunc(maps.Keys(set), func(a, b model.DateKey) int {
		return strings.Compare(a.String(), b.String())
	})
}
