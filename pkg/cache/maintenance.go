package cache

import (
	"os"
	"path/filepath"

	apoderrors "github.com/glorpus-work/apod/pkg/errors"
)

// Clean removes cached files according to the specified options.
// With no option set everything is removed.
func (s *Store) Clean(options CleanOptions) (*CleanResult, error) {
	if !options.Definitions && !options.Media {
		options.All = true
	}

	entries, err := os.ReadDir(s.directory)
	if os.IsNotExist(err) {
		return &CleanResult{}, nil
	}
	if err != nil {
		return nil, apoderrors.Wrap(ErrCacheClean, err.Error())
	}

	result := &CleanResult{}
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		name := e.Name()
		isDef := IsDefinitionFile(name)
		isMedia := IsMediaFile(name)
		if !isDef && !isMedia {
			continue
		}
		if !options.All && !(isDef && options.Definitions) && !(isMedia && options.Media) {
			continue
		}

		info, err := e.Info()
		if err != nil {
			return nil, apoderrors.Wrapf(err, "failed to stat %s", name)
		}
		if err := os.Remove(filepath.Join(s.directory, name)); err != nil {
			return nil, apoderrors.Wrapf(err, "failed to remove %s", name)
		}

		result.FilesRemoved++
		result.TotalFreed += info.Size()
		if isDef {
			result.DefinitionFreed += info.Size()
		} else {
			result.MediaFreed += info.Size()
		}
	}
	return result, nil
}

// Info returns counts and sizes of the cached artifacts.
func (s *Store) Info() (*Info, error) {
	info := &Info{Directory: s.directory}

	entries, err := os.ReadDir(s.directory)
	if os.IsNotExist(err) {
		return info, nil
	}
	if err != nil {
		return nil, apoderrors.Wrap(ErrCacheInfo, err.Error())
	}

	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		fi, err := e.Info()
		if err != nil {
			return nil, apoderrors.Wrapf(err, "failed to stat %s", e.Name())
		}
		switch {
		case IsDefinitionFile(e.Name()):
			info.DefinitionFiles++
			info.DefinitionSize += fi.Size()
		case IsMediaFile(e.Name()):
			info.MediaFiles++
			info.MediaSize += fi.Size()
		}
	}
	info.TotalSize = info.DefinitionSize + info.MediaSize
	return info, nil
}
