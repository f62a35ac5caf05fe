// Package archive moves the artifact cache in and out of tar.gz archives.
package archive

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/mholt/archives"

	"github.com/glorpus-work/apod/internal/logger"
	"github.com/glorpus-work/apod/pkg/cache"
	"github.com/glorpus-work/apod/pkg/fsutil"
	"github.com/glorpus-work/apod/pkg/model"
)

// Manager handles archive extraction and creation operations.
type Manager struct {
	format archives.CompressedArchive
}

// NewManager creates a new Manager instance writing gzip compressed tarballs.
func NewManager() *Manager {
	return &Manager{
		format: archives.CompressedArchive{
			Compression: archives.Gz{},
			Archival:    archives.Tar{},
		},
	}
}

// ImportResult summarizes an ExtractAll call.
type ImportResult struct {
	Imported int
	Skipped  int // already cached or not a cache artifact
	Invalid  int // definitions that failed to parse
}

// Create writes every cached artifact of cacheDir into a flat archive at
// archivePath and returns the number of files archived. The archive is
// written to a temporary file first.
func (am *Manager) Create(ctx context.Context, cacheDir, archivePath string) (int, error) {
	entries, err := os.ReadDir(cacheDir)
	if err != nil {
		return 0, fmt.Errorf("failed to read cache directory: %w", err)
	}

	names := make(map[string]string)
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		if cache.IsDefinitionFile(e.Name()) || cache.IsMediaFile(e.Name()) {
			names[filepath.Join(cacheDir, e.Name())] = e.Name()
		}
	}

	files, err := archives.FilesFromDisk(ctx, nil, names)
	if err != nil {
		return 0, fmt.Errorf("failed to read files from disk: %w", err)
	}

	tmp, err := fsutil.CreateTempSibling(archivePath)
	if err != nil {
		return 0, fmt.Errorf("failed to create output file %s: %w", archivePath, err)
	}
	tmpPath := tmp.Name()

	err = am.format.Archive(ctx, tmp, files)
	if syncErr := tmp.Sync(); err == nil {
		err = syncErr
	}
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(tmpPath)
		return 0, fmt.Errorf("failed to create archive: %w", err)
	}
	if err := fsutil.Move(tmpPath, archivePath); err != nil {
		_ = os.Remove(tmpPath)
		return 0, err
	}
	return len(files), nil
}

// ExtractAll imports the cache artifacts of archivePath into cacheDir.
// Entries that are not cache artifacts, are nested in directories, or are
// already present are skipped unless overwrite is set. Definitions are parsed
// before they are accepted.
func (am *Manager) ExtractAll(ctx context.Context, archivePath, cacheDir string, overwrite bool) (*ImportResult, error) {
	f, err := os.Open(archivePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive file: %w", err)
	}
	defer func() { _ = f.Close() }()

	if err := fsutil.EnsureDir(cacheDir); err != nil {
		return nil, fmt.Errorf("failed to create destination directory: %w", err)
	}

	result := &ImportResult{}
	err = am.format.Extract(ctx, f, func(_ context.Context, info archives.FileInfo) error {
		return am.extractEntry(info, cacheDir, overwrite, result)
	})
	if err != nil {
		return result, fmt.Errorf("failed to extract archive: %w", err)
	}
	return result, nil
}

// extractEntry writes a single archive entry into cacheDir.
func (am *Manager) extractEntry(info archives.FileInfo, cacheDir string, overwrite bool, result *ImportResult) error {
	if info.IsDir() {
		return nil
	}
	name := path.Clean(info.NameInArchive)
	if name != path.Base(name) || !info.Mode().IsRegular() ||
		(!cache.IsDefinitionFile(name) && !cache.IsMediaFile(name)) {
		result.Skipped++
		return nil
	}

	target := filepath.Join(cacheDir, name)
	if !overwrite && fsutil.FileExists(target) {
		result.Skipped++
		return nil
	}

	src, err := info.Open()
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", name, err)
	}
	defer func() { _ = src.Close() }()

	tmp, err := fsutil.CreateTempSibling(target)
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	_, err = io.Copy(tmp, src)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to copy file %s: %w", name, err)
	}

	if cache.IsDefinitionFile(name) {
		if ok := validDefinition(tmpPath, name); !ok {
			_ = os.Remove(tmpPath)
			logger.Warn("Skipping invalid definition in archive", logger.Fields{"name": name})
			result.Invalid++
			return nil
		}
	}

	if err := fsutil.Move(tmpPath, target); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	if err := os.Chtimes(target, info.ModTime(), info.ModTime()); err != nil {
		return fmt.Errorf("failed to set modification time for %s: %w", target, err)
	}
	result.Imported++
	return nil
}

// validDefinition reports whether the file at p parses and describes the
// date its archive entry name carries.
func validDefinition(p, name string) bool {
	data, err := os.ReadFile(p)
	if err != nil {
		return false
	}
	def, err := model.ParseDefinition(data)
	if err != nil {
		return false
	}
	stem := strings.TrimSuffix(strings.TrimPrefix(name, cache.FilePrefix), path.Ext(name))
	date, err := model.ParseDateKey(stem)
	return err == nil && date == def.Date
}
