package cache

import (
	"net/url"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	apoderrors "github.com/glorpus-work/apod/pkg/errors"
	"github.com/glorpus-work/apod/pkg/fsutil"
	"github.com/glorpus-work/apod/pkg/model"
)

// maxExtensionLength bounds extensions taken from source URLs, dot included.
const maxExtensionLength = 6

// Store is the file system cache. The existence of a file at an artifact's
// path is the only record that the artifact is cached.
type Store struct {
	directory string
}

// NewStore creates a store rooted at directory. The directory is not created.
func NewStore(directory string) *Store {
	return &Store{directory: directory}
}

// NewDefaultStore creates a store in the user cache directory and ensures it exists.
func NewDefaultStore() (*Store, error) {
	cacheDir, err := fsutil.GetCacheDir()
	if err != nil {
		return nil, apoderrors.Wrap(err, "failed to get user cache directory")
	}

	s := NewStore(cacheDir)
	if err := s.EnsureDirectory(); err != nil {
		return nil, err
	}
	return s, nil
}

// Directory returns the cache directory path.
func (s *Store) Directory() string {
	return s.directory
}

// EnsureDirectory creates the cache directory if needed.
func (s *Store) EnsureDirectory() error {
	if s.directory == "" {
		return ErrCacheDirectory
	}
	if err := os.MkdirAll(s.directory, os.FileMode(CacheDirPerm)); err != nil {
		return apoderrors.Wrapf(err, "failed to create cache directory %s", s.directory)
	}
	return nil
}

// PathFor returns APOD_<date><ext> inside the cache directory, where ext is
// the kind's default extension. It performs no I/O.
func (s *Store) PathFor(date model.DateKey, kind model.ArtifactKind) string {
	return s.path(date, kind.DefaultExtension())
}

// PathForURL is PathFor with the extension taken from sourceURL's path when
// it has a usable one. Definitions always use their default extension.
func (s *Store) PathForURL(date model.DateKey, kind model.ArtifactKind, sourceURL string) string {
	if kind == model.KindDefinition {
		return s.PathFor(date, kind)
	}
	ext := ExtensionFromURL(sourceURL)
	if ext == "" || ext == model.KindDefinition.DefaultExtension() {
		ext = kind.DefaultExtension()
	}
	return s.path(date, ext)
}

// Exists reports whether an artifact is cached for date and kind.
func (s *Store) Exists(date model.DateKey, kind model.ArtifactKind) bool {
	_, ok := s.Lookup(date, kind)
	return ok
}

// Lookup returns the path of the cached artifact. Media may be stored under
// any extension, so media lookups scan the directory for APOD_<date>.*.
func (s *Store) Lookup(date model.DateKey, kind model.ArtifactKind) (string, bool) {
	if kind == model.KindDefinition {
		p := s.PathFor(date, kind)
		return p, fsutil.FileExists(p)
	}

	entries, err := os.ReadDir(s.directory)
	if err != nil {
		return "", false
	}
	prefix := baseName(date) + "."
	for _, e := range entries {
		name := e.Name()
		if !e.Type().IsRegular() || !strings.HasPrefix(name, prefix) {
			continue
		}
		if strings.EqualFold(filepath.Ext(name), model.KindDefinition.DefaultExtension()) {
			continue
		}
		return filepath.Join(s.directory, name), true
	}
	return "", false
}

// DefinitionFiles lists the cached definition files in name order.
func (s *Store) DefinitionFiles() ([]string, error) {
	return listDefinitionFiles(s.directory)
}

func (s *Store) path(date model.DateKey, ext string) string {
	return filepath.Join(s.directory, baseName(date)+ext)
}

func baseName(date model.DateKey) string {
	return FilePrefix + date.String()
}

// ExtensionFromURL returns the lower-cased extension of the URL path, or ""
// when the URL has none or it does not look like a file extension.
func ExtensionFromURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	ext := strings.ToLower(path.Ext(u.Path))
	if len(ext) < 2 || len(ext) > maxExtensionLength {
		return ""
	}
	for _, r := range ext[1:] {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return ""
		}
	}
	return ext
}

// IsDefinitionFile reports whether name follows the definition naming convention.
func IsDefinitionFile(name string) bool {
	return strings.HasPrefix(name, FilePrefix) && strings.EqualFold(filepath.Ext(name), model.KindDefinition.DefaultExtension())
}

// IsMediaFile reports whether name is a cached media file.
func IsMediaFile(name string) bool {
	return strings.HasPrefix(name, FilePrefix) && !IsDefinitionFile(name)
}

func listDefinitionFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.Type().IsRegular() && IsDefinitionFile(e.Name()) {
			out = append(out, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(out)
	return out, nil
}
