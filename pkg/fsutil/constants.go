// Package fsutil provides file system helpers and permission constants used by
// the cache, the fetcher and the configuration layer.
package fsutil

// File and directory permission constants.
const (
	FileModeDefault = 0o644 // -rw-r--r--: Default for regular files
	FileModeSecure  = 0o640 // -rw-r-----: Cached artifacts

	DirModeDefault = 0o755 // drwxr-xr-x: Default for directories
	DirModeSecure  = 0o750 // drwxr-x---: Cache directory
	DirModePrivate = 0o700 // drwx------: For private directories (owner only)
)
