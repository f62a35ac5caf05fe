package cache

import "github.com/glorpus-work/apod/pkg/fsutil"

// CacheDirPerm is the permission mode for the cache directory.
var CacheDirPerm = fsutil.DirModeSecure

// FilePrefix is the common prefix of every cached artifact file name.
const FilePrefix = "APOD_"
