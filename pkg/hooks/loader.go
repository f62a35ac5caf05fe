package hooks

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/glorpus-work/apod/pkg/errors"
)

// HookFileExtension is the extension of hook scripts.
const HookFileExtension = ".tengo"

// LoadFile registers the script at path for hookType.
func LoadFile(executor *TengoExecutor, hookType HookType, path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(ErrHookLoad, "error reading hooks file %s: %v", path, err)
	}
	if err := executor.AddScript(hookType, string(content)); err != nil {
		return errors.Wrapf(err, "error loading hooks file %s", path)
	}
	return nil
}

// LoadDir registers every <hook-type>.tengo file found in dir. Unknown names
// are skipped and a missing directory is not an error.
func LoadDir(executor *TengoExecutor, dir string) error {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return errors.Wrapf(err, "failed to read hooks directory %s", dir)
	}

	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != HookFileExtension {
			continue
		}
		hookType := HookType(strings.TrimSuffix(entry.Name(), HookFileExtension))
		if !hookType.Valid() {
			continue
		}
		if err := LoadFile(executor, hookType, filepath.Join(dir, entry.Name())); err != nil {
			return err
		}
	}
	return nil
}

// HookTemplate generates a template for a hooks script.
func HookTemplate(hookType HookType) string {
	switch hookType {
	case PostDownload:
		return `// Post-download hook
// This script runs after the media of a date was downloaded.
// Available variables:
// - date: string - the date (YYYY-MM-DD)
// - title: string - title of the picture
// - explanation: string - explanation text
// - mediaKind: string - media type reported by the API
// - mediaPath: string - path of the cached media file
// - vars: map - custom variables
// Assign a message to err to report a failure: err = "reason"

// Example: copy the picture to a wallpaper location
/*
os := import("os")
data := os.read_file(mediaPath)
f := os.create(os.getenv("HOME") + "/wallpaper.jpg")
f.write(data)
f.close()
*/`

	case Unsupported:
		return `// Unsupported hook
// This script runs when the media of a date cannot be downloaded.
// Available variables: same as post-download, mediaPath is empty.

// Example: print the date
/*
fmt := import("fmt")
fmt.println("unsupported media on ", date, ": ", mediaKind)
*/`

	default:
		return "// Unknown hooks type: " + string(hookType)
	}
}
