package fsutil

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMove(t *testing.T) {
	tests := []struct {
		name      string
		setup     func(t *testing.T, dir string) (src, dst string)
		expectErr string
	}{
		{
			name: "moves file into new directory",
			setup: func(t *testing.T, dir string) (string, string) {
				src := filepath.Join(dir, "source.txt")
				require.NoError(t, os.WriteFile(src, []byte("payload"), FileModeDefault))
				return src, filepath.Join(dir, "nested", "APOD_2020-08-30.jpg")
			},
		},
		{
			name: "replaces existing destination",
			setup: func(t *testing.T, dir string) (string, string) {
				src := filepath.Join(dir, "source.txt")
				dst := filepath.Join(dir, "dest.txt")
				require.NoError(t, os.WriteFile(src, []byte("payload"), FileModeDefault))
				require.NoError(t, os.WriteFile(dst, []byte("stale"), FileModeDefault))
				return src, dst
			},
		},
		{
			name: "missing source",
			setup: func(_ *testing.T, dir string) (string, string) {
				return filepath.Join(dir, "nope"), filepath.Join(dir, "dst")
			},
			expectErr: "failed to stat source",
		},
		{
			name: "source is a directory",
			setup: func(t *testing.T, dir string) (string, string) {
				src := filepath.Join(dir, "d")
				require.NoError(t, os.Mkdir(src, DirModeDefault))
				return src, filepath.Join(dir, "dst")
			},
			expectErr: "is a directory",
		},
		{
			name: "empty paths",
			setup: func(_ *testing.T, _ string) (string, string) {
				return "", ""
			},
			expectErr: "cannot be empty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src, dst := tt.setup(t, t.TempDir())

			err := Move(src, dst)
			if tt.expectErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.expectErr)
				return
			}
			require.NoError(t, err)

			content, err := os.ReadFile(dst)
			require.NoError(t, err)
			assert.Equal(t, "payload", string(content))
			assert.NoFileExists(t, src)
		})
	}
}

func TestIsCrossFilesystemError(t *testing.T) {
	assert.False(t, isCrossFilesystemError(nil))
	assert.False(t, isCrossFilesystemError(errors.New("regular error")))
	assert.True(t, isCrossFilesystemError(errors.New("rename a b: invalid cross-device link")))
}

func TestMoveFileFallback(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.bin")
	dst := filepath.Join(dir, "dst.bin")
	require.NoError(t, os.WriteFile(src, []byte("abc"), FileModeSecure))

	info, err := os.Stat(src)
	require.NoError(t, err)
	require.NoError(t, moveFile(src, dst, info))

	assert.NoFileExists(t, src)
	content, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "abc", string(content))

	if runtime.GOOS != "windows" {
		dstInfo, err := os.Stat(dst)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(FileModeSecure), dstInfo.Mode().Perm())
	}
}

func TestCopy(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "source.txt")
	dst := filepath.Join(dir, "destination.txt")
	require.NoError(t, os.WriteFile(src, []byte("Copy test content"), FileModeDefault))

	require.NoError(t, Copy(src, dst))

	copied, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "Copy test content", string(copied))
	assert.FileExists(t, src)

	assert.Error(t, Copy(filepath.Join(dir, "missing"), dst))
}

func TestCreateTempSibling(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "cache", "APOD_2020-08-30.json")

	f, err := CreateTempSibling(target)
	require.NoError(t, err)
	defer func() { _ = os.Remove(f.Name()) }()
	require.NoError(t, f.Close())

	assert.Equal(t, filepath.Dir(target), filepath.Dir(f.Name()))
	assert.True(t, strings.HasSuffix(f.Name(), ".tmp"))
	assert.True(t, strings.HasPrefix(filepath.Base(f.Name()), ".dl-"))
}

func TestRemoveIfExistsAndFileExists(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "f")

	assert.False(t, FileExists(path))
	assert.NoError(t, RemoveIfExists(path))

	require.NoError(t, os.WriteFile(path, []byte("x"), FileModeDefault))
	assert.True(t, FileExists(path))
	assert.False(t, FileExists(dir))

	require.NoError(t, RemoveIfExists(path))
	assert.False(t, FileExists(path))
}
