package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glorpus-work/apod/internal/logger"
	"github.com/glorpus-work/apod/pkg/definition"
	"github.com/glorpus-work/apod/pkg/model"
	"github.com/glorpus-work/apod/test/testutil"
)

var testDate = model.NewDateKey(2020, 8, 30)

type env struct {
	server   *testutil.APODServer
	cfgPath  string
	cacheDir string
	tempDir  string
}

func newEnv(t *testing.T) *env {
	t.Helper()
	t.Setenv(definition.APIKeyEnv, "")

	var logs bytes.Buffer
	logger.SetTestOutput(&logs)
	t.Cleanup(logger.UnsetTestOutput)

	tempDir := t.TempDir()
	server := testutil.NewAPODServer(t)
	cfgPath := filepath.Join(tempDir, "config.yaml")
	cacheDir := filepath.Join(tempDir, "cache")

	yamlContent := `settings:
  cache_dir: ` + cacheDir + `
  api_base_url: ` + server.BaseURL() + `
  http_timeout: 5s
  max_concurrent: 2
`
	require.NoError(t, os.WriteFile(cfgPath, []byte(yamlContent), 0o600))
	return &env{server: server, cfgPath: cfgPath, cacheDir: cacheDir, tempDir: tempDir}
}

// run executes the root command with args and returns its stdout.
func (e *env) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(append([]string{"--config", e.cfgPath}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestGet_DownloadsAndReusesCache(t *testing.T) {
	e := newEnv(t)
	def := e.server.AddImage(testDate, []byte("hd picture bytes"))

	out, err := e.run(t, "get", testDate.String())
	require.NoError(t, err)
	assert.Contains(t, out, def.Title)
	assert.Contains(t, out, filepath.Join(e.cacheDir, "APOD_2020-08-30.jpg"))
	assert.Equal(t, 2, e.server.Hits())

	data, err := os.ReadFile(filepath.Join(e.cacheDir, "APOD_2020-08-30.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "hd picture bytes", string(data))

	_, err = e.run(t, "get", "--date", testDate.String(), "--quiet")
	require.NoError(t, err)
	assert.Equal(t, 2, e.server.Hits())
}

func TestGet_UnsupportedMedia(t *testing.T) {
	e := newEnv(t)
	e.server.AddVideo(testDate)

	out, err := e.run(t, "get", testDate.String())
	require.NoError(t, err)
	assert.Contains(t, out, "Not supported media format")
	assert.Contains(t, out, "video")

	out, err = e.run(t, "unsupported")
	require.NoError(t, err)
	assert.Equal(t, "2020-08-30\n", out)
}

func TestGet_Errors(t *testing.T) {
	e := newEnv(t)

	_, err := e.run(t, "get", "2020-13-45")
	assert.Error(t, err)

	_, err = e.run(t, "get", "2999-01-01")
	assert.Error(t, err)

	_, err = e.run(t, "get", testDate.String())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Something went wrong")
	assert.Contains(t, err.Error(), "404")
}

func TestPrefetch(t *testing.T) {
	e := newEnv(t)
	e.server.AddImage(testDate, []byte("a"))
	e.server.AddVideo(testDate.AddDays(-1))
	e.server.AddImage(testDate.AddDays(-2), []byte("c"))

	out, err := e.run(t, "prefetch", "--days", "3", "--end", testDate.String(), "--media")
	require.NoError(t, err)
	assert.Contains(t, out, "2 fetched, 1 unsupported, 0 failed")

	out, err = e.run(t, "cache", "info")
	require.NoError(t, err)
	assert.Contains(t, out, "Definitions: ")
	assert.Contains(t, out, "(3 files)")
	assert.Contains(t, out, "(2 files)")

	_, err = e.run(t, "prefetch", "--days", "4", "--end", testDate.String())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 4 days failed")
}

func TestCache_ExportCleanImport(t *testing.T) {
	e := newEnv(t)
	e.server.AddImage(testDate, []byte("picture"))
	_, err := e.run(t, "get", "-q", testDate.String())
	require.NoError(t, err)

	out, err := e.run(t, "cache", "dir")
	require.NoError(t, err)
	assert.Equal(t, e.cacheDir, strings.TrimSpace(out))

	archivePath := filepath.Join(e.tempDir, "backup.tar.gz")
	_, err = e.run(t, "cache", "export", archivePath)
	require.NoError(t, err)
	assert.FileExists(t, archivePath)

	out, err = e.run(t, "cache", "clean")
	require.NoError(t, err)
	assert.Contains(t, out, "Removed 2 files")
	assert.NoFileExists(t, filepath.Join(e.cacheDir, "APOD_2020-08-30.json"))

	out, err = e.run(t, "cache", "import", archivePath)
	require.NoError(t, err)
	assert.Contains(t, out, "Imported 2 files")

	hits := e.server.Hits()
	_, err = e.run(t, "get", "-q", testDate.String())
	require.NoError(t, err)
	assert.Equal(t, hits, e.server.Hits(), "imported cache must be reused")
}

func TestConfigCommands(t *testing.T) {
	e := newEnv(t)

	_, err := e.run(t, "config", "set", "max_concurrent", "6")
	require.NoError(t, err)

	out, err := e.run(t, "config", "get", "max_concurrent")
	require.NoError(t, err)
	assert.Equal(t, "6\n", out)

	_, err = e.run(t, "config", "set", "max_concurrent", "0")
	assert.Error(t, err)

	out, err = e.run(t, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "api_base_url")
	assert.Contains(t, out, e.server.BaseURL())

	out, err = e.run(t, "config", "show", "--yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "max_concurrent: 6")

	_, err = e.run(t, "config", "init")
	assert.Error(t, err, "init must refuse to overwrite")
	_, err = e.run(t, "config", "init", "--force")
	require.NoError(t, err)
}

func TestHooks(t *testing.T) {
	e := newEnv(t)
	e.server.AddImage(testDate, []byte("picture"))

	scriptPath := filepath.Join(e.tempDir, "hooks", "post-download.tengo")
	_, err := e.run(t, "hooks", "template", "post-download", "-o", scriptPath)
	require.NoError(t, err)
	assert.FileExists(t, scriptPath)

	marker := filepath.Join(e.tempDir, "downloaded.txt")
	script := `os := import("os")
f := os.create("` + marker + `")
f.write_string(title)
f.close()
`
	require.NoError(t, os.WriteFile(scriptPath, []byte(script), 0o644))

	_, err = e.run(t, "config", "set", "hooks.dir", filepath.Dir(scriptPath))
	require.NoError(t, err)

	out, err := e.run(t, "hooks", "check")
	require.NoError(t, err)
	assert.Contains(t, out, "post-download: ok")
	assert.Contains(t, out, "unsupported: not configured")

	_, err = e.run(t, "get", "-q", testDate.String())
	require.NoError(t, err)
	data, err := os.ReadFile(marker)
	require.NoError(t, err)
	assert.NotEmpty(t, string(data))

	_, err = e.run(t, "hooks", "template", "pre-install")
	assert.Error(t, err)
}

func TestMetricsFile(t *testing.T) {
	e := newEnv(t)
	e.server.AddImage(testDate, []byte("picture"))

	metricsPath := filepath.Join(e.tempDir, "apod.prom")
	_, err := e.run(t, "--metrics-file", metricsPath, "get", "-q", testDate.String())
	require.NoError(t, err)

	data, err := os.ReadFile(metricsPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "apod_fetches_total")
}

func TestVersion(t *testing.T) {
	e := newEnv(t)
	out, err := e.run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "apod version")
}
