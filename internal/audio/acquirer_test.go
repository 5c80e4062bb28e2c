package audio

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBinary writes an executable shell script standing in for yt-dlp.
func fakeBinary(t *testing.T, script string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "yt-dlp-fake")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+script+"\n"), 0o755))
	return path
}

func testAcquirer(binary string) *Acquirer {
	a := NewAcquirer()
	a.Binary = binary
	return a
}

func TestFetchReturnsFirstCandidateExtension(t *testing.T) {
	base := filepath.Join(t.TempDir(), "audio")
	// The fake emits both webm and m4a; the m4a must win.
	a := testAcquirer(fakeBinary(t, "touch "+base+".webm "+base+".m4a"))

	path, err := a.Fetch(context.Background(), "https://youtu.be/dQw4w9WgXcQ", base, "")
	require.NoError(t, err)
	assert.Equal(t, base+".m4a", path)
}

func TestFetchOpusFallback(t *testing.T) {
	base := filepath.Join(t.TempDir(), "audio")
	a := testAcquirer(fakeBinary(t, "touch "+base+".opus"))

	path, err := a.Fetch(context.Background(), "https://youtu.be/dQw4w9WgXcQ", base, "")
	require.NoError(t, err)
	assert.Equal(t, base+".opus", path)
}

func TestFetchFailsOnNonZeroExit(t *testing.T) {
	base := filepath.Join(t.TempDir(), "audio")
	a := testAcquirer(fakeBinary(t, "echo 'ERROR: unsupported url' >&2; exit 1"))

	_, err := a.Fetch(context.Background(), "https://example.com/nope", base, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported url")
}

func TestFetchFailsWhenNoFileProduced(t *testing.T) {
	base := filepath.Join(t.TempDir(), "audio")
	a := testAcquirer(fakeBinary(t, "exit 0"))

	_, err := a.Fetch(context.Background(), "https://youtu.be/dQw4w9WgXcQ", base, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no audio file")
}

func TestFetchTimesOut(t *testing.T) {
	base := filepath.Join(t.TempDir(), "audio")
	a := testAcquirer(fakeBinary(t, "sleep 5"))
	a.Timeout = 50 * time.Millisecond

	_, err := a.Fetch(context.Background(), "https://youtu.be/dQw4w9WgXcQ", base, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "timed out")
}

func TestFetchFailsOnMissingExecutable(t *testing.T) {
	base := filepath.Join(t.TempDir(), "audio")
	a := testAcquirer(filepath.Join(t.TempDir(), "does-not-exist"))

	_, err := a.Fetch(context.Background(), "https://youtu.be/dQw4w9WgXcQ", base, "")
	require.Error(t, err)
}

func TestFetchPassesCookiesOnlyWhenFileExists(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "audio")
	argsFile := filepath.Join(dir, "args")
	a := testAcquirer(fakeBinary(t, `echo "$@" > `+argsFile+"; touch "+base+".m4a"))

	cookies := filepath.Join(dir, "cookies.txt")
	require.NoError(t, os.WriteFile(cookies, []byte("# Netscape"), 0o600))

	_, err := a.Fetch(context.Background(), "https://instagram.com/u/reel/ABC", base, cookies)
	require.NoError(t, err)
	args, err := os.ReadFile(argsFile)
	require.NoError(t, err)
	assert.Contains(t, string(args), "--cookies "+cookies)

	// Missing cookies file must be skipped silently.
	_, err = a.Fetch(context.Background(), "https://instagram.com/u/reel/ABC", base, filepath.Join(dir, "nope.txt"))
	require.NoError(t, err)
	args, err = os.ReadFile(argsFile)
	require.NoError(t, err)
	assert.NotContains(t, string(args), "nope.txt")
}
