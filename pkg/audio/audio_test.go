package audio

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeStub writes an executable shell script standing in for ffmpeg/ffprobe
// so the loader can be exercised without a real media toolchain installed.
func writeStub(t *testing.T, dir, name, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("stub scripts are POSIX shell only")
	}
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte("#!/bin/sh\n"+body), 0o755))
	return p
}

func TestLoadDownmixesStereoToMono(t *testing.T) {
	dir := t.TempDir()
	FFprobePath = writeStub(t, dir, "ffprobe", `echo '{"streams":[{"sample_rate":"16000","channels":2}]}'`)
	// Four interleaved stereo float32 samples: (1,0)->0.5 then (0,1)->0.5.
	FFmpegPath = writeStub(t, dir, "ffmpeg", `printf '\x00\x00\x80\x3f\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00\x80\x3f'`)
	t.Cleanup(func() { FFmpegPath, FFprobePath = "ffmpeg", "ffprobe" })

	l := NewLoader(zerolog.Nop())
	a, err := l.Load(context.Background(), "in.mkv")
	require.NoError(t, err)
	assert.Equal(t, 16000, a.SampleRate)
	assert.Equal(t, 2, a.ChannelsOriginal)
	require.Len(t, a.Samples, 2)
	assert.InDelta(t, 0.5, a.Samples[0], 1e-6)
	assert.InDelta(t, 0.5, a.Samples[1], 1e-6)
}

func TestLoadEmptyDecodeReturnsWellFormedEmptyResult(t *testing.T) {
	dir := t.TempDir()
	FFprobePath = writeStub(t, dir, "ffprobe", `echo '{"streams":[{"sample_rate":"16000","channels":1}]}'`)
	FFmpegPath = writeStub(t, dir, "ffmpeg", `true`)
	t.Cleanup(func() { FFmpegPath, FFprobePath = "ffmpeg", "ffprobe" })

	l := NewLoader(zerolog.Nop())
	a, err := l.Load(context.Background(), "in.mkv")
	require.NoError(t, err)
	assert.Empty(t, a.Samples)
	assert.Equal(t, 0.0, a.DurationSeconds)
	assert.Equal(t, 16000, a.SampleRate)
}

func TestLoadFailsFatalOnProbeError(t *testing.T) {
	dir := t.TempDir()
	FFprobePath = writeStub(t, dir, "ffprobe", `exit 1`)
	t.Cleanup(func() { FFprobePath = "ffprobe" })

	l := NewLoader(zerolog.Nop())
	_, err := l.Load(context.Background(), "in.mkv")
	require.Error(t, err)
}
