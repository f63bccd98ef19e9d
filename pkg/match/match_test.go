package match

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/subx-cli/subx/pkg/discover"
	"github.com/subx-cli/subx/pkg/matchcache"
	"github.com/subx-cli/subx/pkg/oracle"
)

func testExts() discover.ExtensionSets {
	return discover.ExtensionSets{
		Video:    []string{"mkv", "mp4"},
		Subtitle: []string{"srt"},
	}
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func TestDeriveFilenamePreservesLanguageToken(t *testing.T) {
	got := deriveFilename("Matrix.1999.mkv", "Matrix_EN.srt")
	assert.Equal(t, "Matrix.1999.en.srt", got)
}

func TestDeriveFilenameNoLanguageToken(t *testing.T) {
	got := deriveFilename("Episode01.mp4", "Episode01.srt")
	assert.Equal(t, "Episode01.srt", got)
}

func TestRunFiltersByConfidenceAndDerivesNames(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "Matrix.1999.mkv", "video")
	writeFile(t, dir, "Matrix_EN.srt", "1\n00:00:00,000 --> 00:00:01,000\nHi\n")

	cache := matchcache.New(t.TempDir(), zerolog.Nop())
	heuristic := oracle.NewHeuristic()
	eng := NewEngine(testExts(), cache, heuristic, zerolog.Nop())

	ops, err := eng.Run(context.Background(), Request{
		Inputs:              []string{dir},
		Mode:                ModeRenameInPlace,
		ConfidenceThreshold: 0.1,
		DryRun:              true,
		MaxConcurrentJobs:   2,
	})
	require.NoError(t, err)
	require.Len(t, ops, 1)
	assert.Equal(t, "Matrix.1999.en.srt", ops[0].ProposedNewName)
	assert.Equal(t, ActionPlanned, ops[0].Action)
}

func TestRunReportsProgressOncePerExecutedOperation(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "ep01.mkv", "video")
	writeFile(t, dir, "ep01.srt", "1\n00:00:00,000 --> 00:00:01,000\nHi\n")
	writeFile(t, dir, "ep02.mkv", "video")
	writeFile(t, dir, "ep02.srt", "1\n00:00:00,000 --> 00:00:01,000\nHi\n")

	cache := matchcache.New(t.TempDir(), zerolog.Nop())
	eng := NewEngine(testExts(), cache, oracle.NewHeuristic(), zerolog.Nop())

	var mu sync.Mutex
	var calls [][2]int
	ops, err := eng.Run(context.Background(), Request{
		Inputs:              []string{dir},
		Mode:                ModeRenameInPlace,
		ConfidenceThreshold: 0.1,
		MaxConcurrentJobs:   2,
		OnProgress: func(done, total int) {
			mu.Lock()
			calls = append(calls, [2]int{done, total})
			mu.Unlock()
		},
	})
	require.NoError(t, err)
	require.Len(t, ops, 2)
	require.Len(t, calls, 2, "OnProgress must fire once per executed operation")
	for _, c := range calls {
		assert.Equal(t, 2, c[1])
	}
}

func TestDryRunCacheHitSkipsOracleOnSecondRun(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "ep01.mkv", "video")
	writeFile(t, dir, "ep01.srt", "1\n00:00:00,000 --> 00:00:01,000\nHi\n")
	writeFile(t, dir, "ep02.mkv", "video")
	writeFile(t, dir, "ep02.srt", "1\n00:00:00,000 --> 00:00:01,000\nHi\n")

	cache := matchcache.New(t.TempDir(), zerolog.Nop())
	counting := &countingOracle{Heuristic: oracle.NewHeuristic()}
	eng := NewEngine(testExts(), cache, counting, zerolog.Nop())

	req := Request{
		Inputs:              []string{dir},
		Mode:                ModeRenameInPlace,
		ConfidenceThreshold: 0.1,
		DryRun:              true,
		MaxConcurrentJobs:   2,
	}

	first, err := eng.Run(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 1, counting.calls)

	second, err := eng.Run(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 1, counting.calls, "cache hit must not re-contact the oracle")
	assert.Equal(t, first, second)
}

func TestResolveConflictAddsNumericSuffix(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, dir, "a.srt", "source")
	writeFile(t, dir, "b.srt", "different")

	op := Operation{SubtitlePath: src, DestinationPath: filepath.Join(dir, "b.srt")}
	resolved, skipped, err := resolveConflict(op, false)
	require.NoError(t, err)
	assert.False(t, skipped)
	assert.Equal(t, filepath.Join(dir, "b.1.srt"), resolved.DestinationPath)
}

func TestResolveConflictSkipsByteIdenticalDestination(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, dir, "a.srt", "same content")
	writeFile(t, dir, "b.srt", "same content")

	op := Operation{SubtitlePath: src, DestinationPath: filepath.Join(dir, "b.srt")}
	_, skipped, err := resolveConflict(op, false)
	require.NoError(t, err)
	assert.True(t, skipped)
}

// countingOracle wraps Heuristic to count Pair invocations without a real
// network backend.
type countingOracle struct {
	*oracle.Heuristic
	calls int
}

func (c *countingOracle) Pair(ctx context.Context, videos, subtitles []oracle.FileRef) ([]oracle.Pairing, error) {
	c.calls++
	return c.Heuristic.Pair(ctx, videos, subtitles)
}
