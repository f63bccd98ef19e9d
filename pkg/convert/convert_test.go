package convert

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/subx-cli/subx/pkg/discover"
	"github.com/subx-cli/subx/pkg/subfmt"
)

const srtFixture = "1\n00:00:01,000 --> 00:00:02,000\n<b>Hello</b>\n\n2\n00:00:03,000 --> 00:00:04,000\nWorld\n"

func TestConvertFileSRTToVTT(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "a.srt")
	require.NoError(t, os.WriteFile(in, []byte(srtFixture), 0o644))
	out := filepath.Join(dir, "a.vtt")

	c := NewConverter(zerolog.Nop())
	res := c.ConvertFile(in, out, Options{
		OutputFormat:       subfmt.FormatVTT,
		DefaultEncoding:    "utf-8",
		EncodingConfidence: 0.5,
		PreserveStyling:    true,
		KeepOriginal:       true,
	})
	require.NoError(t, res.Err)
	content, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(content), "WEBVTT")
	assert.FileExists(t, in, "keep_original must preserve the source file")
}

func TestConvertFileDropsStylingWhenTargetCannotExpressIt(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "a.srt")
	require.NoError(t, os.WriteFile(in, []byte(srtFixture), 0o644))
	out := filepath.Join(dir, "a.sub")

	c := NewConverter(zerolog.Nop())
	res := c.ConvertFile(in, out, Options{
		OutputFormat:       subfmt.FormatSUB,
		DefaultEncoding:    "utf-8",
		EncodingConfidence: 0.5,
		PreserveStyling:    true,
		KeepOriginal:       true,
		FrameRate:          23.976,
	})
	require.NoError(t, res.Err)
	assert.NotEmpty(t, res.Warning)
}

func TestConvertFileDeletesOriginalUnlessKept(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "a.srt")
	require.NoError(t, os.WriteFile(in, []byte(srtFixture), 0o644))
	out := filepath.Join(dir, "a.vtt")

	c := NewConverter(zerolog.Nop())
	res := c.ConvertFile(in, out, Options{
		OutputFormat:       subfmt.FormatVTT,
		DefaultEncoding:    "utf-8",
		EncodingConfidence: 0.5,
		KeepOriginal:       false,
	})
	require.NoError(t, res.Err)
	assert.NoFileExists(t, in)
}

func TestConvertFileDryRunWritesNothingAndReportsUnchangedDiff(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "a.srt")
	require.NoError(t, os.WriteFile(in, []byte(srtFixture), 0o644))
	out := filepath.Join(dir, "a.vtt")

	c := NewConverter(zerolog.Nop())
	res := c.ConvertFile(in, out, Options{
		OutputFormat:       subfmt.FormatVTT,
		DefaultEncoding:    "utf-8",
		EncodingConfidence: 0.5,
		PreserveStyling:    true,
		DryRun:             true,
	})
	require.NoError(t, res.Err)
	assert.NoFileExists(t, out, "dry-run must not write the output file")
	assert.FileExists(t, in, "dry-run must not remove the input file")
	require.Len(t, res.Diff, 2)
	for _, d := range res.Diff {
		assert.Equal(t, "unchanged", d.Kind, "a round-trippable SRT->VTT conversion changes nothing entry-wise")
	}
}

func TestConvertBatchMirrorsRelativeLayout(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "season1"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "season1", "ep01.srt"), []byte(srtFixture), 0o644))

	outDir := t.TempDir()
	c := NewConverter(zerolog.Nop())
	exts := discover.ExtensionSets{Subtitle: []string{"srt"}}
	var progressCalls [][2]int
	results := c.ConvertBatch([]string{dir}, true, outDir, Options{
		OutputFormat:       subfmt.FormatVTT,
		DefaultEncoding:    "utf-8",
		EncodingConfidence: 0.5,
		KeepOriginal:       true,
	}, exts, func(done, total int) {
		progressCalls = append(progressCalls, [2]int{done, total})
	})

	require.Len(t, results, 1)
	require.NoError(t, results[0].Err)
	assert.FileExists(t, filepath.Join(outDir, "season1", "ep01.vtt"))
	assert.Equal(t, [][2]int{{1, 1}}, progressCalls, "onProgress must report each completed conversion")
}
