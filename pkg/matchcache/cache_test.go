package matchcache

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/subx-cli/subx/pkg/discover"
)

func testFingerprint() discover.Fingerprint {
	return discover.BuildFingerprint("/media/show", false, []discover.MediaFile{
		{RelPath: "ep01.mkv", Size: 100, Role: discover.RoleVideo},
		{RelPath: "ep01.srt", Size: 10, Role: discover.RoleSubtitle},
	})
}

func TestLookupMissWhenNoFile(t *testing.T) {
	store := New(t.TempDir(), zerolog.Nop())
	_, hit := store.Lookup("/media/show", false, testFingerprint(), "gpt-4o-mini", "abc")
	assert.False(t, hit)
}

func TestWriteThenLookupHit(t *testing.T) {
	dir := t.TempDir()
	store := New(dir, zerolog.Nop())
	fp := testFingerprint()

	rec := Record{
		DirectoryRoot: "/media/show",
		Recursive:     false,
		Fingerprint:   fp,
		OracleModelID: "gpt-4o-mini",
		ConfigHash:    "abc",
		Operations:    []Operation{{VideoID: "file_1", SubtitleID: "file_2", ProposedNewName: "ep01.srt", Confidence: 0.9}},
	}
	require.NoError(t, store.Write(rec, 1000))

	got, hit := store.Lookup("/media/show", false, fp, "gpt-4o-mini", "abc")
	require.True(t, hit)
	require.Len(t, got.Operations, 1)
	assert.Equal(t, "ep01.srt", got.Operations[0].ProposedNewName)
}

func TestLookupMissOnFingerprintDrift(t *testing.T) {
	dir := t.TempDir()
	store := New(dir, zerolog.Nop())
	fp := testFingerprint()
	require.NoError(t, store.Write(Record{
		DirectoryRoot: "/media/show", Fingerprint: fp, OracleModelID: "m", ConfigHash: "c",
	}, 1))

	changed := discover.BuildFingerprint("/media/show", false, []discover.MediaFile{
		{RelPath: "ep01.mkv", Size: 999, Role: discover.RoleVideo},
	})
	_, hit := store.Lookup("/media/show", false, changed, "m", "c")
	assert.False(t, hit)
}

func TestLookupTreatsCorruptFileAsMiss(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "match_cache.json"), []byte("{not json"), 0o644))
	store := New(dir, zerolog.Nop())
	_, hit := store.Lookup("/media/show", false, testFingerprint(), "m", "c")
	assert.False(t, hit)
}

func TestClearRemovesFile(t *testing.T) {
	dir := t.TempDir()
	store := New(dir, zerolog.Nop())
	require.NoError(t, store.Write(Record{DirectoryRoot: "x"}, 1))
	require.NoError(t, store.Clear())
	_, hit := store.Lookup("x", false, discover.Fingerprint{}, "", "")
	assert.False(t, hit)
}
