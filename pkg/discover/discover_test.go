package discover

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testExts() ExtensionSets {
	return ExtensionSets{
		Video:    []string{"mkv", "mp4"},
		Audio:    []string{"mp3", "wav"},
		Subtitle: []string{"srt", "ass"},
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestScanClassifiesAndDropsOther(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "ep01.mkv"), "video")
	writeFile(t, filepath.Join(dir, "ep01.srt"), "subs")
	writeFile(t, filepath.Join(dir, "readme.txt"), "ignored")

	files, err := Scan([]string{dir}, false, testExts())
	require.NoError(t, err)
	require.Len(t, files, 2)

	byRole := map[Role]int{}
	for _, f := range files {
		byRole[f.Role]++
	}
	assert.Equal(t, 1, byRole[RoleVideo])
	assert.Equal(t, 1, byRole[RoleSubtitle])
}

func TestScanRecursiveFlag(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "nested", "ep02.mp4"), "v")

	flat, err := Scan([]string{dir}, false, testExts())
	require.NoError(t, err)
	assert.Len(t, flat, 0)

	deep, err := Scan([]string{dir}, true, testExts())
	require.NoError(t, err)
	require.Len(t, deep, 1)
	assert.Equal(t, "nested/ep02.mp4", deep[0].RelPath)
}

func TestIdentityStableAndPathSensitive(t *testing.T) {
	id1 := Identity("a/b.srt", 100)
	id2 := Identity("a/b.srt", 100)
	assert.Equal(t, id1, id2)

	id3 := Identity("a/c.srt", 100)
	assert.NotEqual(t, id1, id3)

	id4 := Identity("a/b.srt", 101)
	assert.NotEqual(t, id1, id4)
}

func TestFingerprintEqualityIgnoresOrder(t *testing.T) {
	a := []MediaFile{{RelPath: "b.srt", Size: 1}, {RelPath: "a.srt", Size: 2}}
	b := []MediaFile{{RelPath: "a.srt", Size: 2}, {RelPath: "b.srt", Size: 1}}
	fa := BuildFingerprint("/root", false, a)
	fb := BuildFingerprint("/root", false, b)
	assert.True(t, fa.Equal(fb))
}

func TestFingerprintDetectsChange(t *testing.T) {
	a := BuildFingerprint("/root", false, []MediaFile{{RelPath: "a.srt", Size: 2}})
	b := BuildFingerprint("/root", false, []MediaFile{{RelPath: "a.srt", Size: 3}})
	assert.False(t, a.Equal(b))
}
