package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/subx-cli/subx/pkg/discover"
)

func TestParseOffsetAcceptsSignedFloat(t *testing.T) {
	v, err := parseOffset("-1.5")
	require.NoError(t, err)
	assert.Equal(t, -1.5, v)
}

func TestParseOffsetRejectsEmptyString(t *testing.T) {
	_, err := parseOffset("")
	assert.Error(t, err)
}

func TestParseOffsetRejectsGarbage(t *testing.T) {
	_, err := parseOffset("not-a-number")
	assert.Error(t, err)
}

func TestBestVideoMatchPicksLongestCommonStemPrefix(t *testing.T) {
	sub := discover.MediaFile{Name: "Matrix.1999.en.srt"}
	videos := []discover.MediaFile{
		{Name: "Matrix.1999.mkv"},
		{Name: "Unrelated.mp4"},
	}
	best, ok := bestVideoMatch(sub, videos)
	require.True(t, ok)
	assert.Equal(t, "Matrix.1999.mkv", best.Name)
}

func TestBestVideoMatchNoCandidates(t *testing.T) {
	sub := discover.MediaFile{Name: "random.srt"}
	_, ok := bestVideoMatch(sub, nil)
	assert.False(t, ok)
}

func TestBestVideoMatchRequiresNonZeroOverlap(t *testing.T) {
	sub := discover.MediaFile{Name: "zzz.srt"}
	videos := []discover.MediaFile{{Name: "aaa.mkv"}}
	_, ok := bestVideoMatch(sub, videos)
	assert.False(t, ok)
}
