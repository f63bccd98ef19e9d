package subfmt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiffRoundTripSRTToVTTReportsUnchanged(t *testing.T) {
	doc, err := ParseSRT(sampleSRT)
	require.NoError(t, err)

	out := WriteVTT(doc)
	after, err := ParseVTT(out)
	require.NoError(t, err)

	diffs := Diff(doc, after)
	require.Len(t, diffs, 2)
	for _, d := range diffs {
		assert.Equal(t, "unchanged", d.Kind)
		require.NotNil(t, d.Before)
		require.NotNil(t, d.After)
		assert.Equal(t, d.Before.Start, d.After.Start)
		assert.Equal(t, d.Before.Text, d.After.Text)
	}
}

func TestDiffDetectsRetimeRetextAndAdded(t *testing.T) {
	before := New(FormatSRT)
	before.Entries = []Entry{
		{Index: 1, Start: time.Second, End: 2 * time.Second, Text: "same"},
		{Index: 2, Start: 3 * time.Second, End: 4 * time.Second, Text: "old text"},
		{Index: 3, Start: 5 * time.Second, End: 6 * time.Second, Text: "removed soon"},
	}

	after := New(FormatSRT)
	after.Entries = []Entry{
		{Index: 1, Start: time.Second, End: 2 * time.Second, Text: "same"},
		{Index: 2, Start: 3500 * time.Millisecond, End: 4 * time.Second, Text: "new text"},
		{Index: 3, Start: 7 * time.Second, End: 8 * time.Second, Text: "removed soon"},
		{Index: 4, Start: 9 * time.Second, End: 10 * time.Second, Text: "brand new"},
	}

	diffs := Diff(before, after)
	require.Len(t, diffs, 4)
	assert.Equal(t, "unchanged", diffs[0].Kind)
	assert.Equal(t, "retimed+retext", diffs[1].Kind)
	assert.Equal(t, "retimed", diffs[2].Kind)
	assert.Equal(t, "added", diffs[3].Kind)
	assert.Nil(t, diffs[3].Before)
}

func TestDiffDetectsRemovedWhenBeforeIsLonger(t *testing.T) {
	before := New(FormatSRT)
	before.Entries = []Entry{
		{Index: 1, Start: time.Second, End: 2 * time.Second, Text: "stays"},
		{Index: 2, Start: 3 * time.Second, End: 4 * time.Second, Text: "goes away"},
	}

	after := New(FormatSRT)
	after.Entries = []Entry{
		{Index: 1, Start: time.Second, End: 2 * time.Second, Text: "stays"},
	}

	diffs := Diff(before, after)
	require.Len(t, diffs, 2)
	assert.Equal(t, "unchanged", diffs[0].Kind)
	assert.Equal(t, "removed", diffs[1].Kind)
	assert.Nil(t, diffs[1].After)
}
