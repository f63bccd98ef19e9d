package syncengine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/subx-cli/subx/pkg/subfmt"
)

func docWithEntries(entries ...subfmt.Entry) *subfmt.Document {
	d := subfmt.New(subfmt.FormatSRT)
	d.Entries = entries
	d.Normalize()
	return d
}

func TestApplyOffsetShiftsEntriesForward(t *testing.T) {
	doc := docWithEntries(subfmt.Entry{Index: 1, Start: 2 * time.Second, End: 4 * time.Second, Text: "hi"})
	res, err := ApplyOffset(doc, 1.5, 60)
	require.NoError(t, err)
	assert.Equal(t, MethodManual, res.Method)
	assert.Equal(t, 1.0, res.Confidence)
	assert.Equal(t, 3500*time.Millisecond, doc.Entries[0].Start)
}

func TestApplyOffsetRejectsOffsetBeyondMax(t *testing.T) {
	doc := docWithEntries(subfmt.Entry{Index: 1, Start: 2 * time.Second, End: 4 * time.Second, Text: "hi"})
	_, err := ApplyOffset(doc, 120, 60)
	require.Error(t, err)
}

func TestApplyOffsetDropsEntryClampedToNothing(t *testing.T) {
	doc := docWithEntries(subfmt.Entry{Index: 1, Start: 100 * time.Millisecond, End: 200 * time.Millisecond, Text: "hi"})
	_, err := ApplyOffset(doc, -5, 60)
	require.NoError(t, err)
	assert.Empty(t, doc.Entries)
}

func TestSpeechRatioIsZeroWithoutAudioDuration(t *testing.T) {
	assert.Equal(t, 0.0, speechRatio(nil, 0))
}
