package subfmt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleVTT = `WEBVTT

NOTE this is a comment

00:00:01.000 --> 00:00:04.000
Hello world

00:00:05.500 --> 00:00:07.250
<b>Bold cue</b>
`

func TestParseVTTBasic(t *testing.T) {
	doc, err := ParseVTT(sampleVTT)
	require.NoError(t, err)
	require.Len(t, doc.Entries, 2)
	assert.Equal(t, 1*time.Second, doc.Entries[0].Start)
	assert.Equal(t, "Hello world", doc.Entries[0].Text)
	require.Len(t, doc.Metadata.Notes, 1)

	require.NotNil(t, doc.Entries[1].Style)
	assert.True(t, doc.Entries[1].Style.Bold)
}

func TestParseVTTHourlessTimestamp(t *testing.T) {
	doc, err := ParseVTT("WEBVTT\n\n01:02.000 --> 01:05.000\nshort form\n")
	require.NoError(t, err)
	require.Len(t, doc.Entries, 1)
	assert.Equal(t, 62*time.Second, doc.Entries[0].Start)
}

func TestSRTToVTTToSRTPreservesTuples(t *testing.T) {
	srtDoc, err := ParseSRT(sampleSRT)
	require.NoError(t, err)

	vttText := WriteVTT(srtDoc)
	vttDoc, err := ParseVTT(vttText)
	require.NoError(t, err)

	srtBack := WriteSRT(vttDoc)
	reparsed, err := ParseSRT(srtBack)
	require.NoError(t, err)

	assert.Equal(t, srtDoc.PlainTextTuples(), reparsed.PlainTextTuples())
}
