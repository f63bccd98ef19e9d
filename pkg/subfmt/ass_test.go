package subfmt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleASS = `[Script Info]
Title: Demo
ScriptType: v4.00+

[V4+ Styles]
Format: Name, Fontname, Fontsize, PrimaryColour, SecondaryColour, OutlineColour, BackColour, Bold, Italic, Underline, StrikeOut, ScaleX, ScaleY, Spacing, Angle, BorderStyle, Outline, Shadow, Alignment, MarginL, MarginR, MarginV, Encoding
Style: Default,Arial,20,&H00FFFFFF,&H000000FF,&H00000000,&H00000000,0,0,0,0,100,100,0,0,1,2,0,2,10,10,10,1

[Events]
Format: Layer, Start, End, Style, Name, MarginL, MarginR, MarginV, Effect, Text
Dialogue: 0,0:00:01.00,0:00:04.00,Default,,0,0,0,,Hello {\b1}world{\b0}
Dialogue: 0,0:00:05.00,0:00:07.00,Default,,0,0,0,,Line one\NLine two
`

func TestParseASSBasic(t *testing.T) {
	doc, err := ParseASS(sampleASS)
	require.NoError(t, err)
	assert.Equal(t, "Demo", doc.Metadata.Title)
	require.Len(t, doc.Entries, 2)

	e0 := doc.Entries[0]
	assert.Equal(t, 1*time.Second, e0.Start)
	assert.Equal(t, 4*time.Second, e0.End)
	assert.Equal(t, "Hello world", e0.Text)
	require.NotNil(t, e0.Style)
	assert.Equal(t, "Arial", e0.Style.FontName)

	e1 := doc.Entries[1]
	assert.Equal(t, "Line one\nLine two", e1.Text)
}

func TestASSRoundTripPreservesTuples(t *testing.T) {
	doc, err := ParseASS(sampleASS)
	require.NoError(t, err)
	out := WriteASS(doc)

	reparsed, err := ParseASS(out)
	require.NoError(t, err)
	assert.Equal(t, doc.PlainTextTuples(), reparsed.PlainTextTuples())
}

func TestParseASSRejectsDialogueBeforeFormat(t *testing.T) {
	_, err := ParseASS("[Events]\nDialogue: 0,0:00:01.00,0:00:02.00,Default,,0,0,0,,oops\n")
	require.Error(t, err)
}
