package subfmt

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/subx-cli/subx/pkg/subxerr"
)

var (
	srtIndexRe   = regexp.MustCompile(`^\d+$`)
	srtArrowRe   = regexp.MustCompile(`^(\d{1,2}:\d{2}:\d{2}[,.]\d{3})\s*-->\s*(\d{1,2}:\d{2}:\d{2}[,.]\d{3})`)
	styleTagRe   = regexp.MustCompile(`</?(b|i|u)>`)
)

// ParseSRT parses SRT text into a Document. A missing index line is
// tolerated (indices are regenerated by Normalize regardless), and both
// ',' and '.' are accepted as the millisecond separator.
func ParseSRT(text string) (*Document, error) {
	doc := New(FormatSRT)
	blocks := splitBlocks(text)
	for _, block := range blocks {
		lines := block
		if len(lines) == 0 {
			continue
		}
		i := 0
		if srtIndexRe.MatchString(strings.TrimSpace(lines[0])) {
			i = 1
		}
		if i >= len(lines) {
			continue
		}
		m := srtArrowRe.FindStringSubmatch(strings.TrimSpace(lines[i]))
		if m == nil {
			return nil, subxerr.New(subxerr.KindSubtitleParse, "missing timestamp line in SRT block: "+lines[i])
		}
		start, err := ParseSRTTimestamp(m[1])
		if err != nil {
			return nil, err
		}
		end, err := ParseSRTTimestamp(m[2])
		if err != nil {
			return nil, err
		}
		payload := strings.Join(lines[i+1:], "\n")
		entry := Entry{Start: start, End: end, Text: stripInlineMarkup(payload, nil)}
		applyInlineStyle(payload, &entry)
		doc.Entries = append(doc.Entries, entry)
	}
	doc.Normalize()
	return doc, nil
}

// WriteSRT serializes a Document to SRT text, normalizing first so the
// output is sorted and densely indexed from 1.
func WriteSRT(doc *Document) string {
	doc.Normalize()
	var b strings.Builder
	for _, e := range doc.Entries {
		fmt.Fprintf(&b, "%d\n%s --> %s\n%s\n\n",
			e.Index, FormatSRTTimestamp(e.Start), FormatSRTTimestamp(e.End), withInlineStyle(e))
	}
	return b.String()
}

// splitBlocks splits raw text on blank lines (allowing for \r\n), returning
// each block as its trimmed, non-empty lines.
func splitBlocks(text string) [][]string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	rawBlocks := regexp.MustCompile(`\n\s*\n`).Split(strings.TrimSpace(text), -1)
	out := make([][]string, 0, len(rawBlocks))
	for _, rb := range rawBlocks {
		var lines []string
		for _, l := range strings.Split(rb, "\n") {
			if strings.TrimSpace(l) != "" {
				lines = append(lines, l)
			}
		}
		if len(lines) > 0 {
			out = append(out, lines)
		}
	}
	return out
}

func stripInlineMarkup(s string, _ *Entry) string {
	return strings.TrimSpace(styleTagRe.ReplaceAllString(s, ""))
}

func applyInlineStyle(s string, e *Entry) {
	lower := strings.ToLower(s)
	var st Style
	any := false
	if strings.Contains(lower, "<b>") {
		st.Bold = true
		any = true
	}
	if strings.Contains(lower, "<i>") {
		st.Italic = true
		any = true
	}
	if strings.Contains(lower, "<u>") {
		st.Underline = true
		any = true
	}
	if any {
		e.Style = &st
	}
}

func withInlineStyle(e Entry) string {
	text := e.Text
	if e.Style == nil {
		return text
	}
	if e.Style.Underline {
		text = "<u>" + text + "</u>"
	}
	if e.Style.Italic {
		text = "<i>" + text + "</i>"
	}
	if e.Style.Bold {
		text = "<b>" + text + "</b>"
	}
	return text
}
