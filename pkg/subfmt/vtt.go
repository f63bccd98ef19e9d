package subfmt

import (
	"fmt"
	"strings"

	"github.com/subx-cli/subx/pkg/subxerr"
)

// ParseVTT parses WebVTT text into a Document. NOTE and STYLE blocks are
// preserved on Metadata verbatim; cue settings after the timestamp arrow
// (e.g. "align:start line:0") are recognized and discarded since SubX has
// no positioning model.
func ParseVTT(text string) (*Document, error) {
	doc := New(FormatVTT)
	blocks := splitBlocks(text)
	for bi, lines := range blocks {
		if bi == 0 && len(lines) > 0 && strings.HasPrefix(strings.TrimSpace(stripBOM(lines[0])), "WEBVTT") {
			if len(lines) == 1 {
				continue
			}
			lines = lines[1:]
		}
		if len(lines) == 0 {
			continue
		}
		first := strings.TrimSpace(lines[0])
		if strings.HasPrefix(first, "NOTE") {
			doc.Metadata.Notes = append(doc.Metadata.Notes, strings.Join(lines, "\n"))
			continue
		}
		if strings.HasPrefix(first, "STYLE") {
			doc.Metadata.StyleBlocks = append(doc.Metadata.StyleBlocks, strings.Join(lines, "\n"))
			continue
		}

		idx := 0
		if !strings.Contains(first, "-->") {
			idx = 1
		}
		if idx >= len(lines) {
			continue
		}
		cueLine := strings.TrimSpace(lines[idx])
		arrow := strings.Index(cueLine, "-->")
		if arrow < 0 {
			return nil, subxerr.New(subxerr.KindSubtitleParse, "missing cue timing in VTT block: "+cueLine)
		}
		startStr := strings.TrimSpace(cueLine[:arrow])
		rest := strings.TrimSpace(cueLine[arrow+3:])
		endStr := rest
		if sp := strings.IndexAny(rest, " \t"); sp >= 0 {
			endStr = rest[:sp]
		}
		start, err := ParseVTTTimestamp(startStr)
		if err != nil {
			return nil, err
		}
		end, err := ParseVTTTimestamp(endStr)
		if err != nil {
			return nil, err
		}
		payload := strings.Join(lines[idx+1:], "\n")
		entry := Entry{Start: start, End: end, Text: stripInlineMarkup(payload, nil)}
		applyInlineStyle(payload, &entry)
		doc.Entries = append(doc.Entries, entry)
	}
	doc.Normalize()
	return doc, nil
}

// WriteVTT serializes a Document to WebVTT text. Cue identifiers are
// omitted: entry identity in SubX's model is structural (start, end, text),
// not a textual id, and WebVTT cues do not require one.
func WriteVTT(doc *Document) string {
	doc.Normalize()
	var b strings.Builder
	b.WriteString("WEBVTT\n\n")
	for _, block := range doc.Metadata.StyleBlocks {
		b.WriteString(block)
		b.WriteString("\n\n")
	}
	for _, note := range doc.Metadata.Notes {
		b.WriteString(note)
		b.WriteString("\n\n")
	}
	for _, e := range doc.Entries {
		fmt.Fprintf(&b, "%s --> %s\n%s\n\n",
			FormatVTTTimestamp(e.Start), FormatVTTTimestamp(e.End), withInlineStyle(e))
	}
	return b.String()
}

func stripBOM(s string) string {
	return strings.TrimPrefix(s, "﻿")
}
