package subfmt

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/subx-cli/subx/pkg/subxerr"
)

var (
	microDvdLineRe  = regexp.MustCompile(`^\{(\d+)\}\{(\d+)\}(.*)$`)
	subViewerLineRe = regexp.MustCompile(`^(\d{2}:\d{2}:\d{2}\.\d{2}),(\d{2}:\d{2}:\d{2}\.\d{2})`)
)

// SubVariant distinguishes the two ".sub" dialects SubX understands: the
// frame-indexed MicroDVD form and the timestamped SubViewer form.
type SubVariant string

const (
	SubVariantMicroDVD   SubVariant = "microdvd"
	SubVariantSubViewer  SubVariant = "subviewer"
)

// ParseSUB parses a ".sub" document. frameRate is required for MicroDVD
// (frame-indexed) content; SubViewer content ignores it.
func ParseSUB(text string, frameRate float64) (*Document, error) {
	if microDvdRe.MatchString(text) {
		return parseMicroDVD(text, frameRate)
	}
	return parseSubViewer(text)
}

func parseMicroDVD(text string, frameRate float64) (*Document, error) {
	if frameRate <= 0 {
		return nil, subxerr.New(subxerr.KindSubtitleParse, "MicroDVD .sub requires a known frame rate")
	}
	doc := New(FormatSUB)
	doc.Metadata.FrameRate = frameRate
	for _, line := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		m := microDvdLineRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		startFrame, _ := strconv.Atoi(m[1])
		endFrame, _ := strconv.Atoi(m[2])
		start := time.Duration(float64(startFrame) / frameRate * float64(time.Second))
		end := time.Duration(float64(endFrame) / frameRate * float64(time.Second))
		payload := strings.ReplaceAll(m[3], "|", "\n")
		entry := Entry{Start: start, End: end, Text: stripInlineMarkup(payload, nil)}
		applyInlineStyle(payload, &entry)
		doc.Entries = append(doc.Entries, entry)
	}
	doc.Normalize()
	return doc, nil
}

func parseSubViewer(text string) (*Document, error) {
	doc := New(FormatSUB)
	for _, block := range splitBlocks(text) {
		for len(block) > 0 && strings.HasPrefix(strings.TrimSpace(block[0]), "[") {
			block = block[1:] // SubViewer [INFORMATION]/[SUBTITLE] header lines, not a cue
		}
		if len(block) == 0 {
			continue
		}
		header := strings.TrimSpace(block[0])
		m := subViewerLineRe.FindStringSubmatch(header)
		if m == nil {
			continue
		}
		start, err := parseSubViewerTimestamp(m[1])
		if err != nil {
			return nil, err
		}
		end, err := parseSubViewerTimestamp(m[2])
		if err != nil {
			return nil, err
		}
		payload := strings.ReplaceAll(strings.Join(block[1:], "\n"), "[br]", "\n")
		entry := Entry{Start: start, End: end, Text: stripInlineMarkup(payload, nil)}
		applyInlineStyle(payload, &entry)
		doc.Entries = append(doc.Entries, entry)
	}
	doc.Normalize()
	return doc, nil
}

func parseSubViewerTimestamp(s string) (time.Duration, error) {
	return ParseSRTTimestamp(strings.Replace(s, ".", ",", 1) + "0")
}

// WriteSUB serializes a Document to ".sub" in the given variant. MicroDVD
// requires doc.Metadata.FrameRate to be set; a zero frame rate falls back
// to SubViewer regardless of the requested variant.
func WriteSUB(doc *Document, variant SubVariant) string {
	doc.Normalize()
	if variant == SubVariantMicroDVD && doc.Metadata.FrameRate > 0 {
		return writeMicroDVD(doc)
	}
	return writeSubViewer(doc)
}

func writeMicroDVD(doc *Document) string {
	fr := doc.Metadata.FrameRate
	var b strings.Builder
	for _, e := range doc.Entries {
		startFrame := int(float64(e.Start) / float64(time.Second) * fr)
		endFrame := int(float64(e.End) / float64(time.Second) * fr)
		fmt.Fprintf(&b, "{%d}{%d}%s\n", startFrame, endFrame, strings.ReplaceAll(withInlineStyle(e), "\n", "|"))
	}
	return b.String()
}

func writeSubViewer(doc *Document) string {
	var b strings.Builder
	b.WriteString("[INFORMATION]\n[END INFORMATION]\n[SUBTITLE]\n")
	for _, e := range doc.Entries {
		fmt.Fprintf(&b, "%s,%s\n%s\n\n",
			toSubViewerTimestamp(e.Start), toSubViewerTimestamp(e.End),
			strings.ReplaceAll(withInlineStyle(e), "\n", "[br]"))
	}
	return b.String()
}

func toSubViewerTimestamp(d time.Duration) string {
	s := FormatSRTTimestamp(d) // HH:MM:SS,mmm
	s = strings.Replace(s, ",", ".", 1)
	return s[:len(s)-1] // drop the last millisecond digit -> centiseconds
}
