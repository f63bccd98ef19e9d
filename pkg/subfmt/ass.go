package subfmt

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/subx-cli/subx/pkg/subxerr"
)

var assOverrideTagRe = regexp.MustCompile(`\{[^}]*\}`)

// ParseASS parses the [Script Info], [V4+ Styles] and [Events] sections of
// an ASS/SSA document. Only the fields SubX's model understands are kept;
// unknown Script Info keys and unused style columns are discarded rather
// than preserved verbatim.
func ParseASS(text string) (*Document, error) {
	doc := New(FormatASS)
	doc.Metadata.ASSStyles = map[string]Style{}

	section := ""
	var styleFields, eventFields []string

	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	for _, raw := range lines {
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, ";") || strings.HasPrefix(line, "!") {
			continue
		}
		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			section = strings.ToLower(line[1 : len(line)-1])
			continue
		}

		switch section {
		case "script info":
			if v, ok := cutPrefixField(line, "title:"); ok {
				doc.Metadata.Title = v
			}
		case "v4+ styles", "v4 styles":
			if v, ok := cutPrefixField(line, "format:"); ok {
				styleFields = splitTrim(v, ",")
			} else if v, ok := cutPrefixField(line, "style:"); ok {
				parts := splitTrim(v, ",")
				name, st := buildStyleRow(styleFields, parts)
				if name != "" {
					doc.Metadata.ASSStyles[name] = st
				}
			}
		case "events":
			if v, ok := cutPrefixField(line, "format:"); ok {
				eventFields = splitTrim(v, ",")
			} else if v, ok := cutPrefixField(line, "dialogue:"); ok {
				entry, err := buildDialogueEntry(eventFields, v, doc.Metadata.ASSStyles)
				if err != nil {
					return nil, err
				}
				doc.Entries = append(doc.Entries, entry)
			}
		}
	}
	doc.Normalize()
	return doc, nil
}

func cutPrefixField(line, prefix string) (string, bool) {
	if len(line) < len(prefix) || !strings.EqualFold(line[:len(prefix)], prefix) {
		return "", false
	}
	return strings.TrimSpace(line[len(prefix):]), true
}

func splitTrim(s, sep string) []string {
	parts := strings.Split(s, sep)
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

func fieldIndex(fields []string, name string) int {
	for i, f := range fields {
		if strings.EqualFold(f, name) {
			return i
		}
	}
	return -1
}

func buildStyleRow(fields, values []string) (string, Style) {
	get := func(name string) string {
		i := fieldIndex(fields, name)
		if i < 0 || i >= len(values) {
			return ""
		}
		return values[i]
	}
	var st Style
	st.FontName = get("fontname")
	if fs, err := strconv.ParseFloat(get("fontsize"), 64); err == nil {
		st.FontSize = fs
	}
	st.Bold = get("bold") != "" && get("bold") != "0"
	st.Italic = get("italic") != "" && get("italic") != "0"
	st.Underline = get("underline") != "" && get("underline") != "0"
	st.Color = get("primarycolour")
	if a, err := strconv.Atoi(get("alignment")); err == nil {
		st.Alignment = Alignment(a)
	}
	return get("name"), st
}

func buildDialogueEntry(fields []string, value string, styles map[string]Style) (Entry, error) {
	if fields == nil {
		return Entry{}, subxerr.New(subxerr.KindSubtitleParse, "Dialogue line found before an Events Format line")
	}
	textIdx := fieldIndex(fields, "text")
	if textIdx < 0 {
		textIdx = len(fields) - 1
	}
	parts := strings.SplitN(value, ",", len(fields))
	if len(parts) < len(fields) {
		return Entry{}, subxerr.New(subxerr.KindSubtitleParse, "malformed Dialogue line: "+value)
	}
	startIdx, endIdx, styleIdx := fieldIndex(fields, "start"), fieldIndex(fields, "end"), fieldIndex(fields, "style")
	if startIdx < 0 || endIdx < 0 {
		return Entry{}, subxerr.New(subxerr.KindSubtitleParse, "Events Format line is missing Start/End")
	}
	start, err := ParseASSTimestamp(strings.TrimSpace(parts[startIdx]))
	if err != nil {
		return Entry{}, err
	}
	end, err := ParseASSTimestamp(strings.TrimSpace(parts[endIdx]))
	if err != nil {
		return Entry{}, err
	}
	text := assOverrideTagRe.ReplaceAllString(parts[textIdx], "")
	text = strings.ReplaceAll(text, `\N`, "\n")
	text = strings.ReplaceAll(text, `\n`, "\n")

	entry := Entry{Start: start, End: end, Text: text}
	if styleIdx >= 0 && styleIdx < len(parts) {
		if st, ok := styles[strings.TrimSpace(parts[styleIdx])]; ok && !st.IsZero() {
			copied := st
			entry.Style = &copied
		}
	}
	return entry, nil
}

var assStyleFormat = []string{
	"Name", "Fontname", "Fontsize", "PrimaryColour", "SecondaryColour", "OutlineColour",
	"BackColour", "Bold", "Italic", "Underline", "StrikeOut", "ScaleX", "ScaleY",
	"Spacing", "Angle", "BorderStyle", "Outline", "Shadow", "Alignment",
	"MarginL", "MarginR", "MarginV", "Encoding",
}
var assEventFormat = []string{
	"Layer", "Start", "End", "Style", "Name", "MarginL", "MarginR", "MarginV", "Effect", "Text",
}

// WriteASS serializes a Document to ASS/SSA. Named styles carried on
// Metadata.ASSStyles are re-emitted as-is; entries referencing no known
// style, or documents with styling dropped, fall back to a single
// synthesized "Default" style.
func WriteASS(doc *Document) string {
	doc.Normalize()
	var b strings.Builder

	b.WriteString("[Script Info]\n")
	if doc.Metadata.Title != "" {
		fmt.Fprintf(&b, "Title: %s\n", doc.Metadata.Title)
	}
	b.WriteString("ScriptType: v4.00+\n")
	b.WriteString("WrapStyle: 0\n\n")

	styles := doc.Metadata.ASSStyles
	if len(styles) == 0 {
		styles = map[string]Style{"Default": {FontName: "Arial", FontSize: 20, Color: "&H00FFFFFF", Alignment: 2}}
	}
	b.WriteString("[V4+ Styles]\n")
	fmt.Fprintf(&b, "Format: %s\n", strings.Join(assStyleFormat, ", "))
	for name, st := range styles {
		fmt.Fprintf(&b, "Style: %s,%s,%d,%s,&H000000FF,&H00000000,&H00000000,%s,%s,%s,0,100,100,0,0,1,2,0,%d,10,10,10,1\n",
			name, orDefault(st.FontName, "Arial"), int(orDefaultFloat(st.FontSize, 20)),
			orDefault(st.Color, "&H00FFFFFF"), boolField(st.Bold), boolField(st.Italic), boolField(st.Underline),
			orDefaultInt(int(st.Alignment), 2))
	}
	b.WriteString("\n[Events]\n")
	fmt.Fprintf(&b, "Format: %s\n", strings.Join(assEventFormat, ", "))
	for _, e := range doc.Entries {
		styleName := "Default"
		if e.Style != nil {
			for name, st := range styles {
				if st == *e.Style {
					styleName = name
					break
				}
			}
		}
		text := strings.ReplaceAll(e.Text, "\n", `\N`)
		fmt.Fprintf(&b, "Dialogue: 0,%s,%s,%s,,0,0,0,,%s\n",
			FormatASSTimestamp(e.Start), FormatASSTimestamp(e.End), styleName, text)
	}
	return b.String()
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func orDefaultFloat(v, def float64) float64 {
	if v == 0 {
		return def
	}
	return v
}

func orDefaultInt(v, def int) int {
	if v == 0 {
		return def
	}
	return v
}

func boolField(b bool) string {
	if b {
		return "-1"
	}
	return "0"
}
