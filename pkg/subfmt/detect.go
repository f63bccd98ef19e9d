package subfmt

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/subx-cli/subx/pkg/subxerr"
)

var (
	srtBlockRe  = regexp.MustCompile(`(?m)^\d{1,2}:\d{2}:\d{2}[,.]\d{3}\s*-->\s*\d{1,2}:\d{2}:\d{2}[,.]\d{3}`)
	vttHeaderRe = regexp.MustCompile(`^\x{FEFF}?WEBVTT`)
	assHeaderRe = regexp.MustCompile(`(?i)\[(script info|v4\+? styles|events)\]`)
	microDvdRe  = regexp.MustCompile(`(?m)^\{\d+\}\{\d+\}`)
	subViewerRe = regexp.MustCompile(`(?m)^\d{2}:\d{2}:\d{2}\.\d{2},\d{2}:\d{2}:\d{2}\.\d{2}`)
)

var extensionFormats = map[string]Format{
	".srt": FormatSRT,
	".ass": FormatASS,
	".ssa": FormatASS,
	".vtt": FormatVTT,
	".sub": FormatSUB,
}

// DetectFormat implements spec.md §4.2's precedence: an explicit flag wins
// outright; otherwise every format whose content signature matches is
// collected, and a single match is returned as-is. Multiple matches are
// resolved by the file extension when it names one of the candidates;
// otherwise detection is ambiguous and fails.
func DetectFormat(filename string, content []byte, explicit Format) (Format, error) {
	if explicit != "" {
		return explicit, nil
	}

	text := string(content)
	head := strings.TrimLeft(text, "﻿ \t\r\n")
	if len(head) > 16 {
		head = head[:16]
	}
	candidates := map[Format]bool{}
	if vttHeaderRe.MatchString(head) {
		candidates[FormatVTT] = true
	}
	if assHeaderRe.MatchString(text) {
		candidates[FormatASS] = true
	}
	if microDvdRe.MatchString(text) || subViewerRe.MatchString(text) {
		candidates[FormatSUB] = true
	}
	if srtBlockRe.MatchString(text) && !candidates[FormatVTT] {
		candidates[FormatSRT] = true
	}

	switch len(candidates) {
	case 0:
		return "", subxerr.New(subxerr.KindFormatUnsupported, "could not recognize subtitle format for "+filename)
	case 1:
		for f := range candidates {
			return f, nil
		}
	}

	if ext, ok := extensionFormats[strings.ToLower(filepath.Ext(filename))]; ok && candidates[ext] {
		return ext, nil
	}
	return "", subxerr.New(subxerr.KindFormatAmbiguous,
		"content matches more than one subtitle format for "+filename+" and the extension does not disambiguate")
}
