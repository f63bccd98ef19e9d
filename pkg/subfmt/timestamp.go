package subfmt

import (
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/subx-cli/subx/pkg/subxerr"
)

var srtTimestampRe = regexp.MustCompile(`^(\d+):(\d{2}):(\d{2})[,.](\d{3})$`)
var vttTimestampRe = regexp.MustCompile(`^(?:(\d+):)?(\d{2}):(\d{2})\.(\d{3})$`)
var assTimestampRe = regexp.MustCompile(`^(\d+):(\d{2}):(\d{2})\.(\d{2})$`)

func parseClock(h, m, s, frac string, fracScale time.Duration) (time.Duration, error) {
	hh, err1 := strconv.Atoi(h)
	mm, err2 := strconv.Atoi(m)
	ss, err3 := strconv.Atoi(s)
	ff, err4 := strconv.Atoi(frac)
	if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
		return 0, subxerr.New(subxerr.KindSubtitleParse, "malformed timestamp")
	}
	return time.Duration(hh)*time.Hour +
		time.Duration(mm)*time.Minute +
		time.Duration(ss)*time.Second +
		time.Duration(ff)*fracScale, nil
}

// ParseSRTTimestamp parses "HH:MM:SS,mmm" (a trailing '.' separator is also
// accepted since some encoders emit it).
func ParseSRTTimestamp(s string) (time.Duration, error) {
	m := srtTimestampRe.FindStringSubmatch(s)
	if m == nil {
		return 0, subxerr.New(subxerr.KindSubtitleParse, fmt.Sprintf("invalid SRT timestamp %q", s))
	}
	return parseClock(m[1], m[2], m[3], m[4], time.Millisecond)
}

// FormatSRTTimestamp renders "HH:MM:SS,mmm", clamping negative durations to
// zero since a well-formed document never carries one after Normalize/Shift.
func FormatSRTTimestamp(d time.Duration) string {
	return formatClock(d, ',', 3)
}

// ParseVTTTimestamp parses "[HH:]MM:SS.mmm"; the hour component is optional
// per the WebVTT grammar.
func ParseVTTTimestamp(s string) (time.Duration, error) {
	m := vttTimestampRe.FindStringSubmatch(s)
	if m == nil {
		return 0, subxerr.New(subxerr.KindSubtitleParse, fmt.Sprintf("invalid VTT timestamp %q", s))
	}
	h := m[1]
	if h == "" {
		h = "0"
	}
	return parseClock(h, m[2], m[3], m[4], time.Millisecond)
}

// FormatVTTTimestamp renders "HH:MM:SS.mmm".
func FormatVTTTimestamp(d time.Duration) string {
	return formatClock(d, '.', 3)
}

// ParseASSTimestamp parses ASS/SSA's "H:MM:SS.cc" centisecond form.
func ParseASSTimestamp(s string) (time.Duration, error) {
	m := assTimestampRe.FindStringSubmatch(s)
	if m == nil {
		return 0, subxerr.New(subxerr.KindSubtitleParse, fmt.Sprintf("invalid ASS timestamp %q", s))
	}
	return parseClock(m[1], m[2], m[3], m[4], 10*time.Millisecond)
}

// FormatASSTimestamp renders "H:MM:SS.cc".
func FormatASSTimestamp(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	cs := d / (10 * time.Millisecond)
	h := cs / (360000)
	cs -= h * 360000
	m := cs / 6000
	cs -= m * 6000
	s := cs / 100
	cs -= s * 100
	return fmt.Sprintf("%d:%02d:%02d.%02d", h, m, s, cs)
}

func formatClock(d time.Duration, fracSep byte, fracDigits int) string {
	if d < 0 {
		d = 0
	}
	ms := d / time.Millisecond
	h := ms / 3600000
	ms -= h * 3600000
	m := ms / 60000
	ms -= m * 60000
	s := ms / 1000
	ms -= s * 1000
	_ = fracDigits
	return fmt.Sprintf("%02d:%02d:%02d%c%03d", h, m, s, fracSep, ms)
}
