// Package oracle wraps an external "given these files, which video pairs
// with which subtitle" service behind a narrow capability interface, so the
// matching engine (pkg/match) never depends on a concrete AI vendor.
// Grounded on the teacher's pkg/llms Provider abstraction (one interface,
// many backends selected by pkg/config.AIConfig.Provider).
package oracle

import "context"

// FileRef is the id-keyed description of a file sent to the oracle. Name
// and RelPath are context only; the id is the primary key per spec.md §4.5.
type FileRef struct {
	ID      string
	Name    string
	RelPath string
}

// Pairing is one proposed video/subtitle pairing returned by the oracle.
type Pairing struct {
	VideoID    string
	SubtitleID string
	Confidence float64
	Reasoning  []string
}

// Oracle is the capability pkg/match depends on. Alternative implementations
// (a real vendor, a deterministic heuristic, a fixture-driven test double)
// plug in unchanged — spec.md §9.
type Oracle interface {
	// Pair proposes pairings between videos and subtitles. Unknown ids in
	// the response are dropped by the caller with a warning, not by Pair.
	Pair(ctx context.Context, videos, subtitles []FileRef) ([]Pairing, error)
	// ModelID identifies the concrete model/version in use, recorded in the
	// cache so a model change invalidates it.
	ModelID() string
}

func formatFileLine(f FileRef) string {
	return "ID:" + f.ID + " | Name:" + f.Name + " | Path:" + f.RelPath
}
