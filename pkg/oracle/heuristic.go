package oracle

import (
	"context"
	"path/filepath"
	"strings"
)

// Heuristic is a dependency-free, deterministic Oracle: it pairs each
// subtitle with the video whose basename stem shares the longest common
// prefix; on a tie the earliest video in the input order wins. It never makes
// a network call, so it is the default test double and an offline fallback
// — spec.md §9 calls for exactly this shape of alternative implementation.
type Heuristic struct{}

func NewHeuristic() *Heuristic { return &Heuristic{} }

func (h *Heuristic) ModelID() string { return "heuristic-v1" }

func (h *Heuristic) Pair(_ context.Context, videos, subtitles []FileRef) ([]Pairing, error) {
	var out []Pairing
	for _, sub := range subtitles {
		subStem := stem(sub.Name)
		bestIdx := -1
		bestScore := -1
		for i, vid := range videos {
			score := commonPrefixLen(subStem, stem(vid.Name))
			if score > bestScore {
				bestScore = score
				bestIdx = i
			}
		}
		if bestIdx < 0 || bestScore == 0 {
			continue
		}
		confidence := float64(bestScore) / float64(max(len(subStem), 1))
		if confidence > 1.0 {
			confidence = 1.0
		}
		out = append(out, Pairing{
			VideoID:    videos[bestIdx].ID,
			SubtitleID: sub.ID,
			Confidence: confidence,
			Reasoning:  []string{"longest common basename prefix"},
		})
	}
	return out, nil
}

func stem(name string) string {
	ext := filepath.Ext(name)
	return strings.ToLower(strings.TrimSuffix(name, ext))
}

func commonPrefixLen(a, b string) int {
	n := 0
	for n < len(a) && n < len(b) && a[n] == b[n] {
		n++
	}
	return n
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
