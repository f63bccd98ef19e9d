// Package vad implements the voice-activity detector (spec.md §4.10): a
// local, non-ML energy/spectral-flatness classifier over fixed-size PCM
// chunks, whose speech/non-speech calls are coalesced into padded,
// minimum-duration-filtered SpeechSegments. Grounded on the boundary-
// detector shape in the pack's local Silero VAD plugin reference
// (coalescing frame-level speech/non-speech calls into START/END-bounded
// segments) — reimplemented as a signal-processing detector instead of a
// model inference client, consistent with the Non-goal barring running an
// ML model here.
package vad

import (
	"math"

	"github.com/subx-cli/subx/pkg/resample"
)

// Config parameterizes detection; all fields are sourced from
// Config.Sync.Vad (pkg/config) at the call site, kept dependency-free here.
type Config struct {
	ChunkSize           int
	SampleRate          int
	Sensitivity         float64 // [0,1], higher => more permissive
	PaddingChunks        int
	MinSpeechDurationMs  int
}

// SpeechSegment is one detected span of speech, in milliseconds from the
// start of the signal.
type SpeechSegment struct {
	StartMs int64
	EndMs   int64
}

// Detect partitions samples into cfg.ChunkSize chunks (zero-padding a
// trailing partial chunk), classifies each, coalesces consecutive speech
// chunks into segments, pads each segment by cfg.PaddingChunks worth of
// context clamped to signal bounds, and drops segments shorter than
// cfg.MinSpeechDurationMs. Returns an ordered, non-overlapping sequence.
func Detect(samples []float32, cfg Config) []SpeechSegment {
	if len(samples) == 0 || cfg.ChunkSize <= 0 || cfg.SampleRate <= 0 {
		return nil
	}

	chunks := chunkify(samples, cfg.ChunkSize)
	speech := make([]bool, len(chunks))
	for i, c := range chunks {
		speech[i] = isSpeech(c, cfg.Sensitivity)
	}

	segments := coalesce(speech, cfg.ChunkSize, cfg.SampleRate)
	segments = padAndClamp(segments, cfg.PaddingChunks, cfg.ChunkSize, cfg.SampleRate, len(samples))
	segments = filterShort(segments, cfg.MinSpeechDurationMs)
	return mergeOverlaps(segments)
}

func chunkify(samples []float32, chunkSize int) [][]float32 {
	var chunks [][]float32
	for start := 0; start < len(samples); start += chunkSize {
		end := start + chunkSize
		if end > len(samples) {
			chunk := make([]float32, chunkSize)
			copy(chunk, samples[start:])
			chunks = append(chunks, chunk)
			break
		}
		chunks = append(chunks, samples[start:end])
	}
	return chunks
}

// isSpeech classifies one chunk via RMS energy combined with spectral
// flatness (geometric mean / arithmetic mean of the magnitude spectrum,
// in [0,1] — near 0 for tonal/voiced content, near 1 for noise). Higher
// sensitivity lowers the energy threshold and raises the flatness ceiling,
// admitting quieter/noisier chunks.
func isSpeech(chunk []float32, sensitivity float64) bool {
	if sensitivity < 0 {
		sensitivity = 0
	}
	if sensitivity > 1 {
		sensitivity = 1
	}

	energyThreshold := 0.02 * (1.0 - sensitivity*0.9)
	flatnessThreshold := 0.6 + sensitivity*0.3

	rms := rms(chunk)
	if rms < energyThreshold {
		return false
	}

	flat := spectralFlatness(chunk)
	return flat < flatnessThreshold
}

func rms(chunk []float32) float64 {
	if len(chunk) == 0 {
		return 0
	}
	var sum float64
	for _, s := range chunk {
		sum += float64(s) * float64(s)
	}
	return math.Sqrt(sum / float64(len(chunk)))
}

func spectralFlatness(chunk []float32) float64 {
	x := make([]float64, len(chunk))
	for i, s := range chunk {
		x[i] = float64(s)
	}
	mags := resample.PowerSpectrum(x)

	var logSum, sum float64
	n := 0
	for _, m := range mags {
		if m <= 1e-12 {
			continue
		}
		logSum += math.Log(m)
		sum += m
		n++
	}
	if n == 0 || sum == 0 {
		return 1 // silence/degenerate spectrum reads as "flat" (non-speech)
	}
	geoMean := math.Exp(logSum / float64(n))
	arithMean := sum / float64(n)
	return geoMean / arithMean
}

func coalesce(speech []bool, chunkSize, sampleRate int) []SpeechSegment {
	var segments []SpeechSegment
	chunkMs := float64(chunkSize) / float64(sampleRate) * 1000.0

	inSegment := false
	var startChunk int
	for i, s := range speech {
		switch {
		case s && !inSegment:
			inSegment = true
			startChunk = i
		case !s && inSegment:
			inSegment = false
			segments = append(segments, SpeechSegment{
				StartMs: int64(float64(startChunk) * chunkMs),
				EndMs:   int64(float64(i) * chunkMs),
			})
		}
	}
	if inSegment {
		segments = append(segments, SpeechSegment{
			StartMs: int64(float64(startChunk) * chunkMs),
			EndMs:   int64(float64(len(speech)) * chunkMs),
		})
	}
	return segments
}

func padAndClamp(segments []SpeechSegment, paddingChunks, chunkSize, sampleRate, totalSamples int) []SpeechSegment {
	chunkMs := float64(chunkSize) / float64(sampleRate) * 1000.0
	padMs := int64(float64(paddingChunks) * chunkMs)
	totalMs := int64(float64(totalSamples) / float64(sampleRate) * 1000.0)

	out := make([]SpeechSegment, len(segments))
	for i, seg := range segments {
		start := seg.StartMs - padMs
		if start < 0 {
			start = 0
		}
		end := seg.EndMs + padMs
		if end > totalMs {
			end = totalMs
		}
		out[i] = SpeechSegment{StartMs: start, EndMs: end}
	}
	return out
}

func filterShort(segments []SpeechSegment, minMs int) []SpeechSegment {
	var out []SpeechSegment
	for _, seg := range segments {
		if seg.EndMs-seg.StartMs >= int64(minMs) {
			out = append(out, seg)
		}
	}
	return out
}

// mergeOverlaps collapses segments that padding may have caused to overlap
// or touch, keeping the output non-overlapping per spec.md §4.10.
func mergeOverlaps(segments []SpeechSegment) []SpeechSegment {
	if len(segments) == 0 {
		return segments
	}
	out := []SpeechSegment{segments[0]}
	for _, seg := range segments[1:] {
		last := &out[len(out)-1]
		if seg.StartMs <= last.EndMs {
			if seg.EndMs > last.EndMs {
				last.EndMs = seg.EndMs
			}
			continue
		}
		out = append(out, seg)
	}
	return out
}
