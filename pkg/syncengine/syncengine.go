// Package syncengine implements the sync engine (spec.md §4.11): manual
// fixed-offset shifting and VAD-driven automatic alignment, plus the batch
// mode that runs either independently over every discovered (video,
// subtitle) pair. Grounded on the teacher's internal/core orchestration
// style — a thin Engine composing the narrowly-scoped audio/resample/vad
// services pkg/audio, pkg/resample, and pkg/vad already expose.
package syncengine

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"

	"github.com/subx-cli/subx/pkg/audio"
	"github.com/subx-cli/subx/pkg/discover"
	"github.com/subx-cli/subx/pkg/resample"
	"github.com/subx-cli/subx/pkg/subfmt"
	"github.com/subx-cli/subx/pkg/subxerr"
	"github.com/subx-cli/subx/pkg/vad"
)

// Method names how a Result's offset was computed.
type Method string

const (
	MethodManual Method = "manual"
	MethodVAD    Method = "vad"
)

// Result is the outcome of one sync request, mirroring spec.md §3's
// SyncRequest/SyncResult pair.
type Result struct {
	AppliedOffsetSeconds float64
	Confidence           float64
	Method               Method
	Warning              string
	Err                  error
}

// VadParams carries the VAD-mode knobs sourced from Config.Sync (pkg/config)
// without importing it.
type VadParams struct {
	ModelSampleRate     int
	ChunkSize           int
	Sensitivity         float64
	PaddingChunks       int
	MinSpeechDurationMs int
}

// Engine composes the audio loader and VAD detector behind the sync
// algorithms.
type Engine struct {
	loader *audio.Loader
	log    zerolog.Logger
}

func NewEngine(loader *audio.Loader, log zerolog.Logger) *Engine {
	return &Engine{loader: loader, log: log.With().Str("component", "syncengine").Logger()}
}

// ApplyOffset implements spec.md §4.11's manual mode: validate the offset
// against maxOffsetSeconds, then shift every entry, dropping any whose
// shifted end collapses to zero or below.
func ApplyOffset(doc *subfmt.Document, offsetSeconds, maxOffsetSeconds float64) (Result, error) {
	if math.Abs(offsetSeconds) > maxOffsetSeconds {
		return Result{}, subxerr.New(subxerr.KindConfigInvalid, fmt.Sprintf("offset %.3fs exceeds max_offset_seconds %.3f", offsetSeconds, maxOffsetSeconds))
	}
	doc.Shift(time.Duration(offsetSeconds * float64(time.Second)))
	return Result{AppliedOffsetSeconds: offsetSeconds, Confidence: 1.0, Method: MethodManual}, nil
}

// RunVAD implements spec.md §4.11's VAD mode: load audio, resample to the
// VAD model rate, detect speech, derive a candidate offset from the first
// speech segment versus the first subtitle entry, cap it to
// maxOffsetSeconds, compute a speech-duration-ratio confidence, and apply
// the resulting offset to doc.
func (e *Engine) RunVAD(ctx context.Context, audioPath string, doc *subfmt.Document, params VadParams, maxOffsetSeconds float64) (Result, error) {
	a, err := e.loader.Load(ctx, audioPath)
	if err != nil {
		return Result{}, err
	}
	if len(a.Samples) == 0 {
		return Result{AppliedOffsetSeconds: 0, Confidence: 0, Method: MethodVAD, Warning: "no audio"}, nil
	}

	resampled := resample.Resample(a.Samples, a.SampleRate, params.ModelSampleRate)
	segments := vad.Detect(resampled, vad.Config{
		ChunkSize:           params.ChunkSize,
		SampleRate:          params.ModelSampleRate,
		Sensitivity:         params.Sensitivity,
		PaddingChunks:       params.PaddingChunks,
		MinSpeechDurationMs: params.MinSpeechDurationMs,
	})
	if len(segments) == 0 {
		return Result{}, subxerr.New(subxerr.KindVadNoSpeech, "no speech detected")
	}
	if len(doc.Entries) == 0 {
		return Result{}, subxerr.New(subxerr.KindSubtitleParse, "subtitle document has no entries")
	}

	firstSpeechMs := segments[0].StartMs
	firstSubMs := doc.Entries[0].Start.Milliseconds()
	candidateSeconds := float64(firstSpeechMs-firstSubMs) / 1000.0

	var warning string
	if candidateSeconds > maxOffsetSeconds {
		candidateSeconds = maxOffsetSeconds
		warning = "candidate offset exceeded max_offset_seconds and was capped"
	} else if candidateSeconds < -maxOffsetSeconds {
		candidateSeconds = -maxOffsetSeconds
		warning = "candidate offset exceeded max_offset_seconds and was capped"
	}

	confidence := speechRatio(segments, a.DurationSeconds)
	if confidence < 0.1 {
		if warning != "" {
			warning += "; "
		}
		warning += "low-confidence alignment"
	}

	doc.Shift(time.Duration(candidateSeconds * float64(time.Second)))

	return Result{
		AppliedOffsetSeconds: candidateSeconds,
		Confidence:           confidence,
		Method:               MethodVAD,
		Warning:              warning,
	}, nil
}

func speechRatio(segments []vad.SpeechSegment, audioDurationSeconds float64) float64 {
	if audioDurationSeconds <= 0 {
		return 0
	}
	var totalMs int64
	for _, s := range segments {
		totalMs += s.EndMs - s.StartMs
	}
	ratio := (float64(totalMs) / 1000.0) / audioDurationSeconds
	if ratio > 1 {
		ratio = 1
	}
	if ratio < 0 {
		ratio = 0
	}
	return ratio
}

// PairTask is one (video, subtitle) pair to sync in batch mode.
type PairTask struct {
	VideoPath    string
	SubtitlePath string
	Document     *subfmt.Document
}

// RunBatchVAD runs RunVAD independently over every pair; a failure on one
// pair is recorded in its Result and never aborts the rest, per spec.md
// §4.11's batch mode. onProgress, when non-nil, is called once after each
// pair with the number done and the batch total.
func (e *Engine) RunBatchVAD(ctx context.Context, pairs []PairTask, params VadParams, maxOffsetSeconds float64, onProgress func(done, total int)) []Result {
	out := make([]Result, len(pairs))
	for i, p := range pairs {
		res, err := e.RunVAD(ctx, p.VideoPath, p.Document, params, maxOffsetSeconds)
		if err != nil {
			res.Err = err
		}
		out[i] = res
		if onProgress != nil {
			onProgress(i+1, len(pairs))
		}
	}
	return out
}

// DiscoverPairs scans inputs and splits the discovered files into videos and
// subtitles, for callers that want batch VAD sync without running the full
// pkg/match oracle pipeline. It does not pair them; the caller picks each
// subtitle's video.
func DiscoverPairs(inputs []string, recursive bool, exts discover.ExtensionSets) ([]discover.MediaFile, []discover.MediaFile, error) {
	files, err := discover.Scan(inputs, recursive, exts)
	if err != nil {
		return nil, nil, err
	}
	var videos, subtitles []discover.MediaFile
	for _, f := range files {
		switch f.Role {
		case discover.RoleVideo:
			videos = append(videos, f)
		case discover.RoleSubtitle:
			subtitles = append(subtitles, f)
		}
	}
	return videos, subtitles, nil
}
