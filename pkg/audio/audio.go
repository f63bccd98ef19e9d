// Package audio implements the audio loader (spec.md §4.8): decode a
// container's first audio track to interleaved PCM float samples, downmix
// to mono, and report sample rate/duration/channel count. Grounded on the
// teacher's internal/pkg/media/ffmpeg.go — shelling out to an external
// ffmpeg binary via internal/executils rather than linking a CGO decoder —
// generalized from the teacher's clip-extraction use case to full-track
// decode-to-memory.
package audio

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"

	"github.com/rs/zerolog"

	"github.com/subx-cli/subx/internal/executils"
	"github.com/subx-cli/subx/pkg/subxerr"
)

// FFmpegPath and FFprobePath name the external binaries invoked. Overridable
// for tests (pointed at stub scripts) without touching PATH.
var (
	FFmpegPath  = "ffmpeg"
	FFprobePath = "ffprobe"
)

// Audio is the decoded, mono-downmixed result spec.md §4.8 describes.
type Audio struct {
	Samples          []float32
	SampleRate        int
	DurationSeconds   float64
	ChannelsOriginal int
}

// Loader decodes media files to Audio via external ffmpeg/ffprobe processes.
type Loader struct {
	log zerolog.Logger
}

func NewLoader(log zerolog.Logger) *Loader {
	return &Loader{log: log.With().Str("component", "audio").Logger()}
}

type probeResult struct {
	Streams []struct {
		SampleRate string `json:"sample_rate"`
		Channels   int    `json:"channels"`
	} `json:"streams"`
}

// Load decodes path's first audio track to mono float32 PCM. Per spec.md
// §4.8's empty-audio rule, a track that decodes to zero samples returns a
// well-formed empty Audio rather than an error.
func (l *Loader) Load(ctx context.Context, path string) (Audio, error) {
	sampleRate, channels, err := l.probe(ctx, path)
	if err != nil {
		return Audio{}, err
	}

	raw, err := l.decode(ctx, path, sampleRate, channels)
	if err != nil {
		return Audio{}, err
	}

	if len(raw) == 0 {
		return Audio{SampleRate: sampleRate, ChannelsOriginal: channels}, nil
	}

	mono := downmix(raw, channels)
	duration := float64(len(mono)) / float64(sampleRate)

	return Audio{
		Samples:          mono,
		SampleRate:       sampleRate,
		DurationSeconds:  duration,
		ChannelsOriginal: channels,
	}, nil
}

// probe inspects the first audio stream for sample rate and channel count
// via ffprobe, filling a missing/zero channel count with mono as a last
// resort (decode-time frame inspection would otherwise be required).
func (l *Loader) probe(ctx context.Context, path string) (sampleRate, channels int, err error) {
	cmd := executils.CommandContext(ctx, FFprobePath,
		"-v", "quiet",
		"-print_format", "json",
		"-show_streams",
		"-select_streams", "a:0",
		path,
	)
	var out bytes.Buffer
	cmd.Stdout = &out
	if runErr := cmd.Run(); runErr != nil {
		return 0, 0, subxerr.Wrap(subxerr.KindAudioDecodeFatal, "ffprobe failed for "+path, runErr)
	}

	var probe probeResult
	if err := json.Unmarshal(out.Bytes(), &probe); err != nil {
		return 0, 0, subxerr.Wrap(subxerr.KindAudioDecodeFatal, "failed to parse ffprobe output for "+path, err)
	}
	if len(probe.Streams) == 0 {
		return 0, 0, subxerr.New(subxerr.KindAudioDecodeFatal, "no audio stream found in "+path)
	}

	stream := probe.Streams[0]
	fmt.Sscanf(stream.SampleRate, "%d", &sampleRate)
	if sampleRate == 0 {
		sampleRate = 44100
	}
	channels = stream.Channels
	if channels == 0 {
		channels = 1
	}
	return sampleRate, channels, nil
}

// decode pipes raw interleaved f32le PCM from ffmpeg's stdout at the
// original sample rate and channel count, preserving the downmix decision
// for our own code per spec.md §4.8 rather than letting ffmpeg do it.
func (l *Loader) decode(ctx context.Context, path string, sampleRate, channels int) ([]float32, error) {
	cmd := executils.CommandContext(ctx, FFmpegPath,
		"-v", "error",
		"-i", path,
		"-map", "0:a:0",
		"-f", "f32le",
		"-acodec", "pcm_f32le",
		"-ar", fmt.Sprint(sampleRate),
		"-ac", fmt.Sprint(channels),
		"-",
	)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, subxerr.Wrap(subxerr.KindAudioDecodeFatal, "ffmpeg decode failed for "+path+": "+stderr.String(), err)
	}

	raw := stdout.Bytes()
	n := len(raw) / 4
	samples := make([]float32, n)
	for i := 0; i < n; i++ {
		bits := binary.LittleEndian.Uint32(raw[i*4 : i*4+4])
		samples[i] = math.Float32frombits(bits)
	}
	return samples, nil
}

// downmix averages interleaved multi-channel samples into mono.
func downmix(interleaved []float32, channels int) []float32 {
	if channels <= 1 {
		return interleaved
	}
	n := len(interleaved) / channels
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		var sum float32
		for c := 0; c < channels; c++ {
			sum += interleaved[i*channels+c]
		}
		out[i] = sum / float32(channels)
	}
	return out
}
