package vad

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tone(freq float64, sampleRate, n int, amplitude float32) []float32 {
	out := make([]float32, n)
	for i := range out {
		out[i] = amplitude * float32(math.Sin(2*math.Pi*freq*float64(i)/float64(sampleRate)))
	}
	return out
}

func silence(n int) []float32 { return make([]float32, n) }

func TestDetectFindsSpeechSegmentSurroundedBySilence(t *testing.T) {
	sampleRate := 16000
	chunkSize := 512
	var samples []float32
	samples = append(samples, silence(chunkSize*5)...)
	samples = append(samples, tone(220, sampleRate, chunkSize*10, 0.8)...)
	samples = append(samples, silence(chunkSize*5)...)

	cfg := Config{ChunkSize: chunkSize, SampleRate: sampleRate, Sensitivity: 0.5, PaddingChunks: 0, MinSpeechDurationMs: 50}
	segments := Detect(samples, cfg)
	require.NotEmpty(t, segments)
	assert.Greater(t, segments[0].EndMs, segments[0].StartMs)
}

func TestDetectDropsSegmentsShorterThanMinDuration(t *testing.T) {
	sampleRate := 16000
	chunkSize := 512
	var samples []float32
	samples = append(samples, silence(chunkSize*5)...)
	samples = append(samples, tone(220, sampleRate, chunkSize, 0.8)...)
	samples = append(samples, silence(chunkSize*5)...)

	cfg := Config{ChunkSize: chunkSize, SampleRate: sampleRate, Sensitivity: 0.5, PaddingChunks: 0, MinSpeechDurationMs: 5000}
	segments := Detect(samples, cfg)
	assert.Empty(t, segments)
}

func TestDetectEmptySignalReturnsNil(t *testing.T) {
	assert.Nil(t, Detect(nil, Config{ChunkSize: 512, SampleRate: 16000}))
}

func TestDetectPaddingClampsToSignalBounds(t *testing.T) {
	sampleRate := 16000
	chunkSize := 512
	samples := tone(220, sampleRate, chunkSize*4, 0.8)

	cfg := Config{ChunkSize: chunkSize, SampleRate: sampleRate, Sensitivity: 0.9, PaddingChunks: 10, MinSpeechDurationMs: 10}
	segments := Detect(samples, cfg)
	require.NotEmpty(t, segments)
	assert.GreaterOrEqual(t, segments[0].StartMs, int64(0))
	totalMs := int64(float64(len(samples)) / float64(sampleRate) * 1000.0)
	assert.LessOrEqual(t, segments[len(segments)-1].EndMs, totalMs)
}
