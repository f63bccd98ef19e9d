package resample

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResamplePassthroughWhenRatesMatch(t *testing.T) {
	in := []float32{0.1, 0.2, 0.3, -0.4}
	out := Resample(in, 16000, 16000)
	assert.Equal(t, in, out)
}

func TestResamplePreservesDurationWithinOneSample(t *testing.T) {
	in := make([]float32, 1000)
	for i := range in {
		in[i] = float32(i % 7)
	}
	out := Resample(in, 44100, 16000)
	expected := int(float64(len(in)) * 16000.0 / 44100.0)
	require.NotNil(t, out)
	assert.InDelta(t, expected, len(out), 1)
}

func TestResampleUpsamplingIncreasesLength(t *testing.T) {
	in := make([]float32, 500)
	out := Resample(in, 8000, 16000)
	assert.InDelta(t, 1000, len(out), 1)
}

func TestResampleEmptyInputReturnsNil(t *testing.T) {
	out := Resample(nil, 16000, 8000)
	assert.Nil(t, out)
}
