package resample

import "math"

// PowerSpectrum returns the magnitude of each positive-frequency FFT bin of
// x (zero-padded to the next power of two). Exported for pkg/vad's
// spectral-flatness classifier, so both components share one FFT
// implementation instead of each hand-rolling their own.
func PowerSpectrum(x []float64) []float64 {
	p := nextPow2(len(x))
	padded := make([]complex128, p)
	for i, v := range x {
		padded[i] = complex(v, 0)
	}
	spectrum := fft(padded)
	mags := make([]float64, p/2+1)
	for i := range mags {
		mags[i] = cmplxAbs(spectrum[i])
	}
	return mags
}

// Resample converts samples from inRate to outRate. Passthrough when the
// rates already match. Output length is exactly
// round(len(samples) * outRate / inRate), satisfying spec.md §4.9's
// duration-preservation invariant (±1 sample) by construction; the
// zero-padded-to-power-of-two FFT resize below supplies the resampled
// content, not the output length.
func Resample(samples []float32, inRate, outRate int) []float32 {
	if inRate <= 0 || outRate <= 0 || len(samples) == 0 {
		return nil
	}
	if inRate == outRate {
		return append([]float32(nil), samples...)
	}

	targetLen := int(math.Round(float64(len(samples)) * float64(outRate) / float64(inRate)))
	if targetLen <= 0 {
		return nil
	}

	p := nextPow2(len(samples))
	padded := make([]complex128, p)
	for i, s := range samples {
		padded[i] = complex(float64(s), 0)
	}
	spectrum := fft(padded)

	q := nextPow2(targetLen)
	resized := resizeSpectrum(spectrum, q)
	timeDomain := ifft(resized)

	scale := float64(q) / float64(p)
	out := make([]float32, targetLen)
	for i := 0; i < targetLen; i++ {
		if i < len(timeDomain) {
			out[i] = float32(real(timeDomain[i]) * scale)
		}
	}
	return out
}

// resizeSpectrum maps a power-of-two spectrum of length p onto a new
// power-of-two length q, truncating high frequencies when q < p (downsample)
// or inserting zeros around the Nyquist bin when q > p (upsample), keeping
// the conjugate symmetry a real-valued inverse transform requires.
func resizeSpectrum(x []complex128, q int) []complex128 {
	p := len(x)
	y := make([]complex128, q)

	half := p / 2
	if q/2 < half {
		half = q / 2
	}

	y[0] = x[0]
	for i := 1; i <= half; i++ {
		y[i] = x[i]
		if i != half || q == p {
			y[(q-i)%q] = x[(p-i)%p]
		}
	}
	return y
}
