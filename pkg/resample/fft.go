// Package resample implements the polyphase/FFT resampler (spec.md §4.9):
// converts PCM between arbitrary integer sample rates, preserving total
// duration to within ±1 sample, with a pure passthrough when rates already
// match. No suitable third-party resampler turned up anywhere in the
// example pack (see DESIGN.md), so this one component is built on the
// standard library's math/cmplx plus a hand-rolled radix-2 FFT.
package resample

import "math/cmplx"

// fft computes the forward discrete Fourier transform of a copy of x,
// returning the new slice and leaving x unchanged; len(x) must be a power
// of two.
func fft(x []complex128) []complex128 {
	out := append([]complex128(nil), x...)
	fftInPlace(out, false)
	return out
}

// ifft computes the inverse discrete Fourier transform, already normalized
// by 1/N.
func ifft(x []complex128) []complex128 {
	out := append([]complex128(nil), x...)
	fftInPlace(out, true)
	n := complex(float64(len(out)), 0)
	for i := range out {
		out[i] /= n
	}
	return out
}

// fftInPlace is the classic iterative Cooley-Tukey radix-2 FFT: bit-reversal
// permutation followed by log2(n) butterfly passes.
func fftInPlace(a []complex128, inverse bool) {
	n := len(a)
	if n <= 1 {
		return
	}

	for i, j := 1, 0; i < n; i++ {
		bit := n >> 1
		for ; j&bit != 0; bit >>= 1 {
			j ^= bit
		}
		j ^= bit
		if i < j {
			a[i], a[j] = a[j], a[i]
		}
	}

	for length := 2; length <= n; length <<= 1 {
		angle := -2 * 3.141592653589793 / float64(length)
		if inverse {
			angle = -angle
		}
		wLen := cmplx.Exp(complex(0, angle))
		for i := 0; i < n; i += length {
			w := complex(1.0, 0.0)
			half := length / 2
			for k := 0; k < half; k++ {
				u := a[i+k]
				v := a[i+k+half] * w
				a[i+k] = u + v
				a[i+k+half] = u - v
				w *= wLen
			}
		}
	}
}

func cmplxAbs(c complex128) float64 { return cmplx.Abs(c) }

// nextPow2 returns the smallest power of two >= n (at least 1).
func nextPow2(n int) int {
	if n <= 1 {
		return 1
	}
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}
