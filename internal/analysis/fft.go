package analysis

import (
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

// FFT zero pads data to a power of two and transforms it.
func FFT(data []float64) []complex128 {
	n := len(data)
	if n <= 1 {
		result := make([]complex128, n)
		for i := range data {
			result[i] = complex(data[i], 0)
		}
		return result
	}

	if p := NextPow2(n); p != n {
		padded := make([]float64, p)
		copy(padded, data)
		data = padded
	}
	return fft.FFTReal(data)
}

// NextPow2 returns the smallest power of two >= n (1 for n <= 1).
func NextPow2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

// PowerSpectrum returns the magnitudes of the first half of the transform of
// the mean-removed signal. Bin k corresponds to k / (N dt) Hz where N is the
// padded length.
func PowerSpectrum(data []float64) []float64 {
	if len(data) == 0 {
		return nil
	}
	mean := 0.0
	for _, v := range data {
		mean += v
	}
	mean /= float64(len(data))

	centred := make([]float64, len(data))
	for i, v := range data {
		centred[i] = v - mean
	}

	fft := FFT(centred)
	ps := make([]float64, len(fft)/2)
	for i := range ps {
		ps[i] = cmplx.Abs(fft[i])
	}
	return ps
}

// FrequencyAxis returns the frequency of each PowerSpectrum bin for a
// signal of n samples taken every dt seconds.
func FrequencyAxis(n int, dt float64) []float64 {
	if n <= 1 || dt <= 0 {
		return nil
	}
	p := NextPow2(n)
	freqs := make([]float64, p/2)
	for k := range freqs {
		freqs[k] = float64(k) / (float64(p) * dt)
	}
	return freqs
}

// DominantFrequency is the frequency in Hz of the strongest non-DC bin, or
// 0 when the signal is too short or flat.
func DominantFrequency(data []float64, dt float64) float64 {
	if len(data) < 4 || dt <= 0 {
		return 0
	}
	ps := PowerSpectrum(data)
	best, peak := 0, 0.0
	for k := 1; k < len(ps); k++ {
		if ps[k] > peak {
			best, peak = k, ps[k]
		}
	}
	if peak < 1e-12 {
		return 0
	}
	return float64(best) / (float64(NextPow2(len(data))) * dt)
}
