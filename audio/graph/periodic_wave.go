package graph

import (
	"math"

	"github.com/go-faster/errors"
)

// WaveTableSize is the number of samples in one cycle of a PeriodicWave.
const WaveTableSize = 4096

// A PeriodicWave is a single waveform cycle defined by its Fourier
// coefficients.
type PeriodicWave struct {
	table []float64
}

// NewPeriodicWave builds the waveform
//
//	x(p) = Σ real[k]·cos(2πkp) + imag[k]·sin(2πkp)
//
// normalized so that its peak amplitude is 1. Coefficient 0 (DC) is ignored,
// as are harmonics that don't fit in the table.
func (c *Context) NewPeriodicWave(real, imag []float64) (*PeriodicWave, error) {
	if len(real) != len(imag) {
		return nil, errors.Errorf("periodic wave: real and imag lengths differ (%d != %d)", len(real), len(imag))
	}
	if len(real) < 2 {
		return nil, errors.Errorf("periodic wave: need at least 2 coefficients, got %d", len(real))
	}

	const n = WaveTableSize
	var cos, sin [n]float64
	for j := range n {
		cos[j] = math.Cos(2 * math.Pi * float64(j) / n)
		sin[j] = math.Sin(2 * math.Pi * float64(j) / n)
	}

	table := make([]float64, n)
	for k := 1; k < len(real) && k < n/2; k++ {
		re, im := real[k], imag[k]
		if re == 0 && im == 0 {
			continue
		}
		for j := range n {
			idx := (k * j) & (n - 1)
			table[j] += re*cos[idx] + im*sin[idx]
		}
	}

	peak := 0.0
	for _, v := range table {
		peak = max(peak, math.Abs(v))
	}
	if peak > 0 {
		for j := range table {
			table[j] /= peak
		}
	}
	return &PeriodicWave{table: table}, nil
}

// at returns the interpolated value at phase p, in [0, 1).
func (w *PeriodicWave) at(p float64) float64 {
	pos := p * WaveTableSize
	i0 := int(pos)
	frac := pos - float64(i0)
	i0 &= WaveTableSize - 1
	i1 := (i0 + 1) & (WaveTableSize - 1)
	return w.table[i0]*(1-frac) + w.table[i1]*frac
}

// Peak returns the highest absolute sample value of one cycle.
func (w *PeriodicWave) Peak() float64 {
	peak := 0.0
	for _, v := range w.table {
		peak = max(peak, math.Abs(v))
	}
	return peak
}
