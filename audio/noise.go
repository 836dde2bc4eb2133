package audio

import (
	"math"
	"math/rand/v2"

	"famisynth/audio/graph"
)

// NoiseBins is the size of the spectrum the noise waveform is built from.
const NoiseBins = 1024

// noiseChannel plays a waveform made of NoiseBins-1 harmonics of equal
// magnitude and random phases. The spectrum is drawn once, at construction;
// only amplitude and nominal frequency change afterwards.
type noiseChannel struct {
	oscChannel
}

func newNoiseChannel(ctx *graph.Context, rnd *rand.Rand) *noiseChannel {
	nc := &noiseChannel{
		oscChannel: newOscChannel(ctx, Noise, graph.OscSine),
	}

	real, imag := noiseSpectrum(rnd)
	wave, err := ctx.NewPeriodicWave(real, imag)
	if err != nil {
		// Both slices have NoiseBins elements.
		panic(err)
	}
	nc.osc.SetPeriodicWave(wave)
	nc.connect()
	return nc
}

// noiseSpectrum returns NoiseBins complex coefficients, the DC one being 0 and
// all others of unit magnitude with a phase uniformly drawn in [0, 2π).
func noiseSpectrum(rnd *rand.Rand) (real, imag []float64) {
	real = make([]float64, NoiseBins)
	imag = make([]float64, NoiseBins)
	for i := 1; i < NoiseBins; i++ {
		phase := rnd.Float64() * 2 * math.Pi
		real[i] = math.Cos(phase)
		imag[i] = math.Sin(phase)
	}
	return real, imag
}
