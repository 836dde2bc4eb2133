package backend

import (
	"github.com/arl/blip"

	"famisynth/audio/graph"
)

// maximum number of output samples produced by one blip frame.
const mixChunk = 1024

// sampleScale converts a graph level to a 16-bit sample amplitude. It leaves
// room for 4 voices at full volume.
const sampleScale = 8192

// A Mixer resamples what a graph renders to the output sample rate. Level
// changes of the rendered signal are fed as deltas to a band-limited buffer.
type Mixer struct {
	ctx *graph.Context
	buf *blip.Buffer

	frames []float32
	prev   int32 // last amplitude added to buf

	clockRate  float64
	sampleRate float64
}

func NewMixer(ctx *graph.Context, sampleRate int) *Mixer {
	m := &Mixer{
		ctx:        ctx,
		buf:        blip.NewBuffer(2 * mixChunk),
		clockRate:  ctx.SampleRate(),
		sampleRate: float64(sampleRate),
	}
	m.Reset()
	return m
}

func (m *Mixer) Reset() {
	m.buf.Clear()
	m.buf.SetRates(m.clockRate, m.sampleRate)
	m.prev = 0
}

// MixMono fills out with mono samples.
func (m *Mixer) MixMono(out []int16) {
	for len(out) > 0 {
		n := min(len(out), mixChunk)
		m.mixChunk(out[:n], blip.Mono)
		out = out[n:]
	}
}

// MixStereo fills out with interleaved stereo samples, both sides being the
// same.
func (m *Mixer) MixStereo(out []int16) {
	for len(out) > 1 {
		n := min(len(out)/2, mixChunk)
		m.mixChunk(out[:2*n], blip.Stereo)

		// No panning, copy the left channel to the right one.
		for i := 0; i < 2*n; i += 2 {
			out[i+1] = out[i]
		}
		out = out[2*n:]
	}
}

func (m *Mixer) mixChunk(out []int16, stereo bool) {
	nsamples := len(out)
	if stereo {
		nsamples /= 2
	}

	clocks := m.buf.ClocksNeeded(nsamples)
	if cap(m.frames) < clocks {
		m.frames = make([]float32, clocks)
	}
	frames := m.frames[:clocks]
	m.ctx.Render(frames)

	for i, v := range frames {
		amp := int32(v * sampleScale)
		if delta := amp - m.prev; delta != 0 {
			m.buf.AddDelta(uint64(i), delta)
			m.prev = amp
		}
	}
	m.buf.EndFrame(clocks)
	m.buf.ReadSamples(out, nsamples, stereo)
}
