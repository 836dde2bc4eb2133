package audio

import (
	"errors"
	"math"
	"slices"
	"testing"

	"github.com/go-faster/jx"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"famisynth/audio/graph"
)

type testOutput struct {
	ctx    *graph.Context
	closed bool
}

func (o *testOutput) Context() *graph.Context { return o.ctx }

func (o *testOutput) Close() error {
	o.closed = true
	o.ctx.Close()
	return nil
}

func newTestManager(tb testing.TB) (*Manager, *graph.Context) {
	tb.Helper()

	ctx := graph.NewContext(48000)
	h := NewHost(func() (Output, error) { return &testOutput{ctx: ctx}, nil })
	m := NewManager(h)
	m.SetNoiseSeed(1)
	if !m.Enabled() {
		tb.Fatalf("manager has no backend: %v", h.Err())
	}
	return m, ctx
}

var allTypes = []ChannelType{Pulse, Triangle, Noise, Sawtooth}

func TestAddChannel(t *testing.T) {
	m, ctx := newTestManager(t)

	for i, typ := range allTypes {
		if err := m.AddChannel(typ); err != nil {
			t.Fatalf("AddChannel(%s): %v", typ, err)
		}
		if got := m.ChannelCount(); got != i+1 {
			t.Fatalf("ChannelCount() = %d after adding %s, want %d", got, typ, i+1)
		}
	}

	if n := ctx.Destination().NumInputs(); n != len(allTypes) {
		t.Fatalf("destination has %d inputs, want %d", n, len(allTypes))
	}

	var got []ChannelType
	for _, st := range m.ChannelStates() {
		got = append(got, st.Type)
	}
	if diff := cmp.Diff(allTypes, got); diff != "" {
		t.Fatalf("channel order mismatch (-want +got):\n%s", diff)
	}

	err := m.AddChannel(ChannelType(42))
	if !errors.Is(err, ErrChannelType) {
		t.Fatalf("AddChannel(42) = %v, want %v", err, ErrChannelType)
	}
	if got := m.ChannelCount(); got != len(allTypes) {
		t.Fatalf("ChannelCount() = %d after failed AddChannel, want %d", got, len(allTypes))
	}
}

func TestNoBackend(t *testing.T) {
	managers := map[string]*Manager{
		"nil host":  NewManager(nil),
		"nil open":  NewManager(NewHost(nil)),
		"open fail": NewManager(NewHost(func() (Output, error) { return nil, errors.New("no device") })),
	}

	for name, m := range managers {
		t.Run(name, func(t *testing.T) {
			if m.Enabled() {
				t.Fatalf("manager should be disabled")
			}
			for _, typ := range allTypes {
				if err := m.AddChannel(typ); err != nil {
					t.Fatalf("AddChannel(%s) = %v", typ, err)
				}
			}
			if got := m.ChannelCount(); got != 0 {
				t.Fatalf("ChannelCount() = %d, want 0", got)
			}
			if err := m.SetChannelVolume(0, 1.0); err != nil {
				t.Fatalf("SetChannelVolume = %v", err)
			}
			if err := m.SetChannelFrequency(3, 440); err != nil {
				t.Fatalf("SetChannelFrequency = %v", err)
			}
			if err := m.SetChannelDutyRatio(1, 0.5); err != nil {
				t.Fatalf("SetChannelDutyRatio = %v", err)
			}
			m.SetMasterVolume(0)
			if got := m.MasterVolume(); got != 1 {
				t.Fatalf("MasterVolume() = %v, want 1", got)
			}
			m.Release()
		})
	}
}

func TestHostOpensOnce(t *testing.T) {
	nopen := 0
	h := NewHost(func() (Output, error) {
		nopen++
		return nil, errors.New("unsupported")
	})

	for range 3 {
		if ctx := h.Context(); ctx != nil {
			t.Fatalf("Context() = %v, want nil", ctx)
		}
		NewManager(h)
	}
	if nopen != 1 {
		t.Fatalf("open called %d times, want 1", nopen)
	}
	if err := h.Err(); err == nil || err.Error() != "unsupported" {
		t.Fatalf("Err() = %v, want unsupported", err)
	}

	// Closing before first use: never opened.
	h = NewHost(func() (Output, error) {
		nopen++
		return &testOutput{ctx: graph.NewContext(1000)}, nil
	})
	if err := h.Close(); err != nil {
		t.Fatal(err)
	}
	if h.Context() != nil || nopen != 1 {
		t.Fatalf("closed host opened its output")
	}
}

func TestHostClose(t *testing.T) {
	out := &testOutput{ctx: graph.NewContext(1000)}
	h := NewHost(func() (Output, error) { return out, nil })
	if h.Context() != out.ctx {
		t.Fatalf("Context() doesn't return the output context")
	}

	if err := h.Close(); err != nil {
		t.Fatal(err)
	}
	if !out.closed {
		t.Fatalf("output not closed")
	}
	if h.Context() != nil {
		t.Fatalf("closed host still has a context")
	}
	if err := h.Close(); err != nil {
		t.Fatalf("second Close() = %v", err)
	}
}

func gains(m *Manager) []float64 {
	var g []float64
	for _, st := range m.ChannelStates() {
		g = append(g, st.Gain)
	}
	return g
}

func TestChannelVolume(t *testing.T) {
	tests := []struct {
		master, volume float64
	}{
		{1, 1},
		{1, 0.3},
		{0.5, 0.5},
		{0.8, 0.1},
		{0.25, 1},
		{1, 0},
	}

	for _, tt := range tests {
		m, _ := newTestManager(t)
		for _, typ := range allTypes {
			m.AddChannel(typ)
		}
		m.SetMasterVolume(tt.master)
		for i := range allTypes {
			if err := m.SetChannelVolume(i, tt.volume); err != nil {
				t.Fatal(err)
			}
		}

		want := slices.Repeat([]float64{tt.volume * tt.master}, len(allTypes))
		if diff := cmp.Diff(want, gains(m), cmpopts.EquateApprox(0, 1e-12)); diff != "" {
			t.Errorf("master=%v volume=%v: gains mismatch (-want +got):\n%s", tt.master, tt.volume, diff)
		}
	}
}

func TestChannelsStartSilent(t *testing.T) {
	m, _ := newTestManager(t)
	for _, typ := range allTypes {
		m.AddChannel(typ)
	}
	if diff := cmp.Diff([]float64{0, 0, 0, 0}, gains(m)); diff != "" {
		t.Fatalf("gains mismatch (-want +got):\n%s", diff)
	}
}

func TestMasterMute(t *testing.T) {
	m, ctx := newTestManager(t)
	for _, typ := range allTypes {
		m.AddChannel(typ)
	}
	vols := []float64{0.2, 0.4, 0.6, 0.8}
	for i, v := range vols {
		m.SetChannelVolume(i, v)
	}

	m.SetMasterVolume(0)
	if diff := cmp.Diff([]float64{0, 0, 0, 0}, gains(m)); diff != "" {
		t.Fatalf("muted gains mismatch (-want +got):\n%s", diff)
	}

	// Unmuting doesn't restore volumes, even after some rendering.
	m.SetMasterVolume(0.5)
	ctx.Render(make([]float32, 1024))
	if diff := cmp.Diff([]float64{0, 0, 0, 0}, gains(m)); diff != "" {
		t.Fatalf("gains mismatch after unmute (-want +got):\n%s", diff)
	}

	// Requested volumes are still known.
	for i, st := range m.ChannelStates() {
		if st.Volume != vols[i] {
			t.Errorf("channel %d Volume = %v, want %v", i, st.Volume, vols[i])
		}
	}

	m.SetChannelVolume(2, 0.6)
	want := []float64{0, 0, 0.3, 0}
	if diff := cmp.Diff(want, gains(m), cmpopts.EquateApprox(0, 1e-12)); diff != "" {
		t.Fatalf("gains mismatch (-want +got):\n%s", diff)
	}

	m.SetMasterVolume(-1)
	if diff := cmp.Diff([]float64{0, 0, 0, 0}, gains(m)); diff != "" {
		t.Fatalf("negative master volume should mute (-want +got):\n%s", diff)
	}
}

func TestPulseDelay(t *testing.T) {
	m, _ := newTestManager(t)
	m.AddChannel(Pulse)

	m.SetChannelFrequency(0, 440)
	m.SetChannelDutyRatio(0, 0.25)

	st := m.ChannelStates()[0]
	if want := 0.75 / 440; math.Abs(st.Delay-want) > 1e-12 {
		t.Fatalf("delay = %v, want %v", st.Delay, want)
	}
	if math.Abs(st.Delay-0.0017045) > 1e-6 {
		t.Fatalf("delay = %v, want ≈0.0017045", st.Delay)
	}

	// Same values: nothing scheduled.
	changes := st.Changes
	m.SetChannelFrequency(0, 440)
	m.SetChannelDutyRatio(0, 0.25)
	if got := m.ChannelStates()[0].Changes; got != changes {
		t.Fatalf("redundant setters scheduled %d changes", got-changes)
	}

	// Either setter recomputes the delay.
	m.SetChannelFrequency(0, 220)
	if got, want := m.ChannelStates()[0].Delay, 0.75/220; math.Abs(got-want) > 1e-12 {
		t.Fatalf("delay = %v after frequency change, want %v", got, want)
	}
	m.SetChannelDutyRatio(0, 0.5)
	if got, want := m.ChannelStates()[0].Delay, 0.5/220; math.Abs(got-want) > 1e-12 {
		t.Fatalf("delay = %v after duty change, want %v", got, want)
	}
}

func TestPulseDutyBeforeFrequency(t *testing.T) {
	tests := []struct {
		duty, freq float64
	}{
		{0.125, 1000},
		{0.25, 440},
		{0.75, 55},
		{0.5, 8000},
	}

	for _, tt := range tests {
		m, _ := newTestManager(t)
		m.AddChannel(Pulse)

		m.SetChannelDutyRatio(0, tt.duty)
		if got := m.ChannelStates()[0].Delay; got != 0 {
			t.Fatalf("delay = %v before any frequency, want 0", got)
		}
		m.SetChannelFrequency(0, tt.freq)

		st := m.ChannelStates()[0]
		if want := (1 - tt.duty) / tt.freq; math.Abs(st.Delay-want) > 1e-12 {
			t.Errorf("duty=%v freq=%v: delay = %v, want %v", tt.duty, tt.freq, st.Delay, want)
		}
		if st.Duty != tt.duty || st.Frequency != tt.freq {
			t.Errorf("state duty=%v freq=%v, want %v and %v", st.Duty, st.Frequency, tt.duty, tt.freq)
		}
	}
}

func TestPulseDelayClamped(t *testing.T) {
	m, _ := newTestManager(t)
	m.AddChannel(Pulse)
	m.SetChannelFrequency(0, 0.1)

	if got := m.ChannelStates()[0].Delay; got != graph.DefaultMaxDelay {
		t.Fatalf("delay = %v, want %v", got, graph.DefaultMaxDelay)
	}
}

func TestDutyIgnoredByOtherChannels(t *testing.T) {
	m, _ := newTestManager(t)
	for _, typ := range allTypes[1:] {
		m.AddChannel(typ)
	}
	before := m.ChannelStates()
	for i := range allTypes[1:] {
		m.SetChannelDutyRatio(i, 0.125)
	}
	if diff := cmp.Diff(before, m.ChannelStates()); diff != "" {
		t.Fatalf("duty changed non pulse channels (-before +after):\n%s", diff)
	}
}

func TestRelease(t *testing.T) {
	m, ctx := newTestManager(t)
	for _, typ := range allTypes {
		m.AddChannel(typ)
	}
	held := make([]Channel, m.ChannelCount())
	for i := range held {
		held[i] = m.channels[i].Channel
	}

	m.Release()
	if got := m.ChannelCount(); got != 0 {
		t.Fatalf("ChannelCount() = %d after Release, want 0", got)
	}
	for i, ch := range held {
		if ch.State().Connected {
			t.Errorf("channel %d still connected after Release", i)
		}
	}
	if n := ctx.Destination().NumInputs(); n != 0 {
		t.Fatalf("destination has %d inputs after Release, want 0", n)
	}

	if err := m.AddChannel(Triangle); err != nil {
		t.Fatal(err)
	}
	if got := m.ChannelCount(); got != 1 {
		t.Fatalf("ChannelCount() = %d, want 1", got)
	}
	if err := m.SetChannelVolume(0, 1); err != nil {
		t.Fatal(err)
	}
}

func TestChannelIndex(t *testing.T) {
	m, _ := newTestManager(t)
	m.AddChannel(Pulse)
	m.AddChannel(Noise)

	for _, idx := range []int{-1, 2, 100} {
		if err := m.SetChannelVolume(idx, 1); !errors.Is(err, ErrNoChannel) {
			t.Errorf("SetChannelVolume(%d) = %v, want %v", idx, err, ErrNoChannel)
		}
		if err := m.SetChannelFrequency(idx, 1); !errors.Is(err, ErrNoChannel) {
			t.Errorf("SetChannelFrequency(%d) = %v, want %v", idx, err, ErrNoChannel)
		}
		if err := m.SetChannelDutyRatio(idx, 1); !errors.Is(err, ErrNoChannel) {
			t.Errorf("SetChannelDutyRatio(%d) = %v, want %v", idx, err, ErrNoChannel)
		}
	}
}

func TestChannelsRender(t *testing.T) {
	for _, typ := range allTypes {
		t.Run(typ.String(), func(t *testing.T) {
			m, ctx := newTestManager(t)
			m.AddChannel(typ)
			m.SetChannelFrequency(0, 440)
			m.SetChannelDutyRatio(0, 0.25)

			// Silent until a volume is set.
			buf := make([]float32, 2048)
			ctx.Render(buf)
			if peak(buf) != 0 {
				t.Fatalf("channel audible before any volume is set")
			}

			m.SetChannelVolume(0, 0.5)
			ctx.Render(buf)
			if p := peak(buf); p == 0 || p > 1 {
				t.Fatalf("peak = %v, want in (0, 1]", p)
			}

			m.Release()
			ctx.Render(buf)
			if peak(buf) != 0 {
				t.Fatalf("channel audible after Release")
			}
		})
	}
}

func peak(buf []float32) float64 {
	p := 0.0
	for _, v := range buf {
		p = max(p, math.Abs(float64(v)))
	}
	return p
}

func TestNoiseSpectrum(t *testing.T) {
	m, _ := newTestManager(t)
	real, imag := noiseSpectrum(m.rnd)

	if len(real) != NoiseBins || len(imag) != NoiseBins {
		t.Fatalf("spectrum has %d/%d bins, want %d", len(real), len(imag), NoiseBins)
	}
	if real[0] != 0 || imag[0] != 0 {
		t.Fatalf("DC bin = (%v, %v), want 0", real[0], imag[0])
	}
	for i := 1; i < NoiseBins; i++ {
		if mag := math.Hypot(real[i], imag[i]); math.Abs(mag-1) > 1e-12 {
			t.Fatalf("bin %d magnitude = %v, want 1", i, mag)
		}
	}

	m.SetNoiseSeed(7)
	r1, _ := noiseSpectrum(m.rnd)
	m.SetNoiseSeed(7)
	r2, _ := noiseSpectrum(m.rnd)
	if diff := cmp.Diff(r1, r2); diff != "" {
		t.Fatalf("same seed, different spectrum (-first +second):\n%s", diff)
	}
}

func TestEncodeState(t *testing.T) {
	m, _ := newTestManager(t)
	m.AddChannel(Pulse)
	m.AddChannel(Triangle)
	m.SetChannelFrequency(0, 440)
	m.SetChannelVolume(1, 0.5)

	var e jx.Encoder
	m.EncodeState(&e)

	var (
		enabled bool
		types   []string
		freqs   []float64
	)
	d := jx.DecodeBytes(e.Bytes())
	err := d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "enabled":
			v, err := d.Bool()
			enabled = v
			return err
		case "channels":
			return d.Arr(func(d *jx.Decoder) error {
				return d.Obj(func(d *jx.Decoder, key string) error {
					switch key {
					case "type":
						s, err := d.Str()
						types = append(types, s)
						return err
					case "frequency":
						f, err := d.Float64()
						freqs = append(freqs, f)
						return err
					}
					return d.Skip()
				})
			})
		}
		return d.Skip()
	})
	if err != nil {
		t.Fatalf("invalid JSON %s: %v", e.Bytes(), err)
	}

	if !enabled {
		t.Errorf("enabled = false")
	}
	if diff := cmp.Diff([]string{"Pulse", "Triangle"}, types); diff != "" {
		t.Errorf("types mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]float64{440, 0}, freqs); diff != "" {
		t.Errorf("frequencies mismatch (-want +got):\n%s", diff)
	}
}
