package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-faster/jx"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"famisynth/config"
	"famisynth/log"
	"famisynth/song"
)

func TestParseArgs(t *testing.T) {
	tests := []struct {
		args []string
		mode mode
	}{
		{nil, playMode},
		{[]string{"play"}, playMode},
		{[]string{"render", "-o", "out.wav"}, renderMode},
		{[]string{"dump", "--until", "2s"}, dumpMode},
		{[]string{"--mute", "version"}, versionMode},
	}
	for _, tt := range tests {
		cli := parseArgs(tt.args)
		if cli.mode != tt.mode {
			t.Errorf("parseArgs(%q).mode = %d, want %d", tt.args, cli.mode, tt.mode)
		}
	}

	cli := parseArgs([]string{"dump", "--until", "2s"})
	if cli.Dump.Until != 2*time.Second {
		t.Errorf("Until = %v, want 2s", cli.Dump.Until)
	}
	if cli.Dump.Out == nil || cli.Dump.Out.String() != "stdout" {
		t.Errorf("Out = %v, want stdout", cli.Dump.Out)
	}

	cli = parseArgs([]string{"render", "-o", "out.wav"})
	if cli.Render.Output == "" {
		t.Errorf("render output not set")
	}
}

func TestLogFlag(t *testing.T) {
	t.Cleanup(func() { log.DisableDebugModules(log.ModuleMaskAll) })

	parseArgs([]string{"--log", "audio,driver", "version"})
	for _, tt := range []struct {
		mod  log.Module
		want bool
	}{
		{log.ModAudio, true},
		{log.ModDriver, true},
		{log.ModGraph, false},
		{log.ModBackend, false},
	} {
		if got := tt.mod.Enabled(log.DebugLevel); got != tt.want {
			t.Errorf("%s debug enabled = %t, want %t", tt.mod, got, tt.want)
		}
	}
}

func dumpGains(t *testing.T, mute bool) (float64, []float64) {
	t.Helper()

	cfg := config.Default
	cfg.Driver.NoiseSeed = 1

	var buf bytes.Buffer
	if err := dump(cfg, song.Demo(), 500*time.Millisecond, mute, &buf); err != nil {
		t.Fatal(err)
	}

	var (
		now   float64
		gains []float64
	)
	d := jx.DecodeBytes(buf.Bytes())
	err := d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "time":
			v, err := d.Float64()
			now = v
			return err
		case "channels":
			return d.Arr(func(d *jx.Decoder) error {
				return d.Obj(func(d *jx.Decoder, key string) error {
					if key != "gain" {
						return d.Skip()
					}
					g, err := d.Float64()
					gains = append(gains, g)
					return err
				})
			})
		}
		return d.Skip()
	})
	if err != nil {
		t.Fatalf("invalid JSON %s: %v", buf.Bytes(), err)
	}
	return now, gains
}

func TestDump(t *testing.T) {
	now, gains := dumpGains(t, false)
	if now < 0.5 || now > 0.55 {
		t.Errorf("time = %v, want about 0.5", now)
	}

	// Demo row 3: both pulses and the triangle play, the noise rests.
	want := []float64{0.6, 0.4, 1, 0}
	if diff := cmp.Diff(want, gains, cmpopts.EquateApprox(0, 1e-9)); diff != "" {
		t.Errorf("gains mismatch (-want +got):\n%s", diff)
	}
}

func TestDumpMuted(t *testing.T) {
	_, gains := dumpGains(t, true)
	if diff := cmp.Diff([]float64{0, 0, 0, 0}, gains); diff != "" {
		t.Errorf("gains mismatch (-want +got):\n%s", diff)
	}
}

const shortSong = `
speed = 1

[[voice]]
type = "pulse"
duty = 0.25
volume = 0.5
notes = ["A4", "C5", "E5"]
`

func TestPlayWAVBackend(t *testing.T) {
	s, err := song.Decode(strings.NewReader(shortSong))
	if err != nil {
		t.Fatal(err)
	}

	cfg := config.Default
	cfg.Audio.Backend = config.BackendWAV
	cfg.Audio.WAVPath = filepath.Join(t.TempDir(), "play.wav")
	if openFunc(cfg) != nil {
		t.Fatalf("wav backend has no real-time output")
	}
	if err := play(cfg, s, false); err != nil {
		t.Fatal(err)
	}

	fi, err := os.Stat(cfg.Audio.WAVPath)
	if err != nil {
		t.Fatal(err)
	}
	// 3 ticks at 60Hz, 16-bit mono.
	if want := int64(3 * cfg.Audio.SampleRate / 60 * 2); fi.Size() < want {
		t.Errorf("wav file is %d bytes, want at least %d", fi.Size(), want)
	}
}

func TestRenderWriteError(t *testing.T) {
	const path = "/dev/full"
	if _, err := os.Stat(path); err != nil {
		t.Skipf("%s not available: %v", path, err)
	}

	s, err := song.Decode(strings.NewReader(shortSong))
	if err != nil {
		t.Fatal(err)
	}
	if err := render(config.Default, s, path, false); err == nil {
		t.Fatalf("render to %s should fail", path)
	}
}
