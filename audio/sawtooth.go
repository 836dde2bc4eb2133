package audio

import "famisynth/audio/graph"

type sawtoothChannel struct {
	oscChannel
}

func newSawtoothChannel(ctx *graph.Context) *sawtoothChannel {
	sc := &sawtoothChannel{
		oscChannel: newOscChannel(ctx, Sawtooth, graph.OscSawtooth),
	}
	sc.connect()
	return sc
}
