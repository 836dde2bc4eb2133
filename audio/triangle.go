package audio

import "famisynth/audio/graph"

type triangleChannel struct {
	oscChannel
}

func newTriangleChannel(ctx *graph.Context) *triangleChannel {
	tc := &triangleChannel{
		oscChannel: newOscChannel(ctx, Triangle, graph.OscTriangle),
	}
	tc.connect()
	return tc
}
