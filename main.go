package main

import (
	"fmt"
	"os"
	"runtime/debug"

	"famisynth/config"
	"famisynth/song"
)

func main() {
	cli := parseArgs(os.Args[1:])

	switch cli.mode {
	case versionMode:
		printVersion()
		return
	case playMode:
		cfg := loadConfig(cli.Config)
		checkf(play(cfg, loadSong(cli.Play.SongPath), cli.Mute), "failed to play song")
	case renderMode:
		cfg := loadConfig(cli.Config)
		path := cli.Render.Output
		if path == "" {
			path = cfg.Audio.WAVPath
		}
		checkf(render(cfg, loadSong(cli.Render.SongPath), path, cli.Mute), "failed to render song")
	case dumpMode:
		cfg := loadConfig(cli.Config)
		defer cli.Dump.Out.Close()
		checkf(dump(cfg, loadSong(cli.Dump.SongPath), cli.Dump.Until, cli.Mute, cli.Dump.Out), "failed to dump song")
	}
}

func loadConfig(path string) config.Config {
	if path == "" {
		return config.LoadOrDefault(config.DefaultPath())
	}
	cfg, err := config.Load(path)
	checkf(err, "failed to load configuration")
	return cfg
}

func loadSong(path string) *song.Song {
	if path == "" {
		return song.Demo()
	}
	s, err := song.Load(path)
	checkf(err, "failed to load song")
	return s
}

func printVersion() {
	version := "(devel)"
	if bi, ok := debug.ReadBuildInfo(); ok && bi.Main.Version != "" {
		version = bi.Main.Version
	}
	fmt.Println("famisynth", version)
}
