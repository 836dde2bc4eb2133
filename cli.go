package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/alecthomas/kong"

	"famisynth/log"
)

type mode byte

const (
	playMode    mode = iota // Play a song on the audio device
	renderMode              // Render a song to a WAV file
	dumpMode                // Render offline and dump channel states
	versionMode             // Show famisynth version
)

type (
	CLI struct {
		Play    Play    `cmd:"" help:"Play a song on the audio device. (default command)" default:"withargs"`
		Render  Render  `cmd:"" help:"Render a song to a WAV file."`
		Dump    Dump    `cmd:"" help:"Render a song offline and print the channel states as JSON."`
		Version Version `cmd:"" help:"Show famisynth version."`

		Config string     `name:"config" help:"${config_help}" type:"path" placeholder:"FILE"`
		Log    logModMask `help:"${log_help}" placeholder:"mod0,mod1,..."`
		Mute   bool       `name:"mute" help:"Start with master volume muted."`

		mode mode
	}

	Play struct {
		SongPath string `arg:"" name:"/path/to/song" help:"${songpath_help}" optional:"" type:"existingfile"`
	}

	Render struct {
		SongPath string `arg:"" name:"/path/to/song" help:"${songpath_help}" optional:"" type:"existingfile"`
		Output   string `name:"output" short:"o" help:"${output_help}" type:"path" placeholder:"FILE"`
	}

	Dump struct {
		SongPath string        `arg:"" name:"/path/to/song" help:"${songpath_help}" optional:"" type:"existingfile"`
		Until    time.Duration `name:"until" help:"Stop rendering after that much song time. (default: whole song)"`
		Out      *outfile      `name:"out" help:"Write JSON to file." default:"stdout" placeholder:"FILE|stdout|stderr"`
	}

	Version struct{}
)

var vars = kong.Vars{
	"config_help":   "Configuration file. (default: config.toml in the user config directory)",
	"songpath_help": "Song file, in TOML. The demo song plays when omitted.",
	"output_help":   "WAV file to write. (default: wav_path from the configuration)",
	"log_help":      "Enable logging for specified modules.",
}

func parseArgs(args []string) CLI {
	var cfg CLI
	parser, err := kong.New(&cfg,
		kong.Name("famisynth"),
		kong.Description("NES-style sound channel synthesizer."),
		kong.UsageOnError(),
		kong.Help(printHelp),
		vars)
	if err != nil {
		panic(err)
	}

	ctx, err := parser.Parse(args)
	checkf(err, "failed to parse command line")
	checkf(ctx.Error, "failed to parse command line")

	switch strings.Fields(ctx.Command())[0] {
	case "render":
		cfg.mode = renderMode
	case "dump":
		cfg.mode = dumpMode
	case "version":
		cfg.mode = versionMode
	default:
		cfg.mode = playMode
	}
	return cfg
}

func printHelp(options kong.HelpOptions, ctx *kong.Context) error {
	if err := kong.DefaultHelpPrinter(options, ctx); err != nil {
		return err
	}
	if ctx.Command() != "version" {
		loggingHelp := `
Log modules:
  The --log flag accepts a comma-separated list of modules.

  Valid log modules are:
%s

  As a special case, the following values are accepted:
    - no                     Disable all logging.
    - all                    Enable all logs.
`
		var strs []string
		for _, m := range log.ModuleNames() {
			strs = append(strs, "    - "+m)
		}

		fmt.Fprintf(os.Stderr, loggingHelp, strings.Join(strs, "\n"))
	}

	return nil
}

type logModMask log.ModuleMask

// Decode decodes a comma-separated list of module names into a module mask.
//
// Implements kong.MapperValue interface.
func (lm logModMask) Decode(ctx *kong.DecodeContext) error {
	nolog := false
	allLogs := false

	tok := ctx.Scan.Pop()
	for _, v := range strings.Split(tok.Value.(string), ",") {
		switch v {
		case "all":
			allLogs = true
		case "no":
			nolog = true
		default:
			mod, ok := log.ModuleByName(v)
			if !ok {
				return fmt.Errorf("unknown log module %s", v)
			}
			lm |= logModMask(mod.Mask())
		}
	}

	if nolog {
		if allLogs {
			return fmt.Errorf("cannot use 'all' and 'no' together")
		}
		if lm != 0 {
			return fmt.Errorf("cannot combine 'no' with other log modules")
		}
		log.Disable()
		return nil
	}

	if allLogs {
		lm = logModMask(log.ModuleMaskAll)
	}

	log.EnableDebugModules(log.ModuleMask(lm))
	return nil
}

type outfile struct {
	w     io.Writer
	name  string
	close func() error
}

// Decode decodes FILE|stdout|stderr into an io.WriteCloser
// that writes to that file.
//
// Implements kong.MapperValue interface.
func (f *outfile) Decode(ctx *kong.DecodeContext) error {
	tok := ctx.Scan.Pop()
	f.name = tok.Value.(string)
	f.close = func() error { return nil }

	switch f.name {
	case "stdout":
		f.w = os.Stdout
	case "stderr":
		f.w = os.Stderr
	default:
		fd, err := os.Create(f.name)
		if err != nil {
			return err
		}
		f.w = fd
		f.close = fd.Close
	}
	return nil
}

func (f *outfile) String() string              { return f.name }
func (f *outfile) Write(p []byte) (int, error) { return f.w.Write(p) }
func (f *outfile) Close() error                { return f.close() }

func checkf(err error, format string, args ...any) {
	if err == nil {
		return
	}
	fatalf(format+".\n"+err.Error(), args...)
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "fatal error:")
	fmt.Fprintf(os.Stderr, "\n\t%s\n", fmt.Sprintf(format, args...))
	os.Exit(1)
}
