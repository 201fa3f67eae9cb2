package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/alecthomas/kong"

	"rewired/emu/log"
)

type mode byte

const (
	playMode    mode = iota // Play a recording in a window
	exportMode              // Export recording frames as PNG files
	infoMode                // Show recording summary
	demoMode                // Run the built-in demo program
	ctlMode                 // Control a running player
	versionMode             // Show version
)

type (
	CLI struct {
		Play    Play    `cmd:"" help:"Play a recording in real time."`
		Export  Export  `cmd:"" help:"Export the frames of a recording as PNG files."`
		Info    Info    `cmd:"" help:"Show a JSON summary of a recording."`
		Demo    Demo    `cmd:"" help:"Run the built-in demo program."`
		Ctl     Ctl     `cmd:"" help:"Control a player started with --port."`
		Version Version `cmd:"" help:"Show rewired version."`

		Log    logModMask `help:"${log_help}" placeholder:"mod0,mod1,..."`
		Config string     `help:"${config_help}" type:"existingfile" placeholder:"FILE"`

		mode mode
	}

	Play struct {
		Recording string `arg:"" name:"/path/to/recording" help:"Recording to play." type:"existingfile"`

		Monitor int32 `name:"monitor" help:"Monitor index to use (overrides config)." default:"-1"`
		Scale   int   `name:"scale" help:"Window scale factor (overrides config)."`
		Port    int   `name:"port" help:"${port_help}"`
	}

	Export struct {
		Recording string `arg:"" name:"/path/to/recording" help:"Recording to export." type:"existingfile"`

		Out   string `name:"out" short:"o" help:"Output directory." required:"" type:"path"`
		Every int    `name:"every" help:"Save one frame out of N." default:"1"`
	}

	Info struct {
		Recording string `arg:"" name:"/path/to/recording" type:"existingfile"`
	}

	Demo struct {
		Frames   int    `name:"frames" help:"Number of frames to produce." default:"700"`
		Delay    uint32 `name:"delay" help:"Delay after each frame, in milliseconds." default:"14"`
		Stuck    int    `name:"stuck" help:"${stuck_help}" default:"0"`
		Record   string `name:"record" help:"Also record the output to FILE." placeholder:"FILE" type:"path"`
		Headless bool   `name:"headless" help:"Don't open a window nor wait the delays."`
		Port     int    `name:"port" help:"${port_help}"`
	}

	Ctl struct {
		Action string `arg:"" enum:"stats,pause,resume,stop" help:"One of: stats, pause, resume, stop."`
		Port   int    `name:"port" help:"Port of the player to control." required:""`
	}

	Version struct{}
)

var vars = kong.Vars{
	"log_help":    "Enable logging for specified modules.",
	"config_help": "Configuration file. (default: user config directory)",
	"stuck_help":  "Stop waiting after that many frames, to exercise the runaway producer detection.",
	"port_help":   "Serve playback controls on this local port.",
}

func parseArgs(args []string) CLI {
	var cfg CLI
	parser, err := kong.New(&cfg,
		kong.Name("rewired"),
		kong.Description("Real-time CGA output player."),
		kong.UsageOnError(),
		kong.Help(printHelp),
		vars)
	if err != nil {
		panic(err)
	}

	ctx, err := parser.Parse(args)
	checkf(err, "failed to parse command line")
	checkf(ctx.Error, "failed to parse command line")

	cfg.mode = commandMode(ctx.Command())
	return cfg
}

func commandMode(cmd string) mode {
	switch {
	case strings.HasPrefix(cmd, "export"):
		return exportMode
	case strings.HasPrefix(cmd, "info"):
		return infoMode
	case cmd == "demo":
		return demoMode
	case strings.HasPrefix(cmd, "ctl"):
		return ctlMode
	case cmd == "version":
		return versionMode
	default:
		return playMode
	}
}

func printHelp(options kong.HelpOptions, ctx *kong.Context) error {
	if err := kong.DefaultHelpPrinter(options, ctx); err != nil {
		return err
	}
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
	return nil
}

type logModMask log.ModuleMask

// Decode decodes a comma-separated list of module names into a module mask.
//
// Implements kong.MapperValue interface.
func (lm logModMask) Decode(ctx *kong.DecodeContext) error {
	mask, err := parseLogModules(ctx.Scan.Pop().Value.(string))
	if err != nil {
		return err
	}
	if mask == 0 {
		log.Disable()
		return nil
	}
	log.EnableDebugModules(mask)
	return nil
}

// parseLogModules parses the --log flag value. A zero mask means all logs are
// disabled.
func parseLogModules(s string) (log.ModuleMask, error) {
	var mask log.ModuleMask
	nolog := false
	allLogs := false

	for _, v := range strings.Split(s, ",") {
		switch v {
		case "all":
			allLogs = true
		case "no":
			nolog = true
		default:
			mod, ok := log.ModuleByName(v)
			if !ok {
				return 0, fmt.Errorf("unknown log module %s", v)
			}
			mask |= mod.Mask()
		}
	}

	if nolog {
		if allLogs {
			return 0, fmt.Errorf("cannot use 'all' and 'no' together")
		}
		if mask != 0 {
			return 0, fmt.Errorf("cannot combine 'no' with other log modules")
		}
		return 0, nil
	}

	if allLogs {
		mask = log.ModuleMaskAll
	}
	return mask, nil
}

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
