package main

import (
	"fmt"
	"os"
	"runtime/debug"

	"rewired/emu"
)

func main() {
	args := parseArgs(os.Args[1:])
	cfg := loadConfig(args.Config)

	var exitcode int
	switch args.mode {
	case playMode:
		exitcode = playMain(args.Play, cfg)
	case exportMode:
		checkf(exportMain(os.Stdout, args.Export, cfg), "export failed")
	case infoMode:
		checkf(infoMain(os.Stdout, args.Info.Recording), "can't read recording")
	case demoMode:
		exitcode = demoMain(args.Demo, cfg)
	case ctlMode:
		checkf(ctlMain(os.Stdout, args.Ctl), "player control failed")
	case versionMode:
		fmt.Println("rewired", version())
	}
	os.Exit(exitcode)
}

func loadConfig(path string) emu.Config {
	if path == "" {
		return emu.LoadConfigOrDefault()
	}
	cfg, err := emu.LoadConfig(path)
	checkf(err, "failed to load configuration file %s", path)
	return cfg
}

func version() string {
	bi, ok := debug.ReadBuildInfo()
	if !ok || bi.Main.Version == "" {
		return "(devel)"
	}
	return bi.Main.Version
}
