package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"rewired/emu"
	"rewired/emu/demo"
	"rewired/emu/log"
	"rewired/emu/record"
)

// demoRecording records frames frames of the demo program.
func demoRecording(t *testing.T, frames int) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "demo.rwoq")
	rw, err := record.Create(path, nil)
	if err != nil {
		t.Fatal(err)
	}
	demo.New(demo.Config{Frames: frames, FrameDelay: 14}).Run(rw)
	if err := rw.Close(); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestParseLogModules(t *testing.T) {
	tests := []struct {
		in      string
		want    log.ModuleMask
		wantErr bool
	}{
		{in: "output", want: log.ModOutput.Mask()},
		{in: "output,video", want: log.ModOutput.Mask() | log.ModVideo.Mask()},
		{in: "all", want: log.ModuleMaskAll},
		{in: "no", want: 0},
		{in: "no,all", wantErr: true},
		{in: "no,video", wantErr: true},
		{in: "ppu", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseLogModules(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseLogModules(%q) error = %v, wantErr %t", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("parseLogModules(%q) = %#x, want %#x", tt.in, got, tt.want)
			}
		})
	}
}

func TestCommandMode(t *testing.T) {
	tests := map[string]mode{
		"play </path/to/recording>":   playMode,
		"export </path/to/recording>": exportMode,
		"info </path/to/recording>":   infoMode,
		"demo":                        demoMode,
		"ctl <action>":                ctlMode,
		"version":                     versionMode,
	}
	for cmd, want := range tests {
		if got := commandMode(cmd); got != want {
			t.Errorf("commandMode(%q) = %d, want %d", cmd, got, want)
		}
	}
}

func TestInfo(t *testing.T) {
	path := demoRecording(t, 40)

	var buf bytes.Buffer
	if err := infoMain(&buf, path); err != nil {
		t.Fatal(err)
	}
	compareWithGolden(t, buf.Bytes(), filepath.Join("testdata", "info.golden"))
}

func TestExport(t *testing.T) {
	path := demoRecording(t, 10)
	out := filepath.Join(t.TempDir(), "frames")

	var buf bytes.Buffer
	args := Export{Recording: path, Out: out, Every: 4}
	if err := exportMain(&buf, args, emu.DefaultConfig); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), out) {
		t.Errorf("unexpected output %q", buf.String())
	}

	matches, err := filepath.Glob(filepath.Join(out, "*.png"))
	if err != nil {
		t.Fatal(err)
	}
	// Frames 0, 4 and 8.
	if len(matches) != 3 {
		t.Errorf("exported %d frames, want 3: %v", len(matches), matches)
	}
}

func TestDemoHeadless(t *testing.T) {
	path := filepath.Join(t.TempDir(), "demo.rwoq")
	args := Demo{Frames: 40, Delay: 14, Record: path, Headless: true}
	if code := demoMain(args, emu.DefaultConfig); code != 0 {
		t.Fatalf("demoMain returned %d", code)
	}

	if _, err := os.Stat(path); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := infoMain(&buf, path); err != nil {
		t.Fatal(err)
	}
	compareWithGolden(t, buf.Bytes(), filepath.Join("testdata", "info.golden"))
}
