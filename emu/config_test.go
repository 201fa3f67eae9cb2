package emu

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"rewired/hw/cga"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
palette = ["#000000", "#00aa00", "#aa0000", "#aa5500"]

[video]
scale = 2
monitor = 1
shader = "crt"

[output]
frame_ceiling = 1000
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}

	want := Config{
		Video: VideoConfig{
			Scale:   2,
			Monitor: 1,
			Shader:  "crt",
		},
		Output: OutputConfig{FrameCeiling: 1000},
		Palette: cga.Palette{
			cga.RGBA(0x00, 0x00, 0x00, 0xff),
			cga.RGBA(0x00, 0xaa, 0x00, 0xff),
			cga.RGBA(0xaa, 0x00, 0x00, 0xff),
			cga.RGBA(0xaa, 0x55, 0x00, 0xff),
		},
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("config (-want +got):\n%s", diff)
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, "[video]\ndisable_vsync = true\n"))
	if err != nil {
		t.Fatal(err)
	}

	want := DefaultConfig
	want.Video.DisableVSync = true
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("config (-want +got):\n%s", diff)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad-color", `palette = ["#000000", "#zz0000", "#000000", "#000000"]`},
		{"short-palette", `palette = ["#000000"]`},
		{"bad-type", "[output]\nframe_ceiling = \"lots\"\n"},
		{"syntax", "[video\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadConfig(writeConfig(t, tt.content)); err == nil {
				t.Fatalf("LoadConfig should fail")
			}
		})
	}

	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Fatalf("LoadConfig should fail on missing file")
	}
}

func TestConfigCheck(t *testing.T) {
	cfg := Config{
		Video:  VideoConfig{Scale: 0},
		Output: OutputConfig{FrameCeiling: -3},
	}
	cfg.Check()

	if cfg.Video.Scale != DefaultConfig.Video.Scale {
		t.Errorf("scale = %d, want %d", cfg.Video.Scale, DefaultConfig.Video.Scale)
	}
	if cfg.Output.FrameCeiling != DefaultConfig.Output.FrameCeiling {
		t.Errorf("frame ceiling = %d, want %d", cfg.Output.FrameCeiling, DefaultConfig.Output.FrameCeiling)
	}

	valid := DefaultConfig
	valid.Video.Scale = maxScale
	checked := valid
	checked.Check()
	if diff := cmp.Diff(valid, checked); diff != "" {
		t.Errorf("Check modified a valid config (-want +got):\n%s", diff)
	}
}

func TestSaveConfig(t *testing.T) {
	cfg := DefaultConfig
	cfg.Video.Monitor = 2
	cfg.Palette[1] = cga.RGBA(1, 2, 3, 4)

	path := filepath.Join(t.TempDir(), "config.toml")
	if err := SaveConfig(cfg, path); err != nil {
		t.Fatal(err)
	}

	got, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(cfg, got); diff != "" {
		t.Errorf("reloaded config (-want +got):\n%s", diff)
	}
}
