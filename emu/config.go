package emu

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/BurntSushi/toml"

	"rewired/emu/log"
	"rewired/emu/output"
	"rewired/hw/cga"
)

type Config struct {
	Video   VideoConfig  `toml:"video"`
	Output  OutputConfig `toml:"output"`
	Palette cga.Palette  `toml:"palette"`
}

type VideoConfig struct {
	Scale        int    `toml:"scale"`
	Monitor      int32  `toml:"monitor"`
	DisableVSync bool   `toml:"disable_vsync"`
	Shader       string `toml:"shader"`
}

type OutputConfig struct {
	// Maximum number of frames waiting in the output queue before the
	// program is considered stuck.
	FrameCeiling int `toml:"frame_ceiling"`
}

const (
	maxScale        = 8
	maxFrameCeiling = 100_000
)

var DefaultConfig = Config{
	Video: VideoConfig{
		Scale: 3,
	},
	Output: OutputConfig{
		FrameCeiling: output.DefaultFrameCeiling,
	},
	Palette: cga.DefaultPalette,
}

const DefaultFileMode = os.FileMode(0755)

var ConfigDir = sync.OnceValue(func() string {
	cfgdir, err := os.UserConfigDir()
	if err != nil {
		log.ModEmu.Fatalf("failed to get user config directory: %v", err)
	}

	dir := filepath.Join(cfgdir, "rewired")
	if err := os.MkdirAll(dir, DefaultFileMode); err != nil {
		log.ModEmu.Fatalf("failed to create directory %s: %v", dir, err)
	}
	return dir
})

const cfgFilename = "config.toml"

// Check replaces invalid values by their default.
func (cfg *Config) Check() {
	if cfg.Video.Scale < 1 || cfg.Video.Scale > maxScale {
		log.ModEmu.WarnZ("Invalid video scale, using default").
			Int("scale", cfg.Video.Scale).
			Int("default", DefaultConfig.Video.Scale).
			End()
		cfg.Video.Scale = DefaultConfig.Video.Scale
	}
	if cfg.Output.FrameCeiling < 1 || cfg.Output.FrameCeiling > maxFrameCeiling {
		log.ModEmu.WarnZ("Invalid frame ceiling, using default").
			Int("ceiling", cfg.Output.FrameCeiling).
			Int("default", DefaultConfig.Output.FrameCeiling).
			End()
		cfg.Output.FrameCeiling = DefaultConfig.Output.FrameCeiling
	}
}

// LoadConfig loads the configuration file at path. Missing values are taken
// from DefaultConfig.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return DefaultConfig, err
	}
	for _, key := range md.Undecoded() {
		log.ModEmu.WarnZ("Unknown configuration key").String("key", key.String()).String("file", path).End()
	}
	cfg.Check()
	return cfg, nil
}

// LoadConfigOrDefault loads the configuration from the rewired config
// directory, or provide a default one.
func LoadConfigOrDefault() Config {
	path := filepath.Join(ConfigDir(), cfgFilename)
	cfg, err := LoadConfig(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			log.ModEmu.WarnZ("Failed to load config, using default").Error("err", err).End()
		}
		return DefaultConfig
	}
	return cfg
}

// SaveConfig into path.
func SaveConfig(cfg Config, path string) error {
	buf, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}

	return os.WriteFile(path, buf, 0644)
}

// SaveDefaultConfig into rewired config directory.
func SaveDefaultConfig(cfg Config) error {
	return SaveConfig(cfg, filepath.Join(ConfigDir(), cfgFilename))
}
