// Package config holds the user's playback settings.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"hangulfun/audio"
)

const envPrefix = "HANGULFUN"

type Config struct {
	Backend      string        `mapstructure:"backend"`
	Device       string        `mapstructure:"device"`
	AltScreen    bool          `mapstructure:"alt_screen"`
	Rewind       time.Duration `mapstructure:"rewind"`
	TickInterval time.Duration `mapstructure:"tick_interval"`
	LyricsOffset time.Duration `mapstructure:"lyrics_offset"`
	LogPath      string        `mapstructure:"log_path"`
}

// file is the on-disk form. Durations are written as "2s" rather than
// nanosecond counts.
type file struct {
	Backend      string `yaml:"backend"`
	Device       string `yaml:"device,omitempty"`
	AltScreen    bool   `yaml:"alt_screen"`
	Rewind       string `yaml:"rewind"`
	TickInterval string `yaml:"tick_interval"`
	LyricsOffset string `yaml:"lyrics_offset,omitempty"`
	LogPath      string `yaml:"log_path,omitempty"`
}

func Default() *Config {
	return &Config{
		Backend:      "auto",
		AltScreen:    true,
		Rewind:       2 * time.Second,
		TickInterval: 50 * time.Millisecond,
	}
}

// DefaultPath is <user config dir>/hangulfun/config.yaml.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "hangulfun", "config.yaml"), nil
}

// Load reads path, or the default location when path is empty, then
// applies HANGULFUN_* environment overrides. Only an explicitly named
// file has to exist.
func Load(path string) (*Config, error) {
	return load(path, true)
}

func load(path string, env bool) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if env {
		v.SetEnvPrefix(envPrefix)
		v.AutomaticEnv()
	}

	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err == nil {
			path = p
		}
	}
	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			missing := errors.Is(err, os.ErrNotExist) || errors.As(err, &notFound)
			if explicit || !missing {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("backend", d.Backend)
	v.SetDefault("device", d.Device)
	v.SetDefault("alt_screen", d.AltScreen)
	v.SetDefault("rewind", d.Rewind)
	v.SetDefault("tick_interval", d.TickInterval)
	v.SetDefault("lyrics_offset", d.LyricsOffset)
	v.SetDefault("log_path", d.LogPath)
}

func (c *Config) Validate() error {
	if c.Backend != "auto" && !slices.Contains(audio.Names(), c.Backend) {
		return fmt.Errorf("invalid backend %q (must be one of %v)", c.Backend, audio.Names())
	}
	if c.Rewind <= 0 {
		return fmt.Errorf("rewind must be positive, got %v", c.Rewind)
	}
	if c.TickInterval < 10*time.Millisecond || c.TickInterval > time.Second {
		return fmt.Errorf("tick_interval must be between 10ms and 1s, got %v", c.TickInterval)
	}
	return nil
}

// SaveDevice records device in the file at path, keeping the file's other
// settings. Environment overrides and command-line flags are not written.
func SaveDevice(path, device string) error {
	cfg, err := load(path, false)
	if err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.Is(err, os.ErrNotExist) && !errors.As(err, &notFound) {
			return err
		}
		cfg = Default()
	}
	cfg.Device = device
	return cfg.Save(path)
}

// Save writes c as YAML, creating the directory if needed.
func (c *Config) Save(path string) error {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return err
		}
		path = p
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f := file{
		Backend:      c.Backend,
		Device:       c.Device,
		AltScreen:    c.AltScreen,
		Rewind:       c.Rewind.String(),
		TickInterval: c.TickInterval.String(),
		LogPath:      c.LogPath,
	}
	if c.LyricsOffset != 0 {
		f.LyricsOffset = c.LyricsOffset.String()
	}
	data, err := yaml.Marshal(&f)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
