package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/srlehn/wlconn/internal/environ"
	"github.com/srlehn/wlconn/internal/propkeys"
)

// Config is the optional settings file of the wlconn command.
type Config struct {
	Wayland          Wayland `yaml:"wayland"`
	SessionType      string  `yaml:"session_type"`
	RoundtripTimeout string  `yaml:"roundtrip_timeout"`
	Log              Log     `yaml:"log"`
}

type Wayland struct {
	Display    string `yaml:"display"`
	RuntimeDir string `yaml:"runtime_dir"`
}

type Log struct {
	File  string `yaml:"file"`
	Debug bool   `yaml:"debug"`
}

// Error is returned for unreadable or invalid settings files.
type Error struct {
	Op   string
	Path string
	Err  error
}

func (e *Error) Error() string { return fmt.Sprintf(`%s %s: %v`, e.Op, e.Path, e.Err) }

func (e *Error) Unwrap() error { return e.Err }

func Load(path string) (Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, &Error{Op: `config.read`, Path: path, Err: err}
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return Config{}, &Error{Op: `config.parse`, Path: path, Err: err}
	}
	if _, err := cfg.Timeout(); err != nil {
		return Config{}, &Error{Op: `config.validate`, Path: path, Err: err}
	}
	return cfg, nil
}

// Timeout parses RoundtripTimeout, zero when unset.
func (c Config) Timeout() (time.Duration, error) {
	if len(c.RoundtripTimeout) == 0 {
		return 0, nil
	}
	d, err := time.ParseDuration(c.RoundtripTimeout)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf(`negative roundtrip_timeout %s`, d)
	}
	return d, nil
}

// Apply overrides the environment snapshot with the configured values.
func (c Config) Apply(pr environ.Properties) {
	if pr == nil {
		return
	}
	if len(c.Wayland.Display) > 0 {
		environ.SetEnv(pr, `WAYLAND_DISPLAY`, c.Wayland.Display)
	}
	if len(c.Wayland.RuntimeDir) > 0 {
		environ.SetEnv(pr, `XDG_RUNTIME_DIR`, c.Wayland.RuntimeDir)
	}
	if len(c.SessionType) > 0 {
		environ.SetEnv(pr, `XDG_SESSION_TYPE`, c.SessionType)
	}
}

// ApplyFile loads path and applies it to pr, recording the file name.
func ApplyFile(path string, pr environ.Properties) (Config, error) {
	cfg, err := Load(path)
	if err != nil {
		return Config{}, err
	}
	cfg.Apply(pr)
	if pr != nil {
		pr.SetProperty(propkeys.ConfigFile, path)
	}
	return cfg, nil
}
