package config

import (
	"time"

	"github.com/spf13/pflag"
)

const (
	DefaultRemoteURL = "https://affectedly-optimistic-turkey.cloudpub.ru/api"
	DefaultLocalURL  = "http://localhost:8000/api"
)

// Config holds runtime settings for the vmgen CLI.
type Config struct {
	RemoteURL string
	LocalURL  string
	// LocalMode pins the client to LocalURL with a fixed session.
	LocalMode    bool
	ProbeTimeout time.Duration

	DatabasePath string
	DownloadDir  string

	LogLevel   string
	LogBackend string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.RemoteURL = DefaultRemoteURL
	c.LocalURL = DefaultLocalURL
	c.LocalMode = false
	c.ProbeTimeout = 3 * time.Second
	c.DatabasePath = "vmgen.db"
	c.DownloadDir = "."
	c.LogLevel = "warn"
	c.LogBackend = "zap"
}

// BaseURL is the URL the client starts on.
func (c *Config) BaseURL() string {
	if c.LocalMode {
		return c.LocalURL
	}
	return c.RemoteURL
}

// Load builds a Config from defaults, environment, config file and the
// flags registered by BindFlags. fs must already be parsed; a nil fs skips
// the flag stage.
func Load(fs *pflag.FlagSet) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	envFile := defaultEnvFile
	if fs != nil {
		if v, err := fs.GetString(FlagEnvFile); err == nil && v != "" {
			envFile = v
		}
	}
	env, err := readEnv(envFile)
	if err != nil {
		return nil, err
	}
	if err := applyEnv(cfg, env); err != nil {
		return nil, err
	}

	path := env[EnvConfig]
	if fs != nil && fs.Changed(FlagConfig) {
		path, _ = fs.GetString(FlagConfig)
	}
	if path != "" {
		if err := applyFile(cfg, path); err != nil {
			return nil, err
		}
	}

	if fs != nil {
		if err := applyFlags(cfg, fs); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}
