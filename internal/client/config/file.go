package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration accepts "3s" style strings or integer nanoseconds.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	return d.set(v)
}

func (d *Duration) UnmarshalYAML(n *yaml.Node) error {
	var v any
	if err := n.Decode(&v); err != nil {
		return err
	}
	return d.set(v)
}

func (d *Duration) set(v any) error {
	switch x := v.(type) {
	case string:
		dur, err := time.ParseDuration(x)
		if err != nil {
			return err
		}
		d.Duration = dur
	case float64:
		d.Duration = time.Duration(x)
	case int:
		d.Duration = time.Duration(x)
	default:
		return fmt.Errorf("invalid duration %v", v)
	}
	return nil
}

// fileConfig is the on-disk shape. Pointers tell omitted keys apart from
// zero values.
type fileConfig struct {
	RemoteURL    *string   `json:"remote_url" yaml:"remote_url"`
	LocalURL     *string   `json:"local_url" yaml:"local_url"`
	LocalMode    *bool     `json:"local_mode" yaml:"local_mode"`
	ProbeTimeout *Duration `json:"probe_timeout" yaml:"probe_timeout"`
	DatabasePath *string   `json:"database_path" yaml:"database_path"`
	DownloadDir  *string   `json:"download_dir" yaml:"download_dir"`
	LogLevel     *string   `json:"log_level" yaml:"log_level"`
	LogBackend   *string   `json:"log_backend" yaml:"log_backend"`
}

func applyFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	var fc fileConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &fc)
	default:
		err = json.Unmarshal(data, &fc)
	}
	if err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	setIf(&cfg.RemoteURL, fc.RemoteURL)
	setIf(&cfg.LocalURL, fc.LocalURL)
	setIf(&cfg.LocalMode, fc.LocalMode)
	setIf(&cfg.DatabasePath, fc.DatabasePath)
	setIf(&cfg.DownloadDir, fc.DownloadDir)
	setIf(&cfg.LogLevel, fc.LogLevel)
	setIf(&cfg.LogBackend, fc.LogBackend)
	if fc.ProbeTimeout != nil {
		cfg.ProbeTimeout = fc.ProbeTimeout.Duration
	}
	return nil
}

func setIf[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}
