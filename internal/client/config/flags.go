package config

import (
	"github.com/spf13/pflag"
)

const (
	FlagConfig       = "config"
	FlagEnvFile      = "env-file"
	FlagRemoteURL    = "remote-url"
	FlagLocalURL     = "local-url"
	FlagLocal        = "local"
	FlagProbeTimeout = "probe-timeout"
	FlagDatabase     = "db"
	FlagDownloadDir  = "download-dir"
	FlagLogLevel     = "log-level"
	FlagLogBackend   = "log-backend"
)

// BindFlags registers the configuration flags on fs. Their defaults are only
// shown in help; Load applies a flag only when it was set explicitly.
func BindFlags(fs *pflag.FlagSet) {
	var d Config
	d.LoadDefaults()

	fs.StringP(FlagConfig, "c", "", "path to a JSON or YAML config file")
	fs.String(FlagEnvFile, defaultEnvFile, "path to a dotenv file")
	fs.String(FlagRemoteURL, d.RemoteURL, "remote API URL")
	fs.String(FlagLocalURL, d.LocalURL, "local API URL")
	fs.Bool(FlagLocal, d.LocalMode, "use the local backend with authentication disabled")
	fs.Duration(FlagProbeTimeout, d.ProbeTimeout, "timeout of the local backend health probe")
	fs.String(FlagDatabase, d.DatabasePath, "session database file")
	fs.String(FlagDownloadDir, d.DownloadDir, "directory downloaded templates are saved to")
	fs.String(FlagLogLevel, d.LogLevel, "log level: debug, info, warn, error")
	fs.String(FlagLogBackend, d.LogBackend, "log backend: zap or slog")
}

func applyFlags(cfg *Config, fs *pflag.FlagSet) error {
	strs := map[string]*string{
		FlagRemoteURL:   &cfg.RemoteURL,
		FlagLocalURL:    &cfg.LocalURL,
		FlagDatabase:    &cfg.DatabasePath,
		FlagDownloadDir: &cfg.DownloadDir,
		FlagLogLevel:    &cfg.LogLevel,
		FlagLogBackend:  &cfg.LogBackend,
	}
	for name, dst := range strs {
		if !fs.Changed(name) {
			continue
		}
		v, err := fs.GetString(name)
		if err != nil {
			return err
		}
		*dst = v
	}
	if fs.Changed(FlagLocal) {
		v, err := fs.GetBool(FlagLocal)
		if err != nil {
			return err
		}
		cfg.LocalMode = v
	}
	if fs.Changed(FlagProbeTimeout) {
		v, err := fs.GetDuration(FlagProbeTimeout)
		if err != nil {
			return err
		}
		cfg.ProbeTimeout = v
	}
	return nil
}
