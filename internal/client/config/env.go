package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const defaultEnvFile = ".env"

const (
	EnvBackendLocal = "VMGEN_BACKEND_LOCAL"
	EnvAPIBaseURL   = "VMGEN_API_BASE_URL"
	EnvLocalURL     = "VMGEN_LOCAL_URL"
	EnvConfig       = "VMGEN_CONFIG"
	EnvLogLevel     = "VMGEN_LOG_LEVEL"
)

var envKeys = []string{EnvBackendLocal, EnvAPIBaseURL, EnvLocalURL, EnvConfig, EnvLogLevel}

// readEnv merges the dotenv file with the process environment. A missing
// file is not an error.
func readEnv(path string) (map[string]string, error) {
	env, err := godotenv.Read(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		env = map[string]string{}
	}
	for _, k := range envKeys {
		if v, ok := os.LookupEnv(k); ok {
			env[k] = v
		}
	}
	return env, nil
}

func applyEnv(cfg *Config, env map[string]string) error {
	if v, ok := env[EnvBackendLocal]; ok && v != "" {
		local, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvBackendLocal, err)
		}
		cfg.LocalMode = local
	}
	if v := env[EnvAPIBaseURL]; v != "" {
		cfg.RemoteURL = apiURL(v)
	}
	if v := env[EnvLocalURL]; v != "" {
		cfg.LocalURL = strings.TrimRight(v, "/")
	}
	if v := env[EnvLogLevel]; v != "" {
		cfg.LogLevel = v
	}
	return nil
}

// apiURL appends the /api prefix to a host URL unless it is already there.
func apiURL(host string) string {
	host = strings.TrimRight(host, "/")
	if strings.HasSuffix(host, "/api") {
		return host
	}
	return host + "/api"
}
