// Package config loads runtime configuration for the vmgen CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. The .env file (--env-file, default ".env") and the process
//     environment, which wins over the file.
//  3. An optional config file selected with -c/--config or VMGEN_CONFIG.
//     Files ending in .yaml or .yml are read as YAML, anything else as JSON.
//  4. Command-line flags, applied only when given explicitly.
//
// # Environment
//
//	VMGEN_BACKEND_LOCAL   "true" runs against the local backend only
//	VMGEN_API_BASE_URL    remote host; "/api" is appended
//	VMGEN_LOCAL_URL       local API URL
//	VMGEN_CONFIG          config file path
//	VMGEN_LOG_LEVEL       debug, info, warn or error
//
// # File schema
//
// Durations are strings like "3s" or integer nanoseconds. Omitted keys keep
// their previous value.
//
//	remote_url: https://vmgen.example.com/api
//	local_url: http://localhost:8000/api
//	local_mode: false
//	probe_timeout: 3s
//	database_path: vmgen.db
//	download_dir: ./templates
//	log_level: warn
//	log_backend: zap
package config
