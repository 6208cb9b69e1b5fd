package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/caarlos0/env/v11"
)

// envPrefix prefixes every environment variable read by the server.
const envPrefix = "WISHLIST_"

// envConfig is the configuration read from the environment and the data
// directory's .env file. Command line flags override it.
type envConfig struct {
	HTTP       string `env:"HTTP"`
	LogLevel   string `env:"LOG_LEVEL"`
	StaticDir  string `env:"STATIC_DIR"`
	CORSOrigin string `env:"CORS_ORIGIN"`
	// MaxBodyBytes overrides max_request_body_bytes from server_config.json
	// when set.
	MaxBodyBytes *int64 `env:"MAX_BODY_BYTES"`
}

// parseEnv reads envConfig from dotEnv overlaid with the process environment.
func parseEnv(dotEnv map[string]string, environ []string) (envConfig, error) {
	vars := make(map[string]string, len(dotEnv)+len(environ))
	for k, v := range dotEnv {
		vars[k] = v
	}
	for _, kv := range environ {
		if k, v, ok := strings.Cut(kv, "="); ok {
			vars[k] = v
		}
	}
	var cfg envConfig
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: vars, Prefix: envPrefix}); err != nil {
		return envConfig{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// applyEnv copies the environment values to the flags that were not set
// explicitly on the command line.
func applyEnv(fs *flag.FlagSet, cfg envConfig) error {
	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) {
		set[f.Name] = true
	})
	for name, v := range map[string]string{
		"http":        cfg.HTTP,
		"log-level":   cfg.LogLevel,
		"static-dir":  cfg.StaticDir,
		"cors-origin": cfg.CORSOrigin,
	} {
		if v == "" || set[name] {
			continue
		}
		if err := fs.Set(name, v); err != nil {
			return fmt.Errorf("invalid %s%s: %w", envPrefix, strings.ToUpper(strings.ReplaceAll(name, "-", "_")), err)
		}
	}
	return nil
}

func parseLogLevel(s string) (slog.Level, error) {
	switch s {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("unknown log level: %q", s)
	}
}

// loadDotEnv reads KEY=VALUE lines from dataDir/.env. A missing file yields
// an empty map.
func loadDotEnv(dataDir string) (map[string]string, error) {
	vars := make(map[string]string)
	path := filepath.Join(dataDir, ".env")
	content, err := os.ReadFile(path) //nolint:gosec // G304: path is constructed from dataDir flag, not user input
	if err != nil {
		if os.IsNotExist(err) {
			return vars, nil
		}
		return nil, err
	}

	for line := range strings.SplitSeq(string(content), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, val, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(key), "export "))
		val = strings.TrimSpace(val)

		if strings.HasPrefix(val, "'") || strings.HasSuffix(val, "'") {
			if strings.HasPrefix(val, "'") && strings.HasSuffix(val, "'") && len(val) >= 2 {
				val = val[1 : len(val)-1]
			} else {
				return nil, fmt.Errorf("unbalanced single quotes in .env: %s", line)
			}
		} else if strings.HasPrefix(val, "\"") {
			unquoted, err := strconv.Unquote(val)
			if err != nil {
				return nil, fmt.Errorf("failed to unquote %s: %w", key, err)
			}
			val = unquoted
		}
		vars[key] = val
	}
	return vars, nil
}
