// Package config provides pipeline configuration from command-line flags,
// environment variables, and .env files.
package config

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ytget/tuneid/internal/errs"
)

// Environment variable keys for the recognition credentials. These follow
// the names the ACRCloud console documents.
const (
	EnvAccessKey    = "ACRCLOUD_ACCESS_KEY"
	EnvAccessSecret = "ACRCLOUD_ACCESS_SECRET"
	EnvHost         = "ACRCLOUD_HOST"
)

// Default values
const (
	DefaultSegmentCount  = 5
	DefaultSegmentLength = 20 * time.Second
	DefaultLeadIn        = 5 * time.Second
	DefaultHTTPTimeout   = 30 * time.Second
	DefaultEnvFile       = ".env"
	DefaultLogLevel      = "info"
	DefaultLogFormat     = "pretty"

	// Clamping bounds for the segment plan.
	MinSegmentCount  = 1
	MaxSegmentCount  = 10
	MinSegmentLength = 5 * time.Second
	MaxSegmentLength = 60 * time.Second
)

// Credentials holds the recognition API access data. Loaded once at
// process start and read-only afterwards.
type Credentials struct {
	AccessKey    string
	AccessSecret string
	Host         string
}

// Configured reports whether all three credential values are present.
func (c Credentials) Configured() bool {
	return c.AccessKey != "" && c.AccessSecret != "" && c.Host != ""
}

// Config holds the full pipeline configuration.
type Config struct {
	URL          string // positional source URL; may be empty (prompted later)
	Credentials  Credentials
	RemoveVocals bool
	KeepFiles    bool

	SegmentCount  int
	SegmentLength time.Duration
	LeadIn        time.Duration

	WorkDir     string
	HTTPTimeout time.Duration

	LogLevel  string
	LogFormat string
}

// Load builds a Config from args (without the program name) with
// precedence flags > environment > .env file > defaults.
func Load(args []string) (*Config, error) {
	fs := flag.NewFlagSet("tuneid", flag.ContinueOnError)

	accessKey := fs.String("access-key", "", "ACRCloud access key (overrides "+EnvAccessKey+")")
	accessSecret := fs.String("access-secret", "", "ACRCloud access secret (overrides "+EnvAccessSecret+")")
	host := fs.String("host", "", "ACRCloud identify host (overrides "+EnvHost+")")
	removeVocals := fs.Bool("remove-vocals", false, "Separate vocals with Demucs before recognition")
	keepFiles := fs.Bool("keep-files", false, "Keep downloaded and separated audio after the run")
	segments := fs.Int("segments", DefaultSegmentCount, "Number of audio segments to submit")
	segmentLength := fs.Duration("segment-length", DefaultSegmentLength, "Length of each segment")
	workDir := fs.String("workdir", "", "Working directory for temporary audio (default: system temp)")
	envFile := fs.String("env-file", DefaultEnvFile, "Path to .env file")
	httpTimeout := fs.Duration("timeout", DefaultHTTPTimeout, "HTTP timeout for recognition uploads")
	logLevel := fs.String("log-level", "", "Log level (debug, info, warn, error)")
	logFormat := fs.String("log-format", "", "Log format (pretty, json)")

	if err := fs.Parse(args); err != nil {
		return nil, errs.Config("invalid arguments").WithCause(err)
	}

	// Load .env if it exists; real environment still wins.
	_ = loadEnvFile(*envFile)

	cfg := &Config{
		URL: fs.Arg(0),
		Credentials: Credentials{
			AccessKey:    getConfigValue(*accessKey, EnvAccessKey, ""),
			AccessSecret: getConfigValue(*accessSecret, EnvAccessSecret, ""),
			Host:         getConfigValue(*host, EnvHost, ""),
		},
		RemoveVocals:  *removeVocals,
		KeepFiles:     *keepFiles,
		SegmentCount:  clampInt(*segments, MinSegmentCount, MaxSegmentCount),
		SegmentLength: clampDuration(*segmentLength, MinSegmentLength, MaxSegmentLength),
		LeadIn:        DefaultLeadIn,
		HTTPTimeout:   *httpTimeout,
		LogLevel:      getConfigValue(*logLevel, "TUNEID_LOG_LEVEL", DefaultLogLevel),
		LogFormat:     getConfigValue(*logFormat, "TUNEID_LOG_FORMAT", DefaultLogFormat),
	}

	dir, err := expandWorkDir(getConfigValue(*workDir, "TUNEID_WORKDIR", ""))
	if err != nil {
		return nil, errs.Config("invalid workdir").WithCause(err)
	}
	cfg.WorkDir = dir

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that config values are usable. Credentials are checked
// separately by the caller so it can print setup instructions.
func (c *Config) Validate() error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.LogLevel)] {
		return errs.Config(fmt.Sprintf("invalid log level: %s (must be debug, info, warn, or error)", c.LogLevel))
	}

	validFormats := map[string]bool{"pretty": true, "json": true}
	if !validFormats[strings.ToLower(c.LogFormat)] {
		return errs.Config(fmt.Sprintf("invalid log format: %s (must be pretty or json)", c.LogFormat))
	}

	if c.HTTPTimeout <= 0 {
		return errs.Config("timeout must be positive")
	}
	return nil
}

// expandWorkDir expands ~ and makes the path absolute. Empty stays empty
// (the pipeline then uses the system temp directory).
func expandWorkDir(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[2:])
	}
	if !filepath.IsAbs(path) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("failed to get absolute path: %w", err)
		}
		path = absPath
	}
	return filepath.Clean(path), nil
}

// getConfigValue returns the first non-empty value from flag, env var, or default.
func getConfigValue(flagValue, envKey, defaultValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if envValue := os.Getenv(envKey); envValue != "" {
		return envValue
	}
	return defaultValue
}

func clampInt(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

func clampDuration(v, min, max time.Duration) time.Duration {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// loadEnvFile loads environment variables from a .env file.
// Format: KEY=value (one per line, # for comments).
func loadEnvFile(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return fmt.Errorf("invalid format at line %d: %s", lineNum, line)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.Trim(strings.TrimSpace(parts[1]), `"'`)

		// Real environment variables take precedence over the .env file.
		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("failed to set env var %s: %w", key, err)
			}
		}
	}

	return scanner.Err()
}
