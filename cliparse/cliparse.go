// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package cliparse

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/danielhkuo/joke-survey/contentstore"
	"github.com/danielhkuo/joke-survey/kvstore"
)

// Config is the upload relay's configuration.
type Config struct {
	Port         int
	DatabaseURL  string
	DatabaseType string

	StoreDriver       string
	GitHubToken       string
	GitHubRepo        string
	GitHubBranch      string
	GitHubAPIURL      string
	S3Bucket          string
	S3Region          string
	S3Endpoint        string
	S3PathStyle       bool
	S3AccessKeyID     string
	S3SecretAccessKey string
	FSRoot            string

	IPHashSalt    string
	AllowedOrigin string
	LogFile       string
	LogLevel      string
}

// ClientConfig is the terminal survey client's configuration.
type ClientConfig struct {
	Catalog      string
	RelayURL     string
	StateDir     string
	StateBackend string
	NoConfirm    bool
	LogLevel     string
}

// LoadEnvFile loads KEY=VALUE pairs from path into the environment.
// Variables already set win. A missing file is not an error.
func LoadEnvFile(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// ParseFlags validates flags and sets port number
func ParseFlags(args []string) (Config, error) {
	var cfg Config

	fs := flag.NewFlagSet("survey-relay", flag.ContinueOnError)

	// Network config (can be CLI args or env)
	fs.IntVar(&cfg.Port, "p", 0, "Server port")
	fs.StringVar(&cfg.DatabaseURL, "d", "", "Ledger database URL")
	fs.StringVar(&cfg.DatabaseType, "t", "", "Database type (sqlite or postgres)")

	fs.StringVar(&cfg.StoreDriver, "store", "", "Content store driver (github, s3, fs, memory)")
	fs.StringVar(&cfg.FSRoot, "fs-root", "", "Root directory for the fs store")
	fs.StringVar(&cfg.AllowedOrigin, "origin", "", "Allowed CORS origin (default: reflect caller)")
	fs.StringVar(&cfg.LogFile, "log-file", "", "Also write JSON logs to this file")
	fs.StringVar(&cfg.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")

	// Secrets (prefer env variables, but allow CLI for dev)
	fs.StringVar(&cfg.IPHashSalt, "ip-salt", "", "IP hash salt (prefer env)")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	// Fall back to environment variables
	if cfg.Port == 0 {
		if portStr := os.Getenv("PORT"); portStr != "" {
			port, err := strconv.Atoi(portStr)
			if err != nil {
				return Config{}, errors.New("invalid PORT env variable")
			}
			cfg.Port = port
		} else {
			cfg.Port = 3318 // default
		}
	}
	if cfg.Port < 1 || cfg.Port > 65535 {
		return Config{}, fmt.Errorf("port %d out of range", cfg.Port)
	}

	cfg.DatabaseURL = firstNonEmpty(cfg.DatabaseURL, os.Getenv("DATABASE_URL"), "file:submissions.db")
	cfg.DatabaseType = strings.ToLower(firstNonEmpty(cfg.DatabaseType, os.Getenv("DATABASE_TYPE"), "sqlite"))
	if cfg.DatabaseType != "sqlite" && cfg.DatabaseType != "postgres" {
		return Config{}, fmt.Errorf("unsupported database type %q (use sqlite or postgres)", cfg.DatabaseType)
	}

	cfg.StoreDriver = strings.ToLower(firstNonEmpty(cfg.StoreDriver, os.Getenv("STORE_DRIVER"), string(contentstore.DriverGitHub)))
	cfg.FSRoot = firstNonEmpty(cfg.FSRoot, os.Getenv("FS_ROOT"))
	cfg.AllowedOrigin = firstNonEmpty(cfg.AllowedOrigin, os.Getenv("ALLOWED_ORIGIN"))
	cfg.LogFile = firstNonEmpty(cfg.LogFile, os.Getenv("LOG_FILE"))
	cfg.LogLevel = firstNonEmpty(cfg.LogLevel, os.Getenv("LOG_LEVEL"), "info")

	// Store credentials are resolved here but checked per upload, so a relay
	// without them still starts and reports the problem to callers.
	cfg.GitHubToken = firstNonEmpty(os.Getenv("GITHUB_TOKEN"), os.Getenv("GITHUB_PERSONAL_ACCESS_TOKEN"), os.Getenv("GITHUB_PAT"))
	cfg.GitHubRepo = firstNonEmpty(os.Getenv("GITHUB_REPOSITORY"), os.Getenv("GITHUB_REPO"))
	cfg.GitHubBranch = firstNonEmpty(os.Getenv("GITHUB_BRANCH"), "main")
	cfg.GitHubAPIURL = os.Getenv("GITHUB_API_URL")

	cfg.S3Bucket = os.Getenv("S3_BUCKET")
	cfg.S3Region = os.Getenv("S3_REGION")
	cfg.S3Endpoint = os.Getenv("S3_ENDPOINT")
	cfg.S3AccessKeyID = os.Getenv("S3_ACCESS_KEY_ID")
	cfg.S3SecretAccessKey = os.Getenv("S3_SECRET_ACCESS_KEY")
	if v := os.Getenv("S3_PATH_STYLE"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, errors.New("invalid S3_PATH_STYLE env variable")
		}
		cfg.S3PathStyle = b
	}

	if cfg.IPHashSalt == "" {
		cfg.IPHashSalt = os.Getenv("IP_HASH_SALT")
	}

	return cfg, nil
}

// StoreConfig converts the relay settings into a content store configuration.
func (c Config) StoreConfig() contentstore.Config {
	return contentstore.Config{
		Driver:            contentstore.Driver(c.StoreDriver),
		GitHubToken:       c.GitHubToken,
		GitHubRepo:        c.GitHubRepo,
		GitHubBranch:      c.GitHubBranch,
		GitHubBaseURL:     c.GitHubAPIURL,
		S3Bucket:          c.S3Bucket,
		S3Region:          c.S3Region,
		S3Endpoint:        c.S3Endpoint,
		S3PathStyle:       c.S3PathStyle,
		S3AccessKeyID:     c.S3AccessKeyID,
		S3SecretAccessKey: c.S3SecretAccessKey,
		FSRoot:            c.FSRoot,
	}
}

// ParseClientFlags builds the survey client's configuration.
func ParseClientFlags(args []string) (ClientConfig, error) {
	var cfg ClientConfig
	var noConfirm bool

	fs := flag.NewFlagSet("survey", flag.ContinueOnError)
	fs.StringVar(&cfg.Catalog, "catalog", "", "Joke catalog CSV (path or http(s) URL)")
	fs.StringVar(&cfg.RelayURL, "relay", "", "Upload relay base URL")
	fs.StringVar(&cfg.StateDir, "state-dir", "", "Directory for saved progress")
	fs.StringVar(&cfg.StateBackend, "state-backend", "", "Progress backend (file or sqlite)")
	fs.BoolVar(&noConfirm, "no-confirm", false, "Reset without asking for confirmation")
	fs.StringVar(&cfg.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")

	if err := fs.Parse(args); err != nil {
		return ClientConfig{}, err
	}

	cfg.Catalog = firstNonEmpty(cfg.Catalog, os.Getenv("SURVEY_CATALOG"), "jokes.csv")
	cfg.RelayURL = firstNonEmpty(cfg.RelayURL, os.Getenv("SURVEY_RELAY_URL"), "http://localhost:3318")
	cfg.StateBackend = strings.ToLower(firstNonEmpty(cfg.StateBackend, os.Getenv("SURVEY_STATE_BACKEND"), string(kvstore.DriverFile)))
	cfg.LogLevel = firstNonEmpty(cfg.LogLevel, os.Getenv("SURVEY_LOG_LEVEL"), "info")

	switch kvstore.Driver(cfg.StateBackend) {
	case kvstore.DriverFile, kvstore.DriverSQLite:
	default:
		return ClientConfig{}, fmt.Errorf("unsupported state backend %q (use file or sqlite)", cfg.StateBackend)
	}

	cfg.StateDir = firstNonEmpty(cfg.StateDir, os.Getenv("SURVEY_STATE_DIR"))
	if cfg.StateDir == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			return ClientConfig{}, fmt.Errorf("resolve state dir (use -state-dir or SURVEY_STATE_DIR): %w", err)
		}
		cfg.StateDir = filepath.Join(dir, "joke-survey")
	}

	cfg.NoConfirm = noConfirm
	if !noConfirm {
		if v := os.Getenv("SURVEY_NO_CONFIRM"); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return ClientConfig{}, errors.New("invalid SURVEY_NO_CONFIRM env variable")
			}
			cfg.NoConfirm = b
		}
	}

	return cfg, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
