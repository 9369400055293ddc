// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package contentstore

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Driver identifies a concrete content store.
type Driver string

const (
	DriverGitHub Driver = "github" // repository contents API
	DriverS3     Driver = "s3"     // S3 / MinIO compatible bucket
	DriverFS     Driver = "fs"     // local directory
	DriverMemory Driver = "memory" // tests
)

// Title is the driver's name as shown to people.
func (d Driver) Title() string {
	switch d {
	case DriverGitHub:
		return "GitHub"
	case DriverS3:
		return "S3"
	case DriverFS:
		return "local storage"
	case DriverMemory:
		return "memory"
	default:
		return string(d)
	}
}

var (
	// ErrExists is returned by Create when the path is already taken.
	ErrExists = errors.New("content already exists")
	// ErrNotConfigured marks stores that cannot be used until the relay's
	// environment is fixed.
	ErrNotConfigured = errors.New("content store not configured")
)

// Info describes a stored file.
type Info struct {
	Path string
	URL  string // browsable location, empty when the driver has none
}

// Store is a create-only file store. Files are never overwritten.
type Store interface {
	Exists(ctx context.Context, path string) (bool, error)
	Create(ctx context.Context, path string, content []byte, message string) (Info, error)
	Driver() Driver
}

// Config selects and configures a driver.
type Config struct {
	Driver Driver

	GitHubToken   string
	GitHubRepo    string // owner/repo
	GitHubBranch  string
	GitHubBaseURL string // API root override, e.g. for GitHub Enterprise

	S3Bucket          string
	S3Region          string
	S3Endpoint        string
	S3PathStyle       bool
	S3AccessKeyID     string
	S3SecretAccessKey string

	FSRoot string

	HTTPClient *http.Client
}

// ConfigError explains why a store could not be configured. The message
// is safe to show to clients.
type ConfigError struct {
	Message string
}

func (e *ConfigError) Error() string { return e.Message }

func (e *ConfigError) Is(target error) bool { return target == ErrNotConfigured }

// UpstreamError is a failure reported by the backing service.
type UpstreamError struct {
	Driver     Driver
	StatusCode int    // 0 when the request never got a response
	Message    string // service-provided detail, if any
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: status %d: %v", e.Driver, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Driver, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// Open constructs the store named by cfg.Driver. An empty driver means github.
// Missing settings produce a *ConfigError.
func Open(ctx context.Context, cfg Config) (Store, error) {
	switch Driver(strings.ToLower(string(cfg.Driver))) {
	case DriverGitHub, "":
		return NewGitHub(cfg)
	case DriverS3:
		return NewS3(ctx, cfg)
	case DriverFS:
		return NewFS(cfg.FSRoot)
	case DriverMemory:
		return NewMemory(), nil
	default:
		return nil, &ConfigError{Message: fmt.Sprintf("Unknown store driver %q.", cfg.Driver)}
	}
}

// Unavailable is a Store that fails every call with err. The relay uses it
// to keep serving, and reporting the problem, when Open fails at startup.
func Unavailable(driver Driver, err error) Store {
	return unavailable{driver: driver, err: err}
}

type unavailable struct {
	driver Driver
	err    error
}

func (u unavailable) Exists(context.Context, string) (bool, error) { return false, u.err }

func (u unavailable) Create(context.Context, string, []byte, string) (Info, error) {
	return Info{}, u.err
}

func (u unavailable) Driver() Driver { return u.driver }
