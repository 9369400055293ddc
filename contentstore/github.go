// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package contentstore

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/go-github/v66/github"
)

// GitHub stores files in a repository branch through the contents API.
type GitHub struct {
	client *github.Client
	owner  string
	repo   string
	branch string
}

func NewGitHub(cfg Config) (*GitHub, error) {
	if cfg.GitHubToken == "" {
		return nil, &ConfigError{Message: "Server is not configured for GitHub uploads."}
	}
	owner, repo, ok := strings.Cut(cfg.GitHubRepo, "/")
	if !ok {
		return nil, &ConfigError{Message: "Server repository configuration is invalid."}
	}
	if owner == "" || repo == "" {
		return nil, &ConfigError{Message: "Unable to resolve GitHub repository owner or name."}
	}
	branch := cfg.GitHubBranch
	if branch == "" {
		branch = "main"
	}

	client := github.NewClient(cfg.HTTPClient).WithAuthToken(cfg.GitHubToken)
	if cfg.GitHubBaseURL != "" {
		base, err := url.Parse(strings.TrimRight(cfg.GitHubBaseURL, "/") + "/")
		if err != nil {
			return nil, &ConfigError{Message: "GitHub API URL is invalid."}
		}
		client.BaseURL = base
	}

	return &GitHub{client: client, owner: owner, repo: repo, branch: branch}, nil
}

func (g *GitHub) Driver() Driver { return DriverGitHub }

func (g *GitHub) Exists(ctx context.Context, path string) (bool, error) {
	_, _, resp, err := g.client.Repositories.GetContents(ctx, g.owner, g.repo, path,
		&github.RepositoryContentGetOptions{Ref: g.branch})
	if err == nil {
		return true, nil
	}
	if resp != nil && resp.StatusCode == http.StatusNotFound {
		return false, nil
	}
	return false, g.upstream(resp, err)
}

func (g *GitHub) Create(ctx context.Context, path string, content []byte, message string) (Info, error) {
	out, resp, err := g.client.Repositories.CreateFile(ctx, g.owner, g.repo, path,
		&github.RepositoryContentFileOptions{
			Message: github.String(message),
			Content: content,
			Branch:  github.String(g.branch),
		})
	if err != nil {
		// Creating over an existing file without its sha is a validation error.
		var ghErr *github.ErrorResponse
		if resp != nil && resp.StatusCode == http.StatusUnprocessableEntity &&
			errors.As(err, &ghErr) && strings.Contains(ghErr.Message, "sha") {
			return Info{}, ErrExists
		}
		return Info{}, g.upstream(resp, err)
	}

	info := Info{Path: path}
	if out != nil {
		info.URL = out.Content.GetHTMLURL()
		if info.URL == "" {
			info.URL = out.Commit.GetHTMLURL()
		}
	}
	return info, nil
}

func (g *GitHub) upstream(resp *github.Response, err error) error {
	ue := &UpstreamError{Driver: DriverGitHub, Err: err}
	if resp != nil {
		ue.StatusCode = resp.StatusCode
	}
	var ghErr *github.ErrorResponse
	if errors.As(err, &ghErr) {
		ue.Message = ghErr.Message
	}
	return ue
}
