// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/danielhkuo/joke-survey/models"
	"github.com/danielhkuo/joke-survey/randomize"
)

var ErrNoItems = errors.New("no valid jokes found in catalog")

// Fetch reads raw catalog text from a local path or an http(s) URL.
func Fetch(ctx context.Context, source string, client *http.Client) (string, error) {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		if client == nil {
			client = http.DefaultClient
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
		if err != nil {
			return "", fmt.Errorf("build catalog request: %w", err)
		}
		resp, err := client.Do(req)
		if err != nil {
			return "", fmt.Errorf("fetch catalog: %w", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return "", fmt.Errorf("failed to load %s: %s", source, resp.Status)
		}
		b, err := io.ReadAll(resp.Body)
		if err != nil {
			return "", fmt.Errorf("read catalog: %w", err)
		}
		return string(b), nil
	}

	b, err := os.ReadFile(source)
	if err != nil {
		return "", fmt.Errorf("read catalog %s: %w", source, err)
	}
	return string(b), nil
}

// Load fetches, parses, and filters the catalog, then shuffles row order.
// The row shuffle is independent of the presentation order chosen at start.
func Load(ctx context.Context, source string, client *http.Client) ([]models.Item, error) {
	content, err := Fetch(ctx, source, client)
	if err != nil {
		return nil, err
	}
	items := Usable(Parse(content))
	if len(items) == 0 {
		return nil, ErrNoItems
	}
	return randomize.Shuffle(items), nil
}
