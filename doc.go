// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the joke survey upload relay.

Respondents rate a catalog of jokes in the terminal client (cmd/survey),
guessing for each one whether a person or an AI wrote it. When they finish,
the client posts the response set here and the relay writes it, once, as
CSV to a content store.

# Starting the Server

	GITHUB_TOKEN=... GITHUB_REPOSITORY=owner/repo go run .

Or with flags:

	go run . -p 3318 -d file:submissions.db -store fs -fs-root ./data

# Configuration

Optional settings (flags win over the environment, which wins over .env):

  - PORT (-p): Server port (default: 3318)
  - DATABASE_URL (-d): Ledger database (default: file:submissions.db)
  - DATABASE_TYPE (-t): sqlite or postgres (default: sqlite)
  - STORE_DRIVER (-store): github, s3, fs or memory (default: github)
  - GITHUB_TOKEN | GITHUB_PERSONAL_ACCESS_TOKEN | GITHUB_PAT
  - GITHUB_REPOSITORY | GITHUB_REPO: owner/repo
  - GITHUB_BRANCH: default main
  - S3_BUCKET, S3_REGION, S3_ENDPOINT, S3_PATH_STYLE
  - FS_ROOT (-fs-root)
  - IP_HASH_SALT, ALLOWED_ORIGIN, LOG_FILE, LOG_LEVEL

Missing store credentials do not stop the relay; uploads answer 500 with
the reason until the configuration is fixed.

# Architecture

  - handlers: submission and lookup handlers
  - router: route definitions using Go 1.22+ routing
  - middleware: CORS, logging, JSON helpers
  - contentstore: github, s3, fs and memory file stores
  - db: submission ledger schema
  - metrics: prometheus collectors
  - logging: slog fanout
  - cliparse: configuration parsing
  - models, export, auth: types, CSV and ids shared with the client

See package documentation for each component.
*/
package main
