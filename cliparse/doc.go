// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration
for both the relay and the terminal client.

# Relay

	cliparse.LoadEnvFile(".env")
	cfg, err := cliparse.ParseFlags(os.Args[1:])

CLI flags take precedence over environment variables, which take
precedence over .env:

	-p          PORT            Server port (default: 3318)
	-d          DATABASE_URL    Ledger database (default: file:submissions.db)
	-t          DATABASE_TYPE   sqlite | postgres
	-store      STORE_DRIVER    github | s3 | fs | memory (default: github)
	-fs-root    FS_ROOT         Root directory for the fs store
	-origin     ALLOWED_ORIGIN  CORS origin (default: reflect the caller)
	-log-file   LOG_FILE        JSON log file
	-log-level  LOG_LEVEL       debug | info | warn | error
	-ip-salt    IP_HASH_SALT    Salt for ledger IP hashes

GitHub and S3 settings come only from the environment:

	GITHUB_TOKEN | GITHUB_PERSONAL_ACCESS_TOKEN | GITHUB_PAT
	GITHUB_REPOSITORY | GITHUB_REPO, GITHUB_BRANCH, GITHUB_API_URL
	S3_BUCKET, S3_REGION, S3_ENDPOINT, S3_PATH_STYLE,
	S3_ACCESS_KEY_ID, S3_SECRET_ACCESS_KEY

Missing store credentials are not a parse error. Config.StoreConfig hands
them to contentstore.Open, which reports what is missing.

# Client

	cfg, err := cliparse.ParseClientFlags(os.Args[1:])

	-catalog        SURVEY_CATALOG        CSV path or URL (default: jokes.csv)
	-relay          SURVEY_RELAY_URL      Relay base URL
	-state-dir      SURVEY_STATE_DIR      Where progress and identity live
	-state-backend  SURVEY_STATE_BACKEND  file | sqlite
	-no-confirm     SURVEY_NO_CONFIRM     Reset without asking
	-log-level      SURVEY_LOG_LEVEL
*/
package cliparse
