// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db opens the relay's submission ledger and creates its schema.

# Connecting

	conn, err := db.Open(cfg.DatabaseType, cfg.DatabaseURL)
	if err != nil {
		log.Fatal(err)
	}
	if err := db.CreateSchema(conn); err != nil {
		log.Fatal(err)
	}

Both sqlite (modernc.org/sqlite, the default) and postgres (lib/pq) are
supported. SQL is written to run unchanged on either.

# Tables

  - submission: one row per session id that has ever been submitted

A row is inserted as 'pending' before the file is written and flipped to
'stored' afterwards. The UNIQUE constraint on session_id is what prevents
two concurrent uploads for the same session from both writing; use
IsUniqueViolation to detect the losing insert on either database.
*/
package db
