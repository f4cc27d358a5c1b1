// Package migrations embeds the event-store schema for each supported driver.
package migrations

import "embed"

// SQLite holds the migrations applied to SQLite event stores.
//
//go:embed sqlite/*.sql
var SQLite embed.FS

// Postgres holds the migrations applied to PostgreSQL event stores.
//
//go:embed postgres/*.sql
var Postgres embed.FS
