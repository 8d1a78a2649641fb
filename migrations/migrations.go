// Package migrations embeds the Postgres schema so every binary (and
// foodzonectl migrate) applies the same files regardless of working directory.
package migrations

import "embed"

// Dir is the directory inside FS holding the migration files.
const Dir = "sql"

//go:embed sql/*.sql
var FS embed.FS
