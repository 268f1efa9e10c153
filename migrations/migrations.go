// Package migrations embeds the SQL migration files for goose. They are
// named YYYYMMDDHHMMSS_description.sql and applied in order on startup.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
