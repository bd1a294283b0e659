// Package migrations embeds the authority database schema applied by goose.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
