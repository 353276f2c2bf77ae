// Package migrations embeds the schema of the local identity provider database.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
