// Package migrations embeds the SQL schema files applied at startup.
// Embedding keeps schema setup independent of the working directory.
package migrations

import "embed"

// FS is the embedded migrations filesystem.
// Contains all .sql files in this directory, applied in filename order.
//
//go:embed *.sql
var FS embed.FS
