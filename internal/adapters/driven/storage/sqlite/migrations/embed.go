// Package migrations embeds the versioned SQL files that create the
// documents and chunks schema.
package migrations

import "embed"

// FS holds every migration file, embedded at compile time.
//
//go:embed *.sql
var FS embed.FS
