// Package webassets embeds the Mission Control dashboard.
package webassets

import "embed"

// Files contains the embedded dashboard pages.
//
//go:embed *.html
var Files embed.FS
