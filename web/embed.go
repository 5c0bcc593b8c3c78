// Package web embeds the game's HTML templates and stylesheet.
package web

import "embed"

// TemplatesFS holds layouts, partials and pages under templates/.
//
//go:embed all:templates
var TemplatesFS embed.FS

// StaticFS holds files served under /static/.
//
//go:embed all:static
var StaticFS embed.FS
