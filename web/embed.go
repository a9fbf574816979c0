// Package web embeds the dashboard page served at the root route.
package web

import "embed"

//go:embed index.html
var StaticFS embed.FS
