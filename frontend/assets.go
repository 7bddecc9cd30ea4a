// Package frontend embeds the built web UI served by Wails.
package frontend

import "embed"

//go:embed all:dist
var Assets embed.FS
