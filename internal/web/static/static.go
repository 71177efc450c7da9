// Package static embeds the stylesheet and other fixed assets.
package static

import "embed"

//go:embed app.css
var Files embed.FS
