// Package templates embeds the HTML templates for the web UI.
package templates

import (
	"embed"
	"html/template"

	"github.com/dustin/go-humanize"
)

//go:embed *.tmpl
var files embed.FS

// New parses the embedded template set. Pages are addressed by their
// {{define}} name, e.g. "login" or "home".
func New() (*template.Template, error) {
	funcs := template.FuncMap{
		"kes": func(v float64) string {
			return humanize.Commaf(v)
		},
	}
	return template.New("").Funcs(funcs).ParseFS(files, "*.tmpl")
}
