package handlers

import (
	"embed"
	"html/template"
)

//go:embed templates/*.html
var templateFS embed.FS

// PageTemplate parses the embedded page templates.
func PageTemplate() *template.Template {
	return template.Must(template.ParseFS(templateFS, "templates/*.html"))
}
