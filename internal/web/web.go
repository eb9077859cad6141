package web

import (
	"embed"
	"fmt"
	"html/template"
	"strings"
	"time"
)

//go:embed templates/*.html
var files embed.FS

// FuncMap holds the helpers the page templates use
func FuncMap() template.FuncMap {
	return template.FuncMap{
		"date":     formatDate,
		"truncate": truncate,
		"hasLevel": func(level, want string) bool { return strings.EqualFold(level, want) },
	}
}

// Templates parses every embedded page template into one set
func Templates() (*template.Template, error) {
	t, err := template.New("").Funcs(FuncMap()).ParseFS(files, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	return t, nil
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("Jan 2, 2006")
}

func truncate(n int, s string) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return strings.TrimSpace(string(r[:n])) + "…"
}
