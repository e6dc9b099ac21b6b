// Package web embeds the gallery page and its assets.
package web

import (
	"embed"
	"html/template"
	"io/fs"
)

//go:embed templates/*.html static/*
var files embed.FS

func Templates() (*template.Template, error) {
	return template.ParseFS(files, "templates/*.html")
}

func Static() (fs.FS, error) {
	return fs.Sub(files, "static")
}
