package view

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"time"

	"team11_backend/internal/util"
)

//go:embed templates/*.html static/*
var files embed.FS

var funcs = template.FuncMap{
	"formatTime": func(t time.Time) string {
		return t.Local().Format(util.TimeFormat)
	},
	"formatScore": func(score *float64) string {
		if score == nil {
			return "-"
		}
		return fmt.Sprintf("%.1f", *score)
	},
	"add": func(a, b int) int {
		return a + b
	},
}

// Templates parses every page template; pages share the "header" and
// "footer" blocks of base.html.
func Templates() (*template.Template, error) {
	return template.New("").Funcs(funcs).ParseFS(files, "templates/*.html")
}

func MustTemplates() *template.Template {
	return template.Must(Templates())
}

// Static serves the stylesheet and the recorder script.
func Static() http.FileSystem {
	sub, err := fs.Sub(files, "static")
	if err != nil {
		panic(err)
	}
	return http.FS(sub)
}
