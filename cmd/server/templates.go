package main

import (
	"html/template"
	"path/filepath"

	"github.com/rs/zerolog/log"
)

// LoadTemplates parses the display page templates
func LoadTemplates() *template.Template {
	tmpl := template.New("")
	files, err := filepath.Glob("templates/*.html")
	if err != nil {
		log.Fatal().Err(err).Msg("bad template pattern")
	}
	if len(files) == 0 {
		log.Fatal().Msg("no templates found in ./templates")
	}
	for _, f := range files {
		tmpl = template.Must(tmpl.ParseFiles(f))
	}
	return tmpl
}
