package fixer

import (
	"bytes"
	"embed"
	"text/template"

	"github.com/webmend/webmend/internal/domain"
	"github.com/webmend/webmend/internal/errors"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

//nolint:gochecknoglobals // Parsed once at startup, read-only afterward
var promptTemplates = template.Must(template.ParseFS(templateFS, "templates/*.tmpl"))

// buildFixPrompt renders the repair prompt for a fix request.
func buildFixPrompt(req *domain.FixRequest) (string, error) {
	return render("fix.tmpl", req)
}

// generateData carries the fields of the initial-generation prompt.
type generateData struct {
	Task string
}

// buildGeneratePrompt renders the prompt that produces the first script for a task.
func buildGeneratePrompt(task string) (string, error) {
	return render("generate.tmpl", generateData{Task: task})
}

func render(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := promptTemplates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", errors.Wrapf(err, "rendering prompt %s", name)
	}
	return buf.String(), nil
}
