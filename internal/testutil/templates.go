package testutil

import (
	"bytes"
	"html/template"
	"io/fs"
	"testing"

	"github.com/dalemusser/freightdesk/internal/app/resources"
)

// ParseTemplates parses the shared layout together with each feature FS
// (all "templates/*.gohtml") into one set, the way the pages are composed
// at runtime.
func ParseTemplates(t *testing.T, feature ...fs.FS) *template.Template {
	t.Helper()
	tmpl, err := template.New("root").ParseFS(resources.FS, "templates/*.gohtml")
	if err != nil {
		t.Fatalf("parse shared templates: %v", err)
	}
	for _, f := range feature {
		if tmpl, err = tmpl.ParseFS(f, "templates/*.gohtml"); err != nil {
			t.Fatalf("parse feature templates: %v", err)
		}
	}
	return tmpl
}

// ExecuteTemplate renders name with data and returns the output.
func ExecuteTemplate(t *testing.T, tmpl *template.Template, name string, data any) string {
	t.Helper()
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		t.Fatalf("execute %s: %v", name, err)
	}
	return buf.String()
}
