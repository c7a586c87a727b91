// internal/app/features/coordinator/templates.go
package coordinator

import (
	"embed"

	"github.com/dalemusser/waffle/pantry/templates"
)

//go:embed templates/*.gohtml
var FS embed.FS

func init() {
	templates.Register(templates.Set{
		Name:     "coordinator",
		FS:       FS,
		Patterns: []string{"templates/*.gohtml"},
	})
}
