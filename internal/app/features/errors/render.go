// internal/app/features/errors/render.go
package errors

import (
	"net/http"

	"github.com/dalemusser/freightdesk/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/templates"
)

// RenderForbidden shows a 403 page with msg. An empty backURL resolves a
// safe back link from the request.
func RenderForbidden(w http.ResponseWriter, r *http.Request, msg, backURL string) {
	render(w, r, http.StatusForbidden, "Access denied", msg, backURL)
}

// RenderNotFound shows a 404 page with msg.
func RenderNotFound(w http.ResponseWriter, r *http.Request, msg, backURL string) {
	render(w, r, http.StatusNotFound, "Not found", msg, backURL)
}

// RenderBadRequest shows a 400 page with msg.
func RenderBadRequest(w http.ResponseWriter, r *http.Request, msg, backURL string) {
	render(w, r, http.StatusBadRequest, "Something's not right", msg, backURL)
}

// RenderServerError shows a 500 page with msg.
func RenderServerError(w http.ResponseWriter, r *http.Request, msg, backURL string) {
	render(w, r, http.StatusInternalServerError, "Something went wrong", msg, backURL)
}

func render(w http.ResponseWriter, r *http.Request, status int, heading, msg, backURL string) {
	base := viewdata.NewBaseVM(r, heading, "/")
	if backURL != "" {
		base.BackURL = backURL
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	templates.Render(w, r, "error_page", pageData{
		BaseVM:  base,
		Heading: heading,
		Message: msg,
	})
}
