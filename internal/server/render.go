package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/vector76/news_server/internal/auth"
	"github.com/vector76/news_server/internal/logging"
	"github.com/vector76/news_server/internal/store"
)

// pageContext is the data handed to a template, or written as JSON when the
// client asks for it. Keys mirror the template variables.
type pageContext map[string]any

// newContext starts a context with the current user.
func newContext(r *http.Request) pageContext {
	ctx := pageContext{}
	if u := auth.UserFrom(r.Context()); u != nil {
		ctx["user"] = u.Public()
	}
	return ctx
}

// wantsJSON reports whether the client prefers JSON over HTML.
func wantsJSON(r *http.Request) bool {
	accept := r.Header.Get("Accept")
	return strings.Contains(accept, "application/json") && !strings.Contains(accept, "text/html")
}

// jsonError writes a JSON error response with the given status code.
func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

// render writes ctx through tmpl, or as JSON for JSON clients.
func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, tmpl *template.Template, ctx pageContext) {
	if wantsJSON(r) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(ctx)
		return
	}

	ctx["theme"] = themeFrom(r)
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "base", ctx); err != nil {
		logging.FromContext(r.Context()).Error("template error", slog.String("error", err.Error()))
		http.Error(w, "template error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

// themeFrom returns the theme chosen by the toggle button, or "".
func themeFrom(r *http.Request) string {
	if c, err := r.Cookie("theme"); err == nil && (c.Value == "dark" || c.Value == "light") {
		return c.Value
	}
	return ""
}

func (s *Server) notFound(w http.ResponseWriter, r *http.Request) {
	if wantsJSON(r) {
		jsonError(w, "not found", http.StatusNotFound)
		return
	}
	s.render(w, r, http.StatusNotFound, notFoundTmpl, newContext(r))
}

// storeError maps a repository error to a response: NotFoundError is a 404,
// anything else is logged and becomes a 500.
func (s *Server) storeError(w http.ResponseWriter, r *http.Request, err error) {
	var nf *store.NotFoundError
	if errors.As(err, &nf) {
		s.notFound(w, r)
		return
	}
	logging.FromContext(r.Context()).Error("store error", slog.String("error", err.Error()))
	if wantsJSON(r) {
		jsonError(w, "internal error", http.StatusInternalServerError)
		return
	}
	http.Error(w, "internal error", http.StatusInternalServerError)
}

// idParam parses the {id} URL parameter. Invalid ids are reported as
// missing objects.
func idParam(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
