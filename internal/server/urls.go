package server

import "fmt"

// routes maps route names to path patterns; %d is the object id.
var routes = map[string]string{
	"news:home":    "/",
	"news:detail":  "/news/%d/",
	"news:edit":    "/edit_comment/%d/",
	"news:delete":  "/delete_comment/%d/",
	"users:login":  "/auth/login/",
	"users:logout": "/auth/logout/",
	"users:signup": "/auth/signup/",
}

// URL reverses a route name to a path. It panics on an unknown name, which
// is a programming error.
func URL(name string, args ...any) string {
	pattern, ok := routes[name]
	if !ok {
		panic(fmt.Sprintf("unknown route %q", name))
	}
	if len(args) == 0 {
		return pattern
	}
	return fmt.Sprintf(pattern, args...)
}

// commentsURL points at the comment list on the detail page.
func commentsURL(newsID int64) string {
	return URL("news:detail", newsID) + "#comments"
}
