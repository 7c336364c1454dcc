package server

import (
	"strings"
	"testing"
)

func TestRenderMarkdown(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"heading", "# Заголовок", "<h1>Заголовок</h1>"},
		{"emphasis", "*важно*", "<em>важно</em>"},
		{"plain text", "Текст", "Текст"},
		{"hard wrap", "первая\nвторая", "<br"},
		{"linkify", "см. https://example.com", `href="https://example.com"`},
		{"strikethrough", "~~старое~~", "<del>старое</del>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := string(renderMarkdown(tt.in))
			if !strings.Contains(out, tt.want) {
				t.Errorf("renderMarkdown(%q) = %q, want it to contain %q", tt.in, out, tt.want)
			}
		})
	}
}

func TestRenderMarkdownDropsRawHTML(t *testing.T) {
	out := string(renderMarkdown("<script>alert(1)</script>"))
	if strings.Contains(out, "<script>") {
		t.Errorf("expected <script> to be suppressed, got: %s", out)
	}
}
