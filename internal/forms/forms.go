// Package forms validates user input for the comment, login and signup
// pages. A form collects field errors instead of failing fast so the page
// can be re-rendered with every message at once.
package forms

import (
	"net/url"
	"strings"
)

// Messages shown next to invalid fields.
const (
	Warning          = "Не ругайтесь!"
	RequiredMessage  = "Обязательное поле."
	PasswordMismatch = "Введенные пароли не совпадают."
	UsernameTaken    = "Пользователь с таким именем уже существует."
	InvalidLogin     = "Пожалуйста, введите правильные имя пользователя и пароль."
)

// NonFieldErrors is the Errors key for messages not tied to one field.
const NonFieldErrors = "__all__"

// BadWords is the default comment blocklist.
var BadWords = []string{"редиска", "негодяй"}

// Errors maps a field name to its validation messages.
type Errors map[string][]string

// Add appends msg to field.
func (e Errors) Add(field, msg string) {
	e[field] = append(e[field], msg)
}

// Get returns the first message for field, or "".
func (e Errors) Get(field string) string {
	if msgs := e[field]; len(msgs) > 0 {
		return msgs[0]
	}
	return ""
}

// Has reports whether field has the exact message msg.
func (e Errors) Has(field, msg string) bool {
	for _, m := range e[field] {
		if m == msg {
			return true
		}
	}
	return false
}

// Filter rejects text containing any blocklisted word. Matching is a
// case-insensitive substring test.
type Filter struct {
	words []string
}

// NewFilter builds a Filter; an empty list falls back to BadWords.
func NewFilter(words []string) *Filter {
	if len(words) == 0 {
		words = BadWords
	}
	lowered := make([]string, 0, len(words))
	for _, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		if w != "" {
			lowered = append(lowered, w)
		}
	}
	return &Filter{words: lowered}
}

// Words returns the active blocklist.
func (f *Filter) Words() []string {
	return append([]string(nil), f.words...)
}

// Match returns the first blocklisted word found in text.
func (f *Filter) Match(text string) (string, bool) {
	lower := strings.ToLower(text)
	for _, w := range f.words {
		if strings.Contains(lower, w) {
			return w, true
		}
	}
	return "", false
}

// CommentForm is the form posted to create or edit a comment.
type CommentForm struct {
	Text   string `json:"text"`
	Errors Errors `json:"errors,omitempty"`
}

// NewCommentForm reads the form fields from values.
func NewCommentForm(values url.Values) *CommentForm {
	return &CommentForm{Text: values.Get("text"), Errors: Errors{}}
}

// Validate fills Errors and reports whether the form is valid.
func (f *CommentForm) Validate(filter *Filter) bool {
	if f.Errors == nil {
		f.Errors = Errors{}
	}
	if strings.TrimSpace(f.Text) == "" {
		f.Errors.Add("text", RequiredMessage)
		return false
	}
	if _, bad := filter.Match(f.Text); bad {
		f.Errors.Add("text", Warning)
		return false
	}
	return true
}

// Valid reports whether the last Validate found no errors.
func (f *CommentForm) Valid() bool {
	return len(f.Errors) == 0
}
