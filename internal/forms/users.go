package forms

import (
	"net/url"
	"strings"
)

// LoginForm is the form posted to the login page.
type LoginForm struct {
	Username string `json:"username"`
	Password string `json:"-"`
	Next     string `json:"next,omitempty"`
	Errors   Errors `json:"errors,omitempty"`
}

// NewLoginForm reads the form fields from values.
func NewLoginForm(values url.Values) *LoginForm {
	return &LoginForm{
		Username: strings.TrimSpace(values.Get("username")),
		Password: values.Get("password"),
		Next:     values.Get("next"),
		Errors:   Errors{},
	}
}

// Validate checks required fields.
func (f *LoginForm) Validate() bool {
	if f.Errors == nil {
		f.Errors = Errors{}
	}
	if f.Username == "" {
		f.Errors.Add("username", RequiredMessage)
	}
	if f.Password == "" {
		f.Errors.Add("password", RequiredMessage)
	}
	return len(f.Errors) == 0
}

// SignupForm is the form posted to the signup page.
type SignupForm struct {
	Username  string `json:"username"`
	Password1 string `json:"-"`
	Password2 string `json:"-"`
	Errors    Errors `json:"errors,omitempty"`
}

// NewSignupForm reads the form fields from values.
func NewSignupForm(values url.Values) *SignupForm {
	return &SignupForm{
		Username:  strings.TrimSpace(values.Get("username")),
		Password1: values.Get("password1"),
		Password2: values.Get("password2"),
		Errors:    Errors{},
	}
}

// Validate checks required fields and the password confirmation.
// Username uniqueness is checked by the store.
func (f *SignupForm) Validate() bool {
	if f.Errors == nil {
		f.Errors = Errors{}
	}
	if f.Username == "" {
		f.Errors.Add("username", RequiredMessage)
	}
	if f.Password1 == "" {
		f.Errors.Add("password1", RequiredMessage)
	}
	if f.Password2 == "" {
		f.Errors.Add("password2", RequiredMessage)
	}
	if f.Password1 != "" && f.Password2 != "" && f.Password1 != f.Password2 {
		f.Errors.Add("password2", PasswordMismatch)
	}
	return len(f.Errors) == 0
}
