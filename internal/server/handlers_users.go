package server

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/vector76/news_server/internal/auth"
	"github.com/vector76/news_server/internal/forms"
	"github.com/vector76/news_server/internal/logging"
	"github.com/vector76/news_server/internal/model"
	"github.com/vector76/news_server/internal/store"
)

// handleLogin handles GET and POST /auth/login/. A successful login
// redirects to the next parameter when it is a local path.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		ctx := newContext(r)
		ctx["form"] = &forms.LoginForm{Next: r.URL.Query().Get("next"), Errors: forms.Errors{}}
		s.render(w, r, http.StatusOK, loginTmpl, ctx)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form body", http.StatusBadRequest)
		return
	}
	form := forms.NewLoginForm(r.PostForm)
	if form.Next == "" {
		form.Next = r.URL.Query().Get("next")
	}
	if form.Validate() {
		u, err := auth.Authenticate(r.Context(), s.Store, form.Username, form.Password)
		switch {
		case errors.Is(err, auth.ErrInvalidCredentials):
			form.Errors.Add(forms.NonFieldErrors, forms.InvalidLogin)
		case err != nil:
			s.storeError(w, r, err)
			return
		default:
			if err := s.Sessions.Login(w, u); err != nil {
				s.storeError(w, r, err)
				return
			}
			logging.FromContext(r.Context()).Info("user logged in", slog.Int64("user_id", u.ID))
			http.Redirect(w, r, auth.SafeNext(form.Next, URL("news:home")), http.StatusFound)
			return
		}
	}

	ctx := newContext(r)
	ctx["form"] = form
	s.render(w, r, http.StatusOK, loginTmpl, ctx)
}

// handleLogout handles POST /auth/logout/ and shows the logged-out page.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.Sessions.Logout(w)
	if u := auth.UserFrom(r.Context()); u != nil {
		logging.FromContext(r.Context()).Info("user logged out", slog.Int64("user_id", u.ID))
	}
	// The page is rendered for an anonymous visitor.
	s.render(w, r, http.StatusOK, loggedOutTmpl, pageContext{})
}

// handleSignup handles GET and POST /auth/signup/.
func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		ctx := newContext(r)
		ctx["form"] = &forms.SignupForm{Errors: forms.Errors{}}
		s.render(w, r, http.StatusOK, signupTmpl, ctx)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form body", http.StatusBadRequest)
		return
	}
	form := forms.NewSignupForm(r.PostForm)
	if form.Validate() {
		hash, err := auth.HashPassword(form.Password1)
		if err != nil {
			s.storeError(w, r, err)
			return
		}
		u, err := s.Store.CreateUser(r.Context(), model.NewUser(form.Username, hash))
		var conflict *store.ConflictError
		switch {
		case errors.As(err, &conflict):
			form.Errors.Add("username", forms.UsernameTaken)
		case err != nil:
			s.storeError(w, r, err)
			return
		default:
			logging.FromContext(r.Context()).Info("user signed up",
				slog.Int64("user_id", u.ID),
				slog.String("username", u.Username))
			http.Redirect(w, r, URL("users:login"), http.StatusFound)
			return
		}
	}

	ctx := newContext(r)
	ctx["form"] = form
	s.render(w, r, http.StatusOK, signupTmpl, ctx)
}
