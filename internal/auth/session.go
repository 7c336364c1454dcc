// Package auth handles passwords, session cookies and the request's
// current user.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/vector76/news_server/internal/model"
)

// CookieName is the session cookie.
const CookieName = "sessionid"

// DefaultTTL is the session lifetime when none is configured.
const DefaultTTL = 14 * 24 * time.Hour

// UserLookup resolves a session's user ID.
type UserLookup interface {
	GetUser(ctx context.Context, id int64) (model.User, error)
}

// Sessions issues and verifies HS256-signed session tokens carried in a
// cookie.
type Sessions struct {
	secret []byte
	ttl    time.Duration
	secure bool
	now    func() time.Time
}

// NewSessions returns a Sessions signing with secret. ttl <= 0 uses
// DefaultTTL. secure sets the cookie's Secure flag.
func NewSessions(secret string, ttl time.Duration, secure bool) (*Sessions, error) {
	if secret == "" {
		return nil, errors.New("session secret must not be empty")
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Sessions{secret: []byte(secret), ttl: ttl, secure: secure, now: time.Now}, nil
}

// Issue returns a signed token for u and its expiry.
func (s *Sessions) Issue(u model.User) (string, time.Time, error) {
	now := s.now()
	exp := now.Add(s.ttl)
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatInt(u.ID, 10),
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("signing session: %w", err)
	}
	return token, exp, nil
}

// Parse verifies token and returns the user ID it was issued for.
func (s *Sessions) Parse(token string) (int64, error) {
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil {
		return 0, fmt.Errorf("parsing session: %w", err)
	}
	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid session subject %q", claims.Subject)
	}
	return id, nil
}

// Login sets the session cookie for u.
func (s *Sessions) Login(w http.ResponseWriter, u model.User) error {
	token, exp, err := s.Issue(u)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		Expires:  exp,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Logout clears the session cookie.
func (s *Sessions) Logout(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Middleware resolves the session cookie to a user and stores it in the
// request context. A missing, invalid or stale cookie leaves the request
// anonymous.
func (s *Sessions) Middleware(users UserLookup, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c, err := r.Cookie(CookieName)
			if err != nil || c.Value == "" {
				next.ServeHTTP(w, r)
				return
			}
			id, err := s.Parse(c.Value)
			if err != nil {
				log.Debug("ignoring session cookie", slog.String("error", err.Error()))
				next.ServeHTTP(w, r)
				return
			}
			u, err := users.GetUser(r.Context(), id)
			if err != nil {
				log.Debug("session user not found", slog.Int64("user_id", id))
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), &u)))
		})
	}
}

type contextKey int

const userContextKey contextKey = iota

// WithUser returns ctx carrying u as the current user.
func WithUser(ctx context.Context, u *model.User) context.Context {
	return context.WithValue(ctx, userContextKey, u)
}

// UserFrom returns the current user, or nil for anonymous requests.
func UserFrom(ctx context.Context) *model.User {
	u, _ := ctx.Value(userContextKey).(*model.User)
	return u
}

// RequireLogin redirects anonymous requests to loginURL with a next
// parameter pointing back at the requested URL.
func RequireLogin(loginURL string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if UserFrom(r.Context()) == nil {
				http.Redirect(w, r, LoginRedirect(loginURL, r.URL.RequestURI()), http.StatusFound)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// LoginRedirect builds loginURL?next=target. Slashes in target are left
// unescaped so the parameter stays readable.
func LoginRedirect(loginURL, target string) string {
	next := strings.ReplaceAll(url.QueryEscape(target), "%2F", "/")
	return loginURL + "?next=" + next
}

// SafeNext returns next if it is a local absolute path, else fallback.
func SafeNext(next, fallback string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.Contains(next, "\\") {
		return fallback
	}
	u, err := url.Parse(next)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return fallback
	}
	return next
}
