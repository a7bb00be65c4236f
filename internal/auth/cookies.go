package auth

import (
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	stateCookieName    = "foundation.state"
	redirectCookieName = "foundation.redirect_to"
	verifierCookieName = "foundation.pkce"
)

// Cookies writes and reads the session cookie.
type Cookies struct {
	Name   string
	Secure bool
}

// Set writes the session cookie. HttpOnly and SameSite=Lax always.
func (c Cookies) Set(w http.ResponseWriter, token string, expires time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     c.Name,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Clear expires the session cookie.
func (c Cookies) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     c.Name,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Token extracts the session token from the cookie, falling back to an
// "Authorization: Bearer" header for API clients.
func (c Cookies) Token(r *http.Request) string {
	if cookie, err := r.Cookie(c.Name); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	header := r.Header.Get("Authorization")
	if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}

// SetState stores the SSO state nonce for ten minutes.
func (c Cookies) SetState(w http.ResponseWriter, state string) {
	c.setShortLived(w, stateCookieName, state)
}

// TakeState returns and clears the SSO state nonce.
func (c Cookies) TakeState(w http.ResponseWriter, r *http.Request) string {
	return c.take(w, r, stateCookieName)
}

// SetRedirect remembers where to send the user after SSO.
func (c Cookies) SetRedirect(w http.ResponseWriter, to string) {
	c.setShortLived(w, redirectCookieName, to)
}

// TakeRedirect returns and clears the post-SSO destination.
func (c Cookies) TakeRedirect(w http.ResponseWriter, r *http.Request) string {
	return c.take(w, r, redirectCookieName)
}

// SetVerifier stores the PKCE code verifier for the SSO round trip.
func (c Cookies) SetVerifier(w http.ResponseWriter, verifier string) {
	c.setShortLived(w, verifierCookieName, verifier)
}

// TakeVerifier returns and clears the PKCE code verifier.
func (c Cookies) TakeVerifier(w http.ResponseWriter, r *http.Request) string {
	return c.take(w, r, verifierCookieName)
}

func (c Cookies) setShortLived(w http.ResponseWriter, name, value string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Expires:  time.Now().Add(10 * time.Minute),
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (c Cookies) take(w http.ResponseWriter, r *http.Request, name string) string {
	cookie, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	return cookie.Value
}

// SafeRedirect returns to when it is a local absolute path, otherwise fallback.
// Protocol-relative and absolute URLs are rejected, as is anything carrying
// control characters, which browsers strip before resolving.
func SafeRedirect(to, fallback string) string {
	if to == "" || !strings.HasPrefix(to, "/") || strings.HasPrefix(to, "//") || strings.HasPrefix(to, "/\\") {
		return fallback
	}
	if strings.ContainsFunc(to, func(r rune) bool { return r < 0x20 || r == 0x7f }) {
		return fallback
	}
	u, err := url.Parse(to)
	if err != nil || u.Scheme != "" || u.Host != "" || u.Opaque != "" {
		return fallback
	}
	return to
}
