// Package session moves access tokens between the server and its clients.
package session

import (
	"net/http"
	"strings"
	"time"
)

// CookieName is the cookie carrying the access token.
const CookieName = "accessToken"

const bearerScheme = "bearer"

// Options are the cookie attributes shared by Attach and Clear
type Options struct {
	Domain string
	Path   string
	// MaxAge bounds client-side retention. Zero makes a browser-session cookie.
	MaxAge time.Duration
	Secure bool
	// HTTPOnly hides the cookie from scripts. Disabling it exposes the token to XSS.
	HTTPOnly bool
	SameSite http.SameSite
}

// DefaultOptions returns script-inaccessible, secure, lax cookies on "/"
func DefaultOptions() Options {
	return Options{
		Path:     "/",
		Secure:   true,
		HTTPOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}

// Transport attaches, extracts and clears the access token
type Transport struct {
	opts Options
}

// NewTransport returns a Transport using opts
func NewTransport(opts Options) *Transport {
	if opts.Path == "" {
		opts.Path = "/"
	}
	if opts.SameSite == 0 {
		opts.SameSite = http.SameSiteLaxMode
	}
	return &Transport{opts: opts}
}

// Options returns the cookie attributes in use
func (t *Transport) Options() Options {
	return t.opts
}

// Attach sets the access token cookie on the response
func (t *Transport) Attach(w http.ResponseWriter, token string) {
	c := t.cookie(token)
	if t.opts.MaxAge > 0 {
		c.MaxAge = int(t.opts.MaxAge / time.Second)
		c.Expires = time.Now().Add(t.opts.MaxAge)
	}
	http.SetCookie(w, c)
}

// Clear expires the access token cookie using the same attributes as Attach
func (t *Transport) Clear(w http.ResponseWriter) {
	c := t.cookie("")
	c.MaxAge = -1
	c.Expires = time.Unix(0, 0)
	http.SetCookie(w, c)
}

// Extract returns the token from the cookie, falling back to an
// "Authorization: Bearer" header. ok is false when neither carries one.
func (t *Transport) Extract(r *http.Request) (token string, ok bool) {
	if c, err := r.Cookie(CookieName); err == nil && c.Value != "" {
		return c.Value, true
	}
	return bearerToken(r.Header.Get("Authorization"))
}

func (t *Transport) cookie(value string) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     t.opts.Path,
		Domain:   t.opts.Domain,
		Secure:   t.opts.Secure,
		HttpOnly: t.opts.HTTPOnly,
		SameSite: t.opts.SameSite,
	}
}

func bearerToken(header string) (string, bool) {
	scheme, value, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, bearerScheme) {
		return "", false
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return "", false
	}
	return value, true
}
