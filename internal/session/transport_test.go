package session

import (
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func responseCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	return cookies[0]
}

func TestAttachExtract_RoundTrip(t *testing.T) {
	transport := NewTransport(Options{Domain: "shop.example.com", Secure: true, HTTPOnly: true, MaxAge: time.Hour})

	rec := httptest.NewRecorder()
	transport.Attach(rec, "header.payload.signature")
	cookie := responseCookie(t, rec)

	assert.Equal(t, CookieName, cookie.Name)
	assert.True(t, cookie.HttpOnly)
	assert.True(t, cookie.Secure)
	assert.Equal(t, "shop.example.com", cookie.Domain)
	assert.Equal(t, "/", cookie.Path)
	assert.Equal(t, 3600, cookie.MaxAge)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: cookie.Name, Value: cookie.Value})

	got, ok := transport.Extract(req)
	require.True(t, ok)
	assert.Equal(t, "header.payload.signature", got)
}

func TestAttach_SessionCookieWithoutMaxAge(t *testing.T) {
	transport := NewTransport(DefaultOptions())

	rec := httptest.NewRecorder()
	transport.Attach(rec, "tok")
	cookie := responseCookie(t, rec)

	assert.Equal(t, 0, cookie.MaxAge)
	assert.True(t, cookie.Expires.IsZero())
}

func TestClear_MatchesAttachAttributes(t *testing.T) {
	transport := NewTransport(Options{Domain: "shop.example.com", Secure: true, HTTPOnly: true, MaxAge: time.Hour})

	setRec := httptest.NewRecorder()
	transport.Attach(setRec, "tok")
	set := responseCookie(t, setRec)

	clearRec := httptest.NewRecorder()
	transport.Clear(clearRec)
	cleared := responseCookie(t, clearRec)

	assert.Equal(t, set.Name, cleared.Name)
	assert.Equal(t, set.Domain, cleared.Domain)
	assert.Equal(t, set.Path, cleared.Path)
	assert.Equal(t, set.Secure, cleared.Secure)
	assert.Equal(t, set.HttpOnly, cleared.HttpOnly)
	assert.Equal(t, set.SameSite, cleared.SameSite)
	assert.Empty(t, cleared.Value)
	assert.Less(t, cleared.MaxAge, 0)
}

func TestExtract(t *testing.T) {
	transport := NewTransport(DefaultOptions())

	tests := []struct {
		name      string
		cookie    string
		header    string
		wantToken string
		wantOK    bool
	}{
		{name: "cookie only", cookie: "from-cookie", wantToken: "from-cookie", wantOK: true},
		{name: "header only", header: "Bearer from-header", wantToken: "from-header", wantOK: true},
		{name: "cookie wins over header", cookie: "from-cookie", header: "Bearer from-header", wantToken: "from-cookie", wantOK: true},
		{name: "lowercase scheme", header: "bearer abc", wantToken: "abc", wantOK: true},
		{name: "empty cookie falls back to header", cookie: "", header: "Bearer abc", wantToken: "abc", wantOK: true},
		{name: "basic scheme", header: "Basic dXNlcjpwdw==", wantOK: false},
		{name: "bearer without token", header: "Bearer ", wantOK: false},
		{name: "raw token without scheme", header: "abc", wantOK: false},
		{name: "nothing", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: CookieName, Value: tt.cookie})
			}
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}

			got, ok := transport.Extract(req)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantToken, got)
		})
	}
}

func TestClear_BrowserDropsCookie(t *testing.T) {
	transport := NewTransport(Options{HTTPOnly: true, MaxAge: time.Hour})

	var seen string
	var seenOK bool
	mux := http.NewServeMux()
	mux.HandleFunc("/attach", func(w http.ResponseWriter, r *http.Request) {
		transport.Attach(w, "tok-123")
	})
	mux.HandleFunc("/clear", func(w http.ResponseWriter, r *http.Request) {
		transport.Clear(w)
	})
	mux.HandleFunc("/extract", func(w http.ResponseWriter, r *http.Request) {
		seen, seenOK = transport.Extract(r)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	client := &http.Client{Jar: jar}

	get := func(path string) {
		resp, err := client.Get(srv.URL + path)
		require.NoError(t, err)
		_, _ = io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}

	get("/attach")
	get("/extract")
	assert.True(t, seenOK)
	assert.Equal(t, "tok-123", seen)

	get("/clear")
	get("/extract")
	assert.False(t, seenOK)
	assert.Empty(t, seen)
}
