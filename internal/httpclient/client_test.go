package httpclient

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
)

func TestGetString(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("method = %s, want GET", r.Method)
		}
		w.Write([]byte("hello"))
	}))
	defer srv.Close()

	c, err := New()
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	body, err := c.GetString(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("GetString failed: %v", err)
	}
	if body != "hello" {
		t.Errorf("body = %q, want %q", body, "hello")
	}
}

func TestGetStringHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer srv.Close()

	c, err := New()
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	_, err = c.GetString(context.Background(), srv.URL)
	var httpErr *HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("error = %v, want *HTTPError", err)
	}
	if httpErr.StatusCode != http.StatusForbidden {
		t.Errorf("StatusCode = %d, want %d", httpErr.StatusCode, http.StatusForbidden)
	}
}

func TestCookiesPersistAcrossCalls(t *testing.T) {
	var gotCookie string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/login":
			http.SetCookie(w, &http.Cookie{Name: "session", Value: "abc123"})
		case "/download":
			if c, err := r.Cookie("session"); err == nil {
				gotCookie = c.Value
			}
		}
	}))
	defer srv.Close()

	c, err := New()
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	ctx := context.Background()
	if _, err := c.GetString(ctx, srv.URL+"/login"); err != nil {
		t.Fatalf("login request failed: %v", err)
	}

	resp, err := c.Open(ctx, http.MethodPost, srv.URL+"/download", url.Values{"version": {"latest"}})
	if err != nil {
		t.Fatalf("download request failed: %v", err)
	}
	resp.Body.Close()

	if gotCookie != "abc123" {
		t.Errorf("session cookie = %q, want %q", gotCookie, "abc123")
	}
}

func TestOpenSendsFormParams(t *testing.T) {
	var gotVersion, gotContentType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.ParseForm()
		gotVersion = r.PostFormValue("version")
		gotContentType = r.Header.Get("Content-Type")
	}))
	defer srv.Close()

	c, err := New()
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	resp, err := c.Open(context.Background(), http.MethodPost, srv.URL, url.Values{"version": {"latest"}})
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	resp.Body.Close()

	if gotVersion != "latest" {
		t.Errorf("version param = %q, want %q", gotVersion, "latest")
	}
	if gotContentType != "application/x-www-form-urlencoded" {
		t.Errorf("Content-Type = %q", gotContentType)
	}
}
