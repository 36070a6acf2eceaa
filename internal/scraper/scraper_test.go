package scraper

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ipsv/ipsv/internal/httpclient"
)

const goodPage = `<!DOCTYPE html>
<html>
<head><title>Client Area</title></head>
<body>
	<div class="downloads"></div>
	<script id="download_form" type="text/template">
		<form action="https://www.example.com/clients/download" method="post">
			<input type="radio" id="version_latest" name="version" value="latest">
			<label for="version_latest"> 4.1.19.1 </label>
			<button type="submit">Download</button>
		</form>
	</script>
</body>
</html>`

func TestParseLicensePage(t *testing.T) {
	v, req, err := ParseLicensePage(goodPage)
	if err != nil {
		t.Fatalf("ParseLicensePage failed: %v", err)
	}

	if got := v.String(); got != "4.1.19.1" {
		t.Errorf("version = %q, want %q", got, "4.1.19.1")
	}
	if req.Method != http.MethodPost {
		t.Errorf("method = %q, want POST", req.Method)
	}
	if req.URL != "https://www.example.com/clients/download" {
		t.Errorf("url = %q", req.URL)
	}
	if got := req.Params.Get("version"); got != "latest" {
		t.Errorf("version param = %q, want %q", got, "latest")
	}
}

func TestParseLicensePageStructureErrors(t *testing.T) {
	tests := []struct {
		name string
		page string
	}{
		{
			name: "no download_form script",
			page: `<html><body><script id="other"></script></body></html>`,
		},
		{
			name: "script holds no form",
			page: `<html><body><script id="download_form">just text</script></body></html>`,
		},
		{
			name: "form without version label",
			page: `<html><body><script id="download_form">
				<form action="https://example.com/dl"><label for="other">x</label></form>
			</script></body></html>`,
		},
		{
			name: "form without action",
			page: `<html><body><script id="download_form">
				<form><label for="version_latest">4.1.19.1</label></form>
			</script></body></html>`,
		},
		{
			name: "label is not a version",
			page: `<html><body><script id="download_form">
				<form action="https://example.com/dl"><label for="version_latest"></label></form>
			</script></body></html>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := ParseLicensePage(tt.page)
			if !errors.Is(err, ErrScrape) {
				t.Errorf("error = %v, want ErrScrape", err)
			}
		})
	}
}

func TestFetchLatest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(goodPage))
	}))
	defer srv.Close()

	session, err := httpclient.New()
	if err != nil {
		t.Fatalf("httpclient.New failed: %v", err)
	}

	v, req, err := FetchLatest(context.Background(), session, srv.URL)
	if err != nil {
		t.Fatalf("FetchLatest failed: %v", err)
	}
	if got := v.String(); got != "4.1.19.1" {
		t.Errorf("version = %q, want %q", got, "4.1.19.1")
	}
	if req.URL == "" {
		t.Error("request URL is empty")
	}
}

func TestFetchLatestHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "denied", http.StatusUnauthorized)
	}))
	defer srv.Close()

	session, err := httpclient.New()
	if err != nil {
		t.Fatalf("httpclient.New failed: %v", err)
	}

	_, _, err = FetchLatest(context.Background(), session, srv.URL)
	var httpErr *httpclient.HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("error = %v, want *httpclient.HTTPError", err)
	}
	if httpErr.StatusCode != http.StatusUnauthorized {
		t.Errorf("StatusCode = %d, want %d", httpErr.StatusCode, http.StatusUnauthorized)
	}
}
