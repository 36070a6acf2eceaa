// Package scraper extracts the latest IPS release from the client-area
// licensing page.
//
// The page embeds a download form as the text of a script template:
//
//	<script id="download_form" type="text/template">
//	    <form action="https://.../download">
//	        <label for="version_latest">4.1.19.1</label>
//	        ...
//	    </form>
//	</script>
//
// The script text is itself HTML and is parsed a second time to reach the
// form. This is a contract with an external site, not with our own code: a
// failure here means the page structure changed, and is reported as
// ErrScrape rather than treated as a bug.
package scraper

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/net/html"

	"github.com/ipsv/ipsv/internal/version"
)

// ErrScrape is returned when the licensing page does not match the
// expected structure.
var ErrScrape = errors.New("license page did not match the expected structure")

// Request describes a deferred download request discovered on the
// licensing page: the form action plus the parameters to post to it.
type Request struct {
	Method string
	URL    string
	Params url.Values
}

// Getter fetches a page body. *httpclient.Client satisfies it; tests
// substitute their own.
type Getter interface {
	GetString(ctx context.Context, url string) (string, error)
}

// FetchLatest loads the licensing page and returns the latest release
// version together with the request that downloads it.
//
// HTTP failures (including non-2xx statuses) propagate from the session;
// structural failures are reported as ErrScrape. FetchLatest never mutates
// shared state — the caller merges the result into its catalog.
func FetchLatest(ctx context.Context, session Getter, licenseURL string) (version.Version, Request, error) {
	page, err := session.GetString(ctx, licenseURL)
	if err != nil {
		return version.Version{}, Request{}, err
	}
	return ParseLicensePage(page)
}

// ParseLicensePage extracts the latest version and download request from
// the licensing page HTML. Split out from FetchLatest so the fragile part
// is testable without a network.
func ParseLicensePage(page string) (version.Version, Request, error) {
	doc, err := html.Parse(strings.NewReader(page))
	if err != nil {
		return version.Version{}, Request{}, fmt.Errorf("%w: %v", ErrScrape, err)
	}

	script := findNode(doc, func(n *html.Node) bool {
		return n.Data == "script" && attr(n, "id") == "download_form"
	})
	if script == nil {
		return version.Version{}, Request{}, fmt.Errorf("%w: no download_form script", ErrScrape)
	}

	// The script text is a second HTML document holding the form.
	frag, err := html.Parse(strings.NewReader(textContent(script)))
	if err != nil {
		return version.Version{}, Request{}, fmt.Errorf("%w: %v", ErrScrape, err)
	}

	form := findNode(frag, func(n *html.Node) bool { return n.Data == "form" })
	if form == nil {
		return version.Version{}, Request{}, fmt.Errorf("%w: no form in download_form template", ErrScrape)
	}

	label := findNode(form, func(n *html.Node) bool {
		return n.Data == "label" && attr(n, "for") == "version_latest"
	})
	if label == nil {
		return version.Version{}, Request{}, fmt.Errorf("%w: no version_latest label", ErrScrape)
	}

	action := attr(form, "action")
	if action == "" {
		return version.Version{}, Request{}, fmt.Errorf("%w: form has no action", ErrScrape)
	}

	v, err := version.Parse(strings.TrimSpace(textContent(label)))
	if err != nil {
		return version.Version{}, Request{}, fmt.Errorf("%w: unparseable version label: %v", ErrScrape, err)
	}

	req := Request{
		Method: http.MethodPost,
		URL:    action,
		Params: url.Values{"version": {"latest"}},
	}
	return v, req, nil
}

// findNode walks the tree depth-first and returns the first element node
// matching pred.
func findNode(n *html.Node, pred func(*html.Node) bool) *html.Node {
	if n.Type == html.ElementNode && pred(n) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findNode(c, pred); found != nil {
			return found
		}
	}
	return nil
}

// attr returns the value of the named attribute, or "".
func attr(n *html.Node, name string) string {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val
		}
	}
	return ""
}

// textContent concatenates all text nodes under n.
func textContent(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}
