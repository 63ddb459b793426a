// Package opengraph fetches a web page and extracts its link-preview
// metadata: Open Graph properties, Twitter card tags, and the plain
// <title> / description fallbacks.
package opengraph

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html"
)

// Metadata is the preview information scraped from a page.
type Metadata struct {
	URL         string `json:"url"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Image       string `json:"image,omitempty"`
	SiteName    string `json:"siteName,omitempty"`
	Type        string `json:"type,omitempty"`
	TwitterCard string `json:"twitterCard,omitempty"`
	TwitterSite string `json:"twitterSite,omitempty"`
}

// Empty reports whether nothing beyond the URL was found.
func (m Metadata) Empty() bool {
	return m.Title == "" && m.Description == "" && m.Image == "" && m.SiteName == ""
}

const (
	defaultTimeout = 15 * time.Second
	maxPageBytes   = 2 << 20
	userAgent      = "savebox-preview/1.0 (+https://github.com/sakif/savebox)"
)

// Scraper fetches pages over HTTP.
type Scraper struct {
	httpClient *http.Client
}

// NewScraper creates a Scraper. A nil client gets a 15s timeout and only
// connects to public addresses; a caller-supplied client is used as is.
func NewScraper(client *http.Client) *Scraper {
	if client == nil {
		client = publicClient(defaultTimeout)
	}
	return &Scraper{httpClient: client}
}

// Fetch downloads rawURL and parses its metadata. Only http and https
// URLs are accepted; a non-2xx response or a non-HTML body is an error.
func (s *Scraper) Fetch(ctx context.Context, rawURL string) (Metadata, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return Metadata{}, fmt.Errorf("opengraph: invalid url %q", rawURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return Metadata{}, fmt.Errorf("opengraph: building request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return Metadata{}, fmt.Errorf("opengraph: GET %s: %w", u, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Metadata{}, fmt.Errorf("opengraph: GET %s returned %d", u, resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "" && !strings.Contains(ct, "html") {
		return Metadata{}, fmt.Errorf("opengraph: %s is %s, not HTML", u, ct)
	}

	meta, err := Parse(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return Metadata{}, err
	}
	if meta.URL == "" {
		meta.URL = resp.Request.URL.String()
	}
	meta.Image = resolve(resp.Request.URL, meta.Image)
	return meta, nil
}

// Parse extracts Metadata from an HTML document. og:* wins over twitter:*,
// which wins over <title> and <meta name="description">.
func Parse(r io.Reader) (Metadata, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return Metadata{}, fmt.Errorf("opengraph: parsing html: %w", err)
	}

	tags := map[string]string{}
	var title string
	walk(doc, tags, &title)

	m := Metadata{
		URL:         tags["og:url"],
		Title:       first(tags["og:title"], tags["twitter:title"], title),
		Description: first(tags["og:description"], tags["twitter:description"], tags["description"]),
		Image:       first(tags["og:image"], tags["og:image:url"], tags["twitter:image"], tags["twitter:image:src"]),
		SiteName:    tags["og:site_name"],
		Type:        tags["og:type"],
		TwitterCard: tags["twitter:card"],
		TwitterSite: tags["twitter:site"],
	}
	if m.Empty() && m.URL == "" {
		return m, errNoMetadata
	}
	return m, nil
}

var errNoMetadata = errors.New("opengraph: page has no metadata")

// walk collects <meta> tags keyed by property/name (first occurrence
// wins) and the first <title> text.
func walk(n *html.Node, tags map[string]string, title *string) {
	if n.Type == html.ElementNode {
		switch n.Data {
		case "meta":
			var key, content string
			for _, a := range n.Attr {
				switch strings.ToLower(a.Key) {
				case "property", "name":
					if key == "" {
						key = strings.ToLower(strings.TrimSpace(a.Val))
					}
				case "content":
					content = strings.TrimSpace(a.Val)
				}
			}
			if key != "" && content != "" {
				if _, seen := tags[key]; !seen {
					tags[key] = content
				}
			}
		case "title":
			if *title == "" && n.FirstChild != nil && n.FirstChild.Type == html.TextNode {
				*title = strings.Join(strings.Fields(n.FirstChild.Data), " ")
			}
		case "body":
			// Metadata lives in <head>; nothing worth walking below here.
			return
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, tags, title)
	}
}

func first(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// resolve turns a relative image reference into an absolute URL.
func resolve(base *url.URL, ref string) string {
	if ref == "" || base == nil {
		return ref
	}
	u, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return base.ResolveReference(u).String()
}
