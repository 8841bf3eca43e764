// Package web fetches pages over HTTP and reduces them to plain text.
package web

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/inkwell-labs/inkwell-cli/internal/core/ports/driven"
)

// Ensure Fetcher implements the interface.
var _ driven.Fetcher = (*Fetcher)(nil)

// Default configuration values.
const (
	DefaultTimeout   = 30 * time.Second
	DefaultUserAgent = "inkwell/1.0"

	// maxBodySize caps the downloaded page at 10 MiB.
	maxBodySize = 10 << 20
)

// Config holds configuration for the web fetcher.
type Config struct {
	// Timeout is the request timeout (default: 30s).
	Timeout time.Duration

	// UserAgent is sent with every request.
	UserAgent string
}

// Fetcher downloads pages and extracts their text content.
type Fetcher struct {
	client    *http.Client
	userAgent string
}

// NewFetcher creates a new web fetcher.
func NewFetcher(cfg Config) *Fetcher {
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}

	return &Fetcher{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		userAgent: cfg.UserAgent,
	}
}

// Fetch downloads the page at url and extracts its text.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*driven.FetchedPage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: status %d", url, resp.StatusCode)
	}

	doc, err := html.Parse(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", url, err)
	}

	title, text := extract(doc)
	return &driven.FetchedPage{
		URL:   url,
		Title: title,
		Text:  text,
	}, nil
}

// extract walks the parsed document collecting the title and the visible
// text. Script and style subtrees are skipped.
func extract(doc *html.Node) (title, text string) {
	var sb strings.Builder

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.ElementNode:
			switch n.Data {
			case "script", "style", "noscript":
				return
			case "title":
				if title == "" && n.FirstChild != nil {
					title = strings.TrimSpace(n.FirstChild.Data)
				}
				return
			case "p", "br", "div", "li", "h1", "h2", "h3", "h4", "h5", "h6":
				sb.WriteByte('\n')
			}
		case html.TextNode:
			sb.WriteString(n.Data)
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return title, collapseWhitespace(sb.String())
}

// collapseWhitespace squeezes runs of blank space while keeping paragraph
// breaks as single newlines.
func collapseWhitespace(s string) string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}
