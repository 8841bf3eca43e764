package driven

import "context"

// Fetcher retrieves raw web content and reduces it to plain text.
// It is a thin shell: the core only consumes (url, text) pairs.
type Fetcher interface {
	// Fetch downloads the page at url and extracts its text.
	Fetch(ctx context.Context, url string) (*FetchedPage, error)
}

// FetchedPage is the fetcher's output.
type FetchedPage struct {
	// URL is the requested location.
	URL string

	// Title is the page title, empty when none was found.
	Title string

	// Text is the extracted plain text.
	Text string
}
