package domain

// SearchResult is one ranked hit returned by the web search client.
type SearchResult struct {
	Title string `json:"title"`
	Link  string `json:"link"`
}

// CrawledPage is the outcome of fetching one evidence URL. Err carries the
// failure text when the fetch or extraction failed; Content is empty then.
type CrawledPage struct {
	Content string `json:"content"`
	Err     string `json:"error,omitempty"`
}
