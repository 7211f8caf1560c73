package domain

import "time"

// Segment is one independently scorable unit of a Document.
type Segment struct {
	// Original is the text exactly as it appeared in the page.
	Original string
	// Normalized is Original lower-cased with every run of non-letters
	// collapsed to a single space.
	Normalized string
}

// Document is a fetched page reduced to text.
type Document struct {
	URL   string
	Title string
	// Blocks holds the text of every leaf element that carries text, in
	// document order.
	Blocks []string
	// Text is the whole page text with no structure.
	Text string
}

type SummaryResult struct {
	Summary string
	URL     string
}

type Run struct {
	ID        int64
	Query     string
	Strategy  string
	CreatedAt time.Time
	Results   []SummaryResult
}

type Watch struct {
	Query    string
	Schedule string
	ChatID   int64
}
