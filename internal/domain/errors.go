package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyCorpus is returned when a document has no segments to rank.
	ErrEmptyCorpus = errors.New("no content to summarize")

	// ErrInvalidQuery is returned by searchers for empty or blank queries.
	ErrInvalidQuery = errors.New("query is empty")
)

// FetchError describes a failed page fetch. StatusCode is zero when the
// request never produced a response.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: unexpected status: %d", e.URL, e.StatusCode)
	}

	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
