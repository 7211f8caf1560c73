package document

import (
	"regexp"
	"strings"

	"textinsight/internal/domain"
)

var nonLetterRunRe = regexp.MustCompile(`[^a-z]+`)

// Normalize lower-cases text and collapses every run of non-letter
// characters into a single space.
func Normalize(text string) string {
	return nonLetterRunRe.ReplaceAllString(strings.ToLower(text), " ")
}

// Segments returns one Segment per block of doc, in document order.
func Segments(doc *domain.Document) []domain.Segment {
	if doc == nil {
		return nil
	}

	segments := make([]domain.Segment, 0, len(doc.Blocks))
	for _, block := range doc.Blocks {
		segments = append(segments, domain.Segment{
			Original:   block,
			Normalized: Normalize(block),
		})
	}

	return segments
}
