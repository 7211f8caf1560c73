package summarizer

import (
	"context"
	"fmt"

	"textinsight/internal/document"
	"textinsight/internal/domain"
)

// CosineSummarizer returns the segment whose term-frequency vector is most
// similar to the query's. It holds no state and is safe to reuse.
type CosineSummarizer struct{}

func NewCosineSummarizer() *CosineSummarizer {
	return &CosineSummarizer{}
}

// Summarize returns the original text of the best segment. Ties go to the
// earliest segment.
func (s *CosineSummarizer) Summarize(
	_ context.Context,
	doc *domain.Document,
	query string,
) (string, error) {
	segments := document.Segments(doc)

	corpus := make([]string, len(segments))
	for i, segment := range segments {
		corpus[i] = segment.Normalized
	}

	segmentVectors, queryVector, err := Vectorize(corpus, document.Normalize(query))
	if err != nil {
		return "", fmt.Errorf("vectorize: %w", err)
	}

	// Both sides are unit length, so the dot product ranks like cosine
	// similarity.
	best := 0
	bestScore := dot(queryVector, segmentVectors[0])

	for i := 1; i < len(segmentVectors); i++ {
		if score := dot(queryVector, segmentVectors[i]); score > bestScore {
			best = i
			bestScore = score
		}
	}

	return segments[best].Original, nil
}
