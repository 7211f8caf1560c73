package summarizer

import (
	"math"
	"slices"
	"strings"

	"textinsight/internal/domain"
)

const minTermLength = 2

// Vectorize maps normalized segment texts and a normalized query into one
// term-frequency space whose vocabulary comes from the corpus alone. Each
// vector is scaled to unit length; query terms outside the vocabulary are
// ignored.
func Vectorize(corpus []string, query string) ([][]float64, []float64, error) {
	if len(corpus) == 0 {
		return nil, nil, domain.ErrEmptyCorpus
	}

	corpusTerms := make([][]string, len(corpus))
	seen := make(map[string]struct{})

	for i, text := range corpus {
		corpusTerms[i] = terms(text)
		for _, term := range corpusTerms[i] {
			seen[term] = struct{}{}
		}
	}

	vocabulary := make([]string, 0, len(seen))
	for term := range seen {
		vocabulary = append(vocabulary, term)
	}
	slices.Sort(vocabulary)

	index := make(map[string]int, len(vocabulary))
	for i, term := range vocabulary {
		index[term] = i
	}

	segmentVectors := make([][]float64, len(corpus))
	for i := range corpusTerms {
		segmentVectors[i] = termFrequencies(corpusTerms[i], index)
	}

	return segmentVectors, termFrequencies(terms(query), index), nil
}

func terms(text string) []string {
	fields := strings.Fields(text)
	out := fields[:0]

	for _, field := range fields {
		if len(field) >= minTermLength {
			out = append(out, field)
		}
	}

	return out
}

func termFrequencies(termList []string, index map[string]int) []float64 {
	vec := make([]float64, len(index))
	for _, term := range termList {
		if i, ok := index[term]; ok {
			vec[i]++
		}
	}

	var norm float64
	for _, v := range vec {
		norm += v * v
	}

	if norm == 0 {
		return vec
	}

	norm = math.Sqrt(norm)
	for i := range vec {
		vec[i] /= norm
	}

	return vec
}

func dot(a, b []float64) float64 {
	var sum float64
	for i := range min(len(a), len(b)) {
		sum += a[i] * b[i]
	}

	return sum
}
