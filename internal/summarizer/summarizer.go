package summarizer

import (
	"context"
	"errors"
	"fmt"

	"textinsight/internal/domain"
)

const (
	NameCosine  = "cosine"
	NameKeyword = "keyword"
	NameOpenAI  = "openai"
)

// Summarizer extracts the part of a document that is relevant to a query.
type Summarizer interface {
	Summarize(ctx context.Context, doc *domain.Document, query string) (string, error)
}

// Config selects and configures a strategy for New.
type Config struct {
	Name                 string
	LeadingContextWords  int
	TrailingContextWords int
	OpenAIAPIKey         string
}

// ErrUnknownStrategy is returned by New for unsupported strategy names.
var ErrUnknownStrategy = errors.New("unknown summarization strategy")

// New builds the strategy named in cfg.
func New(cfg Config) (Summarizer, error) {
	switch cfg.Name {
	case NameCosine:
		return NewCosineSummarizer(), nil
	case NameKeyword:
		return NewKeywordSummarizer(
			WithContextWords(cfg.LeadingContextWords, cfg.TrailingContextWords),
		), nil
	case NameOpenAI:
		return NewOpenAISummarizer(cfg.OpenAIAPIKey)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, cfg.Name)
	}
}
