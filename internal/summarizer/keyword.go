package summarizer

import (
	"context"
	"regexp"
	"strings"

	"textinsight/internal/domain"

	"github.com/jdkato/prose/tokenize"
)

const (
	defaultLeadingContextWords  = 5
	defaultTrailingContextWords = 5

	elisionMarker = "\n[...]"
)

var (
	lineBreakRunRe = regexp.MustCompile(`[\t\n\r\f\v]+`)
	spaceRunRe     = regexp.MustCompile(` {2,}`)
	periodRunRe    = regexp.MustCompile(`\.{2,}`)
	nonAlnumRunRe  = regexp.MustCompile(`[^0-9a-z]+`)
)

// Tokenizer splits text into sentences or words.
type Tokenizer interface {
	Tokenize(text string) []string
}

// KeywordSummarizer builds an excerpt from the words around query terms.
// It is a positional heuristic with no notion of meaning: the first query
// term in a sentence pulls in the words before it, and every query term
// keeps a trailing window open, growing it faster the more terms it meets.
type KeywordSummarizer struct {
	leading   int
	trailing  int
	sentences Tokenizer
	words     Tokenizer
}

// KeywordOption configures a KeywordSummarizer.
type KeywordOption func(*KeywordSummarizer)

// WithContextWords sets how many words before the first match and after
// each match are kept. Negative values are treated as zero.
func WithContextWords(leading, trailing int) KeywordOption {
	return func(s *KeywordSummarizer) {
		s.leading = max(leading, 0)
		s.trailing = max(trailing, 0)
	}
}

// WithTokenizers replaces the Punkt sentence and Treebank word tokenizers.
func WithTokenizers(sentences, words Tokenizer) KeywordOption {
	return func(s *KeywordSummarizer) {
		if sentences != nil {
			s.sentences = sentences
		}
		if words != nil {
			s.words = words
		}
	}
}

func NewKeywordSummarizer(opts ...KeywordOption) *KeywordSummarizer {
	s := &KeywordSummarizer{
		leading:  defaultLeadingContextWords,
		trailing: defaultTrailingContextWords,
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.sentences == nil {
		s.sentences = tokenize.NewPunktSentenceTokenizer()
	}
	if s.words == nil {
		s.words = tokenize.NewTreebankWordTokenizer()
	}

	return s
}

// Summarize scans every sentence of the document text and returns the
// retained words. Each call starts from an empty excerpt.
func (s *KeywordSummarizer) Summarize(
	_ context.Context,
	doc *domain.Document,
	query string,
) (string, error) {
	if doc == nil {
		return "", nil
	}

	queryTerms := keywordQueryTerms(query)
	if len(queryTerms) == 0 {
		return "", nil
	}

	var summary strings.Builder

	for _, sentence := range s.sentences.Tokenize(prepareKeywordText(doc.Text)) {
		s.scanSentence(&summary, s.sentenceWords(sentence), queryTerms)
	}

	return summary.String(), nil
}

func (s *KeywordSummarizer) scanSentence(
	summary *strings.Builder,
	words []string,
	queryTerms map[string]struct{},
) {
	remaining := 0

	for i, word := range words {
		if _, ok := queryTerms[word]; ok {
			if remaining == 0 {
				summary.WriteString(elisionMarker)
				summary.WriteString(strings.Join(words[max(i-s.leading, 0):i], " "))
				remaining = s.trailing
			} else {
				remaining = (remaining + s.trailing) * 2
			}

			summary.WriteString(" ")
			summary.WriteString(word)

			continue
		}

		if remaining > 0 {
			remaining--
			summary.WriteString(" ")
			summary.WriteString(word)
		}
	}
}

func (s *KeywordSummarizer) sentenceWords(sentence string) []string {
	tokens := s.words.Tokenize(sentence)
	words := tokens[:0]

	for _, token := range tokens {
		if token = strings.TrimSpace(token); token != "" {
			words = append(words, token)
		}
	}

	return words
}

func prepareKeywordText(text string) string {
	text = strings.ToLower(text)
	text = lineBreakRunRe.ReplaceAllString(text, "\n")
	text = spaceRunRe.ReplaceAllString(text, "\n")

	return periodRunRe.ReplaceAllString(text, "")
}

func keywordQueryTerms(query string) map[string]struct{} {
	fields := strings.Fields(nonAlnumRunRe.ReplaceAllString(strings.ToLower(query), " "))

	queryTerms := make(map[string]struct{}, len(fields))
	for _, field := range fields {
		queryTerms[field] = struct{}{}
	}

	return queryTerms
}
