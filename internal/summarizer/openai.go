package summarizer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"textinsight/internal/domain"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/responses"
)

const (
	baseMaxOutputTokens  int64 = 512
	limitMaxOutputTokens int64 = 2048
	maxInputRunes              = 24000

	systemPrompt = `Extract from the web page the passage that best answers the query.

Rules:
- Quote the page; do not invent facts.
- Keep at most three sentences.
- Keep critical context (dates, numbers, names).
- Output plain text on one line in the same language as the page.`
)

// OpenAISummarizer asks OpenAI's Responses API for the passage of a page
// that answers the query.
type OpenAISummarizer struct {
	client openai.Client
}

// NewOpenAISummarizer builds a new summarizer instance.
func NewOpenAISummarizer(apiKey string) (*OpenAISummarizer, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("API key is empty")
	}

	return &OpenAISummarizer{
		client: openai.NewClient(option.WithAPIKey(apiKey)),
	}, nil
}

func (s *OpenAISummarizer) Summarize(
	ctx context.Context,
	doc *domain.Document,
	query string,
) (string, error) {
	if doc == nil {
		return "", domain.ErrEmptyCorpus
	}

	text := strings.TrimSpace(strings.Join(doc.Blocks, "\n"))
	if text == "" {
		return "", domain.ErrEmptyCorpus
	}

	maxOutputTokens := baseMaxOutputTokens
	for {
		resp, err := s.client.Responses.New(ctx, responses.ResponseNewParams{
			Model:           openai.ChatModelGPT5Mini2025_08_07,
			ServiceTier:     responses.ResponseNewParamsServiceTierFlex,
			MaxOutputTokens: openai.Int(maxOutputTokens),
			Reasoning: responses.ReasoningParam{
				Effort: openai.ReasoningEffortLow,
			},
			Instructions: openai.String(systemPrompt),
			Input: responses.ResponseNewParamsInputUnion{
				OfString: openai.String(buildUserPrompt(doc.URL, query, text)),
			},
		})
		if err != nil {
			return "", fmt.Errorf("do request: %w", err)
		}

		if resp.Status == "incomplete" {
			if resp.IncompleteDetails.Reason == "max_output_tokens" && maxOutputTokens < limitMaxOutputTokens {
				maxOutputTokens = min(maxOutputTokens*2, limitMaxOutputTokens)
				continue
			}
			return "", fmt.Errorf(
				"response is incomplete (reason = %s, maxOutputTokens = %d)",
				resp.IncompleteDetails.Reason,
				maxOutputTokens,
			)
		}

		summary := strings.TrimSpace(resp.OutputText())
		if summary == "" {
			return "", fmt.Errorf("output text is missing (status = %s)", resp.Status)
		}
		return summary, nil
	}
}

func buildUserPrompt(sourceURL, query, text string) string {
	if runes := []rune(text); len(runes) > maxInputRunes {
		text = string(runes[:maxInputRunes])
	}

	var b strings.Builder
	b.WriteString("Query:\n")
	b.WriteString(strings.TrimSpace(query))
	b.WriteString("\n")
	if sourceURL = strings.TrimSpace(sourceURL); sourceURL != "" {
		b.WriteString("Source:\n")
		b.WriteString(sourceURL)
		b.WriteString("\n")
	}
	b.WriteString("Content:\n")
	b.WriteString(text)

	return b.String()
}
