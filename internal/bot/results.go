package bot

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"textinsight/internal/domain"
	"textinsight/internal/markdown"
)

const (
	telegramMessageMaxLength = 4096

	maxSummaryRunes = 700
	maxQueryRunes   = 200
	maxURLLength    = 1024
	maxTitleRunes   = 60

	historyTimeLayout = "2006-01-02 15:04"
)

// SendResults delivers the results of a query to a chat, split into as many
// messages as Telegram's length limit requires.
func (b *Bot) SendResults(
	ctx context.Context,
	chatID int64,
	query string,
	results []domain.SummaryResult,
) error {
	var errs []error

	for _, message := range formatResults(query, results) {
		if err := b.sendMessageWithKeyboard(ctx, chatID, message, b.returnKeyboard); err != nil {
			errs = append(errs, fmt.Errorf("send message with keyboard: %w", err))
		}
	}

	return errors.Join(errs...)
}

func formatResults(query string, results []domain.SummaryResult) []string {
	escapedQuery := markdown.EscapeV2(markdown.Truncate(query, maxQueryRunes))
	header := fmt.Sprintf("🔎 *%s*\n\n", escapedQuery)

	if len(results) == 0 {
		return []string{header + "✖️ Nothing is found\\."}
	}

	continueHeader := fmt.Sprintf("🔎 *%s \\(continue\\)*\n\n", escapedQuery)

	var messages []string
	var currentMessage strings.Builder

	currentMessage.WriteString(header)
	headerLength := currentMessage.Len()

	for i, result := range results {
		entry := formatResult(i+1, result)

		if currentMessage.Len() > headerLength &&
			currentMessage.Len()+len(entry) > telegramMessageMaxLength {
			messages = append(messages, currentMessage.String())
			currentMessage.Reset()
			currentMessage.WriteString(continueHeader)
			headerLength = currentMessage.Len()
		}

		currentMessage.WriteString(entry)
	}

	if currentMessage.Len() > headerLength {
		messages = append(messages, currentMessage.String())
	}

	return messages
}

func formatResult(position int, result domain.SummaryResult) string {
	summary := strings.Join(strings.Fields(result.Summary), " ")
	if summary == "" {
		summary = "_no matching passage_"
	} else {
		summary = markdown.EscapeV2(markdown.Truncate(summary, maxSummaryRunes))
	}

	pageURL := strings.TrimSpace(result.URL)
	if len(pageURL) > maxURLLength {
		return fmt.Sprintf("%d\\. %s\n%s\n\n",
			position,
			markdown.EscapeV2(markdown.Truncate(pageURL, maxQueryRunes)),
			summary)
	}

	return fmt.Sprintf("%d\\. [%s](%s)\n%s\n\n",
		position,
		markdown.EscapeV2(markdown.Truncate(linkTitle(pageURL), maxTitleRunes)),
		markdown.EscapeLinkURL(pageURL),
		summary)
}

func linkTitle(pageURL string) string {
	parsed, err := url.Parse(pageURL)
	if err != nil || parsed.Host == "" {
		return pageURL
	}

	return strings.TrimPrefix(parsed.Host, "www.") + parsed.EscapedPath()
}

func formatHistory(runs []domain.Run) string {
	var message strings.Builder
	message.WriteString(fmt.Sprintf("📜 *Found %d recent queries:*\n\n", len(runs)))

	for i, run := range runs {
		message.WriteString(fmt.Sprintf("%d\\. %s\n   _%s, %s, %d results_\n",
			i+1,
			markdown.EscapeV2(markdown.Truncate(run.Query, maxQueryRunes)),
			markdown.EscapeV2(run.CreatedAt.UTC().Format(historyTimeLayout)),
			markdown.EscapeV2(run.Strategy),
			len(run.Results),
		))
	}

	return message.String()
}
