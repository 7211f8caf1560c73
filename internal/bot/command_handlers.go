package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"textinsight/internal/domain"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const historyLimit = 10

const welcomeText = `🤖 *Welcome to TextInsight\!*

Ask me anything and I will find a few pages about it and quote the passage of each one that answers you best\.

– Send a query as plain text or with /ask
– See recent queries with /history
– Show this message with /help`

const emptyQueryText = "✖️ Query is empty\\. Usage: `/ask your question`"

func (b *Bot) handleMessage(ctx context.Context, message *tgbotapi.Message) error {
	chatID := message.Chat.ID
	command, args := parseCommand(message.Text)

	switch command {
	case "/start", "/help":
		return b.handleHelpCommand(ctx, chatID)
	case "/menu":
		return b.handleMenuCommand(ctx, chatID)
	case "/history":
		return b.whileTyping(ctx, chatID, "history", func() error {
			return b.handleHistoryCommand(ctx, chatID)
		})
	case "/ask", "":
		return b.whileTyping(ctx, chatID, "ask", func() error {
			return b.handleAskCommand(ctx, chatID, args)
		})
	default:
		return b.sendMessageWithKeyboard(ctx, chatID, "✖️ Unknown command\\. Try /help\\.", b.menuKeyboard)
	}
}

// parseCommand splits "/cmd@bot_name args" into "/cmd" and "args". Text that
// is not a command comes back whole as args with an empty command.
func parseCommand(text string) (string, string) {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return "", text
	}

	command, args, _ := strings.Cut(text, " ")
	command, _, _ = strings.Cut(command, "@")

	return strings.ToLower(command), strings.TrimSpace(args)
}

func (b *Bot) handleHelpCommand(ctx context.Context, chatID int64) error {
	return b.sendMessageWithKeyboard(ctx, chatID, welcomeText, b.menuKeyboard)
}

func (b *Bot) handleMenuCommand(ctx context.Context, chatID int64) error {
	return b.sendMessageWithKeyboard(ctx, chatID, "❔ *Choose an option:*", b.menuKeyboard)
}

func (b *Bot) handleAskCommand(ctx context.Context, chatID int64, query string) error {
	query = strings.TrimSpace(query)
	if query == "" {
		return b.sendMessageWithKeyboard(ctx, chatID, emptyQueryText, b.returnKeyboard)
	}

	results, err := b.runner.Run(ctx, query)
	if err != nil {
		errs := []error{fmt.Errorf("run query: %w", err)}

		sendErr := b.sendMessageWithKeyboard(ctx, chatID, failureText(err), b.returnKeyboard)
		if sendErr != nil {
			errs = append(errs, fmt.Errorf("send message with keyboard: %w", sendErr))
		}

		return errors.Join(errs...)
	}

	if _, err = b.store.SaveRun(ctx, domain.Run{
		Query:     query,
		Strategy:  b.strategy,
		CreatedAt: time.Now(),
		Results:   results,
	}); err != nil {
		b.log.ErrorContext(ctx, "Failed to save run",
			"error", err,
			"chatID", chatID,
			"query", query)
	}

	return b.SendResults(ctx, chatID, query, results)
}

func (b *Bot) handleHistoryCommand(ctx context.Context, chatID int64) error {
	runs, err := b.store.RecentRuns(ctx, historyLimit)
	if err != nil {
		errs := []error{fmt.Errorf("get recent runs: %w", err)}

		sendErr := b.sendMessageWithKeyboard(ctx, chatID, "❌ Failed\\.", b.returnKeyboard)
		if sendErr != nil {
			errs = append(errs, fmt.Errorf("send message with keyboard: %w", sendErr))
		}

		return errors.Join(errs...)
	}

	if len(runs) == 0 {
		return b.sendMessageWithKeyboard(ctx, chatID, "✖️ History is empty\\.", b.returnKeyboard)
	}

	if err = b.sendMessageWithKeyboard(ctx, chatID, formatHistory(runs), b.returnKeyboard); err != nil {
		return fmt.Errorf("send message with keyboard: %w", err)
	}

	return nil
}

func failureText(err error) string {
	var fetchErr *domain.FetchError

	switch {
	case errors.Is(err, domain.ErrInvalidQuery):
		return emptyQueryText
	case errors.As(err, &fetchErr):
		return "❌ Failed to load one of the found pages\\."
	case errors.Is(err, domain.ErrEmptyCorpus):
		return "❌ One of the found pages has no text\\."
	default:
		return "❌ Failed\\."
	}
}
