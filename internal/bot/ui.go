package bot

import (
	"context"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const (
	defaultTypingInterval = 4 * time.Second
	maxTypingFailures     = 3
)

// sendTyping reports whether the typing status reached the chat.
func (b *Bot) sendTyping(ctx context.Context, chatID int64) bool {
	action := tgbotapi.NewChatAction(chatID, tgbotapi.ChatTyping)
	if _, err := b.api.Request(action); err != nil {
		b.log.WarnContext(ctx, "Failed to send chat action",
			"error", err,
			"chatID", chatID)

		return false
	}

	return true
}

// whileTyping shows the typing status in the chat until fn returns. After
// maxTypingFailures failed actions in a row the status is given up on.
func (b *Bot) whileTyping(ctx context.Context, chatID int64, task string, fn func() error) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		failures := 0
		if !b.sendTyping(ctx, chatID) {
			failures++
		}

		t := time.NewTicker(b.typingInterval)
		defer t.Stop()

		for failures < maxTypingFailures {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				if b.sendTyping(ctx, chatID) {
					failures = 0
				} else {
					failures++
				}
			}
		}

		b.log.WarnContext(ctx, "Stopped sending chat actions",
			"chatID", chatID,
			"task", task)
	}()

	started := time.Now()
	err := fn()

	b.log.DebugContext(ctx, "Task is done",
		"chatID", chatID,
		"task", task,
		"duration", time.Since(started))

	return err
}
