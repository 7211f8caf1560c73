package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"textinsight/internal/domain"
	"textinsight/internal/ratelimiter"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testChatID int64 = 100

type stubAPI struct {
	mu       sync.Mutex
	sent     []tgbotapi.MessageConfig
	requests []tgbotapi.Chattable
	updates  chan tgbotapi.Update
	sendErr  error
	reqErr   error
}

func (a *stubAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if m, ok := c.(tgbotapi.MessageConfig); ok {
		a.sent = append(a.sent, m)
	}

	return tgbotapi.Message{}, a.sendErr
}

func (a *stubAPI) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.requests = append(a.requests, c)
	if a.reqErr != nil {
		return nil, a.reqErr
	}

	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (a *stubAPI) GetUpdatesChan(tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return a.updates
}

func (a *stubAPI) StopReceivingUpdates() {}

func (a *stubAPI) requestCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()

	return len(a.requests)
}

func (a *stubAPI) sentTexts() []string {
	a.mu.Lock()
	defer a.mu.Unlock()

	texts := make([]string, 0, len(a.sent))
	for _, m := range a.sent {
		texts = append(texts, m.Text)
	}

	return texts
}

type stubRunner struct {
	results []domain.SummaryResult
	err     error
	queries []string
}

func (r *stubRunner) Run(_ context.Context, query string) ([]domain.SummaryResult, error) {
	r.queries = append(r.queries, query)

	return r.results, r.err
}

type stubStore struct {
	runs    []domain.Run
	err     error
	saveErr error
}

func (s *stubStore) SaveRun(_ context.Context, run domain.Run) (int64, error) {
	if s.saveErr != nil {
		return 0, s.saveErr
	}

	s.runs = append(s.runs, run)

	return int64(len(s.runs)), nil
}

func (s *stubStore) RecentRuns(_ context.Context, limit int) ([]domain.Run, error) {
	if s.err != nil {
		return nil, s.err
	}

	return s.runs[:min(limit, len(s.runs))], nil
}

func newTestBot(api *stubAPI, runner Runner, store Store, allowedUsers ...int64) *Bot {
	log := slog.New(slog.DiscardHandler)

	b := newBot(api, runner, store, "cosine", allowedUsers, log)
	b.rateLimiter = ratelimiter.New(0, log)

	return b
}

func newTestMessage(userID int64, text string) *tgbotapi.Message {
	return &tgbotapi.Message{
		MessageID: 1,
		From:      &tgbotapi.User{ID: userID, UserName: "tester"},
		Chat:      &tgbotapi.Chat{ID: testChatID, Type: "private"},
		Text:      text,
	}
}

func TestParseCommand(t *testing.T) {
	tests := []struct {
		text    string
		command string
		args    string
	}{
		{"/ask go generics", "/ask", "go generics"},
		{"  /ASK@text_insight_bot   go  ", "/ask", "go"},
		{"/history", "/history", ""},
		{"what is go", "", "what is go"},
		{"", "", ""},
	}

	for _, tt := range tests {
		command, args := parseCommand(tt.text)
		assert.Equal(t, tt.command, command, "text %q", tt.text)
		assert.Equal(t, tt.args, args, "text %q", tt.text)
	}
}

func TestAskCommandRunsStoresAndReplies(t *testing.T) {
	api := &stubAPI{}
	runner := &stubRunner{results: []domain.SummaryResult{
		{Summary: "Go is expressive, concise.", URL: "https://go.dev/doc"},
		{Summary: "", URL: "https://example.com/empty"},
	}}
	store := &stubStore{}

	b := newTestBot(api, runner, store)

	require.NoError(t, b.handleMessage(context.Background(), newTestMessage(1, "/ask What is Go?")))

	assert.Equal(t, []string{"What is Go?"}, runner.queries)
	require.Len(t, store.runs, 1)
	assert.Equal(t, "What is Go?", store.runs[0].Query)
	assert.Equal(t, "cosine", store.runs[0].Strategy)

	texts := api.sentTexts()
	require.Len(t, texts, 1)
	assert.Contains(t, texts[0], `What is Go?`)
	assert.Contains(t, texts[0], `[go\.dev/doc](https://go.dev/doc)`)
	assert.Contains(t, texts[0], `Go is expressive, concise\.`)
	assert.Contains(t, texts[0], "_no matching passage_")
}

func TestPlainTextIsAQuery(t *testing.T) {
	api := &stubAPI{}
	runner := &stubRunner{}

	b := newTestBot(api, runner, &stubStore{})

	require.NoError(t, b.handleMessage(context.Background(), newTestMessage(1, "  sqlite wal mode ")))

	assert.Equal(t, []string{"sqlite wal mode"}, runner.queries)
	texts := api.sentTexts()
	require.Len(t, texts, 1)
	assert.Contains(t, texts[0], "Nothing is found")
}

func TestAskCommandWithoutQuery(t *testing.T) {
	api := &stubAPI{}
	runner := &stubRunner{}

	b := newTestBot(api, runner, &stubStore{})

	require.NoError(t, b.handleMessage(context.Background(), newTestMessage(1, "/ask   ")))

	assert.Empty(t, runner.queries)
	assert.Equal(t, []string{emptyQueryText}, api.sentTexts())
}

func TestAskCommandRunFailure(t *testing.T) {
	api := &stubAPI{}
	runErr := fmt.Errorf("fetch: %w", &domain.FetchError{URL: "https://x.example", StatusCode: 500})
	store := &stubStore{}

	b := newTestBot(api, &stubRunner{err: runErr}, store)

	err := b.handleMessage(context.Background(), newTestMessage(1, "/ask go"))
	require.Error(t, err)

	var fetchErr *domain.FetchError
	assert.ErrorAs(t, err, &fetchErr)
	assert.Empty(t, store.runs)
	assert.Equal(t, []string{"❌ Failed to load one of the found pages\\."}, api.sentTexts())
}

func TestAskCommandSaveFailureStillReplies(t *testing.T) {
	api := &stubAPI{}

	b := newTestBot(api, &stubRunner{}, &stubStore{saveErr: errors.New("disk full")})

	require.NoError(t, b.handleMessage(context.Background(), newTestMessage(1, "/ask go")))
	assert.Len(t, api.sentTexts(), 1)
}

func TestHistoryCommand(t *testing.T) {
	api := &stubAPI{}
	store := &stubStore{runs: []domain.Run{{
		ID:        1,
		Query:     "go 1.26",
		Strategy:  "keyword",
		CreatedAt: time.Date(2026, 10, 1, 9, 5, 0, 0, time.UTC),
		Results:   []domain.SummaryResult{{URL: "https://go.dev"}},
	}}}

	b := newTestBot(api, &stubRunner{}, store)

	require.NoError(t, b.handleMessage(context.Background(), newTestMessage(1, "/history")))

	texts := api.sentTexts()
	require.Len(t, texts, 1)
	assert.Contains(t, texts[0], `go 1\.26`)
	assert.Contains(t, texts[0], `2026\-10\-01 09:05, keyword, 1 results`)
}

func TestHistoryCommandEmptyAndFailure(t *testing.T) {
	api := &stubAPI{}

	b := newTestBot(api, &stubRunner{}, &stubStore{})
	require.NoError(t, b.handleMessage(context.Background(), newTestMessage(1, "/history")))
	assert.Equal(t, []string{"✖️ History is empty\\."}, api.sentTexts())

	api = &stubAPI{}
	b = newTestBot(api, &stubRunner{}, &stubStore{err: errors.New("locked")})
	require.Error(t, b.handleMessage(context.Background(), newTestMessage(1, "/history")))
	assert.Equal(t, []string{"❌ Failed\\."}, api.sentTexts())
}

func TestHelpAndUnknownCommands(t *testing.T) {
	api := &stubAPI{}
	b := newTestBot(api, &stubRunner{}, &stubStore{})

	require.NoError(t, b.handleMessage(context.Background(), newTestMessage(1, "/start")))
	require.NoError(t, b.handleMessage(context.Background(), newTestMessage(1, "/help")))
	require.NoError(t, b.handleMessage(context.Background(), newTestMessage(1, "/settings")))

	texts := api.sentTexts()
	require.Len(t, texts, 3)
	assert.Equal(t, welcomeText, texts[0])
	assert.Equal(t, welcomeText, texts[1])
	assert.Contains(t, texts[2], "Unknown command")
}

func TestHandleUpdateIgnoresUnknownUsers(t *testing.T) {
	api := &stubAPI{}
	runner := &stubRunner{}
	b := newTestBot(api, runner, &stubStore{}, 42)

	b.handleUpdate(context.Background(), &tgbotapi.Update{Message: newTestMessage(7, "/ask go")})
	assert.Empty(t, runner.queries)
	assert.Empty(t, api.sentTexts())

	b.handleUpdate(context.Background(), &tgbotapi.Update{Message: newTestMessage(42, "/ask go")})
	assert.Equal(t, []string{"go"}, runner.queries)
}

func TestHandleCallbackQuery(t *testing.T) {
	api := &stubAPI{}
	b := newTestBot(api, &stubRunner{}, &stubStore{})

	callback := &tgbotapi.CallbackQuery{
		ID:      "cb",
		From:    &tgbotapi.User{ID: 1},
		Message: newTestMessage(1, ""),
		Data:    callbackMenuHelp,
	}

	require.NoError(t, b.handleCallbackQuery(context.Background(), callback))
	assert.Equal(t, []string{welcomeText}, api.sentTexts())
}

func TestStartHandlesUpdatesUntilCancelled(t *testing.T) {
	api := &stubAPI{updates: make(chan tgbotapi.Update, 1)}
	runner := &stubRunner{}
	b := newTestBot(api, runner, &stubStore{})

	api.updates <- tgbotapi.Update{UpdateID: 1, Message: newTestMessage(1, "/help")}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		defer close(done)
		b.Start(ctx)
	}()

	require.Eventually(t, func() bool {
		return len(api.sentTexts()) == 1
	}, time.Second, 10*time.Millisecond)

	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("bot did not stop")
	}
}

func TestFormatResultsSplitsLongOutput(t *testing.T) {
	results := make([]domain.SummaryResult, 0, 20)
	for i := range 20 {
		results = append(results, domain.SummaryResult{
			Summary: strings.Repeat(fmt.Sprintf("passage %d. ", i), 60),
			URL:     fmt.Sprintf("https://example.com/page/%d", i),
		})
	}

	messages := formatResults("long query", results)
	require.Greater(t, len(messages), 1)

	assert.True(t, strings.HasPrefix(messages[0], "🔎 *long query*\n\n"))
	for i, message := range messages {
		assert.LessOrEqual(t, len(message), telegramMessageMaxLength, "message %d", i)
		if i > 0 {
			assert.True(t, strings.HasPrefix(message, "🔎 *long query \\(continue\\)*\n\n"))
		}
	}

	joined := strings.Join(messages, "")
	for i := range results {
		assert.Contains(t, joined, fmt.Sprintf("(https://example.com/page/%d)", i))
	}
}

func TestFormatResultsEscapesLinks(t *testing.T) {
	messages := formatResults("go (game)", []domain.SummaryResult{{
		Summary: "A board game.",
		URL:     "https://en.wikipedia.org/wiki/Go_(game)",
	}})

	require.Len(t, messages, 1)
	assert.Contains(t, messages[0], `🔎 *go \(game\)*`)
	assert.Contains(t, messages[0], `(https://en.wikipedia.org/wiki/Go_(game\))`)
	assert.Contains(t, messages[0], `A board game\.`)
}

func TestWhileTypingRepeatsUntilDone(t *testing.T) {
	api := &stubAPI{}
	b := newTestBot(api, &stubRunner{}, &stubStore{})
	b.typingInterval = 5 * time.Millisecond

	err := b.whileTyping(context.Background(), testChatID, "ask", func() error {
		assert.Eventually(t, func() bool { return api.requestCount() >= 3 }, time.Second, time.Millisecond)
		return errors.New("done")
	})
	require.EqualError(t, err, "done")

	api.mu.Lock()
	action, ok := api.requests[0].(tgbotapi.ChatActionConfig)
	api.mu.Unlock()
	require.True(t, ok)
	assert.Equal(t, tgbotapi.ChatTyping, action.Action)
}

func TestWhileTypingGivesUpAfterFailures(t *testing.T) {
	api := &stubAPI{reqErr: errors.New("forbidden")}
	b := newTestBot(api, &stubRunner{}, &stubStore{})
	b.typingInterval = time.Millisecond

	err := b.whileTyping(context.Background(), testChatID, "ask", func() error {
		assert.Eventually(t, func() bool { return api.requestCount() == maxTypingFailures }, time.Second, time.Millisecond)
		time.Sleep(20 * time.Millisecond)
		return nil
	})
	require.NoError(t, err)

	assert.Equal(t, maxTypingFailures, api.requestCount())
}
