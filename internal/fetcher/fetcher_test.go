package fetcher_test

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"textinsight/internal/domain"
	"textinsight/internal/fetcher"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPage = `<html><head><title>Example</title><script>var x = 1;</script></head>
<body><p>This webpage is used for testing</p><p>second block</p></body></html>`

func newTestLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

type recordingWaiter struct {
	mu   sync.Mutex
	keys []string
	err  error
}

func (w *recordingWaiter) Wait(_ context.Context, key string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.keys = append(w.keys, key)

	return w.err
}

func TestFetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NotEmpty(t, r.Header.Get("User-Agent"))
		_, _ = w.Write([]byte(testPage))
	}))
	defer server.Close()

	f := fetcher.New(newTestLogger())

	doc, err := f.Fetch(context.Background(), server.URL+"/page")
	require.NoError(t, err)

	assert.Equal(t, server.URL+"/page", doc.URL)
	assert.Equal(t, "Example", doc.Title)
	assert.Equal(t, []string{"Example", "This webpage is used for testing", "second block"}, doc.Blocks)
	assert.NotContains(t, doc.Text, "var x")
}

func TestFetchUnexpectedStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer server.Close()

	_, err := fetcher.New(newTestLogger()).Fetch(context.Background(), server.URL)
	require.Error(t, err)

	var fetchErr *domain.FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, http.StatusNotFound, fetchErr.StatusCode)
	assert.Equal(t, server.URL, fetchErr.URL)
}

func TestFetchTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	pageURL := server.URL
	server.Close()

	_, err := fetcher.New(newTestLogger()).Fetch(context.Background(), pageURL)

	var fetchErr *domain.FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Zero(t, fetchErr.StatusCode)
	assert.Error(t, fetchErr.Err)
}

func TestFetchWaitsPerHost(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(testPage))
	}))
	defer server.Close()

	waiter := &recordingWaiter{}
	f := fetcher.New(newTestLogger(), fetcher.WithHostLimiter(waiter))

	_, err := f.Fetch(context.Background(), server.URL+"/a")
	require.NoError(t, err)
	_, err = f.Fetch(context.Background(), server.URL+"/b")
	require.NoError(t, err)

	host := server.Listener.Addr().String()
	assert.Equal(t, []string{host, host}, waiter.keys)
}

func TestFetchLimiterError(t *testing.T) {
	waitErr := errors.New("limiter closed")
	f := fetcher.New(newTestLogger(), fetcher.WithHostLimiter(&recordingWaiter{err: waitErr}))

	_, err := f.Fetch(context.Background(), "http://example.invalid/page")

	require.ErrorIs(t, err, waitErr)
	var fetchErr *domain.FetchError
	require.ErrorAs(t, err, &fetchErr)
}

func TestFetchWithReadability(t *testing.T) {
	page := `<html><head><title>Readable</title></head><body>
<nav><a href="/">Home</a> <a href="/about">About</a></nav>
<article><h1>Readable</h1>
<p>Go is an open source programming language that makes it simple to build secure, scalable systems.
It was designed at Google and is used by many companies around the world for services and tooling.</p>
<p>Its concurrency primitives, goroutines and channels, make it easy to write programs that get the
most out of multicore and networked machines while keeping the code readable and maintainable.</p>
</article>
<footer>Copyright footer text</footer>
</body></html>`

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(page))
	}))
	defer server.Close()

	f := fetcher.New(newTestLogger(), fetcher.WithReadability(true))

	doc, err := f.Fetch(context.Background(), server.URL)
	require.NoError(t, err)

	assert.Contains(t, doc.Title, "Readable")
	assert.Contains(t, doc.Text, "goroutines and channels")
	assert.NotEmpty(t, doc.Blocks)
}

func TestTimeoutDoesNotChangeCallerClient(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(testPage))
	}))
	defer server.Close()

	shared := &http.Client{}
	f := fetcher.New(newTestLogger(),
		fetcher.WithHTTPClient(shared),
		fetcher.WithTimeout(time.Second))

	_, err := f.Fetch(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Zero(t, shared.Timeout)
}

func TestTimeoutWithNilClient(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(testPage))
	}))
	defer server.Close()

	var f *fetcher.Fetcher
	require.NotPanics(t, func() {
		f = fetcher.New(newTestLogger(),
			fetcher.WithHTTPClient(nil),
			fetcher.WithTimeout(5*time.Second))
	})

	doc, err := f.Fetch(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, "Example", doc.Title)
}
