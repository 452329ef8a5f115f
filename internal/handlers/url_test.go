package handlers_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/serroba/tinyurl-go/internal/analytics"
	"github.com/serroba/tinyurl-go/internal/cache"
	"github.com/serroba/tinyurl-go/internal/handlers"
	"github.com/serroba/tinyurl-go/internal/messaging"
	"github.com/serroba/tinyurl-go/internal/shortener"
	"github.com/serroba/tinyurl-go/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testURL = "https://example.com/very/long/path"

// noopPublish returns a publish function that always succeeds.
func noopPublish[T any]() messaging.Publish[T] {
	return func(_ context.Context, _ *T) error { return nil }
}

// errorPublish returns a publish function that always fails.
func errorPublish[T any](err error) messaging.Publish[T] {
	return func(_ context.Context, _ *T) error { return err }
}

func newTestService(repo shortener.Repository) *shortener.Service {
	layer := cache.NewLayer(nil, cache.NewFallback(nil), time.Hour, zap.NewNop())

	return shortener.NewService(
		repo,
		layer,
		shortener.NewDigestGenerator(nil, nil),
		"http://localhost:8888",
		8,
		time.Hour,
		zap.NewNop(),
	)
}

func newTestHandler(repo shortener.Repository) *handlers.URLHandler {
	return handlers.NewURLHandler(
		newTestService(repo),
		noopPublish[analytics.LinkCreatedEvent](),
		noopPublish[analytics.LinkVisitedEvent](),
		zap.NewNop(),
	)
}

func newTestHandlerWithPublishError(repo shortener.Repository) *handlers.URLHandler {
	return handlers.NewURLHandler(
		newTestService(repo),
		errorPublish[analytics.LinkCreatedEvent](errors.New("publish error")),
		errorPublish[analytics.LinkVisitedEvent](errors.New("publish error")),
		zap.NewNop(),
	)
}

// failingService errors on every operation, for the 500 mapping.
type failingService struct {
	err error
}

func (s *failingService) CreateShortURL(context.Context, string, string) (*shortener.CreateResult, error) {
	return nil, s.err
}

func (s *failingService) GetOriginalURL(context.Context, string) (string, error) {
	return "", s.err
}

func (s *failingService) GetURLStats(context.Context, string) (*shortener.Stats, error) {
	return nil, s.err
}

func (s *failingService) DeleteURL(context.Context, string) (bool, error) {
	return false, s.err
}

func assertStatus(t *testing.T, err error, want int) {
	t.Helper()

	var statusErr huma.StatusError

	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, want, statusErr.GetStatus())
}

func TestCreateShortURL(t *testing.T) {
	t.Run("creates short url successfully", func(t *testing.T) {
		handler := newTestHandler(store.NewMemoryStore())

		req := &handlers.ShortenRequest{}
		req.Body.URL = testURL

		resp, err := handler.CreateShortURL(context.Background(), req)

		require.NoError(t, err)
		assert.NotEmpty(t, resp.Body.ShortCode)
		assert.Equal(t, testURL, resp.Body.LongURL)
		assert.Contains(t, resp.Body.ShortURL, resp.Body.ShortCode)
		assert.Equal(t, resp.Body.ShortURL, resp.Headers.Location)
	})

	t.Run("returns same code for same url", func(t *testing.T) {
		handler := newTestHandler(store.NewMemoryStore())

		req := &handlers.ShortenRequest{}
		req.Body.URL = testURL

		resp1, err1 := handler.CreateShortURL(context.Background(), req)
		resp2, err2 := handler.CreateShortURL(context.Background(), req)

		require.NoError(t, err1)
		require.NoError(t, err2)
		assert.Equal(t, resp1.Body.ShortCode, resp2.Body.ShortCode)
	})

	t.Run("honors a custom code", func(t *testing.T) {
		handler := newTestHandler(store.NewMemoryStore())

		req := &handlers.ShortenRequest{}
		req.Body.URL = testURL
		req.Body.CustomCode = "my-link"

		resp, err := handler.CreateShortURL(context.Background(), req)

		require.NoError(t, err)
		assert.Equal(t, "my-link", resp.Body.ShortCode)
	})

	t.Run("returns 409 when the custom code is taken", func(t *testing.T) {
		handler := newTestHandler(store.NewMemoryStore())

		req1 := &handlers.ShortenRequest{}
		req1.Body.URL = "https://example.com/a"
		req1.Body.CustomCode = "taken"

		_, err := handler.CreateShortURL(context.Background(), req1)
		require.NoError(t, err)

		req2 := &handlers.ShortenRequest{}
		req2.Body.URL = "https://example.com/b"
		req2.Body.CustomCode = "taken"

		resp, err := handler.CreateShortURL(context.Background(), req2)

		assert.Nil(t, resp)
		assertStatus(t, err, http.StatusConflict)
	})

	t.Run("returns 500 on service error", func(t *testing.T) {
		handler := handlers.NewURLHandler(
			&failingService{err: errors.New("boom")},
			noopPublish[analytics.LinkCreatedEvent](),
			noopPublish[analytics.LinkVisitedEvent](),
			zap.NewNop(),
		)

		req := &handlers.ShortenRequest{}
		req.Body.URL = testURL

		resp, err := handler.CreateShortURL(context.Background(), req)

		assert.Nil(t, resp)
		assertStatus(t, err, http.StatusInternalServerError)
	})

	t.Run("succeeds even when publishing fails", func(t *testing.T) {
		handler := newTestHandlerWithPublishError(store.NewMemoryStore())

		req := &handlers.ShortenRequest{}
		req.Body.URL = testURL

		resp, err := handler.CreateShortURL(context.Background(), req)

		require.NoError(t, err)
		assert.NotEmpty(t, resp.Body.ShortCode)
	})
}

func TestRedirectToURL(t *testing.T) {
	t.Run("redirects to original url", func(t *testing.T) {
		memStore := store.NewMemoryStore()
		_, err := memStore.Create(context.Background(), &shortener.ShortLink{
			ShortCode: "abc123",
			LongURL:   testURL,
		})
		require.NoError(t, err)

		handler := newTestHandler(memStore)

		resp, err := handler.RedirectToURL(context.Background(), &handlers.RedirectRequest{Code: "abc123"})

		require.NoError(t, err)
		assert.Equal(t, http.StatusMovedPermanently, resp.Status)
		assert.Equal(t, testURL, resp.Headers.Location)
	})

	t.Run("returns 404 when code not found", func(t *testing.T) {
		handler := newTestHandler(store.NewMemoryStore())

		resp, err := handler.RedirectToURL(context.Background(), &handlers.RedirectRequest{Code: "notfound"})

		assert.Nil(t, resp)
		assertStatus(t, err, http.StatusNotFound)
	})

	t.Run("succeeds even when publishing fails", func(t *testing.T) {
		memStore := store.NewMemoryStore()
		_, err := memStore.Create(context.Background(), &shortener.ShortLink{
			ShortCode: "abc123",
			LongURL:   testURL,
		})
		require.NoError(t, err)

		handler := newTestHandlerWithPublishError(memStore)

		resp, err := handler.RedirectToURL(context.Background(), &handlers.RedirectRequest{Code: "abc123"})

		require.NoError(t, err)
		assert.Equal(t, testURL, resp.Headers.Location)
	})
}

func TestGetURLStats(t *testing.T) {
	t.Run("returns stats for an existing code", func(t *testing.T) {
		memStore := store.NewMemoryStore()
		handler := newTestHandler(memStore)

		req := &handlers.ShortenRequest{}
		req.Body.URL = testURL

		created, err := handler.CreateShortURL(context.Background(), req)
		require.NoError(t, err)

		resp, err := handler.GetURLStats(context.Background(), &handlers.StatsRequest{Code: created.Body.ShortCode})

		require.NoError(t, err)
		assert.Equal(t, created.Body.ShortCode, resp.Body.ShortCode)
		assert.Equal(t, testURL, resp.Body.LongURL)
		assert.Equal(t, int64(0), resp.Body.Clicks)
		assert.False(t, resp.Body.CreatedAt.IsZero())
	})

	t.Run("returns 404 when code not found", func(t *testing.T) {
		handler := newTestHandler(store.NewMemoryStore())

		resp, err := handler.GetURLStats(context.Background(), &handlers.StatsRequest{Code: "notfound"})

		assert.Nil(t, resp)
		assertStatus(t, err, http.StatusNotFound)
	})
}

func TestDeleteURL(t *testing.T) {
	t.Run("deletes an existing short url", func(t *testing.T) {
		memStore := store.NewMemoryStore()
		handler := newTestHandler(memStore)

		req := &handlers.ShortenRequest{}
		req.Body.URL = testURL

		created, err := handler.CreateShortURL(context.Background(), req)
		require.NoError(t, err)

		resp, err := handler.DeleteURL(context.Background(), &handlers.DeleteRequest{Code: created.Body.ShortCode})

		require.NoError(t, err)
		assert.Equal(t, http.StatusNoContent, resp.Status)

		_, err = handler.RedirectToURL(context.Background(), &handlers.RedirectRequest{Code: created.Body.ShortCode})
		assertStatus(t, err, http.StatusNotFound)
	})

	t.Run("returns 404 when code not found", func(t *testing.T) {
		handler := newTestHandler(store.NewMemoryStore())

		resp, err := handler.DeleteURL(context.Background(), &handlers.DeleteRequest{Code: "notfound"})

		assert.Nil(t, resp)
		assertStatus(t, err, http.StatusNotFound)
	})
}

func TestRequestMeta(t *testing.T) {
	t.Run("round trips through context", func(t *testing.T) {
		meta := handlers.RequestMeta{ClientIP: "10.0.0.1", UserAgent: "test-agent", Referrer: "https://ref.example.com"}

		ctx := handlers.ContextWithRequestMeta(context.Background(), meta)

		assert.Equal(t, meta, handlers.RequestMetaFromContext(ctx))
	})

	t.Run("returns zero value when absent", func(t *testing.T) {
		assert.Equal(t, handlers.RequestMeta{}, handlers.RequestMetaFromContext(context.Background()))
	})
}
