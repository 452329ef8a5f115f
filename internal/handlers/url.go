package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/serroba/tinyurl-go/internal/analytics"
	"github.com/serroba/tinyurl-go/internal/messaging"
	"github.com/serroba/tinyurl-go/internal/shortener"
	"go.uber.org/zap"
)

// URLService is the resolution core consumed by the handler.
type URLService interface {
	CreateShortURL(ctx context.Context, longURL, customCode string) (*shortener.CreateResult, error)
	GetOriginalURL(ctx context.Context, code string) (string, error)
	GetURLStats(ctx context.Context, code string) (*shortener.Stats, error)
	DeleteURL(ctx context.Context, code string) (bool, error)
}

// URLHandler handles URL shortening operations.
type URLHandler struct {
	service            URLService
	publishLinkCreated messaging.Publish[analytics.LinkCreatedEvent]
	publishLinkVisited messaging.Publish[analytics.LinkVisitedEvent]
	logger             *zap.Logger
}

// NewURLHandler creates a new URL handler.
func NewURLHandler(
	service URLService,
	publishLinkCreated messaging.Publish[analytics.LinkCreatedEvent],
	publishLinkVisited messaging.Publish[analytics.LinkVisitedEvent],
	logger *zap.Logger,
) *URLHandler {
	return &URLHandler{
		service:            service,
		publishLinkCreated: publishLinkCreated,
		publishLinkVisited: publishLinkVisited,
		logger:             logger,
	}
}

type requestMetaKey struct{}

// RequestMeta holds HTTP request metadata for analytics.
type RequestMeta struct {
	ClientIP  string
	UserAgent string
	Referrer  string
}

// ContextWithRequestMeta adds request metadata to context.
func ContextWithRequestMeta(ctx context.Context, meta RequestMeta) context.Context {
	return context.WithValue(ctx, requestMetaKey{}, meta)
}

// RequestMetaFromContext extracts request metadata from context.
func RequestMetaFromContext(ctx context.Context) RequestMeta {
	if v, ok := ctx.Value(requestMetaKey{}).(RequestMeta); ok {
		return v
	}

	return RequestMeta{}
}

func (h *URLHandler) CreateShortURL(ctx context.Context, req *ShortenRequest) (*ShortenResponse, error) {
	result, err := h.service.CreateShortURL(ctx, req.Body.URL, req.Body.CustomCode)
	if err != nil {
		return nil, h.mapError(err, "failed to create short url")
	}

	meta := RequestMetaFromContext(ctx)
	event := &analytics.LinkCreatedEvent{
		Code:      result.ShortCode,
		LongURL:   result.LongURL,
		Custom:    req.Body.CustomCode != "",
		CreatedAt: time.Now(),
		ClientIP:  meta.ClientIP,
		UserAgent: meta.UserAgent,
	}

	if err := h.publishLinkCreated(ctx, event); err != nil {
		h.logger.Error("failed to publish link created event",
			zap.String("code", event.Code),
			zap.Error(err),
		)
	}

	resp := &ShortenResponse{}
	resp.Headers.Location = result.ShortURL
	resp.Body.ShortURL = result.ShortURL
	resp.Body.LongURL = result.LongURL
	resp.Body.ShortCode = result.ShortCode
	resp.Body.QRCode = result.QRCode

	return resp, nil
}

func (h *URLHandler) RedirectToURL(ctx context.Context, req *RedirectRequest) (*RedirectResponse, error) {
	longURL, err := h.service.GetOriginalURL(ctx, req.Code)
	if err != nil {
		return nil, h.mapError(err, "failed to resolve short url")
	}

	meta := RequestMetaFromContext(ctx)
	event := &analytics.LinkVisitedEvent{
		Code:      req.Code,
		VisitedAt: time.Now(),
		ClientIP:  meta.ClientIP,
		UserAgent: meta.UserAgent,
		Referrer:  meta.Referrer,
	}

	if err := h.publishLinkVisited(ctx, event); err != nil {
		h.logger.Error("failed to publish link visited event",
			zap.String("code", event.Code),
			zap.Error(err),
		)
	}

	resp := &RedirectResponse{
		Status: http.StatusMovedPermanently,
	}
	resp.Headers.Location = longURL

	return resp, nil
}

func (h *URLHandler) GetURLStats(ctx context.Context, req *StatsRequest) (*StatsResponse, error) {
	stats, err := h.service.GetURLStats(ctx, req.Code)
	if err != nil {
		return nil, h.mapError(err, "failed to get url stats")
	}

	resp := &StatsResponse{}
	resp.Body.ShortCode = stats.ShortCode
	resp.Body.LongURL = stats.LongURL
	resp.Body.Clicks = stats.Clicks
	resp.Body.CreatedAt = stats.CreatedAt
	resp.Body.UpdatedAt = stats.UpdatedAt

	return resp, nil
}

func (h *URLHandler) DeleteURL(ctx context.Context, req *DeleteRequest) (*DeleteResponse, error) {
	deleted, err := h.service.DeleteURL(ctx, req.Code)
	if err != nil {
		return nil, h.mapError(err, "failed to delete short url")
	}

	if !deleted {
		return nil, huma.Error404NotFound("short url not found")
	}

	return &DeleteResponse{Status: http.StatusNoContent}, nil
}

// mapError translates core errors into caller-facing categories one-to-one:
// validation to 400, not-found to 404, conflict to 409, everything else to 500.
func (h *URLHandler) mapError(err error, fallback string) error {
	switch {
	case errors.Is(err, shortener.ErrInvalidCustomCode):
		return huma.Error400BadRequest(err.Error())
	case errors.Is(err, shortener.ErrNotFound):
		return huma.Error404NotFound("short url not found")
	case errors.Is(err, shortener.ErrCodeTaken):
		return huma.Error409Conflict(err.Error())
	default:
		h.logger.Error(fallback, zap.Error(err))

		return huma.Error500InternalServerError(fallback)
	}
}
