package shortener

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

// maxGenerateAttempts bounds the collision-retry loop for generated codes.
const maxGenerateAttempts = 10

// Service orchestrates the generator, the cache, and the durable store to
// implement create, resolve, stats, and delete.
type Service struct {
	repo       Repository
	cache      Cache
	generator  Generator
	baseURL    string
	codeLength int
	cacheTTL   time.Duration
	logger     *zap.Logger
}

// NewService creates a resolution service.
func NewService(
	repo Repository,
	cache Cache,
	generator Generator,
	baseURL string,
	codeLength int,
	cacheTTL time.Duration,
	logger *zap.Logger,
) *Service {
	return &Service{
		repo:       repo,
		cache:      cache,
		generator:  generator,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		codeLength: codeLength,
		cacheTTL:   cacheTTL,
		logger:     logger,
	}
}

// CreateShortURL maps a long URL to a short code. Shortening the same long URL
// again returns the existing mapping instead of minting a new one. An empty
// customCode means no custom code was requested.
func (s *Service) CreateShortURL(ctx context.Context, longURL, customCode string) (*CreateResult, error) {
	existing, err := s.repo.FindByLongURL(ctx, longURL)
	if err == nil {
		return s.createResult(existing), nil
	}

	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	code, err := s.resolveShortCode(ctx, longURL, customCode)
	if err != nil {
		return nil, err
	}

	saved, err := s.repo.Create(ctx, &ShortLink{ShortCode: code, LongURL: longURL})
	if err != nil {
		return nil, err
	}

	s.cache.Set(ctx, saved.ShortCode, saved.LongURL, s.cacheTTL)

	return s.createResult(saved), nil
}

// GetOriginalURL resolves a short code to its long URL. Click accounting is
// fire-and-forget on both paths: two concurrent misses for the same code can
// clobber each other's increment, an accepted trade-off favoring latency over
// exact counting.
func (s *Service) GetOriginalURL(ctx context.Context, code string) (string, error) {
	if cached, ok := s.cache.Get(ctx, code); ok {
		go s.cache.Increment(context.WithoutCancel(ctx), ClicksKey(code))

		return cached, nil
	}

	link, err := s.repo.FindByShortCode(ctx, code)
	if err != nil {
		return "", err
	}

	s.cache.Set(ctx, code, link.LongURL, s.cacheTTL)

	go s.persistClick(context.WithoutCancel(ctx), link)

	return link.LongURL, nil
}

// GetURLStats returns the click statistics for a short code. The cache-resident
// counter wins over the durable count when it is present and parses.
func (s *Service) GetURLStats(ctx context.Context, code string) (*Stats, error) {
	link, err := s.repo.GetStats(ctx, code)
	if err != nil {
		return nil, err
	}

	clicks := link.Clicks

	if cached, ok := s.cache.Get(ctx, ClicksKey(code)); ok {
		if n, parseErr := strconv.ParseInt(cached, 10, 64); parseErr == nil {
			clicks = n
		}
	}

	return &Stats{
		ShortCode: link.ShortCode,
		LongURL:   link.LongURL,
		Clicks:    clicks,
		CreatedAt: link.CreatedAt,
		UpdatedAt: link.UpdatedAt,
	}, nil
}

// DeleteURL removes a short link. Cache entries go first so a stale URL cannot
// be served for a code the durable delete is about to drop; if the durable
// delete then fails, the next resolve repopulates nothing and 404s as expected.
func (s *Service) DeleteURL(ctx context.Context, code string) (bool, error) {
	s.cache.Delete(ctx, code)
	s.cache.Delete(ctx, ClicksKey(code))

	return s.repo.DeleteByShortCode(ctx, code)
}

func (s *Service) resolveShortCode(ctx context.Context, longURL, customCode string) (string, error) {
	if customCode != "" {
		code, err := s.generator.GenerateCustom(customCode)
		if err != nil {
			return "", err
		}

		exists, err := s.repo.Exists(ctx, code)
		if err != nil {
			return "", err
		}

		if exists {
			return "", fmt.Errorf("%w: %q", ErrCodeTaken, code)
		}

		return code, nil
	}

	for attempt := 0; attempt < maxGenerateAttempts; attempt++ {
		code := s.generator.Generate(longURL, s.codeLength)

		exists, err := s.repo.Exists(ctx, code)
		if err != nil {
			return "", err
		}

		if !exists {
			return code, nil
		}
	}

	return "", ErrGenerationExhausted
}

func (s *Service) persistClick(ctx context.Context, link *ShortLink) {
	updated := *link
	updated.Clicks++
	updated.UpdatedAt = time.Now()

	if _, err := s.repo.Update(ctx, &updated); err != nil {
		s.logger.Error("failed to persist click count",
			zap.String("code", link.ShortCode),
			zap.Error(err),
		)
	}
}

func (s *Service) createResult(link *ShortLink) *CreateResult {
	return &CreateResult{
		ShortURL:  s.baseURL + "/" + link.ShortCode,
		LongURL:   link.LongURL,
		ShortCode: link.ShortCode,
		QRCode:    link.QRCode,
	}
}
