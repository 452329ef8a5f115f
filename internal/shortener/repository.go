package shortener

import "context"

// Repository defines the durable storage contract for short links.
// Implementations enforce short code uniqueness and own id and timestamp
// assignment.
type Repository interface {
	// Create persists a new link and returns it with id and timestamps filled in.
	// Returns ErrCodeTaken when the short code is already present.
	Create(ctx context.Context, link *ShortLink) (*ShortLink, error)

	// FindByShortCode returns the link for a code, or ErrNotFound.
	FindByShortCode(ctx context.Context, code string) (*ShortLink, error)

	// FindByLongURL returns the most recently created link for an exact long
	// URL, or ErrNotFound.
	FindByLongURL(ctx context.Context, longURL string) (*ShortLink, error)

	// Update persists a modified link, mainly for click counting.
	Update(ctx context.Context, link *ShortLink) (*ShortLink, error)

	// DeleteByShortCode removes the link and reports whether a row was deleted.
	DeleteByShortCode(ctx context.Context, code string) (bool, error)

	// GetStats returns the link used for statistics, or ErrNotFound.
	GetStats(ctx context.Context, code string) (*ShortLink, error)

	// Exists reports whether a short code is already taken.
	Exists(ctx context.Context, code string) (bool, error)
}
