package shortener

import "time"

// ShortLink represents a short code to long URL mapping as stored durably.
// The id, timestamps and the zero click count are assigned by the Repository
// on Create.
type ShortLink struct {
	ID        int64
	ShortCode string
	LongURL   string
	QRCode    *string
	Clicks    int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CreateResult is the outcome of shortening a URL.
type CreateResult struct {
	ShortURL  string
	LongURL   string
	ShortCode string
	QRCode    *string
}

// Stats holds the click statistics for a short link. Clicks prefers the
// cache-resident counter over the durable count when one is present.
type Stats struct {
	ShortCode string
	LongURL   string
	Clicks    int64
	CreatedAt time.Time
	UpdatedAt time.Time
}
