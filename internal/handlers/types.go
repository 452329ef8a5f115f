package handlers

import "time"

// ShortenRequest is the request body for creating a short URL. URL syntax and
// custom code shape are validated here, before the core service runs.
type ShortenRequest struct {
	Body struct {
		URL        string `doc:"The URL to shorten"         example:"https://example.com/very/long/path" format:"uri" json:"url" minLength:"1"`
		CustomCode string `doc:"Optional custom short code" example:"my-custom-code" json:"customCode,omitempty" maxLength:"20" pattern:"^[A-Za-z0-9-]*$" required:"false"`
	}
}

// ShortenResponse is the response for a successfully created short URL.
type ShortenResponse struct {
	Headers struct {
		Location string `doc:"The short URL location" header:"Location"`
	}
	Body struct {
		ShortURL  string  `doc:"The full short URL"       example:"http://localhost:8888/abc123"       json:"shortUrl"`
		LongURL   string  `doc:"The original URL"         example:"https://example.com/very/long/path" json:"longUrl"`
		ShortCode string  `doc:"The short code"           example:"abc123"                             json:"shortCode"`
		QRCode    *string `doc:"QR code data URL, if any" json:"qrCode,omitempty"`
	}
}

// RedirectRequest is the request for resolving a short code.
type RedirectRequest struct {
	Code string `doc:"The short code" example:"abc123" path:"code"`
}

// RedirectResponse redirects the client to the original URL.
type RedirectResponse struct {
	Status  int
	Headers struct {
		Location string `doc:"The original URL" header:"Location"`
	}
}

// StatsRequest is the request for short link statistics.
type StatsRequest struct {
	Code string `doc:"The short code" example:"abc123" path:"code"`
}

// StatsResponse is the response for short link statistics.
type StatsResponse struct {
	Body struct {
		ShortCode string    `doc:"The short code"   example:"abc123"                             json:"shortCode"`
		LongURL   string    `doc:"The original URL" example:"https://example.com/very/long/path" json:"longUrl"`
		Clicks    int64     `doc:"Number of clicks" example:"42"                                 json:"clicks"`
		CreatedAt time.Time `doc:"Creation time"    json:"createdAt"`
		UpdatedAt time.Time `doc:"Last update time" json:"updatedAt"`
	}
}

// DeleteRequest is the request for deleting a short link.
type DeleteRequest struct {
	Code string `doc:"The short code" example:"abc123" path:"code"`
}

// DeleteResponse is the empty response for a successful delete.
type DeleteResponse struct {
	Status int
}
