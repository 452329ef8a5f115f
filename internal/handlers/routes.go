package handlers

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

// RegisterRoutes registers all URL shortener routes.
func RegisterRoutes(api huma.API, urlHandler *URLHandler) {
	huma.Register(api, huma.Operation{
		OperationID:   "create-short-url",
		Method:        http.MethodPost,
		Path:          "/shorten",
		Summary:       "Create short URL",
		Description:   "Creates a shortened URL, optionally with a caller-supplied custom code. Shortening the same URL twice returns the existing mapping.",
		Tags:          []string{"URLs"},
		DefaultStatus: http.StatusCreated,
	}, urlHandler.CreateShortURL)

	huma.Register(api, huma.Operation{
		OperationID: "get-url-stats",
		Method:      http.MethodGet,
		Path:        "/stats/{code}",
		Summary:     "Get URL statistics",
		Description: "Returns the click statistics for a short code.",
		Tags:        []string{"URLs"},
	}, urlHandler.GetURLStats)

	huma.Register(api, huma.Operation{
		OperationID: "redirect-to-url",
		Method:      http.MethodGet,
		Path:        "/{code}",
		Summary:     "Redirect to original URL",
		Description: "Redirects to the original URL associated with the short code.",
		Tags:        []string{"URLs"},
	}, urlHandler.RedirectToURL)

	huma.Register(api, huma.Operation{
		OperationID:   "delete-short-url",
		Method:        http.MethodDelete,
		Path:          "/{code}",
		Summary:       "Delete short URL",
		Description:   "Deletes the short link and its cached entries.",
		Tags:          []string{"URLs"},
		DefaultStatus: http.StatusNoContent,
	}, urlHandler.DeleteURL)
}
