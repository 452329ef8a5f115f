// Package middleware holds huma middlewares shared by the HTTP surface.
package middleware

import (
	"net"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"github.com/serroba/tinyurl-go/internal/handlers"
)

// RequestMeta attaches client IP, user agent, and referrer to the request
// context so analytics events can carry them.
func RequestMeta(_ huma.API) func(ctx huma.Context, next func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		meta := handlers.RequestMeta{
			ClientIP:  clientIP(ctx),
			UserAgent: ctx.Header("User-Agent"),
			Referrer:  ctx.Header("Referer"),
		}

		next(huma.WithContext(ctx, handlers.ContextWithRequestMeta(ctx.Context(), meta)))
	}
}

// clientIP resolves the originating client address, trusting proxy headers
// first. X-Forwarded-For keeps the original client as its first entry.
func clientIP(ctx huma.Context) string {
	if forwarded := ctx.Header("X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")

		return strings.TrimSpace(first)
	}

	if realIP := ctx.Header("X-Real-IP"); realIP != "" {
		return realIP
	}

	addr := ctx.RemoteAddr()
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return host
	}

	return addr
}
