// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// SecurityHeaders hardens every response with a conservative header set for a
// JSON API behind a reverse proxy. There is deliberately no CSP here; this
// service never serves HTML.
package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// SecurityOptions selects the optional header groups. HSTS must only be
// enabled when traffic is HTTPS end to end, proxy hop included; the header
// is never emitted on a plain-HTTP request regardless of the flag.
type SecurityOptions struct {
	EnableHSTS   bool
	HSTSMaxAge   time.Duration // zero falls back to 180 days
	NoStore      bool          // Cache-Control: no-store plus the legacy pair
	EnablePolicy bool          // Permissions-Policy and cross-domain policy
}

// SecurityHeaders always sets nosniff, frame denial, and a no-referrer
// policy. The optional groups follow SecurityOptions, and when an
// X-Request-ID response header exists it is added to
// Access-Control-Expose-Headers so browser clients can read it.
func SecurityHeaders(opt SecurityOptions) gin.HandlerFunc {
	maxAge := opt.HSTSMaxAge
	if maxAge <= 0 {
		maxAge = 180 * 24 * time.Hour
	}
	hstsValue := "max-age=" + strconv.Itoa(int(maxAge.Seconds())) + "; includeSubDomains; preload"

	return func(c *gin.Context) {
		h := c.Writer.Header()

		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "no-referrer")

		if opt.EnablePolicy {
			h.Set("Permissions-Policy", "geolocation=(), microphone=(), camera=(), payment=()")
			h.Set("X-Permitted-Cross-Domain-Policies", "none")
		}

		if opt.NoStore {
			h.Set("Cache-Control", "no-store")
			h.Set("Pragma", "no-cache")
			h.Set("Expires", "0")
		}

		if opt.EnableHSTS && isHTTPS(c.Request) {
			h.Set("Strict-Transport-Security", hstsValue)
		}

		if rid := h.Get("X-Request-ID"); rid != "" {
			const hdr = "Access-Control-Expose-Headers"
			switch cur := h.Get(hdr); {
			case cur == "":
				h.Set(hdr, "X-Request-ID")
			case !strings.Contains(cur, "X-Request-ID"):
				h.Set(hdr, cur+", X-Request-ID")
			}
		}

		c.Next()
	}
}

// isHTTPS covers both direct TLS and a terminating proxy that sets
// X-Forwarded-Proto.
func isHTTPS(r *http.Request) bool {
	if r.TLS != nil {
		return true
	}
	return strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
}
