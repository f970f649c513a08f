package middleware

import (
	"github.com/gin-gonic/gin"
)

// SecurityHeadersMiddleware sets the browser-facing security headers on every
// response. The API only serves JSON and the swagger UI, so the policy is
// narrower than a page-serving app would need:
// - HTTPS only (HSTS)
// - no MIME sniffing, no framing
// - minimal referrer and feature exposure
func SecurityHeadersMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Browsers remember HTTPS-only for two years, subdomains included
		c.Header("Strict-Transport-Security", "max-age=63072000; includeSubDomains")

		// JSON stays JSON; an uploaded resume URL can't be reinterpreted as script
		c.Header("X-Content-Type-Options", "nosniff")

		// Nobody may embed the API or the swagger UI in a frame.
		// frame-ancestors below is the modern equivalent for CSP-aware browsers
		c.Header("X-Frame-Options", "DENY")
		c.Header("Content-Security-Policy", "frame-ancestors 'none'")

		// Cross-origin requests only learn our origin, never the full path
		// (paths carry job and application ids)
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")

		// Empty allow-lists switch the features off entirely
		c.Header("Permissions-Policy", "camera=(), microphone=(), geolocation=(), payment=()")

		// Responses to authenticated calls hold personal data (applications,
		// notes, profiles); keep them out of shared and browser caches
		if c.GetHeader("Authorization") != "" {
			c.Header("Cache-Control", "no-store, no-cache, must-revalidate, private")
			c.Header("Pragma", "no-cache")
		}

		c.Next()
	}
}
