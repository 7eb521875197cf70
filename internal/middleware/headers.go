package middleware

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// CacheControl marks responses as publicly cacheable for maxAgeSeconds.
// Stored uploads get a fresh name on every write, so they can be cached for long.
func CacheControl(maxAgeSeconds int) gin.HandlerFunc {
	value := "public, max-age=" + strconv.Itoa(maxAgeSeconds) + ", immutable"
	return func(c *gin.Context) {
		c.Header("Cache-Control", value)
		c.Next()
	}
}

// NoStore keeps personal API responses (grades, transcripts) out of shared caches.
func NoStore() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Cache-Control", "no-store")
		c.Next()
	}
}

// NoSniff stops browsers from reinterpreting user uploads as another type.
func NoSniff() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Next()
	}
}
