package middleware

import (
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sangkips/posbilling/internal/config"
)

// headers the till frontend always sends
var requiredHeaders = []string{"Authorization", "Content-Type", IdempotencyKeyHeader, "X-Request-ID"}

// CORSMiddleware builds the CORS policy for the till frontend.
// An origin list of "*" allows any origin without credentials.
func CORSMiddleware(cfg *config.CORSConfig) gin.HandlerFunc {
	return cors.New(corsConfig(cfg))
}

func corsConfig(cfg *config.CORSConfig) cors.Config {
	c := cors.Config{
		AllowMethods:  cfg.AllowedMethods,
		AllowHeaders:  append([]string{"Accept", "Origin"}, cfg.AllowedHeaders...),
		ExposeHeaders: []string{"Content-Length", "X-Request-ID", IdempotencyReplayedHeader},
		MaxAge:        12 * time.Hour,
	}

	if len(c.AllowMethods) == 0 {
		c.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	}
	for _, h := range requiredHeaders {
		if !slices.Contains(c.AllowHeaders, h) {
			c.AllowHeaders = append(c.AllowHeaders, h)
		}
	}

	switch {
	case len(cfg.AllowedOrigins) == 0:
		c.AllowOrigins = []string{"http://localhost:3000"}
		c.AllowCredentials = true
	case slices.Contains(cfg.AllowedOrigins, "*"):
		c.AllowAllOrigins = true
	default:
		c.AllowOrigins = cfg.AllowedOrigins
		c.AllowCredentials = true
	}
	return c
}
