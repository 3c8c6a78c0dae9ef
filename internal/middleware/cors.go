// cors.go configures Cross-Origin Resource Sharing (CORS).
//
// CORS is needed because the storyboard editor (localhost:5173) and the
// Go API (localhost:8080) run on different origins. Without CORS headers,
// browsers block the frontend from making API requests.
package middleware

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// CORS returns configured CORS middleware.
func CORS(allowedOrigins []string) gin.HandlerFunc {
	return cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"X-RateLimit-Limit", "X-RateLimit-Remaining", "Retry-After", "Content-Disposition", "Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour, // Cache preflight responses
	})
}
