package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/BrunoNascimento7/Projeto-CRM-Guincho-Oliveira-sub002/internal/cache"
	"github.com/BrunoNascimento7/Projeto-CRM-Guincho-Oliveira-sub002/internal/models"
	"github.com/BrunoNascimento7/Projeto-CRM-Guincho-Oliveira-sub002/internal/repositories"
)

const userContextKey = "currentUser"

// tokenCacheTTL bounds how long a revoked token keeps working.
const tokenCacheTTL = 5 * time.Minute

// CurrentUser returns the authenticated user set by Auth. It panics if
// the route is not behind the auth middleware.
func CurrentUser(c *gin.Context) *models.User {
	return c.MustGet(userContextKey).(*models.User)
}

// Auth resolves the bearer token to a user, consulting the cache before
// the database.
func Auth(users repositories.UserRepository, redisCache *cache.RedisCache) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token := strings.TrimPrefix(header, "Bearer ")
		if token == "" || token == header {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}

		var user models.User
		cacheKey := cache.UserTokenCacheKey(token)
		if redisCache != nil {
			if err := redisCache.Get(c.Request.Context(), cacheKey, &user); err == nil {
				c.Set(userContextKey, &user)
				c.Next()
				return
			}
		}

		found, err := users.GetByToken(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		if redisCache != nil {
			if err := redisCache.Set(c.Request.Context(), cacheKey, found, tokenCacheTTL); err != nil {
				log.Warn().Err(err).Msg("Failed to cache user token")
			}
		}

		c.Set(userContextKey, found)
		c.Next()
	}
}

// RequireRole rejects users below the given role level.
func RequireRole(min models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentUser(c).Role < min {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "insufficient role"})
			return
		}
		c.Next()
	}
}

// RequestLogger logs one structured line per request.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		event := log.Info()
		if c.Writer.Status() >= http.StatusInternalServerError {
			event = log.Error()
		}
		event.
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Str("client_ip", c.ClientIP()).
			Msg("HTTP request")
	}
}

// CORS answers preflight requests and stamps the allowed origins.
func CORS(origins []string) gin.HandlerFunc {
	allowAll := len(origins) == 0
	allowed := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		if o == "*" {
			allowAll = true
		}
		allowed[o] = struct{}{}
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" {
			if allowAll {
				c.Header("Access-Control-Allow-Origin", "*")
			} else if _, ok := allowed[origin]; ok {
				c.Header("Access-Control-Allow-Origin", origin)
			}
			c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
			c.Header("Access-Control-Allow-Headers", "Authorization, Content-Type")
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
