package middleware

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/simorakkaus/tarologist/internal/auth"
	"github.com/simorakkaus/tarologist/internal/config"
	"github.com/simorakkaus/tarologist/internal/logger"
	"github.com/simorakkaus/tarologist/internal/models"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

type rateLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

var (
	clients = make(map[string]*rateLimiter)
	mu      sync.Mutex
)

func RateLimit(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Skip rate limiting in development mode
		if cfg.IsDevelopment() {
			c.Next()
			return
		}

		ip := c.ClientIP()

		mu.Lock()
		defer mu.Unlock()

		if limiter, exists := clients[ip]; exists {
			limiter.lastSeen = time.Now()
			if !limiter.limiter.Allow() {
				c.JSON(http.StatusTooManyRequests, gin.H{"error": "Rate limit exceeded"})
				c.Abort()
				return
			}
		} else {
			clients[ip] = &rateLimiter{
				limiter:  rate.NewLimiter(rate.Every(time.Second/20), 20),
				lastSeen: time.Now(),
			}
		}

		cleanupOldClients()
		c.Next()
	}
}

// AuthRateLimit throttles the credential endpoints much harder than the
// rest of the API.
func AuthRateLimit(cfg *config.Config) gin.HandlerFunc {
	authClients := make(map[string]*rateLimiter)
	var authMu sync.Mutex

	return func(c *gin.Context) {
		if cfg.IsDevelopment() {
			c.Next()
			return
		}

		ip := c.ClientIP()

		authMu.Lock()
		defer authMu.Unlock()

		if limiter, exists := authClients[ip]; exists {
			limiter.lastSeen = time.Now()
			if !limiter.limiter.Allow() {
				c.JSON(http.StatusTooManyRequests, gin.H{"error": "Authentication rate limit exceeded"})
				c.Abort()
				return
			}
		} else {
			authClients[ip] = &rateLimiter{
				limiter:  rate.NewLimiter(rate.Every(time.Minute), 5),
				lastSeen: time.Now(),
			}
		}

		for ip, client := range authClients {
			if time.Since(client.lastSeen) > 30*time.Minute {
				delete(authClients, ip)
			}
		}

		c.Next()
	}
}

func cleanupOldClients() {
	for ip, client := range clients {
		if time.Since(client.lastSeen) > 10*time.Minute {
			delete(clients, ip)
		}
	}
}

func CORS(allowedOrigins string) gin.HandlerFunc {
	origins := strings.Split(allowedOrigins, ",")
	for i := range origins {
		origins[i] = strings.TrimSpace(origins[i])
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		allowed := false
		for _, allowedOrigin := range origins {
			if origin == allowedOrigin {
				allowed = true
				break
			}
		}

		if allowed {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			c.Header("Access-Control-Allow-Headers", "Authorization, Content-Type")
			c.Header("Access-Control-Allow-Credentials", "true")
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

func SecurityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Next()
	}
}

func LogRequests() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("Request handled",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start))
	}
}

// bearerToken extracts the opaque auth token from the Authorization header.
func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	// SSE clients cannot set headers from EventSource, so the token may
	// arrive as a query parameter instead.
	return c.Query("token")
}

// resolveUser turns the request's bearer token into a user, aborting with
// 401 on failure. The user and token land in the gin context on success.
func resolveUser(c *gin.Context, authService *auth.Service) (*models.User, bool) {
	token := bearerToken(c)
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": auth.UserMessage(auth.ErrUnauthenticated)})
		c.Abort()
		return nil, false
	}

	user, err := authService.CurrentUser(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": auth.UserMessage(err)})
		c.Abort()
		return nil, false
	}

	c.Set("user", user)
	c.Set("token", token)
	return user, true
}

// AuthRequired resolves the bearer token to a user and aborts with 401 when
// it cannot.
func AuthRequired(authService *auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := resolveUser(c, authService); !ok {
			return
		}
		c.Next()
	}
}

// AdminRequired additionally checks the admin flag; moderation endpoints
// live behind it.
func AdminRequired(authService *auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := resolveUser(c, authService)
		if !ok {
			return
		}
		if !user.IsAdmin {
			c.JSON(http.StatusForbidden, gin.H{"error": "Доступ запрещен"})
			c.Abort()
			return
		}

		c.Next()
	}
}
