package middleware

import (
	"context"
	"net/http"
	"strings"

	"job-board-api/auth"
	"job-board-api/models"
	"job-board-api/services"

	"github.com/gin-gonic/gin"
)

const identityKey = "identity"

// IdentityLoader resolves the current identity for a verified user id.
type IdentityLoader func(ctx context.Context, userID uint) (services.Identity, error)

// AuthMiddleware validates the bearer token and stores the caller identity.
// Browsers cannot set headers on websocket upgrades, so a "token" query
// parameter is accepted when allowQueryToken is set.
func AuthMiddleware(tokens *auth.TokenManager, load IdentityLoader, allowQueryToken bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, ok := bearerToken(c, allowQueryToken)
		if !ok {
			return
		}

		claims, err := tokens.Parse(tokenString)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			c.Abort()
			return
		}

		// Check if user still exists; role and name come from the row, not the token
		identity, err := load(c.Request.Context(), claims.UserID)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
			c.Abort()
			return
		}

		c.Set(identityKey, identity)
		c.Set("userID", identity.UserID)
		c.Set("role", identity.Role)

		c.Next()
	}
}

func bearerToken(c *gin.Context, allowQueryToken bool) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		if allowQueryToken {
			if t := strings.TrimSpace(c.Query("token")); t != "" {
				return t, true
			}
		}
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is required"})
		c.Abort()
		return "", false
	}

	// Check Bearer prefix
	tokenString := strings.TrimPrefix(authHeader, "Bearer ")
	if tokenString == authHeader || strings.TrimSpace(tokenString) == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization header format"})
		c.Abort()
		return "", false
	}
	return strings.TrimSpace(tokenString), true
}

// CurrentIdentity returns the identity stored by AuthMiddleware.
func CurrentIdentity(c *gin.Context) (services.Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return services.Identity{}, false
	}
	id, ok := v.(services.Identity)
	return id, ok && id.UserID != 0
}

// RequireRole checks if user has specific role
func RequireRole(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := CurrentIdentity(c)
		if !ok {
			c.JSON(http.StatusForbidden, gin.H{"error": "Role not found"})
			c.Abort()
			return
		}

		allowed := false
		for _, role := range roles {
			if identity.Role == role {
				allowed = true
				break
			}
		}

		if !allowed {
			c.JSON(http.StatusForbidden, gin.H{"error": "Insufficient permissions"})
			c.Abort()
			return
		}

		c.Next()
	}
}
