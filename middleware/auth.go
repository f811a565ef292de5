package middleware

import (
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"car-station-server/database"
	"car-station-server/models"
	"car-station-server/types"
	"car-station-server/utils"
)

// principalKey is the gin context key holding the authenticated principal.
const principalKey = "principal"

// authenticate validates the bearer token and loads the user behind it.
func authenticate(c *gin.Context, tokenString string) (*models.User, bool) {
	claims, err := utils.VerifyToken(tokenString)
	if err != nil {
		log.Printf("Token verification failed: %v", err)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token", "message": "Token is invalid or expired"})
		c.Abort()
		return nil, false
	}

	var user models.User
	if err := database.DB.First(&user, claims.UserID).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found", "message": "User associated with token not found"})
		c.Abort()
		return nil, false
	}

	if !user.IsActive {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User inactive", "message": "User account is deactivated"})
		c.Abort()
		return nil, false
	}

	return &user, true
}

// AuthMiddleware validates JWT tokens and injects the caller's principal
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required", "message": "Please provide a valid token"})
			c.Abort()
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token format", "message": "Token must be in format: Bearer <token>"})
			c.Abort()
			return
		}

		user, ok := authenticate(c, tokenString)
		if !ok {
			return
		}

		c.Set("user", *user)
		c.Set("user_id", user.ID)
		c.Set(principalKey, user.Principal())

		c.Next()
	}
}

// WebSocketAuthMiddleware validates JWT tokens from query parameters for
// WebSocket connections, where clients cannot set an Authorization header.
func WebSocketAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := c.Query("token")
		if tokenString == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Token required", "message": "Please provide a valid token in query parameters"})
			c.Abort()
			return
		}

		user, ok := authenticate(c, tokenString)
		if !ok {
			return
		}

		c.Set("user", *user)
		c.Set("user_id", user.ID)
		c.Set(principalKey, user.Principal())

		c.Next()
	}
}

// GetPrincipal returns the principal set by the auth middlewares.
func GetPrincipal(c *gin.Context) types.Principal {
	if v, ok := c.Get(principalKey); ok {
		if p, ok := v.(types.Principal); ok {
			return p
		}
	}
	return types.Principal{}
}

// AdminOnly rejects callers that are not administrators. Must run after an
// auth middleware.
func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		principal := GetPrincipal(c)
		if !principal.IsAdmin() {
			c.JSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
			c.Abort()
			return
		}
		c.Next()
	}
}
