package auth

import (
	"net/http"
	"strings"

	"github.com/EdwinEstrella/ironcore-gym/internal/api"

	"github.com/gin-gonic/gin"
)

const (
	ctxUserID = "user_id"
	ctxGymID  = "gym_id"
	ctxEmail  = "user_email"
	ctxRole   = "user_role"
)

// AuthMiddleware admits requests carrying a valid access token bound to a gym.
func AuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			api.Unauthorized(c)
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.TrimSpace(parts[0]) != "Bearer" {
			api.Unauthorized(c)
			return
		}

		tokenString := strings.TrimSpace(parts[1])
		if tokenString == "" {
			api.Unauthorized(c)
			return
		}

		claims, err := ValidateToken(tokenString, secret)
		if err != nil {
			api.Unauthorized(c)
			return
		}

		if claims.TokenType != tokenTypeAccess || claims.GymID == "" {
			api.Unauthorized(c)
			return
		}

		c.Set(ctxUserID, claims.UserID)
		c.Set(ctxGymID, claims.GymID)
		c.Set(ctxEmail, claims.Email)
		c.Set(ctxRole, claims.Role)

		c.Next()
	}
}

func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := getString(c, ctxRole)
		if !ok {
			api.Unauthorized(c)
			return
		}

		for _, r := range roles {
			if r == role {
				c.Next()
				return
			}
		}

		c.AbortWithStatusJSON(http.StatusForbidden, api.Result{Success: false, Message: "insufficient permissions"})
	}
}

func GetUserID(c *gin.Context) (string, bool) {
	return getString(c, ctxUserID)
}

func GetGymID(c *gin.Context) (string, bool) {
	return getString(c, ctxGymID)
}

func GetRole(c *gin.Context) (string, bool) {
	return getString(c, ctxRole)
}

func getString(c *gin.Context, key string) (string, bool) {
	v, exists := c.Get(key)
	if !exists {
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}
