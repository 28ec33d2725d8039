package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"backend/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const (
	userIDKey   = "userID"
	userRoleKey = "userRole"
)

// Auth validates the Bearer token and stores the actor on the context.
func Auth(secret string) gin.HandlerFunc {
	key := []byte(secret)

	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "token tidak ditemukan"})
			return
		}
		raw := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))

		token, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return key, nil
		})
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "token tidak valid"})
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "token tidak valid"})
			return
		}

		uid, ok := claims["user_id"].(float64)
		if !ok || uid <= 0 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "token tidak valid"})
			return
		}
		role, _ := claims["role"].(string)

		c.Set(userIDKey, int64(uid))
		c.Set(userRoleKey, role)
		c.Next()
	}
}

// Actor builds the RequestContext stored by Auth.
func Actor(c *gin.Context) domain.RequestContext {
	return domain.RequestContext{
		UserID: c.GetInt64(userIDKey),
		Role:   c.GetString(userRoleKey),
	}
}
