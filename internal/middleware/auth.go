package middleware

import (
	"net/http"
	"strings"

	"github.com/gamepool/backend/internal/models"
	"github.com/gamepool/backend/internal/utils"
	"github.com/gin-gonic/gin"
)

const (
	ContextMemberID   = "member_id"
	ContextMemberName = "member_name"
	ContextRole       = "role"
)

// AuthRequired checks for a valid JWT token and puts the member's identity in
// the request context. Core services receive an already-authorized actor ID;
// this is the capability check that happens before them.
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authorization header required"})
			c.Abort()
			return
		}

		// Extract token from "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization header format"})
			c.Abort()
			return
		}

		claims, err := utils.ParseToken(parts[1])
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			c.Abort()
			return
		}

		c.Set(ContextMemberID, claims.UserID)
		c.Set(ContextMemberName, claims.Username)
		c.Set(ContextRole, claims.Role)

		c.Next()
	}
}

// AdminRequired gates operator-only routes: deposits, winner selection,
// proposal deletion and settlement.
func AdminRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get(ContextRole)
		if !exists || role != models.RoleAdmin {
			c.JSON(http.StatusForbidden, gin.H{"error": "administrator access required"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// GetMemberID gets the current member ID from context.
func GetMemberID(c *gin.Context) uint {
	if id, exists := c.Get(ContextMemberID); exists {
		return id.(uint)
	}
	return 0
}

// GetMemberName gets the current member name from context.
func GetMemberName(c *gin.Context) string {
	if name, exists := c.Get(ContextMemberName); exists {
		return name.(string)
	}
	return ""
}

// GetRole gets the current member role from context.
func GetRole(c *gin.Context) string {
	if role, exists := c.Get(ContextRole); exists {
		return role.(string)
	}
	return ""
}
