package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"opensite/api/internal/model"
	"opensite/api/internal/store"
)

// RBACMiddleware gates routes on store permissions. The store re-checks
// every mutation itself; this layer exists to reject early with a clean 403
// before a handler does any work.
type RBACMiddleware struct {
	store *store.Store
}

// NewRBACMiddleware creates an RBAC middleware.
func NewRBACMiddleware(s *store.Store) *RBACMiddleware {
	return &RBACMiddleware{store: s}
}

// RequirePermission checks that the authenticated user's role grants the
// permission.
func (m *RBACMiddleware) RequirePermission(p model.Permission) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get("userID")
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			c.Abort()
			return
		}

		user, err := m.store.UserByID(userID.(uint))
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
			c.Abort()
			return
		}

		if !user.Role.HasPermission(p) {
			c.JSON(http.StatusForbidden, gin.H{
				"error":      "permission denied",
				"permission": string(p),
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

// RequireAnyPermission passes if the user's role grants at least one of the
// permissions.
func (m *RBACMiddleware) RequireAnyPermission(perms ...model.Permission) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get("userID")
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			c.Abort()
			return
		}

		user, err := m.store.UserByID(userID.(uint))
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
			c.Abort()
			return
		}

		for _, p := range perms {
			if user.Role.HasPermission(p) {
				c.Next()
				return
			}
		}

		c.JSON(http.StatusForbidden, gin.H{"error": "permission denied"})
		c.Abort()
	}
}
