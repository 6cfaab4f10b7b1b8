// Package middleware description is Middleware that checks if the user is an admin.
// file: middleware/admin_required.go
package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go-drop-registry/logger"
)

// AdminRequired lets through principals on the admin allow-list. It must run
// after AuthRequired.
func AdminRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := CurrentPrincipal(c)

		logger.Debug.Printf("AdminRequired Middleware - uid=%q isAdmin=%v", p.UID, p.IsAdmin)

		if !ok || !p.IsAdmin {
			logger.Warn.Printf("AdminRequired Middleware - blocked %q", p.Email)
			c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden", "message": "Administrator access required."})
			c.Abort()
			return
		}

		c.Next()
	}
}
