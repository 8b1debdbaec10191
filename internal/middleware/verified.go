package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/pulsefeed/backend/internal/models"
)

// RequireEmailVerification blocks users who have not confirmed their
// address yet. Verification status is read from the database so a user
// verified after login is not stuck behind a stale token.
func RequireEmailVerification(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := CurrentUserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			c.Abort()
			return
		}

		var user models.User
		if err := db.Where("id = ?", userID).First(&user).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to verify user status"})
			c.Abort()
			return
		}

		if !user.IsVerified {
			c.JSON(http.StatusForbidden, gin.H{
				"error":   "email verification required",
				"message": "Please verify your email address to access this feature",
				"email":   user.Email,
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
