package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/techasish/accountd/internal/common"
	"github.com/techasish/accountd/internal/server/auth"
)

const userIDKey = "userID"

// requireSession authenticates the request from the session cookie and stores
// the user id for downstream handlers.
func (s *Server) requireSession(c *gin.Context) {
	token, err := c.Cookie(common.SessionCookieName)
	if err != nil || token == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized,
			gin.H{"success": false, "message": "Not authorized. Login again."})
		return
	}

	userID, err := auth.GetUserIDFromToken(token, s.secret)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized,
			gin.H{"success": false, "message": "Not authorized. Login again."})
		return
	}

	c.Set(userIDKey, userID)
	c.Next()
}

func sessionUserID(c *gin.Context) string {
	return c.GetString(userIDKey)
}
