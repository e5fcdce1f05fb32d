package middleware

import (
	"net/http"

	"github.com/docsmedbilling/credentialing-helpdesk/internal/models"
	"github.com/docsmedbilling/credentialing-helpdesk/internal/services"
	"github.com/gin-gonic/gin"
)

// SessionCookieName is the name of the login session cookie.
const SessionCookieName = "helpdesk_session"

// SessionAuth validates the session cookie against the session store and
// populates the request context with the authenticated user.
//
// Context keys set on success: userID (uint), userRole (string),
// currentUser (*models.User), sessionToken (string).
func SessionAuth(sessions services.SessionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(SessionCookieName)
		if err != nil || token == "" {
			respondUnauthorized(c, models.ErrUnauthorized, "Missing session cookie. Please log in.")
			return
		}

		session, err := sessions.GetSession(token)
		if err != nil {
			respondUnauthorized(c, models.ErrSessionExpired, "Session is invalid or expired. Please log in again.")
			return
		}

		c.Set("userID", session.UserID)
		c.Set("userRole", session.User.Role)
		c.Set("currentUser", &session.User)
		c.Set("sessionToken", session.Token)

		c.Next()
	}
}

func respondUnauthorized(c *gin.Context, code, message string) {
	c.JSON(http.StatusUnauthorized, models.NewAPIError(code, message))
	c.Abort()
}

// CurrentUser returns the authenticated user set by SessionAuth.
func CurrentUser(c *gin.Context) (*models.User, bool) {
	value, exists := c.Get("currentUser")
	if !exists {
		return nil, false
	}
	user, ok := value.(*models.User)
	return user, ok
}
