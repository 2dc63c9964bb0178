package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// SessionCookieName identifies an anonymous shopping session. The value is
	// an opaque UUID, stable for as long as the browser keeps the cookie.
	SessionCookieName = "bookworm_session"

	sessionCookieMaxAge = 7 * 24 * 60 * 60 // seconds

	// ContextHolderID is where downstream handlers find the resolved holder.
	ContextHolderID = "holder_id"
)

// HolderIdentity resolves the reservation holder for the request: the
// authenticated user ID when a valid JWT was processed upstream, otherwise a
// generated session ID persisted in a cookie. Every cart and inventory
// handler reads the holder from here; nothing else mints holder IDs.
func HolderIdentity() gin.HandlerFunc {
	return func(c *gin.Context) {
		if userID, exists := c.Get("user_id"); exists {
			if id, ok := userID.(string); ok && id != "" {
				c.Set(ContextHolderID, id)
				c.Next()
				return
			}
		}

		sessionID, err := c.Cookie(SessionCookieName)
		if err != nil || sessionID == "" {
			sessionID = "session_" + uuid.New().String()
			c.SetCookie(SessionCookieName, sessionID, sessionCookieMaxAge, "/", "", false, true)
		}

		c.Set(ContextHolderID, sessionID)
		c.Next()
	}
}

// HolderID extracts the resolved holder identity from the request context.
func HolderID(c *gin.Context) string {
	if v, exists := c.Get(ContextHolderID); exists {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}
