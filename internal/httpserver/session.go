package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	sessionCookie = "storefront_session"
	sessionCtxKey = "sessionID"
)

// sessionMiddleware resolves the shopper's session id from its cookie,
// issuing a fresh one when the cookie is absent or not a UUID. The cookie
// has no Max-Age, so it lives for the browser session only; the stored cart
// slot expires server-side on its own TTL.
func sessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := c.Cookie(sessionCookie)
		if err != nil || uuid.Validate(id) != nil {
			id = uuid.NewString()
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(sessionCookie, id, 0, "/", "", false, true)
		}
		c.Set(sessionCtxKey, id)
		c.Next()
	}
}

func sessionID(c *gin.Context) string {
	return c.GetString(sessionCtxKey)
}
