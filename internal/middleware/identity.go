package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"shopcart/internal/auth"
	"shopcart/internal/cart"
)

const (
	identityKey       = "identity"
	sessionCookieName = "cart_session"
)

// Identify resolves the caller once per request: a valid Bearer token yields
// an authenticated identity, everything else an anonymous session identity
// backed by a cookie. Handlers read the result via IdentityFrom instead of
// touching auth state themselves.
func Identify(jwtSecret string, sessionTTL time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if strings.HasPrefix(header, "Bearer ") {
			token := strings.TrimPrefix(header, "Bearer ")
			if claims, err := auth.ParseToken(jwtSecret, token); err == nil {
				userID := claims.UserID
				c.Set(identityKey, cart.Identity{UserID: &userID})
				c.Next()
				return
			}
			// Invalid tokens fall through to an anonymous session rather
			// than failing the request; protected routes check later.
		}

		sid, err := c.Cookie(sessionCookieName)
		if err != nil || sid == "" {
			sid = uuid.NewString()
			c.SetCookie(sessionCookieName, sid, int(sessionTTL.Seconds()), "/", "", false, true)
		}
		c.Set(identityKey, cart.Identity{SessionID: sid})
		c.Next()
	}
}

// IdentityFrom returns the identity resolved by Identify.
func IdentityFrom(c *gin.Context) cart.Identity {
	if v, ok := c.Get(identityKey); ok {
		if id, ok := v.(cart.Identity); ok {
			return id
		}
	}
	return cart.Identity{}
}
