package session

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

const claimsKey = "session.claims"

// SetCookie writes the session cookie, replacing one already queued on
// the response
func (m *Manager) SetCookie(c *gin.Context, token string, expires time.Time) {
	m.dropPendingCookie(c)
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     m.cookieName,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   m.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearCookie expires the session cookie. A renewal queued by Middleware
// earlier in the request is discarded.
func (m *Manager) ClearCookie(c *gin.Context) {
	m.dropPendingCookie(c)
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     m.cookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}

func (m *Manager) dropPendingCookie(c *gin.Context) {
	header := c.Writer.Header()
	prefix := m.cookieName + "="

	kept := header["Set-Cookie"][:0]
	for _, v := range header["Set-Cookie"] {
		if !strings.HasPrefix(v, prefix) {
			kept = append(kept, v)
		}
	}
	if len(kept) == 0 {
		header.Del("Set-Cookie")
		return
	}
	header["Set-Cookie"] = kept
}

// Middleware loads the session from the cookie when one is present and
// renews it. Requests without a valid session pass through anonymously.
func (m *Manager) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(m.cookieName)
		if err != nil || token == "" {
			c.Next()
			return
		}

		renewed, expires, claims, err := m.Renew(c.Request.Context(), token)
		if err != nil {
			c.Next()
			return
		}

		c.Set(claimsKey, claims)
		m.SetCookie(c, renewed, expires)
		c.Next()
	}
}

// FromContext returns the session loaded by Middleware
func FromContext(c *gin.Context) (*Claims, bool) {
	v, ok := c.Get(claimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*Claims)
	return claims, ok && claims != nil
}

// RequireSession rejects anonymous requests with 401
func RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := FromContext(c); !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		c.Next()
	}
}
