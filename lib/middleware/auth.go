package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/karthikdoguparthi/KisaanGrow/internal/auth"
	"github.com/karthikdoguparthi/KisaanGrow/internal/i18n"
	"github.com/karthikdoguparthi/KisaanGrow/internal/models"
	"github.com/karthikdoguparthi/KisaanGrow/internal/session"
)

const (
	ClaimsKey  = "claims"
	SessionKey = "session"
)

// Lang picks the response language: lang query parameter, then the session
// language, then Accept-Language.
func Lang(c *gin.Context) string {
	var sessLang string
	if s := Session(c); s != nil {
		sessLang = s.Lang
	}
	return i18n.Resolve(c.GetHeader("Accept-Language"), c.Query("lang"), sessLang)
}

// Session returns the session set by AuthMiddleware, or nil.
func Session(c *gin.Context) *models.Session {
	v, ok := c.Get(SessionKey)
	if !ok {
		return nil
	}
	s, _ := v.(*models.Session)
	return s
}

func abort(c *gin.Context, status int, key string) {
	c.AbortWithStatusJSON(status, gin.H{"error": i18n.T(Lang(c), key)})
}

// bearerToken reads the Authorization header, falling back to the token
// query parameter for websocket clients that cannot set headers.
func bearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		if t := c.Query("token"); t != "" {
			return t, true
		}
		return "", false
	}
	tokenString := strings.TrimPrefix(authHeader, "Bearer ")
	return tokenString, tokenString != authHeader
}

// AuthMiddleware validates the bearer token and loads the session it names.
// Sessions idle for longer than the store's window are rejected.
func AuthMiddleware(secret string, sessions session.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, ok := bearerToken(c)
		if !ok {
			abort(c, http.StatusUnauthorized, "session_expired")
			return
		}

		claims, err := auth.ValidateToken(tokenString, secret)
		if err != nil {
			abort(c, http.StatusUnauthorized, "session_expired")
			return
		}

		sess, err := sessions.Get(c.Request.Context(), claims.SessionID)
		if err != nil {
			if !errors.Is(err, session.ErrNotFound) {
				slog.Error("session lookup", slog.Any("error", err))
			}
			abort(c, http.StatusUnauthorized, "session_expired")
			return
		}
		if sess.Role != claims.Role {
			abort(c, http.StatusUnauthorized, "session_expired")
			return
		}

		c.Set(ClaimsKey, claims)
		c.Set(SessionKey, sess)
		c.Next()
	}
}

// RequireRole lets through sessions holding one of roles.
func RequireRole(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := Session(c)
		if sess == nil {
			abort(c, http.StatusUnauthorized, "session_expired")
			return
		}
		if !slices.Contains(roles, sess.Role) {
			abort(c, http.StatusForbidden, "access_denied")
			return
		}
		c.Next()
	}
}
