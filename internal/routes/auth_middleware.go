// Session middleware. A valid session cookie puts the user ID and role into
// the gin context; everything under /api requires it.
package routes

import (
	"context"
	"log/slog"

	"github.com/gin-gonic/gin"

	"inmo-backoffice/internal/jwt"
	"inmo-backoffice/internal/nonce"
	"inmo-backoffice/internal/storage"
)

const AUTH_COOKIE_NAME = "auth_token"

// setAuthCookie sets the session cookie, expiring alongside the token.
func setAuthCookie(c *gin.Context, token string) {
	secure := c.Request.TLS != nil || c.GetHeader("X-Forwarded-Proto") == "https"

	c.SetCookie(
		AUTH_COOKIE_NAME,
		token,
		int(jwt.SessionTTL().Seconds()),
		"/",
		"",
		secure,
		true,
	)
}

// NewAuth issues a fresh session for the user and sets the cookie.
func NewAuth(c *gin.Context, user *storage.User) error {
	claim := jwt.NewAuthClaim(user.ID, user.Role)
	token, err := jwt.GenerateJWT(claim)
	if err != nil {
		return err
	}
	setAuthCookie(c, token)
	return nil
}

func verifyAuth(c *gin.Context) (*jwt.AuthClaim, error) {
	token, err := c.Cookie(AUTH_COOKIE_NAME)
	if err != nil {
		return nil, ErrUnauthorized
	}
	return jwt.DecodeAuthJWT(token)
}

// AuthLogout revokes the session nonce and clears the cookie.
func AuthLogout(c *gin.Context) {
	token, err := c.Cookie(AUTH_COOKIE_NAME)
	if err != nil {
		slog.Warn("AuthLogout: No auth token found to consume nonce", "error", err)
	} else {
		claims, err := jwt.DecodeAuthJWT(token)
		if err == nil {
			nonce.Store.Consume(context.Background(), claims.ID)
		}
	}

	// Clear auth cookie by setting it to expire in the past
	c.SetCookie(
		AUTH_COOKIE_NAME,
		"",
		-1,
		"/",
		"",
		false,
		true,
	)
}

func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := verifyAuth(c)
		if err != nil {
			slog.Debug("AuthMiddleware: Invalid or missing auth token", "error", err)
			AbortWithError(c, ErrUnauthorized)
			return
		}

		c.Set("userID", claims.UserID)
		c.Set("userRole", claims.Role)
		c.Next()
	}
}

// RequireAdmin limits a route to admin users. Must run after AuthMiddleware.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString("userRole") != storage.RoleAdmin {
			AbortWithError(c, ErrForbidden)
			return
		}
		c.Next()
	}
}

// GetUserID returns the authenticated user ID from the context.
func GetUserID(c *gin.Context) string {
	return c.GetString("userID")
}
