package routes

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"inmo-backoffice/internal/config"
	"inmo-backoffice/internal/nonce"
	"inmo-backoffice/internal/storage"
	"inmo-backoffice/internal/utils"
)

// Scope needed to mirror visits to the user's calendar, on top of the
// identity scopes.
const calendarScope = "https://www.googleapis.com/auth/calendar"

const oauthStateTTL = 5 * time.Minute

// NewGoogleOAuth builds the OAuth config for the Google login flow, or nil
// when client credentials are missing.
func NewGoogleOAuth(cfg *config.Config) *oauth2.Config {
	if cfg.Google.ClientID == "" || cfg.Google.ClientSecret == "" {
		return nil
	}
	return &oauth2.Config{
		ClientID:     cfg.Google.ClientID,
		ClientSecret: cfg.Google.ClientSecret,
		Endpoint:     google.Endpoint,
		RedirectURL:  cfg.Google.RedirectURL,
		Scopes: []string{
			"openid",
			"https://www.googleapis.com/auth/userinfo.email",
			"https://www.googleapis.com/auth/userinfo.profile",
			calendarScope,
		},
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// googleUserinfo is the subset of the userinfo response we keep.
type googleUserinfo struct {
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

func AuthRoutes(r *gin.RouterGroup, deps *Deps) {

	// Password login. The whitelist gate applies here too: revoking an
	// email locks the account out even with valid credentials.
	r.POST("/login", func(c *gin.Context) {
		var req loginRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.Email == "" || req.Password == "" {
			AbortWithError(c, ErrInvalidCredentials)
			return
		}

		user, err := deps.Storage.GetUserByEmail(c.Request.Context(), req.Email)
		if errors.Is(err, storage.ErrNotFound) {
			AbortWithError(c, ErrInvalidCredentials)
			return
		}
		if err != nil {
			AbortWithError(c, err)
			return
		}

		if user.PasswordHash == nil {
			// OAuth-only account
			AbortWithError(c, ErrInvalidCredentials)
			return
		}

		ok, err := utils.VerifyPassword(req.Password, *user.PasswordHash)
		if err != nil || !ok {
			AbortWithError(c, ErrInvalidCredentials)
			return
		}

		whitelisted, err := deps.Storage.IsEmailWhitelisted(c.Request.Context(), user.Email)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		if !whitelisted {
			AbortWithError(c, ErrNotWhitelisted)
			return
		}

		if err := NewAuth(c, user); err != nil {
			AbortWithError(c, err)
			return
		}

		slog.Info("User logged in", "user_id", user.ID)
		Ok(c, user, "Sesión iniciada correctamente")
	})

	// Google OAuth consent redirect. Offline access so we receive the
	// refresh token the calendar sync depends on.
	r.GET("/google/login", func(c *gin.Context) {
		if deps.OAuth == nil {
			AbortWithError(c, ErrOAuthNotConfigured)
			return
		}

		state, err := nonce.Nonce(oauthStateTTL)
		if err != nil {
			AbortWithError(c, err)
			return
		}

		url := deps.OAuth.AuthCodeURL(state,
			oauth2.AccessTypeOffline,
			oauth2.SetAuthURLParam("prompt", "consent"))
		c.Redirect(http.StatusFound, url)
	})

	r.GET("/google/callback", func(c *gin.Context) {
		if deps.OAuth == nil {
			AbortWithError(c, ErrOAuthNotConfigured)
			return
		}

		// One-time state check
		if ok, _ := nonce.Store.Consume(c.Request.Context(), c.Query("state")); !ok {
			slog.Warn("OAuth callback with invalid state")
			c.Redirect(http.StatusFound, "/login?error=invalid_state")
			return
		}

		code := c.Query("code")
		if code == "" {
			c.Redirect(http.StatusFound, "/login?error=no_code")
			return
		}

		token, err := deps.OAuth.Exchange(c.Request.Context(), code)
		if err != nil {
			slog.Error("OAuth code exchange failed", "error", err)
			c.Redirect(http.StatusFound, "/login?error=code_exchange_failed")
			return
		}

		info, err := fetchGoogleUserinfo(c.Request.Context(), deps.OAuth, token)
		if err != nil {
			slog.Error("Failed to fetch Google userinfo", "error", err)
			c.Redirect(http.StatusFound, "/login?error=userinfo_failed")
			return
		}

		whitelisted, err := deps.Storage.IsEmailWhitelisted(c.Request.Context(), info.Email)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		if !whitelisted {
			slog.Warn("Login attempt from non-whitelisted email", "email", info.Email)
			c.Redirect(http.StatusFound, "/login?error=not_whitelisted")
			return
		}

		user := storage.User{
			Email:             info.Email,
			GoogleAccessToken: &token.AccessToken,
		}
		if info.Name != "" {
			user.FullName = &info.Name
		}
		if info.Picture != "" {
			user.AvatarURL = &info.Picture
		}
		if token.RefreshToken != "" {
			user.GoogleRefreshToken = &token.RefreshToken
		}

		// Keyed by email: returning users keep their ID and rows.
		if existing, err := deps.Storage.GetUserByEmail(c.Request.Context(), info.Email); err == nil {
			user.ID = existing.ID
		}

		saved, err := deps.Storage.UpsertUser(c.Request.Context(), user)
		if err != nil {
			AbortWithError(c, err)
			return
		}

		if err := NewAuth(c, saved); err != nil {
			AbortWithError(c, err)
			return
		}

		slog.Info("User logged in via Google", "user_id", saved.ID)
		c.Redirect(http.StatusFound, "/dashboard")
	})

	r.POST("/logout", AuthMiddleware(), func(c *gin.Context) {
		AuthLogout(c)
		Ok(c, nil, "Sesión cerrada correctamente")
	})

	r.GET("/status", AuthMiddleware(), func(c *gin.Context) {
		Ok(c, gin.H{
			"authenticated": true,
			"userID":        GetUserID(c),
			"role":          c.GetString("userRole"),
		}, "Sesión activa")
	})
}

func fetchGoogleUserinfo(ctx context.Context, conf *oauth2.Config, token *oauth2.Token) (*googleUserinfo, error) {
	res, err := conf.Client(ctx, token).Get("https://www.googleapis.com/oauth2/v2/userinfo")
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, errors.New("userinfo request failed")
	}

	var info googleUserinfo
	if err := json.NewDecoder(res.Body).Decode(&info); err != nil {
		return nil, err
	}
	if info.Email == "" {
		return nil, errors.New("userinfo response missing email")
	}
	return &info, nil
}
