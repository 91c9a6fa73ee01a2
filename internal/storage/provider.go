package storage

import (
	"context"
	"log/slog"
	"time"

	"inmo-backoffice/internal/config"
)

type Provider interface {
	Close() error
	GetSchemaVersion(ctx context.Context) (int, error)

	// User methods
	GetUserByID(ctx context.Context, id string) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	ListUsers(ctx context.Context) ([]User, error)
	CreateUser(ctx context.Context, user User) (*User, error)
	UpsertUser(ctx context.Context, user User) (*User, error)
	UpdateUser(ctx context.Context, user User) error
	DeleteUser(ctx context.Context, id string) error

	// Calendar token cache. SaveUserAccessToken only touches the access
	// token; the refresh token is never rotated by the sync path.
	GetUserTokens(ctx context.Context, userID string) (accessToken, refreshToken *string, err error)
	SaveUserAccessToken(ctx context.Context, userID string, accessToken string) error

	// Whitelist methods
	IsEmailWhitelisted(ctx context.Context, email string) (bool, error)
	ListWhitelist(ctx context.Context) ([]WhitelistEntry, error)
	UpsertWhitelistEmail(ctx context.Context, email string, active bool) error

	// Contact methods
	ListContacts(ctx context.Context, userID, query string, page, limit int) ([]Contact, int, error)
	GetContact(ctx context.Context, userID, id string) (*Contact, error)
	CreateContact(ctx context.Context, contact Contact) (*Contact, error)
	UpdateContact(ctx context.Context, contact Contact) error
	DeleteContact(ctx context.Context, userID, id string) error

	// Property methods
	ListProperties(ctx context.Context, userID string, page, limit int) ([]Property, int, error)
	GetProperty(ctx context.Context, userID, id string) (*Property, error)
	CreateProperty(ctx context.Context, property Property) (*Property, error)
	UpdateProperty(ctx context.Context, property Property) error
	DeleteProperty(ctx context.Context, userID, id string) error

	// Visit methods
	ListVisits(ctx context.Context, userID string, page, limit int) ([]Visit, int, error)
	GetVisit(ctx context.Context, userID, id string) (*Visit, error)
	CreateVisit(ctx context.Context, visit Visit) (*Visit, error)
	UpdateVisit(ctx context.Context, visit Visit) error
	DeleteVisit(ctx context.Context, userID, id string) error

	// Dashboard aggregates
	CountContacts(ctx context.Context, userID string) (int, error)
	CountPropertiesByStatus(ctx context.Context, userID, status string) (int, error)
	CountVisitsOnDate(ctx context.Context, userID, date string) (int, error)
	ListUpcomingVisits(ctx context.Context, userID, fromDate string, limit int) ([]Visit, error)

	// Nonce methods (session revocation)
	CreateNonce(ctx context.Context, nonce string, expiresAt time.Time) error
	ExistsNonce(ctx context.Context, nonce string) (bool, error)
	ConsumeNonce(ctx context.Context, nonce string) (bool, error)
	ExpireNonces(ctx context.Context, now time.Time) error
}

func NewProvider(config *config.Storage) Provider {
	switch {
	case config.SQLite != nil:
		provider := NewSQLiteProvider(config)
		if provider == nil {
			slog.Error("Failed to open SQLite storage")
			return nil
		}
		if err := provider.runMigrations("sqlite3"); err != nil {
			slog.Error("Failed to run migrations", "error", err)
			return nil
		}
		return provider

	default:
		slog.Error("Unsupported storage configuration", "config", config)
	}

	return nil
}
