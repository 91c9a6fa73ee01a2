package storage

import "time"

// Roles a back-office user can hold.
const (
	RoleAdmin  = "admin"
	RoleUser   = "user"
	RoleViewer = "viewer"
)

type User struct {
	ID        string  `db:"id" json:"id"`
	Email     string  `db:"email" json:"email"`
	FullName  *string `db:"full_name" json:"fullName"`
	AvatarURL *string `db:"avatar_url" json:"avatarUrl"`
	Role      string  `db:"role" json:"role"`

	// Argon2id hash; empty for OAuth-only accounts.
	PasswordHash *string `db:"password_hash" json:"-"`

	// Cached Google Calendar credentials. Never exposed over the API.
	GoogleAccessToken  *string `db:"google_access_token" json:"-"`
	GoogleRefreshToken *string `db:"google_refresh_token" json:"-"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// Contact is a client of the agency ("cliente" in the API).
type Contact struct {
	ID     string  `db:"id" json:"id"`
	Name   string  `db:"name" json:"name"`
	Phone  *string `db:"phone" json:"phone"`
	Email  *string `db:"email" json:"email"`
	Notes  *string `db:"notes" json:"notes"`
	UserID string  `db:"user_id" json:"userId"`

	// Derived: number of visits referencing this contact.
	VisitCount int `db:"visit_count" json:"visitCount"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// Property types and statuses ("propiedad" in the API).
const (
	PropertyStatusActive    = "activa"
	PropertyStatusSold      = "vendida"
	PropertyStatusRented    = "alquilada"
	PropertyStatusSuspended = "suspendida"
)

type Property struct {
	ID      string  `db:"id" json:"id"`
	Address string  `db:"address" json:"address"`
	City    *string `db:"city" json:"city"`
	Zone    *string `db:"zone" json:"zone"`
	Type    *string `db:"type" json:"type"`
	Status  string  `db:"status" json:"status"`
	UserID  string  `db:"user_id" json:"userId"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// Visit types ("visita" in the API).
const (
	VisitTypeShowing   = "visita"
	VisitTypeSigning   = "firma"
	VisitTypeAppraisal = "tasacion"
	VisitTypeOther     = "otro"
)

// Visit is a scheduled appointment, optionally linked to a contact and a
// property, and optionally mirrored to the owner's Google Calendar.
type Visit struct {
	ID          string  `db:"id" json:"id"`
	Title       string  `db:"title" json:"title"`
	Description *string `db:"description" json:"description"`

	// Calendar day as ISO date (2026-02-26) and wall-clock times (14:00).
	Date      string `db:"date" json:"date"`
	StartTime string `db:"start_time" json:"startTime"`
	EndTime   string `db:"end_time" json:"endTime"`

	Type       string  `db:"type" json:"type"`
	PropertyID *string `db:"property_id" json:"propertyId"`
	ContactID  *string `db:"client_id" json:"clientId"`

	// Remote calendar event ID. Set at most once, on first successful
	// remote creation; never reassigned.
	GoogleEventID *string `db:"google_event_id" json:"googleEventId"`

	UserID string `db:"user_id" json:"userId"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

type WhitelistEntry struct {
	ID        string    `db:"id" json:"id"`
	Email     string    `db:"email" json:"email"`
	IsActive  bool      `db:"is_active" json:"isActive"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}
