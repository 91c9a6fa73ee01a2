package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"inmo-backoffice/internal/config"
	"inmo-backoffice/internal/utils"
)

var ErrNotFound = errors.New("record not found")

type SQLProvider struct {
	db *sqlx.DB

	config *config.Storage

	logger *slog.Logger
}

func NewSQLProvider(config *config.Storage, driverName string, dataSource string) (provider *SQLProvider) {
	db, err := sqlx.Open(driverName, dataSource)
	if err != nil {
		return nil
	}

	logger := slog.With("component", "storage")

	return &SQLProvider{
		db:     db,
		config: config,
		logger: logger,
	}
}

func (p *SQLProvider) Close() error {
	if p.db != nil {
		return p.db.Close()
	}
	return nil
}

func now() time.Time {
	return time.Now().UTC()
}

// ---------------------------------------------------------------------------
// Users
// ---------------------------------------------------------------------------

func (p *SQLProvider) GetUserByID(ctx context.Context, id string) (*User, error) {
	var user User
	err := p.db.GetContext(ctx, &user, `SELECT * FROM users WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (p *SQLProvider) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	var user User
	err := p.db.GetContext(ctx, &user, `SELECT * FROM users WHERE email = ?`, strings.ToLower(email))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (p *SQLProvider) ListUsers(ctx context.Context) ([]User, error) {
	users := []User{}
	err := p.db.SelectContext(ctx, &users, `SELECT * FROM users ORDER BY created_at ASC`)
	return users, err
}

func (p *SQLProvider) CreateUser(ctx context.Context, user User) (*User, error) {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.Role == "" {
		user.Role = RoleUser
	}
	user.Email = strings.ToLower(user.Email)
	user.CreatedAt = now()
	user.UpdatedAt = user.CreatedAt

	_, err := p.db.NamedExecContext(ctx, `
		INSERT INTO users (id, email, full_name, avatar_url, role, password_hash,
			google_access_token, google_refresh_token, created_at, updated_at)
		VALUES (:id, :email, :full_name, :avatar_url, :role, :password_hash,
			:google_access_token, :google_refresh_token, :created_at, :updated_at)`, user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// UpsertUser inserts or refreshes a user keyed by ID. Token fields are only
// overwritten when the incoming value is non-nil, so a login without calendar
// consent does not wipe previously granted credentials.
func (p *SQLProvider) UpsertUser(ctx context.Context, user User) (*User, error) {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.Role == "" {
		user.Role = RoleUser
	}
	user.Email = strings.ToLower(user.Email)
	user.CreatedAt = now()
	user.UpdatedAt = user.CreatedAt

	_, err := p.db.NamedExecContext(ctx, `
		INSERT INTO users (id, email, full_name, avatar_url, role, password_hash,
			google_access_token, google_refresh_token, created_at, updated_at)
		VALUES (:id, :email, :full_name, :avatar_url, :role, :password_hash,
			:google_access_token, :google_refresh_token, :created_at, :updated_at)
		ON CONFLICT(id) DO UPDATE SET
			email = excluded.email,
			full_name = COALESCE(excluded.full_name, users.full_name),
			avatar_url = COALESCE(excluded.avatar_url, users.avatar_url),
			google_access_token = COALESCE(excluded.google_access_token, users.google_access_token),
			google_refresh_token = COALESCE(excluded.google_refresh_token, users.google_refresh_token),
			updated_at = excluded.updated_at`, user)
	if err != nil {
		return nil, err
	}
	return p.GetUserByID(ctx, user.ID)
}

func (p *SQLProvider) UpdateUser(ctx context.Context, user User) error {
	user.UpdatedAt = now()
	res, err := p.db.NamedExecContext(ctx, `
		UPDATE users SET email = :email, full_name = :full_name, avatar_url = :avatar_url,
			role = :role, password_hash = :password_hash, updated_at = :updated_at
		WHERE id = :id`, user)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (p *SQLProvider) DeleteUser(ctx context.Context, id string) error {
	res, err := p.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (p *SQLProvider) GetUserTokens(ctx context.Context, userID string) (*string, *string, error) {
	var row struct {
		AccessToken  *string `db:"google_access_token"`
		RefreshToken *string `db:"google_refresh_token"`
	}
	err := p.db.GetContext(ctx, &row,
		`SELECT google_access_token, google_refresh_token FROM users WHERE id = ?`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil, ErrNotFound
	}
	if err != nil {
		return nil, nil, err
	}
	return row.AccessToken, row.RefreshToken, nil
}

func (p *SQLProvider) SaveUserAccessToken(ctx context.Context, userID string, accessToken string) error {
	res, err := p.db.ExecContext(ctx,
		`UPDATE users SET google_access_token = ?, updated_at = ? WHERE id = ?`,
		accessToken, now(), userID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// ---------------------------------------------------------------------------
// Whitelist
// ---------------------------------------------------------------------------

func (p *SQLProvider) IsEmailWhitelisted(ctx context.Context, email string) (bool, error) {
	var active bool
	err := p.db.GetContext(ctx, &active,
		`SELECT is_active FROM whitelist WHERE email = ?`, strings.ToLower(email))
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return active, nil
}

func (p *SQLProvider) ListWhitelist(ctx context.Context) ([]WhitelistEntry, error) {
	entries := []WhitelistEntry{}
	err := p.db.SelectContext(ctx, &entries, `SELECT * FROM whitelist ORDER BY email ASC`)
	return entries, err
}

func (p *SQLProvider) UpsertWhitelistEmail(ctx context.Context, email string, active bool) error {
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO whitelist (id, email, is_active, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(email) DO UPDATE SET is_active = excluded.is_active`,
		uuid.NewString(), strings.ToLower(email), active, now())
	return err
}

// ---------------------------------------------------------------------------
// Contacts
// ---------------------------------------------------------------------------

// contactSearchText builds the folded blob matched by the q parameter.
func contactSearchText(c Contact) string {
	parts := []string{c.Name}
	if c.Phone != nil {
		parts = append(parts, *c.Phone)
	}
	if c.Email != nil {
		parts = append(parts, *c.Email)
	}
	return utils.Fold(strings.Join(parts, " "))
}

const contactColumns = `c.id, c.name, c.phone, c.email, c.notes, c.user_id, c.created_at, c.updated_at,
	(SELECT COUNT(*) FROM visits v WHERE v.client_id = c.id) AS visit_count`

func (p *SQLProvider) ListContacts(ctx context.Context, userID, query string, page, limit int) ([]Contact, int, error) {
	where := `WHERE c.user_id = ?`
	args := []any{userID}

	if query != "" {
		where += ` AND c.search_text LIKE ?`
		args = append(args, "%"+utils.Fold(query)+"%")
	}

	var total int
	if err := p.db.GetContext(ctx, &total,
		`SELECT COUNT(*) FROM contacts c `+where, args...); err != nil {
		return nil, 0, err
	}

	contacts := []Contact{}
	listArgs := append(args, limit, (page-1)*limit)
	err := p.db.SelectContext(ctx, &contacts, fmt.Sprintf(
		`SELECT %s FROM contacts c %s ORDER BY c.created_at DESC LIMIT ? OFFSET ?`,
		contactColumns, where), listArgs...)
	if err != nil {
		return nil, 0, err
	}
	return contacts, total, nil
}

func (p *SQLProvider) GetContact(ctx context.Context, userID, id string) (*Contact, error) {
	var contact Contact
	err := p.db.GetContext(ctx, &contact, fmt.Sprintf(
		`SELECT %s FROM contacts c WHERE c.id = ? AND c.user_id = ?`, contactColumns), id, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &contact, nil
}

func (p *SQLProvider) CreateContact(ctx context.Context, contact Contact) (*Contact, error) {
	if contact.ID == "" {
		contact.ID = uuid.NewString()
	}
	contact.CreatedAt = now()
	contact.UpdatedAt = contact.CreatedAt

	_, err := p.db.ExecContext(ctx, `
		INSERT INTO contacts (id, name, phone, email, notes, user_id, search_text, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		contact.ID, contact.Name, contact.Phone, contact.Email, contact.Notes,
		contact.UserID, contactSearchText(contact), contact.CreatedAt, contact.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &contact, nil
}

func (p *SQLProvider) UpdateContact(ctx context.Context, contact Contact) error {
	contact.UpdatedAt = now()
	res, err := p.db.ExecContext(ctx, `
		UPDATE contacts SET name = ?, phone = ?, email = ?, notes = ?, search_text = ?, updated_at = ?
		WHERE id = ? AND user_id = ?`,
		contact.Name, contact.Phone, contact.Email, contact.Notes,
		contactSearchText(contact), contact.UpdatedAt, contact.ID, contact.UserID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (p *SQLProvider) DeleteContact(ctx context.Context, userID, id string) error {
	res, err := p.db.ExecContext(ctx, `DELETE FROM contacts WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// ---------------------------------------------------------------------------
// Properties
// ---------------------------------------------------------------------------

func (p *SQLProvider) ListProperties(ctx context.Context, userID string, page, limit int) ([]Property, int, error) {
	var total int
	if err := p.db.GetContext(ctx, &total,
		`SELECT COUNT(*) FROM properties WHERE user_id = ?`, userID); err != nil {
		return nil, 0, err
	}

	properties := []Property{}
	err := p.db.SelectContext(ctx, &properties,
		`SELECT * FROM properties WHERE user_id = ? ORDER BY created_at DESC LIMIT ? OFFSET ?`,
		userID, limit, (page-1)*limit)
	if err != nil {
		return nil, 0, err
	}
	return properties, total, nil
}

func (p *SQLProvider) GetProperty(ctx context.Context, userID, id string) (*Property, error) {
	var property Property
	err := p.db.GetContext(ctx, &property,
		`SELECT * FROM properties WHERE id = ? AND user_id = ?`, id, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &property, nil
}

func (p *SQLProvider) CreateProperty(ctx context.Context, property Property) (*Property, error) {
	if property.ID == "" {
		property.ID = uuid.NewString()
	}
	if property.Status == "" {
		property.Status = PropertyStatusActive
	}
	property.CreatedAt = now()
	property.UpdatedAt = property.CreatedAt

	_, err := p.db.NamedExecContext(ctx, `
		INSERT INTO properties (id, address, city, zone, type, status, user_id, created_at, updated_at)
		VALUES (:id, :address, :city, :zone, :type, :status, :user_id, :created_at, :updated_at)`, property)
	if err != nil {
		return nil, err
	}
	return &property, nil
}

func (p *SQLProvider) UpdateProperty(ctx context.Context, property Property) error {
	property.UpdatedAt = now()
	res, err := p.db.NamedExecContext(ctx, `
		UPDATE properties SET address = :address, city = :city, zone = :zone,
			type = :type, status = :status, updated_at = :updated_at
		WHERE id = :id AND user_id = :user_id`, property)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (p *SQLProvider) DeleteProperty(ctx context.Context, userID, id string) error {
	res, err := p.db.ExecContext(ctx, `DELETE FROM properties WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// ---------------------------------------------------------------------------
// Visits
// ---------------------------------------------------------------------------

func (p *SQLProvider) ListVisits(ctx context.Context, userID string, page, limit int) ([]Visit, int, error) {
	var total int
	if err := p.db.GetContext(ctx, &total,
		`SELECT COUNT(*) FROM visits WHERE user_id = ?`, userID); err != nil {
		return nil, 0, err
	}

	visits := []Visit{}
	err := p.db.SelectContext(ctx, &visits,
		`SELECT * FROM visits WHERE user_id = ? ORDER BY date ASC, start_time ASC LIMIT ? OFFSET ?`,
		userID, limit, (page-1)*limit)
	if err != nil {
		return nil, 0, err
	}
	return visits, total, nil
}

func (p *SQLProvider) GetVisit(ctx context.Context, userID, id string) (*Visit, error) {
	var visit Visit
	err := p.db.GetContext(ctx, &visit,
		`SELECT * FROM visits WHERE id = ? AND user_id = ?`, id, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &visit, nil
}

func (p *SQLProvider) CreateVisit(ctx context.Context, visit Visit) (*Visit, error) {
	if visit.ID == "" {
		visit.ID = uuid.NewString()
	}
	if visit.Type == "" {
		visit.Type = VisitTypeShowing
	}
	visit.CreatedAt = now()
	visit.UpdatedAt = visit.CreatedAt

	_, err := p.db.NamedExecContext(ctx, `
		INSERT INTO visits (id, title, description, date, start_time, end_time, type,
			property_id, client_id, google_event_id, user_id, created_at, updated_at)
		VALUES (:id, :title, :description, :date, :start_time, :end_time, :type,
			:property_id, :client_id, :google_event_id, :user_id, :created_at, :updated_at)`, visit)
	if err != nil {
		return nil, err
	}
	return &visit, nil
}

// UpdateVisit never touches google_event_id: the remote link is assigned once
// at creation and only goes away with the row itself.
func (p *SQLProvider) UpdateVisit(ctx context.Context, visit Visit) error {
	visit.UpdatedAt = now()
	res, err := p.db.NamedExecContext(ctx, `
		UPDATE visits SET title = :title, description = :description, date = :date,
			start_time = :start_time, end_time = :end_time, type = :type,
			property_id = :property_id, client_id = :client_id, updated_at = :updated_at
		WHERE id = :id AND user_id = :user_id`, visit)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (p *SQLProvider) DeleteVisit(ctx context.Context, userID, id string) error {
	res, err := p.db.ExecContext(ctx, `DELETE FROM visits WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// ---------------------------------------------------------------------------
// Dashboard aggregates
// ---------------------------------------------------------------------------

func (p *SQLProvider) CountContacts(ctx context.Context, userID string) (int, error) {
	var count int
	err := p.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM contacts WHERE user_id = ?`, userID)
	return count, err
}

func (p *SQLProvider) CountPropertiesByStatus(ctx context.Context, userID, status string) (int, error) {
	var count int
	err := p.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM properties WHERE user_id = ? AND status = ?`, userID, status)
	return count, err
}

func (p *SQLProvider) CountVisitsOnDate(ctx context.Context, userID, date string) (int, error) {
	var count int
	err := p.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM visits WHERE user_id = ? AND date = ?`, userID, date)
	return count, err
}

func (p *SQLProvider) ListUpcomingVisits(ctx context.Context, userID, fromDate string, limit int) ([]Visit, error) {
	visits := []Visit{}
	err := p.db.SelectContext(ctx, &visits,
		`SELECT * FROM visits WHERE user_id = ? AND date >= ?
		 ORDER BY date ASC, start_time ASC LIMIT ?`,
		userID, fromDate, limit)
	return visits, err
}

// ---------------------------------------------------------------------------
// Nonces
// ---------------------------------------------------------------------------

func (p *SQLProvider) CreateNonce(ctx context.Context, nonce string, expiresAt time.Time) error {
	_, err := p.db.ExecContext(ctx,
		`INSERT INTO nonces (nonce, expires_at) VALUES (?, ?)`, nonce, expiresAt)
	return err
}

func (p *SQLProvider) ExistsNonce(ctx context.Context, nonce string) (bool, error) {
	var count int
	err := p.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM nonces WHERE nonce = ? AND expires_at > ?`, nonce, now())
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (p *SQLProvider) ConsumeNonce(ctx context.Context, nonce string) (bool, error) {
	res, err := p.db.ExecContext(ctx, `DELETE FROM nonces WHERE nonce = ?`, nonce)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (p *SQLProvider) ExpireNonces(ctx context.Context, nowTime time.Time) error {
	_, err := p.db.ExecContext(ctx, `DELETE FROM nonces WHERE expires_at <= ?`, nowTime)
	return err
}

// ---------------------------------------------------------------------------

func requireRow(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
