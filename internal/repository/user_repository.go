package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/LeMizoo/bygagoos-api/internal/auth"
	"github.com/LeMizoo/bygagoos-api/internal/model"
)

// UserRepo encapsulates all queries against the 'users' table.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userColumns = "id,first_name,last_name,email,password_hash,role,capabilities,is_active,last_login_at,created_at,updated_at"

// Create inserts a user and returns its ID. The email is normalized to
// lowercase and the password is hashed here so a plaintext password never
// travels further than this call.
func (r *UserRepo) Create(ctx context.Context, firstName, lastName, email, password, role string, caps []string, cost int) (uint64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := auth.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (first_name, last_name, email, password_hash, role, capabilities) VALUES (?,?,?,?,?,?)",
		firstName, lastName, email, hash, role, joinCaps(caps))
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return 0, ErrEmailExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return r.scanOne(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email=? LIMIT 1", email))
}

// GetByID fetches a user by id. It returns sql.ErrNoRows untouched so the
// session middleware can distinguish a vanished user from a store failure.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	return r.scanOne(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id))
}

// TouchLastLogin stamps last_login_at. Called from the login flow only,
// never from session resolution.
func (r *UserRepo) TouchLastLogin(ctx context.Context, id uint64) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET last_login_at=NOW() WHERE id=?", id)
	return err
}

// SetActive flips the account's active flag. Deactivation is a soft
// delete: the row is kept for audit and the next session resolution for
// this user fails even if their token has not expired yet.
func (r *UserRepo) SetActive(ctx context.Context, id uint64, active bool) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET is_active=? WHERE id=?", active, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// SetRole updates a user's role and capability set (admin module).
func (r *UserRepo) SetRole(ctx context.Context, id uint64, role string, caps []string) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET role=?, capabilities=? WHERE id=?", role, joinCaps(caps), id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns all users ordered by creation (admin module).
func (r *UserRepo) List(ctx context.Context) ([]model.User, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+userColumns+" FROM users ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

type rowScanner interface{ Scan(dest ...any) error }

func (r *UserRepo) scanOne(row *sql.Row) (model.User, error) {
	return scanUser(row)
}

func scanUser(s rowScanner) (model.User, error) {
	var (
		u         model.User
		caps      string
		lastLogin sql.NullTime
	)
	err := s.Scan(&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.PasswordHash,
		&u.Role, &caps, &u.IsActive, &lastLogin, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return model.User{}, err
	}
	u.Capabilities = splitCaps(caps)
	if lastLogin.Valid {
		t := lastLogin.Time
		u.LastLoginAt = &t
	}
	return u, nil
}

// joinCaps serializes a capability set for the users.capabilities column.
func joinCaps(caps []string) string {
	var kept []string
	for _, c := range caps {
		c = strings.TrimSpace(c)
		if c != "" {
			kept = append(kept, c)
		}
	}
	return strings.Join(kept, ",")
}

// splitCaps parses the users.capabilities column back into a slice.
func splitCaps(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	var out []string
	for _, c := range strings.Split(s, ",") {
		c = strings.TrimSpace(c)
		if c != "" {
			out = append(out, c)
		}
	}
	return out
}
