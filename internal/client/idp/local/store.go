package local

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/crux/internal/common"
	"github.com/dmitrijs2005/crux/internal/dbx"
)

// CodeKind separates the one-time codes a user can hold at the same time.
type CodeKind string

const (
	CodeSignup CodeKind = "signup"
	CodeMFA    CodeKind = "mfa"
	CodeReset  CodeKind = "reset"
)

type user struct {
	ID         string
	Username   string
	Email      string
	Phone      string
	Name       string
	FirstName  string
	LastName   string
	Role       string
	Salt       []byte
	Verifier   []byte
	Confirmed  bool
	MFAEnabled bool
	CreatedAt  time.Time
}

type code struct {
	UserID    string
	Kind      CodeKind
	Hash      []byte
	ExpiresAt time.Time
	Attempts  int
}

// store is the SQLite repository behind the provider. Build it on a *sql.DB
// or on the tx handed out by dbx.WithTx.
type store struct {
	db dbx.DBTX
}

func newStore(db dbx.DBTX) *store {
	return &store{db: db}
}

const userColumns = `id, username, email, phone, name, first_name, last_name, role, salt, verifier, confirmed, mfa_enabled, created_at`

func scanUser(row *sql.Row) (*user, error) {
	var (
		u         user
		createdAt int64
	)
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.Phone, &u.Name, &u.FirstName, &u.LastName,
		&u.Role, &u.Salt, &u.Verifier, &u.Confirmed, &u.MFAEnabled, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}
	u.CreatedAt = time.Unix(createdAt, 0).UTC()
	return &u, nil
}

// findUser resolves identity against the username first, then the phone
// number, so codes can be confirmed with either.
func (s *store) findUser(ctx context.Context, identity string) (*user, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users
		WHERE username = ? OR (phone <> '' AND phone = ?)
		ORDER BY CASE WHEN username = ? THEN 0 ELSE 1 END
		LIMIT 1`, identity, identity, identity)
	return scanUser(row)
}

func (s *store) exists(ctx context.Context, username, phone string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users
		WHERE username = ? OR (? <> '' AND phone = ?)`, username, phone, phone).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("failed to check user: %w", err)
	}
	return n > 0, nil
}

func (s *store) createUser(ctx context.Context, u *user) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO users (`+userColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Username, u.Email, u.Phone, u.Name, u.FirstName, u.LastName, u.Role,
		u.Salt, u.Verifier, u.Confirmed, u.MFAEnabled, u.CreatedAt.Unix())
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (s *store) setConfirmed(ctx context.Context, userID string) error {
	return s.exec(ctx, `UPDATE users SET confirmed = 1 WHERE id = ?`, userID)
}

func (s *store) setMFA(ctx context.Context, userID string, enabled bool) error {
	return s.exec(ctx, `UPDATE users SET mfa_enabled = ? WHERE id = ?`, enabled, userID)
}

func (s *store) setPassword(ctx context.Context, userID string, salt, verifier []byte) error {
	return s.exec(ctx, `UPDATE users SET salt = ?, verifier = ? WHERE id = ?`, salt, verifier, userID)
}

func (s *store) putCode(ctx context.Context, c *code) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO codes (user_id, kind, code_hash, expires_at, attempts) VALUES (?, ?, ?, ?, 0)
		ON CONFLICT(user_id, kind) DO UPDATE SET
			code_hash = excluded.code_hash, expires_at = excluded.expires_at, attempts = 0`,
		c.UserID, string(c.Kind), c.Hash, c.ExpiresAt.Unix())
	if err != nil {
		return fmt.Errorf("failed to store %s code: %w", c.Kind, err)
	}
	return nil
}

func (s *store) getCode(ctx context.Context, userID string, kind CodeKind) (*code, error) {
	var (
		c       = code{UserID: userID, Kind: kind}
		expires int64
	)
	err := s.db.QueryRowContext(ctx, `SELECT code_hash, expires_at, attempts FROM codes
		WHERE user_id = ? AND kind = ?`, userID, string(kind)).Scan(&c.Hash, &expires, &c.Attempts)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get %s code: %w", kind, err)
	}
	c.ExpiresAt = time.Unix(expires, 0).UTC()
	return &c, nil
}

func (s *store) incrementAttempts(ctx context.Context, userID string, kind CodeKind) error {
	return s.exec(ctx, `UPDATE codes SET attempts = attempts + 1 WHERE user_id = ? AND kind = ?`, userID, string(kind))
}

func (s *store) deleteCode(ctx context.Context, userID string, kind CodeKind) error {
	return s.exec(ctx, `DELETE FROM codes WHERE user_id = ? AND kind = ?`, userID, string(kind))
}

func (s *store) exec(ctx context.Context, query string, args ...any) error {
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to update: %w", err)
	}
	return nil
}

// signingKey returns the secret stored under name, creating it from gen on
// first use. The insert is a no-op when another process got there first.
func (s *store) signingKey(ctx context.Context, name string, gen func() []byte) ([]byte, error) {
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO signing_keys (name, secret) VALUES (?, ?) ON CONFLICT (name) DO NOTHING`,
		name, gen()); err != nil {
		return nil, fmt.Errorf("failed to store signing key: %w", err)
	}
	var secret []byte
	if err := s.db.QueryRowContext(ctx, `SELECT secret FROM signing_keys WHERE name = ?`, name).Scan(&secret); err != nil {
		return nil, fmt.Errorf("failed to read signing key: %w", err)
	}
	return secret, nil
}
