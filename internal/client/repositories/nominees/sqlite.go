package nominees

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/crux/internal/client/models"
	"github.com/dmitrijs2005/crux/internal/common"
	"github.com/dmitrijs2005/crux/internal/dbx"
)

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Insert(ctx context.Context, n *models.Nominee) error {
	query := `INSERT INTO nominees (id, email, relationship, created_at, seq)
		SELECT ?, ?, ?, ?, next FROM (SELECT COALESCE(MAX(seq), 0) + 1 AS next FROM nominees)
		WHERE NOT EXISTS (SELECT 1 FROM nominees WHERE email = ?)`

	res, err := r.db.ExecContext(ctx, query, n.ID, n.Email, string(n.Relationship), n.CreatedAt.Unix(), n.Email)
	if err != nil {
		return fmt.Errorf("failed to insert nominee: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("nominee %s: %w", n.Email, common.ErrorAlreadyExists)
	}
	return nil
}

func (r *SQLiteRepository) GetAll(ctx context.Context) ([]models.Nominee, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, email, relationship, created_at FROM nominees ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("failed to select nominees: %w", err)
	}
	defer rows.Close()

	var result []models.Nominee
	for rows.Next() {
		var (
			n       models.Nominee
			rel     string
			created int64
		)
		if err := rows.Scan(&n.ID, &n.Email, &rel, &created); err != nil {
			return nil, fmt.Errorf("failed to scan nominee: %w", err)
		}
		n.Relationship = models.Relationship(rel)
		n.CreatedAt = time.Unix(created, 0).UTC()
		result = append(result, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate nominees: %w", err)
	}
	return result, nil
}

func (r *SQLiteRepository) DeleteByEmail(ctx context.Context, email string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM nominees WHERE email = ?`, strings.TrimSpace(email))
	if err != nil {
		return fmt.Errorf("failed to delete nominee: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("nominee %s: %w", email, common.ErrorNotFound)
	}
	return nil
}
