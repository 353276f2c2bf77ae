// Package nominees persists the vault owner's digital nominees in the local
// SQLite database. Listing order is insertion order.
package nominees

import (
	"context"

	"github.com/dmitrijs2005/crux/internal/client/models"
)

type Repository interface {
	// Insert adds n. A nominee with the same email (case-insensitive)
	// yields common.ErrorAlreadyExists.
	Insert(ctx context.Context, n *models.Nominee) error

	// GetAll returns nominees in the order they were added.
	GetAll(ctx context.Context) ([]models.Nominee, error)

	// DeleteByEmail removes the nominee; common.ErrorNotFound if absent.
	DeleteByEmail(ctx context.Context, email string) error
}
