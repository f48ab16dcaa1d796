package ports

import (
	"context"

	"github.com/literaryvoice/literary-voice/internal/core/domain"
)

// TransactionRepository persists the ledger audit trail.
type TransactionRepository interface {
	Insert(ctx context.Context, tx *domain.Transaction) error
	ListByAccount(ctx context.Context, accountID string, limit int64) ([]domain.Transaction, error)
}
