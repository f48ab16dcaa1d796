package ports

import (
	"context"

	"github.com/literaryvoice/literary-voice/internal/core/domain"
)

// ChargeInput describes a single billable action.
type ChargeInput struct {
	Amount int64
	Action string
	// IdempotencyKey, when non-empty, makes the charge safe to retry:
	// replaying the same key returns the originally recorded balance
	// without deducting again.
	IdempotencyKey string
}

// ChargeResult reports the outcome of a charge.
type ChargeResult struct {
	Balance  int64
	Replayed bool
}

// GrantInput describes an admin credit top-up.
type GrantInput struct {
	Email    string
	Amount   int64
	AdminKey string
}

type LedgerService interface {
	Balance(ctx context.Context, account *domain.Account) int64
	Charge(ctx context.Context, account *domain.Account, in ChargeInput) (*ChargeResult, error)
	Grant(ctx context.Context, in GrantInput) (int64, error)
	History(ctx context.Context, account *domain.Account, limit int64) ([]domain.Transaction, error)
}
