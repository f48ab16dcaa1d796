package ports

import (
	"context"

	"github.com/literaryvoice/literary-voice/internal/core/domain"
)

// AccountRepository defines the persistence interface for accounts,
// including the atomic balance mutations the ledger depends on.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) (*domain.Account, error)
	FindByEmail(ctx context.Context, email string) (*domain.Account, error)
	FindByAPIKey(ctx context.Context, apiKey string) (*domain.Account, error)
	RotateAPIKey(ctx context.Context, accountID, newKey string) error

	// DecrementCredits performs a single check-then-decrement: the balance
	// is reduced only when credits >= amount, otherwise
	// domain.ErrInsufficientCredits is returned and nothing changes.
	DecrementCredits(ctx context.Context, accountID string, amount int64) (int64, error)

	// IncrementCredits adds amount to the account identified by email and
	// returns the updated account.
	IncrementCredits(ctx context.Context, email string, amount int64) (*domain.Account, error)
}
