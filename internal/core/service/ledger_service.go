package service

import (
	"context"
	"crypto/subtle"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/literaryvoice/literary-voice/internal/core/domain"
	"github.com/literaryvoice/literary-voice/internal/core/ports"
)

// IdempotencyChecker abstracts the charge-replay store (Redis).
type IdempotencyChecker interface {
	Lookup(ctx context.Context, accountID, key string) (balance int64, found bool, err error)
	Record(ctx context.Context, accountID, key string, balance int64) error
}

type ledgerService struct {
	accounts     ports.AccountRepository
	transactions ports.TransactionRepository
	idem         IdempotencyChecker
	adminKey     string
	log          zerolog.Logger
}

// NewLedgerService returns a LedgerService implementation. adminKey is the
// server-side secret gating credit grants; it arrives via config injection,
// never read from the environment here.
func NewLedgerService(
	accounts ports.AccountRepository,
	transactions ports.TransactionRepository,
	idem IdempotencyChecker,
	adminKey string,
	log zerolog.Logger,
) ports.LedgerService {
	return &ledgerService{
		accounts:     accounts,
		transactions: transactions,
		idem:         idem,
		adminKey:     adminKey,
		log:          log,
	}
}

func (s *ledgerService) Balance(_ context.Context, account *domain.Account) int64 {
	return account.Credits
}

// Charge deducts credits as a single atomic check-then-decrement. A
// rejected charge mutates nothing; a replayed idempotency key returns the
// originally recorded balance without deducting again.
func (s *ledgerService) Charge(ctx context.Context, account *domain.Account, in ports.ChargeInput) (*ports.ChargeResult, error) {
	if in.Amount <= 0 {
		return nil, domain.ErrInvalidAmount
	}

	if in.IdempotencyKey != "" {
		balance, found, err := s.idem.Lookup(ctx, account.ID, in.IdempotencyKey)
		if err != nil {
			s.log.Warn().Err(err).Str("account", account.ID).Msg("idempotency lookup failed, charging anyway")
		} else if found {
			s.log.Debug().Str("account", account.ID).Str("key", in.IdempotencyKey).Msg("charge replayed")
			return &ports.ChargeResult{Balance: balance, Replayed: true}, nil
		}
	}

	balance, err := s.accounts.DecrementCredits(ctx, account.ID, in.Amount)
	if err != nil {
		return nil, fmt.Errorf("charge: %w", err)
	}

	if in.IdempotencyKey != "" {
		if err := s.idem.Record(ctx, account.ID, in.IdempotencyKey, balance); err != nil {
			s.log.Warn().Err(err).Str("account", account.ID).Msg("failed to record idempotency key")
		}
	}

	s.audit(ctx, account.ID, -in.Amount, in.Action)

	s.log.Info().
		Str("account", account.ID).
		Str("action", in.Action).
		Int64("amount", in.Amount).
		Int64("balance", balance).
		Msg("credits charged")

	return &ports.ChargeResult{Balance: balance}, nil
}

// Grant adds credits to an account. Gated by the shared admin secret,
// compared in constant time.
func (s *ledgerService) Grant(ctx context.Context, in ports.GrantInput) (int64, error) {
	if subtle.ConstantTimeCompare([]byte(in.AdminKey), []byte(s.adminKey)) != 1 {
		return 0, domain.ErrAdminUnauthorized
	}
	if in.Amount <= 0 {
		return 0, domain.ErrInvalidAmount
	}

	account, err := s.accounts.IncrementCredits(ctx, normalizeEmail(in.Email), in.Amount)
	if err != nil {
		return 0, fmt.Errorf("grant: %w", err)
	}

	s.audit(ctx, account.ID, in.Amount, "admin_grant")

	s.log.Info().
		Str("account", account.ID).
		Int64("amount", in.Amount).
		Int64("balance", account.Credits).
		Msg("credits granted")

	return account.Credits, nil
}

func (s *ledgerService) History(ctx context.Context, account *domain.Account, limit int64) ([]domain.Transaction, error) {
	return s.transactions.ListByAccount(ctx, account.ID, limit)
}

// audit appends to the transaction trail. Failures are non-fatal: the
// balance change already committed.
func (s *ledgerService) audit(ctx context.Context, accountID string, amount int64, action string) {
	tx := &domain.Transaction{
		AccountID: accountID,
		Amount:    amount,
		Action:    action,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.transactions.Insert(ctx, tx); err != nil {
		s.log.Warn().Err(err).Str("account", accountID).Msg("failed to insert audit transaction")
	}
}
