package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/literaryvoice/literary-voice/internal/core/domain"
	"github.com/literaryvoice/literary-voice/internal/core/ports"
)

type stubTransactionRepo struct {
	inserted  []domain.Transaction
	insertErr error
}

func (r *stubTransactionRepo) Insert(_ context.Context, tx *domain.Transaction) error {
	if r.insertErr != nil {
		return r.insertErr
	}
	r.inserted = append(r.inserted, *tx)
	return nil
}

func (r *stubTransactionRepo) ListByAccount(_ context.Context, accountID string, limit int64) ([]domain.Transaction, error) {
	var out []domain.Transaction
	for _, tx := range r.inserted {
		if tx.AccountID == accountID {
			out = append(out, tx)
		}
		if limit > 0 && int64(len(out)) >= limit {
			break
		}
	}
	return out, nil
}

type stubIdemChecker struct {
	seen map[string]int64
}

func newStubIdemChecker() *stubIdemChecker {
	return &stubIdemChecker{seen: make(map[string]int64)}
}

func (c *stubIdemChecker) Lookup(_ context.Context, accountID, key string) (int64, bool, error) {
	balance, ok := c.seen[accountID+":"+key]
	return balance, ok, nil
}

func (c *stubIdemChecker) Record(_ context.Context, accountID, key string, balance int64) error {
	c.seen[accountID+":"+key] = balance
	return nil
}

func newLedgerFixture(t *testing.T, credits int64) (ports.LedgerService, *stubAccountRepo, *stubTransactionRepo, *domain.Account) {
	t.Helper()
	accounts := newStubAccountRepo()
	account, err := accounts.Create(context.Background(), &domain.Account{
		Email:   "alice@example.com",
		APIKey:  "lv_test",
		Credits: credits,
		Plan:    domain.PlanCommoner,
	})
	if err != nil {
		t.Fatalf("create account: %v", err)
	}
	transactions := &stubTransactionRepo{}
	svc := NewLedgerService(accounts, transactions, newStubIdemChecker(), "admin-secret", zerolog.Nop())
	return svc, accounts, transactions, account
}

func TestLedgerService_Charge_Success(t *testing.T) {
	svc, _, transactions, account := newLedgerFixture(t, 15)

	res, err := svc.Charge(context.Background(), account, ports.ChargeInput{Amount: 5, Action: "review"})
	if err != nil {
		t.Fatalf("charge failed: %v", err)
	}
	if res.Balance != 10 {
		t.Fatalf("expected balance 10, got %d", res.Balance)
	}
	if res.Replayed {
		t.Fatalf("fresh charge marked as replayed")
	}
	if len(transactions.inserted) != 1 {
		t.Fatalf("expected 1 audit transaction, got %d", len(transactions.inserted))
	}
	if tx := transactions.inserted[0]; tx.Amount != -5 || tx.Action != "review" {
		t.Fatalf("unexpected audit transaction: %+v", tx)
	}
}

func TestLedgerService_Charge_Insufficient(t *testing.T) {
	svc, accounts, transactions, account := newLedgerFixture(t, 3)

	_, err := svc.Charge(context.Background(), account, ports.ChargeInput{Amount: 5, Action: "review"})
	if !errors.Is(err, domain.ErrInsufficientCredits) {
		t.Fatalf("expected ErrInsufficientCredits, got %v", err)
	}

	// rejected charge must leave the balance unchanged
	stored, _ := accounts.FindByEmail(context.Background(), account.Email)
	if stored.Credits != 3 {
		t.Fatalf("balance changed on rejected charge: %d", stored.Credits)
	}
	if len(transactions.inserted) != 0 {
		t.Fatalf("rejected charge produced an audit transaction")
	}
}

func TestLedgerService_Charge_InvalidAmount(t *testing.T) {
	svc, _, _, account := newLedgerFixture(t, 15)

	for _, amount := range []int64{0, -1} {
		if _, err := svc.Charge(context.Background(), account, ports.ChargeInput{Amount: amount, Action: "review"}); !errors.Is(err, domain.ErrInvalidAmount) {
			t.Fatalf("amount %d: expected ErrInvalidAmount, got %v", amount, err)
		}
	}
}

// Balance after N charges of amount a equals initial − N·a, and the
// charge after exhaustion fails without touching the balance.
func TestLedgerService_Charge_ExhaustsExactly(t *testing.T) {
	svc, accounts, _, account := newLedgerFixture(t, 15)

	for i := 0; i < 15; i++ {
		res, err := svc.Charge(context.Background(), account, ports.ChargeInput{Amount: 1, Action: "lookup"})
		if err != nil {
			t.Fatalf("charge %d failed: %v", i+1, err)
		}
		if want := int64(15 - (i + 1)); res.Balance != want {
			t.Fatalf("charge %d: expected balance %d, got %d", i+1, want, res.Balance)
		}
	}

	if _, err := svc.Charge(context.Background(), account, ports.ChargeInput{Amount: 1, Action: "lookup"}); !errors.Is(err, domain.ErrInsufficientCredits) {
		t.Fatalf("expected ErrInsufficientCredits on 16th charge, got %v", err)
	}
	stored, _ := accounts.FindByEmail(context.Background(), account.Email)
	if stored.Credits != 0 {
		t.Fatalf("expected balance 0 after exhaustion, got %d", stored.Credits)
	}
}

func TestLedgerService_Charge_IdempotentReplay(t *testing.T) {
	svc, accounts, transactions, account := newLedgerFixture(t, 15)

	in := ports.ChargeInput{Amount: 5, Action: "review", IdempotencyKey: "key-1"}
	first, err := svc.Charge(context.Background(), account, in)
	if err != nil {
		t.Fatalf("first charge failed: %v", err)
	}

	second, err := svc.Charge(context.Background(), account, in)
	if err != nil {
		t.Fatalf("replay failed: %v", err)
	}
	if !second.Replayed {
		t.Fatalf("expected replayed result")
	}
	if second.Balance != first.Balance {
		t.Fatalf("replay returned different balance: %d != %d", second.Balance, first.Balance)
	}

	stored, _ := accounts.FindByEmail(context.Background(), account.Email)
	if stored.Credits != 10 {
		t.Fatalf("replay deducted again: balance %d", stored.Credits)
	}
	if len(transactions.inserted) != 1 {
		t.Fatalf("replay produced extra audit transaction")
	}
}

func TestLedgerService_Charge_AuditFailureNonFatal(t *testing.T) {
	accounts := newStubAccountRepo()
	account, _ := accounts.Create(context.Background(), &domain.Account{Email: "a@example.com", Credits: 10})
	transactions := &stubTransactionRepo{insertErr: fmt.Errorf("mongo down")}
	svc := NewLedgerService(accounts, transactions, newStubIdemChecker(), "admin-secret", zerolog.Nop())

	res, err := svc.Charge(context.Background(), account, ports.ChargeInput{Amount: 2, Action: "info"})
	if err != nil {
		t.Fatalf("charge should succeed despite audit failure: %v", err)
	}
	if res.Balance != 8 {
		t.Fatalf("expected balance 8, got %d", res.Balance)
	}
}

func TestLedgerService_Grant_WrongAdminKey(t *testing.T) {
	svc, accounts, _, account := newLedgerFixture(t, 15)

	_, err := svc.Grant(context.Background(), ports.GrantInput{Email: account.Email, Amount: 100, AdminKey: "wrong"})
	if !errors.Is(err, domain.ErrAdminUnauthorized) {
		t.Fatalf("expected ErrAdminUnauthorized, got %v", err)
	}

	stored, _ := accounts.FindByEmail(context.Background(), account.Email)
	if stored.Credits != 15 {
		t.Fatalf("unauthorized grant altered balance: %d", stored.Credits)
	}
}

func TestLedgerService_Grant_Success(t *testing.T) {
	svc, accounts, transactions, account := newLedgerFixture(t, 15)

	balance, err := svc.Grant(context.Background(), ports.GrantInput{Email: "Alice@Example.com", Amount: 250, AdminKey: "admin-secret"})
	if err != nil {
		t.Fatalf("grant failed: %v", err)
	}
	if balance != 265 {
		t.Fatalf("expected balance 265, got %d", balance)
	}

	stored, _ := accounts.FindByEmail(context.Background(), account.Email)
	if stored.Credits != 265 {
		t.Fatalf("stored balance mismatch: %d", stored.Credits)
	}
	if len(transactions.inserted) != 1 || transactions.inserted[0].Action != "admin_grant" {
		t.Fatalf("expected admin_grant audit transaction, got %+v", transactions.inserted)
	}
}

func TestLedgerService_Grant_UnknownAccount(t *testing.T) {
	svc, _, _, _ := newLedgerFixture(t, 15)

	if _, err := svc.Grant(context.Background(), ports.GrantInput{Email: "ghost@example.com", Amount: 10, AdminKey: "admin-secret"}); !errors.Is(err, domain.ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
}

func TestLedgerService_History(t *testing.T) {
	svc, _, _, account := newLedgerFixture(t, 15)

	for i := 0; i < 3; i++ {
		if _, err := svc.Charge(context.Background(), account, ports.ChargeInput{Amount: 1, Action: "info"}); err != nil {
			t.Fatalf("charge failed: %v", err)
		}
	}

	history, err := svc.History(context.Background(), account, 2)
	if err != nil {
		t.Fatalf("history failed: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("expected 2 transactions, got %d", len(history))
	}
	if history[0].CreatedAt.After(time.Now().UTC().Add(time.Second)) {
		t.Fatalf("implausible transaction timestamp: %v", history[0].CreatedAt)
	}
}
