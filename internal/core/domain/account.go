package domain

import (
	"errors"
	"time"
)

// Plan identifies the billing tier an account is subscribed to.
const (
	PlanCommoner = "commoner"
	PlanNoble    = "noble"
	PlanRoyal    = "royal"
)

// DefaultCredits is the starting balance granted at signup.
const DefaultCredits int64 = 15

var ErrAccountExists = errors.New("account already exists")
var ErrAccountNotFound = errors.New("account not found")
var ErrInvalidCredentials = errors.New("invalid credentials")
var ErrInvalidAPIKey = errors.New("invalid api key")
var ErrInsufficientCredits = errors.New("insufficient credits")
var ErrInvalidAmount = errors.New("amount must be positive")
var ErrAdminUnauthorized = errors.New("invalid admin key")

// Account models a registered user with a credit balance.
type Account struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	APIKey       string    `json:"-"`
	Credits      int64     `json:"credits"`
	Plan         string    `json:"plan"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Transaction records a single balance mutation. Amount is signed:
// negative for charges, positive for grants.
type Transaction struct {
	ID        string    `json:"id"`
	AccountID string    `json:"account_id"`
	Amount    int64     `json:"amount"`
	Action    string    `json:"action"`
	CreatedAt time.Time `json:"created_at"`
}
