package ports

import (
	"context"

	"github.com/literaryvoice/literary-voice/internal/core/domain"
)

type AuthService interface {
	// Signup registers a new account and returns it with its freshly
	// generated API key populated.
	Signup(ctx context.Context, email, password string) (*domain.Account, error)

	// Login verifies credentials, rotates the account's API key, and
	// issues a session token. The returned account carries the new key.
	Login(ctx context.Context, email, password string) (*domain.Account, string, error)
}
