// Package client is the Go SDK for the Literary Voice API, used by the CLI.
package client

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"

	"github.com/literaryvoice/literary-voice/internal/core/domain"
)

// Client talks to the Literary Voice API.
type Client struct {
	http    *resty.Client
	baseURL string
	apiKey  string
}

// New returns a Client for the API at baseURL.
func New(baseURL string) *Client {
	c := resty.New()
	c.SetTimeout(15 * time.Second)

	return &Client{http: c, baseURL: strings.TrimRight(baseURL, "/")}
}

// SetAPIKey sets the key sent on authenticated requests.
func (c *Client) SetAPIKey(apiKey string) {
	c.apiKey = apiKey
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Session is the result of a signup or login.
type Session struct {
	APIKey  string `json:"api_key"`
	Token   string `json:"token,omitempty"`
	Credits int64  `json:"credits"`
	Message string `json:"message"`
}

type balancePayload struct {
	Credits int64 `json:"credits"`
}

type creditsPayload struct {
	Credits int64  `json:"credits"`
	Message string `json:"message"`
}

type transactionsPayload struct {
	Transactions []domain.Transaction `json:"transactions"`
}

type apiError struct {
	Error string `json:"error"`
}

// Signup registers a new account and returns its first session.
func (c *Client) Signup(ctx context.Context, email, password string) (*Session, error) {
	var out Session
	res, err := c.http.R().
		SetContext(ctx).
		SetBody(credentials{Email: email, Password: password}).
		SetResult(&out).
		SetError(&apiError{}).
		Post(c.baseURL + "/signup")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUpstream, err)
	}
	if res.StatusCode() != http.StatusCreated {
		return nil, responseError(res)
	}
	return &out, nil
}

// Login authenticates and returns a fresh session with a rotated API key.
func (c *Client) Login(ctx context.Context, email, password string) (*Session, error) {
	var out Session
	res, err := c.http.R().
		SetContext(ctx).
		SetBody(credentials{Email: email, Password: password}).
		SetResult(&out).
		SetError(&apiError{}).
		Post(c.baseURL + "/login")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUpstream, err)
	}
	if res.StatusCode() != http.StatusOK {
		return nil, responseError(res)
	}
	return &out, nil
}

// Balance returns the account's current credit balance.
func (c *Client) Balance(ctx context.Context) (int64, error) {
	var out balancePayload
	res, err := c.http.R().
		SetContext(ctx).
		SetHeader("X-API-Key", c.apiKey).
		SetResult(&out).
		SetError(&apiError{}).
		Get(c.baseURL + "/balance")
	if err != nil {
		return 0, fmt.Errorf("%w: %v", domain.ErrUpstream, err)
	}
	if res.StatusCode() != http.StatusOK {
		return 0, responseError(res)
	}
	return out.Credits, nil
}

// Deduct charges the account for a billable action and returns the new
// balance. Each call carries a fresh idempotency key so a retried request
// is never double-charged.
func (c *Client) Deduct(ctx context.Context, amount int64, action string) (int64, error) {
	var out creditsPayload
	res, err := c.http.R().
		SetContext(ctx).
		SetHeader("X-API-Key", c.apiKey).
		SetHeader("Idempotency-Key", uuid.NewString()).
		SetBody(map[string]any{"amount": amount, "action": action}).
		SetResult(&out).
		SetError(&apiError{}).
		Post(c.baseURL + "/deduct")
	if err != nil {
		return 0, fmt.Errorf("%w: %v", domain.ErrUpstream, err)
	}
	if res.StatusCode() != http.StatusOK {
		return 0, responseError(res)
	}
	return out.Credits, nil
}

// AddCredits grants credits to an account using the admin key.
func (c *Client) AddCredits(ctx context.Context, email string, amount int64, adminKey string) (int64, error) {
	var out creditsPayload
	res, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]any{"email": email, "amount": amount, "admin_key": adminKey}).
		SetResult(&out).
		SetError(&apiError{}).
		Post(c.baseURL + "/add_credits")
	if err != nil {
		return 0, fmt.Errorf("%w: %v", domain.ErrUpstream, err)
	}
	if res.StatusCode() != http.StatusOK {
		return 0, responseError(res)
	}
	return out.Credits, nil
}

// Transactions lists the account's recent ledger entries.
func (c *Client) Transactions(ctx context.Context) ([]domain.Transaction, error) {
	var out transactionsPayload
	res, err := c.http.R().
		SetContext(ctx).
		SetHeader("X-API-Key", c.apiKey).
		SetResult(&out).
		SetError(&apiError{}).
		Get(c.baseURL + "/transactions")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUpstream, err)
	}
	if res.StatusCode() != http.StatusOK {
		return nil, responseError(res)
	}
	return out.Transactions, nil
}

// responseError maps API status codes back to domain errors so callers can
// branch with errors.Is instead of inspecting HTTP details.
func responseError(res *resty.Response) error {
	msg := ""
	if apiErr, ok := res.Error().(*apiError); ok && apiErr.Error != "" {
		msg = apiErr.Error
	}

	var base error
	switch res.StatusCode() {
	case http.StatusPaymentRequired:
		base = domain.ErrInsufficientCredits
	case http.StatusConflict:
		base = domain.ErrAccountExists
	case http.StatusUnauthorized:
		base = domain.ErrInvalidCredentials
	case http.StatusNotFound:
		base = domain.ErrAccountNotFound
	case http.StatusBadRequest:
		base = domain.ErrInvalidAmount
	default:
		base = domain.ErrUpstream
	}

	if msg == "" {
		return fmt.Errorf("%w: status %d", base, res.StatusCode())
	}
	return fmt.Errorf("%w: %s", base, msg)
}
