package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/literaryvoice/literary-voice/internal/core/domain"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(srv.URL)
}

func TestSignup(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/signup" || r.Method != http.MethodPost {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}

		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["email"] != "reader@example.com" {
			t.Errorf("email = %q", body["email"])
		}

		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"api_key": "lv_abc", "credits": 15, "message": "account created successfully",
		})
	})

	session, err := c.Signup(context.Background(), "reader@example.com", "secret1")
	if err != nil {
		t.Fatalf("Signup: %v", err)
	}
	if session.APIKey != "lv_abc" || session.Credits != 15 {
		t.Errorf("session = %+v", session)
	}
}

func TestSignup_Duplicate(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "email already registered"})
	})

	_, err := c.Signup(context.Background(), "reader@example.com", "secret1")
	if !errors.Is(err, domain.ErrAccountExists) {
		t.Fatalf("error = %v, want ErrAccountExists", err)
	}
}

func TestLogin_BadCredentials(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "invalid email or password"})
	})

	_, err := c.Login(context.Background(), "reader@example.com", "wrong1")
	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("error = %v, want ErrInvalidCredentials", err)
	}
}

func TestBalance_SendsAPIKey(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("X-API-Key"); got != "lv_abc" {
			t.Errorf("X-API-Key = %q", got)
		}
		_ = json.NewEncoder(w).Encode(map[string]int64{"credits": 9})
	})
	c.SetAPIKey("lv_abc")

	credits, err := c.Balance(context.Background())
	if err != nil {
		t.Fatalf("Balance: %v", err)
	}
	if credits != 9 {
		t.Errorf("credits = %d, want 9", credits)
	}
}

func TestDeduct_SendsIdempotencyKey(t *testing.T) {
	var firstKey, secondKey string
	calls := 0
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			firstKey = r.Header.Get("Idempotency-Key")
		} else {
			secondKey = r.Header.Get("Idempotency-Key")
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"credits": 10, "message": "5 credits deducted"})
	})
	c.SetAPIKey("lv_abc")

	if _, err := c.Deduct(context.Background(), 5, "review"); err != nil {
		t.Fatalf("Deduct: %v", err)
	}
	if _, err := c.Deduct(context.Background(), 5, "review"); err != nil {
		t.Fatalf("Deduct: %v", err)
	}

	if firstKey == "" {
		t.Error("first request missing Idempotency-Key")
	}
	if firstKey == secondKey {
		t.Error("each Deduct call must generate a fresh idempotency key")
	}
}

func TestDeduct_Insufficient(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "insufficient credits"})
	})
	c.SetAPIKey("lv_abc")

	_, err := c.Deduct(context.Background(), 5, "review")
	if !errors.Is(err, domain.ErrInsufficientCredits) {
		t.Fatalf("error = %v, want ErrInsufficientCredits", err)
	}
}

func TestAddCredits(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["admin_key"] != "supersecret" {
			t.Errorf("admin_key = %v", body["admin_key"])
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"credits": 265, "message": "250 credits added"})
	})

	credits, err := c.AddCredits(context.Background(), "reader@example.com", 250, "supersecret")
	if err != nil {
		t.Fatalf("AddCredits: %v", err)
	}
	if credits != 265 {
		t.Errorf("credits = %d, want 265", credits)
	}
}

func TestTransactions(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"transactions": []map[string]any{
				{"id": "t1", "amount": -5, "action": "review"},
			},
		})
	})
	c.SetAPIKey("lv_abc")

	txs, err := c.Transactions(context.Background())
	if err != nil {
		t.Fatalf("Transactions: %v", err)
	}
	if len(txs) != 1 || txs[0].Amount != -5 || txs[0].Action != "review" {
		t.Errorf("transactions = %+v", txs)
	}
}
