package cli

import (
	"bufio"
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/literaryvoice/literary-voice/internal/client"
	"github.com/literaryvoice/literary-voice/internal/core/domain"
	"github.com/literaryvoice/literary-voice/internal/insight"
)

type stubAPI struct {
	apiKey     string
	loginErr   error
	signupErr  error
	balance    int64
	deductErr  error
	deductions []string
}

func (a *stubAPI) SetAPIKey(apiKey string) { a.apiKey = apiKey }

func (a *stubAPI) Signup(_ context.Context, email, _ string) (*client.Session, error) {
	if a.signupErr != nil {
		return nil, a.signupErr
	}
	return &client.Session{APIKey: "lv_new", Credits: 15}, nil
}

func (a *stubAPI) Login(_ context.Context, email, _ string) (*client.Session, error) {
	if a.loginErr != nil {
		return nil, a.loginErr
	}
	return &client.Session{APIKey: "lv_rotated", Credits: a.balance}, nil
}

func (a *stubAPI) Balance(_ context.Context) (int64, error) {
	return a.balance, nil
}

func (a *stubAPI) Deduct(_ context.Context, amount int64, action string) (int64, error) {
	if a.deductErr != nil {
		return 0, a.deductErr
	}
	a.deductions = append(a.deductions, action)
	a.balance -= amount
	return a.balance, nil
}

func (a *stubAPI) Transactions(_ context.Context) ([]domain.Transaction, error) {
	return nil, nil
}

type stubBooks struct {
	book       *domain.Book
	searchErr  error
	reviews    []domain.Review
	reviewsErr error
	authored   []domain.AuthorBook
}

func (b *stubBooks) SearchBook(_ context.Context, _ string) (*domain.Book, error) {
	return b.book, b.searchErr
}

func (b *stubBooks) TopReviews(_ context.Context, _ string, _ int) ([]domain.Review, error) {
	return b.reviews, b.reviewsErr
}

func (b *stubBooks) AuthorBooks(_ context.Context, _ string, _ int) ([]domain.AuthorBook, error) {
	return b.authored, nil
}

type stubFormatter struct {
	insight *domain.Insight
	err     error
}

func (f *stubFormatter) Reformat(_ context.Context, _ *domain.Book, _ string) (*domain.Insight, error) {
	return f.insight, f.err
}

func newTestShell(t *testing.T, api *stubAPI, books *stubBooks, formatter insight.Formatter, session *Session, input string) (*Shell, *bytes.Buffer) {
	t.Helper()
	out := &bytes.Buffer{}
	s := &Shell{
		api:         api,
		books:       books,
		session:     session,
		sessionPath: filepath.Join(t.TempDir(), "session.json"),
		in:          bufio.NewScanner(strings.NewReader(input)),
		out:         out,
	}
	s.newFormatter = func(cfg insight.Config) (insight.Formatter, error) {
		if formatter == nil {
			return insight.New(cfg)
		}
		return formatter, nil
	}
	return s, out
}

func TestShell_ReviewFlow(t *testing.T) {
	api := &stubAPI{balance: 15}
	books := &stubBooks{
		book: &domain.Book{Title: "Piranesi", Author: "Susanna Clarke", URL: "http://x/book/1"},
		reviews: []domain.Review{
			{Text: "Loved it.", Likes: 30},
			{Text: "It was fine.", Likes: 2},
		},
	}
	formatter := &stubFormatter{insight: &domain.Insight{
		Highlights:  []string{"Dreamlike setting."},
		Perspective: "A singular book.",
	}}
	session := &Session{APIKey: "lv_abc", Email: "reader@example.com"}

	// get review, then exit
	s, out := newTestShell(t, api, books, formatter, session, "1\nPiranesi\n6\n")
	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(api.deductions) != 1 || api.deductions[0] != "review" {
		t.Fatalf("deductions = %v, want one review charge", api.deductions)
	}
	if api.balance != 10 {
		t.Errorf("balance = %d, want 10", api.balance)
	}

	text := out.String()
	if !strings.Contains(text, "Dreamlike setting.") {
		t.Errorf("output missing highlight:\n%s", text)
	}
	if !strings.Contains(text, "Remaining balance: 10 credits") {
		t.Errorf("output missing remaining balance:\n%s", text)
	}
}

func TestShell_ReviewRefusedWithoutAI(t *testing.T) {
	api := &stubAPI{balance: 15}
	books := &stubBooks{book: &domain.Book{Title: "Piranesi"}}
	session := &Session{APIKey: "lv_abc"}

	// nil formatter stub: falls through to insight.New with empty config
	s, out := newTestShell(t, api, books, nil, session, "1\n6\n")
	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(api.deductions) != 0 {
		t.Fatalf("deductions = %v, want none when AI unconfigured", api.deductions)
	}
	if !strings.Contains(out.String(), "AI is not configured") {
		t.Errorf("output missing AI refusal:\n%s", out.String())
	}
}

func TestShell_NoChargeWhenNoReviews(t *testing.T) {
	api := &stubAPI{balance: 15}
	books := &stubBooks{
		book:       &domain.Book{Title: "Obscurity", URL: "http://x/book/2"},
		reviewsErr: domain.ErrNoReviews,
	}
	formatter := &stubFormatter{insight: &domain.Insight{}}
	session := &Session{APIKey: "lv_abc"}

	s, out := newTestShell(t, api, books, formatter, session, "1\nObscurity\n6\n")
	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(api.deductions) != 0 {
		t.Fatalf("deductions = %v, want none when fetch failed", api.deductions)
	}
	if !strings.Contains(out.String(), domain.ErrNoReviews.Error()) {
		t.Errorf("output missing fetch error:\n%s", out.String())
	}
}

func TestShell_InfoChargesOneCredit(t *testing.T) {
	api := &stubAPI{balance: 15}
	books := &stubBooks{book: &domain.Book{Title: "Piranesi", Author: "Susanna Clarke", URL: "http://x/book/1"}}
	session := &Session{APIKey: "lv_abc"}

	s, out := newTestShell(t, api, books, &stubFormatter{}, session, "2\nPiranesi\n6\n")
	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(api.deductions) != 1 || api.deductions[0] != "info" {
		t.Fatalf("deductions = %v, want one info charge", api.deductions)
	}
	if api.balance != 14 {
		t.Errorf("balance = %d, want 14", api.balance)
	}
	if !strings.Contains(out.String(), "Piranesi") {
		t.Errorf("output missing book title:\n%s", out.String())
	}
}

func TestShell_InsufficientCreditsSurfaces(t *testing.T) {
	api := &stubAPI{balance: 2, deductErr: domain.ErrInsufficientCredits}
	books := &stubBooks{book: &domain.Book{Title: "Piranesi", URL: "http://x/book/1"}}
	session := &Session{APIKey: "lv_abc"}

	s, out := newTestShell(t, api, books, &stubFormatter{}, session, "2\nPiranesi\n6\n")
	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if !strings.Contains(out.String(), domain.ErrInsufficientCredits.Error()) {
		t.Errorf("output missing insufficient credits error:\n%s", out.String())
	}
}

func TestShell_SignupPasswordMismatch(t *testing.T) {
	api := &stubAPI{}
	session := &Session{}

	// signup with mismatched passwords, then exit the auth menu
	s, out := newTestShell(t, api, &stubBooks{}, &stubFormatter{}, session,
		"2\nreader@example.com\nsecret1\ndifferent\n3\n")
	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if session.LoggedIn() {
		t.Error("session must stay logged out on mismatch")
	}
	if !strings.Contains(out.String(), "passwords do not match") {
		t.Errorf("output missing mismatch error:\n%s", out.String())
	}
}

func TestShell_LoginSavesSession(t *testing.T) {
	api := &stubAPI{balance: 15}
	session := &Session{}

	// login then exit
	s, _ := newTestShell(t, api, &stubBooks{}, &stubFormatter{}, session,
		"1\nreader@example.com\nsecret1\n6\n")
	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if session.APIKey != "lv_rotated" {
		t.Errorf("session api key = %q, want lv_rotated", session.APIKey)
	}
	if api.apiKey != "lv_rotated" {
		t.Errorf("client api key = %q, want lv_rotated", api.apiKey)
	}

	saved, err := LoadSession(s.sessionPath)
	if err != nil {
		t.Fatalf("LoadSession: %v", err)
	}
	if saved.Email != "reader@example.com" {
		t.Errorf("saved email = %q", saved.Email)
	}
}

func TestShell_LogoutClearsSession(t *testing.T) {
	api := &stubAPI{balance: 15}
	session := &Session{APIKey: "lv_abc", Email: "reader@example.com"}

	s, _ := newTestShell(t, api, &stubBooks{}, &stubFormatter{}, session, "5\n")
	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if session.LoggedIn() {
		t.Error("session must be cleared after logout")
	}
}
