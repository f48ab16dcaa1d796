// Package cli implements the interactive literaryvoice shell.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/literaryvoice/literary-voice/internal/client"
	"github.com/literaryvoice/literary-voice/internal/core/domain"
	"github.com/literaryvoice/literary-voice/internal/insight"
)

// Credit costs per billable action.
const (
	costReview  = 5
	costInfo    = 1
	costSimilar = 2
)

const (
	reviewLimit     = 5
	authorBookLimit = 10
)

type apiClient interface {
	SetAPIKey(apiKey string)
	Signup(ctx context.Context, email, password string) (*client.Session, error)
	Login(ctx context.Context, email, password string) (*client.Session, error)
	Balance(ctx context.Context) (int64, error)
	Deduct(ctx context.Context, amount int64, action string) (int64, error)
	Transactions(ctx context.Context) ([]domain.Transaction, error)
}

type bookSource interface {
	SearchBook(ctx context.Context, query string) (*domain.Book, error)
	TopReviews(ctx context.Context, bookURL string, limit int) ([]domain.Review, error)
	AuthorBooks(ctx context.Context, author string, limit int) ([]domain.AuthorBook, error)
}

type formatterFactory func(cfg insight.Config) (insight.Formatter, error)

// Shell drives the interactive menus.
type Shell struct {
	api          apiClient
	books        bookSource
	newFormatter formatterFactory
	session      *Session
	sessionPath  string
	in           *bufio.Scanner
	out          io.Writer
}

// NewShell wires a Shell over the real API client and fetcher.
func NewShell(api *client.Client, books bookSource, session *Session, sessionPath string, in io.Reader, out io.Writer) *Shell {
	return &Shell{
		api:          api,
		books:        books,
		newFormatter: insight.New,
		session:      session,
		sessionPath:  sessionPath,
		in:           bufio.NewScanner(in),
		out:          out,
	}
}

// Run starts the shell: the auth menu when logged out, then the main menu.
func (s *Shell) Run(ctx context.Context) error {
	s.printHeader()

	if !s.session.LoggedIn() {
		if !s.authMenu(ctx) {
			return nil
		}
	}
	s.api.SetAPIKey(s.session.APIKey)

	return s.mainMenu(ctx)
}

func (s *Shell) printHeader() {
	fmt.Fprintln(s.out)
	fmt.Fprintln(s.out, titleStyle.Render("The Literary Voice"))
	fmt.Fprintln(s.out, subtitleStyle.Render("Your AI Reading Companion"))
	fmt.Fprintln(s.out)
}

// authMenu returns true once the user is logged in, false on exit.
func (s *Shell) authMenu(ctx context.Context) bool {
	for {
		fmt.Fprintln(s.out, menuStyle.Render("[1] Login"))
		fmt.Fprintln(s.out, menuStyle.Render("[2] Sign Up"))
		fmt.Fprintln(s.out, menuStyle.Render("[3] Exit"))

		switch s.prompt("> ") {
		case "1":
			if s.login(ctx) {
				return true
			}
		case "2":
			if s.signup(ctx) {
				return true
			}
		case "3":
			fmt.Fprintln(s.out, "Goodbye!")
			return false
		default:
			s.printError("invalid choice")
		}
	}
}

func (s *Shell) login(ctx context.Context) bool {
	email := s.prompt("Email: ")
	password := s.prompt("Password: ")

	session, err := s.api.Login(ctx, email, password)
	if err != nil {
		s.printError(err.Error())
		return false
	}

	s.session.APIKey = session.APIKey
	s.session.Email = email
	if err := s.session.Save(s.sessionPath); err != nil {
		s.printError("could not save session: " + err.Error())
	}

	fmt.Fprintln(s.out, successStyle.Render("Login successful."))
	return true
}

func (s *Shell) signup(ctx context.Context) bool {
	email := s.prompt("Email: ")
	password := s.prompt("Password: ")
	confirm := s.prompt("Confirm password: ")

	if password != confirm {
		s.printError("passwords do not match")
		return false
	}

	session, err := s.api.Signup(ctx, email, password)
	if err != nil {
		s.printError(err.Error())
		return false
	}

	s.session.APIKey = session.APIKey
	s.session.Email = email
	if err := s.session.Save(s.sessionPath); err != nil {
		s.printError("could not save session: " + err.Error())
	}

	fmt.Fprintln(s.out, successStyle.Render("Account created."))
	fmt.Fprintf(s.out, "You have %d credits to start.\n", session.Credits)
	return true
}

func (s *Shell) mainMenu(ctx context.Context) error {
	for {
		fmt.Fprintln(s.out)
		if balance, err := s.api.Balance(ctx); err == nil {
			fmt.Fprintln(s.out, faintStyle.Render(
				fmt.Sprintf("Balance: %d credits | %s", balance, s.session.Email)))
		}

		fmt.Fprintln(s.out, menuStyle.Render("[1] Get Review (5 credits)"))
		fmt.Fprintln(s.out, menuStyle.Render("[2] Book Information (1 credit)"))
		fmt.Fprintln(s.out, menuStyle.Render("[3] Similar Books (2 credits)"))
		fmt.Fprintln(s.out, menuStyle.Render("[4] Check Balance"))
		fmt.Fprintln(s.out, menuStyle.Render("[5] Logout"))
		fmt.Fprintln(s.out, menuStyle.Render("[6] Exit"))

		switch s.prompt("> ") {
		case "1":
			s.handleReview(ctx)
		case "2":
			s.handleInfo(ctx)
		case "3":
			s.handleSimilar(ctx)
		case "4":
			s.handleBalance(ctx)
		case "5":
			if err := s.session.Clear(s.sessionPath); err != nil {
				s.printError("could not clear session: " + err.Error())
			}
			fmt.Fprintln(s.out, "Logged out.")
			return nil
		case "6":
			fmt.Fprintln(s.out, "Goodbye! Happy reading.")
			return nil
		default:
			s.printError("invalid choice")
		}
	}
}

func (s *Shell) handleReview(ctx context.Context) {
	// A review needs the formatter, so refuse before charging anything.
	formatter, err := s.newFormatter(s.session.AI)
	if err != nil {
		s.printError("AI is not configured; set provider and api_key in " + s.sessionPath)
		return
	}

	query := s.prompt("Enter book title or ISBN: ")
	if query == "" {
		return
	}

	book, err := s.books.SearchBook(ctx, query)
	if err != nil {
		s.printError(err.Error())
		return
	}

	fmt.Fprintln(s.out, faintStyle.Render("Analyzing reviews..."))
	reviews, err := s.books.TopReviews(ctx, book.URL, reviewLimit)
	if err != nil {
		s.printError(err.Error())
		return
	}

	balance, err := s.api.Deduct(ctx, costReview, "review")
	if err != nil {
		s.printError(err.Error())
		return
	}

	out, err := formatter.Reformat(ctx, book, reviews[0].Text)
	if err != nil {
		s.printError(err.Error())
		return
	}

	s.printInsight(book, out)
	s.printBalance(balance)
}

func (s *Shell) handleInfo(ctx context.Context) {
	query := s.prompt("Enter book title or ISBN: ")
	if query == "" {
		return
	}

	book, err := s.books.SearchBook(ctx, query)
	if err != nil {
		s.printError(err.Error())
		return
	}

	balance, err := s.api.Deduct(ctx, costInfo, "info")
	if err != nil {
		s.printError(err.Error())
		return
	}

	fmt.Fprintln(s.out)
	fmt.Fprintln(s.out, sectionStyle.Render(book.Title))
	fmt.Fprintf(s.out, "by %s\n", book.Author)
	fmt.Fprintln(s.out, faintStyle.Render(book.URL))
	s.printBalance(balance)
}

func (s *Shell) handleSimilar(ctx context.Context) {
	query := s.prompt("Enter book title or author name: ")
	if query == "" {
		return
	}

	// Resolve a title to its author first; fall back to treating the
	// input as the author name.
	author := query
	if book, err := s.books.SearchBook(ctx, query); err == nil {
		author = book.Author
	}

	books, err := s.books.AuthorBooks(ctx, author, authorBookLimit)
	if err != nil {
		s.printError(err.Error())
		return
	}

	balance, err := s.api.Deduct(ctx, costSimilar, "similar")
	if err != nil {
		s.printError(err.Error())
		return
	}

	fmt.Fprintln(s.out)
	fmt.Fprintln(s.out, sectionStyle.Render("Books by "+author))
	for i, b := range books {
		fmt.Fprintf(s.out, "%d. %s\n", i+1, b.Title)
		fmt.Fprintln(s.out, faintStyle.Render("   "+b.Rating))
	}
	s.printBalance(balance)
}

func (s *Shell) handleBalance(ctx context.Context) {
	balance, err := s.api.Balance(ctx)
	if err != nil {
		s.printError(err.Error())
		return
	}

	fmt.Fprintf(s.out, "\nCurrent balance: %d credits\n", balance)
	fmt.Fprintln(s.out, faintStyle.Render("Review: 5 credits | Information: 1 credit | Similar books: 2 credits"))
}

func (s *Shell) printInsight(book *domain.Book, out *domain.Insight) {
	fmt.Fprintln(s.out)
	fmt.Fprintln(s.out, sectionStyle.Render(
		fmt.Sprintf("What readers think about %q by %s", book.Title, book.Author)))

	if len(out.Highlights) > 0 {
		fmt.Fprintln(s.out)
		fmt.Fprintln(s.out, successStyle.Render("The Highlights"))
		for _, h := range out.Highlights {
			fmt.Fprintf(s.out, "  - %s\n", h)
		}
	}
	if len(out.Considerations) > 0 {
		fmt.Fprintln(s.out)
		fmt.Fprintln(s.out, errorStyle.Render("Some Considerations"))
		for _, c := range out.Considerations {
			fmt.Fprintf(s.out, "  - %s\n", c)
		}
	}
	if out.Perspective != "" {
		fmt.Fprintln(s.out)
		fmt.Fprintln(s.out, sectionStyle.Render("Overall Perspective"))
		fmt.Fprintf(s.out, "  %s\n", out.Perspective)
	}
}

func (s *Shell) printBalance(balance int64) {
	fmt.Fprintln(s.out, faintStyle.Render(fmt.Sprintf("Remaining balance: %d credits", balance)))
}

func (s *Shell) printError(msg string) {
	fmt.Fprintln(s.out, errorStyle.Render("Error: "+msg))
}

func (s *Shell) prompt(label string) string {
	fmt.Fprint(s.out, label)
	if !s.in.Scan() {
		return ""
	}
	return strings.TrimSpace(s.in.Text())
}
