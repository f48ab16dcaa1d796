// Package fetcher looks up books and their public reviews on the review site.
package fetcher

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"

	"github.com/literaryvoice/literary-voice/internal/core/domain"
)

const defaultBaseURL = "https://www.goodreads.com"

var digitsRe = regexp.MustCompile(`\d+`)

// Fetcher scrapes book search results and review pages.
type Fetcher struct {
	client  *resty.Client
	baseURL string
}

// New returns a Fetcher pointed at the public review site.
func New() *Fetcher {
	return NewWithBaseURL(defaultBaseURL)
}

// NewWithBaseURL is used by tests to point the fetcher at a local fixture server.
func NewWithBaseURL(baseURL string) *Fetcher {
	client := resty.New()
	client.SetHeader("user-agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")
	client.SetTimeout(10 * time.Second)

	return &Fetcher{client: client, baseURL: strings.TrimRight(baseURL, "/")}
}

// IsISBN reports whether the input looks like an ISBN-10 or ISBN-13
// once hyphens and spaces are stripped.
func IsISBN(input string) bool {
	cleaned := strings.NewReplacer("-", "", " ", "").Replace(input)
	if len(cleaned) != 10 && len(cleaned) != 13 {
		return false
	}
	for _, r := range cleaned {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// SearchBook resolves a title or ISBN query to the first matching book.
func (f *Fetcher) SearchBook(ctx context.Context, query string) (*domain.Book, error) {
	searchURL := f.baseURL + "/search?q=" + url.QueryEscape(query)
	if IsISBN(query) {
		searchURL += "&search_type=books"
	}

	doc, err := f.getDocument(ctx, searchURL)
	if err != nil {
		return nil, err
	}

	titleLink := doc.Find("a.bookTitle").First()
	href, ok := titleLink.Attr("href")
	if !ok {
		return nil, domain.ErrBookNotFound
	}

	author := "Unknown"
	if a := doc.Find("a.authorName").First(); a.Length() > 0 {
		author = strings.TrimSpace(a.Text())
	}

	return &domain.Book{
		Title:  strings.TrimSpace(titleLink.Text()),
		Author: author,
		URL:    f.baseURL + href,
	}, nil
}

// TopReviews returns up to limit reviews from the book page, most liked
// first. Equal like counts keep the page's own order.
func (f *Fetcher) TopReviews(ctx context.Context, bookURL string, limit int) ([]domain.Review, error) {
	doc, err := f.getDocument(ctx, bookURL)
	if err != nil {
		return nil, err
	}

	var reviews []domain.Review
	doc.Find("div.review").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		text := strings.TrimSpace(sel.Find("span.readable").First().Text())
		if text == "" {
			return true
		}

		review := domain.Review{
			Text:     text,
			Likes:    parseLikes(sel.Find("span.likesCount").First().Text()),
			Reviewer: strings.TrimSpace(sel.Find("a.user").First().Text()),
		}
		reviews = append(reviews, review)
		return limit <= 0 || len(reviews) < limit
	})

	if len(reviews) == 0 {
		return nil, domain.ErrNoReviews
	}

	sort.SliceStable(reviews, func(i, j int) bool {
		return reviews[i].Likes > reviews[j].Likes
	})
	return reviews, nil
}

// AuthorBooks lists up to limit books by the given author with their ratings.
func (f *Fetcher) AuthorBooks(ctx context.Context, author string, limit int) ([]domain.AuthorBook, error) {
	searchURL := f.baseURL + "/search?q=" + url.QueryEscape(author)

	doc, err := f.getDocument(ctx, searchURL)
	if err != nil {
		return nil, err
	}

	var books []domain.AuthorBook
	doc.Find("tr[itemtype='http://schema.org/Book']").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		title := strings.TrimSpace(sel.Find("a.bookTitle").First().Text())
		if title == "" {
			return true
		}

		rating := "No rating"
		if r := sel.Find("span.minirating").First(); r.Length() > 0 {
			rating = strings.TrimSpace(r.Text())
		}

		books = append(books, domain.AuthorBook{Title: title, Rating: rating})
		return limit <= 0 || len(books) < limit
	})

	if len(books) == 0 {
		return nil, domain.ErrBookNotFound
	}
	return books, nil
}

func (f *Fetcher) getDocument(ctx context.Context, pageURL string) (*goquery.Document, error) {
	res, err := f.client.R().SetContext(ctx).Get(pageURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUpstream, err)
	}
	if res.IsError() {
		return nil, fmt.Errorf("%w: status %d from %s", domain.ErrUpstream, res.StatusCode(), pageURL)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(res.Body()))
	if err != nil {
		return nil, fmt.Errorf("%w: parse page: %v", domain.ErrUpstream, err)
	}
	return doc, nil
}

func parseLikes(text string) int {
	match := digitsRe.FindString(text)
	if match == "" {
		return 0
	}
	n, err := strconv.Atoi(match)
	if err != nil {
		return 0
	}
	return n
}
