package domain

import "errors"

var ErrBookNotFound = errors.New("book not found")
var ErrNoReviews = errors.New("no reviews found")
var ErrUpstream = errors.New("upstream service error")

// Book identifies a title located on the review site.
type Book struct {
	Title  string `json:"title"`
	Author string `json:"author"`
	URL    string `json:"url"`
}

// Review is a single public review scraped from the site. Reviews are
// never persisted.
type Review struct {
	Text     string `json:"text"`
	Likes    int    `json:"likes"`
	Reviewer string `json:"reviewer,omitempty"`
}

// AuthorBook is an entry in an author's catalogue listing.
type AuthorBook struct {
	Title  string `json:"title"`
	Rating string `json:"rating"`
}

// Insight is the structured summary derived from a review.
type Insight struct {
	Highlights     []string `json:"highlights"`
	Considerations []string `json:"considerations"`
	Perspective    string   `json:"perspective"`
}
