// model/book.go
package model

import "time"

type Book struct {
	ID              string    `json:"id" db:"id"`
	Title           string    `json:"title" db:"title"`
	Author          string    `json:"author" db:"author"`
	Genre           string    `json:"genre" db:"genre"`
	Rating          float64   `json:"rating" db:"rating"`
	TotalCopies     int       `json:"total_copies" db:"total_copies"`
	AvailableCopies int       `json:"available_copies" db:"available_copies"`
	Description     string    `json:"description" db:"description"`
	CoverColor      string    `json:"cover_color" db:"cover_color"`
	CoverURL        string    `json:"cover_url" db:"cover_url"`
	VideoURL        string    `json:"video_url" db:"video_url"`
	Summary         string    `json:"summary" db:"summary"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
}

// SearchFilter selects the sort/constraint applied on top of the fuzzy query.
type SearchFilter string

const (
	FilterAuthor       SearchFilter = "author"
	FilterGenre        SearchFilter = "genre"
	FilterRating       SearchFilter = "rating"
	FilterAvailability SearchFilter = "availability"
)

type SearchSpec struct {
	Query  string
	Filter SearchFilter
	Page   int
	Limit  int
}
