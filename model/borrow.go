// model/borrow.go
package model

import "time"

type BorrowStatus string

const (
	BorrowPending    BorrowStatus = "PENDING"
	BorrowBorrowed   BorrowStatus = "BORROWED"
	BorrowReturned   BorrowStatus = "RETURNED"
	BorrowLateReturn BorrowStatus = "LATE_RETURN"
)

// Valid reports whether s is one of the four known statuses.
func (s BorrowStatus) Valid() bool {
	switch s {
	case BorrowPending, BorrowBorrowed, BorrowReturned, BorrowLateReturn:
		return true
	}
	return false
}

// Consuming reports whether a record in this status holds a copy.
// PENDING and BORROWED are active; RETURNED and LATE_RETURN are resolved.
func (s BorrowStatus) Consuming() bool {
	return s == BorrowPending || s == BorrowBorrowed
}

type BorrowRecord struct {
	ID         string       `json:"id" db:"id"`
	UserID     string       `json:"user_id" db:"user_id"`
	BookID     string       `json:"book_id" db:"book_id"`
	BorrowDate time.Time    `json:"borrow_date" db:"borrow_date"`
	DueDate    time.Time    `json:"due_date" db:"due_date"`
	ReturnDate *time.Time   `json:"return_date,omitempty" db:"return_date"`
	Status     BorrowStatus `json:"status" db:"status"`
	Dismissed  bool         `json:"dismissed" db:"dismissed"`
	CreatedAt  time.Time    `json:"created_at" db:"created_at"`
}
