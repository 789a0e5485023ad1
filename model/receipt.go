// model/receipt.go
package model

// Receipt is a read-only projection of a borrow record joined with its
// book and user. It is computed on demand and never persisted.
type Receipt struct {
	ReceiptID  string `json:"receipt_id"`
	IssuedAt   string `json:"issued_at"`
	Title      string `json:"title"`
	Author     string `json:"author"`
	Genre      string `json:"genre"`
	BorrowedOn string `json:"borrowed_on"`
	DueDate    string `json:"due_date"`
	Duration   string `json:"duration"`
	UserName   string `json:"user_name"`
	UserEmail  string `json:"user_email"`

	// Pending is set when the record has not been fulfilled yet; the
	// borrow/due dates above are placeholders in that case.
	Pending bool `json:"pending"`
}
