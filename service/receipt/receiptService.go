package receiptsvc

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"bookwise/model"
	borrowrepo "bookwise/repository/borrow"
	borrowsvc "bookwise/service/borrow"
)

type ErrCode string

const (
	ErrRecordNotFound ErrCode = "RECORD_NOT_FOUND"
	ErrNotOwner       ErrCode = "NOT_OWNER"
	ErrNotPending     ErrCode = "INVALID_STATE_FOR_ISSUANCE"
)

type codedError struct{ code ErrCode }

func (e codedError) Error() string { return string(e.code) }
func (e codedError) Code() ErrCode { return e.code }
func makeErr(c ErrCode) error      { return codedError{code: c} }

func Code(err error) ErrCode {
	var ce interface{ Code() ErrCode }
	if errors.As(err, &ce) {
		return ce.Code()
	}
	return ""
}

const (
	issuedAtLayout = "02/01/2006, 03:04 PM"
	dateLayout     = "02/01/2006"
	durationLabel  = "14 Days"
)

type Repo interface {
	Transact(ctx context.Context, fn func(tx *sqlx.Tx) error) error
	ByIDForUpdate(ctx context.Context, tx *sqlx.Tx, id string) (*model.BorrowRecord, error)
	ForceBorrowed(ctx context.Context, tx *sqlx.Tx, id string, borrow, due time.Time) error
	ReceiptData(ctx context.Context, id string) (*borrowrepo.ReceiptRow, error)
}

type Service interface {
	// View builds the receipt projection without mutating anything.
	View(ctx context.Context, recordID, actorID string, role model.Role) (*model.Receipt, error)

	// Issue forces a PENDING record to BORROWED with fresh dates and
	// returns the receipt reflecting them. Admin only.
	Issue(ctx context.Context, recordID string, role model.Role) (*model.Receipt, error)
}

type service struct {
	r     Repo
	views borrowsvc.ViewInvalidator
}

func New(r Repo, views borrowsvc.ViewInvalidator) Service {
	return &service{r: r, views: views}
}

func (s *service) View(ctx context.Context, recordID, actorID string, role model.Role) (*model.Receipt, error) {
	row, err := s.r.ReceiptData(ctx, recordID)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, makeErr(ErrRecordNotFound)
	}
	if row.UserID != actorID && role != model.RoleAdmin {
		return nil, makeErr(ErrNotOwner)
	}
	return buildReceipt(row, row.BorrowDate), nil
}

func (s *service) Issue(ctx context.Context, recordID string, role model.Role) (*model.Receipt, error) {
	if role != model.RoleAdmin {
		return nil, makeErr(ErrNotOwner)
	}

	now := time.Now().UTC()
	due := now.AddDate(0, 0, borrowsvc.LoanDays)

	err := s.r.Transact(ctx, func(tx *sqlx.Tx) error {
		rec, err := s.r.ByIDForUpdate(ctx, tx, recordID)
		if err != nil {
			return err
		}
		if rec == nil {
			return makeErr(ErrRecordNotFound)
		}
		// Issuing against an already-active or resolved loan is invalid.
		// PENDING -> BORROWED moves between two consuming statuses, so
		// the inventory ledger is untouched here.
		if rec.Status != model.BorrowPending {
			return makeErr(ErrNotPending)
		}
		return s.r.ForceBorrowed(ctx, tx, recordID, now, due)
	})
	if err != nil {
		return nil, err
	}

	if s.views != nil {
		s.views.Invalidate(borrowsvc.ViewBorrowRecords)
	}

	row, err := s.r.ReceiptData(ctx, recordID)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, makeErr(ErrRecordNotFound)
	}
	return buildReceipt(row, now), nil
}

func buildReceipt(row *borrowrepo.ReceiptRow, issuedAt time.Time) *model.Receipt {
	return &model.Receipt{
		ReceiptID:  shortID(row.ID),
		IssuedAt:   issuedAt.Format(issuedAtLayout),
		Title:      row.BookTitle,
		Author:     row.BookAuthor,
		Genre:      row.BookGenre,
		BorrowedOn: row.BorrowDate.Format(dateLayout),
		DueDate:    row.DueDate.Format(dateLayout),
		Duration:   durationLabel,
		UserName:   row.UserFullName,
		UserEmail:  row.UserEmail,
		Pending:    row.Status == model.BorrowPending,
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		id = id[:8]
	}
	return strings.ToUpper(id)
}
