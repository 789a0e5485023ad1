package borrowsvc

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"

	"bookwise/model"
	borrowrepo "bookwise/repository/borrow"
)

// LoanDays is the fixed loan period applied to every borrow.
const LoanDays = 14

// errors used by controllers

type ErrCode string

const (
	ErrBookNotFound      ErrCode = "BOOK_NOT_FOUND"
	ErrRecordNotFound    ErrCode = "RECORD_NOT_FOUND"
	ErrNoCopies          ErrCode = "NO_COPIES"
	ErrDuplicateBorrow   ErrCode = "DUPLICATE_BORROW"
	ErrInvalidStatus     ErrCode = "INVALID_STATUS"
	ErrNotOwner          ErrCode = "NOT_OWNER"
	ErrInventoryConflict ErrCode = "INVENTORY_CONFLICT"
)

type codedError struct{ code ErrCode }

func (e codedError) Error() string { return string(e.code) }
func (e codedError) Code() ErrCode { return e.code }
func makeErr(c ErrCode) error      { return codedError{code: c} }

// Code extracts error code
func Code(err error) ErrCode {
	var ce interface{ Code() ErrCode }
	if errors.As(err, &ce) {
		return ce.Code()
	}
	return ""
}

// Views that mutating operations change. The engine only reports them;
// acting on the report is the caller's concern.

const (
	ViewBorrowRecords = "/admin/borrow-records"
	ViewProfile       = "/my-profile"
)

func ViewBookDetail(bookID string) string { return "/books/" + bookID }

type ViewInvalidator interface {
	Invalidate(views ...string)
}

// Eligibility reasons returned to the caller for user-facing messaging.

const (
	ReasonNoCopies        = "no copies left"
	ReasonAlreadyBorrowed = "you already have a pending or active request for this book"
)

// Eligible is the pure predicate behind CheckEligibility. The UI may call
// it ahead of time, but RequestBorrow re-runs the same checks inside its
// transaction; the server-side check is the source of truth.
func Eligible(book *model.Book, activeRecords int) (bool, string) {
	if activeRecords > 0 {
		return false, ReasonAlreadyBorrowed
	}
	if book == nil || book.AvailableCopies <= 0 {
		return false, ReasonNoCopies
	}
	return true, ""
}

type AdminRow = borrowrepo.AdminRow
type UserRow = borrowrepo.UserRow

type Repo interface {
	Transact(ctx context.Context, fn func(tx *sqlx.Tx) error) error
	Insert(ctx context.Context, tx *sqlx.Tx, userID, bookID string, borrow, due time.Time) (*model.BorrowRecord, error)
	ByID(ctx context.Context, id string) (*model.BorrowRecord, error)
	ByIDForUpdate(ctx context.Context, tx *sqlx.Tx, id string) (*model.BorrowRecord, error)
	CountActive(ctx context.Context, tx *sqlx.Tx, userID, bookID string) (int, error)
	UpdateStatus(ctx context.Context, tx *sqlx.Tx, id string, status model.BorrowStatus, returnDate *time.Time) error
	SetDismissed(ctx context.Context, id string) error
	ListAll(ctx context.Context, page, limit int, sortAsc bool) ([]AdminRow, int, error)
	ListForUser(ctx context.Context, userID string, includeDismissed bool, page, limit int) ([]UserRow, int, error)
}

// Inventory is the ledger port: the only way this service touches copy
// counts. Adjustments are relative and applied by the database.
type Inventory interface {
	ByID(ctx context.Context, id string) (*model.Book, error)
	AdjustAvailable(ctx context.Context, tx *sqlx.Tx, bookID string, delta int) (bool, error)
}

type Service interface {
	CheckEligibility(ctx context.Context, userID, bookID string) (bool, string, error)
	RequestBorrow(ctx context.Context, userID, bookID string) (*model.BorrowRecord, error)
	TransitionStatus(ctx context.Context, recordID string, newStatus model.BorrowStatus) (*model.BorrowRecord, error)
	Dismiss(ctx context.Context, recordID, actorID string, role model.Role) error
	MyRecords(ctx context.Context, userID string, page, limit int) ([]UserRow, int, error)
	ListAll(ctx context.Context, page, limit int, sortAsc bool) ([]AdminRow, int, error)
}

// ----- Service implementation -----

type service struct {
	r     Repo
	inv   Inventory
	views ViewInvalidator
}

func New(r Repo, inv Inventory, views ViewInvalidator) Service {
	return &service{r: r, inv: inv, views: views}
}

// CheckEligibility is the read-only gate the UI consults before offering
// the borrow button. Never trusted on its own.
func (s *service) CheckEligibility(ctx context.Context, userID, bookID string) (bool, string, error) {
	book, err := s.inv.ByID(ctx, bookID)
	if err != nil {
		return false, "", err
	}
	if book == nil {
		return false, "", makeErr(ErrBookNotFound)
	}

	var active int
	err = s.r.Transact(ctx, func(tx *sqlx.Tx) error {
		var terr error
		active, terr = s.r.CountActive(ctx, tx, userID, bookID)
		return terr
	})
	if err != nil {
		return false, "", err
	}

	ok, reason := Eligible(book, active)
	return ok, reason, nil
}

// RequestBorrow inserts a PENDING record and takes one copy from the pool
// as a single transaction. The decrement is a conditional update, so two
// racing requests cannot drive the counter negative.
func (s *service) RequestBorrow(ctx context.Context, userID, bookID string) (*model.BorrowRecord, error) {
	var rec *model.BorrowRecord
	err := s.r.Transact(ctx, func(tx *sqlx.Tx) error {
		active, err := s.r.CountActive(ctx, tx, userID, bookID)
		if err != nil {
			return err
		}
		if active > 0 {
			return makeErr(ErrDuplicateBorrow)
		}

		applied, err := s.inv.AdjustAvailable(ctx, tx, bookID, -1)
		if err != nil {
			return err
		}
		if !applied {
			book, err := s.inv.ByID(ctx, bookID)
			if err != nil {
				return err
			}
			if book == nil {
				return makeErr(ErrBookNotFound)
			}
			return makeErr(ErrNoCopies)
		}

		now := time.Now().UTC()
		rec, err = s.r.Insert(ctx, tx, userID, bookID, now, now.AddDate(0, 0, LoanDays))
		return mapInsertErr(err)
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ViewBorrowRecords, ViewProfile, ViewBookDetail(bookID))
	return rec, nil
}

// mapInsertErr translates a unique-violation abort from the one-active-
// record-per-user-and-book index into the duplicate code. Two racing
// requests both pass CountActive; the loser's insert trips the index and
// must read as a conflict, not a server fault.
func mapInsertErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		return makeErr(ErrDuplicateBorrow)
	}
	return err
}

// inventoryDelta is the signed available_copies adjustment implied by a
// status transition. Moving between two consuming statuses, or between two
// resolved ones, changes nothing.
func inventoryDelta(old, next model.BorrowStatus) int {
	switch {
	case old.Consuming() && !next.Consuming():
		return +1
	case !old.Consuming() && next.Consuming():
		return -1
	default:
		return 0
	}
}

func (s *service) TransitionStatus(ctx context.Context, recordID string, newStatus model.BorrowStatus) (*model.BorrowRecord, error) {
	if !newStatus.Valid() {
		return nil, makeErr(ErrInvalidStatus)
	}

	var rec *model.BorrowRecord
	err := s.r.Transact(ctx, func(tx *sqlx.Tx) error {
		var err error
		rec, err = s.r.ByIDForUpdate(ctx, tx, recordID)
		if err != nil {
			return err
		}
		if rec == nil {
			return makeErr(ErrRecordNotFound)
		}

		var returnDate *time.Time
		if newStatus == model.BorrowReturned || newStatus == model.BorrowLateReturn {
			today := time.Now().UTC()
			returnDate = &today
		}

		if err := s.r.UpdateStatus(ctx, tx, recordID, newStatus, returnDate); err != nil {
			return err
		}

		if delta := inventoryDelta(rec.Status, newStatus); delta != 0 {
			applied, err := s.inv.AdjustAvailable(ctx, tx, rec.BookID, delta)
			if err != nil {
				return err
			}
			if !applied {
				return makeErr(ErrInventoryConflict)
			}
		}

		rec.Status = newStatus
		rec.ReturnDate = returnDate
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ViewBorrowRecords, ViewProfile, ViewBookDetail(rec.BookID))
	return rec, nil
}

// Dismiss soft-hides a record from its owner's view. Resolved records stay
// queryable for receipts and audit. Dismissing twice succeeds.
func (s *service) Dismiss(ctx context.Context, recordID, actorID string, role model.Role) error {
	rec, err := s.r.ByID(ctx, recordID)
	if err != nil {
		return err
	}
	if rec == nil {
		return makeErr(ErrRecordNotFound)
	}
	if rec.UserID != actorID && role != model.RoleAdmin {
		return makeErr(ErrNotOwner)
	}
	if err := s.r.SetDismissed(ctx, recordID); err != nil {
		return err
	}
	s.invalidate(ViewProfile)
	return nil
}

func (s *service) MyRecords(ctx context.Context, userID string, page, limit int) ([]UserRow, int, error) {
	return s.r.ListForUser(ctx, userID, false, page, limit)
}

func (s *service) ListAll(ctx context.Context, page, limit int, sortAsc bool) ([]AdminRow, int, error) {
	return s.r.ListAll(ctx, page, limit, sortAsc)
}

func (s *service) invalidate(views ...string) {
	if s.views != nil {
		s.views.Invalidate(views...)
	}
}
