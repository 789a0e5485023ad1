package booksvc

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"bookwise/model"
)

type ErrCode string

const (
	ErrNotFound           ErrCode = "BOOK_NOT_FOUND"
	ErrBadInput           ErrCode = "BAD_INPUT"
	ErrCapacityBelowLoans ErrCode = "CAPACITY_BELOW_ACTIVE_LOANS"
)

type codedError struct{ code ErrCode }

func (e codedError) Error() string { return string(e.code) }
func (e codedError) Code() ErrCode { return e.code }
func makeErr(c ErrCode) error      { return codedError{code: c} }

// CapacityError reports how many active loans blocked a capacity edit, so
// the admin can see why the new total was rejected.
type CapacityError struct{ Active int }

func (e CapacityError) Error() string {
	return fmt.Sprintf("new capacity is below %d active loans", e.Active)
}
func (e CapacityError) Code() ErrCode { return ErrCapacityBelowLoans }

func Code(err error) ErrCode {
	var ce interface{ Code() ErrCode }
	if errors.As(err, &ce) {
		return ce.Code()
	}
	return ""
}

type Repo interface {
	Transact(ctx context.Context, fn func(tx *sqlx.Tx) error) error
	Create(ctx context.Context, b *model.Book) error
	UpdateMeta(ctx context.Context, b *model.Book) error
	ByID(ctx context.Context, id string) (*model.Book, error)
	List(ctx context.Context) ([]model.Book, error)
	Search(ctx context.Context, spec model.SearchSpec) ([]model.Book, int, error)
	SetCapacity(ctx context.Context, tx *sqlx.Tx, bookID string, total, available int) error
	CountActiveLoans(ctx context.Context, tx *sqlx.Tx, bookID string) (int, error)
}

type Service interface {
	Create(ctx context.Context, b *model.Book) error
	UpdateMeta(ctx context.Context, b *model.Book) error
	EditCapacity(ctx context.Context, bookID string, newTotal int) (*model.Book, error)
	Detail(ctx context.Context, id string) (*model.Book, error)
	List(ctx context.Context) ([]model.Book, error)
	Search(ctx context.Context, spec model.SearchSpec) ([]model.Book, int, error)
}

type service struct{ r Repo }

func New(r Repo) Service { return &service{r: r} }

func (s *service) Create(ctx context.Context, b *model.Book) error {
	if b.Title == "" || b.Author == "" || b.Genre == "" || b.TotalCopies < 0 {
		return makeErr(ErrBadInput)
	}
	return s.r.Create(ctx, b)
}

func (s *service) UpdateMeta(ctx context.Context, b *model.Book) error {
	if b.ID == "" || b.Title == "" || b.Author == "" || b.Genre == "" {
		return makeErr(ErrBadInput)
	}
	err := s.r.UpdateMeta(ctx, b)
	if errors.Is(err, sql.ErrNoRows) {
		return makeErr(ErrNotFound)
	}
	return err
}

// EditCapacity changes total_copies and recomputes available_copies as
// newTotal minus the loans currently holding a copy. Shrinking below the
// active-loan count is refused with that count attached.
func (s *service) EditCapacity(ctx context.Context, bookID string, newTotal int) (*model.Book, error) {
	if newTotal < 0 {
		return nil, makeErr(ErrBadInput)
	}
	err := s.r.Transact(ctx, func(tx *sqlx.Tx) error {
		active, err := s.r.CountActiveLoans(ctx, tx, bookID)
		if err != nil {
			return err
		}
		if newTotal < active {
			return CapacityError{Active: active}
		}
		return s.r.SetCapacity(ctx, tx, bookID, newTotal, newTotal-active)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return nil, makeErr(ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	book, err := s.r.ByID(ctx, bookID)
	if err != nil {
		return nil, err
	}
	if book == nil {
		return nil, makeErr(ErrNotFound)
	}
	return book, nil
}

func (s *service) Detail(ctx context.Context, id string) (*model.Book, error) {
	book, err := s.r.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if book == nil {
		return nil, makeErr(ErrNotFound)
	}
	return book, nil
}

func (s *service) List(ctx context.Context) ([]model.Book, error) { return s.r.List(ctx) }

func (s *service) Search(ctx context.Context, spec model.SearchSpec) ([]model.Book, int, error) {
	if spec.Page < 1 {
		spec.Page = 1
	}
	if spec.Limit < 1 || spec.Limit > 100 {
		spec.Limit = 20
	}
	return s.r.Search(ctx, spec)
}
