package borrowrepo

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"bookwise/model"

	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
)

var pg = goqu.Dialect("postgres")

// AdminRow is the joined shape shown on the admin borrow-records table.
type AdminRow struct {
	ID           string             `json:"id" db:"id"`
	BorrowDate   time.Time          `json:"borrow_date" db:"borrow_date"`
	DueDate      time.Time          `json:"due_date" db:"due_date"`
	ReturnDate   *time.Time         `json:"return_date,omitempty" db:"return_date"`
	Status       model.BorrowStatus `json:"status" db:"status"`
	BookTitle    string             `json:"book_title" db:"book_title"`
	BookGenre    string             `json:"book_genre" db:"book_genre"`
	BookCoverURL string             `json:"book_cover_url" db:"book_cover_url"`
	UserFullName string             `json:"user_full_name" db:"user_full_name"`
	UserEmail    string             `json:"user_email" db:"user_email"`
}

// UserRow is a record joined with its book, for the profile view.
type UserRow struct {
	ID         string             `json:"id" db:"id"`
	BorrowDate time.Time          `json:"borrow_date" db:"borrow_date"`
	DueDate    time.Time          `json:"due_date" db:"due_date"`
	ReturnDate *time.Time         `json:"return_date,omitempty" db:"return_date"`
	Status     model.BorrowStatus `json:"status" db:"status"`
	Dismissed  bool               `json:"dismissed" db:"dismissed"`
	BookID     string             `json:"book_id" db:"book_id"`
	BookTitle  string             `json:"book_title" db:"book_title"`
	BookAuthor string             `json:"book_author" db:"book_author"`
	BookGenre  string             `json:"book_genre" db:"book_genre"`
	CoverURL   string             `json:"cover_url" db:"cover_url"`
	CoverColor string             `json:"cover_color" db:"cover_color"`
}

// ReceiptRow feeds the receipt projection.
type ReceiptRow struct {
	ID           string             `db:"id"`
	BorrowDate   time.Time          `db:"borrow_date"`
	DueDate      time.Time          `db:"due_date"`
	Status       model.BorrowStatus `db:"status"`
	BookTitle    string             `db:"book_title"`
	BookAuthor   string             `db:"book_author"`
	BookGenre    string             `db:"book_genre"`
	UserID       string             `db:"user_id"`
	UserFullName string             `db:"user_full_name"`
	UserEmail    string             `db:"user_email"`
}

type Repo interface {
	Transact(ctx context.Context, fn func(tx *sqlx.Tx) error) error

	Insert(ctx context.Context, tx *sqlx.Tx, userID, bookID string, borrow, due time.Time) (*model.BorrowRecord, error)
	ByID(ctx context.Context, id string) (*model.BorrowRecord, error)
	ByIDForUpdate(ctx context.Context, tx *sqlx.Tx, id string) (*model.BorrowRecord, error)
	CountActive(ctx context.Context, tx *sqlx.Tx, userID, bookID string) (int, error)
	UpdateStatus(ctx context.Context, tx *sqlx.Tx, id string, status model.BorrowStatus, returnDate *time.Time) error
	ForceBorrowed(ctx context.Context, tx *sqlx.Tx, id string, borrow, due time.Time) error
	SetDismissed(ctx context.Context, id string) error

	ListAll(ctx context.Context, page, limit int, sortAsc bool) ([]AdminRow, int, error)
	ListForUser(ctx context.Context, userID string, includeDismissed bool, page, limit int) ([]UserRow, int, error)
	LatestPending(ctx context.Context, limit int) ([]AdminRow, error)
	CountBorrowed(ctx context.Context) (int, error)
	ReceiptData(ctx context.Context, id string) (*ReceiptRow, error)
}

type repo struct{ db *sqlx.DB }

func New(db *sqlx.DB) Repo { return &repo{db: db} }

func (r *repo) Transact(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func (r *repo) Insert(ctx context.Context, tx *sqlx.Tx, userID, bookID string, borrow, due time.Time) (*model.BorrowRecord, error) {
	rec := &model.BorrowRecord{
		ID:         uuid.NewString(),
		UserID:     userID,
		BookID:     bookID,
		BorrowDate: borrow,
		DueDate:    due,
		Status:     model.BorrowPending,
	}
	const q = `
		INSERT INTO borrow_records (id, user_id, book_id, borrow_date, due_date, status)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING created_at`
	if err := tx.QueryRowContext(ctx, q,
		rec.ID, rec.UserID, rec.BookID, rec.BorrowDate, rec.DueDate, rec.Status,
	).Scan(&rec.CreatedAt); err != nil {
		return nil, err
	}
	return rec, nil
}

func (r *repo) ByID(ctx context.Context, id string) (*model.BorrowRecord, error) {
	var rec model.BorrowRecord
	err := r.db.GetContext(ctx, &rec, `SELECT * FROM borrow_records WHERE id=$1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *repo) ByIDForUpdate(ctx context.Context, tx *sqlx.Tx, id string) (*model.BorrowRecord, error) {
	var rec model.BorrowRecord
	err := tx.GetContext(ctx, &rec, `SELECT * FROM borrow_records WHERE id=$1 FOR UPDATE`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// CountActive counts the user's records for this book still holding a copy.
func (r *repo) CountActive(ctx context.Context, tx *sqlx.Tx, userID, bookID string) (int, error) {
	const q = `
		SELECT COUNT(*)
		FROM borrow_records
		WHERE user_id = $1
		AND book_id = $2
		AND status IN ('PENDING','BORROWED')`
	var n int
	err := tx.QueryRowContext(ctx, q, userID, bookID).Scan(&n)
	return n, err
}

func (r *repo) UpdateStatus(ctx context.Context, tx *sqlx.Tx, id string, status model.BorrowStatus, returnDate *time.Time) error {
	const q = `
		UPDATE borrow_records
		SET status = $2, return_date = $3
		WHERE id = $1`
	res, err := tx.ExecContext(ctx, q, id, status, returnDate)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *repo) ForceBorrowed(ctx context.Context, tx *sqlx.Tx, id string, borrow, due time.Time) error {
	const q = `
		UPDATE borrow_records
		SET status = 'BORROWED', borrow_date = $2, due_date = $3, return_date = NULL
		WHERE id = $1`
	res, err := tx.ExecContext(ctx, q, id, borrow, due)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// SetDismissed is idempotent; dismissing twice is a no-op.
func (r *repo) SetDismissed(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE borrow_records SET dismissed = TRUE WHERE id = $1`, id)
	return err
}

func (r *repo) ListAll(ctx context.Context, page, limit int, sortAsc bool) ([]AdminRow, int, error) {
	ds := pg.From(goqu.T("borrow_records").As("r")).
		LeftJoin(goqu.T("books").As("b"), goqu.On(goqu.Ex{"b.id": goqu.I("r.book_id")})).
		LeftJoin(goqu.T("users").As("u"), goqu.On(goqu.Ex{"u.id": goqu.I("r.user_id")}))

	order := goqu.I("r.borrow_date").Desc()
	if sortAsc {
		order = goqu.I("r.borrow_date").Asc()
	}

	countSQL, countArgs, err := ds.Select(goqu.COUNT("*")).ToSQL()
	if err != nil {
		return nil, 0, err
	}
	var total int
	if err := r.db.GetContext(ctx, &total, countSQL, countArgs...); err != nil {
		return nil, 0, err
	}

	pageSQL, pageArgs, err := ds.Select(
		goqu.I("r.id").As("id"),
		goqu.I("r.borrow_date").As("borrow_date"),
		goqu.I("r.due_date").As("due_date"),
		goqu.I("r.return_date").As("return_date"),
		goqu.I("r.status").As("status"),
		goqu.COALESCE(goqu.I("b.title"), "").As("book_title"),
		goqu.COALESCE(goqu.I("b.genre"), "").As("book_genre"),
		goqu.COALESCE(goqu.I("b.cover_url"), "").As("book_cover_url"),
		goqu.COALESCE(goqu.I("u.full_name"), "").As("user_full_name"),
		goqu.COALESCE(goqu.I("u.email"), "").As("user_email"),
	).Order(order).Limit(uint(limit)).Offset(uint((page - 1) * limit)).ToSQL()
	if err != nil {
		return nil, 0, err
	}
	var out []AdminRow
	if err := r.db.SelectContext(ctx, &out, pageSQL, pageArgs...); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *repo) ListForUser(ctx context.Context, userID string, includeDismissed bool, page, limit int) ([]UserRow, int, error) {
	ds := pg.From(goqu.T("borrow_records").As("r")).
		InnerJoin(goqu.T("books").As("b"), goqu.On(goqu.Ex{"b.id": goqu.I("r.book_id")})).
		Where(goqu.I("r.user_id").Eq(userID))
	if !includeDismissed {
		ds = ds.Where(goqu.I("r.dismissed").IsFalse())
	}

	countSQL, countArgs, err := ds.Select(goqu.COUNT("*")).ToSQL()
	if err != nil {
		return nil, 0, err
	}
	var total int
	if err := r.db.GetContext(ctx, &total, countSQL, countArgs...); err != nil {
		return nil, 0, err
	}

	pageSQL, pageArgs, err := ds.Select(
		goqu.I("r.id").As("id"),
		goqu.I("r.borrow_date").As("borrow_date"),
		goqu.I("r.due_date").As("due_date"),
		goqu.I("r.return_date").As("return_date"),
		goqu.I("r.status").As("status"),
		goqu.I("r.dismissed").As("dismissed"),
		goqu.I("b.id").As("book_id"),
		goqu.I("b.title").As("book_title"),
		goqu.I("b.author").As("book_author"),
		goqu.I("b.genre").As("book_genre"),
		goqu.I("b.cover_url").As("cover_url"),
		goqu.I("b.cover_color").As("cover_color"),
	).Order(goqu.I("r.borrow_date").Desc()).
		Limit(uint(limit)).Offset(uint((page - 1) * limit)).ToSQL()
	if err != nil {
		return nil, 0, err
	}
	var out []UserRow
	if err := r.db.SelectContext(ctx, &out, pageSQL, pageArgs...); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *repo) LatestPending(ctx context.Context, limit int) ([]AdminRow, error) {
	const q = `
		SELECT r.id, r.borrow_date, r.due_date, r.return_date, r.status,
			COALESCE(b.title,'') AS book_title,
			COALESCE(b.genre,'') AS book_genre,
			COALESCE(b.cover_url,'') AS book_cover_url,
			COALESCE(u.full_name,'') AS user_full_name,
			COALESCE(u.email,'') AS user_email
		FROM borrow_records r
		LEFT JOIN books b ON b.id = r.book_id
		LEFT JOIN users u ON u.id = r.user_id
		WHERE r.status = 'PENDING'
		ORDER BY r.borrow_date DESC
		LIMIT $1`
	var out []AdminRow
	err := r.db.SelectContext(ctx, &out, q, limit)
	return out, err
}

func (r *repo) CountBorrowed(ctx context.Context) (int, error) {
	var n int
	err := r.db.GetContext(ctx, &n,
		`SELECT COUNT(*) FROM borrow_records WHERE status = 'BORROWED'`)
	return n, err
}

func (r *repo) ReceiptData(ctx context.Context, id string) (*ReceiptRow, error) {
	const q = `
		SELECT r.id, r.borrow_date, r.due_date, r.status,
			b.title AS book_title,
			b.author AS book_author,
			b.genre AS book_genre,
			u.id AS user_id,
			u.full_name AS user_full_name,
			u.email AS user_email
		FROM borrow_records r
		INNER JOIN books b ON b.id = r.book_id
		INNER JOIN users u ON u.id = r.user_id
		WHERE r.id = $1`
	var row ReceiptRow
	err := r.db.GetContext(ctx, &row, q, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}
