package receiptsvc

import (
	"context"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"bookwise/model"
	borrowrepo "bookwise/repository/borrow"
)

type mockRepo struct {
	byIDUpdFn   func(ctx context.Context, tx *sqlx.Tx, id string) (*model.BorrowRecord, error)
	forceFn     func(ctx context.Context, tx *sqlx.Tx, id string, borrow, due time.Time) error
	receiptFn   func(ctx context.Context, id string) (*borrowrepo.ReceiptRow, error)
	forcedCalls int
}

var _ Repo = (*mockRepo)(nil)

func (m *mockRepo) Transact(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	return fn(nil)
}

func (m *mockRepo) ByIDForUpdate(ctx context.Context, tx *sqlx.Tx, id string) (*model.BorrowRecord, error) {
	if m.byIDUpdFn == nil {
		return nil, nil
	}
	return m.byIDUpdFn(ctx, tx, id)
}

func (m *mockRepo) ForceBorrowed(ctx context.Context, tx *sqlx.Tx, id string, borrow, due time.Time) error {
	m.forcedCalls++
	if m.forceFn == nil {
		return nil
	}
	return m.forceFn(ctx, tx, id, borrow, due)
}

func (m *mockRepo) ReceiptData(ctx context.Context, id string) (*borrowrepo.ReceiptRow, error) {
	if m.receiptFn == nil {
		return nil, nil
	}
	return m.receiptFn(ctx, id)
}

func sampleRow(status model.BorrowStatus) *borrowrepo.ReceiptRow {
	return &borrowrepo.ReceiptRow{
		ID:           "a1b2c3d4-0000-0000-0000-000000000000",
		BorrowDate:   time.Date(2026, 3, 1, 10, 30, 0, 0, time.UTC),
		DueDate:      time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC),
		Status:       status,
		BookTitle:    "The Go Programming Language",
		BookAuthor:   "Donovan & Kernighan",
		BookGenre:    "Programming",
		UserID:       "user-1",
		UserFullName: "Ada Lovelace",
		UserEmail:    "ada@example.com",
	}
}

func TestView_Owner(t *testing.T) {
	r := &mockRepo{
		receiptFn: func(ctx context.Context, id string) (*borrowrepo.ReceiptRow, error) {
			return sampleRow(model.BorrowBorrowed), nil
		},
	}
	svc := New(r, nil)

	rcpt, err := svc.View(context.Background(), "rec-1", "user-1", model.RoleUser)
	require.NoError(t, err)
	require.Equal(t, "A1B2C3D4", rcpt.ReceiptID)
	require.Equal(t, "01/03/2026", rcpt.BorrowedOn)
	require.Equal(t, "15/03/2026", rcpt.DueDate)
	require.Equal(t, "14 Days", rcpt.Duration)
	require.Equal(t, "Ada Lovelace", rcpt.UserName)
	require.False(t, rcpt.Pending)
}

func TestView_PendingFlagsPlaceholderDates(t *testing.T) {
	r := &mockRepo{
		receiptFn: func(ctx context.Context, id string) (*borrowrepo.ReceiptRow, error) {
			return sampleRow(model.BorrowPending), nil
		},
	}
	svc := New(r, nil)

	rcpt, err := svc.View(context.Background(), "rec-1", "user-1", model.RoleUser)
	require.NoError(t, err)
	require.True(t, rcpt.Pending)
}

func TestView_AdminMayViewAny(t *testing.T) {
	r := &mockRepo{
		receiptFn: func(ctx context.Context, id string) (*borrowrepo.ReceiptRow, error) {
			return sampleRow(model.BorrowReturned), nil
		},
	}
	svc := New(r, nil)

	_, err := svc.View(context.Background(), "rec-1", "admin-9", model.RoleAdmin)
	require.NoError(t, err)
}

func TestView_StrangerForbidden(t *testing.T) {
	r := &mockRepo{
		receiptFn: func(ctx context.Context, id string) (*borrowrepo.ReceiptRow, error) {
			return sampleRow(model.BorrowBorrowed), nil
		},
	}
	svc := New(r, nil)

	_, err := svc.View(context.Background(), "rec-1", "user-2", model.RoleUser)
	require.Equal(t, ErrNotOwner, Code(err))
}

func TestView_NotFound(t *testing.T) {
	svc := New(&mockRepo{}, nil)
	_, err := svc.View(context.Background(), "rec-1", "user-1", model.RoleUser)
	require.Equal(t, ErrRecordNotFound, Code(err))
}

func TestIssue_Success(t *testing.T) {
	var gotBorrow, gotDue time.Time
	r := &mockRepo{
		byIDUpdFn: func(ctx context.Context, tx *sqlx.Tx, id string) (*model.BorrowRecord, error) {
			return &model.BorrowRecord{ID: id, Status: model.BorrowPending}, nil
		},
		forceFn: func(ctx context.Context, tx *sqlx.Tx, id string, borrow, due time.Time) error {
			gotBorrow, gotDue = borrow, due
			return nil
		},
		receiptFn: func(ctx context.Context, id string) (*borrowrepo.ReceiptRow, error) {
			return sampleRow(model.BorrowBorrowed), nil
		},
	}
	svc := New(r, nil)

	rcpt, err := svc.Issue(context.Background(), "rec-1", model.RoleAdmin)
	require.NoError(t, err)
	require.Equal(t, 1, r.forcedCalls)
	require.WithinDuration(t, time.Now().UTC(), gotBorrow, time.Minute)
	require.Equal(t, gotBorrow.AddDate(0, 0, 14), gotDue)
	require.False(t, rcpt.Pending)
}

func TestIssue_NonAdminForbidden(t *testing.T) {
	svc := New(&mockRepo{}, nil)
	_, err := svc.Issue(context.Background(), "rec-1", model.RoleUser)
	require.Equal(t, ErrNotOwner, Code(err))
}

func TestIssue_NotFound(t *testing.T) {
	svc := New(&mockRepo{}, nil)
	_, err := svc.Issue(context.Background(), "rec-1", model.RoleAdmin)
	require.Equal(t, ErrRecordNotFound, Code(err))
}

func TestIssue_InvalidStates(t *testing.T) {
	for _, status := range []model.BorrowStatus{
		model.BorrowBorrowed, model.BorrowReturned, model.BorrowLateReturn,
	} {
		r := &mockRepo{
			byIDUpdFn: func(ctx context.Context, tx *sqlx.Tx, id string) (*model.BorrowRecord, error) {
				return &model.BorrowRecord{ID: id, Status: status}, nil
			},
		}
		svc := New(r, nil)

		_, err := svc.Issue(context.Background(), "rec-1", model.RoleAdmin)
		require.Equalf(t, ErrNotPending, Code(err), "status %s", status)
		require.Zero(t, r.forcedCalls)
	}
}
