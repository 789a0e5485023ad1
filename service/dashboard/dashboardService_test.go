package dashboardsvc

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"bookwise/model"
	borrowrepo "bookwise/repository/borrow"
	userrepo "bookwise/repository/user"
)

type mockBorrowRepo struct {
	latestFn func(ctx context.Context, limit int) ([]borrowrepo.AdminRow, error)
	countFn  func(ctx context.Context) (int, error)
}

func (m *mockBorrowRepo) LatestPending(ctx context.Context, limit int) ([]borrowrepo.AdminRow, error) {
	if m.latestFn == nil {
		return nil, nil
	}
	return m.latestFn(ctx, limit)
}
func (m *mockBorrowRepo) CountBorrowed(ctx context.Context) (int, error) {
	if m.countFn == nil {
		return 0, nil
	}
	return m.countFn(ctx)
}

type mockUserRepo struct {
	pendingFn func(ctx context.Context, page, limit int) ([]userrepo.ListedUser, int, error)
	countFn   func(ctx context.Context) (int, error)
}

func (m *mockUserRepo) ListPending(ctx context.Context, page, limit int) ([]userrepo.ListedUser, int, error) {
	if m.pendingFn == nil {
		return nil, 0, nil
	}
	return m.pendingFn(ctx, page, limit)
}
func (m *mockUserRepo) CountApproved(ctx context.Context) (int, error) {
	if m.countFn == nil {
		return 0, nil
	}
	return m.countFn(ctx)
}

type mockBookRepo struct {
	recentFn func(ctx context.Context, limit int) ([]model.Book, error)
	countFn  func(ctx context.Context) (int, error)
}

func (m *mockBookRepo) Recent(ctx context.Context, limit int) ([]model.Book, error) {
	if m.recentFn == nil {
		return nil, nil
	}
	return m.recentFn(ctx, limit)
}
func (m *mockBookRepo) Count(ctx context.Context) (int, error) {
	if m.countFn == nil {
		return 0, nil
	}
	return m.countFn(ctx)
}

func TestOverview_StatsAndLists(t *testing.T) {
	var gotBorrowLimit, gotAccountLimit, gotBookLimit int
	br := &mockBorrowRepo{
		latestFn: func(ctx context.Context, limit int) ([]borrowrepo.AdminRow, error) {
			gotBorrowLimit = limit
			return []borrowrepo.AdminRow{{ID: "rec-1"}}, nil
		},
		countFn: func(ctx context.Context) (int, error) { return 7, nil },
	}
	ur := &mockUserRepo{
		pendingFn: func(ctx context.Context, page, limit int) ([]userrepo.ListedUser, int, error) {
			gotAccountLimit = limit
			return []userrepo.ListedUser{{ID: "user-1"}}, 1, nil
		},
		countFn: func(ctx context.Context) (int, error) { return 42, nil },
	}
	bk := &mockBookRepo{
		recentFn: func(ctx context.Context, limit int) ([]model.Book, error) {
			gotBookLimit = limit
			return []model.Book{{ID: "book-1"}}, nil
		},
		countFn: func(ctx context.Context) (int, error) { return 120, nil },
	}

	ov, err := New(br, ur, bk).Overview(context.Background())
	require.NoError(t, err)

	require.Equal(t, Stats{TotalBooks: 120, TotalUsers: 42, BorrowedBooks: 7}, ov.Stats)
	require.Len(t, ov.LatestBorrowRequests, 1)
	require.Len(t, ov.LatestAccountRequests, 1)
	require.Len(t, ov.RecentBooks, 1)

	require.Equal(t, pendingBorrowLimit, gotBorrowLimit)
	require.Equal(t, accountRequestLimit, gotAccountLimit)
	require.Equal(t, recentBookLimit, gotBookLimit)
}

func TestOverview_CountErrorPropagates(t *testing.T) {
	bk := &mockBookRepo{
		countFn: func(ctx context.Context) (int, error) { return 0, errors.New("db down") },
	}
	_, err := New(&mockBorrowRepo{}, &mockUserRepo{}, bk).Overview(context.Background())
	require.Error(t, err)
}
