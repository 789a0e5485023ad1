package dashboardsvc

import (
	"context"

	"bookwise/model"
	borrowrepo "bookwise/repository/borrow"
	userrepo "bookwise/repository/user"
)

const (
	pendingBorrowLimit  = 5
	accountRequestLimit = 9
	recentBookLimit     = 8
)

// Stats are the headline counters at the top of the admin dashboard.
type Stats struct {
	TotalBooks    int `json:"total_books"`
	TotalUsers    int `json:"total_users"`
	BorrowedBooks int `json:"borrowed_books"`
}

type Overview struct {
	Stats                 Stats                 `json:"stats"`
	LatestBorrowRequests  []borrowrepo.AdminRow `json:"latest_borrow_requests"`
	LatestAccountRequests []userrepo.ListedUser `json:"latest_account_requests"`
	RecentBooks           []model.Book          `json:"recent_books"`
}

type BorrowRepo interface {
	LatestPending(ctx context.Context, limit int) ([]borrowrepo.AdminRow, error)
	CountBorrowed(ctx context.Context) (int, error)
}

type UserRepo interface {
	ListPending(ctx context.Context, page, limit int) ([]userrepo.ListedUser, int, error)
	CountApproved(ctx context.Context) (int, error)
}

type BookRepo interface {
	Recent(ctx context.Context, limit int) ([]model.Book, error)
	Count(ctx context.Context) (int, error)
}

type Service interface {
	Overview(ctx context.Context) (*Overview, error)
}

type service struct {
	br BorrowRepo
	ur UserRepo
	bk BookRepo
}

func New(br BorrowRepo, ur UserRepo, bk BookRepo) Service {
	return &service{br: br, ur: ur, bk: bk}
}

func (s *service) Overview(ctx context.Context) (*Overview, error) {
	borrows, err := s.br.LatestPending(ctx, pendingBorrowLimit)
	if err != nil {
		return nil, err
	}
	accounts, _, err := s.ur.ListPending(ctx, 1, accountRequestLimit)
	if err != nil {
		return nil, err
	}
	books, err := s.bk.Recent(ctx, recentBookLimit)
	if err != nil {
		return nil, err
	}

	totalBooks, err := s.bk.Count(ctx)
	if err != nil {
		return nil, err
	}
	totalUsers, err := s.ur.CountApproved(ctx)
	if err != nil {
		return nil, err
	}
	borrowed, err := s.br.CountBorrowed(ctx)
	if err != nil {
		return nil, err
	}

	return &Overview{
		Stats: Stats{
			TotalBooks:    totalBooks,
			TotalUsers:    totalUsers,
			BorrowedBooks: borrowed,
		},
		LatestBorrowRequests:  borrows,
		LatestAccountRequests: accounts,
		RecentBooks:           books,
	}, nil
}
