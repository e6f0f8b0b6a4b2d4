package service

import (
	"context"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/shelfkeep/shelfkeep-server/internal/domain"
	"github.com/shelfkeep/shelfkeep-server/internal/dto"
	"github.com/shelfkeep/shelfkeep-server/internal/errors"
	"github.com/shelfkeep/shelfkeep-server/internal/store"
)

// DefaultTopBooksLimit is the report size when the caller does not ask
// for one.
const DefaultTopBooksLimit = 5

// ReportService derives reports from the stores. It is read-only and
// never mutates state; overdue status is computed at read time.
type ReportService struct {
	store  *store.Store
	logger *slog.Logger
}

// NewReportService creates a new report service.
func NewReportService(store *store.Store, logger *slog.Logger) *ReportService {
	return &ReportService{store: store, logger: logger}
}

// Overdue returns every active loan past its due date, annotated with
// its book and member, most overdue first (ascending due date, ties
// kept in loan creation order).
func (s *ReportService) Overdue(ctx context.Context) ([]dto.OverdueLoan, error) {
	now := time.Now()
	rows := make([]dto.OverdueLoan, 0)

	err := s.store.View(ctx, func(tx *store.Tx) error {
		loans, err := tx.ListLoans()
		if err != nil {
			return err
		}

		for _, loan := range loans {
			if !loan.IsOverdue(now) {
				continue
			}
			row := dto.OverdueLoan{Loan: loan}
			if book, err := tx.GetBook(loan.BookID); err == nil {
				row.Book = book
			}
			if member, err := tx.GetMember(loan.MemberID); err == nil {
				row.Member = member
			}
			rows = append(rows, row)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "failed to build overdue report")
	}

	slices.SortFunc(rows, func(a, b dto.OverdueLoan) int {
		if c := a.Loan.DueDate.Compare(b.Loan.DueDate); c != 0 {
			return c
		}
		return a.Loan.CreatedAt.Compare(b.Loan.CreatedAt)
	})

	return rows, nil
}

// TopBooks returns up to limit books ordered by checkout count
// descending, ties broken by ascending title. A non-positive limit
// falls back to DefaultTopBooksLimit.
func (s *ReportService) TopBooks(ctx context.Context, limit int) ([]*domain.Book, error) {
	if limit <= 0 {
		limit = DefaultTopBooksLimit
	}

	books, err := s.store.ListBooks(ctx)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "failed to list books")
	}

	slices.SortFunc(books, func(a, b *domain.Book) int {
		if a.CheckoutCount != b.CheckoutCount {
			return b.CheckoutCount - a.CheckoutCount
		}
		return strings.Compare(a.Title, b.Title)
	})

	if len(books) > limit {
		books = books[:limit]
	}
	return books, nil
}
