package service

import (
	"context"
	"testing"
	"time"

	"github.com/shelfkeep/shelfkeep-server/internal/domain"
	"github.com/shelfkeep/shelfkeep-server/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func backdateLoan(t *testing.T, s *store.Store, bookID string, due time.Time) {
	t.Helper()
	err := s.Update(context.Background(), func(tx *store.Tx) error {
		loan, err := tx.ActiveLoanForBook(bookID)
		if err != nil {
			return err
		}
		loan.DueDate = due
		return tx.PutLoan(loan)
	})
	require.NoError(t, err)
}

func TestOverdue_FiltersAndSorts(t *testing.T) {
	testStore := setupTestStore(t)
	lending := NewLendingService(testStore, testLogger())
	reports := NewReportService(testStore, testLogger())
	ctx := context.Background()

	dune := addBook(t, lending, "Dune")
	ubik := addBook(t, lending, "Ubik")
	vurt := addBook(t, lending, "Vurt")
	ann := addMember(t, lending, "Ann", "Lee")
	bob := addMember(t, lending, "Bob", "Ray")
	cat := addMember(t, lending, "Cat", "Fox")

	_, err := lending.Lend(ctx, dune.ID, ann.ID)
	require.NoError(t, err)
	_, err = lending.Lend(ctx, ubik.ID, bob.ID)
	require.NoError(t, err)
	_, err = lending.Lend(ctx, vurt.ID, cat.ID)
	require.NoError(t, err)

	now := time.Now()
	backdateLoan(t, testStore, dune.ID, now.Add(-24*time.Hour))
	backdateLoan(t, testStore, ubik.ID, now.Add(-72*time.Hour))
	// Vurt is on loan but not yet due.

	rows, err := reports.Overdue(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	// Most overdue first.
	assert.Equal(t, ubik.ID, rows[0].Loan.BookID)
	assert.Equal(t, dune.ID, rows[1].Loan.BookID)

	require.NotNil(t, rows[0].Book)
	require.NotNil(t, rows[0].Member)
	assert.Equal(t, "Ubik", rows[0].Book.Title)
	assert.Equal(t, "Bob Ray", rows[0].Member.FullName())
}

func TestOverdue_Empty(t *testing.T) {
	testStore := setupTestStore(t)
	reports := NewReportService(testStore, testLogger())

	rows, err := reports.Overdue(context.Background())
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestOverdue_DueDateBoundary(t *testing.T) {
	testStore := setupTestStore(t)
	lending := NewLendingService(testStore, testLogger())
	reports := NewReportService(testStore, testLogger())
	ctx := context.Background()

	dune := addBook(t, lending, "Dune")
	ann := addMember(t, lending, "Ann", "Lee")
	_, err := lending.Lend(ctx, dune.ID, ann.ID)
	require.NoError(t, err)

	// A due date in the future is not overdue, no matter how close.
	backdateLoan(t, testStore, dune.ID, time.Now().Add(time.Hour))

	rows, err := reports.Overdue(ctx)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func setCheckoutCount(t *testing.T, s *store.Store, bookID string, count int) {
	t.Helper()
	err := s.Update(context.Background(), func(tx *store.Tx) error {
		book, err := tx.GetBook(bookID)
		if err != nil {
			return err
		}
		book.CheckoutCount = count
		return tx.PutBook(book)
	})
	require.NoError(t, err)
}

func TestTopBooks_OrderAndTieBreak(t *testing.T) {
	testStore := setupTestStore(t)
	lending := NewLendingService(testStore, testLogger())
	reports := NewReportService(testStore, testLogger())
	ctx := context.Background()

	b := addBook(t, lending, "B")
	a := addBook(t, lending, "A")
	c := addBook(t, lending, "C")

	setCheckoutCount(t, testStore, a.ID, 5)
	setCheckoutCount(t, testStore, b.ID, 5)
	setCheckoutCount(t, testStore, c.ID, 2)

	top, err := reports.TopBooks(ctx, 5)
	require.NoError(t, err)
	require.Len(t, top, 3)

	// Equal counts fall back to title order.
	assert.Equal(t, "A", top[0].Title)
	assert.Equal(t, "B", top[1].Title)
	assert.Equal(t, "C", top[2].Title)
}

func TestTopBooks_LimitAndDefault(t *testing.T) {
	testStore := setupTestStore(t)
	lending := NewLendingService(testStore, testLogger())
	reports := NewReportService(testStore, testLogger())
	ctx := context.Background()

	titles := []string{"A", "B", "C", "D", "E", "F", "G"}
	for i, title := range titles {
		book := addBook(t, lending, title)
		setCheckoutCount(t, testStore, book.ID, len(titles)-i)
	}

	top, err := reports.TopBooks(ctx, 2)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, "A", top[0].Title)
	assert.Equal(t, "B", top[1].Title)

	// Non-positive limits fall back to the default of five.
	top, err = reports.TopBooks(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, top, DefaultTopBooksLimit)

	top, err = reports.TopBooks(ctx, -3)
	require.NoError(t, err)
	assert.Len(t, top, DefaultTopBooksLimit)
}

func TestTopBooks_FewerBooksThanLimit(t *testing.T) {
	testStore := setupTestStore(t)
	lending := NewLendingService(testStore, testLogger())
	reports := NewReportService(testStore, testLogger())

	addBook(t, lending, "Only One")

	top, err := reports.TopBooks(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, domain.StatusAvailable, top[0].Status)
}
