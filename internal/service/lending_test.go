package service

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shelfkeep/shelfkeep-server/internal/domain"
	"github.com/shelfkeep/shelfkeep-server/internal/errors"
	"github.com/shelfkeep/shelfkeep-server/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestStore creates a temporary store for service tests.
func setupTestStore(t *testing.T) *store.Store {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "shelfkeep-service-test-*")
	require.NoError(t, err)

	testStore, err := store.New(filepath.Join(tmpDir, "db"), nil)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = testStore.Close()
		_ = os.RemoveAll(tmpDir)
	})

	return testStore
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func setupLending(t *testing.T) (*LendingService, *store.Store) {
	t.Helper()
	testStore := setupTestStore(t)
	return NewLendingService(testStore, testLogger()), testStore
}

func addBook(t *testing.T, svc *LendingService, title string) *domain.Book {
	t.Helper()
	book, err := svc.AddBook(context.Background(), AddBookRequest{Title: title, Author: "Author"})
	require.NoError(t, err)
	return book
}

func addMember(t *testing.T, svc *LendingService, first, last string) *domain.Member {
	t.Helper()
	member, err := svc.AddMember(context.Background(), AddMemberRequest{FirstName: first, LastName: last})
	require.NoError(t, err)
	return member
}

func getBook(t *testing.T, s *store.Store, id string) *domain.Book {
	t.Helper()
	var book *domain.Book
	err := s.View(context.Background(), func(tx *store.Tx) error {
		var err error
		book, err = tx.GetBook(id)
		return err
	})
	require.NoError(t, err)
	return book
}

func getMember(t *testing.T, s *store.Store, id string) *domain.Member {
	t.Helper()
	var member *domain.Member
	err := s.View(context.Background(), func(tx *store.Tx) error {
		var err error
		member, err = tx.GetMember(id)
		return err
	})
	require.NoError(t, err)
	return member
}

func TestAddBook_DuplicateTitleCaseInsensitive(t *testing.T) {
	svc, _ := setupLending(t)
	ctx := context.Background()

	addBook(t, svc, "Dune")

	_, err := svc.AddBook(ctx, AddBookRequest{Title: "dune"})
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrConflict)
	assert.Contains(t, err.Error(), "already exists")
}

func TestAddBook_Validation(t *testing.T) {
	svc, _ := setupLending(t)

	_, err := svc.AddBook(context.Background(), AddBookRequest{})
	assert.ErrorIs(t, err, errors.ErrValidation)
}

func TestLend_AvailableBook(t *testing.T) {
	svc, testStore := setupLending(t)
	ctx := context.Background()

	book := addBook(t, svc, "Dune")
	ann := addMember(t, svc, "Ann", "Lee")

	res, err := svc.Lend(ctx, book.ID, ann.ID)
	require.NoError(t, err)

	assert.Equal(t, OutcomeBorrowed, res.Outcome)
	assert.Equal(t, "Book borrowed successfully", res.Message)
	require.NotNil(t, res.Loan)
	assert.Equal(t, book.ID, res.Loan.BookID)
	assert.Equal(t, ann.ID, res.Loan.MemberID)
	assert.WithinDuration(t, time.Now().Add(domain.LoanPeriod), res.Loan.DueDate, time.Minute)

	stored := getBook(t, testStore, book.ID)
	assert.Equal(t, domain.StatusBorrowed, stored.Status)
	assert.Equal(t, 1, stored.CheckoutCount)

	member := getMember(t, testStore, ann.ID)
	assert.Equal(t, []string{res.Loan.ID}, member.ActiveLoans)
}

func TestLend_BorrowedBookJoinsWaitlist(t *testing.T) {
	svc, testStore := setupLending(t)
	ctx := context.Background()

	book := addBook(t, svc, "Dune")
	ann := addMember(t, svc, "Ann", "Lee")
	bob := addMember(t, svc, "Bob", "Ray")

	_, err := svc.Lend(ctx, book.ID, ann.ID)
	require.NoError(t, err)

	res, err := svc.Lend(ctx, book.ID, bob.ID)
	require.NoError(t, err)

	assert.Equal(t, OutcomeWaitlisted, res.Outcome)
	assert.Nil(t, res.Loan)

	stored := getBook(t, testStore, book.ID)
	assert.Equal(t, []string{bob.ID}, stored.Waitlist)
	assert.Equal(t, 1, stored.CheckoutCount, "waitlisting must not bump the checkout count")
}

func TestLend_AlreadyInWaitlist(t *testing.T) {
	svc, _ := setupLending(t)
	ctx := context.Background()

	book := addBook(t, svc, "Dune")
	ann := addMember(t, svc, "Ann", "Lee")
	bob := addMember(t, svc, "Bob", "Ray")

	_, err := svc.Lend(ctx, book.ID, ann.ID)
	require.NoError(t, err)
	_, err = svc.Lend(ctx, book.ID, bob.ID)
	require.NoError(t, err)

	_, err = svc.Lend(ctx, book.ID, bob.ID)
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrConflict)
	assert.Contains(t, err.Error(), "already in waitlist")
}

func TestLend_MissingBookOrMember(t *testing.T) {
	svc, _ := setupLending(t)
	ctx := context.Background()

	book := addBook(t, svc, "Dune")
	ann := addMember(t, svc, "Ann", "Lee")

	_, err := svc.Lend(ctx, "book-missing", ann.ID)
	assert.ErrorIs(t, err, errors.ErrNotFound)

	_, err = svc.Lend(ctx, book.ID, "mem-missing")
	assert.ErrorIs(t, err, errors.ErrNotFound)
}

func TestReturn_EmptyWaitlistMakesAvailable(t *testing.T) {
	svc, testStore := setupLending(t)
	ctx := context.Background()

	book := addBook(t, svc, "Dune")
	ann := addMember(t, svc, "Ann", "Lee")

	_, err := svc.Lend(ctx, book.ID, ann.ID)
	require.NoError(t, err)

	res, err := svc.Return(ctx, book.ID)
	require.NoError(t, err)

	assert.Equal(t, ActionMadeAvailable, res.Action)
	assert.Nil(t, res.Loan)

	stored := getBook(t, testStore, book.ID)
	assert.Equal(t, domain.StatusAvailable, stored.Status)
	assert.Equal(t, 1, stored.CheckoutCount, "a plain return must not change the checkout count")

	member := getMember(t, testStore, ann.ID)
	assert.Empty(t, member.ActiveLoans)

	loans, err := testStore.ListLoans(ctx)
	require.NoError(t, err)
	assert.Empty(t, loans)
}

func TestReturn_AutoAssignsToWaitlist(t *testing.T) {
	svc, testStore := setupLending(t)
	ctx := context.Background()

	book := addBook(t, svc, "Dune")
	ann := addMember(t, svc, "Ann", "Lee")
	bob := addMember(t, svc, "Bob", "Ray")

	_, err := svc.Lend(ctx, book.ID, ann.ID)
	require.NoError(t, err)
	_, err = svc.Lend(ctx, book.ID, bob.ID)
	require.NoError(t, err)

	res, err := svc.Return(ctx, book.ID)
	require.NoError(t, err)

	assert.Equal(t, ActionAssignedToWaitlist, res.Action)
	assert.Contains(t, res.Message, "Bob Ray")
	require.NotNil(t, res.Loan)
	assert.Equal(t, bob.ID, res.Loan.MemberID)

	stored := getBook(t, testStore, book.ID)
	assert.Equal(t, domain.StatusBorrowed, stored.Status, "the book changes hands without becoming available")
	assert.Equal(t, 2, stored.CheckoutCount)
	assert.Empty(t, stored.Waitlist)

	assert.Empty(t, getMember(t, testStore, ann.ID).ActiveLoans)
	assert.Equal(t, []string{res.Loan.ID}, getMember(t, testStore, bob.ID).ActiveLoans)
}

func TestReturn_WaitlistIsFIFO(t *testing.T) {
	svc, _ := setupLending(t)
	ctx := context.Background()

	book := addBook(t, svc, "Dune")
	holder := addMember(t, svc, "Holden", "First")
	a := addMember(t, svc, "Ann", "A")
	b := addMember(t, svc, "Bob", "B")
	c := addMember(t, svc, "Cat", "C")

	_, err := svc.Lend(ctx, book.ID, holder.ID)
	require.NoError(t, err)
	for _, m := range []*domain.Member{a, b, c} {
		_, err = svc.Lend(ctx, book.ID, m.ID)
		require.NoError(t, err)
	}

	for _, want := range []*domain.Member{a, b, c} {
		res, err := svc.Return(ctx, book.ID)
		require.NoError(t, err)
		assert.Equal(t, ActionAssignedToWaitlist, res.Action)
		assert.Equal(t, want.ID, res.Loan.MemberID)
	}

	res, err := svc.Return(ctx, book.ID)
	require.NoError(t, err)
	assert.Equal(t, ActionMadeAvailable, res.Action)
}

func TestReturn_MissingBook(t *testing.T) {
	svc, _ := setupLending(t)

	_, err := svc.Return(context.Background(), "book-missing")
	assert.ErrorIs(t, err, errors.ErrNotFound)
}

func TestReturn_NoActiveLoanIsTolerated(t *testing.T) {
	svc, testStore := setupLending(t)
	ctx := context.Background()

	book := addBook(t, svc, "Dune")

	res, err := svc.Return(ctx, book.ID)
	require.NoError(t, err)
	assert.Equal(t, ActionMadeAvailable, res.Action)

	stored := getBook(t, testStore, book.ID)
	assert.Equal(t, domain.StatusAvailable, stored.Status)
	assert.Zero(t, stored.CheckoutCount)
}

func TestReturn_SkipsDeletedWaitlistMembers(t *testing.T) {
	svc, _ := setupLending(t)
	ctx := context.Background()

	book := addBook(t, svc, "Dune")
	holder := addMember(t, svc, "Holden", "First")
	ghost := addMember(t, svc, "Gone", "Soon")
	bob := addMember(t, svc, "Bob", "Ray")

	_, err := svc.Lend(ctx, book.ID, holder.ID)
	require.NoError(t, err)
	_, err = svc.Lend(ctx, book.ID, ghost.ID)
	require.NoError(t, err)
	_, err = svc.Lend(ctx, book.ID, bob.ID)
	require.NoError(t, err)

	// A waitlisted member has no loans, so deletion is allowed.
	require.NoError(t, svc.DeleteMember(ctx, ghost.ID))

	res, err := svc.Return(ctx, book.ID)
	require.NoError(t, err)
	assert.Equal(t, ActionAssignedToWaitlist, res.Action)
	assert.Equal(t, bob.ID, res.Loan.MemberID)
}

func TestDeleteBook_BorrowedIsRejected(t *testing.T) {
	svc, _ := setupLending(t)
	ctx := context.Background()

	book := addBook(t, svc, "Dune")
	ann := addMember(t, svc, "Ann", "Lee")

	_, err := svc.Lend(ctx, book.ID, ann.ID)
	require.NoError(t, err)

	err = svc.DeleteBook(ctx, book.ID)
	assert.ErrorIs(t, err, errors.ErrConflict)

	// After the return the deletion goes through.
	_, err = svc.Return(ctx, book.ID)
	require.NoError(t, err)
	require.NoError(t, svc.DeleteBook(ctx, book.ID))

	err = svc.DeleteBook(ctx, book.ID)
	assert.ErrorIs(t, err, errors.ErrNotFound)
}

func TestDeleteMember_WithActiveLoansIsRejected(t *testing.T) {
	svc, _ := setupLending(t)
	ctx := context.Background()

	book := addBook(t, svc, "Dune")
	ann := addMember(t, svc, "Ann", "Lee")

	_, err := svc.Lend(ctx, book.ID, ann.ID)
	require.NoError(t, err)

	err = svc.DeleteMember(ctx, ann.ID)
	assert.ErrorIs(t, err, errors.ErrConflict)

	_, err = svc.Return(ctx, book.ID)
	require.NoError(t, err)
	require.NoError(t, svc.DeleteMember(ctx, ann.ID))

	err = svc.DeleteMember(ctx, ann.ID)
	assert.ErrorIs(t, err, errors.ErrNotFound)
}

// Invariant from the data model: a book is BORROWED exactly when one
// active loan references it, and member loan lists mirror the ledger.
func TestLendingInvariants(t *testing.T) {
	svc, testStore := setupLending(t)
	ctx := context.Background()

	dune := addBook(t, svc, "Dune")
	ubik := addBook(t, svc, "Ubik")
	ann := addMember(t, svc, "Ann", "Lee")
	bob := addMember(t, svc, "Bob", "Ray")

	_, err := svc.Lend(ctx, dune.ID, ann.ID)
	require.NoError(t, err)
	_, err = svc.Lend(ctx, ubik.ID, ann.ID)
	require.NoError(t, err)
	_, err = svc.Lend(ctx, dune.ID, bob.ID)
	require.NoError(t, err)
	_, err = svc.Return(ctx, dune.ID)
	require.NoError(t, err)

	assertInvariants(t, testStore)
}

func assertInvariants(t *testing.T, s *store.Store) {
	t.Helper()
	ctx := context.Background()

	books, err := s.ListBooks(ctx)
	require.NoError(t, err)
	loans, err := s.ListLoans(ctx)
	require.NoError(t, err)
	members, err := s.ListMembers(ctx)
	require.NoError(t, err)

	loansByBook := make(map[string]int)
	loansByMember := make(map[string][]string)
	for _, l := range loans {
		loansByBook[l.BookID]++
		loansByMember[l.MemberID] = append(loansByMember[l.MemberID], l.ID)
	}

	for _, b := range books {
		if b.Status == domain.StatusBorrowed {
			assert.Equal(t, 1, loansByBook[b.ID], "borrowed book %s must have exactly one loan", b.Title)
		} else {
			assert.Zero(t, loansByBook[b.ID], "available book %s must have no loans", b.Title)
			assert.Empty(t, b.Waitlist, "available book %s must have no waitlist", b.Title)
		}
	}

	for _, m := range members {
		assert.ElementsMatch(t, loansByMember[m.ID], m.ActiveLoans,
			"member %s loan list must mirror the ledger", m.ID)
	}
}
