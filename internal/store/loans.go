package store

import (
	"context"
	"errors"

	"github.com/dgraph-io/badger/v4"
	"github.com/shelfkeep/shelfkeep-server/internal/domain"
)

// Key prefixes for loan storage.
const (
	loanPrefix       = "loan:"
	loanByBookPrefix = "idx:loan:book:" // book ID -> loan ID
)

// CreateLoan stores a new loan and marks its book as on loan.
// Returns ErrLoanExists if the book already has an active loan; the
// index enforces the one-active-loan-per-book invariant at the storage
// layer.
func (tx *Tx) CreateLoan(l *domain.Loan) error {
	taken, err := tx.exists(loanByBookPrefix + l.BookID)
	if err != nil {
		return err
	}
	if taken {
		return ErrLoanExists
	}

	if err := tx.set(loanPrefix+l.ID, l); err != nil {
		return err
	}
	return tx.txn.Set([]byte(loanByBookPrefix+l.BookID), []byte(l.ID))
}

// GetLoan retrieves a loan by ID.
func (tx *Tx) GetLoan(id string) (*domain.Loan, error) {
	var l domain.Loan
	err := tx.get(loanPrefix+id, &l)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrLoanNotFound
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// PutLoan rewrites an existing loan record. The loan keeps its book
// index entry; only CreateLoan and DeleteLoan touch the index.
func (tx *Tx) PutLoan(l *domain.Loan) error {
	l.Touch()
	return tx.set(loanPrefix+l.ID, l)
}

// ActiveLoanForBook retrieves the loan currently open for a book.
// Returns ErrLoanNotFound if the book is not on loan.
func (tx *Tx) ActiveLoanForBook(bookID string) (*domain.Loan, error) {
	item, err := tx.txn.Get([]byte(loanByBookPrefix + bookID))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrLoanNotFound
	}
	if err != nil {
		return nil, err
	}

	var id string
	if err := item.Value(func(val []byte) error {
		id = string(val)
		return nil
	}); err != nil {
		return nil, err
	}

	return tx.GetLoan(id)
}

// DeleteLoan removes a loan and frees its book index entry.
// Returns ErrLoanNotFound if the loan does not exist.
func (tx *Tx) DeleteLoan(id string) error {
	l, err := tx.GetLoan(id)
	if err != nil {
		return err
	}

	if err := tx.delete(loanByBookPrefix + l.BookID); err != nil {
		return err
	}
	return tx.delete(loanPrefix + id)
}

// DeleteLoansForBook purges every loan referencing a book and returns
// how many were removed. Runs when a book is deleted; with the
// borrowed-book guard in place it should find nothing.
func (tx *Tx) DeleteLoansForBook(bookID string) (int, error) {
	var stray []string
	err := iterate(tx, loanPrefix, func(l *domain.Loan) error {
		if l.BookID == bookID {
			stray = append(stray, l.ID)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	for _, id := range stray {
		if err := tx.DeleteLoan(id); err != nil {
			return 0, err
		}
	}
	return len(stray), nil
}

// ListLoans returns all active loans visible to the transaction.
func (tx *Tx) ListLoans() ([]*domain.Loan, error) {
	loans := make([]*domain.Loan, 0)
	err := iterate(tx, loanPrefix, func(l *domain.Loan) error {
		loans = append(loans, l)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return loans, nil
}

// ListLoans returns all active loans.
func (s *Store) ListLoans(ctx context.Context) ([]*domain.Loan, error) {
	var loans []*domain.Loan
	err := s.View(ctx, func(tx *Tx) error {
		var err error
		loans, err = tx.ListLoans()
		return err
	})
	if err != nil {
		return nil, err
	}
	return loans, nil
}
