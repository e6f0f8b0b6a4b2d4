package store

import (
	"context"
	"errors"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/shelfkeep/shelfkeep-server/internal/domain"
)

// Key prefixes for book storage.
const (
	bookPrefix        = "book:"
	bookByTitlePrefix = "idx:book:title:" // lower(title) -> book ID
)

// titleKey builds the case-insensitive title index key.
func titleKey(title string) string {
	return bookByTitlePrefix + strings.ToLower(title)
}

// CreateBook stores a new book and claims its title.
// Returns ErrBookExists if another book holds the same title,
// compared case-insensitively.
func (tx *Tx) CreateBook(b *domain.Book) error {
	taken, err := tx.exists(titleKey(b.Title))
	if err != nil {
		return err
	}
	if taken {
		return ErrBookExists
	}

	if err := tx.set(bookPrefix+b.ID, b); err != nil {
		return err
	}
	return tx.txn.Set([]byte(titleKey(b.Title)), []byte(b.ID))
}

// GetBook retrieves a book by ID.
func (tx *Tx) GetBook(id string) (*domain.Book, error) {
	var b domain.Book
	err := tx.get(bookPrefix+id, &b)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrBookNotFound
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// GetBookByTitle retrieves a book by title, case-insensitively.
func (tx *Tx) GetBookByTitle(title string) (*domain.Book, error) {
	item, err := tx.txn.Get([]byte(titleKey(title)))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrBookNotFound
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

	return tx.GetBook(id)
}

// PutBook rewrites an existing book record. Titles never change after
// creation, so the title index is left untouched.
func (tx *Tx) PutBook(b *domain.Book) error {
	b.Touch()
	return tx.set(bookPrefix+b.ID, b)
}

// DeleteBook removes a book and releases its title.
// Returns ErrBookNotFound if the book does not exist.
func (tx *Tx) DeleteBook(id string) error {
	b, err := tx.GetBook(id)
	if err != nil {
		return err
	}

	if err := tx.delete(titleKey(b.Title)); err != nil {
		return err
	}
	return tx.delete(bookPrefix + id)
}

// ListBooks returns all books visible to the transaction.
func (tx *Tx) ListBooks() ([]*domain.Book, error) {
	books := make([]*domain.Book, 0)
	err := iterate(tx, bookPrefix, func(b *domain.Book) error {
		books = append(books, b)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return books, nil
}

// ListBooks returns all books in the catalog.
func (s *Store) ListBooks(ctx context.Context) ([]*domain.Book, error) {
	var books []*domain.Book
	err := s.View(ctx, func(tx *Tx) error {
		var err error
		books, err = tx.ListBooks()
		return err
	})
	if err != nil {
		return nil, err
	}
	return books, nil
}
