// Package main provides a tool to seed the database with sample data.
//
// This creates a small catalog, a few members, and one overdue loan so
// the lending flows and reports have something to work with during
// development.
//
// Usage:
//
//	DATA_PATH=~/ShelfKeep/data go run ./cmd/seed
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/shelfkeep/shelfkeep-server/internal/domain"
	"github.com/shelfkeep/shelfkeep-server/internal/id"
	"github.com/shelfkeep/shelfkeep-server/internal/store"
)

var seedBooks = []struct {
	title  string
	author string
	tags   []string
}{
	{"Dune", "Frank Herbert", []string{"science fiction"}},
	{"Ubik", "Philip K. Dick", []string{"science fiction"}},
	{"The Left Hand of Darkness", "Ursula K. Le Guin", []string{"science fiction"}},
	{"The Hobbit", "J.R.R. Tolkien", []string{"fantasy"}},
	{"Piranesi", "Susanna Clarke", []string{"fantasy"}},
}

var seedMembers = []struct {
	first string
	last  string
}{
	{"Ann", "Lee"},
	{"Bob", "Ray"},
	{"Cat", "Fox"},
}

func main() {
	dataPath := os.Getenv("DATA_PATH")
	if dataPath == "" {
		dataPath = os.ExpandEnv("$HOME/ShelfKeep/data")
	}
	dbPath := filepath.Join(dataPath, "db")

	fmt.Printf("Opening database at: %s\n", dbPath)

	s, err := store.New(dbPath, nil)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer s.Close()

	ctx := context.Background()

	books := make([]*domain.Book, 0, len(seedBooks))
	for _, sb := range seedBooks {
		book := &domain.Book{
			ID:       id.MustGenerate("book"),
			Title:    sb.title,
			Author:   sb.author,
			Tags:     sb.tags,
			Status:   domain.StatusAvailable,
			Waitlist: []string{},
		}
		book.InitTimestamps()

		err := s.Update(ctx, func(tx *store.Tx) error {
			return tx.CreateBook(book)
		})
		if errors.Is(err, store.ErrBookExists) {
			fmt.Printf("Skipping %q (already present)\n", sb.title)
			continue
		}
		if err != nil {
			log.Fatalf("Failed to create book %q: %v", sb.title, err)
		}
		books = append(books, book)
		fmt.Printf("Added book %q (%s)\n", book.Title, book.ID)
	}

	members := make([]*domain.Member, 0, len(seedMembers))
	for _, sm := range seedMembers {
		member := &domain.Member{
			ID:          id.MustGenerate("mem"),
			FirstName:   sm.first,
			LastName:    sm.last,
			ActiveLoans: []string{},
		}
		member.InitTimestamps()

		err := s.Update(ctx, func(tx *store.Tx) error {
			return tx.CreateMember(member)
		})
		if err != nil {
			log.Fatalf("Failed to create member %s %s: %v", sm.first, sm.last, err)
		}
		members = append(members, member)
		fmt.Printf("Added member %s (%s)\n", member.FullName(), member.ID)
	}

	// Lend the first book to the first member with a past due date so
	// the overdue report has a row.
	if len(books) > 0 && len(members) > 0 {
		book := books[0]
		member := members[0]

		err := s.Update(ctx, func(tx *store.Tx) error {
			loan := &domain.Loan{
				ID:       id.MustGenerate("loan"),
				BookID:   book.ID,
				MemberID: member.ID,
				DueDate:  time.Now().Add(-48 * time.Hour),
			}
			loan.InitTimestamps()

			if err := tx.CreateLoan(loan); err != nil {
				return err
			}

			book.Status = domain.StatusBorrowed
			book.CheckoutCount++
			if err := tx.PutBook(book); err != nil {
				return err
			}

			member.AddLoan(loan.ID)
			return tx.PutMember(member)
		})
		if err != nil {
			log.Fatalf("Failed to open seed loan: %v", err)
		}
		fmt.Printf("Lent %q to %s (overdue)\n", book.Title, member.FullName())
	}

	fmt.Println("Seed complete.")
}
