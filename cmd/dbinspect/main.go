// Package main provides a read-only inspection tool for the database.
//
// Usage:
//
//	DATA_PATH=~/ShelfKeep/data go run ./cmd/dbinspect
package main

import (
	"encoding/json/v2"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/shelfkeep/shelfkeep-server/internal/domain"
)

func main() {
	dataPath := os.Getenv("DATA_PATH")
	if dataPath == "" {
		dataPath = os.ExpandEnv("$HOME/ShelfKeep/data")
	}
	dbPath := filepath.Join(dataPath, "db")

	opts := badger.DefaultOptions(dbPath).
		WithReadOnly(true).
		WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	fmt.Println("=== Database Inspection ===")
	fmt.Println()

	err = db.View(func(txn *badger.Txn) error {
		printBooks(txn)
		printMembers(txn)
		printLoans(txn)
		printIndexes(txn)
		return nil
	})
	if err != nil {
		log.Fatalf("Inspection failed: %v", err)
	}
}

func printBooks(txn *badger.Txn) {
	count := 0
	borrowed := 0
	waitlisted := 0

	forPrefix(txn, "book:", func(key string, val []byte) {
		var book domain.Book
		if err := json.Unmarshal(val, &book); err != nil {
			fmt.Printf("  ! %s: %v\n", key, err)
			return
		}
		count++
		if book.Status == domain.StatusBorrowed {
			borrowed++
		}
		if len(book.Waitlist) > 0 {
			waitlisted++
		}
		fmt.Printf("Book %q (%s)\n", book.Title, book.ID)
		fmt.Printf("  status=%s checkouts=%d waitlist=%d\n", book.Status, book.CheckoutCount, len(book.Waitlist))
	})

	fmt.Printf("Books: %d total, %d borrowed, %d with waitlists\n\n", count, borrowed, waitlisted)
}

func printMembers(txn *badger.Txn) {
	count := 0

	forPrefix(txn, "member:", func(key string, val []byte) {
		var member domain.Member
		if err := json.Unmarshal(val, &member); err != nil {
			fmt.Printf("  ! %s: %v\n", key, err)
			return
		}
		count++
		fmt.Printf("Member %s (%s) loans=%d\n", member.FullName(), member.ID, len(member.ActiveLoans))
	})

	fmt.Printf("Members: %d total\n\n", count)
}

func printLoans(txn *badger.Txn) {
	count := 0

	forPrefix(txn, "loan:", func(key string, val []byte) {
		var loan domain.Loan
		if err := json.Unmarshal(val, &loan); err != nil {
			fmt.Printf("  ! %s: %v\n", key, err)
			return
		}
		count++
		fmt.Printf("Loan %s book=%s member=%s due=%s\n",
			loan.ID, loan.BookID, loan.MemberID, loan.DueDate.Format("2006-01-02"))
	})

	fmt.Printf("Loans: %d active\n\n", count)
}

func printIndexes(txn *badger.Txn) {
	count := 0

	forPrefix(txn, "idx:", func(key string, val []byte) {
		count++
		fmt.Printf("%s -> %s\n", key, string(val))
	})

	fmt.Printf("Index entries: %d\n", count)
}

// forPrefix walks every key under a prefix, skipping index keys when
// the prefix is a record prefix.
func forPrefix(txn *badger.Txn, prefix string, fn func(key string, val []byte)) {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = []byte(prefix)
	it := txn.NewIterator(opts)
	defer it.Close()

	for it.Seek([]byte(prefix)); it.ValidForPrefix([]byte(prefix)); it.Next() {
		item := it.Item()
		key := string(item.Key())

		if prefix != "idx:" && strings.HasPrefix(key, "idx:") {
			continue
		}

		err := item.Value(func(val []byte) error {
			fn(key, append([]byte(nil), val...))
			return nil
		})
		if err != nil {
			fmt.Printf("  ! %s: %v\n", key, err)
		}
	}
}
