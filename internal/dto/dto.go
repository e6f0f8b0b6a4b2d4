// Package dto defines API-boundary response shapes. Records are stored
// and manipulated as plain id references; display objects (book titles
// on member loans, book/member annotations on report rows) are resolved
// here, never inside the lending engine.
package dto

import (
	"time"

	"github.com/shelfkeep/shelfkeep-server/internal/domain"
)

// MemberLoan is an active loan populated with its book title for
// display.
type MemberLoan struct {
	LoanID    string    `json:"loanId"`
	BookID    string    `json:"bookId"`
	BookTitle string    `json:"bookTitle"`
	DueDate   time.Time `json:"dueDate"`
}

// Member is a directory entry with populated active loans.
type Member struct {
	ID          string       `json:"id"`
	FirstName   string       `json:"firstName"`
	LastName    string       `json:"lastName"`
	ActiveLoans []MemberLoan `json:"activeLoans"`
}

// NewMember maps a domain member; loans are attached by the caller.
func NewMember(m *domain.Member) Member {
	return Member{
		ID:          m.ID,
		FirstName:   m.FirstName,
		LastName:    m.LastName,
		ActiveLoans: []MemberLoan{},
	}
}

// OverdueLoan is a report row: the loan annotated with its book and
// member.
type OverdueLoan struct {
	Loan   *domain.Loan   `json:"loan"`
	Book   *domain.Book   `json:"book"`
	Member *domain.Member `json:"member"`
}
