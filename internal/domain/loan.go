package domain

import "time"

// LoanPeriod is how long a member may hold a book.
const LoanPeriod = 7 * 24 * time.Hour

// Loan records one book held by one member until a due date. A loan's
// existence is the "currently borrowed" fact; at most one active loan
// exists per book.
type Loan struct {
	ID       string    `json:"id"`
	BookID   string    `json:"bookId"`
	MemberID string    `json:"memberId"`
	DueDate  time.Time `json:"dueDate"`
	Timestamps
}

// IsOverdue reports whether the due date has passed at the given time.
func (l *Loan) IsOverdue(now time.Time) bool {
	return l.DueDate.Before(now)
}
