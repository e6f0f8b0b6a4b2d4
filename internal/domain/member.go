package domain

import "slices"

// Member is a directory record. ActiveLoans holds the IDs of this
// member's open loans; it mirrors the loan ledger exactly.
type Member struct {
	ID          string   `json:"id"`
	FirstName   string   `json:"firstName"`
	LastName    string   `json:"lastName"`
	ActiveLoans []string `json:"activeLoans"`
	Timestamps
}

// FullName returns the member's display name.
func (m *Member) FullName() string {
	return m.FirstName + " " + m.LastName
}

// HasActiveLoans reports whether any loans are open for this member.
func (m *Member) HasActiveLoans() bool {
	return len(m.ActiveLoans) > 0
}

// AddLoan records a newly opened loan.
func (m *Member) AddLoan(loanID string) {
	m.ActiveLoans = append(m.ActiveLoans, loanID)
}

// RemoveLoan drops a closed loan. No-op if the loan is not present.
func (m *Member) RemoveLoan(loanID string) {
	m.ActiveLoans = slices.DeleteFunc(m.ActiveLoans, func(id string) bool {
		return id == loanID
	})
}
