package domain

import "slices"

// BookStatus is the lending state of a book.
type BookStatus string

// Book lifecycle states. A book is BORROWED exactly while one active
// loan references it; there are no other states.
const (
	StatusAvailable BookStatus = "AVAILABLE"
	StatusBorrowed  BookStatus = "BORROWED"
)

// Book is a catalog record. Waitlist holds member IDs in FIFO order and
// may only be non-empty while the book is borrowed. Display objects for
// the waitlist are resolved at the API boundary, never here.
type Book struct {
	ID            string     `json:"id"`
	Title         string     `json:"title"`
	Author        string     `json:"author"`
	Tags          []string   `json:"tags"`
	Status        BookStatus `json:"status"`
	CheckoutCount int        `json:"checkoutCount"`
	Waitlist      []string   `json:"waitlist"`
	CoverImage    string     `json:"coverImage,omitempty"`
	Timestamps
}

// InWaitlist reports whether the member is already queued for this book.
func (b *Book) InWaitlist(memberID string) bool {
	return slices.Contains(b.Waitlist, memberID)
}

// PushWaitlist appends a member to the end of the queue.
func (b *Book) PushWaitlist(memberID string) {
	b.Waitlist = append(b.Waitlist, memberID)
}

// PopWaitlist removes and returns the oldest queued member ID.
// Returns "" if the queue is empty.
func (b *Book) PopWaitlist() string {
	if len(b.Waitlist) == 0 {
		return ""
	}
	next := b.Waitlist[0]
	b.Waitlist = b.Waitlist[1:]
	return next
}
