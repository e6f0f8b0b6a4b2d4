package domain

import "time"

// Timestamps provides created/updated times for domain records.
// Embed it in any record stored in the database.
type Timestamps struct {
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// InitTimestamps sets both CreatedAt and UpdatedAt to now.
// Call this when creating a new record.
func (t *Timestamps) InitTimestamps() {
	now := time.Now()
	t.CreatedAt = now
	t.UpdatedAt = now
}

// Touch updates the UpdatedAt timestamp to the current time.
// Call this whenever the underlying record changes.
func (t *Timestamps) Touch() {
	t.UpdatedAt = time.Now()
}
