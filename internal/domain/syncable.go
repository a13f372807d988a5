package domain

import "time"

// Syncable provides the identity and timestamps shared by every stored document.
// It is embedded in Song, Distribution and Formation.
type Syncable struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Touch updates the UpdatedAt timestamp to the current time.
// Call this whenever the document changes.
func (s *Syncable) Touch() {
	s.UpdatedAt = now()
}

// InitTimestamps sets both CreatedAt and UpdatedAt to now.
// Call this when creating a new document.
func (s *Syncable) InitTimestamps() {
	t := now()
	s.CreatedAt = t
	s.UpdatedAt = t
}

// now returns the current time in UTC with millisecond precision, which is
// what survives a JSON round trip through the store unchanged.
func now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}
