// Package id generates identifiers for songs and their content.
//
// Content ids (sections, lines, parts) are short, prefix-tagged and base-36:
// "_" + prefix + random characters (e.g. "_s4k2j9x"). They only need to be
// unique within a song's content map, so a Registry remembers every id it
// has issued or been seeded with and never hands the same one out twice.
//
// Document ids (songs, distributions, formations) are UUID based and globally unique.
package id

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

const (
	// Marker starts every content id.
	Marker = "_"

	// DefaultLength is the number of random characters in a content id.
	DefaultLength = 6

	alphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

	// maxAttempts bounds collision retries; hitting it means the id space
	// for the requested length is effectively exhausted.
	maxAttempts = 64
)

// Registry issues collision-free content ids.
// It is safe for concurrent use.
type Registry struct {
	mu     sync.Mutex
	issued map[string]struct{}
	random func(alphabet string, size int) (string, error)
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		issued: make(map[string]struct{}),
		random: gonanoid.Generate,
	}
}

// Seed marks ids as already used, e.g. ids loaded from storage.
func (r *Registry) Seed(ids ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range ids {
		r.issued[id] = struct{}{}
	}
}

// Has reports whether the id was issued by or seeded into the registry.
func (r *Registry) Has(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.issued[id]
	return ok
}

// Len returns the number of known ids.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.issued)
}

// Generate returns a new id of the form Marker + prefix + length base-36 characters.
// Collisions with known ids are retried.
func (r *Registry) Generate(prefix string, length int) (string, error) {
	if length <= 0 {
		length = DefaultLength
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for range maxAttempts {
		suffix, err := r.random(alphabet, length)
		if err != nil {
			return "", fmt.Errorf("generate nanoid: %w", err)
		}
		candidate := Marker + prefix + suffix
		if _, taken := r.issued[candidate]; taken {
			continue
		}
		r.issued[candidate] = struct{}{}
		return candidate, nil
	}

	return "", fmt.Errorf("no free id for prefix %q with length %d after %d attempts", prefix, length, maxAttempts)
}

// MustGenerate is like Generate but panics if generation fails.
func (r *Registry) MustGenerate(prefix string, length int) string {
	id, err := r.Generate(prefix, length)
	if err != nil {
		panic(fmt.Sprintf("failed to generate ID: %v", err))
	}
	return id
}

// NewDocumentID returns a globally unique document id: kind + "-" + UUID.
func NewDocumentID(kind string) string {
	return kind + "-" + uuid.NewString()
}
