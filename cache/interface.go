package cache

import "context"

// Service is a question -> answer cache keyed by the exact question string.
// Two questions differing in whitespace or casing are distinct entries.
type Service interface {
	// Get looks up the cached answer for question. The second return value
	// reports whether an entry was found.
	Get(ctx context.Context, question string) (string, bool, error)
	// Set stores the answer for question, overwriting any previous entry.
	Set(ctx context.Context, question string, answer string) error
	// Shutdown releases backend resources.
	Shutdown()
}
