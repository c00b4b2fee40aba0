package completion

import "context"

// Service defines the interface for text generation against a hosted model
// provider. Implementations propagate provider failures to the caller; no
// retry happens at this layer.
type Service interface {
	Generate(ctx context.Context, prompt string) (string, error)
}
