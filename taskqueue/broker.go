package taskqueue

import (
	"fmt"

	"github.com/alicebob/miniredis/v2"
)

// EmbeddedBroker is an in-process Redis used as the task broker for
// single-binary deployments. Queued tasks live in process memory and
// are lost on restart.
type EmbeddedBroker struct {
	redis *miniredis.Miniredis
}

// StartEmbeddedBroker boots the in-process Redis on a random port.
func StartEmbeddedBroker() (*EmbeddedBroker, error) {
	r, err := miniredis.Run()
	if err != nil {
		return nil, fmt.Errorf("fail to start embedded broker: %w", err)
	}
	return &EmbeddedBroker{redis: r}, nil
}

// Addr returns the broker address for task clients and processors.
func (b *EmbeddedBroker) Addr() string {
	return b.redis.Addr()
}

func (b *EmbeddedBroker) Close() {
	b.redis.Close()
}
