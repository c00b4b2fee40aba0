package taskqueue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"llm_api/logger"
)

// Handler produces the answer for a dequeued question.
type Handler func(ctx context.Context, question string) (string, error)

// Processor consumes question tasks from the broker, runs the handler
// and records the terminal status in the store.
type Processor struct {
	server  *asynq.Server
	store   Store
	handler Handler
}

type ProcessorConfig struct {
	Concurrency int
	Queues      map[string]int
}

func NewProcessor(redisOpt asynq.RedisClientOpt, store Store, handler Handler, cfg ProcessorConfig) *Processor {
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = 10
	}
	queues := cfg.Queues
	if queues == nil {
		queues = map[string]int{"default": 1}
	}
	server := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency: concurrency,
		Queues:      queues,
	})
	return &Processor{
		server:  server,
		store:   store,
		handler: handler,
	}
}

func (p *Processor) process(ctx context.Context, task *asynq.Task) error {
	id, ok := asynq.GetTaskID(ctx)
	if !ok {
		return fmt.Errorf("task context has no id")
	}

	var payload questionPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		p.markFailure(ctx, id, err)
		return fmt.Errorf("fail to unmarshal task payload: %w", err)
	}

	if err := p.store.MarkStarted(ctx, id, time.Now().UTC()); err != nil {
		logger.Error("failed to mark task %s started: %s", id, err)
	}
	logger.Debug("processing task %s", id)

	answer, err := p.handler(ctx, payload.Question)
	if err != nil {
		logger.Error("task %s failed: %s", id, err)
		p.markFailure(ctx, id, err)
		return err
	}

	if err := p.store.MarkSuccess(ctx, id, answer, time.Now().UTC()); err != nil {
		logger.Error("failed to mark task %s succeeded: %s", id, err)
		return err
	}
	logger.Debug("task %s succeeded", id)
	return nil
}

func (p *Processor) markFailure(ctx context.Context, id string, taskErr error) {
	if err := p.store.MarkFailure(ctx, id, taskErr.Error(), time.Now().UTC()); err != nil {
		logger.Error("failed to mark task %s failed: %s", id, err)
	}
}

func (p *Processor) mux() *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeAnswerQuestion, p.process)
	return mux
}

// Start launches the worker pool without blocking.
func (p *Processor) Start() error {
	return p.server.Start(p.mux())
}

// Run launches the worker pool and blocks until an exit signal.
func (p *Processor) Run() error {
	return p.server.Run(p.mux())
}

// Shutdown waits for in-flight tasks and stops the workers.
func (p *Processor) Shutdown() {
	p.server.Shutdown()
}
