package taskqueue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"llm_api/logger"
)

// TypeAnswerQuestion is the task type consumed by the question worker.
const TypeAnswerQuestion = "answer:question"

type questionPayload struct {
	Question string `json:"question"`
}

// Client submits question tasks to the broker and records them in the
// store. The PENDING record is inserted before the enqueue so that a
// task id handed to a caller can always be polled.
type Client struct {
	client *asynq.Client
	store  Store
	queue  string
}

type ClientOptions struct {
	Queue string
}

func NewClient(redisOpt asynq.RedisClientOpt, store Store, opts ClientOptions) *Client {
	queue := opts.Queue
	if queue == "" {
		queue = "default"
	}
	return &Client{
		client: asynq.NewClient(redisOpt),
		store:  store,
		queue:  queue,
	}
}

// Submit enqueues question for background answering and returns the id
// to poll. Tasks are never retried: a handler error is terminal.
func (c *Client) Submit(ctx context.Context, question string) (string, error) {
	payloadBytes, err := json.Marshal(questionPayload{Question: question})
	if err != nil {
		return "", fmt.Errorf("fail to marshal task payload: %w", err)
	}

	rec := TaskRecord{
		ID:        uuid.NewString(),
		Question:  question,
		Status:    StatusPending,
		CreatedAt: time.Now().UTC(),
	}
	if err := c.store.InsertPending(ctx, rec); err != nil {
		return "", fmt.Errorf("fail to record task: %w", err)
	}

	task := asynq.NewTask(TypeAnswerQuestion, payloadBytes)
	_, err = c.client.EnqueueContext(ctx, task, asynq.TaskID(rec.ID), asynq.Queue(c.queue), asynq.MaxRetry(0))
	if err != nil {
		if markErr := c.store.MarkFailure(ctx, rec.ID, "enqueue failed: "+err.Error(), time.Now().UTC()); markErr != nil {
			logger.Error("failed to mark task %s failed: %s", rec.ID, markErr)
		}
		return "", fmt.Errorf("fail to enqueue task: %w", err)
	}

	logger.Debug("enqueued task %s", rec.ID)
	return rec.ID, nil
}

func (c *Client) Close() error {
	return c.client.Close()
}
