package taskqueue

import (
	"context"
	"errors"
	"testing"
	"time"
)

func openTestStore(t *testing.T, name string) *SQLStore {
	t.Helper()
	store, err := OpenSQLStore("file:" + name + "?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	return store
}

func TestSQLStore_Lifecycle_Success(t *testing.T) {
	store := openTestStore(t, "store_success")
	defer store.Close()
	ctx := context.Background()

	rec := TaskRecord{
		ID:        "task-1",
		Question:  "What is Go?",
		Status:    StatusPending,
		CreatedAt: time.Now().UTC(),
	}
	if err := store.InsertPending(ctx, rec); err != nil {
		t.Fatalf("InsertPending: %v", err)
	}

	got, err := store.GetByID(ctx, rec.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Status != StatusPending {
		t.Fatalf("want status=%s got=%s", StatusPending, got.Status)
	}
	if got.Result != nil || got.Error != nil {
		t.Fatalf("pending task must carry no result or error: %#v", got)
	}

	if err := store.MarkStarted(ctx, rec.ID, time.Now().UTC()); err != nil {
		t.Fatalf("MarkStarted: %v", err)
	}
	got, err = store.GetByID(ctx, rec.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Status != StatusPending {
		t.Fatalf("starting must not change the PENDING status, got=%s", got.Status)
	}
	if got.StartedAt == nil {
		t.Fatal("expected started_at to be set")
	}

	if err := store.MarkSuccess(ctx, rec.ID, "a compiled language", time.Now().UTC()); err != nil {
		t.Fatalf("MarkSuccess: %v", err)
	}
	got, err = store.GetByID(ctx, rec.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Status != StatusSuccess {
		t.Fatalf("want status=%s got=%s", StatusSuccess, got.Status)
	}
	if got.Result == nil || *got.Result != "a compiled language" {
		t.Fatalf("unexpected result: %#v", got.Result)
	}
	if got.Error != nil {
		t.Fatalf("success must carry no error: %#v", got.Error)
	}
	if got.FinishedAt == nil {
		t.Fatal("expected finished_at to be set")
	}
}

func TestSQLStore_MarkFailure(t *testing.T) {
	store := openTestStore(t, "store_failure")
	defer store.Close()
	ctx := context.Background()

	rec := TaskRecord{ID: "task-2", Question: "q", Status: StatusPending, CreatedAt: time.Now().UTC()}
	if err := store.InsertPending(ctx, rec); err != nil {
		t.Fatalf("InsertPending: %v", err)
	}
	if err := store.MarkFailure(ctx, rec.ID, "llm call failed: quota exceeded", time.Now().UTC()); err != nil {
		t.Fatalf("MarkFailure: %v", err)
	}

	got, err := store.GetByID(ctx, rec.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Status != StatusFailure {
		t.Fatalf("want status=%s got=%s", StatusFailure, got.Status)
	}
	if got.Error == nil || *got.Error != "llm call failed: quota exceeded" {
		t.Fatalf("unexpected error msg: %#v", got.Error)
	}
	if got.Result != nil {
		t.Fatalf("failure must carry no result: %#v", got.Result)
	}
}

func TestSQLStore_GetByID_NotFound(t *testing.T) {
	store := openTestStore(t, "store_notfound")
	defer store.Close()

	_, err := store.GetByID(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}
