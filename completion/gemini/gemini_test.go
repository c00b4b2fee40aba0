package gemini

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestGenerate_Success(t *testing.T) {
	var gotPath, gotKey string
	var gotReq GenerateContentRequest

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("x-goog-api-key")
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decode upstream request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"Paris"}],"role":"model"},"finishReason":"STOP"}]}`))
	}))
	defer upstream.Close()

	svc := New(upstream.URL, "gemini-2.0-flash-lite", "test-key")

	answer, err := svc.Generate(context.Background(), "Answer the following question: capital of France?")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if answer != "Paris" {
		t.Fatalf("want answer %q got %q", "Paris", answer)
	}
	if gotPath != "/models/gemini-2.0-flash-lite:generateContent" {
		t.Fatalf("unexpected upstream path: %s", gotPath)
	}
	if gotKey != "test-key" {
		t.Fatalf("unexpected api key header: %q", gotKey)
	}
	if len(gotReq.Contents) != 1 || len(gotReq.Contents[0].Parts) != 1 {
		t.Fatalf("unexpected request shape: %#v", gotReq)
	}
	if gotReq.Contents[0].Parts[0].Text != "Answer the following question: capital of France?" {
		t.Fatalf("unexpected prompt sent upstream: %q", gotReq.Contents[0].Parts[0].Text)
	}
}

func TestGenerate_JoinsParts(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"Hello, "},{"text":"world."}]}}]}`))
	}))
	defer upstream.Close()

	svc := New(upstream.URL, "gemini-2.0-flash-lite", "k")

	answer, err := svc.Generate(context.Background(), "prompt")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if answer != "Hello, world." {
		t.Fatalf("want joined parts, got %q", answer)
	}
}

func TestGenerate_UpstreamStatusError(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"code":429,"message":"quota exceeded","status":"RESOURCE_EXHAUSTED"}}`))
	}))
	defer upstream.Close()

	svc := New(upstream.URL, "gemini-2.0-flash-lite", "k")

	_, err := svc.Generate(context.Background(), "prompt")
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !strings.Contains(err.Error(), "status 429") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestGenerate_NoCandidates(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates":[]}`))
	}))
	defer upstream.Close()

	svc := New(upstream.URL, "gemini-2.0-flash-lite", "k")

	if _, err := svc.Generate(context.Background(), "prompt"); err == nil {
		t.Fatal("expected error for empty candidates, got nil")
	}
}

func TestGenerate_UnreachableUpstream(t *testing.T) {
	svc := New("http://127.0.0.1:1", "gemini-2.0-flash-lite", "k")

	if _, err := svc.Generate(context.Background(), "prompt"); err == nil {
		t.Fatal("expected error for unreachable upstream, got nil")
	}
}
