package notifier

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

func newTestNotifier(srv *httptest.Server) *TelegramNotifier {
	return &TelegramNotifier{
		BotToken: "test-token",
		Client:   srv.Client(),
		apiBase:  srv.URL,
	}
}

func TestSend_PostsMessage(t *testing.T) {
	var gotPath string
	var gotPayload map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if err := json.NewDecoder(r.Body).Decode(&gotPayload); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := newTestNotifier(srv)
	if err := n.Send(1234, "hello"); err != nil {
		t.Fatalf("send: %v", err)
	}

	if gotPath != "/bottest-token/sendMessage" {
		t.Errorf("unexpected path %q", gotPath)
	}
	if gotPayload["chat_id"] != "1234" || gotPayload["text"] != "hello" {
		t.Errorf("unexpected payload %v", gotPayload)
	}
	if gotPayload["parse_mode"] != "HTML" {
		t.Errorf("expected HTML parse mode, got %q", gotPayload["parse_mode"])
	}
}

func TestSend_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "too many requests", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	n := newTestNotifier(srv)
	if err := n.Send(1234, "hello"); err == nil {
		t.Fatal("expected error on non-200 response")
	}
}

func TestSendWithRetry_RecoversAfterFailure(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			http.Error(w, "flaky", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := newTestNotifier(srv)
	if err := n.SendWithRetry(context.Background(), 1234, "hello", 2); err != nil {
		t.Fatalf("expected recovery on retry, got %v", err)
	}
	if got := calls.Load(); got != 2 {
		t.Errorf("expected 2 attempts, got %d", got)
	}
}

func TestSendWithRetry_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "down", http.StatusInternalServerError)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	n := newTestNotifier(srv)
	err := n.SendWithRetry(ctx, 1234, "hello", 3)
	if err == nil {
		t.Fatal("expected error with cancelled context")
	}
}
