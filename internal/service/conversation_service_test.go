package service

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/goleak"

	"insurance-chat/internal/domain"
	"insurance-chat/internal/llm"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreAnyFunction("net/http.(*persistConn).readLoop"),
		goleak.IgnoreAnyFunction("net/http.(*persistConn).writeLoop"),
	)
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("condition not met before deadline")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestConversationServiceSubmit_Success(t *testing.T) {
	client := &llm.MockClient{Response: domain.ChatResponse{Response: "cubierto", Sources: []string{"policies/auto.md"}}}
	svc := NewConversationService(client, true, nil)

	accepted, err := svc.Submit(context.Background(), "  mi auto? ")
	if err != nil || !accepted {
		t.Fatalf("expected accepted without error, got accepted=%v err=%v", accepted, err)
	}

	reqs := client.Requests()
	if len(reqs) != 1 || reqs[0].Message != "mi auto?" || !reqs[0].UseContext {
		t.Fatalf("unexpected requests: %+v", reqs)
	}
	msgs := svc.Transcript()
	if len(msgs) != 2 || msgs[1].Text != "cubierto" {
		t.Fatalf("unexpected transcript: %+v", msgs)
	}
	if svc.Snapshot().IsWaiting() {
		t.Fatalf("expected idle after completion")
	}
}

func TestConversationServiceSubmit_Blank(t *testing.T) {
	client := &llm.MockClient{}
	svc := NewConversationService(client, true, nil)

	accepted, err := svc.Submit(context.Background(), "   ")
	if accepted || err != nil {
		t.Fatalf("expected silent no-op, got accepted=%v err=%v", accepted, err)
	}
	if len(client.Requests()) != 0 || len(svc.Transcript()) != 0 {
		t.Fatalf("expected no request and no transcript mutation")
	}
}

func TestConversationServiceSubmit_DropsWhileWaiting(t *testing.T) {
	client := &llm.MockClient{
		Response: domain.ChatResponse{Response: "ok"},
		Block:    make(chan struct{}),
	}
	svc := NewConversationService(client, true, nil)

	done := make(chan error, 1)
	go func() {
		_, err := svc.Submit(context.Background(), "primera")
		done <- err
	}()
	waitFor(t, func() bool { return svc.Snapshot().IsWaiting() })

	accepted, err := svc.Submit(context.Background(), "segunda")
	if accepted || err != nil {
		t.Fatalf("expected second submit dropped, got accepted=%v err=%v", accepted, err)
	}
	if n := len(svc.Transcript()); n != 1 {
		t.Fatalf("expected 1 message while waiting, got %d", n)
	}

	close(client.Block)
	if err := <-done; err != nil {
		t.Fatalf("expected first submit to succeed, got %v", err)
	}
	if n := len(client.Requests()); n != 1 {
		t.Fatalf("expected exactly one remote call, got %d", n)
	}
	if n := len(svc.Transcript()); n != 2 {
		t.Fatalf("expected 2 messages, got %d", n)
	}
}

func TestConversationServiceSubmit_Failure(t *testing.T) {
	client := &llm.MockClient{Err: errors.New("connection refused")}
	svc := NewConversationService(client, true, nil)

	accepted, err := svc.Submit(context.Background(), "hola")
	if !accepted || err == nil {
		t.Fatalf("expected accepted with error, got accepted=%v err=%v", accepted, err)
	}
	snap := svc.Snapshot()
	if snap.LastError() != AdvisoryMessage || snap.IsWaiting() || snap.Len() != 1 {
		t.Fatalf("unexpected state: err=%q waiting=%v len=%d", snap.LastError(), snap.IsWaiting(), snap.Len())
	}

	client.Err = nil
	client.Response = domain.ChatResponse{Response: "ahora sí"}
	accepted, err = svc.Submit(context.Background(), "hola de nuevo")
	if !accepted || err != nil {
		t.Fatalf("expected retry by user accepted, got accepted=%v err=%v", accepted, err)
	}
	if svc.Snapshot().LastError() != "" {
		t.Fatalf("expected error cleared")
	}
}

func TestConversationServiceSubmit_HTTP500(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail":"boom"}`, http.StatusInternalServerError)
	}))
	defer srv.Close()

	svc := NewConversationService(llm.NewHTTPClient(srv.URL, nil), true, nil)
	accepted, err := svc.Submit(context.Background(), "hola")
	if !accepted {
		t.Fatalf("expected accepted")
	}
	var statusErr *llm.StatusError
	if !errors.As(err, &statusErr) || statusErr.StatusCode != http.StatusInternalServerError {
		t.Fatalf("expected StatusError 500, got %v", err)
	}
	snap := svc.Snapshot()
	if snap.LastError() != AdvisoryMessage || snap.Len() != 1 {
		t.Fatalf("expected advisory and no assistant message, got err=%q len=%d", snap.LastError(), snap.Len())
	}
}

func TestConversationService_NotConfigured(t *testing.T) {
	var svc *ConversationService
	if _, err := svc.Submit(context.Background(), "hola"); !errors.Is(err, ErrConversationNotConfigured) {
		t.Fatalf("expected ErrConversationNotConfigured, got %v", err)
	}

	svc = NewConversationService(nil, true, nil)
	if _, err := svc.Submit(context.Background(), "hola"); !errors.Is(err, ErrConversationNotConfigured) {
		t.Fatalf("expected ErrConversationNotConfigured, got %v", err)
	}
}
