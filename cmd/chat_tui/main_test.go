package main

import (
	"bytes"
	"context"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"insurance-chat/internal/domain"
	apihttp "insurance-chat/internal/http"
	"insurance-chat/internal/service"
)

func newFakeService(t *testing.T, answerer apihttp.Answerer) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	srv := httptest.NewServer(apihttp.NewRouter(zap.NewNop(), apihttp.NewChatHandler(zap.NewNop(), answerer)))
	t.Cleanup(srv.Close)
	return srv
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("LOG_LEVEL", "error")
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestAskCommand_PrintsAnswerAndSources(t *testing.T) {
	srv := newFakeService(t, nil)

	out, err := execute(t, "ask", "--api-url", srv.URL, "How do I file a claim?")
	if err != nil {
		t.Fatalf("expected no error, got %v (output %q)", err, out)
	}
	if !strings.Contains(out, "To file a claim") {
		t.Fatalf("expected answer in output, got %q", out)
	}
	if !strings.Contains(out, "Sources: claims_process.md") {
		t.Fatalf("expected sources line, got %q", out)
	}
}

func TestAskCommand_FailurePrintsAdvisory(t *testing.T) {
	srv := newFakeService(t, apihttp.AnswerFunc(func(domain.ChatRequest) (domain.ChatResponse, error) {
		return domain.ChatResponse{}, errors.New("llm down")
	}))

	out, err := execute(t, "ask", "--api-url", srv.URL, "hola")
	if err == nil {
		t.Fatalf("expected error for 500 response")
	}
	if !strings.Contains(out, service.AdvisoryMessage) {
		t.Fatalf("expected advisory in output, got %q", out)
	}
}

func TestHealthCommand(t *testing.T) {
	srv := newFakeService(t, nil)

	out, err := execute(t, "health", "--api-url", srv.URL)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !strings.Contains(out, "status:        healthy") || !strings.Contains(out, "model:         fake-answerer") {
		t.Fatalf("unexpected health output %q", out)
	}
}

func TestEvalCommand(t *testing.T) {
	srv := newFakeService(t, nil)

	out, err := execute(t, "eval", "--api-url", srv.URL, "--sample", "2")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !strings.Contains(out, "2/2 answered") {
		t.Fatalf("unexpected eval output %q", out)
	}
}
