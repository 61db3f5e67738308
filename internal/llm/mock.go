package llm

import (
	"context"
	"sync"

	"insurance-chat/internal/domain"
)

// MockClient permite tests sin llamar al servicio real.
type MockClient struct {
	Response domain.ChatResponse
	Err      error
	// Block, si no es nil, retiene la llamada hasta que se cierre.
	Block chan struct{}

	mu       sync.Mutex
	requests []domain.ChatRequest
}

func (m *MockClient) Chat(ctx context.Context, req domain.ChatRequest) (domain.ChatResponse, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	m.mu.Unlock()

	if m.Block != nil {
		select {
		case <-m.Block:
		case <-ctx.Done():
			return domain.ChatResponse{}, ctx.Err()
		}
	}
	return m.Response, m.Err
}

// Requests devuelve una copia de las peticiones recibidas.
func (m *MockClient) Requests() []domain.ChatRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.ChatRequest, len(m.requests))
	copy(out, m.requests)
	return out
}
