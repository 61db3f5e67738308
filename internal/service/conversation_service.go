package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"insurance-chat/internal/domain"
	"insurance-chat/internal/llm"
)

var ErrConversationNotConfigured = errors.New("conversation service not configured")

// ConversationService conduce una Session contra un ChatClient de forma
// sincrónica. Un segundo Submit mientras hay otro en curso se descarta.
type ConversationService struct {
	client llm.ChatClient
	logger *zap.Logger
	now    func() time.Time

	mu      sync.Mutex
	session Session
}

func NewConversationService(client llm.ChatClient, useContext bool, logger *zap.Logger) *ConversationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConversationService{
		client:  client,
		logger:  logger,
		now:     time.Now,
		session: NewSession(useContext),
	}
}

// Submit envía text y espera la respuesta. accepted=false si el texto es vacío
// o ya había una petición en curso. err es la falla cruda de transporte o
// status; el estado de la sesión ya refleja AdvisoryMessage.
func (s *ConversationService) Submit(ctx context.Context, text string) (accepted bool, err error) {
	if s == nil || s.client == nil {
		return false, ErrConversationNotConfigured
	}

	s.mu.Lock()
	next, sub, ok := s.session.Begin(text, s.now())
	if !ok {
		waiting := s.session.IsWaiting()
		s.mu.Unlock()
		s.logger.Debug("submission dropped", zap.Bool("waiting", waiting))
		return false, nil
	}
	s.session = next
	s.mu.Unlock()

	resp, callErr := s.client.Chat(ctx, sub.Request())

	s.mu.Lock()
	defer s.mu.Unlock()
	if callErr != nil {
		s.logger.Warn("chat submission failed", zap.Uint64("generation", sub.Generation), zap.Error(callErr))
		s.session = s.session.Fail(sub)
		return true, callErr
	}
	s.session = s.session.Succeed(sub, resp, s.now())
	return true, nil
}

// Snapshot devuelve el estado actual de la sesión.
func (s *ConversationService) Snapshot() Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session
}

// Transcript es un atajo a Snapshot().Transcript().
func (s *ConversationService) Transcript() []domain.Message {
	return s.Snapshot().Transcript()
}
