package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"insurance-chat/internal/domain"
)

// Answerer produce la respuesta a una pregunta. Es el punto donde los tests
// inyectan fallas o respuestas fijas.
type Answerer interface {
	Answer(req domain.ChatRequest) (domain.ChatResponse, error)
}

// AnswerFunc adapta una función a Answerer.
type AnswerFunc func(req domain.ChatRequest) (domain.ChatResponse, error)

func (f AnswerFunc) Answer(req domain.ChatRequest) (domain.ChatResponse, error) {
	return f(req)
}

// ChatHandler expone el contrato del servicio de respuestas: /chat, /health e /info.
type ChatHandler struct {
	logger   *zap.Logger
	answerer Answerer
	info     domain.ServiceInfo
}

// NewChatHandler crea un ChatHandler. Si answerer es nil usa la base de
// conocimiento local.
func NewChatHandler(logger *zap.Logger, answerer Answerer) *ChatHandler {
	if answerer == nil {
		answerer = NewKnowledgeAnswerer(DefaultDocuments())
	}
	info := domain.ServiceInfo{
		Model:            "fake-answerer",
		BaseURL:          "local",
		DocumentsIndexed: 0,
		VectorStorePath:  "memory",
	}
	if k, ok := answerer.(*KnowledgeAnswerer); ok {
		info.DocumentsIndexed = len(k.docs)
	}
	return &ChatHandler{logger: logger, answerer: answerer, info: info}
}

// Chat maneja POST /chat.
func (h *ChatHandler) Chat(c *gin.Context) {
	var req struct {
		Message    string `json:"message" binding:"required"`
		UseContext *bool  `json:"use_context"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid chat request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid request"})
		return
	}

	chatReq := domain.ChatRequest{Message: strings.TrimSpace(req.Message), UseContext: true}
	if req.UseContext != nil {
		chatReq.UseContext = *req.UseContext
	}

	resp, err := h.answerer.Answer(chatReq)
	if err != nil {
		h.logger.Error("answer failed", zap.Error(err), zap.String("request_id", c.GetHeader("X-Request-ID")))
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Error processing request: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Health maneja GET /health.
func (h *ChatHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, domain.HealthResponse{
		Status:            "healthy",
		OllamaStatus:      "healthy",
		VectorStoreStatus: "healthy",
	})
}

// Info maneja GET /info.
func (h *ChatHandler) Info(c *gin.Context) {
	c.JSON(http.StatusOK, h.info)
}

// Root maneja GET /.
func (h *ChatHandler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Simple Insurance Chatbot API", "health": "/health"})
}
