package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"insurance-chat/internal/domain"
)

// DefaultBaseURL es la dirección local donde se espera el servicio de respuestas.
const DefaultBaseURL = "http://localhost:8000"

var (
	ErrTransport       = errors.New("chat transport failure")
	ErrInvalidResponse = errors.New("chat invalid response")
)

// StatusError representa una respuesta no-2xx del servicio.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("chat http error: status=%d", e.StatusCode)
}

// ChatClient define la interfaz contra el endpoint /chat.
type ChatClient interface {
	Chat(ctx context.Context, req domain.ChatRequest) (domain.ChatResponse, error)
}

// HTTPClient implementa ChatClient contra el servicio HTTP local.
type HTTPClient struct {
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

// NewHTTPClient construye un cliente apuntando a baseURL. El cliente HTTP no
// tiene timeout: la petición corre hasta completarse o fallar.
func NewHTTPClient(baseURL string, logger *zap.Logger) *HTTPClient {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{},
		logger:  logger,
	}
}

// BaseURL devuelve la URL base normalizada.
func (c *HTTPClient) BaseURL() string {
	return c.baseURL
}

func (c *HTTPClient) Chat(ctx context.Context, chatReq domain.ChatRequest) (domain.ChatResponse, error) {
	bodyBytes, err := json.Marshal(chatReq)
	if err != nil {
		return domain.ChatResponse{}, fmt.Errorf("%w: marshal request: %v", ErrTransport, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat", bytes.NewReader(bodyBytes))
	if err != nil {
		return domain.ChatResponse{}, fmt.Errorf("%w: create request: %v", ErrTransport, err)
	}
	requestID := uuid.NewString()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", requestID)

	log := c.logger.With(zap.String("request_id", requestID))
	log.Debug("chat request", zap.Int("message_len", len(chatReq.Message)), zap.Bool("use_context", chatReq.UseContext))

	resp, err := c.client.Do(req)
	if err != nil {
		log.Warn("chat request failed", zap.Error(err))
		return domain.ChatResponse{}, fmt.Errorf("%w: do request: %v", ErrTransport, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.ChatResponse{}, fmt.Errorf("%w: read response: %v", ErrTransport, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Warn("chat error status", zap.Int("status", resp.StatusCode), zap.ByteString("body", truncate(respBody, 512)))
		return domain.ChatResponse{}, &StatusError{StatusCode: resp.StatusCode}
	}

	var cr domain.ChatResponse
	if err := json.Unmarshal(respBody, &cr); err != nil {
		return domain.ChatResponse{}, fmt.Errorf("%w: unmarshal response: %v", ErrInvalidResponse, err)
	}

	log.Debug("chat response", zap.Int("response_len", len(cr.Response)), zap.Strings("sources", cr.Sources))
	return cr, nil
}

// Health consulta GET /health.
func (c *HTTPClient) Health(ctx context.Context) (domain.HealthResponse, error) {
	var out domain.HealthResponse
	err := c.getJSON(ctx, "/health", &out)
	return out, err
}

// Info consulta GET /info.
func (c *HTTPClient) Info(ctx context.Context) (domain.ServiceInfo, error) {
	var out domain.ServiceInfo
	err := c.getJSON(ctx, "/info", &out)
	return out, err
}

func (c *HTTPClient) getJSON(ctx context.Context, path string, dst any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("%w: create request: %v", ErrTransport, err)
	}
	req.Header.Set("X-Request-ID", uuid.NewString())

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: do request: %v", ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{StatusCode: resp.StatusCode}
	}
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("%w: decode %s: %v", ErrInvalidResponse, path, err)
	}
	return nil
}

func truncate(b []byte, n int) []byte {
	if len(b) <= n {
		return b
	}
	return b[:n]
}
