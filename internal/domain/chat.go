package domain

// ChatRequest es el cuerpo de POST /chat.
type ChatRequest struct {
	Message    string `json:"message"`
	UseContext bool   `json:"use_context"`
}

// ChatResponse es la respuesta 2xx de POST /chat.
type ChatResponse struct {
	Response string   `json:"response"`
	Sources  []string `json:"sources,omitempty"`
}

// HealthResponse refleja GET /health del servicio de respuestas.
type HealthResponse struct {
	Status            string `json:"status"`
	OllamaStatus      string `json:"ollama_status"`
	VectorStoreStatus string `json:"vector_store_status"`
}

// ServiceInfo refleja GET /info. DocumentsIndexed puede ser un número o "unknown".
type ServiceInfo struct {
	Model            string `json:"model"`
	BaseURL          string `json:"base_url"`
	DocumentsIndexed any    `json:"documents_indexed"`
	VectorStorePath  string `json:"vector_store_path"`
}
