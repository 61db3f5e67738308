package domain

import "strings"

// Sender identifica quién escribió un mensaje del transcript.
type Sender string

const (
	SenderUser      Sender = "user"
	SenderAssistant Sender = "assistant"
)

// Message es una entrada inmutable del transcript.
type Message struct {
	ID      int64    `json:"id"`
	Text    string   `json:"text"`
	Sender  Sender   `json:"sender"`
	Sources []string `json:"sources,omitempty"`
}

// HasSources indica si el mensaje debe mostrar la línea de fuentes.
func (m Message) HasSources() bool {
	return m.Sender == SenderAssistant && len(m.Sources) > 0
}

// SourceName devuelve el último segmento de ruta de una fuente.
func SourceName(source string) string {
	if i := strings.LastIndex(source, "/"); i >= 0 {
		return source[i+1:]
	}
	return source
}

// SourcesLine arma la línea "Sources: a, b" respetando el orden original.
// Devuelve "" si no hay fuentes.
func SourcesLine(sources []string) string {
	if len(sources) == 0 {
		return ""
	}
	names := make([]string, 0, len(sources))
	for _, s := range sources {
		names = append(names, SourceName(s))
	}
	return "Sources: " + strings.Join(names, ", ")
}
