package service

import (
	"strings"
	"time"

	"insurance-chat/internal/domain"
)

// AdvisoryMessage es el único error visible para el usuario, sea cual sea la falla.
const AdvisoryMessage = "Failed to send message. Please make sure the API server is running on localhost:8000"

// Phase es el estado de la sesión respecto a la petición en curso.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseWaiting
)

func (p Phase) String() string {
	if p == PhaseWaiting {
		return "waiting"
	}
	return "idle"
}

// Submission identifica una petición aceptada. Generation actúa como token:
// solo la submission vigente puede cerrar el estado waiting.
type Submission struct {
	Generation uint64
	Text       string
	UseContext bool
}

// Request arma el cuerpo de POST /chat para esta submission.
func (s Submission) Request() domain.ChatRequest {
	return domain.ChatRequest{Message: s.Text, UseContext: s.UseContext}
}

// Session es el registro de estado de la conversación. Todas las
// transiciones son funciones puras: reciben un valor y devuelven otro.
// El transcript nunca se comparte con la copia anterior al agregar.
type Session struct {
	transcript   []domain.Message
	pendingInput string
	phase        Phase
	lastError    string
	generation   uint64
	useContext   bool
}

// NewSession crea una sesión vacía. useContext se envía en cada petición.
func NewSession(useContext bool) Session {
	return Session{useContext: useContext}
}

// Transcript devuelve una copia de los mensajes en orden de envío.
func (s Session) Transcript() []domain.Message {
	out := make([]domain.Message, len(s.transcript))
	copy(out, s.transcript)
	return out
}

// Len devuelve la cantidad de mensajes del transcript.
func (s Session) Len() int { return len(s.transcript) }

// PendingInput devuelve el texto aún no enviado.
func (s Session) PendingInput() string { return s.pendingInput }

// Phase devuelve la fase actual.
func (s Session) Phase() Phase { return s.phase }

// IsWaiting indica si hay una petición en curso.
func (s Session) IsWaiting() bool { return s.phase == PhaseWaiting }

// LastError devuelve el aviso visible, o "" si no hay error.
func (s Session) LastError() string { return s.lastError }

// Generation devuelve el token de la última submission aceptada.
func (s Session) Generation() uint64 { return s.generation }

// SetInput actualiza el texto pendiente sin validar.
func (s Session) SetInput(text string) Session {
	s.pendingInput = text
	return s
}

// Begin intenta aceptar una submission. Si el texto recortado es vacío o ya
// hay una petición en curso devuelve la sesión sin cambios y ok=false.
func (s Session) Begin(text string, now time.Time) (Session, Submission, bool) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" || s.phase == PhaseWaiting {
		return s, Submission{}, false
	}

	s = s.appendMessage(domain.Message{
		ID:     s.nextID(now),
		Text:   trimmed,
		Sender: domain.SenderUser,
	})
	s.pendingInput = ""
	s.phase = PhaseWaiting
	s.lastError = ""
	s.generation++

	return s, Submission{Generation: s.generation, Text: trimmed, UseContext: s.useContext}, true
}

// Succeed cierra la submission vigente agregando la respuesta del asistente.
// Completions de otra generación se ignoran.
func (s Session) Succeed(sub Submission, resp domain.ChatResponse, now time.Time) Session {
	if !s.current(sub) {
		return s
	}
	var sources []string
	if len(resp.Sources) > 0 {
		sources = make([]string, len(resp.Sources))
		copy(sources, resp.Sources)
	}
	s = s.appendMessage(domain.Message{
		ID:      s.nextID(now),
		Text:    resp.Response,
		Sender:  domain.SenderAssistant,
		Sources: sources,
	})
	s.phase = PhaseIdle
	return s
}

// Fail cierra la submission vigente con el mensaje de aviso. El mensaje del
// usuario ya agregado se conserva.
func (s Session) Fail(sub Submission) Session {
	if !s.current(sub) {
		return s
	}
	s.lastError = AdvisoryMessage
	s.phase = PhaseIdle
	return s
}

func (s Session) current(sub Submission) bool {
	return s.phase == PhaseWaiting && sub.Generation == s.generation
}

func (s Session) appendMessage(msg domain.Message) Session {
	next := make([]domain.Message, len(s.transcript), len(s.transcript)+1)
	copy(next, s.transcript)
	s.transcript = append(next, msg)
	return s
}

// nextID deriva el id del instante de envío y lo fuerza a ser creciente.
func (s Session) nextID(now time.Time) int64 {
	id := now.UnixMilli()
	if n := len(s.transcript); n > 0 && id <= s.transcript[n-1].ID {
		id = s.transcript[n-1].ID + 1
	}
	return id
}
