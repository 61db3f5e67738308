package tui

import (
	"strings"

	"insurance-chat/internal/domain"
	"insurance-chat/internal/service"
)

const (
	appTitle     = "Insurance Chatbot"
	appSubtitle  = "Ask me anything about insurance policies and claims"
	placeholder  = "Ask about insurance policies, claims, or coverage..."
	thinkingText = "Thinking"
)

// welcomeText se muestra en lugar del transcript vacío. No se guarda en la sesión.
var welcomeText = strings.Join([]string{
	"Welcome! I'm your insurance assistant. I can help you with:",
	"• Filing insurance claims",
	"• Understanding coverage options",
	"• Policy information",
	"• General insurance questions",
	"",
	"How can I help you today?",
}, "\n")

// markdownRenderer es la parte de glamour.TermRenderer que usamos.
type markdownRenderer interface {
	Render(in string) (string, error)
}

// renderTranscript arma el contenido del viewport: mensajes en orden de
// inserción, la bienvenida si no hay mensajes y el indicador mientras se espera.
func renderTranscript(s service.Session, md markdownRenderer, spinnerFrame string) string {
	var sb strings.Builder

	msgs := s.Transcript()
	if len(msgs) == 0 {
		sb.WriteString(assistantRoleStyle.Render("Assistant"))
		sb.WriteString("\n")
		sb.WriteString(welcomeText)
		sb.WriteString("\n")
	}

	for _, msg := range msgs {
		switch msg.Sender {
		case domain.SenderUser:
			sb.WriteString(userRoleStyle.Render("You"))
			sb.WriteString("\n")
			sb.WriteString(msg.Text)
			sb.WriteString("\n\n")
		default:
			sb.WriteString(assistantRoleStyle.Render("Assistant"))
			sb.WriteString("\n")
			sb.WriteString(strings.TrimRight(safeRenderMarkdown(md, msg.Text), "\n"))
			sb.WriteString("\n")
			if msg.HasSources() {
				sb.WriteString(sourcesStyle.Render(domain.SourcesLine(msg.Sources)))
				sb.WriteString("\n")
			}
			sb.WriteString("\n")
		}
	}

	if s.IsWaiting() {
		sb.WriteString(assistantRoleStyle.Render("Assistant"))
		sb.WriteString("\n")
		sb.WriteString(thinkingStyle.Render(spinnerFrame + thinkingText + "..."))
		sb.WriteString("\n")
	}

	return sb.String()
}

// safeRenderMarkdown cae a texto plano si glamour falla o entra en pánico.
func safeRenderMarkdown(md markdownRenderer, content string) (result string) {
	defer func() {
		if r := recover(); r != nil {
			result = content
		}
	}()

	if md != nil && content != "" {
		rendered, err := md.Render(content)
		if err == nil {
			return rendered
		}
	}
	return content
}
