package tui

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"insurance-chat/internal/domain"
	"insurance-chat/internal/llm"
	"insurance-chat/internal/service"
)

const (
	headerHeight = 2
	inputHeight  = 3
	// borde del input + línea de ayuda
	chromeHeight = 3
)

// Options configura el modelo de la TUI.
type Options struct {
	Client     llm.ChatClient
	Logger     *zap.Logger
	UseContext bool
	// Markdown activa el render con glamour de las respuestas.
	Markdown bool
	Context  context.Context
}

// replyMsg lleva el resultado de una petición de vuelta al loop de Update.
type replyMsg struct {
	sub  service.Submission
	resp domain.ChatResponse
	err  error
}

// Model es el modelo bubbletea de la sesión de conversación. Todo el estado
// de la conversación vive en session y solo cambia dentro de Update.
type Model struct {
	session  service.Session
	client   llm.ChatClient
	logger   *zap.Logger
	ctx      context.Context
	cancel   context.CancelFunc
	now      func() time.Time
	markdown bool

	textarea textarea.Model
	viewport viewport.Model
	spinner  spinner.Model
	renderer markdownRenderer

	width  int
	height int
}

// NewModel construye el modelo con dimensiones por defecto hasta recibir el
// primer WindowSizeMsg.
func NewModel(opts Options) Model {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	parent := opts.Context
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)

	ta := textarea.New()
	ta.Placeholder = placeholder
	ta.ShowLineNumbers = false
	ta.Prompt = "┃ "
	// Sin tope de caracteres ni de líneas: el mensaje se envía completo.
	ta.CharLimit = 0
	ta.MaxHeight = 0
	ta.SetHeight(inputHeight)
	// Enter envía; el salto de línea se inserta a mano con Alt+Enter.
	ta.KeyMap.InsertNewline.SetEnabled(false)
	ta.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = thinkingStyle

	m := Model{
		session:  service.NewSession(opts.UseContext),
		client:   opts.Client,
		logger:   logger,
		ctx:      ctx,
		cancel:   cancel,
		now:      time.Now,
		markdown: opts.Markdown,
		textarea: ta,
		viewport: viewport.New(80, 20),
		spinner:  sp,
		width:    80,
		height:   30,
	}
	m.layout()
	m.setRenderer()
	m.refresh()
	return m
}

// Session expone el estado actual, útil para tests y para el resumen al salir.
func (m Model) Session() service.Session {
	return m.session
}

func (m Model) Init() tea.Cmd {
	return textarea.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		m.setRenderer()
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case replyMsg:
		return m.handleReply(msg), nil

	case spinner.TickMsg:
		if !m.session.IsWaiting() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		m.viewport.SetContent(m.content())
		return m, cmd
	}

	// El resto (blink del cursor, mouse) va al textarea y al viewport.
	var taCmd, vpCmd tea.Cmd
	m.textarea, taCmd = m.textarea.Update(msg)
	m.viewport, vpCmd = m.viewport.Update(msg)
	return m, tea.Batch(taCmd, vpCmd)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		m.cancel()
		return m, tea.Quit

	case tea.KeyEnter:
		if msg.Alt {
			m.textarea.InsertString("\n")
			m.session = m.session.SetInput(m.textarea.Value())
			return m, nil
		}
		return m.submit()

	case tea.KeyPgUp, tea.KeyPgDown:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	// Un pegado llega como KeyRunes con Paste=true; sus saltos de línea
	// quedan en el textarea y no envían.
	var cmd tea.Cmd
	m.textarea, cmd = m.textarea.Update(msg)
	m.session = m.session.SetInput(m.textarea.Value())
	return m, cmd
}

// submit aplica Begin. Si la sesión rechaza el texto no hay feedback: el
// envío se descarta en silencio.
func (m Model) submit() (tea.Model, tea.Cmd) {
	next, sub, ok := m.session.Begin(m.textarea.Value(), m.now())
	if !ok {
		m.logger.Debug("submission dropped",
			zap.Bool("waiting", m.session.IsWaiting()),
			zap.Int("input_len", len(m.textarea.Value())),
		)
		return m, nil
	}

	m.session = next
	m.textarea.Reset()
	m.layout()
	m.refresh()
	m.logger.Info("submission accepted", zap.Uint64("generation", sub.Generation))

	return m, tea.Batch(m.spinner.Tick, m.sendCmd(sub))
}

// sendCmd ejecuta la petición fuera del loop de Update.
func (m Model) sendCmd(sub service.Submission) tea.Cmd {
	client := m.client
	ctx := m.ctx
	return func() tea.Msg {
		if client == nil {
			return replyMsg{sub: sub, err: service.ErrConversationNotConfigured}
		}
		resp, err := client.Chat(ctx, sub.Request())
		return replyMsg{sub: sub, resp: resp, err: err}
	}
}

func (m Model) handleReply(msg replyMsg) Model {
	if msg.err != nil {
		m.logger.Warn("chat submission failed", zap.Uint64("generation", msg.sub.Generation), zap.Error(msg.err))
		m.session = m.session.Fail(msg.sub)
	} else {
		m.session = m.session.Succeed(msg.sub, msg.resp, m.now())
	}
	m.layout()
	m.refresh()
	return m
}

// layout recalcula tamaños según la ventana y si hay banner de error.
func (m *Model) layout() {
	m.textarea.SetWidth(max(10, m.width-2))
	m.viewport.Width = m.width

	h := m.height - headerHeight - inputHeight - chromeHeight
	if banner := m.banner(); banner != "" {
		h -= lipgloss.Height(banner)
	}
	m.viewport.Height = max(3, h)
}

// banner devuelve el aviso de error ya renderizado, o "" si no hay error.
func (m Model) banner() string {
	errText := m.session.LastError()
	if errText == "" {
		return ""
	}
	return errorBannerStyle.Width(max(20, m.width)).Render(errText)
}

// setRenderer rehace el renderer de glamour con el ancho actual.
func (m *Model) setRenderer() {
	m.renderer = nil
	if m.markdown {
		if r, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(max(20, m.width-4)),
		); err == nil {
			m.renderer = r
		}
	}
}

func (m Model) content() string {
	return renderTranscript(m.session, m.renderer, m.spinner.View())
}

// refresh vuelve a pintar el transcript y baja hasta el último elemento.
func (m *Model) refresh() {
	m.viewport.SetContent(m.content())
	m.viewport.GotoBottom()
}

func (m Model) View() string {
	var sb strings.Builder

	sb.WriteString(titleStyle.Render(appTitle))
	sb.WriteString("\n")
	sb.WriteString(subtitleStyle.Render(appSubtitle))
	sb.WriteString("\n")
	sb.WriteString(m.viewport.View())
	sb.WriteString("\n")

	if banner := m.banner(); banner != "" {
		sb.WriteString(banner)
		sb.WriteString("\n")
	}

	sb.WriteString(inputBoxStyle.Render(m.textarea.View()))
	sb.WriteString("\n")
	sb.WriteString(helpStyle.Render("enter: send • alt+enter: newline • pgup/pgdn: scroll • esc/ctrl+c: quit"))

	return lipgloss.NewStyle().MaxWidth(m.width).Render(sb.String())
}
