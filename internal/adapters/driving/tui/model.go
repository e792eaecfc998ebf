package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/bookwise-ai/bookwise/internal/core/domain"
	"github.com/bookwise-ai/bookwise/internal/core/ports/driving"
)

var (
	headerStyle   = lipgloss.NewStyle().Bold(true)
	subtitleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	answerStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	inputStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	statusStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	questionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	sourceStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// answerMsg delivers the result of an ask command back to the model.
type answerMsg struct {
	question string
	answer   *domain.Answer
	err      error
}

// exchange is one question/answer pair in the session transcript.
type exchange struct {
	question string
	answer   *domain.Answer
}

// AskModel is the Bubble Tea model for an interactive ask session against
// a single book.
type AskModel struct {
	library  driving.LibraryService
	book     *domain.Book
	nResults int

	input    textinput.Model
	viewport viewport.Model
	history  []exchange
	status   string
	waiting  bool
	ready    bool
}

// NewAskModel creates the interactive session model for one book.
func NewAskModel(library driving.LibraryService, book *domain.Book, nResults int) AskModel {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask a question and press Enter"
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)
	return AskModel{
		library:  library,
		book:     book,
		nResults: nResults,
		input:    ti,
		viewport: vp,
		status:   "Ready. Esc to quit.",
	}
}

// Init starts the text input cursor blink.
func (m AskModel) Init() tea.Cmd { return textinput.Blink }

// Update handles key, window and answer events.
func (m AskModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, ah := answerStyle.GetFrameSize()
		_, ih := inputStyle.GetFrameSize()
		headerLines := 2
		footerLines := 1
		reserved := headerLines + footerLines + ih + 1 + 1 // input line + spacer
		vh := msg.Height - reserved - ah
		if vh < 3 {
			vh = 3
		}
		m.viewport.Width = maxInt(20, msg.Width)
		m.viewport.Height = vh
		m.viewport.SetContent(m.renderHistory())
		return m, nil

	case answerMsg:
		m.waiting = false
		if msg.err != nil {
			m.status = "Error: " + msg.err.Error()
			return m, nil
		}
		m.history = append(m.history, exchange{question: msg.question, answer: msg.answer})
		m.status = fmt.Sprintf("%d passages retrieved. Esc to quit.", len(msg.answer.Sources))
		m.viewport.SetContent(m.renderHistory())
		m.viewport.GotoBottom()
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyCtrlD, tea.KeyEsc:
			return m, tea.Quit
		}
		switch msg.String() {
		case "enter":
			question := strings.TrimSpace(m.input.Value())
			if question == "" || m.waiting {
				return m, nil
			}
			m.input.Reset()
			m.waiting = true
			m.status = "Thinking..."
			return m, m.ask(question)
		case "up", "down", "pgup", "pgdown":
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the session transcript, input box and status line.
func (m AskModel) View() string {
	if !m.ready {
		return "Loading..."
	}
	title := m.book.Title
	if title == "" {
		title = m.book.FilePath
	}
	header := headerStyle.Render(title)
	subtitle := m.book.Author
	if subtitle == "" {
		subtitle = m.book.Format
	}
	sub := subtitleStyle.Render(subtitle)
	transcript := answerStyle.Render(m.viewport.View())
	input := inputStyle.Render(m.input.View())
	status := statusStyle.Render(m.status)
	return header + "\n" + sub + "\n" + transcript + "\n" + input + "\n" + status
}

// ask runs the question against the library off the update loop.
func (m AskModel) ask(question string) tea.Cmd {
	library, bookID, n := m.library, m.book.ID, m.nResults
	return func() tea.Msg {
		answer, err := library.Ask(context.Background(), bookID, question, n)
		return answerMsg{question: question, answer: answer, err: err}
	}
}

func (m AskModel) renderHistory() string {
	if len(m.history) == 0 {
		return "Ask anything about this book."
	}
	parts := make([]string, 0, len(m.history))
	for _, ex := range m.history {
		parts = append(parts, questionStyle.Render("Q: "+ex.question)+"\n\n"+renderAnswer(ex.answer))
	}
	return strings.Join(parts, "\n\n---\n\n")
}

func renderAnswer(answer *domain.Answer) string {
	var b strings.Builder
	b.WriteString(answer.Response)
	if len(answer.Sources) > 0 {
		b.WriteString("\n\n")
		b.WriteString(sourceStyle.Render(renderSources(answer.Sources)))
	}
	return b.String()
}

func renderSources(sources []domain.Source) string {
	lines := make([]string, 0, len(sources)+1)
	lines = append(lines, "Sources:")
	for i, src := range sources {
		line := fmt.Sprintf("  [%d] %s", i+1, src.FileName)
		if src.SectionTitle != "" {
			line += fmt.Sprintf(", %q", src.SectionTitle)
		}
		if src.PageNumber > 0 {
			line += fmt.Sprintf(", p. %d", src.PageNumber)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
