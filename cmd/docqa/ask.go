package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/a-h/docqa/client"
	"github.com/a-h/docqa/models"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"
)

type AskCommand struct {
	ServerURL string `help:"The URL of the document Q&A server." env:"DOCQA_SERVER_URL" default:"http://localhost:8001"`
	Category  string `help:"The document category to query." env:"CATEGORY" default:""`
	LogLevel  string `help:"The log level to use." env:"LOG_LEVEL" default:"info"`
}

// Each question is sent as an independent query, the server is not given
// previous questions or answers.
func (c AskCommand) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	rsc := client.New(c.ServerURL)

	questions := make(chan string, 8)
	answers := make(chan answered)
	defer close(questions)

	go func() {
		for q := range questions {
			a := answered{Question: q}
			a.Response, a.Err = rsc.QueryPost(ctx, models.QueryPostRequest{
				Query:    q,
				Category: c.Category,
			})
			var qe client.QueryError
			if errors.As(a.Err, &qe) {
				a.Response = qe.Response
			}
			select {
			case answers <- a:
			case <-ctx.Done():
				return
			}
		}
	}()

	p := tea.NewProgram(newAskModel(ctx, c.Category, questions, answers))
	if _, err = p.Run(); err != nil {
		return err
	}
	return nil
}

type answered struct {
	Question string
	Response models.QueryPostResponse
	Err      error
}

// Dracula color scheme.
var (
	Background  = lipgloss.Color("#282a36")
	CurrentLine = lipgloss.Color("#44475a")
	Comment     = lipgloss.Color("#6272a4")
	Cyan        = lipgloss.Color("#8be9fd")
	Green       = lipgloss.Color("#50fa7b")
	Pink        = lipgloss.Color("#ff79c6")
	Purple      = lipgloss.Color("#bd93f9")
	Red         = lipgloss.Color("#ff5555")
)

var headerStyle = lipgloss.NewStyle().Background(CurrentLine).Foreground(Purple).Bold(true).Margin(1).Padding(1)

type entryType int

const (
	entryTypeQuestion entryType = iota
	entryTypePending
	entryTypeAnswer
	entryTypeSources
	entryTypeError
)

type entry struct {
	Type    entryType
	Content string
}

var entryTypeToStyle = map[entryType]lipgloss.Style{
	entryTypeQuestion: lipgloss.NewStyle().Padding(1).Margin(1).MarginBottom(0).Background(Background).Foreground(Pink),
	entryTypePending:  lipgloss.NewStyle().Padding(1).Margin(1).MarginBottom(0).Background(Background).Foreground(Comment),
	entryTypeAnswer:   lipgloss.NewStyle().Padding(1).Margin(1).MarginBottom(0).Background(Background).Foreground(Cyan),
	entryTypeSources:  lipgloss.NewStyle().PaddingLeft(1).MarginLeft(1).Foreground(Green),
	entryTypeError:    lipgloss.NewStyle().Padding(1).Margin(1).MarginBottom(0).Background(Background).Foreground(Red),
}

var entryTypeToIcon = map[entryType]string{
	entryTypeQuestion: "🥷",
	entryTypePending:  "⏳",
	entryTypeAnswer:   "✨",
	entryTypeSources:  "📄",
	entryTypeError:    "💥",
}

func formatEntry(e entry, width int) string {
	style, ok := entryTypeToStyle[e.Type]
	if !ok {
		return e.Content
	}
	icon, ok := entryTypeToIcon[e.Type]
	if !ok {
		icon = "🤷"
	}
	wrapped := wordwrap.String(strings.TrimSpace(icon+" "+e.Content), width)
	return style.Render(wrapped)
}

// entriesFor converts an answered question into the entries shown to the user.
func entriesFor(a answered) (entries []entry) {
	msg := a.Response.Error
	if msg == "" && a.Err != nil {
		msg = a.Err.Error()
	}
	if msg != "" {
		entries = append(entries, entry{Type: entryTypeError, Content: msg})
	}
	if len(a.Response.Answer) > 0 {
		var buf bytes.Buffer
		content := string(a.Response.Answer)
		if err := json.Indent(&buf, a.Response.Answer, "", "  "); err == nil {
			content = buf.String()
		}
		entries = append(entries, entry{Type: entryTypeAnswer, Content: content})
	}
	if len(a.Response.UsedFiles) > 0 {
		entries = append(entries, entry{Type: entryTypeSources, Content: strings.Join(a.Response.UsedFiles, ", ")})
	}
	return entries
}

type askModel struct {
	viewport viewport.Model
	textarea textarea.Model
	ctx      context.Context
	header   string
	entries  []entry

	questions chan<- string
	answers   <-chan answered
}

func newAskModel(ctx context.Context, category string, questions chan<- string, answers <-chan answered) askModel {
	ta := textarea.New()
	ta.Placeholder = "Ask a question about your documents..."
	ta.Focus()

	ta.Prompt = "┃ "
	ta.CharLimit = 500

	ta.SetHeight(3)

	// Remove cursor line styling
	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()

	ta.ShowLineNumbers = false

	if category == "" {
		category = "default"
	}
	header := headerStyle.Render(fmt.Sprintf("docqa · category: %s", category))

	vp := viewport.New(80, 20)
	vp.SetContent(header)

	ta.KeyMap.InsertNewline.SetEnabled(false)

	return askModel{
		ctx:       ctx,
		textarea:  ta,
		viewport:  vp,
		header:    header,
		questions: questions,
		answers:   answers,
	}
}

func (m askModel) Init() tea.Cmd {
	return tea.Batch(
		textarea.Blink,
		m.subscribeToAnswers(),
	)
}

func (m askModel) subscribeToAnswers() tea.Cmd {
	return func() tea.Msg {
		select {
		case a := <-m.answers:
			return a
		case <-m.ctx.Done():
			return nil
		}
	}
}

func (m askModel) render() string {
	width := max(m.viewport.Width-6, 20)
	var sb strings.Builder
	sb.WriteString(m.header)
	sb.WriteString("\n")
	for _, e := range m.entries {
		sb.WriteString(formatEntry(e, width))
		sb.WriteString("\n")
	}
	return sb.String()
}

// resolvePending replaces the placeholder for the first unanswered question.
func (m askModel) resolvePending(a answered) []entry {
	for i, e := range m.entries {
		if e.Type != entryTypePending {
			continue
		}
		resolved := append([]entry{}, m.entries[:i]...)
		resolved = append(resolved, entriesFor(a)...)
		return append(resolved, m.entries[i+1:]...)
	}
	return append(m.entries, entriesFor(a)...)
}

func (m askModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case answered:
		m.entries = m.resolvePending(msg)
		m.viewport.SetContent(m.render())
		m.viewport.GotoBottom()
		return m, m.subscribeToAnswers()
	case tea.WindowSizeMsg:
		m.viewport.Width = msg.Width
		m.viewport.Height = msg.Height - m.textarea.Height() - 3
		m.textarea.SetWidth(msg.Width)
		m.viewport.SetContent(m.render())
		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "esc", "ctrl+c":
			return m, tea.Quit
		case "enter":
			v := strings.TrimSpace(m.textarea.Value())
			if v == "" {
				// Don't send empty questions.
				return m, nil
			}
			m.textarea.Reset()
			m.entries = append(m.entries,
				entry{Type: entryTypeQuestion, Content: v},
				entry{Type: entryTypePending, Content: "Reading documents..."},
			)
			m.viewport.SetContent(m.render())
			m.viewport.GotoBottom()
			m.questions <- v
			return m, nil
		default:
			// Send all other keypresses to the textarea.
			var cmd tea.Cmd
			m.textarea, cmd = m.textarea.Update(msg)
			return m, cmd
		}

	case cursor.BlinkMsg:
		// Textarea should also process cursor blinks.
		var cmd tea.Cmd
		m.textarea, cmd = m.textarea.Update(msg)
		return m, cmd

	default:
		return m, nil
	}
}

func (m askModel) View() string {
	return fmt.Sprintf("%s\n\n%s",
		m.viewport.View(),
		m.textarea.View(),
	) + "\n\n"
}
