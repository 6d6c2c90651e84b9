package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/jwebster45206/ml-interface/internal/backend"
	"github.com/jwebster45206/ml-interface/pkg/snapshot"
	"github.com/jwebster45206/ml-interface/pkg/textfilter"
)

const PlaceHolderText = "Say something to the actor..."

type entryKind int

const (
	entryPlayer entryKind = iota
	entryActor
	entryNote
	entryError
)

type entry struct {
	kind entryKind
	text string
}

// ConsoleUI is the BubbleTea model for the playtest console.
// https://github.com/charmbracelet/bubbletea
type ConsoleUI struct {
	ctx         context.Context
	backendName string
	responder   backend.Responder
	snapshot    *snapshot.Snapshot
	entries     []entry
	last        *backend.Response
	lastChange  *int

	// copyText is replaced in tests.
	copyText func(string) error

	chatViewport viewport.Model
	metaViewport viewport.Model
	textarea     textarea.Model
	ready        bool
	width        int
	height       int
	loading      bool

	showQuitModal bool
	progressTick  int
}

type responseMsg struct {
	prompt   string
	response *backend.Response
	err      error
}

type progressTickMsg struct{}

var (
	chatPanelStyle = lipgloss.NewStyle().
			PaddingTop(2).
			PaddingBottom(1).
			PaddingLeft(3).
			PaddingRight(0)

	metaPanelStyle = lipgloss.NewStyle().
			PaddingTop(2).
			PaddingBottom(0).
			PaddingLeft(0).
			PaddingRight(2)

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")). // pink
			Bold(true)

	speakerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212")). // purple
			Bold(true)

	userStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")) // teal

	noteStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")) // green

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")) // red

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2).
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("255"))

	modalTitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true).
			Align(lipgloss.Center)

	separatorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))
)

const helpText = `Commands:
• /help - Show this help
• /blocks - Show the messages sent for the last turn
• /copy - Copy the last reply to the clipboard
• Ctrl+C - Quit

Each line you send becomes the snapshot prompt. The reply and any
disposition change are folded back into the snapshot for the next turn.`

func NewConsoleUI(ctx context.Context, backendName string, r backend.Responder, s *snapshot.Snapshot) ConsoleUI {
	ta := textarea.New()
	ta.Placeholder = PlaceHolderText
	ta.Focus()
	ta.Prompt = promptStyle.Render(":: ")
	ta.CharLimit = 1000
	ta.SetHeight(3)
	ta.ShowLineNumbers = false

	m := ConsoleUI{
		ctx:          ctx,
		backendName:  backendName,
		responder:    r,
		snapshot:     s,
		copyText:     clipboard.WriteAll,
		chatViewport: viewport.New(80, 20),
		metaViewport: viewport.New(30, 20),
		textarea:     ta,
	}
	for _, t := range s.History {
		kind := entryActor
		if t.Speaker == snapshot.SpeakerPlayer {
			kind = entryPlayer
		}
		m.entries = append(m.entries, entry{kind: kind, text: t.Text})
	}
	return m
}

func (m ConsoleUI) Init() tea.Cmd {
	return textarea.Blink
}

// writeChatContent renders the transcript for the current viewport width.
func (m *ConsoleUI) writeChatContent() {
	width := max(m.chatViewport.Width-6, 20)

	var content strings.Builder
	content.WriteString(titleStyle.Render("ML INTERFACE") + "\n\n")
	content.WriteString(fmt.Sprintf("Talking to %s through %s. Type /help for commands.\n\n", m.snapshot.Actor.Name, m.backendName))
	content.WriteString(separatorStyle.Render(strings.Repeat("─", width)) + "\n\n")

	for _, e := range m.entries {
		switch e.kind {
		case entryPlayer:
			content.WriteString(userStyle.Render(m.snapshot.Player.Name+": ") + wordwrap.String(e.text, width) + "\n\n")
		case entryActor:
			content.WriteString(speakerStyle.Render(m.snapshot.Actor.Name+": ") + wordwrap.String(e.text, width) + "\n\n")
		case entryNote:
			content.WriteString(noteStyle.Render(wordwrap.String(e.text, width)) + "\n\n")
		case entryError:
			content.WriteString(errorStyle.Render("Error: "+wordwrap.String(e.text, width)) + "\n\n")
		}
	}

	if m.loading {
		content.WriteString(m.renderProgressBar())
	}

	m.chatViewport.SetContent(content.String())
	m.chatViewport.GotoBottom()
}

// writeMetadata renders the state panel.
func (m ConsoleUI) writeMetadata() string {
	s := m.snapshot
	var b strings.Builder
	b.WriteString(titleStyle.Render("Backend") + "\n")
	b.WriteString(m.backendName + "\n\n")

	b.WriteString(titleStyle.Render("Actor") + "\n")
	b.WriteString(s.Actor.Name + "\n")
	if desc := strings.TrimSpace(s.Actor.Race + " " + s.Actor.Class); desc != "" {
		b.WriteString(desc + "\n")
	}
	if s.Actor.Faction != "" {
		if s.Actor.FactionRank == snapshot.UnrankedFaction {
			b.WriteString(s.Actor.Faction + "\n")
		} else {
			b.WriteString(fmt.Sprintf("%s (rank %d)\n", s.Actor.Faction, s.Actor.FactionRank))
		}
	}
	b.WriteString(fmt.Sprintf("Disposition: %d", s.Actor.Disposition))
	if m.lastChange != nil {
		b.WriteString(" " + textfilter.FormatDisposition(*m.lastChange))
	}
	b.WriteString("\n")
	b.WriteString(statBlock(&s.Actor.Character))
	b.WriteString("\n")

	b.WriteString(titleStyle.Render("Player") + "\n")
	b.WriteString(s.Player.Name + "\n")
	b.WriteString(statBlock(&s.Player.Character))
	b.WriteString("\n")

	b.WriteString(titleStyle.Render("Location") + "\n")
	if s.Location == "" {
		b.WriteString("(unknown)\n\n")
	} else {
		b.WriteString(s.Location + "\n\n")
	}

	b.WriteString(titleStyle.Render("Turns") + "\n")
	b.WriteString(fmt.Sprintf("%d\n", len(s.History)))
	return b.String()
}

// statBlock summarizes the character's combat stat block.
func statBlock(c *snapshot.Character) string {
	a, err := c.Combatant()
	if err != nil {
		return errorStyle.Render("no stat block") + "\n"
	}
	magicka, _ := a.Attribute(snapshot.AttrMagicka)
	return fmt.Sprintf("HP %d  AC %d  MP %d\n", a.MaxHP(), a.AC(), magicka)
}

func (m ConsoleUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.showQuitModal {
		return m.updateQuitModal(msg)
	}

	var (
		tiCmd tea.Cmd
		vpCmd tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.MouseMsg:
		m.chatViewport, vpCmd = m.chatViewport.Update(msg)
		return m, vpCmd

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		m.ready = true
		m.writeChatContent()
		m.metaViewport.SetContent(m.writeMetadata())

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.showQuitModal = true
			return m, nil
		case tea.KeyEnter:
			if m.loading {
				return m, nil
			}

			input := strings.TrimSpace(m.textarea.Value())
			if input == "" {
				return m, nil
			}
			m.textarea.Reset()

			if strings.HasPrefix(input, "/") {
				return m.handleCommand(input)
			}

			m.loading = true
			m.progressTick = 0
			m.entries = append(m.entries, entry{kind: entryPlayer, text: input})
			m.writeChatContent()
			return m, tea.Batch(m.respond(input), progressTick())
		}

	case responseMsg:
		m.applyResponse(msg)
		m.writeChatContent()
		m.metaViewport.SetContent(m.writeMetadata())
		return m, nil

	case progressTickMsg:
		if m.loading {
			m.progressTick++
			m.writeChatContent()
			return m, progressTick()
		}
	}

	m.textarea, tiCmd = m.textarea.Update(msg)
	m.chatViewport, vpCmd = m.chatViewport.Update(msg)
	return m, tea.Batch(tiCmd, vpCmd)
}

func (m *ConsoleUI) resize() {
	chatWidth := int(float64(m.width)*0.75) - 4
	metaWidth := m.width - chatWidth - 6

	m.chatViewport.Width = chatWidth - 2
	m.chatViewport.Height = m.height - 7
	m.metaViewport.Width = metaWidth - 2
	m.metaViewport.Height = m.height - 4
	m.textarea.SetWidth(chatWidth - 4)
}

// respond runs one turn against a copy of the snapshot carrying the prompt.
func (m ConsoleUI) respond(prompt string) tea.Cmd {
	s := *m.snapshot
	s.Prompt = prompt
	return func() tea.Msg {
		resp, err := m.responder.Respond(m.ctx, &s)
		return responseMsg{prompt: prompt, response: resp, err: err}
	}
}

// applyResponse folds a finished turn back into the snapshot. A failed turn
// leaves the snapshot unchanged.
func (m *ConsoleUI) applyResponse(msg responseMsg) {
	m.loading = false
	if msg.err != nil {
		m.entries = append(m.entries, entry{kind: entryError, text: msg.err.Error()})
		return
	}

	reply := msg.response.Result.Reply
	next := m.snapshot.WithTurn(snapshot.SpeakerPlayer, msg.prompt).WithTurn(snapshot.SpeakerActor, reply)
	next.Prompt = ""
	m.lastChange = msg.response.Result.DispositionChange
	if m.lastChange != nil {
		next.Actor.Disposition = textfilter.ApplyDisposition(next.Actor.Disposition, *m.lastChange)
	}
	m.snapshot = next
	m.last = msg.response

	m.entries = append(m.entries, entry{kind: entryActor, text: reply})
	if m.lastChange != nil {
		m.entries = append(m.entries, entry{
			kind: entryNote,
			text: fmt.Sprintf("Disposition %s, now %d", textfilter.FormatDisposition(*m.lastChange), next.Actor.Disposition),
		})
	}
}

func (m ConsoleUI) handleCommand(input string) (tea.Model, tea.Cmd) {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "/help":
		m.entries = append(m.entries, entry{kind: entryNote, text: helpText})

	case "/blocks":
		if m.last == nil {
			m.entries = append(m.entries, entry{kind: entryNote, text: "No turn has been played yet."})
			break
		}
		var b strings.Builder
		for i, msg := range m.last.Messages {
			fmt.Fprintf(&b, "[%d %s]\n%s\n", i, msg.Role, msg.Content)
		}
		if m.last.Rating != "" {
			fmt.Fprintf(&b, "[rating]\n%s\n", m.last.Rating)
		}
		m.entries = append(m.entries, entry{kind: entryNote, text: strings.TrimRight(b.String(), "\n")})

	case "/copy":
		if m.last == nil {
			m.entries = append(m.entries, entry{kind: entryNote, text: "Nothing to copy yet."})
			break
		}
		if err := m.copyText(m.last.Result.Reply); err != nil {
			m.entries = append(m.entries, entry{kind: entryError, text: fmt.Sprintf("clipboard: %v", err)})
			break
		}
		m.entries = append(m.entries, entry{kind: entryNote, text: "Copied the last reply."})

	default:
		m.entries = append(m.entries, entry{kind: entryError, text: fmt.Sprintf("unknown command %s, try /help", input)})
	}

	m.writeChatContent()
	return m, nil
}

func (m ConsoleUI) updateQuitModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEnter:
			return m, tea.Quit
		case tea.KeyEsc:
			m.showQuitModal = false
			m.textarea.Focus()
			return m, textarea.Blink
		default:
			switch msg.String() {
			case "y", "Y":
				return m, tea.Quit
			case "n", "N":
				m.showQuitModal = false
				m.textarea.Focus()
				return m, textarea.Blink
			}
		}
	}

	return m, nil
}

func (m ConsoleUI) renderQuitModal() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var content strings.Builder
	content.WriteString(modalTitleStyle.Render("Quit?"))
	content.WriteString("\n\n")
	content.WriteString("The snapshot history of this session is not saved.")
	content.WriteString("\n\n")
	content.WriteString(promptStyle.Render("Press Y to quit, N to continue, or Ctrl+C to force quit"))

	modal := modalStyle.Width(50).Render(content.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func (m ConsoleUI) View() string {
	if m.showQuitModal {
		return m.renderQuitModal()
	}

	if !m.ready {
		return "\n  Initializing..."
	}

	chatWidth := int(float64(m.width)*0.75) - 4
	metaWidth := m.width - chatWidth - 6

	chatPanel := chatPanelStyle.Width(chatWidth).Height(m.height - 3).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			m.chatViewport.View(),
			"",
			separatorStyle.Render(strings.Repeat("─", max(chatWidth-4, 0))),
			m.textarea.View(),
		),
	)

	metaPanel := metaPanelStyle.Width(metaWidth).Height(m.height - 2).Render(
		m.metaViewport.View(),
	)

	return lipgloss.JoinHorizontal(lipgloss.Top, chatPanel, metaPanel)
}

// renderProgressBar draws the animated bar shown while a turn is generating.
func (m ConsoleUI) renderProgressBar() string {
	usable := m.chatViewport.Width - 6
	if usable <= 0 {
		usable = 30
	}
	usable = min(max(usable, 10), 80)

	const totalFrames = 40
	frame := m.progressTick % totalFrames
	filled := (frame * usable) / totalFrames

	var bar strings.Builder
	for i := 0; i < usable; i++ {
		switch {
		case i < filled:
			bar.WriteString("█")
		case i == filled && frame%4 < 2:
			bar.WriteString("▓")
		default:
			bar.WriteString("░")
		}
	}
	return separatorStyle.Render(bar.String())
}

func progressTick() tea.Cmd {
	return tea.Tick(time.Millisecond*200, func(time.Time) tea.Msg {
		return progressTickMsg{}
	})
}
