package chat

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"codewright/internal/session"
	"codewright/internal/types"
)

// outboundMsg wraps one protocol message from the session controller.
type outboundMsg types.Outbound

// workDoneMsg signals that a controller call issued as a tea.Cmd returned.
type workDoneMsg struct{}

// Model is the bubbletea model for the chat shell.
type Model struct {
	ctrl     *session.Controller
	outbound chan types.Outbound

	input    textinput.Model
	viewport viewport.Model
	spin     spinner.Model
	renderer *glamour.TermRenderer
	theme    string

	history []types.ChatTurn
	mode    types.Mode
	loading bool
	ready   bool
	width   int
	height  int
}

func newModel(ctrl *session.Controller, outbound chan types.Outbound, theme string) *Model {
	ti := textinput.New()
	ti.Placeholder = "Ask anything, or switch to action mode with tab"
	ti.Focus()
	ti.CharLimit = 0

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return &Model{
		ctrl:     ctrl,
		outbound: outbound,
		input:    ti,
		spin:     sp,
		theme:    theme,
		mode:     ctrl.Mode(),
		history:  ctrl.History(),
	}
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spin.Tick, m.waitOutbound())
}

// waitOutbound blocks on the protocol channel as a command so controller
// emissions become bubbletea messages.
func (m *Model) waitOutbound() tea.Cmd {
	return func() tea.Msg {
		return outboundMsg(<-m.outbound)
	}
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		m.refreshViewport()
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		case "enter":
			return m.submit()
		case "tab":
			return m.toggleMode()
		case "ctrl+a":
			return m.controllerCmd(func() { m.ctrl.ApplyPending() })
		case "ctrl+x":
			return m.controllerCmd(func() { m.ctrl.RejectPending() })
		case "ctrl+l":
			return m.controllerCmd(func() {
				m.ctrl.Handle(context.Background(), types.Inbound{Type: types.InboundClearChat})
			})
		}

	case outboundMsg:
		m.applyOutbound(types.Outbound(msg))
		return m, m.waitOutbound()

	case workDoneMsg:
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

func (m *Model) submit() (tea.Model, tea.Cmd) {
	text := strings.TrimSpace(m.input.Value())
	if text == "" || m.loading {
		return m, nil
	}
	m.input.Reset()
	return m.controllerCmd(func() {
		m.ctrl.Handle(context.Background(), types.Inbound{Type: types.InboundSendMessage, Message: text})
	})
}

func (m *Model) toggleMode() (tea.Model, tea.Cmd) {
	next := types.ModeAction
	if m.mode == types.ModeAction {
		next = types.ModeQuery
	}
	return m.controllerCmd(func() {
		m.ctrl.Handle(context.Background(), types.Inbound{Type: types.InboundSetMode, Mode: next})
	})
}

// controllerCmd runs a controller call off the UI goroutine. Results come
// back through the outbound channel.
func (m *Model) controllerCmd(call func()) (tea.Model, tea.Cmd) {
	return m, func() tea.Msg {
		call()
		return workDoneMsg{}
	}
}

func (m *Model) applyOutbound(out types.Outbound) {
	switch out.Type {
	case types.OutboundUpdateChatHistory:
		m.history = out.History
		m.refreshViewport()
	case types.OutboundSetLoading:
		m.loading = out.IsLoading
	case types.OutboundSetMode:
		m.mode = out.Mode
		if out.Mode == types.ModeAction {
			m.input.Placeholder = "# <path> <instruction>, @doc, @test, @fix, @run ..."
		} else {
			m.input.Placeholder = "Ask anything; include a file with @<path>"
		}
	case types.OutboundAddMessage:
		if out.Message != nil {
			m.history = append(m.history, *out.Message)
			m.refreshViewport()
		}
	}
}

func (m *Model) layout() {
	if m.width == 0 || m.height == 0 {
		return
	}
	chrome := 5 // header, input, footer
	vp := viewport.New(m.width, m.height-chrome)
	if m.ready {
		vp.YOffset = m.viewport.YOffset
	}
	m.viewport = vp
	m.input.Width = m.width - 4

	renderer, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(m.glamourStyle()),
		glamour.WithWordWrap(m.width-2),
	)
	if err == nil {
		m.renderer = renderer
	}
	m.ready = true
}

func (m *Model) glamourStyle() string {
	if m.theme == "light" {
		return "light"
	}
	return "dark"
}

func (m *Model) refreshViewport() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(m.renderHistory())
	m.viewport.GotoBottom()
}
