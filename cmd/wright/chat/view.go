package chat

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"codewright/internal/types"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	modeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("215")).
			Bold(true)

	userStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")).
			Bold(true)

	assistantStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("150")).
			Bold(true)

	footerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))
)

func (m *Model) View() string {
	if !m.ready {
		return "starting..."
	}

	var b strings.Builder
	b.WriteString(m.header())
	b.WriteString("\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	if m.loading {
		b.WriteString(m.spin.View() + " thinking...")
	} else {
		b.WriteString("> " + m.input.View())
	}
	b.WriteString("\n")
	b.WriteString(footerStyle.Render("tab mode · enter send · ctrl+a apply · ctrl+x reject · ctrl+l clear · esc quit"))
	return b.String()
}

func (m *Model) header() string {
	title := headerStyle.Render("codewright")
	mode := modeStyle.Render(fmt.Sprintf("[%s]", m.mode))
	return lipgloss.JoinHorizontal(lipgloss.Center, title, " ", mode)
}

// renderHistory renders the conversation for the viewport. Assistant turns
// go through glamour so fenced diffs and markdown come out readable.
func (m *Model) renderHistory() string {
	var b strings.Builder
	for _, turn := range m.history {
		switch turn.Role {
		case types.RoleUser:
			b.WriteString(userStyle.Render("you") + "  " + turn.Content + "\n\n")
		default:
			b.WriteString(assistantStyle.Render("wright") + "\n")
			rendered := turn.Content
			if m.renderer != nil {
				if out, err := m.renderer.Render(turn.Content); err == nil {
					rendered = out
				}
			}
			b.WriteString(rendered + "\n")
		}
	}
	return b.String()
}
