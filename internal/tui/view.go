package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	headerStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")).MarginBottom(1)
	sectionStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240")).Padding(0, 1)
	focusedStyle  = sectionStyle.BorderForeground(lipgloss.Color("12"))
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	statusStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
)

// View renders the model.
func (m Model) View() string {
	if m.picking {
		return headerStyle.Render("Choose a poster") + "\n" +
			m.picker.View() + "\n" +
			dimStyle.Render("enter: select • esc: back")
	}

	var b strings.Builder
	b.WriteString(headerStyle.Render("Book List"))
	b.WriteString("\n")

	form := sectionStyle
	if m.focus != focusList {
		form = focusedStyle
	}
	b.WriteString(form.Render(m.formView()))
	b.WriteString("\n")

	list := sectionStyle
	if m.focus == focusList {
		list = focusedStyle
	}
	b.WriteString(list.Render(m.listView()))
	b.WriteString("\n")

	if m.status != "" {
		b.WriteString(statusStyle.Render(m.status))
		b.WriteString("\n")
	}
	b.WriteString(dimStyle.Render(m.helpLine()))
	return b.String()
}

func (m Model) formView() string {
	var b strings.Builder
	b.WriteString(m.title.View())
	b.WriteString("\n")
	b.WriteString(m.author.View())
	b.WriteString("\n")
	b.WriteString(m.details.View())
	b.WriteString("\n")

	switch {
	case m.view.PosterPending:
		b.WriteString(dimStyle.Render("Poster: loading…"))
	case m.view.Draft.Poster != "":
		b.WriteString(fmt.Sprintf("Poster: attached (%s)", posterSize(m.view.Draft.Poster)))
	default:
		b.WriteString(dimStyle.Render("Poster: none"))
	}
	b.WriteString("\n")

	if m.view.Draft.Editing() {
		b.WriteString(selectedStyle.Render("[ctrl+s] Update Book") + "  " + dimStyle.Render("[esc] Cancel"))
	} else {
		b.WriteString(selectedStyle.Render("[ctrl+s] Add Book"))
	}
	return b.String()
}

func (m Model) listView() string {
	if len(m.view.Books) == 0 {
		return dimStyle.Render("No books yet.")
	}
	lines := make([]string, 0, len(m.view.Books))
	for i, book := range m.view.Books {
		line := fmt.Sprintf("%s by %s", book.Title, book.Author)
		if book.HasPoster() {
			line += " [poster]"
		}
		if book.ID == m.view.Draft.EditingID {
			line += " (editing)"
		}
		if i == m.cursor && m.focus == focusList {
			line = selectedStyle.Render("> " + line)
		} else {
			line = "  " + line
		}
		if book.Details != "" {
			first, _, _ := strings.Cut(book.Details, "\n")
			line += "\n    " + dimStyle.Render(first)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func (m Model) helpLine() string {
	if m.focus == focusList {
		return "↑/↓: move • e: edit • d: delete • tab: next • ctrl+c: quit"
	}
	return "tab: next • ctrl+s: submit • ctrl+o: poster • ctrl+x: remove poster • ctrl+c: quit"
}

// posterSize reports the approximate decoded size of a data URL.
func posterSize(dataURL string) string {
	_, payload, ok := strings.Cut(dataURL, ",")
	if !ok {
		return "?"
	}
	n := len(payload) * 3 / 4
	if n < 1024 {
		return fmt.Sprintf("%d B", n)
	}
	return fmt.Sprintf("%.1f KB", float64(n)/1024)
}
