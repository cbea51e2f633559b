package editor

import (
	"strings"
	"unicode"

	"centre-block/internal/models"
	"centre-block/internal/utils"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4"))
	headingStyle  = lipgloss.NewStyle().Bold(true)
	mutedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#8A8A8A"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5F87"))
	infoStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#5FAFFF"))
	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#04B575"))

	paneStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#585858")).
			Padding(0, 1)
)

const (
	pickerWidth   = 38
	pickerRows    = 12
	clearOption   = "Select a collection centre..."
	previewNotice = "Preview in editor - this will render on the frontend"
)

// option is one picker row. The first row always clears the selection.
type option struct {
	id    string
	label string
}

// options returns the picker rows after applying the search filter.
func (m Model) options() []option {
	opts := []option{{id: "", label: clearOption}}
	query := strings.ToLower(strings.TrimSpace(m.filter.Value()))
	for _, c := range m.centres {
		label := termSafe(c.Label())
		if query != "" && !strings.Contains(strings.ToLower(label), query) {
			continue
		}
		opts = append(opts, option{id: c.IDString(), label: label})
	}
	return opts
}

// View renders the picker beside the preview.
func (m Model) View() string {
	picker := paneStyle.Width(pickerWidth).Render(m.renderPicker())

	previewWidth := m.width - pickerWidth - 6
	if previewWidth < 40 {
		previewWidth = 40
	}
	preview := paneStyle.Width(previewWidth).Render(m.renderPreview())

	help := mutedStyle.Render("j/k move • enter select • x clear • / search • r retry • q quit")
	return lipgloss.JoinHorizontal(lipgloss.Top, picker, " ", preview) + "\n" + help
}

func (m Model) renderPicker() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Collection Centre Settings"))
	b.WriteString("\n\n")

	if m.dirState == DirectoryLoading {
		b.WriteString(m.spinner.View() + " Loading centres...\n")
	}
	if m.notice != "" {
		b.WriteString(errorStyle.Render(m.notice) + "\n")
	}
	if m.filtering || m.filter.Value() != "" {
		b.WriteString(m.filter.View() + "\n")
	}
	b.WriteString("\n")

	opts := m.options()
	start := 0
	if m.cursor >= pickerRows {
		start = m.cursor - pickerRows + 1
	}
	end := min(len(opts), start+pickerRows)

	for i := start; i < end; i++ {
		opt := opts[i]
		prefix := "  "
		if i == m.cursor && !m.pickerDisabled() {
			prefix = "> "
		}
		line := prefix + ansi.Truncate(opt.label, pickerWidth-4, "…")
		switch {
		case m.pickerDisabled():
			line = mutedStyle.Render(line)
		case opt.id != "" && utils.SameID(opt.id, m.selection):
			line = selectedStyle.Render(line)
		}
		b.WriteString(line + "\n")
	}

	if m.selection != "" {
		b.WriteString("\n" + infoStyle.Render("Selected Centre ID: "+termSafe(m.selection)))
	}
	return b.String()
}

func (m Model) renderPreview() string {
	switch m.centreState {
	case CentreNoSelection:
		return mutedStyle.Render("Please select a collection centre from the list.")
	case CentreAwaitingDirectory, CentreResolving:
		return m.spinner.View() + " Loading centre details..."
	case CentreNotFound:
		return errorStyle.Render(notFoundNotice)
	case CentreFailed:
		return errorStyle.Render(centreErrorNotice + " Press r to retry.")
	}
	return renderDisplay(m.display)
}

// renderDisplay lays out a DisplayModel as terminal text. It mirrors the
// published markup section for section.
func renderDisplay(d models.DisplayModel) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(termSafe(d.Name)) + "\n\n")

	b.WriteString(headingStyle.Render("Address:") + "\n")
	b.WriteString("  " + termSafe(d.Address) + "\n")
	for _, line := range d.LocalityLines() {
		b.WriteString("  " + termSafe(line) + "\n")
	}

	b.WriteString("\n" + headingStyle.Render("Phone:") + "\n")
	b.WriteString("  " + termSafe(d.Phone) + "\n")

	if d.HasHours() {
		b.WriteString("\n" + headingStyle.Render("Opening Hours:") + "\n")
		for _, line := range d.HoursLines {
			b.WriteString("  " + termSafe(line) + "\n")
		}
	}

	b.WriteString("\n" + headingStyle.Render("Get Directions:") + "\n")
	b.WriteString("  " + d.MapsURL + "\n")

	b.WriteString("\n" + mutedStyle.Italic(true).Render(previewNotice))
	return b.String()
}

// termSafe is the terminal counterpart of HTML escaping: upstream text may
// not move the cursor, recolor the screen or inject control bytes.
func termSafe(s string) string {
	s = ansi.Strip(s)
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return ' '
		}
		return r
	}, s)
}
