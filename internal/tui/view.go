package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/mkowalczyk/platecal/internal/domain"
)

const cellWidth = 14

var (
	titleBarStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	headingStyle  = lipgloss.NewStyle().Width(cellWidth + 2).Bold(true).Align(lipgloss.Center)

	cellStyle = lipgloss.NewStyle().
			Width(cellWidth).
			Height(3).
			Border(lipgloss.NormalBorder()).
			Padding(0, 1)
	selectedCellStyle = cellStyle.BorderForeground(lipgloss.Color("212")).Bold(true)
	skippedCellStyle  = cellStyle.Faint(true)
	emptyCellStyle    = cellStyle.Foreground(lipgloss.Color("240"))

	statusLineStyle = lipgloss.NewStyle().Faint(true).Padding(0, 1)
	errorStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Padding(0, 1)
)

var dayHeadings = [7]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

func (m Model) View() string {
	if !m.booted {
		return titleBarStyle.Render(m.spinner.View() + " Loading your calendar...")
	}

	var b strings.Builder

	header := fmt.Sprintf("Meal calendar  %s — %s",
		domain.DateKey(m.view.Window.StartDate), domain.DateKey(m.view.Window.EndDate()))
	if m.busy {
		header += "  " + m.spinner.View()
	}
	b.WriteString(titleBarStyle.Render(header))
	b.WriteString("\n")

	var headings []string
	for _, d := range dayHeadings {
		headings = append(headings, headingStyle.Render(d))
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, headings...))
	b.WriteString("\n")

	for _, week := range m.view.Window.Weeks() {
		var cells []string
		for _, day := range week {
			cells = append(cells, m.renderCell(day))
		}
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, cells...))
		b.WriteString("\n")
	}

	b.WriteString(m.renderDetail())
	b.WriteString("\n")

	switch {
	case m.err != nil:
		b.WriteString(errorStyle.Render("Error: " + m.err.Error()))
	case m.status != "":
		b.WriteString(statusLineStyle.Render(m.status))
	}
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))

	return b.String()
}

func (m Model) renderCell(day time.Time) string {
	key := domain.DateKey(day)
	label := day.Format("Jan 2")

	slot, hasSlot := m.view.Index[key]
	skipped := m.view.Skipped.Contains(key) || (hasSlot && slot.Status == domain.StatusSkipped)

	var body string
	style := cellStyle
	switch {
	case skipped:
		body = label + "\nskipped"
		style = skippedCellStyle
	case !hasSlot:
		body = label + "\n—"
		style = emptyCellStyle
	default:
		title := slot.RecipeID
		if slot.Recipe != nil {
			title = slot.Recipe.Title
		}
		if title == "" {
			title = "(no recipe)"
		}
		body = label + "\n" + truncate(title, cellWidth-2)
		if slot.Status != domain.StatusPlanned {
			body += "\n" + string(slot.Status)
		}
	}

	if domain.SameDay(day, m.selected) {
		style = selectedCellStyle
	}
	return style.Render(body)
}

// renderDetail shows the selected day's slot: recipe, meal type, timing.
func (m Model) renderDetail() string {
	key := domain.DateKey(m.selected)
	slot, ok := m.view.Index[key]
	if !ok {
		if m.view.Skipped.Contains(key) {
			return statusLineStyle.Render(key + ": skipped")
		}
		return statusLineStyle.Render(key + ": nothing planned")
	}

	line := fmt.Sprintf("%s: %s %s", key, slot.MealType, slot.Status)
	if slot.Recipe != nil {
		line += fmt.Sprintf("  %s", slot.Recipe.Title)
		if slot.Recipe.PrepTime+slot.Recipe.CookTime > 0 {
			line += fmt.Sprintf(" (%d min prep, %d min cook)", slot.Recipe.PrepTime, slot.Recipe.CookTime)
		}
	} else if slot.RecipeID != "" {
		line += "  recipe " + slot.RecipeID
	}
	return statusLineStyle.Render(line)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 1 {
		return s[:max]
	}
	return s[:max-1] + "…"
}
