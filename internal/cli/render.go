package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/mkowalczyk/platecal/internal/domain"
	"github.com/mkowalczyk/platecal/internal/engine"
)

const cellWidth = 14

var (
	headerStyle = lipgloss.NewStyle().Bold(true)
	dayHeadings = [7]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

	cellStyle = lipgloss.NewStyle().
			Width(cellWidth).
			Height(3).
			Border(lipgloss.NormalBorder()).
			Padding(0, 1)

	skippedStyle = cellStyle.Faint(true)
	emptyStyle   = cellStyle.Foreground(lipgloss.Color("240"))
	titleStyle   = lipgloss.NewStyle().Bold(true)
	statusStyle  = lipgloss.NewStyle().Faint(true)
)

// RenderCalendar draws the window as a bordered week grid, one cell per
// date, marking skipped days and slot statuses.
func RenderCalendar(view engine.View) string {
	var b strings.Builder

	b.WriteString(headerStyle.Render(fmt.Sprintf("%s — %s",
		domain.DateKey(view.Window.StartDate), domain.DateKey(view.Window.EndDate()))))
	b.WriteString("\n")

	var heading []string
	for _, d := range dayHeadings {
		heading = append(heading, lipgloss.NewStyle().Width(cellWidth+2).Bold(true).Align(lipgloss.Center).Render(d))
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, heading...))
	b.WriteString("\n")

	for _, week := range view.Window.Weeks() {
		var cells []string
		for _, day := range week {
			cells = append(cells, renderCell(view, day))
		}
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, cells...))
		b.WriteString("\n")
	}

	return b.String()
}

func renderCell(view engine.View, day time.Time) string {
	key := domain.DateKey(day)
	dayNum := day.Format("Jan 2")

	slot, hasSlot := view.Index[key]
	skipped := view.Skipped.Contains(key) || (hasSlot && slot.Status == domain.StatusSkipped)

	switch {
	case skipped:
		return skippedStyle.Render(dayNum + "\nskipped")
	case !hasSlot:
		return emptyStyle.Render(dayNum + "\n—")
	default:
		title := slot.RecipeID
		if slot.Recipe != nil {
			title = slot.Recipe.Title
		}
		if title == "" {
			title = "(no recipe)"
		}
		line := titleStyle.Render(truncate(title, cellWidth-2))
		status := ""
		if slot.Status != domain.StatusPlanned {
			status = "\n" + statusStyle.Render(string(slot.Status))
		}
		return cellStyle.Render(dayNum + "\n" + line + status)
	}
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

// RenderPlans lists the plans backing the current window.
func RenderPlans(view engine.View) string {
	if len(view.Plans) == 0 {
		return "No plans cover this window. Run \"platecal generate\".\n"
	}
	var b strings.Builder
	for _, p := range view.Plans {
		fmt.Fprintf(&b, "%s  %s to %s  (%d days)\n",
			p.ID, domain.DateKey(p.StartDate), domain.DateKey(p.EndDate), p.DurationDays())
	}
	return b.String()
}
