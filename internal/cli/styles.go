package cli

import (
	"fmt"
	"strings"
	"time"

	"charm.land/lipgloss/v2"

	"laptev/internal/domain"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	idStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	dimStyle    = lipgloss.NewStyle().Faint(true)
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
)

// Page returns the 1-based page of recs with pageSize entries per page, and
// the number of pages.
func Page(recs []domain.Recording, page, pageSize int) ([]domain.Recording, int) {
	if pageSize <= 0 {
		pageSize = len(recs)
	}
	if pageSize == 0 {
		return nil, 0
	}
	pages := (len(recs) + pageSize - 1) / pageSize
	if page < 1 || page > pages {
		return nil, pages
	}
	start := (page - 1) * pageSize
	end := min(start+pageSize, len(recs))
	return recs[start:end], pages
}

// RenderRecordings formats one page of recordings with times shown in loc.
func RenderRecordings(recs []domain.Recording, page, pages int, loc *time.Location) string {
	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("%-12s  %-25s  %s", "ID", "RECORDED", "THUMBNAIL")))
	b.WriteByte('\n')
	for _, r := range recs {
		fmt.Fprintf(&b, "%s  %-25s  %s\n",
			idStyle.Render(fmt.Sprintf("%-12s", r.ID)),
			r.ID.Time().In(loc).Format("2006-01-02 15:04:05 MST"),
			dimStyle.Render(fmt.Sprintf("%d bytes", len(r.Thumbnail))),
		)
	}
	b.WriteString(dimStyle.Render(fmt.Sprintf("page %d of %d", page, max(pages, 1))))
	return b.String()
}

// OK renders a success marker followed by msg.
func OK(msg string) string { return okStyle.Render("✓") + " " + msg }

// Warn renders a warning marker followed by msg.
func Warn(msg string) string { return warnStyle.Render("!") + " " + msg }
