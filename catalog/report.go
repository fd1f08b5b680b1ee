// ABOUTME: End-of-run summary rendering for operator visibility
// ABOUTME: Styled counts box plus per-decision detail lines
package catalog

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/harperreed/chollosync/models"
)

var (
	reportTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("170"))

	reportBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(0, 2)

	countLabelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	createdStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	updatedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	deletedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
)

// RenderSummary renders the pass summary as a styled report.
func RenderSummary(s *models.Summary) string {
	var b strings.Builder

	title := fmt.Sprintf("Reconciliation pass %s", s.PassID)
	if s.DryRun {
		title += " (dry run)"
	}
	b.WriteString(reportTitleStyle.Render(title))
	b.WriteString("\n")

	created, updated, existing, deleted := s.Counts()
	counts := []string{
		createdStyle.Render(fmt.Sprintf("✓ %d created", created)),
		updatedStyle.Render(fmt.Sprintf("→ %d updated", updated)),
		countLabelStyle.Render(fmt.Sprintf("= %d existing", existing)),
		deletedStyle.Render(fmt.Sprintf("✗ %d deleted", deleted)),
		countLabelStyle.Render(fmt.Sprintf("! %d failed", s.Failed)),
		countLabelStyle.Render(fmt.Sprintf("⏱ %s", s.Duration.Round(time.Millisecond))),
	}
	b.WriteString(reportBoxStyle.Render(strings.Join(counts, "\n")))
	b.WriteString("\n")

	if s.SnapshotEmpty {
		b.WriteString(warnStyle.Render("! Empty offer list: deletions and updates were skipped"))
		b.WriteString("\n")
	}

	for _, name := range s.Created {
		b.WriteString(createdStyle.Render("  + " + name))
		b.WriteString("\n")
	}
	for _, change := range s.Updated {
		b.WriteString(updatedStyle.Render(fmt.Sprintf("  ~ %s: %s", change.Name, change.Diff)))
		b.WriteString("\n")
	}
	for _, name := range s.Deleted {
		b.WriteString(deletedStyle.Render("  - " + name))
		b.WriteString("\n")
	}

	return b.String()
}

// RenderBackfill renders the backfill pass summary.
func RenderBackfill(s *models.BackfillSummary) string {
	var b strings.Builder

	b.WriteString(reportTitleStyle.Render("Backfill pass"))
	b.WriteString("\n")
	b.WriteString(countLabelStyle.Render(
		fmt.Sprintf("checked %d, filled %d, errors %d", s.Checked, len(s.Filled), s.Errors)))
	b.WriteString("\n")

	for _, name := range s.Filled {
		b.WriteString(createdStyle.Render("  + " + name))
		b.WriteString("\n")
	}

	return b.String()
}
