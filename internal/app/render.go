package app

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/muesli/reflow/truncate"
	"github.com/muesli/reflow/wrap"

	"github.com/neontowel/gitix/internal/models"
)

// updateTable rebuilds the rows from the current records and keeps the
// cursor on the same path when it still exists.
func (m *Model) updateTable() {
	var selected string
	if rec, ok := m.selectedRecord(); ok {
		selected = rec.Path
	}

	rows := make([]table.Row, 0, len(m.records))
	cursor := 0
	for i, rec := range m.records {
		rows = append(rows, m.statusRow(rec))
		if rec.Path == selected {
			cursor = i
		}
	}
	m.table.SetRows(rows)
	if len(rows) > 0 {
		m.table.SetCursor(cursor)
	}
}

func (m *Model) statusRow(rec models.FileStatusRecord) table.Row {
	marker := " "
	if rec.Staged {
		marker = "S"
		if m.config.ShowIcons {
			marker = "●"
		}
	} else if m.config.ShowIcons {
		marker = "○"
	}

	name := rec.DisplayPath()
	if m.config.ShowIcons {
		if icon := deviconForPath(rec.Path); icon != "" {
			name = icon + " " + name
		}
	}
	kind := rec.Kind.Symbol() + " " + rec.Kind.Description()
	return table.Row{marker, name, kind, rec.FormatSize()}
}

func (m *Model) renderHeader(layout layoutDims) string {
	style := lipgloss.NewStyle().
		Background(m.theme.AccentDim).
		Foreground(m.theme.TextFg).
		Bold(true).
		Width(layout.width).
		Padding(0, 1)

	parts := []string{"gitix", filepath.Base(m.svc.Repo().Root)}
	if m.remote.Branch != "" {
		parts = append(parts, m.remote.Summary())
	}
	if m.remote.Name != "" {
		remote := m.remote.Name
		if m.remote.LastFetch != nil {
			remote += " fetched " + humanize.Time(*m.remote.LastFetch)
		} else {
			remote += " never fetched"
		}
		parts = append(parts, remote)
	}
	if m.overview != nil {
		parts = append(parts, m.overview.Summary())
	}
	return style.Render(truncate.StringWithTail(strings.Join(parts, "  •  "), uint(maxInt(layout.width-2, 1)), "…"))
}

func (m *Model) renderStatusPane(layout layoutDims) string {
	title := m.renderPaneTitle("Status", fmt.Sprintf("%d file(s), %d staged", len(m.records), stagedCount(m.records)))

	var body string
	switch {
	case m.statusErr != nil && len(m.records) == 0:
		body = lipgloss.NewStyle().Foreground(m.theme.ErrorFg).
			Render(wrap.String(m.statusErr.Error(), layout.innerWidth))
	case len(m.records) == 0:
		body = lipgloss.NewStyle().Foreground(m.theme.MutedFg).Render("Working tree clean")
	default:
		body = m.table.View()
	}
	content := lipgloss.JoinVertical(lipgloss.Left, title, body)
	return m.paneStyle().
		Width(layout.width - 2).
		Height(layout.tableHeight + 1).
		Render(content)
}

func (m *Model) renderLogPane(layout layoutDims) string {
	title := m.renderPaneTitle("Operations", fmt.Sprintf("%d recent", len(m.ops)))

	lines := make([]string, 0, layout.logHeight)
	muted := lipgloss.NewStyle().Foreground(m.theme.MutedFg)
	for _, op := range m.ops {
		iconStyle := lipgloss.NewStyle().Foreground(m.theme.SuccessFg)
		if !op.Succeeded() {
			iconStyle = iconStyle.Foreground(m.theme.ErrorFg)
		}
		prefix := fmt.Sprintf("%s %s %-7s ", muted.Render(op.Timestamp.Format("15:04:05")), iconStyle.Render(outcomeIcon(op.Outcome)), op.Kind)
		wrapped := wrap.String(op.Message, maxInt(layout.innerWidth-lipgloss.Width(prefix), 10))
		for i, line := range strings.Split(wrapped, "\n") {
			if i > 0 {
				prefix = strings.Repeat(" ", lipgloss.Width(prefix))
			}
			lines = append(lines, prefix+line)
		}
		if len(lines) >= layout.logHeight {
			break
		}
	}
	if len(lines) > layout.logHeight {
		lines = lines[:layout.logHeight]
	}
	if len(lines) == 0 {
		lines = append(lines, muted.Render("No sync operations yet"))
	}

	content := lipgloss.JoinVertical(lipgloss.Left, title, strings.Join(lines, "\n"))
	return m.paneStyle().
		Width(layout.width - 2).
		Height(layout.logHeight + 1).
		Render(content)
}

func (m *Model) renderFooter(layout layoutDims) string {
	footerStyle := lipgloss.NewStyle().
		Foreground(m.theme.TextFg).
		Background(m.theme.BorderDim).
		Padding(0, 1)

	pull := "Pull (merge)"
	if m.svc.PullRebase() {
		pull = "Pull (rebase)"
	}
	hints := []string{
		m.renderKeyHint("space", "Stage/Unstage"),
		m.renderKeyHint("a", "Stage all"),
		m.renderKeyHint("u", "Unstage all"),
		m.renderKeyHint("c", "Commit"),
		m.renderKeyHint("f", "Fetch"),
		m.renderKeyHint("p", pull),
		m.renderKeyHint("P", "Push"),
		m.renderKeyHint("r", "Refresh"),
		m.renderKeyHint("q", "Quit"),
	}
	hintLine := footerStyle.Width(layout.width).Render(strings.Join(hints, "  "))

	var status string
	switch {
	case m.busy:
		status = fmt.Sprintf("%s %s", m.spinner.View(), m.busyLabel)
	case m.notice != "":
		style := lipgloss.NewStyle().Foreground(m.theme.SuccessFg)
		switch m.noticeLevel {
		case severityError:
			style = style.Foreground(m.theme.ErrorFg)
		case severityWarn:
			style = style.Foreground(m.theme.WarnFg)
		}
		status = style.Render(m.notice)
	}
	statusLine := lipgloss.NewStyle().Width(layout.width).Padding(0, 1).
		Render(truncate.StringWithTail(status, uint(maxInt(layout.width-2, 1)), "…"))
	return lipgloss.JoinVertical(lipgloss.Left, statusLine, hintLine)
}

func (m *Model) renderKeyHint(key, label string) string {
	keyStyle := lipgloss.NewStyle().
		Foreground(m.theme.AccentFg).
		Background(m.theme.Accent).
		Bold(true).
		Padding(0, 1)
	labelStyle := lipgloss.NewStyle().Foreground(m.theme.Accent)
	return fmt.Sprintf("%s %s", keyStyle.Render(key), labelStyle.Render(label))
}

func (m *Model) renderPaneTitle(title, detail string) string {
	titleStyle := lipgloss.NewStyle().Foreground(m.theme.TextFg).Bold(true)
	detailStyle := lipgloss.NewStyle().Foreground(m.theme.MutedFg)
	return fmt.Sprintf("%s %s", titleStyle.Render(title), detailStyle.Render(detail))
}

func (m *Model) paneStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(m.theme.Border).
		Padding(0, 1)
}

func stagedCount(records []models.FileStatusRecord) int {
	n := 0
	for _, rec := range records {
		if rec.Staged {
			n++
		}
	}
	return n
}
