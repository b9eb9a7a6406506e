package app

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/neontowel/gitix/internal/app/screen"
	"github.com/neontowel/gitix/internal/git"
	"github.com/neontowel/gitix/internal/models"
)

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.quitting = true
		m.Close()
		return m, tea.Quit

	case "up", "k", "down", "j", "pgup", "pgdown", "home", "end", "g", "G":
		var cmd tea.Cmd
		m.table, cmd = m.table.Update(msg)
		return m, cmd

	case " ":
		return m, m.toggleSelected()
	case "a":
		return m, m.stageAll()
	case "u":
		return m, m.unstageAll()
	case "c":
		return m, m.showCommitPrompt()
	case "f":
		return m, m.sync("Fetching", m.svc.Fetch)
	case "p":
		label := "Pulling (merge)"
		if m.svc.PullRebase() {
			label = "Pulling (rebase)"
		}
		return m, m.sync(label, m.svc.Pull)
	case "P":
		return m, m.sync("Pushing", m.svc.Push)
	case "r":
		return m, m.sync("Refreshing", m.svc.Refresh)
	}
	return m, nil
}

func (m *Model) handleScreenKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	next, cmd := m.screen.Update(msg)
	m.screen = next
	return m, cmd
}

func (m *Model) toggleSelected() tea.Cmd {
	rec, ok := m.selectedRecord()
	if !ok {
		return nil
	}
	svc, ctx := m.svc, m.ctx
	verb := "Staged"
	if rec.Staged {
		verb = "Unstaged"
	}
	return m.runEngine(verb+" "+rec.Path, func() tea.Msg {
		if err := svc.Toggle(ctx, rec); err != nil {
			return opDoneMsg{notice: err.Error(), level: severityError}
		}
		return opDoneMsg{notice: fmt.Sprintf("%s %s", verb, rec.Path), level: severityInfo}
	})
}

func (m *Model) stageAll() tea.Cmd {
	svc, ctx := m.svc, m.ctx
	return m.runEngine("Staging all", func() tea.Msg {
		return bulkDone("Staged", func() (git.BulkResult, error) { return svc.StageAll(ctx) })
	})
}

func (m *Model) unstageAll() tea.Cmd {
	svc, ctx := m.svc, m.ctx
	return m.runEngine("Unstaging all", func() tea.Msg {
		return bulkDone("Unstaged", func() (git.BulkResult, error) { return svc.UnstageAll(ctx) })
	})
}

func bulkDone(verb string, run func() (git.BulkResult, error)) opDoneMsg {
	result, err := run()
	switch {
	case err != nil:
		return opDoneMsg{notice: fmt.Sprintf("%s nothing: %v", verb, err), level: severityError}
	case result.Err() != nil:
		return opDoneMsg{notice: result.Summary(verb), level: severityWarn}
	default:
		return opDoneMsg{notice: result.Summary(verb), level: severityInfo}
	}
}

func (m *Model) showCommitPrompt() tea.Cmd {
	if m.busy {
		m.setNotice(severityWarn, fmt.Sprintf("Busy: %s", m.busyLabel))
		return nil
	}
	if !git.HasStaged(m.records) {
		m.setNotice(severityWarn, "Nothing staged to commit")
		return nil
	}
	prompt := screen.NewInputScreen("Commit message", "Describe the staged changes", m.theme)
	prompt.History = m.commitHistory
	prompt.Templates = screen.ConventionalCommitPrefixes
	prompt.Validate = func(value string) string {
		if strings.TrimSpace(value) == "" {
			return "Commit message must not be empty"
		}
		return ""
	}
	prompt.OnSubmit = func(value string) tea.Cmd {
		m.rememberCommitMessage(strings.TrimSpace(value))
		svc, ctx := m.svc, m.ctx
		return m.runEngine("Committing", func() tea.Msg {
			return syncOp(svc.Commit(ctx, value))
		})
	}
	m.screen = prompt
	return nil
}

func (m *Model) sync(label string, run func(context.Context) models.SyncOperation) tea.Cmd {
	ctx := m.ctx
	return m.runEngine(label, func() tea.Msg {
		return syncOp(run(ctx))
	})
}
