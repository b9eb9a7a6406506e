package app

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/neontowel/gitix/internal/models"
)

type (
	statusLoadedMsg struct {
		records  []models.FileStatusRecord
		remote   models.RemoteStatus
		overview *models.RepoOverview
		ops      []models.SyncOperation
		err      error
	}

	// opDoneMsg reports a finished engine call. op is set for calls that
	// land in the operation log.
	opDoneMsg struct {
		op     *models.SyncOperation
		notice string
		level  string
	}

	gitDirChangedMsg  struct{}
	trailingReloadMsg struct{}
)

// runEngine marks the model busy and runs fn off the UI goroutine. The
// returned command is nil when another call is already in flight.
func (m *Model) runEngine(label string, fn func() tea.Msg) tea.Cmd {
	if m.busy {
		m.setNotice(severityWarn, fmt.Sprintf("Busy: %s", m.busyLabel))
		return nil
	}
	m.busy = true
	m.busyLabel = label
	return func() tea.Msg { return fn() }
}

func (m *Model) reloadStatus() tea.Cmd {
	svc := m.svc
	ctx := m.ctx
	return m.runEngine("Loading status", func() tea.Msg {
		records, err := svc.Status(ctx)
		remote := svc.UpdateRemoteStatus(ctx)
		msg := statusLoadedMsg{records: records, remote: remote, ops: svc.Operations(), err: err}
		if ov, ovErr := svc.Overview(ctx); ovErr == nil {
			msg.overview = &ov
		}
		return msg
	})
}

func syncOp(op models.SyncOperation) opDoneMsg {
	level := severityInfo
	if !op.Succeeded() {
		level = severityError
	}
	return opDoneMsg{op: &op, notice: op.Message, level: level}
}

func (m *Model) handleStatusLoaded(msg statusLoadedMsg) (tea.Model, tea.Cmd) {
	m.busy = false
	m.busyLabel = ""
	m.statusErr = msg.err
	if msg.err != nil {
		m.setNotice(severityError, fmt.Sprintf("Status failed: %v", msg.err))
	} else {
		m.records = msg.records
	}
	m.remote = msg.remote
	m.overview = msg.overview
	m.ops = msg.ops
	m.updateTable()

	if m.pendingReload {
		m.pendingReload = false
		return m, m.reloadStatus()
	}
	return m, nil
}

// handleOpDone clears the busy flag and reloads the status, since every
// engine call may have changed it.
func (m *Model) handleOpDone(msg opDoneMsg) (tea.Model, tea.Cmd) {
	m.busy = false
	m.busyLabel = ""
	m.pendingReload = false
	if msg.notice != "" {
		m.setNotice(msg.level, msg.notice)
	}
	if msg.op != nil {
		m.debugf("%s: %s (%s)", msg.op.Kind, msg.op.Message, msg.op.Outcome)
	}
	return m, m.reloadStatus()
}

func (m *Model) handleGitDirChanged() (tea.Model, tea.Cmd) {
	if m.watch == nil {
		return m, nil
	}
	m.watch.ResetWaiting()
	next := m.waitForGitWatchEvent()
	if !m.shouldRefreshGitEvent(time.Now()) {
		// Catch the tail of a burst once the window has passed.
		return m, tea.Batch(next, tea.Tick(m.watch.Debounce, func(time.Time) tea.Msg {
			return trailingReloadMsg{}
		}))
	}
	return m, tea.Batch(m.requestReload(), next)
}

func (m *Model) handleTrailingReload() (tea.Model, tea.Cmd) {
	if !m.shouldRefreshGitEvent(time.Now()) {
		return m, nil
	}
	return m, m.requestReload()
}

// requestReload reloads now, or after the running engine call returns.
func (m *Model) requestReload() tea.Cmd {
	if m.busy {
		m.pendingReload = true
		return nil
	}
	return m.reloadStatus()
}
