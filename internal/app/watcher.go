package app

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/neontowel/gitix/internal/app/services"
)

func (m *Model) startGitWatcher() tea.Cmd {
	if !m.config.AutoRefresh {
		return nil
	}
	if m.watch != nil && m.watch.Started {
		return nil
	}
	if m.watch == nil {
		repo := m.svc.Repo()
		m.watch = services.NewGitWatchService(repo.GitDir(), repo.Root, m.config.RefreshDebounce, m.debugf)
	}
	started, err := m.watch.Start()
	if err != nil {
		m.setNotice(severityWarn, "Auto refresh disabled: "+err.Error())
		return nil
	}
	if !started {
		return nil
	}
	return m.waitForGitWatchEvent()
}

func (m *Model) stopGitWatcher() {
	if m.watch == nil || !m.watch.Started {
		return
	}
	m.watch.Stop()
}

func (m *Model) waitForGitWatchEvent() tea.Cmd {
	if m.watch == nil {
		return nil
	}
	events := m.watch.NextEvent()
	if events == nil {
		return nil
	}
	done := m.watch.Done
	return func() tea.Msg {
		select {
		case <-events:
			return gitDirChangedMsg{}
		case <-done:
			return nil
		}
	}
}

func (m *Model) shouldRefreshGitEvent(now time.Time) bool {
	if m.watch == nil {
		return false
	}
	return m.watch.ShouldRefresh(now)
}
