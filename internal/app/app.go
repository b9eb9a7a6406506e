// Package app implements the gitix terminal UI on top of the git service.
package app

import (
	"context"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/neontowel/gitix/internal/app/screen"
	"github.com/neontowel/gitix/internal/app/services"
	"github.com/neontowel/gitix/internal/config"
	"github.com/neontowel/gitix/internal/git"
	log "github.com/neontowel/gitix/internal/log"
	"github.com/neontowel/gitix/internal/models"
	"github.com/neontowel/gitix/internal/theme"
)

// Notice severities.
const (
	severityInfo  = "info"
	severityWarn  = "warning"
	severityError = "error"
)

// maxCommitHistory bounds the commit messages offered by the prompt.
const maxCommitHistory = 20

// Model is the bubbletea model of the status view.
type Model struct {
	config *config.AppConfig
	svc    *git.Service
	theme  *theme.Theme
	ctx    context.Context
	cancel context.CancelFunc

	table   table.Model
	spinner spinner.Model
	screen  screen.Screen
	watch   *services.GitWatchService

	records       []models.FileStatusRecord
	remote        models.RemoteStatus
	overview      *models.RepoOverview
	ops           []models.SyncOperation
	statusErr     error
	commitHistory []string

	// busy is set while an engine call runs; at most one is in flight.
	busy          bool
	busyLabel     string
	pendingReload bool

	notice      string
	noticeLevel string

	width    int
	height   int
	quitting bool
}

// NewModel creates the model for svc. cfg may be nil.
func NewModel(cfg *config.AppConfig, svc *git.Service) *Model {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	ctx, cancel := context.WithCancel(context.Background())
	thm := theme.GetTheme(cfg.Theme)

	t := table.New(
		table.WithColumns(statusColumns(80, cfg.ShowIcons)),
		table.WithFocused(true),
		table.WithHeight(10),
	)
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(thm.BorderDim).
		BorderBottom(true).
		Foreground(thm.MutedFg).
		Bold(true)
	s.Cell = s.Cell.Foreground(thm.TextFg)
	s.Selected = s.Selected.
		Foreground(thm.AccentFg).
		Background(thm.Accent).
		Bold(true)
	t.SetStyles(s)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(thm.Accent)

	return &Model{
		config:  cfg,
		svc:     svc,
		theme:   thm,
		ctx:     ctx,
		cancel:  cancel,
		table:   t,
		spinner: sp,
		remote:  svc.RemoteStatus(),
		width:   80,
		height:  24,
	}
}

// Init loads the status and starts the watcher.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		m.reloadStatus(),
		m.spinner.Tick,
		m.startGitWatcher(),
	)
}

// Update routes messages to their handlers.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.setWindowSize(msg.Width, msg.Height)
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if m.screen != nil {
			return m.handleScreenKey(msg)
		}
		return m.handleKey(msg)

	case statusLoadedMsg:
		return m.handleStatusLoaded(msg)

	case opDoneMsg:
		return m.handleOpDone(msg)

	case gitDirChangedMsg:
		return m.handleGitDirChanged()

	case trailingReloadMsg:
		return m.handleTrailingReload()
	}
	return m, nil
}

// View renders the whole screen.
func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	if m.screen != nil {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, m.screen.View())
	}
	layout := m.computeLayout()
	m.applyLayout(layout)

	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(layout),
		m.renderStatusPane(layout),
		m.renderLogPane(layout),
		m.renderFooter(layout),
	)
}

// Records returns the status list currently displayed.
func (m *Model) Records() []models.FileStatusRecord {
	return m.records
}

// Close releases the watcher. It is safe to call more than once.
func (m *Model) Close() {
	m.stopGitWatcher()
	m.cancel()
}

func (m *Model) debugf(format string, args ...any) {
	log.Printf(format, args...)
}

func (m *Model) setNotice(level, text string) {
	m.noticeLevel = level
	m.notice = text
}

func (m *Model) selectedRecord() (models.FileStatusRecord, bool) {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.records) {
		return models.FileStatusRecord{}, false
	}
	return m.records[idx], true
}

func (m *Model) rememberCommitMessage(message string) {
	history := []string{message}
	for _, h := range m.commitHistory {
		if h != message {
			history = append(history, h)
		}
	}
	if len(history) > maxCommitHistory {
		history = history[:maxCommitHistory]
	}
	m.commitHistory = history
}
