package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tui-stacker/internal/config"
	"github.com/vovakirdan/tui-stacker/internal/core"
	"github.com/vovakirdan/tui-stacker/internal/registry"
	"github.com/vovakirdan/tui-stacker/internal/stacker/replay"
	"github.com/vovakirdan/tui-stacker/internal/storage"
)

// recordable is implemented by games that keep a replayable record.
type recordable interface {
	Record() *replay.CompleteRecord
	Header() replay.Header
	Revision() int
}

// loader is implemented by games that can review a stored record.
type loader interface {
	LoadRecord(rec *replay.CompleteRecord, h replay.Header, cfg core.RuntimeConfig)
}

// helper is implemented by games that describe their key bindings.
type helper interface {
	Help() string
}

var helpStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

// Model is the Bubble Tea model for running a game.
type Model struct {
	game       registry.Game
	screen     *core.Screen
	store      *storage.Store
	logger     *log.Logger
	config     core.RuntimeConfig
	keyMapper  *KeyMapper
	gen        uint64
	inputFrame core.InputFrame
	gameState  core.GameState

	watch    *replay.CompleteRecord // stored record to review instead of a new round
	header   replay.Header
	recordID string // id of the stored record for the current round
	savedRev int    // game revision last written to storage; -1 until a loaded record is seen

	embedded   bool // running inside a SessionModel
	quitting   bool
	backToMenu bool
}

// NewModel creates a new Bubble Tea model for the given game.
func NewModel(game registry.Game, store *storage.Store, logger *log.Logger, cfg core.RuntimeConfig) Model {
	if cfg.Seed == 0 {
		cfg.Seed = newSeed()
	}
	if logger == nil {
		logger = discardLogger()
	}

	return Model{
		game:       game,
		screen:     core.NewScreen(cfg.ScreenW, max(cfg.ScreenH-1, 1)),
		store:      store,
		logger:     logger,
		config:     cfg,
		keyMapper:  NewKeyMapper(),
		gen:        nextGen(),
		inputFrame: core.NewInputFrame(),
	}
}

// NewWatchModel creates a model that reviews the stored record id.
// Branches played from it update the same stored record.
func NewWatchModel(game registry.Game, store *storage.Store, logger *log.Logger, cfg core.RuntimeConfig, id string, rec *replay.CompleteRecord, h replay.Header) Model {
	m := NewModel(game, store, logger, cfg)
	m.watch = rec
	m.header = h
	m.recordID = id
	m.savedRev = -1
	return m
}

func newSeed() uint64 {
	return uint64(time.Now().UnixNano())
}

// Init initializes the model and starts the game.
func (m Model) Init() tea.Cmd {
	l, ok := m.game.(loader)
	if m.watch != nil && ok {
		l.LoadRecord(m.watch, m.header, m.config)
	} else {
		m.game.Reset(m.config)
	}
	return tickCmd(m.config.TickRate, m.gen)
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.config.ScreenW = msg.Width
		m.config.ScreenH = msg.Height
		m.screen.Resize(msg.Width, max(msg.Height-1, 1))
		return m, nil

	case TickMsg:
		if msg.Gen != m.gen {
			return m, nil
		}
		return m.handleTick()
	}

	return m, nil
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+s" {
		m.saveScreenshot()
		return m, nil
	}

	action, isQuit := m.keyMapper.MapKey(msg)
	if isQuit {
		m.quitting = true
		return m, tea.Quit
	}

	switch action {
	case core.ActionNone:
	case core.ActionBack:
		if m.gameState.GameOver || m.gameState.Paused {
			m.backToMenu = true
			if !m.embedded {
				return m, tea.Quit
			}
		}
	case core.ActionRestart:
		if m.gameState.GameOver {
			m.inputFrame.Set(action)
		}
	default:
		m.inputFrame.Set(action)
	}

	return m, nil
}

// handleTick processes simulation ticks.
func (m Model) handleTick() (tea.Model, tea.Cmd) {
	if m.backToMenu {
		return m, nil
	}

	if m.inputFrame.Has(core.ActionRestart) && m.gameState.GameOver {
		m.config.Seed = newSeed()
		m.watch = nil
		m.recordID = ""
		m.savedRev = 0
		m.game.Reset(m.config)
		m.gameState = m.game.State()
		m.inputFrame.Clear()
		return m, tickCmd(m.config.TickRate, m.gen)
	}

	result := m.game.Step(m.inputFrame)
	m.gameState = result.State

	if m.gameState.GameOver {
		m.persist()
	}

	m.inputFrame.Clear()
	return m, tickCmd(m.config.TickRate, m.gen)
}

// persist stores the score and the record once per finished timeline.
// A new branch of an already stored record updates it in place.
func (m *Model) persist() {
	r, ok := m.game.(recordable)
	if !ok {
		return
	}
	rev := r.Revision()
	if m.savedRev < 0 {
		// A loaded record is already stored as it is.
		m.savedRev = rev
		return
	}
	if rev == m.savedRev || m.store == nil {
		m.savedRev = rev
		return
	}
	m.savedRev = rev

	h := r.Header()
	h.CreatedAt = time.Now()
	if h.Score > 0 {
		if _, err := m.store.SaveScore(m.game.ID(), h.Score); err != nil {
			m.logger.Error("save score", "game", m.game.ID(), "err", err)
		}
	}

	rec := r.Record()
	if rec == nil || rec.LastFrame() == 0 {
		return
	}
	entry, err := storage.NewRecordEntry(rec, h)
	if err != nil {
		m.logger.Error("encode record", "game", h.Game, "err", err)
		return
	}

	if m.recordID != "" {
		if err := m.store.UpdateRecord(m.recordID, entry); err != nil {
			m.logger.Error("update record", "id", m.recordID, "err", err)
			return
		}
		m.logger.Info("record updated", "id", m.recordID, "segments", entry.Header.Segments)
		return
	}
	id, err := m.store.SaveRecord(entry)
	if err != nil {
		m.logger.Error("save record", "game", h.Game, "err", err)
		return
	}
	m.recordID = id
	m.logger.Info("record saved", "id", id, "game", h.Game, "score", h.Score, "frames", entry.Header.Frames)
}

// saveScreenshot saves the current screen to a file.
func (m *Model) saveScreenshot() {
	m.game.Render(m.screen)

	path := config.UserDir("screenshots")
	if err := os.MkdirAll(path, 0o755); err != nil {
		m.logger.Warn("screenshot", "err", err)
		return
	}

	name := fmt.Sprintf("%s_%s.txt", m.game.ID(), time.Now().Format("20060102_150405"))
	if err := os.WriteFile(filepath.Join(path, name), []byte(m.screen.String()), 0o600); err != nil {
		m.logger.Warn("screenshot", "err", err)
	}
}

// View renders the current state to a string for display.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	m.game.Render(m.screen)
	view := RenderScreen(m.screen)
	if h, ok := m.game.(helper); ok {
		view += "\n" + helpStyle.Render(centerText(h.Help(), m.config.ScreenW))
	}
	return view
}

// RecordID returns the id of the stored record for the current round.
func (m Model) RecordID() string {
	return m.recordID
}

// IsQuitting returns true if user requested to quit entirely.
func (m Model) IsQuitting() bool {
	return m.quitting
}

// BackToMenu returns true if user requested to go back to menu.
func (m Model) BackToMenu() bool {
	return m.backToMenu
}

// Run starts the Bubble Tea program with the given model.
func Run(m Model) error {
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
