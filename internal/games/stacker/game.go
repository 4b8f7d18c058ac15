// Package stacker runs a falling-block board as a registry game. A round
// goes Ready -> Playing -> PostGame. In PostGame the finished round is
// replayed, and any movement input branches a new timeline from the frame
// on screen.
package stacker

import (
	"fmt"
	"time"

	"github.com/vovakirdan/tui-stacker/internal/config"
	"github.com/vovakirdan/tui-stacker/internal/core"
	"github.com/vovakirdan/tui-stacker/internal/registry"
	"github.com/vovakirdan/tui-stacker/internal/stacker/board"
	"github.com/vovakirdan/tui-stacker/internal/stacker/replay"
	"github.com/vovakirdan/tui-stacker/internal/stacker/tables"
)

// Phase is the round state.
type Phase uint8

const (
	PhaseReady    Phase = iota // first piece spawned, waiting for input
	PhasePlaying               // live play, every tick recorded
	PhasePostGame              // reviewing the record
)

func (p Phase) String() string {
	switch p {
	case PhaseReady:
		return "ready"
	case PhasePlaying:
		return "playing"
	default:
		return "post-game"
	}
}

// Mode is a registered rule set.
type Mode struct {
	ID       string
	Title    string
	LineGoal int  // round ends after this many lines; 0 plays until top out
	Fixed    bool // difficulty never progresses
}

// Modes lists the registered modes.
var Modes = []Mode{
	{ID: "marathon", Title: "Marathon"},
	{ID: "sprint", Title: "Sprint 40L", LineGoal: 40, Fixed: true},
}

// levelTiers is how many display levels the difficulty range spans.
const levelTiers = 15

var (
	configPath       string
	tablesPath       string
	difficultyPreset config.DifficultyPreset
)

// SetConfigPath sets the custom config path for loading.
func SetConfigPath(path string) {
	configPath = path
}

// SetTablesPath overrides the shape and kick tables named in the config.
func SetTablesPath(path string) {
	tablesPath = path
}

// SetDifficultyPreset sets the difficulty preset.
func SetDifficultyPreset(preset string) {
	switch p := config.DifficultyPreset(preset); p {
	case config.DifficultyEasy, config.DifficultyNormal, config.DifficultyHard, config.DifficultyFixed:
		difficultyPreset = p
	default:
		difficultyPreset = "" // Use config default
	}
}

// Game is one stacker session.
type Game struct {
	mode       Mode
	cfg        config.StackerConfig
	tables     board.Tables
	difficulty *config.DifficultyManager
	rt         core.RuntimeConfig
	err        error // config or tables failure; the round cannot start

	board  *board.Board
	phase  Phase
	paused bool
	loaded bool // board was rebuilt from a stored record

	frames   uint64 // Steps since Reset
	segTicks uint64 // Steps since the live segment began

	complete *replay.CompleteRecord
	rec      *replay.Recorder
	player   *replay.Player

	left, right board.Repeater
	lastSeen    map[core.Action]uint64

	score, lines int
	last         board.Result
	lastUpdates  []board.MatrixUpdate
	revision     int
}

// New creates a game in the given mode with the package-level config.
func New(mode Mode) *Game {
	return &Game{mode: mode}
}

// NewWithConfig creates a game with an explicit config and tables.
func NewWithConfig(mode Mode, cfg config.StackerConfig, t board.Tables) *Game {
	g := &Game{mode: mode}
	g.setConfig(cfg, t)
	return g
}

// ID returns the unique identifier for this mode.
func (g *Game) ID() string {
	return g.mode.ID
}

// Title returns the display name for this mode.
func (g *Game) Title() string {
	return g.mode.Title
}

// Mode returns the rule set.
func (g *Game) Mode() Mode {
	return g.mode
}

// Err reports why the game could not be set up, if it could not.
func (g *Game) Err() error {
	return g.err
}

func (g *Game) loadConfig() {
	cfg, err := config.LoadStacker(configPath)
	if err != nil {
		g.err = err
		return
	}
	if difficultyPreset != "" {
		config.ApplyStackerPreset(&cfg, difficultyPreset)
	}
	path := cfg.Tables
	if tablesPath != "" {
		path = tablesPath
	}
	t, err := tables.Resolve(path)
	if err != nil {
		g.err = err
		return
	}
	g.setConfig(cfg, t)
}

// BoardFor returns an empty board to rebuild the record described by h on.
// It uses the geometry stored in h, falling back to the game's config, and
// is nil when the config failed to load.
func (g *Game) BoardFor(h replay.Header) *board.Board {
	if g.difficulty == nil && g.err == nil {
		g.loadConfig()
	}
	if g.err != nil {
		return nil
	}
	bounds := g.bounds()
	if h.Bounds != nil {
		bounds = *h.Bounds
	}
	return board.NewBoard(bounds, board.PieceQueue{}, g.baseSettings())
}

func (g *Game) setConfig(cfg config.StackerConfig, t board.Tables) {
	if g.mode.Fixed {
		cfg.Difficulty.Enabled = false
	}
	g.cfg = cfg
	g.tables = t
	g.difficulty = config.NewDifficultyManager(cfg.Difficulty)
}

func (g *Game) bounds() board.Bounds {
	m := g.cfg.Matrix
	return board.Bounds{
		True:  board.V(m.Width, m.Height),
		Legal: board.V(m.LegalWidth, m.LegalHeight),
		Spawn: board.V(m.SpawnX, m.SpawnY),
	}
}

func (g *Game) baseSettings() board.Settings {
	h := g.cfg.Handling
	return board.Settings{
		SoftDropPower: h.SoftDropPower,
		GravityPower:  h.GravityPower,
		LockDelay:     h.LockDelay,
		InitialDelay:  h.InitialDelay,
		RepeatDelay:   h.RepeatDelay,
	}
}

// Reset starts a fresh round seeded with cfg.Seed.
func (g *Game) Reset(cfg core.RuntimeConfig) {
	if g.difficulty == nil && g.err == nil {
		g.loadConfig()
	}
	if cfg.TickRate <= 0 {
		cfg.TickRate = core.DefaultConfig().TickRate
	}
	g.rt = cfg
	g.clearRound()
	if g.err != nil {
		return
	}

	g.board = board.NewBoard(g.bounds(), board.NewPieceQueue(cfg.Seed, g.cfg.Queue.WindowSize), g.baseSettings())
	g.applyDifficulty()
	g.complete = replay.NewCompleteRecord()
	g.rec = replay.NewRecorder()

	if !g.board.Begin(g.tables) {
		// The spawn point is blocked on an empty matrix: the tables or
		// bounds are unusable. Record the empty round and go straight to
		// review.
		g.rec.Record(0, g.board)
		g.board.Matrix.DrainUpdates()
		g.finish()
		return
	}
	g.rec.Record(0, g.board)
	g.board.Matrix.DrainUpdates()
}

// LoadRecord replaces the round with a stored record and starts reviewing
// it from the first frame.
func (g *Game) LoadRecord(rec *replay.CompleteRecord, h replay.Header, cfg core.RuntimeConfig) {
	if g.difficulty == nil && g.err == nil {
		g.loadConfig()
	}
	if cfg.TickRate <= 0 {
		cfg.TickRate = core.DefaultConfig().TickRate
	}
	cfg.Seed = h.Seed
	g.rt = cfg
	g.clearRound()
	if g.err != nil {
		return
	}

	g.board = g.BoardFor(h)
	g.complete = rec
	g.loaded = true
	g.phase = PhasePostGame
	g.player = replay.NewPlayerAtStart(rec)
	g.player.Seek(g.board, 0)
	g.lastUpdates = append(g.lastUpdates, g.board.Matrix.DrainUpdates()...)
	g.player.Play(g.wallUnits())
}

func (g *Game) clearRound() {
	g.board = nil
	g.phase = PhaseReady
	g.paused = false
	g.loaded = false
	g.frames = 0
	g.segTicks = 0
	g.complete = nil
	g.rec = nil
	g.player = nil
	g.left = board.Repeater{}
	g.right = board.Repeater{}
	g.lastSeen = make(map[core.Action]uint64)
	g.score, g.lines = 0, 0
	g.last = board.Result{}
	g.lastUpdates = g.lastUpdates[:0]
	g.revision = 0
}

// Step advances the game by one tick.
func (g *Game) Step(in core.InputFrame) core.StepResult {
	g.last = board.Result{}
	g.lastUpdates = g.lastUpdates[:0]
	if g.board == nil {
		return core.StepResult{State: g.State()}
	}

	// Handle pause toggle
	if in.Has(core.ActionPause) && g.phase == PhasePlaying {
		g.paused = !g.paused
	}
	if g.paused {
		return core.StepResult{State: g.State()}
	}

	g.frames++
	c := g.controller(in)

	switch g.phase {
	case PhaseReady:
		if !c.AnyActivation() && !c.HardDrop {
			break
		}
		g.phase = PhasePlaying
		g.play(c)
	case PhasePlaying:
		g.play(c)
	case PhasePostGame:
		g.review(in, c)
	}

	return core.StepResult{State: g.State()}
}

// play runs one live tick and records it.
func (g *Game) play(c board.Controller) {
	g.segTicks++
	tick := g.recordTick()

	res := board.Update(g.board, c, g.tables, 1/float64(g.rt.TickRate))
	g.last = res
	g.rec.Record(tick, g.board)
	g.lastUpdates = append(g.lastUpdates, g.board.Matrix.DrainUpdates()...)

	if res.Cleared > 0 {
		points := g.cfg.Scoring.Points(res.Cleared)
		g.score += points
		g.lines += res.Cleared
		g.rec.Mark(tick, res.Cleared, points)
	}
	if res.Locked {
		g.applyDifficulty()
	}

	if g.board.Over || (g.mode.LineGoal > 0 && g.lines >= g.mode.LineGoal) {
		g.finish()
	}
}

// recordTick is the record time of the current live tick.
func (g *Game) recordTick() uint64 {
	elapsed := time.Duration(g.segTicks) * time.Second / time.Duration(g.rt.TickRate)
	return g.rec.BaseTick() + replay.Discretize(elapsed)
}

// wallUnits is the time since Reset in record units.
func (g *Game) wallUnits() uint64 {
	return replay.Discretize(time.Duration(g.frames) * time.Second / time.Duration(g.rt.TickRate))
}

// progress is what difficulty is measured against at the current time.
func (g *Game) progress() config.Progress {
	p := config.Progress{Score: g.score, Lines: g.lines}
	if g.rec != nil {
		p.Ticks = int(g.recordTick())
	} else if g.player != nil {
		p.Ticks = int(g.player.Frame())
	}
	return p
}

// applyDifficulty derives the board settings for the current progress.
func (g *Game) applyDifficulty() {
	p := g.progress()
	s := g.baseSettings()
	s.GravityPower = g.difficulty.Gravity(s.GravityPower, p)
	s.LockDelay = g.difficulty.LockDelay(s.LockDelay, p)
	g.board.Settings = s
}

// finish closes the live segment and starts reviewing the record.
func (g *Game) finish() {
	g.complete.Finalize(g.rec)
	g.rec = nil
	g.player = replay.NewPlayer(g.complete)
	g.phase = PhasePostGame
	g.revision++
}

// Phase returns the round state.
func (g *Game) Phase() Phase {
	return g.phase
}

// Board returns the live board. It must not be modified.
func (g *Game) Board() *board.Board {
	return g.board
}

// Record returns the record of the round, or nil before Reset.
func (g *Game) Record() *replay.CompleteRecord {
	return g.complete
}

// Player returns the replay player, or nil outside PostGame.
func (g *Game) Player() *replay.Player {
	return g.player
}

// Seed returns the piece queue seed of the round.
func (g *Game) Seed() uint64 {
	return g.rt.Seed
}

// Revision increases every time a segment is finalized. The platform
// compares it to decide whether the stored record is stale.
func (g *Game) Revision() int {
	return g.revision
}

// Loaded reports whether the round was loaded from a stored record.
func (g *Game) Loaded() bool {
	return g.loaded
}

// LastResult reports what the last Step did to the board.
func (g *Game) LastResult() board.Result {
	return g.last
}

// LastUpdates returns the matrix cells the last Step changed.
func (g *Game) LastUpdates() []board.MatrixUpdate {
	return g.lastUpdates
}

// Header describes the record for storage.
func (g *Game) Header() replay.Header {
	score, lines := g.score, g.lines
	if g.complete != nil && g.phase == PhasePostGame {
		score, lines = g.complete.Totals(g.complete.LastFrame())
	}
	bounds := g.bounds()
	return replay.Header{Game: g.mode.ID, Seed: g.rt.Seed, Score: score, Lines: lines, Bounds: &bounds}
}

// State returns the current game state.
func (g *Game) State() core.GameState {
	return core.GameState{
		Score:     g.score,
		Lines:     g.lines,
		Level:     g.level(),
		GameOver:  g.phase == PhasePostGame || g.board == nil,
		Paused:    g.paused,
		Replaying: g.phase == PhasePostGame,
	}
}

func (g *Game) level() int {
	if g.difficulty == nil {
		return 1
	}
	return g.difficulty.Tier(g.progress(), levelTiers)
}

// Snapshot captures the game state for determinism tests.
type Snapshot struct {
	Frames   uint64
	Phase    Phase
	Score    int
	Lines    int
	Active   string
	Hold     string
	Next     string
	Filled   int
	Matrix   string
	Items    int
	Segments int
}

// Snapshot returns the current game snapshot.
func (g *Game) Snapshot() Snapshot {
	s := Snapshot{Frames: g.frames, Phase: g.phase, Score: g.score, Lines: g.lines}
	if g.board == nil {
		return s
	}
	if a := g.board.Active; a != nil {
		s.Active = fmt.Sprintf("%v %v %v", a.Kind, a.Position, a.Rotation)
	}
	s.Hold = g.board.Hold.String()
	s.Next = fmt.Sprint(g.board.Queue.Upcoming(g.cfg.Queue.Preview))
	s.Filled = g.board.Matrix.FilledCount()
	s.Matrix = g.board.Matrix.String()
	if g.complete != nil {
		s.Items = g.complete.Len()
		s.Segments = len(g.complete.Segments())
	}
	if g.rec != nil {
		s.Items += g.rec.Len()
	}
	return s
}

func init() {
	for _, m := range Modes {
		registry.Register(m.ID, func() registry.Game {
			return New(m)
		})
	}
}
