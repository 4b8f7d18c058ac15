// Package tui runs the stacker in a terminal with Bubble Tea: the tick
// loop, key mapping, the record browser and the SSH front-end.
package tui

import (
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// TickMsg is sent to trigger a game simulation tick. Gen identifies the
// model that asked for it, so ticks of a finished game are dropped.
type TickMsg struct {
	Time time.Time
	Gen  uint64
}

var generations atomic.Uint64

func nextGen() uint64 {
	return generations.Add(1)
}

// tickCmd returns a Bubble Tea command that sends tick messages at the specified rate.
func tickCmd(tickRate int, gen uint64) tea.Cmd {
	interval := time.Second / time.Duration(max(tickRate, 1))
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return TickMsg{Time: t, Gen: gen}
	})
}
