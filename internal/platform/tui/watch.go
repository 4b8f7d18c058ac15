package tui

import (
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tui-stacker/internal/core"
	"github.com/vovakirdan/tui-stacker/internal/registry"
	"github.com/vovakirdan/tui-stacker/internal/storage"
)

// OpenWatch loads the stored record id (or a unique prefix of it) into a
// model that reviews it with the game mode it was played in.
func OpenWatch(store *storage.Store, logger *log.Logger, cfg core.RuntimeConfig, id string) (Model, error) {
	if store == nil {
		return Model{}, fmt.Errorf("tui: no record store")
	}
	full, err := store.ResolveRecordID(id)
	if err != nil {
		return Model{}, err
	}
	entry, err := store.LoadRecord(full)
	if err != nil {
		return Model{}, err
	}
	rec, h, err := entry.Decode()
	if err != nil {
		return Model{}, err
	}

	game, err := registry.Create(h.Game)
	if err != nil {
		return Model{}, fmt.Errorf("tui: record %s: %w", full, err)
	}
	if _, ok := game.(loader); !ok {
		return Model{}, fmt.Errorf("tui: game %q cannot review records", h.Game)
	}
	return NewWatchModel(game, store, logger, cfg, full, rec, h), nil
}
