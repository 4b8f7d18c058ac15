// Package storage provides SQLite-based persistence for scores and finished
// records. Uses the pure-Go modernc.org/sqlite driver to avoid CGO dependencies.
package storage

import (
	"bytes"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/vovakirdan/tui-stacker/internal/stacker/replay"
)

// ErrNotFound is returned when a record id does not exist.
var ErrNotFound = errors.New("storage: not found")

// Store manages the SQLite database connection.
type Store struct {
	db *sql.DB
}

// ScoreEntry represents a single high score.
type ScoreEntry struct {
	ID        int64
	GameID    string
	Score     int
	CreatedAt time.Time
}

// RecordEntry is one stored record. Data holds the encoded record; the
// header fields are duplicated into columns for listing.
type RecordEntry struct {
	ID        string
	Header    replay.Header
	Data      []byte
	CreatedAt time.Time
}

// NewRecordEntry encodes rec with h into an entry ready to save.
func NewRecordEntry(rec *replay.CompleteRecord, h replay.Header) (RecordEntry, error) {
	var buf bytes.Buffer
	if err := replay.Encode(&buf, rec, h); err != nil {
		return RecordEntry{}, fmt.Errorf("storage: cannot encode record: %w", err)
	}
	// Encode fills in the derived header fields.
	h.Frames = rec.LastFrame()
	h.Segments = len(rec.Segments())
	return RecordEntry{Header: h, Data: buf.Bytes()}, nil
}

// Decode returns the record held by the entry.
func (e RecordEntry) Decode() (*replay.CompleteRecord, replay.Header, error) {
	rec, h, err := replay.Decode(bytes.NewReader(e.Data))
	if err != nil {
		return nil, h, fmt.Errorf("storage: record %s: %w", e.ID, err)
	}
	return rec, h, nil
}

// Open creates or opens a SQLite database at the given path.
// It creates the parent directories if needed and runs migrations.
func Open(dbPath string) (*Store, error) {
	if dbPath != "" && dbPath[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("storage: cannot expand home directory: %w", err)
		}
		dbPath = filepath.Join(home, dbPath[1:])
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: cannot create directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}

	return store, nil
}

// migrate creates the database schema if it doesn't exist.
func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS scores (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			game_id TEXT NOT NULL,
			score INTEGER NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_scores_game_id ON scores(game_id);
		CREATE INDEX IF NOT EXISTS idx_scores_top ON scores(game_id, score DESC);

		CREATE TABLE IF NOT EXISTS records (
			id TEXT PRIMARY KEY,
			game_id TEXT NOT NULL,
			seed INTEGER NOT NULL,
			score INTEGER NOT NULL DEFAULT 0,
			lines INTEGER NOT NULL DEFAULT 0,
			frames INTEGER NOT NULL DEFAULT 0,
			segments INTEGER NOT NULL DEFAULT 1,
			data BLOB NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			seq INTEGER NOT NULL DEFAULT 0
		);
		CREATE INDEX IF NOT EXISTS idx_records_recent ON records(seq DESC);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// parseTime handles both driver representations of a DATETIME column.
func parseTime(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		if parsed, err := time.Parse("2006-01-02 15:04:05", t); err == nil {
			return parsed
		}
	}
	return time.Time{}
}

// SaveScore records a new score for the given game.
// Returns the ID of the inserted row.
func (s *Store) SaveScore(gameID string, score int) (int64, error) {
	result, err := s.db.Exec(
		"INSERT INTO scores (game_id, score) VALUES (?, ?)",
		gameID, score,
	)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot save score: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("storage: cannot get inserted ID: %w", err)
	}

	return id, nil
}

// TopScores retrieves the top N scores for the given game.
// Results are ordered by score descending.
func (s *Store) TopScores(gameID string, limit int) ([]ScoreEntry, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.Query(
		`SELECT id, game_id, score, created_at
		 FROM scores
		 WHERE game_id = ?
		 ORDER BY score DESC
		 LIMIT ?`,
		gameID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query scores: %w", err)
	}
	defer rows.Close()

	var entries []ScoreEntry
	for rows.Next() {
		var e ScoreEntry
		var createdAt any
		if err := rows.Scan(&e.ID, &e.GameID, &e.Score, &createdAt); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		e.CreatedAt = parseTime(createdAt)
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return entries, nil
}

// HighScore returns the highest score for the given game.
// Returns 0 if no scores exist.
func (s *Store) HighScore(gameID string) (int, error) {
	var score sql.NullInt64
	err := s.db.QueryRow(
		"SELECT MAX(score) FROM scores WHERE game_id = ?",
		gameID,
	).Scan(&score)

	if err != nil {
		return 0, fmt.Errorf("storage: cannot query high score: %w", err)
	}

	if !score.Valid {
		return 0, nil
	}

	return int(score.Int64), nil
}

// ClearScores deletes all scores for the given game.
func (s *Store) ClearScores(gameID string) error {
	_, err := s.db.Exec("DELETE FROM scores WHERE game_id = ?", gameID)
	if err != nil {
		return fmt.Errorf("storage: cannot clear scores: %w", err)
	}
	return nil
}

// GameStats contains aggregated statistics for a game.
type GameStats struct {
	GameID     string
	GamesCount int
	HighScore  int
	AvgScore   float64
	TotalScore int64
	LastPlayed time.Time
}

// GetGameStats retrieves aggregated statistics for a specific game.
func (s *Store) GetGameStats(gameID string) (*GameStats, error) {
	stats := &GameStats{GameID: gameID}
	var lastPlayed any

	err := s.db.QueryRow(
		`SELECT COUNT(*), COALESCE(MAX(score), 0), COALESCE(AVG(score), 0), COALESCE(SUM(score), 0), MAX(created_at)
		 FROM scores WHERE game_id = ?`,
		gameID,
	).Scan(&stats.GamesCount, &stats.HighScore, &stats.AvgScore, &stats.TotalScore, &lastPlayed)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot get game stats: %w", err)
	}
	stats.LastPlayed = parseTime(lastPlayed)

	return stats, nil
}

// SaveRecord stores a new record and returns its generated id.
func (s *Store) SaveRecord(e RecordEntry) (string, error) {
	id := uuid.NewString()
	h := e.Header
	_, err := s.db.Exec(
		`INSERT INTO records (id, game_id, seed, score, lines, frames, segments, data, seq)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM records))`,
		id, h.Game, int64(h.Seed), h.Score, h.Lines, int64(h.Frames), h.Segments, e.Data,
	)
	if err != nil {
		return "", fmt.Errorf("storage: cannot save record: %w", err)
	}
	return id, nil
}

// UpdateRecord replaces the stored record with the given id, e.g. after a
// new branch was played.
func (s *Store) UpdateRecord(id string, e RecordEntry) error {
	h := e.Header
	res, err := s.db.Exec(
		`UPDATE records
		 SET score = ?, lines = ?, frames = ?, segments = ?, data = ?
		 WHERE id = ?`,
		h.Score, h.Lines, int64(h.Frames), h.Segments, e.Data, id,
	)
	if err != nil {
		return fmt.Errorf("storage: cannot update record: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("storage: record %s: %w", id, ErrNotFound)
	}
	return nil
}

const recordColumns = `id, game_id, seed, score, lines, frames, segments, created_at`

func scanRecord(scan func(...any) error, withData bool) (RecordEntry, error) {
	var e RecordEntry
	var seed, frames int64
	var createdAt any
	dest := []any{&e.ID, &e.Header.Game, &seed, &e.Header.Score, &e.Header.Lines, &frames, &e.Header.Segments, &createdAt}
	if withData {
		dest = append(dest, &e.Data)
	}
	if err := scan(dest...); err != nil {
		return e, err
	}
	e.Header.Seed = uint64(seed)
	e.Header.Frames = uint64(frames)
	e.CreatedAt = parseTime(createdAt)
	e.Header.CreatedAt = e.CreatedAt
	return e, nil
}

// LoadRecord returns the record with the given id, including its data.
func (s *Store) LoadRecord(id string) (RecordEntry, error) {
	row := s.db.QueryRow(`SELECT `+recordColumns+`, data FROM records WHERE id = ?`, id)
	e, err := scanRecord(row.Scan, true)
	if errors.Is(err, sql.ErrNoRows) {
		return e, fmt.Errorf("storage: record %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return e, fmt.Errorf("storage: cannot load record: %w", err)
	}
	return e, nil
}

// ResolveRecordID expands a unique id prefix, as shown by the record
// browser, to the full record id.
func (s *Store) ResolveRecordID(prefix string) (string, error) {
	if prefix == "" {
		return "", fmt.Errorf("storage: empty record id: %w", ErrNotFound)
	}
	rows, err := s.db.Query(
		`SELECT id FROM records WHERE substr(id, 1, ?) = ? LIMIT 2`,
		len(prefix), prefix,
	)
	if err != nil {
		return "", fmt.Errorf("storage: cannot query records: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return "", fmt.Errorf("storage: cannot scan row: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return "", fmt.Errorf("storage: row iteration error: %w", err)
	}

	switch len(ids) {
	case 0:
		return "", fmt.Errorf("storage: record %s: %w", prefix, ErrNotFound)
	case 1:
		return ids[0], nil
	default:
		return "", fmt.Errorf("storage: record id %s is ambiguous", prefix)
	}
}

// RecentRecords lists the newest records first, without their data.
func (s *Store) RecentRecords(limit int) ([]RecordEntry, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(
		`SELECT `+recordColumns+` FROM records ORDER BY seq DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query records: %w", err)
	}
	defer rows.Close()

	var entries []RecordEntry
	for rows.Next() {
		e, err := scanRecord(rows.Scan, false)
		if err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return entries, nil
}

// DeleteRecord removes the record with the given id.
func (s *Store) DeleteRecord(id string) error {
	res, err := s.db.Exec("DELETE FROM records WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("storage: cannot delete record: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("storage: record %s: %w", id, ErrNotFound)
	}
	return nil
}
