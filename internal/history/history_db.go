package history

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/studiowebux/ytsum/internal/lifecycle"
	"github.com/studiowebux/ytsum/internal/migrations"
	"github.com/studiowebux/ytsum/internal/types"
	"github.com/studiowebux/ytsum/internal/videourl"
)

// ErrNotFound is returned by Get when no entry has the requested id
var ErrNotFound = errors.New("history entry not found")

// timestampLayout is how timestamps are stored, in local time
const timestampLayout = "2006-01-02 15:04:05"

type Manager struct {
	db *sql.DB
}

func NewManager(dbPath string) (*Manager, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to history database: %w", err)
	}

	if err := migrations.Run(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &Manager{db: db}, nil
}

// EntryFromState builds the history row for a settled submission.
// It returns false for states that are not settled.
func EntryFromState(s lifecycle.State) (types.HistoryEntry, bool) {
	if !s.Phase.Done() {
		return types.HistoryEntry{}, false
	}

	entry := types.HistoryEntry{
		RequestID:    s.RequestID,
		Timestamp:    s.StartedAt,
		URL:          s.URL,
		VideoID:      videourl.ExtractVideoID(s.URL),
		Phase:        s.Phase.String(),
		Summary:      s.Summary,
		Warning:      s.Warning,
		Source:       s.Source,
		ErrorMessage: s.ErrorMessage,
		DurationMs:   s.Duration.Milliseconds(),
	}
	if s.Phase == lifecycle.Failed {
		entry.ErrorKind = s.ErrorKind.String()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}
	return entry, true
}

// Save stores entry and returns its id
func (m *Manager) Save(entry types.HistoryEntry) (int64, error) {
	query := `
		INSERT INTO history (
			request_id, timestamp, url, video_id, phase, summary, warning,
			source, error, error_kind, duration_ms
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	timestamp := entry.Timestamp
	if timestamp.IsZero() {
		timestamp = time.Now()
	}

	result, err := m.db.Exec(query,
		entry.RequestID,
		timestamp.Local().Format(timestampLayout),
		entry.URL,
		entry.VideoID,
		entry.Phase,
		entry.Summary,
		entry.Warning,
		entry.Source,
		entry.ErrorMessage,
		entry.ErrorKind,
		entry.DurationMs,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to save history entry: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read history entry id: %w", err)
	}
	return id, nil
}

// SaveState records a settled submission. Unsettled states are ignored.
func (m *Manager) SaveState(s lifecycle.State) (int64, error) {
	entry, ok := EntryFromState(s)
	if !ok {
		return 0, nil
	}
	return m.Save(entry)
}

// timestamp is read as text; the driver would otherwise parse DATETIME columns as UTC
const selectColumns = `
	SELECT id, COALESCE(request_id, ''), CAST(timestamp AS TEXT), url, COALESCE(video_id, ''), phase,
	       COALESCE(summary, ''), COALESCE(warning, ''), COALESCE(source, ''),
	       COALESCE(error, ''), COALESCE(error_kind, ''), duration_ms
	FROM history
`

// Load returns entries newest first. limit <= 0 means no limit.
func (m *Manager) Load(limit int) ([]types.HistoryEntry, error) {
	query := selectColumns + " ORDER BY timestamp DESC, id DESC"
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := m.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

// LoadForVideo returns the entries recorded for one video id, newest first.
// limit <= 0 means no limit.
func (m *Manager) LoadForVideo(videoID string, limit int) ([]types.HistoryEntry, error) {
	query := selectColumns + " WHERE video_id = ? ORDER BY timestamp DESC, id DESC"
	args := []any{videoID}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := m.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to load history for video: %w", err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

// Get returns one entry by id
func (m *Manager) Get(id int64) (*types.HistoryEntry, error) {
	rows, err := m.db.Query(selectColumns+" WHERE id = ?", id)
	if err != nil {
		return nil, fmt.Errorf("failed to load history entry: %w", err)
	}
	defer rows.Close()

	entries, err := scanEntries(rows)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	return &entries[0], nil
}

func scanEntries(rows *sql.Rows) ([]types.HistoryEntry, error) {
	var entries []types.HistoryEntry

	for rows.Next() {
		var entry types.HistoryEntry
		var timestamp string

		err := rows.Scan(
			&entry.ID,
			&entry.RequestID,
			&timestamp,
			&entry.URL,
			&entry.VideoID,
			&entry.Phase,
			&entry.Summary,
			&entry.Warning,
			&entry.Source,
			&entry.ErrorMessage,
			&entry.ErrorKind,
			&entry.DurationMs,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan history entry: %w", err)
		}

		entry.Timestamp = parseTimestamp(timestamp)
		entries = append(entries, entry)
	}

	return entries, rows.Err()
}

// parseTimestamp reads the stored local time, accepting RFC3339 as written by older builds
func parseTimestamp(value string) time.Time {
	if t, err := time.ParseInLocation(timestampLayout, value, time.Local); err == nil {
		return t
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t
	}
	return time.Time{}
}

func (m *Manager) Clear() error {
	_, err := m.db.Exec("DELETE FROM history")
	if err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	return nil
}

func (m *Manager) Delete(id int64) error {
	result, err := m.db.Exec("DELETE FROM history WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete history entry: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	return nil
}

func (m *Manager) GetCount() (int, error) {
	var count int
	err := m.db.QueryRow("SELECT COUNT(*) FROM history").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get history count: %w", err)
	}
	return count, nil
}

func (m *Manager) Close() error {
	if m.db != nil {
		return m.db.Close()
	}
	return nil
}
