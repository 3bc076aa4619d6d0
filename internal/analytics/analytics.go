package analytics

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/studiowebux/ytsum/internal/config"
	"github.com/studiowebux/ytsum/internal/migrations"
)

// statsTTL bounds how long per-video stats are served from cache
const statsTTL = 30 * time.Second

// Overview aggregates every recorded submission
type Overview struct {
	TotalCalls    int            `json:"totalCalls" yaml:"totalCalls"`
	SuccessCount  int            `json:"successCount" yaml:"successCount"`
	ErrorCount    int            `json:"errorCount" yaml:"errorCount"`
	WarningCount  int            `json:"warningCount" yaml:"warningCount"`
	Videos        int            `json:"videos" yaml:"videos"`
	AvgDurationMs float64        `json:"avgDurationMs" yaml:"avgDurationMs"`
	MaxDurationMs int64          `json:"maxDurationMs" yaml:"maxDurationMs"`
	ErrorKinds    map[string]int `json:"errorKinds" yaml:"errorKinds"`
	Sources       map[string]int `json:"sources" yaml:"sources"`
}

// SuccessRate is the share of settled submissions that produced a summary
func (o Overview) SuccessRate() float64 {
	if o.TotalCalls == 0 {
		return 0
	}
	return float64(o.SuccessCount) / float64(o.TotalCalls)
}

// Stats aggregates the submissions of one video
type Stats struct {
	VideoID       string    `json:"videoId" yaml:"videoId"`
	URL           string    `json:"url" yaml:"url"` // most recent URL used for the video
	TotalCalls    int       `json:"totalCalls" yaml:"totalCalls"`
	SuccessCount  int       `json:"successCount" yaml:"successCount"`
	ErrorCount    int       `json:"errorCount" yaml:"errorCount"`
	AvgDurationMs float64   `json:"avgDurationMs" yaml:"avgDurationMs"`
	MinDurationMs int64     `json:"minDurationMs" yaml:"minDurationMs"`
	MaxDurationMs int64     `json:"maxDurationMs" yaml:"maxDurationMs"`
	LastCalled    time.Time `json:"lastCalled" yaml:"lastCalled"`
}

// Manager computes statistics over the history database
type Manager struct {
	db    *sql.DB
	cache *statsCache
}

func NewManager(dbPath string) (*Manager, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, config.DirPermissions); err != nil {
		return nil, fmt.Errorf("failed to create analytics directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open analytics database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to analytics database: %w", err)
	}

	// Run database migrations
	if err := migrations.Run(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &Manager{db: db, cache: newStatsCache(statsTTL)}, nil
}

// GetOverview aggregates all recorded submissions
func (m *Manager) GetOverview() (Overview, error) {
	o := Overview{
		ErrorKinds: make(map[string]int),
		Sources:    make(map[string]int),
	}

	query := `
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN phase = 'succeeded' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN phase = 'failed' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN warning IS NOT NULL AND warning != '' THEN 1 ELSE 0 END), 0),
			COUNT(DISTINCT video_id),
			COALESCE(AVG(duration_ms), 0),
			COALESCE(MAX(duration_ms), 0)
		FROM history
	`
	err := m.db.QueryRow(query).Scan(
		&o.TotalCalls,
		&o.SuccessCount,
		&o.ErrorCount,
		&o.WarningCount,
		&o.Videos,
		&o.AvgDurationMs,
		&o.MaxDurationMs,
	)
	if err != nil {
		return o, fmt.Errorf("failed to query overview: %w", err)
	}

	if err := m.countBy("error_kind", "phase = 'failed'", o.ErrorKinds); err != nil {
		return o, err
	}
	if err := m.countBy("source", "phase = 'succeeded'", o.Sources); err != nil {
		return o, err
	}

	return o, nil
}

// countBy fills counts with the number of rows per value of column
func (m *Manager) countBy(column, where string, counts map[string]int) error {
	query := fmt.Sprintf(`
		SELECT COALESCE(%[1]s, ''), COUNT(*)
		FROM history
		WHERE %[2]s
		GROUP BY COALESCE(%[1]s, '')
	`, column, where)

	rows, err := m.db.Query(query)
	if err != nil {
		return fmt.Errorf("failed to count by %s: %w", column, err)
	}
	defer rows.Close()

	for rows.Next() {
		var value string
		var count int
		if err := rows.Scan(&value, &count); err != nil {
			return fmt.Errorf("failed to scan %s count: %w", column, err)
		}
		if value == "" {
			value = "unknown"
		}
		counts[value] += count
	}
	return rows.Err()
}

// GetStatsPerVideo returns per-video statistics, most recently used first
func (m *Manager) GetStatsPerVideo() ([]Stats, error) {
	if cached, ok := m.cache.get(); ok {
		return cached, nil
	}

	query := `
		SELECT
			video_id,
			(SELECT h2.url FROM history h2 WHERE h2.video_id = h.video_id ORDER BY h2.timestamp DESC, h2.id DESC LIMIT 1),
			COUNT(*),
			SUM(CASE WHEN phase = 'succeeded' THEN 1 ELSE 0 END),
			SUM(CASE WHEN phase = 'failed' THEN 1 ELSE 0 END),
			AVG(duration_ms),
			MIN(duration_ms),
			MAX(duration_ms),
			MAX(timestamp)
		FROM history h
		GROUP BY video_id
		ORDER BY MAX(timestamp) DESC
	`

	rows, err := m.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query video stats: %w", err)
	}
	defer rows.Close()

	var stats []Stats
	for rows.Next() {
		var s Stats
		var lastCalled string
		if err := rows.Scan(
			&s.VideoID,
			&s.URL,
			&s.TotalCalls,
			&s.SuccessCount,
			&s.ErrorCount,
			&s.AvgDurationMs,
			&s.MinDurationMs,
			&s.MaxDurationMs,
			&lastCalled,
		); err != nil {
			return nil, fmt.Errorf("failed to scan video stats: %w", err)
		}
		s.LastCalled = parseTimestamp(lastCalled)
		stats = append(stats, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating video stats: %w", err)
	}

	m.cache.set(stats)
	return stats, nil
}

// parseTimestamp reads a stored timestamp in local time
func parseTimestamp(s string) time.Time {
	for _, layout := range []string{"2006-01-02 15:04:05", time.RFC3339Nano, time.RFC3339} {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t
		}
	}
	return time.Time{}
}

func (m *Manager) Close() error {
	return m.db.Close()
}
