package analytics

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/studiowebux/ytsum/internal/history"
	"github.com/studiowebux/ytsum/internal/types"
)

func seed(t *testing.T) string {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")

	mgr, err := history.NewManager(dbPath)
	if err != nil {
		t.Fatal(err)
	}
	defer mgr.Close()

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.Local)
	entries := []types.HistoryEntry{
		{URL: "https://youtu.be/aaa", VideoID: "aaa", Phase: "succeeded", Summary: "s", Source: "transcript", DurationMs: 1000, Timestamp: base},
		{URL: "https://www.youtube.com/watch?v=aaa", VideoID: "aaa", Phase: "succeeded", Summary: "s", Source: "audio", Warning: "w", DurationMs: 3000, Timestamp: base.Add(time.Hour)},
		{URL: "https://youtu.be/bbb", VideoID: "bbb", Phase: "failed", ErrorMessage: "boom", ErrorKind: "server_error", DurationMs: 200, Timestamp: base.Add(30 * time.Minute)},
		{URL: "https://youtu.be/ccc", VideoID: "ccc", Phase: "failed", ErrorMessage: "slow", ErrorKind: "timeout", DurationMs: 120000, Timestamp: base.Add(-time.Hour)},
	}
	for _, e := range entries {
		if _, err := mgr.Save(e); err != nil {
			t.Fatal(err)
		}
	}
	return dbPath
}

func TestGetOverview(t *testing.T) {
	m, err := NewManager(seed(t))
	if err != nil {
		t.Fatal(err)
	}
	defer m.Close()

	o, err := m.GetOverview()
	if err != nil {
		t.Fatal(err)
	}

	if o.TotalCalls != 4 || o.SuccessCount != 2 || o.ErrorCount != 2 || o.WarningCount != 1 || o.Videos != 3 {
		t.Errorf("overview = %+v", o)
	}
	if o.MaxDurationMs != 120000 {
		t.Errorf("MaxDurationMs = %d", o.MaxDurationMs)
	}
	if o.AvgDurationMs != 31050 {
		t.Errorf("AvgDurationMs = %v, want 31050", o.AvgDurationMs)
	}
	if o.ErrorKinds["timeout"] != 1 || o.ErrorKinds["server_error"] != 1 {
		t.Errorf("ErrorKinds = %v", o.ErrorKinds)
	}
	if o.Sources["transcript"] != 1 || o.Sources["audio"] != 1 {
		t.Errorf("Sources = %v", o.Sources)
	}
	if o.SuccessRate() != 0.5 {
		t.Errorf("SuccessRate() = %v", o.SuccessRate())
	}
}

func TestGetOverview_Empty(t *testing.T) {
	m, err := NewManager(filepath.Join(t.TempDir(), "empty.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer m.Close()

	o, err := m.GetOverview()
	if err != nil {
		t.Fatal(err)
	}
	if o.TotalCalls != 0 || o.SuccessRate() != 0 {
		t.Errorf("overview = %+v", o)
	}
}

func TestGetStatsPerVideo(t *testing.T) {
	m, err := NewManager(seed(t))
	if err != nil {
		t.Fatal(err)
	}
	defer m.Close()

	stats, err := m.GetStatsPerVideo()
	if err != nil {
		t.Fatal(err)
	}
	if len(stats) != 3 {
		t.Fatalf("len(stats) = %d, want 3", len(stats))
	}

	// Most recently used first
	aaa := stats[0]
	if aaa.VideoID != "aaa" || aaa.TotalCalls != 2 || aaa.SuccessCount != 2 {
		t.Errorf("stats[0] = %+v", aaa)
	}
	if aaa.URL != "https://www.youtube.com/watch?v=aaa" {
		t.Errorf("URL = %q, want the latest one", aaa.URL)
	}
	if aaa.MinDurationMs != 1000 || aaa.MaxDurationMs != 3000 || aaa.AvgDurationMs != 2000 {
		t.Errorf("durations = %+v", aaa)
	}
	want := time.Date(2025, 6, 1, 13, 0, 0, 0, time.Local)
	if !aaa.LastCalled.Equal(want) {
		t.Errorf("LastCalled = %v, want %v", aaa.LastCalled, want)
	}
	if stats[1].VideoID != "bbb" || stats[2].VideoID != "ccc" {
		t.Errorf("order = %s, %s", stats[1].VideoID, stats[2].VideoID)
	}
}

func TestStatsCache(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	c := newStatsCache(time.Minute)
	c.now = func() time.Time { return now }

	if _, ok := c.get(); ok {
		t.Error("empty cache should miss")
	}

	c.set([]Stats{{VideoID: "x"}})
	if got, ok := c.get(); !ok || len(got) != 1 {
		t.Errorf("get() = %v, %v", got, ok)
	}

	now = now.Add(2 * time.Minute)
	if _, ok := c.get(); ok {
		t.Error("stale cache should miss")
	}
}
