package history

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/studiowebux/ytsum/internal/api"
	"github.com/studiowebux/ytsum/internal/lifecycle"
	"github.com/studiowebux/ytsum/internal/types"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	m, err := NewManager(filepath.Join(t.TempDir(), "nested", "ytsum.db"))
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}
	t.Cleanup(func() { m.Close() })
	return m
}

func TestManager_SaveAndGet(t *testing.T) {
	m := newTestManager(t)

	entry := types.HistoryEntry{
		RequestID:  "req-1",
		Timestamp:  time.Date(2025, 3, 1, 9, 30, 0, 0, time.Local),
		URL:        "https://www.youtube.com/watch?v=abc",
		VideoID:    "abc",
		Phase:      "succeeded",
		Summary:    "A summary",
		Warning:    "Used audio",
		Source:     "audio",
		DurationMs: 4200,
	}

	id, err := m.Save(entry)
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := m.Get(id)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}

	if !got.Timestamp.Equal(entry.Timestamp) {
		t.Errorf("Timestamp = %v, want %v", got.Timestamp, entry.Timestamp)
	}
	entry.ID = id
	entry.Timestamp = got.Timestamp
	if *got != entry {
		t.Errorf("Get() = %+v\nwant %+v", *got, entry)
	}
}

func TestManager_LoadNewestFirst(t *testing.T) {
	m := newTestManager(t)
	base := time.Date(2025, 1, 1, 10, 0, 0, 0, time.Local)

	for i, url := range []string{"https://youtu.be/a", "https://youtu.be/b", "https://youtu.be/c"} {
		_, err := m.Save(types.HistoryEntry{
			Timestamp: base.Add(time.Duration(i) * time.Hour),
			URL:       url,
			Phase:     "failed",
		})
		if err != nil {
			t.Fatalf("Save() error = %v", err)
		}
	}

	all, err := m.Load(0)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("len = %d, want 3", len(all))
	}
	if all[0].URL != "https://youtu.be/c" || all[2].URL != "https://youtu.be/a" {
		t.Errorf("order = %s, %s, %s", all[0].URL, all[1].URL, all[2].URL)
	}

	limited, _ := m.Load(2)
	if len(limited) != 2 {
		t.Errorf("Load(2) returned %d entries", len(limited))
	}
}

func TestManager_SaveState(t *testing.T) {
	m := newTestManager(t)
	started := time.Date(2025, 2, 2, 8, 0, 0, 0, time.Local)

	tests := []struct {
		name      string
		state     lifecycle.State
		wantSaved bool
		wantKind  string
	}{
		{
			name:      "succeeded",
			state:     lifecycle.State{URL: "https://youtu.be/ok", Phase: lifecycle.Succeeded, Summary: "s", StartedAt: started, Duration: time.Second},
			wantSaved: true,
		},
		{
			name:      "failed",
			state:     lifecycle.State{URL: "https://youtu.be/bad", Phase: lifecycle.Failed, ErrorMessage: "boom", ErrorKind: api.KindServer, StartedAt: started},
			wantSaved: true,
			wantKind:  "server_error",
		},
		{
			name:  "in flight is skipped",
			state: lifecycle.State{URL: "https://youtu.be/wait", Phase: lifecycle.InFlight},
		},
		{
			name:  "idle is skipped",
			state: lifecycle.State{Phase: lifecycle.Idle},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := m.SaveState(tt.state)
			if err != nil {
				t.Fatalf("SaveState() error = %v", err)
			}
			if (id != 0) != tt.wantSaved {
				t.Fatalf("saved = %v, want %v", id != 0, tt.wantSaved)
			}
			if !tt.wantSaved {
				return
			}

			got, err := m.Get(id)
			if err != nil {
				t.Fatalf("Get() error = %v", err)
			}
			if got.Phase != tt.state.Phase.String() {
				t.Errorf("Phase = %q", got.Phase)
			}
			if got.ErrorKind != tt.wantKind {
				t.Errorf("ErrorKind = %q, want %q", got.ErrorKind, tt.wantKind)
			}
			if got.VideoID == "" {
				t.Error("VideoID not derived from URL")
			}
		})
	}
}

func TestManager_LoadForVideo(t *testing.T) {
	m := newTestManager(t)
	m.Save(types.HistoryEntry{URL: "https://youtu.be/a", VideoID: "a", Phase: "succeeded", Summary: "1"})
	m.Save(types.HistoryEntry{URL: "https://youtube.com/watch?v=a", VideoID: "a", Phase: "succeeded", Summary: "2"})
	m.Save(types.HistoryEntry{URL: "https://youtu.be/b", VideoID: "b", Phase: "succeeded", Summary: "3"})

	got, err := m.LoadForVideo("a", 0)
	if err != nil {
		t.Fatalf("LoadForVideo() error = %v", err)
	}
	if len(got) != 2 {
		t.Errorf("len = %d, want 2", len(got))
	}

	got, err = m.LoadForVideo("a", 1)
	if err != nil {
		t.Fatalf("LoadForVideo(limit 1) error = %v", err)
	}
	if len(got) != 1 || got[0].Summary != "2" {
		t.Errorf("LoadForVideo(limit 1) = %+v, want the newest entry only", got)
	}
}

func TestManager_DeleteAndClear(t *testing.T) {
	m := newTestManager(t)
	id1, _ := m.Save(types.HistoryEntry{URL: "https://youtu.be/a", Phase: "failed"})
	m.Save(types.HistoryEntry{URL: "https://youtu.be/b", Phase: "failed"})

	if err := m.Delete(id1); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := m.Delete(id1); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Delete() error = %v, want ErrNotFound", err)
	}
	if _, err := m.Get(id1); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() error = %v, want ErrNotFound", err)
	}

	count, _ := m.GetCount()
	if count != 1 {
		t.Errorf("count = %d, want 1", count)
	}

	if err := m.Clear(); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	count, _ = m.GetCount()
	if count != 0 {
		t.Errorf("count after Clear = %d", count)
	}
}

func TestManager_ReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ytsum.db")

	m, err := NewManager(path)
	if err != nil {
		t.Fatal(err)
	}
	m.Save(types.HistoryEntry{URL: "https://youtu.be/a", Phase: "succeeded", Summary: "kept"})
	m.Close()

	reopened, err := NewManager(path)
	if err != nil {
		t.Fatalf("NewManager() reopen error = %v", err)
	}
	defer reopened.Close()

	entries, _ := reopened.Load(0)
	if len(entries) != 1 || entries[0].Summary != "kept" {
		t.Errorf("entries = %+v", entries)
	}
}

func TestParseTimestamp(t *testing.T) {
	local := parseTimestamp("2025-01-01 10:00:00")
	if local.Year() != 2025 || local.Hour() != 10 {
		t.Errorf("local layout parsed as %v", local)
	}
	rfc := parseTimestamp("2025-01-01T10:00:00Z")
	if rfc.IsZero() {
		t.Error("RFC3339 not parsed")
	}
	if !parseTimestamp("garbage").IsZero() {
		t.Error("garbage should parse to zero time")
	}
}
