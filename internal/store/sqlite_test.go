package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/hyan/noteflow/internal/model"
	"github.com/hyan/noteflow/internal/store"
	"github.com/hyan/noteflow/tests/testutil"
)

func run(id string, startedAt time.Time) model.IngestRun {
	return model.IngestRun{
		ID:         id,
		Source:     "relay",
		StartedAt:  startedAt,
		FinishedAt: startedAt.Add(2 * time.Second),
		Fetched:    3,
		Filed:      2,
		Skipped:    1,
	}
}

func filing(id, runID string, msgID int64, status model.FilingStatus, createdAt time.Time) model.Filing {
	return model.Filing{
		ID:        id,
		RunID:     runID,
		MessageID: msgID,
		Title:     "note",
		Path:      "notes/note.md",
		Status:    status,
		CreatedAt: createdAt,
	}
}

func TestRecordAndGetRuns(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()
	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	for i, id := range []string{"r1", "r2", "r3"} {
		if err := s.RecordRun(ctx, run(id, base.Add(time.Duration(i)*time.Minute))); err != nil {
			t.Fatalf("RecordRun %s: %v", id, err)
		}
	}

	runs, err := s.GetRuns(ctx, 2)
	if err != nil {
		t.Fatalf("GetRuns: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("got %d runs, want 2", len(runs))
	}
	// Newest first.
	if runs[0].ID != "r3" || runs[1].ID != "r2" {
		t.Errorf("got order [%s %s], want [r3 r2]", runs[0].ID, runs[1].ID)
	}
	if runs[0].Fetched != 3 || runs[0].Filed != 2 || runs[0].Skipped != 1 {
		t.Errorf("run counters not round-tripped: %+v", runs[0])
	}
}

func TestGetFilingsFilters(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()
	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	if err := s.RecordRun(ctx, run("r1", base)); err != nil {
		t.Fatal(err)
	}
	if err := s.RecordRun(ctx, run("r2", base.Add(time.Minute))); err != nil {
		t.Fatal(err)
	}

	seed := []model.Filing{
		filing("f1", "r1", 1, model.FilingFiled, base),
		filing("f2", "r1", 2, model.FilingFailed, base.Add(time.Second)),
		filing("f3", "r2", 3, model.FilingFiled, base.Add(2*time.Second)),
	}
	for _, f := range seed {
		if err := s.RecordFiling(ctx, f); err != nil {
			t.Fatalf("RecordFiling %s: %v", f.ID, err)
		}
	}

	t.Run("by run", func(t *testing.T) {
		runID := "r1"
		got, err := s.GetFilings(ctx, store.FilingFilter{RunID: &runID})
		if err != nil {
			t.Fatalf("GetFilings: %v", err)
		}
		if len(got) != 2 {
			t.Fatalf("got %d filings, want 2", len(got))
		}
		if got[0].ID != "f2" || got[1].ID != "f1" {
			t.Errorf("got order [%s %s], want [f2 f1]", got[0].ID, got[1].ID)
		}
	})

	t.Run("by status", func(t *testing.T) {
		status := model.FilingFailed
		got, err := s.GetFilings(ctx, store.FilingFilter{Status: &status})
		if err != nil {
			t.Fatalf("GetFilings: %v", err)
		}
		if len(got) != 1 || got[0].ID != "f2" {
			t.Errorf("got %+v, want only f2", got)
		}
	})

	t.Run("combined", func(t *testing.T) {
		runID := "r2"
		status := model.FilingFailed
		got, err := s.GetFilings(ctx, store.FilingFilter{RunID: &runID, Status: &status})
		if err != nil {
			t.Fatalf("GetFilings: %v", err)
		}
		if len(got) != 0 {
			t.Errorf("got %d filings, want 0", len(got))
		}
	})

	t.Run("limit", func(t *testing.T) {
		got, err := s.GetFilings(ctx, store.FilingFilter{Limit: 1})
		if err != nil {
			t.Fatalf("GetFilings: %v", err)
		}
		if len(got) != 1 || got[0].ID != "f3" {
			t.Errorf("got %+v, want only f3", got)
		}
	})
}
