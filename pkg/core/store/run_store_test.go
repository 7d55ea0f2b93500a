package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"finmodel/pkg/models"
)

func TestRunStoreFileRoundtrip(t *testing.T) {
	s := NewRunStore(nil, t.TempDir())
	ctx := context.Background()

	v := 1000000.0
	rec := &RunRecord{
		ID:         "run-1",
		PeriodType: "month",
		Inputs:     []models.PeriodInput{{"revenue": &v}},
		Results:    []models.CalculatedPeriodData{{PeriodLabel: "Month 1", Revenue: v}},
	}
	if err := s.Save(ctx, rec); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if rec.CreatedAt.IsZero() {
		t.Error("Save must stamp CreatedAt")
	}

	got, err := s.Get(ctx, "run-1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got == nil {
		t.Fatal("Expected the saved run back")
	}
	if got.PeriodType != "month" || len(got.Results) != 1 || got.Results[0].Revenue != v {
		t.Errorf("Roundtrip mismatch: %+v", got)
	}
}

func TestRunStoreGetMissIsNotAnError(t *testing.T) {
	s := NewRunStore(nil, t.TempDir())

	got, err := s.Get(context.Background(), "no-such-run")
	if err != nil {
		t.Errorf("A miss must not be an error, got %v", err)
	}
	if got != nil {
		t.Errorf("Expected nil record on a miss, got %+v", got)
	}
}

func TestRunStoreGetCorruptRecord(t *testing.T) {
	dir := t.TempDir()
	s := NewRunStore(nil, dir)
	if err := os.WriteFile(filepath.Join(dir, "bad.json"), []byte("{not json"), 0644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	// An unreadable record is an error, never silently a miss.
	if _, err := s.Get(context.Background(), "bad"); err == nil {
		t.Error("Expected an error for a corrupt record")
	}
}
