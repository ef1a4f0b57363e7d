package content

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestMemoryRepoHistoryNewestFirst(t *testing.T) {
	repo := NewMemoryRepo()
	job := repo.PutJobDescription(JobDescription{Title: "SRE", Description: "pager"})
	ctx := context.Background()

	older := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	newer := older.Add(time.Hour)
	if _, err := repo.InsertResult(ctx, Result{UserID: "u1", Kind: KindResume, JobDescriptionID: job.ID, CreatedAt: older}); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if _, err := repo.InsertResult(ctx, Result{UserID: "u1", Kind: KindResume, JobDescriptionID: job.ID, CreatedAt: newer}); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if _, err := repo.InsertResult(ctx, Result{UserID: "u2", Kind: KindResume, JobDescriptionID: job.ID}); err != nil {
		t.Fatalf("insert: %v", err)
	}

	entries, err := repo.ListHistory(ctx, "u1", KindResume)
	if err != nil {
		t.Fatalf("ListHistory: %v", err)
	}
	if len(entries) != 2 || !entries[0].CreatedAt.Equal(newer) {
		t.Fatalf("unexpected ordering: %+v", entries)
	}
	if entries[0].JobDescription == nil || entries[0].JobDescription.Title != "SRE" {
		t.Fatalf("expected job summary")
	}
}

func TestMemoryRepoResultScopedToUser(t *testing.T) {
	repo := NewMemoryRepo()
	ctx := context.Background()
	stored, err := repo.InsertResult(ctx, Result{UserID: "u1", Kind: KindCoverLetter})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if _, err := repo.GetResult(ctx, "u2", KindCoverLetter, stored.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected other users to miss, got %v", err)
	}
	if _, err := repo.GetResult(ctx, "u1", KindResume, stored.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected kinds to be separate, got %v", err)
	}
	if _, err := repo.GetResult(ctx, "u1", KindCoverLetter, stored.ID); err != nil {
		t.Fatalf("GetResult: %v", err)
	}
}

func TestResultJSONNamesDocumentColumnByKind(t *testing.T) {
	raw, err := json.Marshal(Result{ID: "r", Kind: KindCoverLetter, DocumentID: "d"})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out["cover_letter_id"] != "d" {
		t.Fatalf("expected cover_letter_id, got %v", out)
	}
	if _, ok := out["resume_id"]; ok {
		t.Fatalf("resume_id must be absent")
	}
	if out["ats_score"] != nil {
		t.Fatalf("expected null ats_score, got %v", out["ats_score"])
	}
}
