package db

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func newTestRepository(t *testing.T) *Repository {
	t.Helper()

	repo, err := NewRepository(DriverSQLite, filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("failed to create repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestRepository_CreateAndGet(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	inv := &Invocation{
		Tool:       "remove-background",
		Model:      "lucataco/remove-bg:95fc",
		Status:     StatusSucceeded,
		HTTPStatus: 201,
		Output:     `["https://cdn/example.png"]`,
		DurationMS: 1200,
	}

	if err := repo.Create(ctx, inv); err != nil {
		t.Fatalf("failed to create invocation: %v", err)
	}
	if inv.ID == "" || inv.CreatedAt == 0 {
		t.Fatalf("id and created_at not filled: %+v", inv)
	}

	retrieved, err := repo.GetByID(ctx, inv.ID)
	if err != nil {
		t.Fatalf("failed to get invocation: %v", err)
	}
	if retrieved == nil {
		t.Fatal("invocation not found")
	}
	if *retrieved != *inv {
		t.Errorf("retrieved invocation mismatch: got %+v, want %+v", retrieved, inv)
	}
}

func TestRepository_GetByIDMissing(t *testing.T) {
	repo := newTestRepository(t)

	inv, err := repo.GetByID(context.Background(), "nope")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inv != nil {
		t.Errorf("expected nil for missing row, got %+v", inv)
	}
}

func TestRepository_List(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	now := time.Now().UnixMilli()
	seed := []*Invocation{
		{Tool: "text-to-image", Model: "m", Status: StatusSucceeded, HTTPStatus: 201, CreatedAt: now - 3000},
		{Tool: "text-to-image", Model: "m", Status: StatusFailed, HTTPStatus: 500, ErrorMessage: "empty output", CreatedAt: now - 2000},
		{Tool: "text-extractor", Model: "m", Status: StatusSucceeded, HTTPStatus: 201, Output: "hello", CreatedAt: now - 1000},
	}
	for _, inv := range seed {
		if err := repo.Create(ctx, inv); err != nil {
			t.Fatalf("seed failed: %v", err)
		}
	}

	tests := []struct {
		name   string
		filter ListFilter
		want   []string
	}{
		{"all newest first", ListFilter{}, []string{"text-extractor", "text-to-image", "text-to-image"}},
		{"by tool", ListFilter{Tool: "text-to-image"}, []string{"text-to-image", "text-to-image"}},
		{"by status", ListFilter{Status: StatusFailed}, []string{"text-to-image"}},
		{"limit", ListFilter{Limit: 1}, []string{"text-extractor"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.List(ctx, tt.filter)
			if err != nil {
				t.Fatalf("list failed: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %d invocations, want %d", len(got), len(tt.want))
			}
			for i, inv := range got {
				if inv.Tool != tt.want[i] {
					t.Errorf("row %d tool = %s, want %s", i, inv.Tool, tt.want[i])
				}
			}
		})
	}
}

func TestRepository_Summary(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	repo.Create(ctx, &Invocation{Tool: "a", Model: "m", Status: StatusSucceeded, HTTPStatus: 201, DurationMS: 100})
	repo.Create(ctx, &Invocation{Tool: "a", Model: "m", Status: StatusSucceeded, HTTPStatus: 201, DurationMS: 300})
	repo.Create(ctx, &Invocation{Tool: "a", Model: "m", Status: StatusFailed, HTTPStatus: 500})

	rows, err := repo.Summary(ctx)
	if err != nil {
		t.Fatalf("summary failed: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2: %+v", len(rows), rows)
	}
	if rows[1].Status != StatusSucceeded || rows[1].Count != 2 || rows[1].AvgDurationMS != 200 {
		t.Errorf("unexpected succeeded row: %+v", rows[1])
	}
}

func TestRepository_Delete(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	old := time.Now().Add(-48 * time.Hour).UnixMilli()
	repo.Create(ctx, &Invocation{Tool: "a", Model: "m", Status: StatusSucceeded, HTTPStatus: 201, CreatedAt: old})
	repo.Create(ctx, &Invocation{Tool: "a", Model: "m", Status: StatusSucceeded, HTTPStatus: 201})
	repo.Create(ctx, &Invocation{Tool: "b", Model: "m", Status: StatusFailed, HTTPStatus: 500})

	n, err := repo.DeleteOlderThan(ctx, time.Now().Add(-24*time.Hour))
	if err != nil || n != 1 {
		t.Fatalf("DeleteOlderThan = %d, %v; want 1, nil", n, err)
	}

	n, err = repo.DeleteByTool(ctx, "b")
	if err != nil || n != 1 {
		t.Fatalf("DeleteByTool = %d, %v; want 1, nil", n, err)
	}

	n, err = repo.DeleteAll(ctx)
	if err != nil || n != 1 {
		t.Fatalf("DeleteAll = %d, %v; want 1, nil", n, err)
	}
}

func TestNewRepository_UnknownDriver(t *testing.T) {
	if _, err := NewRepository("postgres", "dsn"); err == nil {
		t.Error("expected error for unsupported driver")
	}
}
