package task

import (
	"errors"
	"testing"
	"time"
)

func mustAdd(t *testing.T, s *Store, d Draft) Task {
	t.Helper()
	added, err := s.Add(d)
	if err != nil {
		t.Fatalf("Add(%q) failed: %v", d.Title, err)
	}
	return added
}

func TestAddDefaults(t *testing.T) {
	s := NewStore()
	added := mustAdd(t, s, Draft{Title: "Buy milk"})

	if added.ID != "T001" {
		t.Errorf("ID: got %s, want T001", added.ID)
	}
	if added.Priority != PriorityMedium {
		t.Errorf("Priority: got %s, want Medium", added.Priority)
	}
	if added.Status != StatusPending {
		t.Errorf("Status: got %s, want Pending", added.Status)
	}
	if added.CreatedAt == nil || added.UpdatedAt == nil {
		t.Error("timestamps not set on creation")
	}
}

func TestAddValidation(t *testing.T) {
	tests := []struct {
		name  string
		draft Draft
	}{
		{"empty title", Draft{Title: ""}},
		{"whitespace title", Draft{Title: "   "}},
		{"bad priority", Draft{Title: "x", Priority: "Urgent"}},
		{"bad status", Draft{Title: "x", Status: "Paused"}},
		{"bad due date", Draft{Title: "x", DueDate: "31-01-2026"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewStore()
			_, err := s.Add(tt.draft)
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("Add() error = %v, want *ValidationError", err)
			}
			if s.Len() != 0 {
				t.Errorf("task count changed on failed Add: got %d, want 0", s.Len())
			}
		})
	}
}

func TestSearchCaseInsensitiveInsertionOrder(t *testing.T) {
	s := NewStore()
	mustAdd(t, s, Draft{Title: "Buy milk"})
	mustAdd(t, s, Draft{Title: "Call dentist"})
	mustAdd(t, s, Draft{Title: "Buy eggs"})

	got := s.Search("buy")
	if len(got) != 2 {
		t.Fatalf("Search(buy): got %d tasks, want 2", len(got))
	}
	if got[0].Title != "Buy milk" || got[1].Title != "Buy eggs" {
		t.Errorf("Search(buy) order: got %q, %q", got[0].Title, got[1].Title)
	}

	// Empty query returns everything in insertion order
	all := s.Search("")
	if len(all) != 3 {
		t.Fatalf("Search(\"\"): got %d tasks, want 3", len(all))
	}
	for i, want := range []string{"T001", "T002", "T003"} {
		if all[i].ID != want {
			t.Errorf("Search(\"\")[%d].ID: got %s, want %s", i, all[i].ID, want)
		}
	}
}

func TestFilterCriteria(t *testing.T) {
	s := NewStore()
	mustAdd(t, s, Draft{Title: "a", Priority: PriorityHigh})
	mustAdd(t, s, Draft{Title: "b", Priority: PriorityHigh, Status: StatusDone})
	mustAdd(t, s, Draft{Title: "c", Priority: PriorityLow, Status: StatusDone})

	// No criteria returns everything
	if got := s.FilterTasks(Filter{}); len(got) != 3 {
		t.Errorf("FilterTasks(): got %d tasks, want 3", len(got))
	}

	high := PriorityHigh
	got := s.FilterTasks(Filter{Priority: &high})
	if len(got) != 2 {
		t.Fatalf("FilterTasks(High): got %d tasks, want 2", len(got))
	}

	done := StatusDone
	got = s.FilterTasks(Filter{Priority: &high, Status: &done})
	if len(got) != 1 || got[0].Title != "b" {
		t.Errorf("FilterTasks(High, Done): got %+v, want single task b", got)
	}
}

func TestListCombinesSearchAndFilter(t *testing.T) {
	s := NewStore()
	mustAdd(t, s, Draft{Title: "Buy milk", Priority: PriorityHigh})
	mustAdd(t, s, Draft{Title: "Buy eggs", Priority: PriorityLow})
	mustAdd(t, s, Draft{Title: "Walk dog", Priority: PriorityHigh})

	high := PriorityHigh
	got := s.List(Query{Text: "buy", Priority: &high})
	if len(got) != 1 || got[0].Title != "Buy milk" {
		t.Errorf("List(buy, High): got %+v, want Buy milk only", got)
	}
}

func TestUpdate(t *testing.T) {
	s := NewStore()
	added := mustAdd(t, s, Draft{Title: "Buy milk"})

	high := PriorityHigh
	done := StatusDone
	title := "Buy oat milk"
	updated, err := s.Update(added.ID, Patch{Title: &title, Priority: &high, Status: &done})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if updated.Title != "Buy oat milk" || updated.Priority != PriorityHigh || updated.Status != StatusDone {
		t.Errorf("Update result: got %+v", updated)
	}
	if !updated.UpdatedAt.After(*added.UpdatedAt) {
		t.Errorf("UpdatedAt not strictly increased: %v vs %v", updated.UpdatedAt, added.UpdatedAt)
	}

	// Clearing the due date
	due := ""
	mustAdd(t, s, Draft{Title: "dated", DueDate: "2026-09-01"})
	cleared, err := s.Update("T002", Patch{DueDate: &due})
	if err != nil {
		t.Fatalf("Update(clear due) failed: %v", err)
	}
	if cleared.DueDate != "" {
		t.Errorf("DueDate not cleared: got %q", cleared.DueDate)
	}
}

func TestUpdateNotFound(t *testing.T) {
	s := NewStore()
	mustAdd(t, s, Draft{Title: "Buy milk"})

	title := "x"
	_, err := s.Update("T999", Patch{Title: &title})
	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("Update(T999) error = %v, want *NotFoundError", err)
	}
	if s.Len() != 1 {
		t.Errorf("task count changed on failed Update: got %d, want 1", s.Len())
	}
}

func TestUpdateInvalidPatchLeavesTaskUnchanged(t *testing.T) {
	s := NewStore()
	added := mustAdd(t, s, Draft{Title: "Buy milk", DueDate: "2026-01-31"})

	bad := "not-a-date"
	high := PriorityHigh
	_, err := s.Update(added.ID, Patch{Priority: &high, DueDate: &bad})
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("Update error = %v, want *ValidationError", err)
	}

	got, _ := s.Get(added.ID)
	if got.Priority != PriorityMedium || got.DueDate != "2026-01-31" {
		t.Errorf("task mutated on failed Update: %+v", got)
	}
	if !got.UpdatedAt.Equal(*added.UpdatedAt) {
		t.Errorf("UpdatedAt changed on failed Update")
	}
}

func TestUpdatedAtMonotonic(t *testing.T) {
	s := NewStore()
	added := mustAdd(t, s, Draft{Title: "Buy milk"})

	prev := *added.UpdatedAt
	for i := 0; i < 5; i++ {
		note := "n"
		updated, err := s.Update(added.ID, Patch{Notes: &note})
		if err != nil {
			t.Fatalf("Update failed: %v", err)
		}
		if !updated.UpdatedAt.After(prev) {
			t.Fatalf("UpdatedAt not strictly increasing: %v then %v", prev, updated.UpdatedAt)
		}
		prev = *updated.UpdatedAt
	}
}

func TestDelete(t *testing.T) {
	s := NewStore()
	added := mustAdd(t, s, Draft{Title: "Buy milk"})

	if err := s.Delete(added.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if got := s.Search("milk"); len(got) != 0 {
		t.Errorf("deleted task still visible: %+v", got)
	}

	err := s.Delete(added.ID)
	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Errorf("second Delete error = %v, want *NotFoundError", err)
	}
}

func TestUndoDelete(t *testing.T) {
	s := NewStore()

	if _, ok := s.UndoDelete(); ok {
		t.Error("UndoDelete on empty stack reported success")
	}

	added := mustAdd(t, s, Draft{Title: "Buy milk", Notes: "2%", Priority: PriorityHigh, DueDate: "2026-01-31"})
	if err := s.Delete(added.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	restored, ok := s.UndoDelete()
	if !ok {
		t.Fatal("UndoDelete failed")
	}
	if restored.ID == added.ID {
		t.Errorf("restored task reused ID %s", restored.ID)
	}
	if restored.Title != "Buy milk" || restored.Notes != "2%" ||
		restored.Priority != PriorityHigh || restored.DueDate != "2026-01-31" {
		t.Errorf("restored task lost fields: %+v", restored)
	}

	if _, ok := s.UndoDelete(); ok {
		t.Error("UndoDelete succeeded twice for one delete")
	}
}

func TestToggleDone(t *testing.T) {
	s := NewStore()
	added := mustAdd(t, s, Draft{Title: "Buy milk", Status: StatusInProgress})

	toggled, err := s.ToggleDone(added.ID)
	if err != nil {
		t.Fatalf("ToggleDone failed: %v", err)
	}
	if toggled.Status != StatusDone {
		t.Errorf("Status after toggle: got %s, want Done", toggled.Status)
	}

	toggled, err = s.ToggleDone(added.ID)
	if err != nil {
		t.Fatalf("ToggleDone failed: %v", err)
	}
	if toggled.Status != StatusPending {
		t.Errorf("Status after second toggle: got %s, want Pending", toggled.Status)
	}

	_, err = s.ToggleDone("T999")
	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Errorf("ToggleDone(T999) error = %v, want *NotFoundError", err)
	}
}

func TestSmartSort(t *testing.T) {
	s := NewStore()
	mustAdd(t, s, Draft{Title: "low dated", Priority: PriorityLow, DueDate: "2026-01-01"})
	mustAdd(t, s, Draft{Title: "high undated", Priority: PriorityHigh})
	mustAdd(t, s, Draft{Title: "high late", Priority: PriorityHigh, DueDate: "2026-06-01"})
	mustAdd(t, s, Draft{Title: "high early", Priority: PriorityHigh, DueDate: "2026-02-01"})
	mustAdd(t, s, Draft{Title: "medium", Priority: PriorityMedium})

	got := s.List(Query{SmartSort: true})
	want := []string{"high early", "high late", "high undated", "medium", "low dated"}
	if len(got) != len(want) {
		t.Fatalf("List: got %d tasks, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].Title != want[i] {
			t.Errorf("List[%d]: got %q, want %q", i, got[i].Title, want[i])
		}
	}
}

func TestNewStoreContinuesIDs(t *testing.T) {
	now := time.Now().UTC()
	s := NewStore(
		Task{ID: "T002", Title: "old", Priority: PriorityMedium, Status: StatusPending, CreatedAt: &now, UpdatedAt: &now},
		Task{ID: "T010", Title: "older", Priority: PriorityMedium, Status: StatusPending, CreatedAt: &now, UpdatedAt: &now},
	)
	added := mustAdd(t, s, Draft{Title: "new"})
	if added.ID != "T011" {
		t.Errorf("ID after seed: got %s, want T011", added.ID)
	}
}
