package task

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Store owns the ordered collection of tasks and answers queries on it.
// All operations are synchronous and leave the store unchanged on failure.
type Store struct {
	tasks   []Task
	nextID  int
	deleted []Task // snapshots of deleted tasks, most recent last
}

// NewStore creates a store seeded with the given tasks in order.
// The ID counter continues past the highest numeric ID seen.
func NewStore(tasks ...Task) *Store {
	s := &Store{
		tasks:  make([]Task, len(tasks)),
		nextID: 1,
	}
	copy(s.tasks, tasks)
	for i := range s.tasks {
		if k := idSortKey(s.tasks[i].ID); k >= s.nextID {
			s.nextID = k + 1
		}
	}
	return s
}

// Draft holds the user-supplied fields for a new task.
// Zero-valued Priority and Status fall back to Medium and Pending.
type Draft struct {
	Title    string
	Notes    string
	Priority Priority
	DueDate  string
	Status   Status
}

// Normalize trims and defaults the draft's fields, validating each one.
// Zero-valued Priority and Status default to Medium and Pending.
func (d Draft) Normalize() (Draft, error) {
	d.Title = strings.TrimSpace(d.Title)
	if d.Title == "" {
		return Draft{}, &ValidationError{Field: "title", Err: fmt.Errorf("must not be empty")}
	}
	if d.Priority == "" {
		d.Priority = PriorityMedium
	}
	if !d.Priority.Valid() {
		return Draft{}, &ValidationError{Field: "priority", Err: fmt.Errorf("invalid priority %q", d.Priority)}
	}
	if d.Status == "" {
		d.Status = StatusPending
	}
	if !d.Status.Valid() {
		return Draft{}, &ValidationError{Field: "status", Err: fmt.Errorf("invalid status %q", d.Status)}
	}
	due, err := NormalizeDueDate(d.DueDate)
	if err != nil {
		return Draft{}, err
	}
	d.DueDate = due
	return d, nil
}

// Add creates a new task from the draft with a fresh ID and timestamps.
func (s *Store) Add(d Draft) (Task, error) {
	d, err := d.Normalize()
	if err != nil {
		return Task{}, err
	}

	now := time.Now().UTC()
	t := Task{
		ID:        FormatID(s.nextID),
		Title:     d.Title,
		Notes:     d.Notes,
		Priority:  d.Priority,
		DueDate:   d.DueDate,
		Status:    d.Status,
		CreatedAt: &now,
		UpdatedAt: &now,
	}
	s.nextID++
	s.tasks = append(s.tasks, t)
	return t, nil
}

// Patch holds optional replacement values for an update.
// Nil fields are left untouched. A non-nil empty DueDate clears the due date.
type Patch struct {
	Title    *string
	Notes    *string
	Priority *Priority
	Status   *Status
	DueDate  *string
}

// Validate checks every supplied field of the patch without applying it.
func (p Patch) Validate() error {
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		return &ValidationError{Field: "title", Err: fmt.Errorf("must not be empty")}
	}
	if p.Priority != nil && !p.Priority.Valid() {
		return &ValidationError{Field: "priority", Err: fmt.Errorf("invalid priority %q", *p.Priority)}
	}
	if p.Status != nil && !p.Status.Valid() {
		return &ValidationError{Field: "status", Err: fmt.Errorf("invalid status %q", *p.Status)}
	}
	if p.DueDate != nil {
		if _, err := NormalizeDueDate(*p.DueDate); err != nil {
			return err
		}
	}
	return nil
}

// Apply writes the patch's supplied fields into t. Call Validate first;
// Apply assumes the patch is well formed.
func (p Patch) Apply(t *Task) {
	if p.Title != nil {
		t.Title = strings.TrimSpace(*p.Title)
	}
	if p.Notes != nil {
		t.Notes = *p.Notes
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.DueDate != nil {
		due, _ := NormalizeDueDate(*p.DueDate)
		t.DueDate = due
	}
}

// Update mutates the supplied fields of an existing task and refreshes its
// updated_at strictly past the previous value. The whole patch is validated
// before anything is applied.
func (s *Store) Update(id string, p Patch) (Task, error) {
	i := s.index(id)
	if i < 0 {
		return Task{}, &NotFoundError{ID: id}
	}
	if err := p.Validate(); err != nil {
		return Task{}, err
	}

	t := &s.tasks[i]
	p.Apply(t)
	s.touch(t)
	return *t, nil
}

// Delete permanently removes a task and records a snapshot for UndoDelete.
func (s *Store) Delete(id string) error {
	i := s.index(id)
	if i < 0 {
		return &NotFoundError{ID: id}
	}
	s.deleted = append(s.deleted, s.tasks[i])
	s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
	return nil
}

// UndoDelete recreates the most recently deleted task as a new task with a
// fresh ID and timestamps. Returns false if there is nothing to undo.
func (s *Store) UndoDelete() (Task, bool) {
	if len(s.deleted) == 0 {
		return Task{}, false
	}
	snap := s.deleted[len(s.deleted)-1]
	s.deleted = s.deleted[:len(s.deleted)-1]
	t, err := s.Add(Draft{
		Title:    snap.Title,
		Notes:    snap.Notes,
		Priority: snap.Priority,
		DueDate:  snap.DueDate,
		Status:   snap.Status,
	})
	if err != nil {
		// Snapshots came from the store, so they re-validate cleanly.
		return Task{}, false
	}
	return t, true
}

// ToggleDone flips a task between Done and Pending.
func (s *Store) ToggleDone(id string) (Task, error) {
	i := s.index(id)
	if i < 0 {
		return Task{}, &NotFoundError{ID: id}
	}
	t := &s.tasks[i]
	if t.Status == StatusDone {
		t.Status = StatusPending
	} else {
		t.Status = StatusDone
	}
	s.touch(t)
	return *t, nil
}

// Get returns a copy of the task with the given ID.
func (s *Store) Get(id string) (Task, bool) {
	i := s.index(id)
	if i < 0 {
		return Task{}, false
	}
	return s.tasks[i], true
}

// Len returns the number of tasks in the store.
func (s *Store) Len() int {
	return len(s.tasks)
}

// Tasks returns a copy of all tasks in insertion order.
func (s *Store) Tasks() []Task {
	out := make([]Task, len(s.tasks))
	copy(out, s.tasks)
	return out
}

// Search returns the tasks whose title contains q, case-insensitively, in
// insertion order. An empty query returns all tasks.
func (s *Store) Search(q string) []Task {
	return s.List(Query{Text: q})
}

// Filter holds optional match criteria. Nil fields are unconstrained.
type Filter struct {
	Priority *Priority
	Status   *Status
}

// FilterTasks returns the tasks matching all supplied criteria, in
// insertion order.
func (s *Store) FilterTasks(f Filter) []Task {
	return s.List(Query{Priority: f.Priority, Status: f.Status})
}

// Query combines a search text with filter criteria.
type Query struct {
	Text     string
	Priority *Priority
	Status   *Status

	// SmartSort orders results High>Medium>Low, then due date ascending
	// with undated tasks last, then creation time. Off, results keep
	// insertion order.
	SmartSort bool
}

// List answers a combined search and filter over the store.
func (s *Store) List(q Query) []Task {
	needle := strings.ToLower(strings.TrimSpace(q.Text))
	out := make([]Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		if needle != "" && !strings.Contains(strings.ToLower(t.Title), needle) {
			continue
		}
		if q.Priority != nil && t.Priority != *q.Priority {
			continue
		}
		if q.Status != nil && t.Status != *q.Status {
			continue
		}
		out = append(out, t)
	}
	if q.SmartSort {
		smartSort(out)
	}
	return out
}

// smartSort orders tasks by priority rank, then due date with undated tasks
// last, then creation time, then ID.
func smartSort(tasks []Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		a, b := tasks[i], tasks[j]
		if ar, br := a.Priority.rank(), b.Priority.rank(); ar != br {
			return ar < br
		}
		if (a.DueDate == "") != (b.DueDate == "") {
			return a.DueDate != ""
		}
		if a.DueDate != b.DueDate {
			return a.DueDate < b.DueDate
		}
		switch {
		case a.CreatedAt == nil && b.CreatedAt == nil:
		case a.CreatedAt == nil:
			return false
		case b.CreatedAt == nil:
			return true
		case !a.CreatedAt.Equal(*b.CreatedAt):
			return a.CreatedAt.Before(*b.CreatedAt)
		}
		return CompareIDs(a.ID, b.ID)
	})
}

// touch refreshes a task's updated_at, keeping it strictly increasing even
// when the clock has not advanced between mutations.
func (s *Store) touch(t *Task) {
	now := time.Now().UTC()
	if t.UpdatedAt != nil && !now.After(*t.UpdatedAt) {
		now = t.UpdatedAt.Add(time.Nanosecond)
	}
	t.UpdatedAt = &now
}

// index returns the position of the task with the given ID, or -1.
func (s *Store) index(id string) int {
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			return i
		}
	}
	return -1
}
