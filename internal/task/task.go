package task

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Priority represents a task priority level.
type Priority string

const (
	PriorityLow    Priority = "Low"
	PriorityMedium Priority = "Medium"
	PriorityHigh   Priority = "High"
)

// Priorities lists all valid priorities from most to least urgent.
func Priorities() []Priority {
	return []Priority{PriorityHigh, PriorityMedium, PriorityLow}
}

// rank maps a priority to its sort rank. High sorts first.
func (p Priority) rank() int {
	switch p {
	case PriorityHigh:
		return 1
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 3
	}
	return 4
}

// Valid reports whether p is a known priority.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// ParsePriority parses a priority name case-insensitively.
func ParsePriority(s string) (Priority, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low":
		return PriorityLow, nil
	case "medium", "med":
		return PriorityMedium, nil
	case "high":
		return PriorityHigh, nil
	}
	return "", &ValidationError{Field: "priority", Err: fmt.Errorf("invalid priority %q, must be one of: Low, Medium, High", s)}
}

// Status represents a task status.
type Status string

const (
	StatusPending    Status = "Pending"
	StatusInProgress Status = "In Progress"
	StatusDone       Status = "Done"
)

// Statuses lists all valid statuses.
func Statuses() []Status {
	return []Status{StatusPending, StatusInProgress, StatusDone}
}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusDone:
		return true
	}
	return false
}

// ParseStatus parses a status name case-insensitively.
func ParseStatus(s string) (Status, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pending":
		return StatusPending, nil
	case "in progress", "in-progress", "inprogress", "doing":
		return StatusInProgress, nil
	case "done":
		return StatusDone, nil
	}
	return "", &ValidationError{Field: "status", Err: fmt.Errorf("invalid status %q, must be one of: Pending, In Progress, Done", s)}
}

// DueDateLayout is the calendar date format for due dates.
const DueDateLayout = "2006-01-02"

// NormalizeDueDate validates an optional due date string.
// Empty and whitespace-only input normalizes to "" (no due date).
func NormalizeDueDate(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", nil
	}
	if _, err := time.Parse(DueDateLayout, s); err != nil {
		return "", &ValidationError{Field: "due_date", Err: fmt.Errorf("date must be in YYYY-MM-DD format, got %q", s)}
	}
	return s, nil
}

// Task represents a single to-do item.
type Task struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Notes     string     `json:"notes,omitempty"`
	Priority  Priority   `json:"priority"`
	DueDate   string     `json:"due_date,omitempty"`
	Status    Status     `json:"status"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// IsZero returns true if the task is empty (has no ID).
func (t *Task) IsZero() bool {
	return t.ID == ""
}

// Done reports whether the task is complete.
func (t *Task) Done() bool {
	return t.Status == StatusDone
}

// idSortKey extracts the numeric value from a task ID for sorting.
// For IDs like "T001", "T2", "T10", it returns 1, 2, 10 respectively.
// If the ID doesn't contain a number, it returns -1.
func idSortKey(id string) int {
	i := 0
	for i < len(id) && (id[i] < '0' || id[i] > '9') {
		i++
	}
	if i == len(id) {
		return -1
	}
	num, err := strconv.Atoi(id[i:])
	if err != nil {
		return -1
	}
	return num
}

// CompareIDs returns true if id1 should come before id2 in numeric-aware
// ordering. If both IDs have numeric parts, compares numerically. Otherwise
// falls back to lexicographic comparison.
func CompareIDs(id1, id2 string) bool {
	k1 := idSortKey(id1)
	k2 := idSortKey(id2)
	if k1 >= 0 && k2 >= 0 {
		return k1 < k2
	}
	return id1 < id2
}

// FormatID renders a numeric task ID in the canonical "T001" form.
func FormatID(n int) string {
	return fmt.Sprintf("T%03d", n)
}

// IDNumber returns the numeric part of a task ID, or -1 if it has none.
func IDNumber(id string) int {
	return idSortKey(id)
}
