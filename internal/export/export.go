// Package export renders task lists to JSON, CSV, and PDF, and imports
// tasks from JSON dumps.
package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"github.com/prodo-app/prodo/internal/task"
)

// Formats lists the supported export formats.
func Formats() []string {
	return []string{"json", "csv", "pdf"}
}

// Export renders the tasks in the given format.
func Export(tasks []task.Task, format string) ([]byte, error) {
	switch strings.ToLower(format) {
	case "json":
		return exportJSON(tasks)
	case "csv":
		return exportCSV(tasks)
	case "pdf":
		return exportPDF(tasks)
	default:
		return nil, fmt.Errorf("unknown format %s", format)
	}
}

func exportJSON(tasks []task.Task) ([]byte, error) {
	data, err := json.MarshalIndent(tasks, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

func exportCSV(tasks []task.Task) ([]byte, error) {
	var b strings.Builder
	w := csv.NewWriter(&b)
	_ = w.Write([]string{"id", "title", "notes", "priority", "due_date", "status", "created_at", "updated_at"})
	for _, t := range tasks {
		created, updated := "", ""
		if t.CreatedAt != nil {
			created = t.CreatedAt.Format("2006-01-02 15:04:05")
		}
		if t.UpdatedAt != nil {
			updated = t.UpdatedAt.Format("2006-01-02 15:04:05")
		}
		_ = w.Write([]string{t.ID, t.Title, t.Notes, string(t.Priority), t.DueDate, string(t.Status), created, updated})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return []byte(b.String()), nil
}

func exportPDF(tasks []task.Task) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 14)
	pdf.Cell(40, 10, "To-Do List")
	pdf.Ln(12)
	pdf.SetFont("Arial", "", 10)
	for _, t := range tasks {
		due := t.DueDate
		if due == "" {
			due = "-"
		}
		line := fmt.Sprintf("[%s] %s | %s | due %s | %s", t.ID, t.Title, t.Priority, due, t.Status)
		pdf.MultiCell(0, 6, line, "0", "L", false)
		if t.Notes != "" {
			pdf.SetFont("Arial", "I", 9)
			pdf.MultiCell(0, 5, "    "+t.Notes, "0", "L", false)
			pdf.SetFont("Arial", "", 10)
		}
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// importedTask mirrors the exported JSON shape with loose types.
type importedTask struct {
	Title    string `json:"title"`
	Notes    string `json:"notes"`
	Priority string `json:"priority"`
	DueDate  string `json:"due_date"`
	Status   string `json:"status"`
}

// ImportJSON parses a JSON dump into drafts, coercing sloppy input the way
// the desktop app did: missing titles become "(untitled)", unknown
// priorities fall back to Medium, unknown statuses to Pending, and bad due
// dates are dropped.
func ImportJSON(data []byte) ([]task.Draft, error) {
	var items []importedTask
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("parse import file: %w", err)
	}

	drafts := make([]task.Draft, 0, len(items))
	for _, it := range items {
		d := task.Draft{
			Title: strings.TrimSpace(it.Title),
			Notes: it.Notes,
		}
		if d.Title == "" {
			d.Title = "(untitled)"
		}
		if p, err := task.ParsePriority(it.Priority); err == nil {
			d.Priority = p
		}
		if s, err := task.ParseStatus(it.Status); err == nil {
			d.Status = s
		}
		if due, err := task.NormalizeDueDate(it.DueDate); err == nil {
			d.DueDate = due
		}
		drafts = append(drafts, d)
	}
	return drafts, nil
}
