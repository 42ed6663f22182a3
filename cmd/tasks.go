package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/log"

	"github.com/prodo-app/prodo/internal/config"
	"github.com/prodo-app/prodo/internal/logging"
	"github.com/prodo-app/prodo/internal/task"
)

// addCommand creates a new task from the remaining args and flags.
func addCommand(ctx context.Context, cfg *config.Config, logger *log.Logger, out io.Writer, args []string) error {
	fs := flag.NewFlagSet("prodo add", flag.ContinueOnError)
	priority := fs.String("priority", cfg.DefaultPriority, "Priority (Low|Medium|High)")
	due := fs.String("due", "", "Due date (YYYY-MM-DD)")
	notes := fs.String("notes", "", "Free-form notes")
	status := fs.String("status", string(task.StatusPending), "Status (Pending|In Progress|Done)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	title := strings.Join(fs.Args(), " ")
	p, err := task.ParsePriority(*priority)
	if err != nil {
		return err
	}
	s, err := task.ParseStatus(*status)
	if err != nil {
		return err
	}

	b, err := openBackend(cfg)
	if err != nil {
		return err
	}
	defer b.Close()

	added, err := b.Add(ctx, task.Draft{
		Title:    title,
		Notes:    *notes,
		Priority: p,
		DueDate:  *due,
		Status:   s,
	})
	if err != nil {
		return err
	}

	activity := openActivity(cfg)
	defer activity.Close()
	_ = activity.Record(logging.Entry{Op: "add", TaskID: added.ID, Title: added.Title})

	logger.Info("created task", "id", added.ID, "priority", added.Priority)
	fmt.Fprintf(out, "Created task %s.\n", added.ID)
	return nil
}

// lsCommand prints the filtered task table.
func lsCommand(ctx context.Context, cfg *config.Config, out io.Writer, args []string) error {
	fs := flag.NewFlagSet("prodo ls", flag.ContinueOnError)
	query := fs.String("q", "", "Search titles for this text")
	priority := fs.String("priority", "", "Only this priority (Low|Medium|High)")
	status := fs.String("status", "", "Only this status (Pending|In Progress|Done)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	q := task.Query{Text: *query, SmartSort: cfg.SmartSort}
	if *priority != "" {
		p, err := task.ParsePriority(*priority)
		if err != nil {
			return err
		}
		q.Priority = &p
	}
	if *status != "" {
		s, err := task.ParseStatus(*status)
		if err != nil {
			return err
		}
		q.Status = &s
	}

	b, err := openBackend(cfg)
	if err != nil {
		return err
	}
	defer b.Close()

	tasks, err := b.List(ctx, q)
	if err != nil {
		return err
	}

	writeTaskTable(out, tasks)
	return nil
}

func writeTaskTable(out io.Writer, tasks []task.Task) {
	if len(tasks) == 0 {
		fmt.Fprintln(out, "No tasks.")
		return
	}

	w := tabwriter.NewWriter(out, 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTASK\tPRIORITY\tDUE\tSTATUS\tUPDATED")
	pending := 0
	for _, t := range tasks {
		if !t.Done() {
			pending++
		}
		due := t.DueDate
		if due == "" {
			due = "-"
		}
		updated := "-"
		if t.UpdatedAt != nil {
			updated = t.UpdatedAt.Local().Format("2006-01-02 15:04")
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n", t.ID, t.Title, t.Priority, due, t.Status, updated)
	}
	w.Flush()
	fmt.Fprintf(out, "\n%d shown | %d pending\n", len(tasks), pending)
}

// editCommand patches the supplied fields of an existing task.
func editCommand(ctx context.Context, cfg *config.Config, logger *log.Logger, out io.Writer, args []string) error {
	fs := flag.NewFlagSet("prodo edit", flag.ContinueOnError)
	title := fs.String("title", "", "New title")
	notes := fs.String("notes", "", "New notes")
	priority := fs.String("priority", "", "New priority (Low|Medium|High)")
	due := fs.String("due", "", "New due date (YYYY-MM-DD, empty clears)")
	status := fs.String("status", "", "New status (Pending|In Progress|Done)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: prodo edit [flags] <id>")
	}
	id := fs.Arg(0)

	// Only flags the user actually set become part of the patch, so an
	// empty -due clears the date while an unset one leaves it alone.
	var patch task.Patch
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "title":
			patch.Title = title
		case "notes":
			patch.Notes = notes
		case "due":
			patch.DueDate = due
		}
	})
	if *priority != "" {
		p, err := task.ParsePriority(*priority)
		if err != nil {
			return err
		}
		patch.Priority = &p
	}
	if *status != "" {
		s, err := task.ParseStatus(*status)
		if err != nil {
			return err
		}
		patch.Status = &s
	}

	b, err := openBackend(cfg)
	if err != nil {
		return err
	}
	defer b.Close()

	updated, err := b.Update(ctx, id, patch)
	if err != nil {
		return err
	}

	activity := openActivity(cfg)
	defer activity.Close()
	_ = activity.Record(logging.Entry{Op: "update", TaskID: updated.ID, Title: updated.Title})

	logger.Info("updated task", "id", updated.ID)
	fmt.Fprintf(out, "Updated task %s.\n", updated.ID)
	return nil
}

// doneCommand toggles a task between Done and Pending.
func doneCommand(ctx context.Context, cfg *config.Config, logger *log.Logger, out io.Writer, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: prodo done <id>")
	}
	id := args[0]

	b, err := openBackend(cfg)
	if err != nil {
		return err
	}
	defer b.Close()

	toggled, err := b.ToggleDone(ctx, id)
	if err != nil {
		return err
	}

	activity := openActivity(cfg)
	defer activity.Close()
	_ = activity.Record(logging.Entry{Op: "toggle", TaskID: toggled.ID, Title: toggled.Title})

	logger.Info("toggled task", "id", toggled.ID, "status", toggled.Status)
	fmt.Fprintf(out, "Toggled task %s to %s.\n", toggled.ID, toggled.Status)
	return nil
}

// rmCommand permanently deletes a task.
func rmCommand(ctx context.Context, cfg *config.Config, logger *log.Logger, out io.Writer, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: prodo rm <id>")
	}
	id := args[0]

	b, err := openBackend(cfg)
	if err != nil {
		return err
	}
	defer b.Close()

	if err := b.Delete(ctx, id); err != nil {
		return err
	}

	activity := openActivity(cfg)
	defer activity.Close()
	_ = activity.Record(logging.Entry{Op: "delete", TaskID: id})

	logger.Info("deleted task", "id", id)
	fmt.Fprintf(out, "Deleted task %s.\n", id)
	return nil
}
