// Package ui provides the interactive terminal front end.
package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/prodo-app/prodo/internal/config"
	"github.com/prodo-app/prodo/internal/logging"
	"github.com/prodo-app/prodo/internal/task"
)

// RunTUI starts the task table UI over the snapshot at cfg.DataFile.
func RunTUI(ctx context.Context, cfg *config.Config, activity *logging.ActivityLog) error {
	if !IsTTY(os.Stdout) {
		return fmt.Errorf("tui requires a TTY")
	}

	store, err := loadStore(cfg.DataFile)
	if err != nil {
		return err
	}

	model := newTUIModel(cfg, store, activity)
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	finalModel, err := program.Run()
	if err != nil {
		return err
	}
	if m, ok := finalModel.(*tuiModel); ok && m.fatalErr != nil {
		return m.fatalErr
	}
	return nil
}

// loadStore builds a store from the snapshot; a missing file is an empty list.
func loadStore(path string) (*task.Store, error) {
	f, err := task.Load(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return task.NewStore(), nil
		}
		return nil, err
	}
	return task.NewStore(f.Tasks...), nil
}

// inputMode tracks what the text prompt at the bottom collects.
type inputMode int

const (
	inputNone inputMode = iota
	inputSearch
	inputNewTask
	inputRename
)

type tuiModel struct {
	cfg      *config.Config
	store    *task.Store
	activity *logging.ActivityLog

	view   []task.Task
	cursor int

	search         string
	prevSearch     string
	filterPriority *task.Priority
	filterStatus   *task.Status

	mode      inputMode
	inputText string

	status   string
	showHelp bool
	fatalErr error

	tickInterval time.Duration
}

type tickMsg time.Time

func newTUIModel(cfg *config.Config, store *task.Store, activity *logging.ActivityLog) *tuiModel {
	m := &tuiModel{
		cfg:          cfg,
		store:        store,
		activity:     activity,
		status:       "Ready.",
		tickInterval: time.Second,
	}
	m.refresh()
	return m
}

func (m *tuiModel) Init() tea.Cmd {
	return tickCmd(m.tickInterval)
}

func (m *tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		var cmd tea.Cmd
		if m.mode != inputNone {
			_, cmd = m.updateInput(msg)
		} else {
			_, cmd = m.updateNormal(msg)
		}
		// A snapshot that cannot be written means every further edit
		// would be lost; stop instead of editing in the dark.
		if m.fatalErr != nil {
			return m, tea.Quit
		}
		return m, cmd
	case tickMsg:
		return m, tickCmd(m.tickInterval)
	}
	return m, nil
}

func (m *tuiModel) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.view)-1 {
			m.cursor++
		}
	case "h", "?":
		m.showHelp = !m.showHelp
	case "/":
		m.mode = inputSearch
		m.prevSearch = m.search
		m.inputText = m.search
	case "n":
		m.mode = inputNewTask
		m.inputText = ""
	case "e":
		if t, ok := m.selected(); ok {
			m.mode = inputRename
			m.inputText = t.Title
		}
	case "p":
		m.filterPriority = cyclePriority(m.filterPriority)
		m.cursor = 0
		m.refreshStatus()
	case "s":
		m.filterStatus = cycleStatus(m.filterStatus)
		m.cursor = 0
		m.refreshStatus()
	case "0":
		m.search = ""
		m.filterPriority = nil
		m.filterStatus = nil
		m.cursor = 0
		m.refreshStatus()
	case "d":
		m.toggleSelected()
	case "x", "delete":
		m.deleteSelected()
	case "u":
		m.undoDelete()
	case "r", "f5":
		m.refreshStatus()
	}
	return m, nil
}

func (m *tuiModel) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc, tea.KeyCtrlC:
		if m.mode == inputSearch {
			m.search = m.prevSearch
		}
		m.mode = inputNone
		m.inputText = ""
		m.refresh()
	case tea.KeyEnter:
		m.commitInput()
	case tea.KeyBackspace:
		if len(m.inputText) > 0 {
			runes := []rune(m.inputText)
			m.inputText = string(runes[:len(runes)-1])
		}
		m.syncSearchInput()
	case tea.KeySpace:
		m.inputText += " "
		m.syncSearchInput()
	case tea.KeyRunes:
		m.inputText += string(msg.Runes)
		m.syncSearchInput()
	}
	return m, nil
}

// syncSearchInput narrows the table live while typing a search.
func (m *tuiModel) syncSearchInput() {
	if m.mode != inputSearch {
		return
	}
	m.search = m.inputText
	m.cursor = 0
	m.refresh()
}

func (m *tuiModel) commitInput() {
	text := strings.TrimSpace(m.inputText)
	switch m.mode {
	case inputSearch:
		m.search = text
	case inputNewTask:
		if text != "" {
			added, err := m.store.Add(task.Draft{Title: text})
			if err != nil {
				m.status = err.Error()
				break
			}
			if m.recordAndSave("add", added.ID, added.Title) {
				m.status = fmt.Sprintf("Created task %s.", added.ID)
			}
		}
	case inputRename:
		if t, ok := m.selected(); ok && text != "" {
			updated, err := m.store.Update(t.ID, task.Patch{Title: &text})
			if err != nil {
				m.status = err.Error()
				break
			}
			if m.recordAndSave("update", updated.ID, updated.Title) {
				m.status = fmt.Sprintf("Updated task %s.", updated.ID)
			}
		}
	}
	m.mode = inputNone
	m.inputText = ""
	m.refresh()
}

func (m *tuiModel) toggleSelected() {
	t, ok := m.selected()
	if !ok {
		m.status = "Select a task to toggle."
		return
	}
	toggled, err := m.store.ToggleDone(t.ID)
	if err != nil {
		m.status = err.Error()
		return
	}
	if m.recordAndSave("toggle", toggled.ID, toggled.Title) {
		m.status = fmt.Sprintf("Toggled task %s to %s.", toggled.ID, toggled.Status)
	}
	m.refresh()
}

func (m *tuiModel) deleteSelected() {
	t, ok := m.selected()
	if !ok {
		m.status = "Select a task to delete."
		return
	}
	if err := m.store.Delete(t.ID); err != nil {
		m.status = err.Error()
		return
	}
	if m.recordAndSave("delete", t.ID, t.Title) {
		m.status = fmt.Sprintf("Deleted task %s. Press u to undo.", t.ID)
	}
	if m.cursor > 0 {
		m.cursor--
	}
	m.refresh()
}

func (m *tuiModel) undoDelete() {
	restored, ok := m.store.UndoDelete()
	if !ok {
		m.status = "Nothing to undo."
		return
	}
	if m.recordAndSave("undo", restored.ID, restored.Title) {
		m.status = fmt.Sprintf("Restored task as %s.", restored.ID)
	}
	m.refresh()
}

// recordAndSave persists the snapshot and appends to the activity log.
// Returns false on save failure, setting fatalErr so Update quits.
func (m *tuiModel) recordAndSave(op, id, title string) bool {
	_ = m.activity.Record(logging.Entry{Op: op, TaskID: id, Title: title})
	if err := m.store.Snapshot().Save(m.cfg.DataFile); err != nil {
		m.fatalErr = err
		m.status = err.Error()
		return false
	}
	return true
}

func (m *tuiModel) selected() (task.Task, bool) {
	if m.cursor < 0 || m.cursor >= len(m.view) {
		return task.Task{}, false
	}
	return m.view[m.cursor], true
}

func (m *tuiModel) refresh() {
	m.view = m.store.List(task.Query{
		Text:      m.search,
		Priority:  m.filterPriority,
		Status:    m.filterStatus,
		SmartSort: m.cfg.SmartSort,
	})
	if m.cursor >= len(m.view) {
		m.cursor = len(m.view) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m *tuiModel) refreshStatus() {
	m.refresh()
	pending := 0
	for _, t := range m.view {
		if !t.Done() {
			pending++
		}
	}
	m.status = fmt.Sprintf("%d shown | %d pending | Filters: Priority=%s, Status=%s",
		len(m.view), pending, priorityLabel(m.filterPriority), statusLabel(m.filterStatus))
}

func (m *tuiModel) View() string {
	var b strings.Builder
	writeTitle(&b)

	if m.showHelp {
		writeHelp(&b)
		writeFooter(&b)
		return b.String()
	}

	writeFilterLine(&b, m.search, m.filterPriority, m.filterStatus)
	writeTable(&b, m.view, m.cursor)

	if m.mode != inputNone {
		b.WriteString("\n" + inputPrompt(m.mode) + m.inputText + "_\n")
	}

	b.WriteString("\n" + m.status + "\n")
	writeFooter(&b)
	return b.String()
}

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func cyclePriority(p *task.Priority) *task.Priority {
	order := task.Priorities()
	if p == nil {
		v := order[0]
		return &v
	}
	for i, candidate := range order {
		if *p == candidate && i < len(order)-1 {
			v := order[i+1]
			return &v
		}
	}
	return nil
}

func cycleStatus(s *task.Status) *task.Status {
	order := task.Statuses()
	if s == nil {
		v := order[0]
		return &v
	}
	for i, candidate := range order {
		if *s == candidate && i < len(order)-1 {
			v := order[i+1]
			return &v
		}
	}
	return nil
}

func priorityLabel(p *task.Priority) string {
	if p == nil {
		return "All"
	}
	return string(*p)
}

func statusLabel(s *task.Status) string {
	if s == nil {
		return "All"
	}
	return string(*s)
}

func inputPrompt(mode inputMode) string {
	switch mode {
	case inputSearch:
		return "Search: "
	case inputNewTask:
		return "New task title: "
	case inputRename:
		return "New title: "
	}
	return "> "
}

func writeTitle(b *strings.Builder) {
	title := "Pro To-Do"
	b.WriteString(title + "\n")
	b.WriteString(strings.Repeat("=", len(title)) + "\n\n")
}

func writeFilterLine(b *strings.Builder, search string, p *task.Priority, s *task.Status) {
	if search == "" && p == nil && s == nil {
		return
	}
	var parts []string
	if search != "" {
		parts = append(parts, fmt.Sprintf("search %q", search))
	}
	if p != nil {
		parts = append(parts, "priority "+string(*p))
	}
	if s != nil {
		parts = append(parts, "status "+string(*s))
	}
	b.WriteString("Showing: " + strings.Join(parts, ", ") + " (0 to clear)\n\n")
}

func writeTable(b *strings.Builder, tasks []task.Task, cursor int) {
	if len(tasks) == 0 {
		b.WriteString("  No tasks. Press n to create one.\n")
		return
	}

	fmt.Fprintf(b, "      %-5s %-40s %-8s %-11s %-12s %s\n", "ID", "Task", "Priority", "Due", "Status", "Updated")
	for i, t := range tasks {
		marker := "  "
		if i == cursor {
			marker = "> "
		}
		doneMark := " "
		if t.Done() {
			doneMark = "x"
		}
		due := t.DueDate
		if due == "" {
			due = "-"
		}
		updated := "-"
		if t.UpdatedAt != nil {
			updated = t.UpdatedAt.Local().Format("2006-01-02 15:04")
		}
		title := t.Title
		if r := []rune(title); len(r) > 40 {
			title = string(r[:37]) + "..."
		}
		fmt.Fprintf(b, "%s[%s] %-5s %-40s %-8s %-11s %-12s %s\n",
			marker, doneMark, t.ID, title, t.Priority, due, t.Status, updated)
	}
}

func writeHelp(b *strings.Builder) {
	b.WriteString("Keyboard Shortcuts\n\n")
	b.WriteString("  q, ctrl+c    Quit\n")
	b.WriteString("  up/k, down/j Move selection\n")
	b.WriteString("  n            New task\n")
	b.WriteString("  e            Rename selected task\n")
	b.WriteString("  d            Toggle done\n")
	b.WriteString("  x, delete    Delete selected task\n")
	b.WriteString("  u            Undo last delete\n")
	b.WriteString("  /            Search as you type (enter to keep, esc to cancel)\n")
	b.WriteString("  p            Cycle priority filter\n")
	b.WriteString("  s            Cycle status filter\n")
	b.WriteString("  0            Clear search and filters\n")
	b.WriteString("  h, ?         Toggle this help screen\n\n")
}

func writeFooter(b *strings.Builder) {
	b.WriteString("\nPress h for help | q to quit\n")
}

// IsTTY returns true if stdout is a terminal.
func IsTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
