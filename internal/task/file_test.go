package task

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadAndSave(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "tasks.json")

	now := time.Now().UTC()
	original := &File{
		SchemaVersion: 1,
		Tasks: []Task{
			{
				ID:        "T001",
				Title:     "Buy milk",
				Priority:  PriorityMedium,
				Status:    StatusPending,
				CreatedAt: &now,
				UpdatedAt: &now,
			},
		},
	}

	if err := original.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if loaded.SchemaVersion != original.SchemaVersion {
		t.Errorf("SchemaVersion: got %d, want %d", loaded.SchemaVersion, original.SchemaVersion)
	}
	if len(loaded.Tasks) != 1 {
		t.Fatalf("Tasks count: got %d, want 1", len(loaded.Tasks))
	}
	if loaded.Tasks[0].ID != "T001" {
		t.Errorf("Task ID: got %s, want T001", loaded.Tasks[0].ID)
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	s := NewStore()
	mustAdd(t, s, Draft{Title: "Buy milk", Priority: PriorityHigh, DueDate: "2026-01-31"})
	mustAdd(t, s, Draft{Title: "Buy eggs"})

	path := filepath.Join(t.TempDir(), "tasks.json")
	if err := s.Snapshot().Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	restored := NewStore(loaded.Tasks...)
	if restored.Len() != 2 {
		t.Fatalf("restored store has %d tasks, want 2", restored.Len())
	}

	// The ID counter continues where the snapshot left off
	added := mustAdd(t, restored, Draft{Title: "Walk dog"})
	if added.ID != "T003" {
		t.Errorf("ID after restore: got %s, want T003", added.ID)
	}
}

func TestValidateMinimal(t *testing.T) {
	tests := []struct {
		name    string
		file    *File
		wantErr bool
	}{
		{
			name: "valid file",
			file: &File{
				SchemaVersion: 1,
				Tasks: []Task{
					{ID: "T001", Title: "Buy milk", Priority: PriorityHigh, Status: StatusPending},
				},
			},
			wantErr: false,
		},
		{
			name: "missing schema_version",
			file: &File{
				Tasks: []Task{{ID: "T001", Title: "Buy milk", Priority: PriorityHigh, Status: StatusPending}},
			},
			wantErr: true,
		},
		{
			name: "wrong schema_version",
			file: &File{
				SchemaVersion: 2,
				Tasks:         []Task{{ID: "T001", Title: "Buy milk", Priority: PriorityHigh, Status: StatusPending}},
			},
			wantErr: true,
		},
		{
			name: "missing tasks",
			file: &File{
				SchemaVersion: 1,
			},
			wantErr: true,
		},
		{
			name: "task missing id",
			file: &File{
				SchemaVersion: 1,
				Tasks:         []Task{{Title: "Buy milk", Priority: PriorityHigh, Status: StatusPending}},
			},
			wantErr: true,
		},
		{
			name: "task missing title",
			file: &File{
				SchemaVersion: 1,
				Tasks:         []Task{{ID: "T001", Priority: PriorityHigh, Status: StatusPending}},
			},
			wantErr: true,
		},
		{
			name: "task invalid priority",
			file: &File{
				SchemaVersion: 1,
				Tasks:         []Task{{ID: "T001", Title: "Buy milk", Priority: "Urgent", Status: StatusPending}},
			},
			wantErr: true,
		},
		{
			name: "task invalid status",
			file: &File{
				SchemaVersion: 1,
				Tasks:         []Task{{ID: "T001", Title: "Buy milk", Priority: PriorityHigh, Status: "Paused"}},
			},
			wantErr: true,
		},
		{
			name: "task invalid due date",
			file: &File{
				SchemaVersion: 1,
				Tasks:         []Task{{ID: "T001", Title: "Buy milk", Priority: PriorityHigh, Status: StatusPending, DueDate: "someday"}},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.file.Validate(ValidationOptions{})
			if result.Valid == tt.wantErr {
				t.Errorf("Validate() valid = %v, want error %v", result.Valid, tt.wantErr)
			}
		})
	}
}

func TestValidateWithSchema(t *testing.T) {
	schema := `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["schema_version", "tasks"],
  "properties": {
    "schema_version": {"const": 1},
    "tasks": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["id", "title", "priority", "status"],
        "properties": {
          "id": {"type": "string", "minLength": 1},
          "title": {"type": "string", "minLength": 1},
          "priority": {"enum": ["Low", "Medium", "High"]},
          "status": {"enum": ["Pending", "In Progress", "Done"]}
        }
      }
    }
  }
}`
	schemaPath := filepath.Join(t.TempDir(), "tasks.schema.json")
	if err := os.WriteFile(schemaPath, []byte(schema), 0644); err != nil {
		t.Fatalf("write schema: %v", err)
	}

	valid := &File{
		SchemaVersion: 1,
		Tasks: []Task{
			{ID: "T001", Title: "Buy milk", Priority: PriorityHigh, Status: StatusPending},
		},
	}
	result := valid.Validate(ValidationOptions{SchemaPath: schemaPath})
	if !result.UsedSchema {
		t.Fatal("schema validation was not used")
	}
	if !result.Valid {
		t.Errorf("Validate() reported errors for valid file: %v", result.Errors)
	}

	invalid := &File{
		SchemaVersion: 1,
		Tasks: []Task{
			{ID: "T001", Title: "Buy milk", Priority: "Urgent", Status: StatusPending},
		},
	}
	result = invalid.Validate(ValidationOptions{SchemaPath: schemaPath})
	if !result.UsedSchema {
		t.Fatal("schema validation was not used")
	}
	if result.Valid {
		t.Error("Validate() accepted invalid priority")
	}
}

func TestValidateMissingSchemaFallsBack(t *testing.T) {
	f := &File{
		SchemaVersion: 1,
		Tasks: []Task{
			{ID: "T001", Title: "Buy milk", Priority: PriorityHigh, Status: StatusPending},
		},
	}
	result := f.Validate(ValidationOptions{SchemaPath: filepath.Join(t.TempDir(), "missing.json")})
	if result.UsedSchema {
		t.Error("UsedSchema = true for missing schema file")
	}
	if !result.Valid {
		t.Errorf("fallback validation failed: %v", result.Errors)
	}
	if len(result.Warnings) == 0 {
		t.Error("expected a warning about missing schema")
	}
}
