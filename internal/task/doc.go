// Package task holds the task store and the snapshot file format.
//
// The snapshot format (tasks.json) follows the schema defined in
// tasks.schema.json:
//
//	{
//	  "schema_version": 1,
//	  "tasks": [
//	    {
//	      "id": "T001",
//	      "title": "Buy milk",
//	      "notes": "Optional free-form notes",
//	      "priority": "Medium",
//	      "due_date": "2026-01-31",
//	      "status": "Pending",
//	      "created_at": "2026-01-01T00:00:00Z",
//	      "updated_at": "2026-01-01T00:00:00Z"
//	    }
//	  ]
//	}
//
// # Validation
//
// The package supports two validation modes:
//
// 1. JSON Schema validation (when a schema file is provided):
//   - Full validation against JSON Schema draft-2020-12
//
// 2. Minimal fallback validation (when no schema is available):
//   - Basic structural checks (schema_version, tasks presence)
//   - Task field validation (id, title, priority enum, status enum, due date)
//
// # Task Status Values
//
//   - "Pending": not started
//   - "In Progress": being worked on
//   - "Done": complete
//
// # Priority Values
//
//   - "High", "Medium", "Low"
//
// # File Format
//
// When writing snapshots, the package uses:
//   - 2-space indentation
//   - Trailing newline
//   - Stable key ordering (via JSON marshaling)
package task
