package storage

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// CreateAssignment inserts a new assignment owned by the teacher and returns
// the created record. Title must already be validated as non-empty.
func (db *DB) CreateAssignment(ctx context.Context, teacherID, title string, dueDate, description *string) (*Assignment, error) {
	a := &Assignment{
		ID:          uuid.NewString(),
		Title:       title,
		DueDate:     dueDate,
		Description: description,
		CreatedBy:   teacherID,
		CreatedAt:   time.Now().Unix(),
	}

	query := `
		INSERT INTO assignments (id, title, due_date, description, created_by, is_active, created_at)
		VALUES (?, ?, ?, ?, ?, 1, ?)
	`
	_, err := db.conn.ExecContext(ctx, query, a.ID, a.Title, a.DueDate, a.Description, a.CreatedBy, a.CreatedAt)
	if err != nil {
		slog.ErrorContext(ctx, "failed to create assignment",
			"teacher_id", teacherID,
			"error", err)
		return nil, fmt.Errorf("failed to create assignment: %w", err)
	}

	return a, nil
}

// CountActiveAssignments returns the number of active assignments owned by the teacher.
func (db *DB) CountActiveAssignments(ctx context.Context, teacherID string) (int, error) {
	query := `SELECT COUNT(*) FROM assignments WHERE created_by = ? AND is_active = 1`

	var count int
	if err := db.conn.QueryRowContext(ctx, query, teacherID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count assignments: %w", err)
	}
	return count, nil
}

// ListTeacherAssignments returns the teacher's active assignments, optionally
// bounded by an inclusive due-date range. Ordered by due date ascending with
// nulls last, then creation time descending.
func (db *DB) ListTeacherAssignments(ctx context.Context, teacherID string, dateFrom, dateTo *string) ([]Assignment, error) {
	var sb strings.Builder
	sb.WriteString(`
		SELECT id, title, due_date, description, created_by, created_at
		  FROM assignments
		 WHERE created_by = ? AND is_active = 1`)
	args := []any{teacherID}

	if dateFrom != nil && *dateFrom != "" {
		sb.WriteString(` AND due_date >= ?`)
		args = append(args, *dateFrom)
	}
	if dateTo != nil && *dateTo != "" {
		sb.WriteString(` AND due_date <= ?`)
		args = append(args, *dateTo)
	}
	sb.WriteString(` ORDER BY due_date IS NULL, due_date, created_at DESC`)

	rows, err := db.conn.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		slog.ErrorContext(ctx, "failed to query teacher assignments",
			"teacher_id", teacherID,
			"error", err)
		return nil, fmt.Errorf("query teacher assignments: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var items []Assignment
	for rows.Next() {
		var a Assignment
		if err := rows.Scan(&a.ID, &a.Title, &a.DueDate, &a.Description, &a.CreatedBy, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan assignment: %w", err)
		}
		items = append(items, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate assignments: %w", err)
	}

	return items, nil
}

// FindAssignmentByRef resolves an assignment reference scoped to the teacher.
// The reference matches on exact case-insensitive title OR exact id; it is
// never a substring match, unlike student-name resolution. Title comparison
// runs in Go because SQLite's lower() folds ASCII only and would miss
// Turkish letters like Ö and İ.
func (db *DB) FindAssignmentByRef(ctx context.Context, teacherID, ref string) (*Assignment, error) {
	query := `
		SELECT id, title, due_date, description, created_by, created_at
		  FROM assignments
		 WHERE created_by = ?
		 ORDER BY created_at, id
	`

	rows, err := db.conn.QueryContext(ctx, query, teacherID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to resolve assignment reference",
			"teacher_id", teacherID,
			"error", err)
		return nil, fmt.Errorf("resolve assignment reference: %w", err)
	}
	defer func() { _ = rows.Close() }()

	want := foldTurkish(ref)
	for rows.Next() {
		var a Assignment
		if err := rows.Scan(&a.ID, &a.Title, &a.DueDate, &a.Description, &a.CreatedBy, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan assignment: %w", err)
		}
		if a.ID == ref || foldTurkish(a.Title) == want {
			return &a, nil
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate assignments: %w", err)
	}

	return nil, nil
}

// foldTurkish lowercases with Turkish casing rules so dotted/dotless I
// and other non-ASCII letters compare correctly. A cases.Caser carries
// state, so one is built per call.
func foldTurkish(s string) string {
	return cases.Lower(language.Turkish).String(s)
}

// LinkAssignee attaches a student to an assignment. Idempotent: repeated
// inserts for the same (assignment, student) pair are silently ignored.
func (db *DB) LinkAssignee(ctx context.Context, assignmentID, studentID string) error {
	query := `
		INSERT OR IGNORE INTO assignment_assignees (assignment_id, student_id, created_at)
		VALUES (?, ?, ?)
	`
	_, err := db.conn.ExecContext(ctx, query, assignmentID, studentID, time.Now().Unix())
	if err != nil {
		slog.ErrorContext(ctx, "failed to link assignee",
			"assignment_id", assignmentID,
			"student_id", studentID,
			"error", err)
		return fmt.Errorf("failed to link assignee: %w", err)
	}
	return nil
}

// SetAssignmentStatus upserts the per-student status for an assignment.
func (db *DB) SetAssignmentStatus(ctx context.Context, assignmentID, studentID, status string) error {
	var completedAt *int64
	if status == "done" {
		now := time.Now().Unix()
		completedAt = &now
	}

	query := `
		INSERT INTO assignment_status (assignment_id, student_id, status, completed_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(assignment_id, student_id) DO UPDATE SET
			status = excluded.status,
			completed_at = excluded.completed_at
	`
	_, err := db.conn.ExecContext(ctx, query, assignmentID, studentID, status, completedAt)
	if err != nil {
		return fmt.Errorf("failed to set assignment status: %w", err)
	}
	return nil
}

// SaveAssignmentFile records a file attached to an assignment.
func (db *DB) SaveAssignmentFile(ctx context.Context, assignmentID string, file *AssignmentFile) error {
	if file.ID == "" {
		file.ID = uuid.NewString()
	}

	query := `
		INSERT INTO assignment_files (id, assignment_id, original_name, url)
		VALUES (?, ?, ?, ?)
	`
	_, err := db.conn.ExecContext(ctx, query, file.ID, assignmentID, file.Name, file.URL)
	if err != nil {
		return fmt.Errorf("failed to save assignment file: %w", err)
	}
	return nil
}

// ListStudentAssignments returns all assignments visible to the student via
// the per-student view, each enriched with its attached files. Ordered by due
// date ascending with nulls last, then assignment id.
func (db *DB) ListStudentAssignments(ctx context.Context, studentID string) ([]StudentAssignment, error) {
	query := `
		SELECT v.student_id, v.assignment_id, v.title, v.due_date, v.created_by,
		       v.status, v.completed_at, a.description
		  FROM v_student_assignments v
		  JOIN assignments a ON a.id = v.assignment_id
		 WHERE v.student_id = ?
		 ORDER BY v.due_date IS NULL, v.due_date, v.assignment_id
	`

	rows, err := db.conn.QueryContext(ctx, query, studentID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to query student assignments",
			"student_id", studentID,
			"error", err)
		return nil, fmt.Errorf("query student assignments: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var items []StudentAssignment
	for rows.Next() {
		var item StudentAssignment
		if err := rows.Scan(&item.StudentID, &item.AssignmentID, &item.Title, &item.DueDate,
			&item.CreatedBy, &item.Status, &item.CompletedAt, &item.Description); err != nil {
			return nil, fmt.Errorf("scan student assignment: %w", err)
		}
		item.Files = []AssignmentFile{}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate student assignments: %w", err)
	}

	if err := db.attachFiles(ctx, items); err != nil {
		return nil, err
	}

	return items, nil
}

// attachFiles loads the files for each assignment in items.
func (db *DB) attachFiles(ctx context.Context, items []StudentAssignment) error {
	if len(items) == 0 {
		return nil
	}

	ids := make([]any, 0, len(items))
	placeholders := make([]string, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.AssignmentID)
		placeholders = append(placeholders, "?")
	}

	query := fmt.Sprintf(`
		SELECT id, assignment_id, original_name, url
		  FROM assignment_files
		 WHERE assignment_id IN (%s)
		 ORDER BY id`, strings.Join(placeholders, ", "))

	rows, err := db.conn.QueryContext(ctx, query, ids...)
	if err != nil {
		return fmt.Errorf("query assignment files: %w", err)
	}
	defer func() { _ = rows.Close() }()

	filesByAssignment := make(map[string][]AssignmentFile)
	for rows.Next() {
		var file AssignmentFile
		var assignmentID string
		if err := rows.Scan(&file.ID, &assignmentID, &file.Name, &file.URL); err != nil {
			return fmt.Errorf("scan assignment file: %w", err)
		}
		filesByAssignment[assignmentID] = append(filesByAssignment[assignmentID], file)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate assignment files: %w", err)
	}

	for i := range items {
		if files, ok := filesByAssignment[items[i].AssignmentID]; ok {
			items[i].Files = files
		}
	}

	return nil
}
