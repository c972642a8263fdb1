package storage

import (
	"context"
	"database/sql"
	"fmt"
)

// InitSchema creates all necessary tables and indexes.
// Note: WAL mode is configured in db.go.
func InitSchema(db *sql.DB) error {
	if err := createUsersTable(db); err != nil {
		return err
	}

	if err := createTeacherStudentsTable(db); err != nil {
		return err
	}

	if err := createTopicsTable(db); err != nil {
		return err
	}

	if err := createAssignmentsTable(db); err != nil {
		return err
	}

	if err := createExamAttemptsTable(db); err != nil {
		return err
	}

	return createStudentAssignmentsView(db)
}

func createUsersTable(db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT UNIQUE,
		role TEXT CHECK(role IN ('teacher', 'student')) NOT NULL,
		can_login INTEGER NOT NULL DEFAULT 0,
		password_hash TEXT,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_users_role ON users(role);
	`

	if _, err := db.ExecContext(context.Background(), query); err != nil {
		return fmt.Errorf("failed to create users table: %w", err)
	}

	return nil
}

func createTeacherStudentsTable(db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS teacher_students (
		teacher_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		student_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		created_at INTEGER NOT NULL,
		PRIMARY KEY (teacher_id, student_id)
	);
	CREATE INDEX IF NOT EXISTS idx_teacher_students_student ON teacher_students(student_id);
	`

	if _, err := db.ExecContext(context.Background(), query); err != nil {
		return fmt.Errorf("failed to create teacher_students table: %w", err)
	}

	return nil
}

func createTopicsTable(db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS topics (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		created_by TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		position INTEGER,
		is_active INTEGER NOT NULL DEFAULT 1,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_topics_owner ON topics(created_by, is_active);
	`

	if _, err := db.ExecContext(context.Background(), query); err != nil {
		return fmt.Errorf("failed to create topics table: %w", err)
	}

	return nil
}

func createAssignmentsTable(db *sql.DB) error {
	// assignment_assignees carries a UNIQUE pair so link inserts can be
	// INSERT OR IGNORE: concurrent duplicate assignment attempts must not
	// error and must not double-link.
	query := `
	CREATE TABLE IF NOT EXISTS assignments (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		due_date TEXT,
		description TEXT,
		created_by TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		is_active INTEGER NOT NULL DEFAULT 1,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_assignments_owner ON assignments(created_by, is_active);
	CREATE INDEX IF NOT EXISTS idx_assignments_due ON assignments(due_date);

	CREATE TABLE IF NOT EXISTS assignment_assignees (
		assignment_id TEXT NOT NULL REFERENCES assignments(id) ON DELETE CASCADE,
		student_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		created_at INTEGER NOT NULL,
		PRIMARY KEY (assignment_id, student_id)
	);
	CREATE INDEX IF NOT EXISTS idx_assignment_assignees_student ON assignment_assignees(student_id);

	CREATE TABLE IF NOT EXISTS assignment_status (
		assignment_id TEXT NOT NULL REFERENCES assignments(id) ON DELETE CASCADE,
		student_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		status TEXT CHECK(status IN ('pending', 'done')) NOT NULL,
		completed_at INTEGER,
		PRIMARY KEY (assignment_id, student_id)
	);

	CREATE TABLE IF NOT EXISTS assignment_files (
		id TEXT PRIMARY KEY,
		assignment_id TEXT NOT NULL REFERENCES assignments(id) ON DELETE CASCADE,
		original_name TEXT NOT NULL,
		mime_type TEXT,
		file_size INTEGER,
		url TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_assignment_files_assignment ON assignment_files(assignment_id);
	`

	if _, err := db.ExecContext(context.Background(), query); err != nil {
		return fmt.Errorf("failed to create assignments tables: %w", err)
	}

	return nil
}

func createExamAttemptsTable(db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS exam_attempts (
		id TEXT PRIMARY KEY,
		student_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		taken_at TEXT,
		title TEXT,
		mat_net REAL,
		total_net REAL,
		duration_minutes INTEGER,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_exam_attempts_student ON exam_attempts(student_id, taken_at);
	`

	if _, err := db.ExecContext(context.Background(), query); err != nil {
		return fmt.Errorf("failed to create exam_attempts table: %w", err)
	}

	return nil
}

// createStudentAssignmentsView defines the per-student assignment view.
// Status defaults to 'pending' until an explicit assignment_status row exists.
func createStudentAssignmentsView(db *sql.DB) error {
	query := `
	CREATE VIEW IF NOT EXISTS v_student_assignments AS
	SELECT aa.student_id       AS student_id,
	       a.id                AS assignment_id,
	       a.title             AS title,
	       a.due_date          AS due_date,
	       a.created_by        AS created_by,
	       COALESCE(s.status, 'pending') AS status,
	       s.completed_at      AS completed_at
	  FROM assignment_assignees aa
	  JOIN assignments a ON a.id = aa.assignment_id
	  LEFT JOIN assignment_status s
	    ON s.assignment_id = aa.assignment_id AND s.student_id = aa.student_id
	 WHERE a.is_active = 1;
	`

	if _, err := db.ExecContext(context.Background(), query); err != nil {
		return fmt.Errorf("failed to create v_student_assignments view: %w", err)
	}

	return nil
}
