package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// SaveUser inserts or updates a user record. A zero ID gets a generated one;
// the resolved ID is written back to the model.
func (db *DB) SaveUser(ctx context.Context, user *User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.CreatedAt == 0 {
		user.CreatedAt = time.Now().Unix()
	}

	query := `
		INSERT INTO users (id, name, email, role, can_login, password_hash, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			email = excluded.email,
			role = excluded.role,
			can_login = excluded.can_login,
			password_hash = excluded.password_hash
	`
	_, err := db.conn.ExecContext(ctx, query,
		user.ID, user.Name, nullString(user.Email), user.Role,
		boolToInt(user.CanLogin), nullString(user.PasswordHash), user.CreatedAt)
	if err != nil {
		slog.ErrorContext(ctx, "failed to save user",
			"user_id", user.ID,
			"error", err)
		return fmt.Errorf("failed to save user: %w", err)
	}
	return nil
}

// GetUserByEmail retrieves a login-enabled user by email (case-insensitive).
// Returns nil when no such user exists.
func (db *DB) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	query := `
		SELECT id, name, COALESCE(email, ''), role, can_login, COALESCE(password_hash, ''), created_at
		  FROM users
		 WHERE lower(email) = lower(?) AND can_login = 1
		 LIMIT 1
	`

	var user User
	var canLogin int
	err := db.conn.QueryRowContext(ctx, query, email).Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.Role,
		&canLogin,
		&user.PasswordHash,
		&user.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to query user by email", "error", err)
		return nil, fmt.Errorf("query user by email: %w", err)
	}
	user.CanLogin = canLogin != 0

	return &user, nil
}

// LinkStudent creates the teacher-student link. Idempotent.
func (db *DB) LinkStudent(ctx context.Context, teacherID, studentID string) error {
	query := `
		INSERT OR IGNORE INTO teacher_students (teacher_id, student_id, created_at)
		VALUES (?, ?, ?)
	`
	_, err := db.conn.ExecContext(ctx, query, teacherID, studentID, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("failed to link student: %w", err)
	}
	return nil
}

// IsLinked reports whether the student belongs to the teacher's roster.
func (db *DB) IsLinked(ctx context.Context, teacherID, studentID string) (bool, error) {
	query := `SELECT 1 FROM teacher_students WHERE teacher_id = ? AND student_id = ?`

	var one int
	err := db.conn.QueryRowContext(ctx, query, teacherID, studentID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("query teacher-student link: %w", err)
	}
	return true, nil
}

// GetRoster returns the students linked to the teacher, in stable roster
// order (link creation time, then student id as tiebreaker). The secondary
// sort keeps first-match entity resolution deterministic.
func (db *DB) GetRoster(ctx context.Context, teacherID string) ([]RosterEntry, error) {
	query := `
		SELECT u.id, u.name, COALESCE(u.email, '')
		  FROM teacher_students ts
		  JOIN users u ON u.id = ts.student_id
		 WHERE ts.teacher_id = ?
		 ORDER BY ts.created_at, u.id
	`

	start := time.Now()
	rows, err := db.conn.QueryContext(ctx, query, teacherID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to query roster",
			"teacher_id", teacherID,
			"error", err)
		return nil, fmt.Errorf("query roster: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var roster []RosterEntry
	for rows.Next() {
		var entry RosterEntry
		if err := rows.Scan(&entry.ID, &entry.Name, &entry.Email); err != nil {
			return nil, fmt.Errorf("scan roster entry: %w", err)
		}
		roster = append(roster, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate roster: %w", err)
	}

	if duration := time.Since(start); duration > 100*time.Millisecond {
		slog.WarnContext(ctx, "slow database operation",
			"operation", "GetRoster",
			"duration_ms", duration.Milliseconds(),
			"teacher_id", teacherID)
	}

	return roster, nil
}

// CountStudents returns the size of the teacher's roster.
func (db *DB) CountStudents(ctx context.Context, teacherID string) (int, error) {
	query := `SELECT COUNT(*) FROM teacher_students WHERE teacher_id = ?`

	var count int
	if err := db.conn.QueryRowContext(ctx, query, teacherID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count students: %w", err)
	}
	return count, nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
