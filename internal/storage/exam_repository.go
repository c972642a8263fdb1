package storage

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// SaveExamAttempt records a mock-exam attempt for a student.
func (db *DB) SaveExamAttempt(ctx context.Context, studentID string, attempt *ExamAttempt) error {
	if attempt.ID == "" {
		attempt.ID = uuid.NewString()
	}
	if attempt.CreatedAt == 0 {
		attempt.CreatedAt = time.Now().Unix()
	}

	query := `
		INSERT INTO exam_attempts (id, student_id, taken_at, title, mat_net, total_net, duration_minutes, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := db.conn.ExecContext(ctx, query,
		attempt.ID, studentID, attempt.TakenAt, attempt.Title,
		attempt.MatNet, attempt.TotalNet, attempt.DurationMinutes, attempt.CreatedAt)
	if err != nil {
		slog.ErrorContext(ctx, "failed to save exam attempt",
			"student_id", studentID,
			"error", err)
		return fmt.Errorf("failed to save exam attempt: %w", err)
	}
	return nil
}

// ListExamAttempts returns the student's exam attempts ordered by exam date
// descending, then record creation time descending.
func (db *DB) ListExamAttempts(ctx context.Context, studentID string) ([]ExamAttempt, error) {
	query := `
		SELECT id, taken_at, COALESCE(title, ''), mat_net, total_net, created_at
		  FROM exam_attempts
		 WHERE student_id = ?
		 ORDER BY taken_at DESC, created_at DESC
	`

	rows, err := db.conn.QueryContext(ctx, query, studentID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to query exam attempts",
			"student_id", studentID,
			"error", err)
		return nil, fmt.Errorf("query exam attempts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var attempts []ExamAttempt
	for rows.Next() {
		var attempt ExamAttempt
		if err := rows.Scan(&attempt.ID, &attempt.TakenAt, &attempt.Title,
			&attempt.MatNet, &attempt.TotalNet, &attempt.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan exam attempt: %w", err)
		}
		attempts = append(attempts, attempt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate exam attempts: %w", err)
	}

	return attempts, nil
}
