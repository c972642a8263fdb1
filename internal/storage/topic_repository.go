package storage

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// SaveTopic inserts a topic owned by the teacher. Position is assigned after
// the current maximum when not set.
func (db *DB) SaveTopic(ctx context.Context, teacherID string, topic *Topic) error {
	if topic.ID == "" {
		topic.ID = uuid.NewString()
	}
	if topic.CreatedAt == 0 {
		topic.CreatedAt = time.Now().Unix()
	}
	if topic.Position == nil {
		var next int
		query := `SELECT COALESCE(MAX(position), 0) + 1 FROM topics WHERE created_by = ?`
		if err := db.conn.QueryRowContext(ctx, query, teacherID).Scan(&next); err != nil {
			return fmt.Errorf("next topic position: %w", err)
		}
		topic.Position = &next
	}

	query := `
		INSERT INTO topics (id, name, created_by, position, is_active, created_at)
		VALUES (?, ?, ?, ?, 1, ?)
	`
	_, err := db.conn.ExecContext(ctx, query, topic.ID, topic.Name, teacherID, topic.Position, topic.CreatedAt)
	if err != nil {
		slog.ErrorContext(ctx, "failed to save topic",
			"teacher_id", teacherID,
			"error", err)
		return fmt.Errorf("failed to save topic: %w", err)
	}
	return nil
}

// ListTopics returns the teacher's active topics ordered by explicit position
// (nulls last) then creation time.
func (db *DB) ListTopics(ctx context.Context, teacherID string) ([]Topic, error) {
	query := `
		SELECT id, name, position, created_at
		  FROM topics
		 WHERE created_by = ? AND is_active = 1
		 ORDER BY position IS NULL, position, created_at
	`

	rows, err := db.conn.QueryContext(ctx, query, teacherID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to query topics",
			"teacher_id", teacherID,
			"error", err)
		return nil, fmt.Errorf("query topics: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var topics []Topic
	for rows.Next() {
		var topic Topic
		if err := rows.Scan(&topic.ID, &topic.Name, &topic.Position, &topic.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan topic: %w", err)
		}
		topics = append(topics, topic)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate topics: %w", err)
	}

	return topics, nil
}
