// Package storage provides SQLite-backed persistence for accounts,
// rosters, topics, assignments, and exam attempts.
package storage

import (
	"context"
)

// UserRepository defines the interface for account and roster operations.
type UserRepository interface {
	SaveUser(ctx context.Context, user *User) error
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	LinkStudent(ctx context.Context, teacherID, studentID string) error
	IsLinked(ctx context.Context, teacherID, studentID string) (bool, error)
	GetRoster(ctx context.Context, teacherID string) ([]RosterEntry, error)
	CountStudents(ctx context.Context, teacherID string) (int, error)
}

// TopicRepository defines the interface for topic operations.
type TopicRepository interface {
	SaveTopic(ctx context.Context, teacherID string, topic *Topic) error
	ListTopics(ctx context.Context, teacherID string) ([]Topic, error)
}

// AssignmentRepository defines the interface for assignment operations.
type AssignmentRepository interface {
	CreateAssignment(ctx context.Context, teacherID, title string, dueDate, description *string) (*Assignment, error)
	CountActiveAssignments(ctx context.Context, teacherID string) (int, error)
	ListTeacherAssignments(ctx context.Context, teacherID string, dateFrom, dateTo *string) ([]Assignment, error)
	FindAssignmentByRef(ctx context.Context, teacherID, ref string) (*Assignment, error)
	LinkAssignee(ctx context.Context, assignmentID, studentID string) error
	SetAssignmentStatus(ctx context.Context, assignmentID, studentID, status string) error
	SaveAssignmentFile(ctx context.Context, assignmentID string, file *AssignmentFile) error
	ListStudentAssignments(ctx context.Context, studentID string) ([]StudentAssignment, error)
}

// ExamRepository defines the interface for exam attempt operations.
type ExamRepository interface {
	SaveExamAttempt(ctx context.Context, studentID string, attempt *ExamAttempt) error
	ListExamAttempts(ctx context.Context, studentID string) ([]ExamAttempt, error)
}

// Repository is the aggregate interface combining all repository interfaces.
// The DB type implements it, providing a single entry point for data access.
type Repository interface {
	UserRepository
	TopicRepository
	AssignmentRepository
	ExamRepository
	Close() error
}

// Ensure DB implements all repository interfaces at compile time.
var (
	_ UserRepository       = (*DB)(nil)
	_ TopicRepository      = (*DB)(nil)
	_ AssignmentRepository = (*DB)(nil)
	_ ExamRepository       = (*DB)(nil)
	_ Repository           = (*DB)(nil)
)
