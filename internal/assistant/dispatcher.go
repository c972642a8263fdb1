package assistant

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	apperrors "github.com/ozelders/ozelders-api/internal/errors"
	"github.com/ozelders/ozelders-api/internal/metrics"
	"github.com/ozelders/ozelders-api/internal/storage"
)

// RoleTeacher is the only role allowed to submit assistant queries.
const RoleTeacher = "teacher"

// Intent sources, in resolution order.
const (
	SourceLLM  = "llm"
	SourceRule = "rule"
	SourceNone = "none"
)

// Caller identifies the requesting user.
type Caller struct {
	ID   string
	Role string
}

// Extractor is the model-backed classification path. Implementations
// never return an error; any failure yields nil and the dispatcher
// falls through to the rule parser.
type Extractor interface {
	Extract(ctx context.Context, text string) *Intent
}

// Store is the data surface the dispatcher operates on. *storage.DB
// satisfies it; tests substitute a fake.
type Store interface {
	GetRoster(ctx context.Context, teacherID string) ([]storage.RosterEntry, error)
	CountStudents(ctx context.Context, teacherID string) (int, error)
	ListTopics(ctx context.Context, teacherID string) ([]storage.Topic, error)
	CountActiveAssignments(ctx context.Context, teacherID string) (int, error)
	ListTeacherAssignments(ctx context.Context, teacherID string, dateFrom, dateTo *string) ([]storage.Assignment, error)
	CreateAssignment(ctx context.Context, teacherID, title string, dueDate, description *string) (*storage.Assignment, error)
	FindAssignmentByRef(ctx context.Context, teacherID, ref string) (*storage.Assignment, error)
	LinkAssignee(ctx context.Context, assignmentID, studentID string) error
	ListStudentAssignments(ctx context.Context, studentID string) ([]storage.StudentAssignment, error)
	ListExamAttempts(ctx context.Context, studentID string) ([]storage.ExamAttempt, error)
}

// Dispatcher is the single entry point for assistant queries. It holds
// no per-request state and is safe for concurrent use.
type Dispatcher struct {
	store     Store
	extractor Extractor
	metrics   *metrics.Metrics
}

// NewDispatcher creates a dispatcher. The extractor and metrics may be
// nil; without an extractor every query goes straight to the rule
// parser.
func NewDispatcher(store Store, extractor Extractor, m *metrics.Metrics) *Dispatcher {
	return &Dispatcher{
		store:     store,
		extractor: extractor,
		metrics:   m,
	}
}

// Handle resolves the text into an intent, executes the matching data
// operation scoped to the caller, and returns the result envelope.
// It returns an error only for access violations, missing input, and
// data-store failures; every other outcome is a successful envelope.
func (d *Dispatcher) Handle(ctx context.Context, caller Caller, text string) (*Outcome, error) {
	if caller.Role != RoleTeacher {
		return nil, apperrors.ErrForbidden
	}
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: text required", apperrors.ErrInvalidInput)
	}

	intent, source := d.resolveIntent(ctx, text)
	d.recordRequest(source, intent)
	if intent == nil {
		return noneOutcome(MarkerUnsupported), nil
	}

	slog.DebugContext(ctx, "assistant intent resolved",
		"source", source,
		"action", intent.Action,
		"teacher_id", caller.ID)

	// Every action operates on the caller's roster, loaded once.
	roster, err := d.store.GetRoster(ctx, caller.ID)
	if err != nil {
		return nil, d.storeErr("roster", err)
	}

	switch intent.Action {
	case ActionListStudents:
		return &Outcome{Result: studentsEnvelope(roster)}, nil

	case ActionCountStudents:
		count, err := d.store.CountStudents(ctx, caller.ID)
		if err != nil {
			return nil, d.storeErr("count_students", err)
		}
		return &Outcome{Result: countEnvelope("students", count)}, nil

	case ActionListTopics:
		topics, err := d.store.ListTopics(ctx, caller.ID)
		if err != nil {
			return nil, d.storeErr("topics", err)
		}
		return &Outcome{Result: topicsEnvelope(topics)}, nil

	case ActionCountAssignments:
		count, err := d.store.CountActiveAssignments(ctx, caller.ID)
		if err != nil {
			return nil, d.storeErr("count_assignments", err)
		}
		return &Outcome{Result: countEnvelope("assignments", count)}, nil

	case ActionListTeacherAssignments:
		items, err := d.store.ListTeacherAssignments(ctx, caller.ID,
			optional(intent.DateFrom), optional(intent.DateTo))
		if err != nil {
			return nil, d.storeErr("teacher_assignments", err)
		}
		return &Outcome{Result: teacherAssignmentsEnvelope(items)}, nil

	case ActionCreateAssignment:
		return d.createAssignment(ctx, caller, intent)

	case ActionAssignStudents:
		return d.assignStudents(ctx, caller, intent, roster)

	case ActionListAssignments, ActionListExams:
		return d.studentScoped(ctx, intent, roster)
	}

	// Schema drift from the model: unknown action values are a soft
	// miss, not an error.
	return noneOutcome(MarkerUnsupported), nil
}

// resolveIntent tries the extractor first and the rule parser second.
func (d *Dispatcher) resolveIntent(ctx context.Context, text string) (*Intent, string) {
	if d.extractor != nil {
		if intent := d.extractor.Extract(ctx, text); intent.Validate() {
			return intent, SourceLLM
		}
	}
	if intent := ParseRules(text); intent != nil {
		return intent, SourceRule
	}
	return nil, SourceNone
}

func (d *Dispatcher) createAssignment(ctx context.Context, caller Caller, intent *Intent) (*Outcome, error) {
	title := strings.TrimSpace(intent.Title)
	if title == "" {
		return errorOutcome(MsgTitleRequired), nil
	}
	created, err := d.store.CreateAssignment(ctx, caller.ID, title,
		optional(intent.DueDate), optional(intent.Description))
	if err != nil {
		return nil, d.storeErr("create_assignment", err)
	}
	return &Outcome{Result: createdAssignmentEnvelope(created)}, nil
}

// assignStudents links every roster student matching one of the name
// fragments to the referenced assignment. Links are idempotent inserts
// and each one is its own unit of work; a failed link is logged and
// skipped, never aborting the rest of the batch.
func (d *Dispatcher) assignStudents(ctx context.Context, caller Caller, intent *Intent, roster []storage.RosterEntry) (*Outcome, error) {
	ref := strings.TrimSpace(intent.AssignmentRef)
	if ref == "" || len(intent.StudentNames) == 0 {
		return errorOutcome(MsgAssignmentOrStudentsRequired), nil
	}

	target, err := d.store.FindAssignmentByRef(ctx, caller.ID, ref)
	if err != nil {
		return nil, d.storeErr("assign_students", err)
	}
	if target == nil {
		return errorOutcome(MsgAssignmentNotFound), nil
	}

	selected := FilterStudents(intent.StudentNames, roster)
	linked := make([]storage.RosterEntry, 0, len(selected))
	for _, student := range selected {
		if err := d.store.LinkAssignee(ctx, target.ID, student.ID); err != nil {
			slog.WarnContext(ctx, "failed to link assignee",
				"assignment_id", target.ID,
				"student_id", student.ID,
				"error", err)
			continue
		}
		linked = append(linked, student)
	}

	return &Outcome{Result: assignedEnvelope(target.ID, linked)}, nil
}

// studentScoped handles the two actions that need a resolved target
// student. A missing or unmatched name yields a soft miss; the
// dispatcher never guesses.
func (d *Dispatcher) studentScoped(ctx context.Context, intent *Intent, roster []storage.RosterEntry) (*Outcome, error) {
	target := FindStudent(intent.StudentName, roster)
	if target == nil {
		return noneOutcome(MarkerStudentNotFound), nil
	}

	if intent.Action == ActionListExams {
		attempts, err := d.store.ListExamAttempts(ctx, target.ID)
		if err != nil {
			return nil, d.storeErr("exams", err)
		}
		return &Outcome{Result: examsEnvelope(target, attempts)}, nil
	}

	items, err := d.store.ListStudentAssignments(ctx, target.ID)
	if err != nil {
		return nil, d.storeErr("assignments", err)
	}
	if intent.Status != "" && intent.Status != StatusAll {
		filtered := items[:0]
		for _, item := range items {
			if item.Status == intent.Status {
				filtered = append(filtered, item)
			}
		}
		items = filtered
	}
	return &Outcome{Result: assignmentsEnvelope(target, intent.Status, items)}, nil
}

func (d *Dispatcher) recordRequest(source string, intent *Intent) {
	if d.metrics == nil {
		return
	}
	action := "none"
	if intent != nil {
		action = string(intent.Action)
	}
	d.metrics.RecordAssistantRequest(source, action)
}

func (d *Dispatcher) storeErr(action string, err error) error {
	if d.metrics != nil {
		d.metrics.RecordStoreError(action)
	}
	return apperrors.NewStoreError(action, err)
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
