package assistant

import "github.com/ozelders/ozelders-api/internal/storage"

// Kind tags the envelope variant.
type Kind string

const (
	KindNone               Kind = "none"
	KindStudents           Kind = "students"
	KindCount              Kind = "count"
	KindTopics             Kind = "topics"
	KindTeacherAssignments Kind = "teacher_assignments"
	KindCreatedAssignment  Kind = "created_assignment"
	KindAssigned           Kind = "assigned"
	KindAssignments        Kind = "assignments"
	KindExams              Kind = "exams"
	KindError              Kind = "error"
)

// Markers distinguish the soft "no result" outcomes. Both travel in the
// outcome message next to a none envelope and are not errors.
const (
	MarkerUnsupported     = "unsupported"
	MarkerStudentNotFound = "student_not_found"
)

// Validation messages carried by error envelopes.
const (
	MsgTitleRequired                = "title_required"
	MsgAssignmentOrStudentsRequired = "assignment_or_students_required"
	MsgAssignmentNotFound           = "assignment_not_found"
)

// Envelope is the tagged union returned for every assistant query. Kind
// selects the variant; only the fields belonging to that variant are
// populated. Envelopes are built fresh per request and never mutated
// after construction.
type Envelope struct {
	Kind Kind `json:"kind"`

	// Generic item list, typed per variant: roster entries for
	// students, topics, assignments, student assignments or exam
	// attempts.
	Items any `json:"items,omitempty"`

	// count
	Scope string `json:"scope,omitempty"`
	Value *int   `json:"value,omitempty"`

	// created_assignment
	Item *storage.Assignment `json:"item,omitempty"`

	// assigned
	AssignmentID string                `json:"assignmentId,omitempty"`
	Count        *int                  `json:"count,omitempty"`
	Students     []storage.RosterEntry `json:"students,omitempty"`

	// assignments / exams
	StudentID   string `json:"studentId,omitempty"`
	StudentName string `json:"studentName,omitempty"`
	Status      string `json:"status,omitempty"`

	// error
	Message string `json:"message,omitempty"`
}

// Outcome pairs the envelope with an optional marker message. The
// marker is set only for the soft-miss outcomes.
type Outcome struct {
	Message string    `json:"message,omitempty"`
	Result  *Envelope `json:"result"`
}

func noneOutcome(marker string) *Outcome {
	return &Outcome{Message: marker, Result: &Envelope{Kind: KindNone}}
}

func errorOutcome(message string) *Outcome {
	return &Outcome{Result: &Envelope{Kind: KindError, Message: message}}
}

func studentsEnvelope(items []storage.RosterEntry) *Envelope {
	return &Envelope{Kind: KindStudents, Items: items}
}

func countEnvelope(scope string, value int) *Envelope {
	return &Envelope{Kind: KindCount, Scope: scope, Value: &value}
}

func topicsEnvelope(items []storage.Topic) *Envelope {
	return &Envelope{Kind: KindTopics, Items: items}
}

func teacherAssignmentsEnvelope(items []storage.Assignment) *Envelope {
	return &Envelope{Kind: KindTeacherAssignments, Items: items}
}

func createdAssignmentEnvelope(item *storage.Assignment) *Envelope {
	return &Envelope{Kind: KindCreatedAssignment, Item: item}
}

func assignedEnvelope(assignmentID string, students []storage.RosterEntry) *Envelope {
	count := len(students)
	return &Envelope{
		Kind:         KindAssigned,
		AssignmentID: assignmentID,
		Count:        &count,
		Students:     students,
	}
}

func assignmentsEnvelope(student *storage.RosterEntry, status string, items []storage.StudentAssignment) *Envelope {
	if status == "" {
		status = StatusAll
	}
	return &Envelope{
		Kind:        KindAssignments,
		StudentID:   student.ID,
		StudentName: student.Name,
		Status:      status,
		Items:       items,
	}
}

func examsEnvelope(student *storage.RosterEntry, items []storage.ExamAttempt) *Envelope {
	return &Envelope{
		Kind:        KindExams,
		StudentID:   student.ID,
		StudentName: student.Name,
		Items:       items,
	}
}
