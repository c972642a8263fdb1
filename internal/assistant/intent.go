// Package assistant maps free-form Turkish teacher queries onto a closed
// set of data operations. Classification runs through an optional LLM
// extractor first and a deterministic keyword parser second; both produce
// the same Intent shape.
package assistant

// Action identifies one of the recognized assistant operations.
type Action string

const (
	ActionListAssignments        Action = "list_assignments"
	ActionListExams              Action = "list_exams"
	ActionListStudents           Action = "list_students"
	ActionCountStudents          Action = "count_students"
	ActionListTopics             Action = "list_topics"
	ActionCountAssignments       Action = "count_assignments"
	ActionListTeacherAssignments Action = "list_teacher_assignments"
	ActionCreateAssignment       Action = "create_assignment"
	ActionAssignStudents         Action = "assign_students"
)

// Valid reports whether the action is one of the recognized values.
func (a Action) Valid() bool {
	switch a {
	case ActionListAssignments, ActionListExams, ActionListStudents,
		ActionCountStudents, ActionListTopics, ActionCountAssignments,
		ActionListTeacherAssignments, ActionCreateAssignment, ActionAssignStudents:
		return true
	}
	return false
}

// Assignment status filter values.
const (
	StatusDone    = "done"
	StatusPending = "pending"
	StatusAll     = "all"
)

// Intent is the structured form of a parsed request. Model output is
// unmarshaled into this shape and must pass Validate before use; the
// rule parser fills only the fields it can derive from keywords.
type Intent struct {
	Action        Action   `json:"action"`
	StudentName   string   `json:"student_name,omitempty"`
	Status        string   `json:"status,omitempty"`
	Title         string   `json:"title,omitempty"`
	DueDate       string   `json:"due_date,omitempty"`
	Description   string   `json:"description,omitempty"`
	AssignmentRef string   `json:"assignment_ref,omitempty"`
	StudentNames  []string `json:"student_names,omitempty"`
	DateFrom      string   `json:"date_from,omitempty"`
	DateTo        string   `json:"date_to,omitempty"`
}

// Validate checks enum membership on fields the model is free to drift on.
// An unrecognized action makes the whole intent unusable; an unrecognized
// status is cleared so downstream code treats it as "all".
func (i *Intent) Validate() bool {
	if i == nil || !i.Action.Valid() {
		return false
	}
	switch i.Status {
	case "", StatusDone, StatusPending, StatusAll:
	default:
		i.Status = ""
	}
	return true
}
