package storage

// User represents a portal account (teacher or student).
type User struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email,omitempty"`
	Role         string `json:"role"` // "teacher" or "student"
	CanLogin     bool   `json:"-"`
	PasswordHash string `json:"-"`
	CreatedAt    int64  `json:"created_at"`
}

// RosterEntry is a student linked to the requesting teacher.
// Scoped strictly to students the teacher owns; never global.
type RosterEntry struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

// Topic represents a study topic owned by a teacher.
type Topic struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Position  *int   `json:"position,omitempty"`
	CreatedAt int64  `json:"created_at"`
}

// Assignment represents an assignment definition owned by a teacher.
type Assignment struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	DueDate     *string `json:"due_date"` // ISO date, nil when not set
	Description *string `json:"description"`
	CreatedBy   string  `json:"created_by,omitempty"`
	CreatedAt   int64   `json:"created_at,omitempty"`
}

// AssignmentFile is a file attached to an assignment.
type AssignmentFile struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URL  string `json:"url"`
}

// StudentAssignment is an assignment as seen by one student, carrying the
// per-student status and the attached files.
type StudentAssignment struct {
	StudentID    string           `json:"student_id"`
	AssignmentID string           `json:"assignment_id"`
	Title        string           `json:"title"`
	DueDate      *string          `json:"due_date"`
	CreatedBy    string           `json:"created_by"`
	Status       string           `json:"status"` // "pending" or "done"
	CompletedAt  *int64           `json:"completed_at"`
	Description  *string          `json:"description"`
	Files        []AssignmentFile `json:"files"`
}

// ExamAttempt represents one mock-exam attempt by a student.
type ExamAttempt struct {
	ID              string   `json:"id"`
	TakenAt         *string  `json:"taken_at"`
	Title           string   `json:"title"`
	MatNet          *float64 `json:"mat_net"`
	TotalNet        *float64 `json:"total_net"`
	DurationMinutes *int     `json:"duration_minutes,omitempty"`
	CreatedAt       int64    `json:"created_at,omitempty"`
}
