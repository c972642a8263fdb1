package app

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/ozelders/ozelders-api/internal/assistant"
	apperrors "github.com/ozelders/ozelders-api/internal/errors"
	"github.com/ozelders/ozelders-api/internal/sentry"
	"github.com/ozelders/ozelders-api/internal/storage"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (a *Application) handleLogin(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Email == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email and password required"})
		return
	}

	user, err := a.db.GetUserByEmail(c.Request.Context(), req.Email)
	if err != nil {
		a.logger.WithError(err).Error("Login lookup failed")
		sentry.CaptureException(c.Request.Context(), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "login_failed"})
		return
	}
	if user == nil || bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid_credentials"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}

type queryRequest struct {
	Text string `json:"text"`
}

func (a *Application) handleAssistantQuery(c *gin.Context) {
	caller, _ := callerFrom(c)

	// Access is decided before the body is even looked at.
	if caller.Role != assistant.RoleTeacher {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return
	}

	var req queryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "text required"})
		return
	}

	start := time.Now()
	outcome, err := a.dispatcher.Handle(c.Request.Context(), caller, req.Text)
	a.metrics.RecordAssistantDuration(time.Since(start).Seconds())

	if err != nil {
		switch {
		case apperrors.IsForbidden(err):
			c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		case apperrors.IsInvalidInput(err):
			c.JSON(http.StatusBadRequest, gin.H{"error": "text required"})
		default:
			a.logger.WithError(err).Error("Assistant query failed")
			sentry.CaptureException(c.Request.Context(), err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "assistant_failed"})
		}
		return
	}

	c.JSON(http.StatusOK, outcome)
}

func (a *Application) handleMyAssignments(c *gin.Context) {
	caller, _ := callerFrom(c)

	items, err := a.db.ListStudentAssignments(c.Request.Context(), caller.ID)
	if err != nil {
		a.storeFailure(c, "list assignments", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (a *Application) handleMyExams(c *gin.Context) {
	caller, _ := callerFrom(c)

	items, err := a.db.ListExamAttempts(c.Request.Context(), caller.ID)
	if err != nil {
		a.storeFailure(c, "list exams", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (a *Application) handleListStudents(c *gin.Context) {
	caller, _ := callerFrom(c)

	roster, err := a.db.GetRoster(c.Request.Context(), caller.ID)
	if err != nil {
		a.storeFailure(c, "list students", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": roster})
}

// linkedStudent resolves the :sid route param and verifies the caller
// teaches that student. Writes the error response itself on failure.
func (a *Application) linkedStudent(c *gin.Context) (string, bool) {
	caller, _ := callerFrom(c)
	studentID := c.Param("sid")

	linked, err := a.db.IsLinked(c.Request.Context(), caller.ID, studentID)
	if err != nil {
		a.storeFailure(c, "check link", err)
		return "", false
	}
	if !linked {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return "", false
	}
	return studentID, true
}

func (a *Application) handleStudentAssignments(c *gin.Context) {
	studentID, ok := a.linkedStudent(c)
	if !ok {
		return
	}

	items, err := a.db.ListStudentAssignments(c.Request.Context(), studentID)
	if err != nil {
		a.storeFailure(c, "list assignments", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

type statusRequest struct {
	Status string `json:"status"`
}

func (a *Application) handleSetAssignmentStatus(c *gin.Context) {
	studentID, ok := a.linkedStudent(c)
	if !ok {
		return
	}

	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil ||
		(req.Status != assistant.StatusPending && req.Status != assistant.StatusDone) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status must be pending or done"})
		return
	}

	if err := a.db.SetAssignmentStatus(c.Request.Context(), c.Param("aid"), studentID, req.Status); err != nil {
		a.storeFailure(c, "set status", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (a *Application) handleStudentExams(c *gin.Context) {
	studentID, ok := a.linkedStudent(c)
	if !ok {
		return
	}

	items, err := a.db.ListExamAttempts(c.Request.Context(), studentID)
	if err != nil {
		a.storeFailure(c, "list exams", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

type examRequest struct {
	TakenAt         *string  `json:"taken_at"`
	Title           string   `json:"title"`
	MatNet          *float64 `json:"mat_net"`
	TotalNet        *float64 `json:"total_net"`
	DurationMinutes *int     `json:"duration_minutes"`
}

func (a *Application) handleAddStudentExam(c *gin.Context) {
	studentID, ok := a.linkedStudent(c)
	if !ok {
		return
	}

	var req examRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Title) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title required"})
		return
	}

	attempt := &storage.ExamAttempt{
		TakenAt:         req.TakenAt,
		Title:           strings.TrimSpace(req.Title),
		MatNet:          req.MatNet,
		TotalNet:        req.TotalNet,
		DurationMinutes: req.DurationMinutes,
	}
	if err := a.db.SaveExamAttempt(c.Request.Context(), studentID, attempt); err != nil {
		a.storeFailure(c, "save exam", err)
		return
	}
	c.JSON(http.StatusCreated, attempt)
}

func (a *Application) handleListTopics(c *gin.Context) {
	caller, _ := callerFrom(c)

	items, err := a.db.ListTopics(c.Request.Context(), caller.ID)
	if err != nil {
		a.storeFailure(c, "list topics", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

type topicRequest struct {
	Name     string `json:"name"`
	Position *int   `json:"position"`
}

func (a *Application) handleCreateTopic(c *gin.Context) {
	caller, _ := callerFrom(c)

	var req topicRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Name) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name required"})
		return
	}

	topic := &storage.Topic{
		Name:     strings.TrimSpace(req.Name),
		Position: req.Position,
	}
	if err := a.db.SaveTopic(c.Request.Context(), caller.ID, topic); err != nil {
		a.storeFailure(c, "save topic", err)
		return
	}
	c.JSON(http.StatusCreated, topic)
}

func (a *Application) handleListAssignments(c *gin.Context) {
	caller, _ := callerFrom(c)

	dateFrom := optionalQuery(c, "date_from")
	dateTo := optionalQuery(c, "date_to")

	items, err := a.db.ListTeacherAssignments(c.Request.Context(), caller.ID, dateFrom, dateTo)
	if err != nil {
		a.storeFailure(c, "list assignments", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

type assignmentRequest struct {
	Title       string  `json:"title"`
	DueDate     *string `json:"due_date"`
	Description *string `json:"description"`
}

func (a *Application) handleCreateAssignment(c *gin.Context) {
	caller, _ := callerFrom(c)

	var req assignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Title) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title required"})
		return
	}

	item, err := a.db.CreateAssignment(c.Request.Context(), caller.ID, strings.TrimSpace(req.Title), req.DueDate, req.Description)
	if err != nil {
		a.storeFailure(c, "create assignment", err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

type assignRequest struct {
	StudentIDs []string `json:"student_ids"`
}

func (a *Application) handleAssignStudents(c *gin.Context) {
	caller, _ := callerFrom(c)

	var req assignRequest
	if err := c.ShouldBindJSON(&req); err != nil || len(req.StudentIDs) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "student_ids required"})
		return
	}

	ctx := c.Request.Context()
	item, err := a.db.FindAssignmentByRef(ctx, caller.ID, c.Param("aid"))
	if err != nil {
		a.storeFailure(c, "find assignment", err)
		return
	}
	if item == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "assignment_not_found"})
		return
	}

	linked := make([]string, 0, len(req.StudentIDs))
	for _, sid := range req.StudentIDs {
		ok, err := a.db.IsLinked(ctx, caller.ID, sid)
		if err != nil || !ok {
			continue
		}
		if err := a.db.LinkAssignee(ctx, item.ID, sid); err != nil {
			a.logger.WithError(err).WithField("student_id", sid).Warn("Assignment link failed")
			continue
		}
		linked = append(linked, sid)
	}

	c.JSON(http.StatusOK, gin.H{"assignment_id": item.ID, "student_ids": linked})
}

func (a *Application) storeFailure(c *gin.Context, op string, err error) {
	a.logger.WithError(err).WithField("operation", op).Error("Storage operation failed")
	sentry.CaptureException(c.Request.Context(), err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "storage_failed"})
}

func optionalQuery(c *gin.Context, key string) *string {
	v := strings.TrimSpace(c.Query(key))
	if v == "" {
		return nil
	}
	return &v
}
