package app

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/crypto/bcrypt"

	"github.com/ozelders/ozelders-api/internal/assistant"
	"github.com/ozelders/ozelders-api/internal/config"
	"github.com/ozelders/ozelders-api/internal/logger"
	"github.com/ozelders/ozelders-api/internal/metrics"
	"github.com/ozelders/ozelders-api/internal/storage"
)

func newTestApp(t *testing.T) (*Application, *gin.Engine) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := storage.NewTestDB()
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	m := metrics.New(prometheus.NewRegistry())
	app := &Application{
		cfg:        &config.Config{Port: "0"},
		logger:     logger.NewWithWriter("error", io.Discard),
		db:         db,
		metrics:    m,
		registry:   prometheus.NewRegistry(),
		dispatcher: assistant.NewDispatcher(db, nil, m),
	}

	router := gin.New()
	app.registerRoutes(router)
	return app, router
}

func seedTeacher(t *testing.T, db *storage.DB) *storage.User {
	t.Helper()
	teacher := &storage.User{Name: "Ayşe Öğretmen", Email: "ayse@ozelders.local", Role: "teacher"}
	if err := db.SaveUser(context.Background(), teacher); err != nil {
		t.Fatalf("SaveUser failed: %v", err)
	}
	return teacher
}

func seedStudent(t *testing.T, db *storage.DB, teacher *storage.User, name string) *storage.User {
	t.Helper()
	ctx := context.Background()
	student := &storage.User{Name: name, Role: "student"}
	if err := db.SaveUser(ctx, student); err != nil {
		t.Fatalf("SaveUser failed: %v", err)
	}
	if err := db.LinkStudent(ctx, teacher.ID, student.ID); err != nil {
		t.Fatalf("LinkStudent failed: %v", err)
	}
	return student
}

func doJSON(router *gin.Engine, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func teacherHeaders(id string) map[string]string {
	return map[string]string{"X-User-Id": id, "X-User-Role": "teacher"}
}

func TestHealthEndpoints(t *testing.T) {
	_, router := newTestApp(t)

	for _, path := range []string{"/healthz", "/readyz", "/api/health"} {
		w := doJSON(router, http.MethodGet, path, nil, nil)
		if w.Code != http.StatusOK {
			t.Errorf("GET %s = %d, want 200", path, w.Code)
		}
	}
}

func TestLogin(t *testing.T) {
	app, router := newTestApp(t)

	hash, err := bcrypt.GenerateFromPassword([]byte("gizli123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt failed: %v", err)
	}
	user := &storage.User{
		Name:         "Ayşe Öğretmen",
		Email:        "ayse@ozelders.local",
		Role:         "teacher",
		CanLogin:     true,
		PasswordHash: string(hash),
	}
	if err := app.db.SaveUser(context.Background(), user); err != nil {
		t.Fatalf("SaveUser failed: %v", err)
	}

	tests := []struct {
		name     string
		body     any
		wantCode int
	}{
		{"valid credentials", loginRequest{Email: "ayse@ozelders.local", Password: "gizli123"}, http.StatusOK},
		{"case-insensitive email", loginRequest{Email: "AYSE@ozelders.local", Password: "gizli123"}, http.StatusOK},
		{"wrong password", loginRequest{Email: "ayse@ozelders.local", Password: "yanlis"}, http.StatusUnauthorized},
		{"unknown email", loginRequest{Email: "yok@ozelders.local", Password: "gizli123"}, http.StatusUnauthorized},
		{"missing password", loginRequest{Email: "ayse@ozelders.local"}, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(router, http.MethodPost, "/api/login", tt.body, nil)
			if w.Code != tt.wantCode {
				t.Errorf("login = %d, want %d (body %s)", w.Code, tt.wantCode, w.Body.String())
			}
		})
	}
}

func TestLoginNeverLeaksPasswordHash(t *testing.T) {
	app, router := newTestApp(t)

	hash, _ := bcrypt.GenerateFromPassword([]byte("gizli123"), bcrypt.MinCost)
	user := &storage.User{
		Name: "Ayşe", Email: "ayse@ozelders.local", Role: "teacher",
		CanLogin: true, PasswordHash: string(hash),
	}
	if err := app.db.SaveUser(context.Background(), user); err != nil {
		t.Fatalf("SaveUser failed: %v", err)
	}

	w := doJSON(router, http.MethodPost, "/api/login", loginRequest{Email: "ayse@ozelders.local", Password: "gizli123"}, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("login = %d, want 200", w.Code)
	}
	if bytes.Contains(w.Body.Bytes(), []byte("password")) || bytes.Contains(w.Body.Bytes(), hash) {
		t.Errorf("login response leaks credentials: %s", w.Body.String())
	}
}

func TestAssistantQueryAuth(t *testing.T) {
	app, router := newTestApp(t)
	teacher := seedTeacher(t, app.db)
	seedStudent(t, app.db, teacher, "Ahmet Yılmaz")

	tests := []struct {
		name     string
		headers  map[string]string
		body     any
		wantCode int
	}{
		{"no identity", nil, queryRequest{Text: "öğrencilerim"}, http.StatusForbidden},
		{"student role", map[string]string{"X-User-Id": "s1", "X-User-Role": "student"}, queryRequest{Text: "öğrencilerim"}, http.StatusForbidden},
		{"teacher ok", teacherHeaders(teacher.ID), queryRequest{Text: "öğrencilerim kimler"}, http.StatusOK},
		{"empty text", teacherHeaders(teacher.ID), queryRequest{Text: "   "}, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(router, http.MethodPost, "/api/assistant/query", tt.body, tt.headers)
			if w.Code != tt.wantCode {
				t.Errorf("query = %d, want %d (body %s)", w.Code, tt.wantCode, w.Body.String())
			}
		})
	}
}

func TestAssistantQueryRoleBeforeBody(t *testing.T) {
	_, router := newTestApp(t)

	// A non-teacher with a malformed body is rejected for the role,
	// not the body.
	req := httptest.NewRequest(http.MethodPost, "/api/assistant/query", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-Id", "s1")
	req.Header.Set("X-User-Role", "student")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusForbidden {
		t.Errorf("non-teacher malformed body = %d, want 403", w.Code)
	}
}

func TestAssistantQueryEnvelope(t *testing.T) {
	app, router := newTestApp(t)
	teacher := seedTeacher(t, app.db)
	seedStudent(t, app.db, teacher, "Ahmet Yılmaz")
	seedStudent(t, app.db, teacher, "Zeynep Kaya")

	w := doJSON(router, http.MethodPost, "/api/assistant/query",
		queryRequest{Text: "kaç öğrencim var"}, teacherHeaders(teacher.ID))
	if w.Code != http.StatusOK {
		t.Fatalf("query = %d, want 200 (body %s)", w.Code, w.Body.String())
	}

	var out struct {
		Result struct {
			Kind  string `json:"kind"`
			Scope string `json:"scope"`
			Value int    `json:"value"`
		} `json:"result"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out.Result.Kind != "count" || out.Result.Scope != "students" || out.Result.Value != 2 {
		t.Errorf("unexpected envelope: %s", w.Body.String())
	}
}

func TestTeacherRoutesRequireTeacherRole(t *testing.T) {
	_, router := newTestApp(t)

	w := doJSON(router, http.MethodGet, "/api/teacher/students", nil, nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("anonymous = %d, want 401", w.Code)
	}

	w = doJSON(router, http.MethodGet, "/api/teacher/students", nil,
		map[string]string{"X-User-Id": "s1", "X-User-Role": "student"})
	if w.Code != http.StatusForbidden {
		t.Errorf("student role = %d, want 403", w.Code)
	}
}

func TestStudentScopedRoutesEnforceLink(t *testing.T) {
	app, router := newTestApp(t)
	teacher := seedTeacher(t, app.db)
	other := &storage.User{Name: "Mehmet Öğretmen", Email: "mehmet@ozelders.local", Role: "teacher"}
	if err := app.db.SaveUser(context.Background(), other); err != nil {
		t.Fatalf("SaveUser failed: %v", err)
	}
	student := seedStudent(t, app.db, other, "Ali Vural")

	w := doJSON(router, http.MethodGet, "/api/teacher/students/"+student.ID+"/assignments", nil, teacherHeaders(teacher.ID))
	if w.Code != http.StatusForbidden {
		t.Errorf("unlinked student = %d, want 403", w.Code)
	}

	w = doJSON(router, http.MethodGet, "/api/teacher/students/"+student.ID+"/assignments", nil, teacherHeaders(other.ID))
	if w.Code != http.StatusOK {
		t.Errorf("linked student = %d, want 200 (body %s)", w.Code, w.Body.String())
	}
}

func TestAssignmentLifecycle(t *testing.T) {
	app, router := newTestApp(t)
	teacher := seedTeacher(t, app.db)
	student := seedStudent(t, app.db, teacher, "Ahmet Yılmaz")
	headers := teacherHeaders(teacher.ID)

	w := doJSON(router, http.MethodPost, "/api/teacher/assignments",
		assignmentRequest{Title: "Türev Testi"}, headers)
	if w.Code != http.StatusCreated {
		t.Fatalf("create = %d, want 201 (body %s)", w.Code, w.Body.String())
	}
	var created storage.Assignment
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	w = doJSON(router, http.MethodPost, "/api/teacher/assignments",
		assignmentRequest{Title: "   "}, headers)
	if w.Code != http.StatusBadRequest {
		t.Errorf("blank title = %d, want 400", w.Code)
	}

	w = doJSON(router, http.MethodPost, "/api/teacher/assignments/"+created.ID+"/assign",
		assignRequest{StudentIDs: []string{student.ID}}, headers)
	if w.Code != http.StatusOK {
		t.Fatalf("assign = %d, want 200 (body %s)", w.Code, w.Body.String())
	}

	w = doJSON(router, http.MethodPost, "/api/teacher/assignments/yok/assign",
		assignRequest{StudentIDs: []string{student.ID}}, headers)
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown assignment = %d, want 404", w.Code)
	}

	w = doJSON(router, http.MethodGet, "/api/teacher/students/"+student.ID+"/assignments", nil, headers)
	if w.Code != http.StatusOK {
		t.Fatalf("list = %d, want 200", w.Code)
	}
	var list struct {
		Items []storage.StudentAssignment `json:"items"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &list); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(list.Items) != 1 || list.Items[0].Status != "pending" {
		t.Fatalf("unexpected assignments: %+v", list.Items)
	}

	w = doJSON(router, http.MethodPut,
		"/api/teacher/students/"+student.ID+"/assignments/"+created.ID+"/status",
		statusRequest{Status: "done"}, headers)
	if w.Code != http.StatusOK {
		t.Fatalf("set status = %d, want 200 (body %s)", w.Code, w.Body.String())
	}

	w = doJSON(router, http.MethodPut,
		"/api/teacher/students/"+student.ID+"/assignments/"+created.ID+"/status",
		statusRequest{Status: "finished"}, headers)
	if w.Code != http.StatusBadRequest {
		t.Errorf("invalid status = %d, want 400", w.Code)
	}

	w = doJSON(router, http.MethodGet, "/api/me/assignments", nil,
		map[string]string{"X-User-Id": student.ID, "X-User-Role": "student"})
	if w.Code != http.StatusOK {
		t.Fatalf("me/assignments = %d, want 200", w.Code)
	}
	if err := json.Unmarshal(w.Body.Bytes(), &list); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(list.Items) != 1 || list.Items[0].Status != "done" {
		t.Errorf("unexpected student view: %+v", list.Items)
	}
}

func TestExamEndpoints(t *testing.T) {
	app, router := newTestApp(t)
	teacher := seedTeacher(t, app.db)
	student := seedStudent(t, app.db, teacher, "Ahmet Yılmaz")
	headers := teacherHeaders(teacher.ID)

	taken := "2026-03-10"
	mat := 28.5
	w := doJSON(router, http.MethodPost, "/api/teacher/students/"+student.ID+"/exams",
		examRequest{Title: "TYT Deneme 4", TakenAt: &taken, MatNet: &mat}, headers)
	if w.Code != http.StatusCreated {
		t.Fatalf("create exam = %d, want 201 (body %s)", w.Code, w.Body.String())
	}

	w = doJSON(router, http.MethodPost, "/api/teacher/students/"+student.ID+"/exams",
		examRequest{Title: ""}, headers)
	if w.Code != http.StatusBadRequest {
		t.Errorf("blank title = %d, want 400", w.Code)
	}

	w = doJSON(router, http.MethodGet, "/api/teacher/students/"+student.ID+"/exams", nil, headers)
	if w.Code != http.StatusOK {
		t.Fatalf("list exams = %d, want 200", w.Code)
	}
	var list struct {
		Items []storage.ExamAttempt `json:"items"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &list); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(list.Items) != 1 || list.Items[0].Title != "TYT Deneme 4" {
		t.Errorf("unexpected exams: %+v", list.Items)
	}

	w = doJSON(router, http.MethodGet, "/api/me/exams", nil,
		map[string]string{"X-User-Id": student.ID, "X-User-Role": "student"})
	if w.Code != http.StatusOK {
		t.Errorf("me/exams = %d, want 200", w.Code)
	}
}

func TestTopicEndpoints(t *testing.T) {
	app, router := newTestApp(t)
	teacher := seedTeacher(t, app.db)
	headers := teacherHeaders(teacher.ID)

	pos := 1
	w := doJSON(router, http.MethodPost, "/api/teacher/topics",
		topicRequest{Name: "Türev", Position: &pos}, headers)
	if w.Code != http.StatusCreated {
		t.Fatalf("create topic = %d, want 201 (body %s)", w.Code, w.Body.String())
	}

	w = doJSON(router, http.MethodGet, "/api/teacher/topics", nil, headers)
	if w.Code != http.StatusOK {
		t.Fatalf("list topics = %d, want 200", w.Code)
	}
	var list struct {
		Items []storage.Topic `json:"items"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &list); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(list.Items) != 1 || list.Items[0].Name != "Türev" {
		t.Errorf("unexpected topics: %+v", list.Items)
	}
}

func TestMetricsAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/metrics", metricsAuthMiddleware(true, "ops", "sifre"), func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	w := doJSON(router, http.MethodGet, "/metrics", nil, nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("no credentials = %d, want 401", w.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	req.SetBasicAuth("ops", "yanlis")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("bad credentials = %d, want 401", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/metrics", nil)
	req.SetBasicAuth("ops", "sifre")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("valid credentials = %d, want 200", w.Code)
	}
}
