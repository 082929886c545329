package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/exam-planner-api/internal/dto"
	"github.com/noah-isme/exam-planner-api/internal/models"
	"github.com/noah-isme/exam-planner-api/internal/planner"
	appErrors "github.com/noah-isme/exam-planner-api/pkg/errors"
)

type examSchedulerMock struct {
	captured   dto.GenerateExamScheduleRequest
	slotsQuery dto.SlotPoolQuery
	err        error
}

func (m *examSchedulerMock) Generate(_ context.Context, req dto.GenerateExamScheduleRequest) (*dto.GenerateExamScheduleResponse, error) {
	m.captured = req
	if m.err != nil {
		return nil, m.err
	}
	return &dto.GenerateExamScheduleResponse{DepartmentID: req.DepartmentID, ExamCount: 3, ForcedCount: 1, ForcedCourseCodes: []string{"CS103"}}, nil
}

func (m *examSchedulerMock) List(_ context.Context, departmentID string) (*dto.ExamListResponse, error) {
	return &dto.ExamListResponse{DepartmentID: departmentID, Exams: []models.ExamDetail{{CourseCode: "CS101"}}}, nil
}

func (m *examSchedulerMock) PreviewSlots(_ context.Context, query dto.SlotPoolQuery) (*dto.SlotPoolResponse, error) {
	m.slotsQuery = query
	return &dto.SlotPoolResponse{Slots: []string{"2024-03-04 09:00"}, Days: 1, Total: 1}, nil
}

func (m *examSchedulerMock) Clear(context.Context, string) (int64, error) {
	return 4, nil
}

func (m *examSchedulerMock) Status(_ context.Context, departmentID string) (*models.ExamPlanStatus, error) {
	return &models.ExamPlanStatus{DepartmentID: departmentID, Courses: 3}, nil
}

type auditorMock struct{ fresh bool }

func (m *auditorMock) Audit(_ context.Context, departmentID string, fresh bool) (*dto.ConflictReportResponse, error) {
	m.fresh = fresh
	return &dto.ConflictReportResponse{DepartmentID: departmentID, Cached: !fresh}, nil
}

type roomAssignerMock struct{}

func (roomAssignerMock) Assign(_ context.Context, departmentID string) (*dto.RoomAssignmentResponse, error) {
	return &dto.RoomAssignmentResponse{DepartmentID: departmentID, Result: planner.RoomAssignmentResult{AssignedCount: 2}}, nil
}

func newExamPlanRouter(h *ExamPlanHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	group := router.Group("/departments/:departmentId/exams")
	group.POST("/schedule", h.Generate)
	group.GET("", h.List)
	group.DELETE("", h.Clear)
	group.GET("/status", h.Status)
	group.GET("/slots", h.Slots)
	group.GET("/conflicts", h.Conflicts)
	group.POST("/rooms", h.AssignRooms)
	return router
}

func TestExamPlanHandlerGenerate(t *testing.T) {
	scheduler := &examSchedulerMock{}
	router := newExamPlanRouter(&ExamPlanHandler{scheduler: scheduler})

	body := []byte(`{"dateStart":"2024-03-04","dateEnd":"2024-03-08","excludedWeekdays":["Saturday"],"cooldownMinutes":30}`)
	req := httptest.NewRequest(http.MethodPost, "/departments/dept-1/exams/schedule", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "dept-1", scheduler.captured.DepartmentID)
	assert.Equal(t, "2024-03-04", scheduler.captured.DateStart)
	require.NotNil(t, scheduler.captured.CooldownMinutes)
	assert.Equal(t, 30, *scheduler.captured.CooldownMinutes)

	var envelope struct {
		Data dto.GenerateExamScheduleResponse `json:"data"`
		Meta map[string]interface{}           `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, 3, envelope.Data.ExamCount)
	assert.Equal(t, true, envelope.Meta["forced"])
}

func TestExamPlanHandlerGenerateWithoutBody(t *testing.T) {
	scheduler := &examSchedulerMock{}
	router := newExamPlanRouter(&ExamPlanHandler{scheduler: scheduler})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/departments/dept-1/exams/schedule", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "dept-1", scheduler.captured.DepartmentID)
	assert.Empty(t, scheduler.captured.DateStart)
}

func TestExamPlanHandlerGenerateErrors(t *testing.T) {
	scheduler := &examSchedulerMock{}
	router := newExamPlanRouter(&ExamPlanHandler{scheduler: scheduler})

	req := httptest.NewRequest(http.MethodPost, "/departments/dept-1/exams/schedule", bytes.NewReader([]byte(`{"dateStart":`)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	scheduler.err = appErrors.Clone(appErrors.ErrPreconditionFailed, "no courses left to schedule")
	req = httptest.NewRequest(http.MethodPost, "/departments/dept-1/exams/schedule", bytes.NewReader([]byte(`{}`)))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, appErrors.ErrPreconditionFailed.Status, w.Code)
}

func TestExamPlanHandlerReadEndpoints(t *testing.T) {
	scheduler := &examSchedulerMock{}
	auditor := &auditorMock{}
	router := newExamPlanRouter(&ExamPlanHandler{scheduler: scheduler, auditor: auditor, rooms: roomAssignerMock{}})

	cases := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/departments/dept-1/exams"},
		{http.MethodDelete, "/departments/dept-1/exams"},
		{http.MethodGet, "/departments/dept-1/exams/status"},
		{http.MethodGet, "/departments/dept-1/exams/conflicts"},
		{http.MethodPost, "/departments/dept-1/exams/rooms"},
	}
	for _, tc := range cases {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(tc.method, tc.path, nil))
		assert.Equal(t, http.StatusOK, w.Code, "%s %s", tc.method, tc.path)
	}
}

func TestExamPlanHandlerSlotsQuery(t *testing.T) {
	scheduler := &examSchedulerMock{}
	router := newExamPlanRouter(&ExamPlanHandler{scheduler: scheduler})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/departments/dept-1/exams/slots?dateStart=2024-03-04&dateEnd=2024-03-10&excludedWeekdays=Sat&excludedWeekdays=Sun", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "2024-03-10", scheduler.slotsQuery.DateEnd)
	assert.Equal(t, []string{"Sat", "Sun"}, scheduler.slotsQuery.ExcludedWeekdays)
}

func TestExamPlanHandlerConflictsFresh(t *testing.T) {
	auditor := &auditorMock{}
	router := newExamPlanRouter(&ExamPlanHandler{auditor: auditor})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/departments/dept-1/exams/conflicts?fresh=true", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, auditor.fresh)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/departments/dept-1/exams/conflicts?fresh=maybe", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
