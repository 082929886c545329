package handler

import (
	"bytes"
	"context"
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

type examEditorMock struct {
	examID   string
	captured dto.UpdateExamRequest
}

func (m *examEditorMock) UpdateExam(_ context.Context, examID string, req dto.UpdateExamRequest) (*models.ExamDetail, error) {
	m.examID = examID
	m.captured = req
	return &models.ExamDetail{Exam: models.Exam{ID: examID, Start: req.Start}}, nil
}

type seatPlannerMock struct{}

func (seatPlannerMock) Plan(_ context.Context, examID string) (*dto.SeatingPlanResponse, error) {
	if examID == "no-room" {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "exam has no room assigned")
	}
	return &dto.SeatingPlanResponse{ExamID: examID, Plan: planner.SeatPlan{Capacity: 4}}, nil
}

func TestExamHandlerUpdate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	editor := &examEditorMock{}
	handler := &ExamHandler{editor: editor}

	req := httptest.NewRequest(http.MethodPut, "/exams/exam-1", bytes.NewReader([]byte(`{"start":"2024-03-06 13:30","roomId":"room-1"}`)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "exam-1"}}

	handler.Update(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "exam-1", editor.examID)
	assert.Equal(t, "2024-03-06 13:30", editor.captured.Start)
	assert.Equal(t, "room-1", editor.captured.RoomID)
}

func TestExamHandlerUpdateInvalidPayload(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := &ExamHandler{editor: &examEditorMock{}}

	req := httptest.NewRequest(http.MethodPut, "/exams/exam-1", bytes.NewReader([]byte(`{"start":`)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req

	handler.Update(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExamHandlerSeating(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := &ExamHandler{seats: seatPlannerMock{}}
	router := gin.New()
	router.GET("/exams/:id/seating", handler.Seating)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/exams/exam-1/seating", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/exams/no-room/seating", nil))
	assert.Equal(t, appErrors.ErrPreconditionFailed.Status, w.Code)
}
