package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/exam-planner-api/internal/dto"
	"github.com/noah-isme/exam-planner-api/internal/middleware"
	"github.com/noah-isme/exam-planner-api/internal/models"
	"github.com/noah-isme/exam-planner-api/internal/service"
	appErrors "github.com/noah-isme/exam-planner-api/pkg/errors"
	"github.com/noah-isme/exam-planner-api/pkg/response"
)

type examEditor interface {
	UpdateExam(ctx context.Context, examID string, req dto.UpdateExamRequest) (*models.ExamDetail, error)
}

type seatPlanner interface {
	Plan(ctx context.Context, examID string) (*dto.SeatingPlanResponse, error)
}

// ExamHandler exposes single exam endpoints.
type ExamHandler struct {
	editor examEditor
	seats  seatPlanner
}

// NewExamHandler constructs the handler.
func NewExamHandler(editor *service.ExamScheduleService, seats *service.SeatingService) *ExamHandler {
	return &ExamHandler{editor: editor, seats: seats}
}

// Update godoc
// @Summary Manually edit an exam
// @Description Moves an exam and/or changes its room. No conflict check is made; use the conflicts audit afterwards.
// @Tags Exams
// @Accept json
// @Produce json
// @Param id path string true "Exam ID"
// @Param payload body dto.UpdateExamRequest true "Exam changes"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /exams/{id} [put]
func (h *ExamHandler) Update(c *gin.Context) {
	var req dto.UpdateExamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid exam payload"))
		return
	}
	exam, err := h.editor.UpdateExam(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, exam)
}

// Seating godoc
// @Summary Seat plan of an exam
// @Tags Exams
// @Produce json
// @Param id path string true "Exam ID"
// @Success 200 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Router /exams/{id}/seating [get]
func (h *ExamHandler) Seating(c *gin.Context) {
	plan, err := h.seats.Plan(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, plan, middleware.Meta(c, map[string]interface{}{
		"seated":   len(plan.Plan.Seated),
		"unseated": len(plan.Plan.Unseated),
	}))
}
