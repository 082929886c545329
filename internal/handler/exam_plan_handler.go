package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/exam-planner-api/internal/dto"
	"github.com/noah-isme/exam-planner-api/internal/middleware"
	"github.com/noah-isme/exam-planner-api/internal/models"
	"github.com/noah-isme/exam-planner-api/internal/service"
	appErrors "github.com/noah-isme/exam-planner-api/pkg/errors"
	"github.com/noah-isme/exam-planner-api/pkg/response"
)

type examScheduler interface {
	Generate(ctx context.Context, req dto.GenerateExamScheduleRequest) (*dto.GenerateExamScheduleResponse, error)
	List(ctx context.Context, departmentID string) (*dto.ExamListResponse, error)
	PreviewSlots(ctx context.Context, query dto.SlotPoolQuery) (*dto.SlotPoolResponse, error)
	Clear(ctx context.Context, departmentID string) (int64, error)
	Status(ctx context.Context, departmentID string) (*models.ExamPlanStatus, error)
}

type conflictAuditor interface {
	Audit(ctx context.Context, departmentID string, fresh bool) (*dto.ConflictReportResponse, error)
}

type roomAssigner interface {
	Assign(ctx context.Context, departmentID string) (*dto.RoomAssignmentResponse, error)
}

// ExamPlanHandler exposes department scoped exam planning endpoints.
type ExamPlanHandler struct {
	scheduler examScheduler
	auditor   conflictAuditor
	rooms     roomAssigner
}

// NewExamPlanHandler constructs the handler.
func NewExamPlanHandler(scheduler *service.ExamScheduleService, auditor *service.ConflictAuditService, rooms *service.RoomAssignmentService) *ExamPlanHandler {
	return &ExamPlanHandler{scheduler: scheduler, auditor: auditor, rooms: rooms}
}

// Generate godoc
// @Summary Generate the exam schedule of a department
// @Description Replaces every exam of the department with a fresh greedy schedule. Courses that cannot be placed conflict-free are forced into the last slot and reported.
// @Tags ExamPlanning
// @Accept json
// @Produce json
// @Param departmentId path string true "Department ID"
// @Param payload body dto.GenerateExamScheduleRequest false "Scheduling options"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Router /departments/{departmentId}/exams/schedule [post]
func (h *ExamPlanHandler) Generate(c *gin.Context) {
	var req dto.GenerateExamScheduleRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid schedule payload"))
			return
		}
	}
	req.DepartmentID = c.Param("departmentId")

	result, err := h.scheduler.Generate(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, result, middleware.Meta(c, map[string]interface{}{"forced": result.ForcedCount > 0}))
}

// List godoc
// @Summary List department exams
// @Tags ExamPlanning
// @Produce json
// @Param departmentId path string true "Department ID"
// @Success 200 {object} response.Envelope
// @Router /departments/{departmentId}/exams [get]
func (h *ExamPlanHandler) List(c *gin.Context) {
	result, err := h.scheduler.List(c.Request.Context(), c.Param("departmentId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, result, middleware.Meta(c, map[string]interface{}{"total": len(result.Exams)}))
}

// Clear godoc
// @Summary Delete every exam of a department
// @Tags ExamPlanning
// @Produce json
// @Param departmentId path string true "Department ID"
// @Success 200 {object} response.Envelope
// @Router /departments/{departmentId}/exams [delete]
func (h *ExamPlanHandler) Clear(c *gin.Context) {
	deleted, err := h.scheduler.Clear(c.Request.Context(), c.Param("departmentId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"deleted": deleted})
}

// Status godoc
// @Summary Planning data counts for a department
// @Tags ExamPlanning
// @Produce json
// @Param departmentId path string true "Department ID"
// @Success 200 {object} response.Envelope
// @Router /departments/{departmentId}/exams/status [get]
func (h *ExamPlanHandler) Status(c *gin.Context) {
	status, err := h.scheduler.Status(c.Request.Context(), c.Param("departmentId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, status)
}

// Slots godoc
// @Summary Preview the candidate slot pool
// @Tags ExamPlanning
// @Produce json
// @Param departmentId path string true "Department ID"
// @Param dateStart query string false "First day (YYYY-MM-DD)"
// @Param dateEnd query string false "Last day (YYYY-MM-DD)"
// @Param excludedWeekdays query []string false "Weekdays to skip" collectionFormat(multi)
// @Success 200 {object} response.Envelope
// @Router /departments/{departmentId}/exams/slots [get]
func (h *ExamPlanHandler) Slots(c *gin.Context) {
	var query dto.SlotPoolQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid slot query"))
		return
	}
	result, err := h.scheduler.PreviewSlots(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, result)
}

// Conflicts godoc
// @Summary Audit student and room conflicts
// @Description Reports are cached for AUDIT_CACHE_TTL. Writes made through this API invalidate the cache, but changes written directly by other systems (imports, manual edits in the database) only show up after the TTL expires. Pass fresh=true to recompute from the current state.
// @Tags ExamPlanning
// @Produce json
// @Param departmentId path string true "Department ID"
// @Param fresh query bool false "Recompute instead of serving a cached report"
// @Success 200 {object} response.Envelope
// @Router /departments/{departmentId}/exams/conflicts [get]
func (h *ExamPlanHandler) Conflicts(c *gin.Context) {
	fresh := false
	if raw := c.Query("fresh"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "fresh must be a boolean"))
			return
		}
		fresh = parsed
	}
	result, err := h.auditor.Audit(c.Request.Context(), c.Param("departmentId"), fresh)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, result.Cached)
	response.OK(c, result, middleware.Meta(c, nil))
}

// AssignRooms godoc
// @Summary Assign rooms to exams without one
// @Tags ExamPlanning
// @Produce json
// @Param departmentId path string true "Department ID"
// @Success 200 {object} response.Envelope
// @Router /departments/{departmentId}/exams/rooms [post]
func (h *ExamPlanHandler) AssignRooms(c *gin.Context) {
	result, err := h.rooms.Assign(c.Request.Context(), c.Param("departmentId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, result)
}
