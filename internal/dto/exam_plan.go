package dto

import (
	"github.com/noah-isme/exam-planner-api/internal/models"
	"github.com/noah-isme/exam-planner-api/internal/planner"
)

// GenerateExamScheduleRequest configures one scheduling run for a department.
// Nil overrides fall back to configured defaults.
type GenerateExamScheduleRequest struct {
	DepartmentID      string   `json:"-" validate:"required"`
	DateStart         string   `json:"dateStart" validate:"omitempty,datetime=2006-01-02"`
	DateEnd           string   `json:"dateEnd" validate:"omitempty,datetime=2006-01-02"`
	ExcludedWeekdays  []string `json:"excludedWeekdays" validate:"omitempty,max=7,dive,required"`
	ExcludedCourseIDs []string `json:"excludedCourseIds" validate:"omitempty,dive,required"`
	CooldownMinutes   *int     `json:"cooldownMinutes" validate:"omitempty,min=0,max=1440"`
	SingleExamAtATime *bool    `json:"singleExamAtATime"`
	ExamType          string   `json:"examType" validate:"omitempty,oneof=MIDTERM FINAL MAKEUP midterm final makeup"`
	DurationMinutes   *int     `json:"durationMinutes" validate:"omitempty,min=1,max=600"`
}

// SlotPoolQuery previews the slot pool of a window.
type SlotPoolQuery struct {
	DateStart        string   `form:"dateStart" validate:"omitempty,datetime=2006-01-02"`
	DateEnd          string   `form:"dateEnd" validate:"omitempty,datetime=2006-01-02"`
	ExcludedWeekdays []string `form:"excludedWeekdays" validate:"omitempty,max=7,dive,required"`
}

// SlotPoolResponse lists candidate slots in chronological order.
type SlotPoolResponse struct {
	Slots []string `json:"slots"`
	Days  int      `json:"days"`
	Total int      `json:"total"`
}

// GenerateExamScheduleResponse summarises a scheduling run.
type GenerateExamScheduleResponse struct {
	DepartmentID      string              `json:"departmentId"`
	ExamCount         int                 `json:"examCount"`
	DeletedCount      int64               `json:"deletedCount"`
	ExcludedCount     int                 `json:"excludedCount"`
	SlotPoolSize      int                 `json:"slotPoolSize"`
	ConflictEdges     int                 `json:"conflictEdges"`
	ForcedCount       int                 `json:"forcedCount"`
	ForcedCourseCodes []string            `json:"forcedCourseCodes"`
	PhaseCounts       planner.PhaseCounts `json:"phaseCounts"`
	ExamType          string              `json:"examType"`
	Placements        []planner.Placement `json:"placements"`
}

// UpdateExamRequest is a manual edit of an exam. Empty fields are untouched.
type UpdateExamRequest struct {
	Start           string `json:"start"`
	RoomID          string `json:"roomId"`
	ClearRoom       bool   `json:"clearRoom"`
	DurationMinutes *int   `json:"durationMinutes" validate:"omitempty,min=1,max=600"`
	ExamType        string `json:"examType" validate:"omitempty,oneof=MIDTERM FINAL MAKEUP midterm final makeup"`
}

// ExamListResponse wraps the department exams.
type ExamListResponse struct {
	DepartmentID string              `json:"departmentId"`
	Exams        []models.ExamDetail `json:"exams"`
}

// ConflictReportResponse wraps an audit report with cache provenance.
type ConflictReportResponse struct {
	DepartmentID string              `json:"departmentId"`
	Cached       bool                `json:"cached"`
	Report       planner.AuditReport `json:"report"`
}

// RoomAssignmentResponse summarises a room assignment run.
type RoomAssignmentResponse struct {
	DepartmentID string                       `json:"departmentId"`
	Result       planner.RoomAssignmentResult `json:"result"`
}

// SeatingPlanResponse describes the seat layout of one exam.
type SeatingPlanResponse struct {
	ExamID     string           `json:"examId"`
	CourseCode string           `json:"courseCode"`
	Start      string           `json:"start"`
	RoomID     string           `json:"roomId"`
	RoomCode   string           `json:"roomCode"`
	Plan       planner.SeatPlan `json:"plan"`
}
