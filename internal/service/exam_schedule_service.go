package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/exam-planner-api/internal/dto"
	"github.com/noah-isme/exam-planner-api/internal/models"
	"github.com/noah-isme/exam-planner-api/internal/planner"
	appErrors "github.com/noah-isme/exam-planner-api/pkg/errors"
	"github.com/noah-isme/exam-planner-api/pkg/events"
)

type txProvider interface {
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
}

type departmentReader interface {
	FindByID(ctx context.Context, id string) (*models.Department, error)
	Status(ctx context.Context, departmentID string) (*models.ExamPlanStatus, error)
}

type courseReader interface {
	ListByDepartment(ctx context.Context, exec sqlx.ExtContext, departmentID string) ([]models.Course, error)
}

type enrollmentReader interface {
	ListByDepartment(ctx context.Context, exec sqlx.ExtContext, departmentID string) ([]models.Enrollment, error)
}

type classroomReader interface {
	ListByDepartment(ctx context.Context, exec sqlx.ExtContext, departmentID string) ([]models.Classroom, error)
	FindByID(ctx context.Context, exec sqlx.ExtContext, id string) (*models.Classroom, error)
}

type examStore interface {
	ListByDepartment(ctx context.Context, exec sqlx.ExtContext, departmentID string) ([]models.ExamDetail, error)
	FindDetailByID(ctx context.Context, exec sqlx.ExtContext, id string) (*models.ExamDetail, error)
	DeleteByDepartment(ctx context.Context, exec sqlx.ExtContext, departmentID string) (int64, error)
	BulkInsert(ctx context.Context, exec sqlx.ExtContext, exams []models.Exam) error
	Update(ctx context.Context, exec sqlx.ExtContext, examID string, update models.ExamUpdate) error
}

type cacheInvalidator interface {
	Invalidate(ctx context.Context, pattern string) error
}

type eventNotifier interface {
	Notify(ctx context.Context, eventType, departmentID string, payload interface{})
}

// SchedulerDefaults seed the policy of every run.
type SchedulerDefaults struct {
	CooldownMinutes   int
	SingleExamAtATime bool
	ExamType          string
	DurationMinutes   int
	WindowDays        int
}

// ExamScheduleService runs the slot scheduler for a department and manages
// the resulting exams.
type ExamScheduleService struct {
	departments departmentReader
	courses     courseReader
	enrollments enrollmentReader
	classrooms  classroomReader
	exams       examStore
	tx          txProvider
	cache       cacheInvalidator
	events      eventNotifier
	metrics     *MetricsService
	defaults    SchedulerDefaults
	validator   *validator.Validate
	logger      *zap.Logger
	now         func() time.Time
}

// NewExamScheduleService wires the scheduling service.
func NewExamScheduleService(
	departments departmentReader,
	courses courseReader,
	enrollments enrollmentReader,
	classrooms classroomReader,
	exams examStore,
	tx txProvider,
	cache cacheInvalidator,
	notifier eventNotifier,
	metrics *MetricsService,
	defaults SchedulerDefaults,
	validate *validator.Validate,
	logger *zap.Logger,
) *ExamScheduleService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if defaults.DurationMinutes <= 0 {
		defaults.DurationMinutes = planner.DefaultPolicy().DurationMinutes
	}
	return &ExamScheduleService{
		departments: departments,
		courses:     courses,
		enrollments: enrollments,
		classrooms:  classrooms,
		exams:       exams,
		tx:          tx,
		cache:       cache,
		events:      notifier,
		metrics:     metrics,
		defaults:    defaults,
		validator:   validate,
		logger:      logger,
		now:         time.Now,
	}
}

// Generate replaces the exams of a department with a fresh greedy schedule.
func (s *ExamScheduleService) Generate(ctx context.Context, req dto.GenerateExamScheduleRequest) (resp *dto.GenerateExamScheduleResponse, err error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid schedule request")
	}

	window, err := buildSlotPoolConfig(req.DateStart, req.DateEnd, req.ExcludedWeekdays, s.defaults.WindowDays)
	if err != nil {
		return nil, err
	}
	slots, err := planner.GenerateSlotPool(window, s.now())
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, err.Error())
	}
	policy := s.policyFor(req)

	if err := s.ensureDepartment(ctx, req.DepartmentID); err != nil {
		return nil, err
	}

	started := time.Now()
	var result planner.ScheduleResult
	defer func() {
		s.metrics.RecordScheduleRun(err, result.ForcedCount, time.Since(started))
	}()

	tx, err := s.tx.BeginTxx(ctx, nil)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to begin transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	courseRows, err := s.courses.ListByDepartment(ctx, tx, req.DepartmentID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load courses")
	}
	pairs, err := s.enrollments.ListByDepartment(ctx, tx, req.DepartmentID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load enrollments")
	}

	courses := make([]planner.Course, 0, len(courseRows))
	excluded := 0
	for _, c := range courseRows {
		if policy.Excludes(c.ID) {
			excluded++
			continue
		}
		courses = append(courses, toPlannerCourse(c))
	}
	if len(courses) == 0 {
		err = appErrors.Clone(appErrors.ErrPreconditionFailed, "no courses left to schedule").
			WithDetails(map[string]interface{}{"courses": len(courseRows), "excluded": excluded})
		return nil, err
	}

	enrollmentSet := toEnrollmentSet(pairs)
	graph := planner.BuildConflictGraph(courses, enrollmentSet)
	result, err = planner.Schedule(planner.ScheduleInput{
		Courses:     courses,
		Enrollments: enrollmentSet,
		Graph:       graph,
		Slots:       slots,
		Policy:      policy,
	})
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, err.Error())
	}

	deleted, err := s.exams.DeleteByDepartment(ctx, tx, req.DepartmentID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to clear previous exams")
	}

	records := make([]models.Exam, 0, len(result.Placements))
	for _, p := range result.Placements {
		records = append(records, models.Exam{
			CourseID:    p.CourseID,
			Start:       p.Start,
			DurationMin: policy.DurationMinutes,
			ExamType:    models.ExamType(policy.ExamType),
		})
	}
	if err = s.exams.BulkInsert(ctx, tx, records); err != nil {
		return nil, appErrors.Internal(err, "failed to store exams")
	}

	if err = tx.Commit(); err != nil {
		return nil, appErrors.Internal(err, "failed to commit schedule")
	}

	resp = &dto.GenerateExamScheduleResponse{
		DepartmentID:      req.DepartmentID,
		ExamCount:         len(records),
		DeletedCount:      deleted,
		ExcludedCount:     excluded,
		SlotPoolSize:      len(slots),
		ConflictEdges:     result.EdgeCount,
		ForcedCount:       result.ForcedCount,
		ForcedCourseCodes: result.ForcedCourseCodes(),
		PhaseCounts:       result.PhaseCounts,
		ExamType:          string(policy.ExamType),
		Placements:        result.Placements,
	}
	if resp.ForcedCourseCodes == nil {
		resp.ForcedCourseCodes = []string{}
	}

	s.logger.Sugar().Infow("exam schedule generated",
		"department_id", req.DepartmentID,
		"exams", resp.ExamCount,
		"deleted", deleted,
		"slots", len(slots),
		"edges", result.EdgeCount,
		"forced", result.ForcedCount,
	)
	if result.ForcedCount > 0 {
		s.logger.Sugar().Warnw("forced exam placements", "department_id", req.DepartmentID, "courses", resp.ForcedCourseCodes)
	}

	s.invalidateAudits(ctx)
	s.notify(ctx, events.TypeExamsScheduled, req.DepartmentID, map[string]interface{}{
		"exam_count":   resp.ExamCount,
		"forced_count": resp.ForcedCount,
		"exam_type":    resp.ExamType,
	})
	return resp, nil
}

// List returns the exams of a department.
func (s *ExamScheduleService) List(ctx context.Context, departmentID string) (*dto.ExamListResponse, error) {
	if err := s.ensureDepartment(ctx, departmentID); err != nil {
		return nil, err
	}
	exams, err := s.exams.ListByDepartment(ctx, nil, departmentID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list exams")
	}
	if exams == nil {
		exams = []models.ExamDetail{}
	}
	return &dto.ExamListResponse{DepartmentID: departmentID, Exams: exams}, nil
}

// PreviewSlots returns the slot pool a run with the same window would use.
func (s *ExamScheduleService) PreviewSlots(ctx context.Context, query dto.SlotPoolQuery) (*dto.SlotPoolResponse, error) {
	if err := s.validator.Struct(query); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid slot query")
	}
	window, err := buildSlotPoolConfig(query.DateStart, query.DateEnd, query.ExcludedWeekdays, s.defaults.WindowDays)
	if err != nil {
		return nil, err
	}
	slots, err := planner.GenerateSlotPool(window, s.now())
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, err.Error())
	}

	resp := &dto.SlotPoolResponse{Slots: make([]string, 0, len(slots)), Total: len(slots)}
	lastDay := ""
	for _, slot := range slots {
		text := planner.FormatSlot(slot)
		if day := text[:len(planner.DateLayout)]; day != lastDay {
			resp.Days++
			lastDay = day
		}
		resp.Slots = append(resp.Slots, text)
	}
	return resp, nil
}

// UpdateExam applies a manual edit. No conflict check is made here; the
// auditor reports any clash the edit introduces.
func (s *ExamScheduleService) UpdateExam(ctx context.Context, examID string, req dto.UpdateExamRequest) (*models.ExamDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid exam update")
	}

	var update models.ExamUpdate
	if req.Start != "" {
		if _, err := planner.ParseSlot(req.Start); err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "start must be formatted as YYYY-MM-DD HH:MM")
		}
		start := req.Start
		update.Start = &start
	}
	if req.ClearRoom && req.RoomID != "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "roomId and clearRoom are mutually exclusive")
	}
	if req.RoomID != "" {
		if _, err := s.classrooms.FindByID(ctx, nil, req.RoomID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrValidation, "room not found")
			}
			return nil, appErrors.Internal(err, "failed to load room")
		}
		roomID := req.RoomID
		update.RoomID = &roomID
	}
	update.ClearRoom = req.ClearRoom
	update.DurationMin = req.DurationMinutes
	if req.ExamType != "" {
		examType := models.ExamType(planner.ParseExamType(req.ExamType))
		update.ExamType = &examType
	}
	if update.Start == nil && update.RoomID == nil && !update.ClearRoom && update.DurationMin == nil && update.ExamType == nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "nothing to update")
	}

	if err := s.exams.Update(ctx, nil, examID, update); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "exam not found")
		}
		return nil, appErrors.Internal(err, "failed to update exam")
	}

	exam, err := s.exams.FindDetailByID(ctx, nil, examID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to reload exam")
	}

	s.logger.Sugar().Infow("exam updated", "exam_id", examID, "department_id", exam.DepartmentID, "start", exam.Start)
	s.invalidateAudits(ctx)
	s.notify(ctx, events.TypeExamUpdated, exam.DepartmentID, map[string]interface{}{"exam_id": examID, "start": exam.Start, "room_id": exam.RoomID})
	return exam, nil
}

// Clear deletes every exam of the department.
func (s *ExamScheduleService) Clear(ctx context.Context, departmentID string) (int64, error) {
	if err := s.ensureDepartment(ctx, departmentID); err != nil {
		return 0, err
	}
	deleted, err := s.exams.DeleteByDepartment(ctx, nil, departmentID)
	if err != nil {
		return 0, appErrors.Internal(err, "failed to clear exams")
	}
	s.logger.Sugar().Infow("exam plan cleared", "department_id", departmentID, "deleted", deleted)
	s.invalidateAudits(ctx)
	s.notify(ctx, events.TypeExamsCleared, departmentID, map[string]interface{}{"deleted": deleted})
	return deleted, nil
}

// Status summarises the planning data of a department.
func (s *ExamScheduleService) Status(ctx context.Context, departmentID string) (*models.ExamPlanStatus, error) {
	if err := s.ensureDepartment(ctx, departmentID); err != nil {
		return nil, err
	}
	status, err := s.departments.Status(ctx, departmentID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load plan status")
	}
	return status, nil
}

func (s *ExamScheduleService) policyFor(req dto.GenerateExamScheduleRequest) planner.Policy {
	policy := planner.DefaultPolicy()
	policy.CooldownMinutes = s.defaults.CooldownMinutes
	policy.SingleExamAtATime = s.defaults.SingleExamAtATime
	policy.ExamType = planner.ParseExamType(s.defaults.ExamType)
	policy.DurationMinutes = s.defaults.DurationMinutes

	if req.CooldownMinutes != nil {
		policy.CooldownMinutes = *req.CooldownMinutes
	}
	if req.SingleExamAtATime != nil {
		policy.SingleExamAtATime = *req.SingleExamAtATime
	}
	if req.ExamType != "" {
		policy.ExamType = planner.ParseExamType(req.ExamType)
	}
	if req.DurationMinutes != nil {
		policy.DurationMinutes = *req.DurationMinutes
	}
	policy.ExcludedCourses = make(map[string]struct{}, len(req.ExcludedCourseIDs))
	for _, id := range req.ExcludedCourseIDs {
		policy.ExcludedCourses[id] = struct{}{}
	}
	return policy
}

func (s *ExamScheduleService) ensureDepartment(ctx context.Context, departmentID string) error {
	if departmentID == "" {
		return appErrors.Clone(appErrors.ErrValidation, "department id is required")
	}
	if _, err := s.departments.FindByID(ctx, departmentID); err != nil {
		return departmentLookupError(err)
	}
	return nil
}

func departmentLookupError(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Clone(appErrors.ErrNotFound, "department not found")
	}
	return appErrors.Internal(err, "failed to load department")
}

func (s *ExamScheduleService) invalidateAudits(ctx context.Context) {
	if s.cache == nil {
		return
	}
	// Room bookings span departments, so every cached report is dropped.
	_ = s.cache.Invalidate(ctx, auditCachePattern)
}

func (s *ExamScheduleService) notify(ctx context.Context, eventType, departmentID string, payload interface{}) {
	if s.events != nil {
		s.events.Notify(ctx, eventType, departmentID, payload)
	}
}

func buildSlotPoolConfig(dateStart, dateEnd string, weekdays []string, windowDays int) (planner.SlotPoolConfig, error) {
	cfg := planner.SlotPoolConfig{WindowDays: windowDays}
	if len(weekdays) > 0 && dateStart == "" && dateEnd == "" {
		return cfg, appErrors.Clone(appErrors.ErrValidation, "excludedWeekdays requires dateStart and dateEnd")
	}
	if dateStart != "" {
		start, err := planner.ParseDate(dateStart)
		if err != nil {
			return cfg, appErrors.Clone(appErrors.ErrValidation, err.Error())
		}
		cfg.DateStart = &start
	}
	if dateEnd != "" {
		end, err := planner.ParseDate(dateEnd)
		if err != nil {
			return cfg, appErrors.Clone(appErrors.ErrValidation, err.Error())
		}
		cfg.DateEnd = &end
	}
	for _, raw := range weekdays {
		day, err := planner.ParseWeekday(raw)
		if err != nil {
			return cfg, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("excludedWeekdays: %v", err))
		}
		cfg.ExcludedWeekdays = append(cfg.ExcludedWeekdays, day)
	}
	return cfg, nil
}

func toPlannerCourse(c models.Course) planner.Course {
	return planner.Course{ID: c.ID, DepartmentID: c.DepartmentID, Code: c.Code, ClassYear: c.ClassYear}
}

func toEnrollmentSet(pairs []models.Enrollment) planner.EnrollmentSet {
	set := make(planner.EnrollmentSet)
	for _, p := range pairs {
		set.Add(p.CourseID, p.StudentID)
	}
	return set
}
