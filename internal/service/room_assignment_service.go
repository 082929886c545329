package service

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/exam-planner-api/internal/dto"
	"github.com/noah-isme/exam-planner-api/internal/models"
	"github.com/noah-isme/exam-planner-api/internal/planner"
	appErrors "github.com/noah-isme/exam-planner-api/pkg/errors"
	"github.com/noah-isme/exam-planner-api/pkg/events"
)

type roomExamStore interface {
	ListUnroomedByDepartment(ctx context.Context, exec sqlx.ExtContext, departmentID string) ([]models.UnroomedExam, error)
	ListRoomBookings(ctx context.Context, exec sqlx.ExtContext) ([]models.RoomBooking, error)
	UpdateRoom(ctx context.Context, exec sqlx.ExtContext, examID, roomID string) error
}

// RoomAssignmentService binds department exams that have no room yet to the
// smallest free classroom that seats them.
type RoomAssignmentService struct {
	departments departmentReader
	classrooms  classroomReader
	exams       roomExamStore
	tx          txProvider
	cache       cacheInvalidator
	events      eventNotifier
	metrics     *MetricsService
	logger      *zap.Logger
}

// NewRoomAssignmentService constructs the service.
func NewRoomAssignmentService(departments departmentReader, classrooms classroomReader, exams roomExamStore, tx txProvider, cache cacheInvalidator, notifier eventNotifier, metrics *MetricsService, logger *zap.Logger) *RoomAssignmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RoomAssignmentService{
		departments: departments,
		classrooms:  classrooms,
		exams:       exams,
		tx:          tx,
		cache:       cache,
		events:      notifier,
		metrics:     metrics,
		logger:      logger,
	}
}

// Assign runs one room assignment pass. Exams that already hold a room are
// left alone; failures are reported, not returned as errors.
func (s *RoomAssignmentService) Assign(ctx context.Context, departmentID string) (resp *dto.RoomAssignmentResponse, err error) {
	if departmentID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "department id is required")
	}
	if _, err := s.departments.FindByID(ctx, departmentID); err != nil {
		return nil, departmentLookupError(err)
	}

	started := time.Now()
	var result planner.RoomAssignmentResult
	defer func() {
		s.metrics.RecordRoomAssignmentRun(err, result.NoRoomCount, result.CapacityCount, time.Since(started))
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

	classrooms, err := s.classrooms.ListByDepartment(ctx, tx, departmentID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load classrooms")
	}
	pending, err := s.exams.ListUnroomedByDepartment(ctx, tx, departmentID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load exams without room")
	}
	booked, err := s.exams.ListRoomBookings(ctx, tx)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load room bookings")
	}

	rooms := make([]planner.Room, 0, len(classrooms))
	for _, c := range classrooms {
		rooms = append(rooms, planner.Room{ID: c.ID, Code: c.Code, Capacity: c.EffectiveCapacity()})
	}
	exams := make([]planner.UnroomedExam, 0, len(pending))
	for _, e := range pending {
		exams = append(exams, planner.UnroomedExam{
			ExamID:        e.ExamID,
			CourseID:      e.CourseID,
			CourseCode:    e.CourseCode,
			ClassYear:     e.ClassYear,
			Start:         e.Start,
			RequiredSeats: e.RequiredSeats,
		})
	}
	bookings := make([]planner.RoomBooking, 0, len(booked))
	for _, b := range booked {
		bookings = append(bookings, planner.RoomBooking{RoomID: b.RoomID, Start: b.Start})
	}

	result = planner.AssignRooms(rooms, exams, bookings)

	for _, a := range result.Assigned {
		if err = s.exams.UpdateRoom(ctx, tx, a.ExamID, a.RoomID); err != nil {
			return nil, appErrors.Internal(err, "failed to store room assignment")
		}
	}

	if err = tx.Commit(); err != nil {
		return nil, appErrors.Internal(err, "failed to commit room assignment")
	}

	s.logger.Sugar().Infow("exam rooms assigned",
		"department_id", departmentID,
		"rooms", len(rooms),
		"assigned", result.AssignedCount,
		"unassigned", result.UnassignedCount,
	)
	if result.UnassignedCount > 0 {
		s.logger.Sugar().Warnw("exams left without room",
			"department_id", departmentID,
			"no_room", result.NoRoomCount,
			"capacity", result.CapacityCount,
		)
	}

	if result.AssignedCount > 0 && s.cache != nil {
		_ = s.cache.Invalidate(ctx, auditCachePattern)
	}
	if s.events != nil {
		s.events.Notify(ctx, events.TypeExamsRoomsAssigned, departmentID, map[string]interface{}{
			"assigned":   result.AssignedCount,
			"unassigned": result.UnassignedCount,
		})
	}
	return &dto.RoomAssignmentResponse{DepartmentID: departmentID, Result: result}, nil
}
