package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/exam-planner-api/internal/dto"
	"github.com/noah-isme/exam-planner-api/internal/models"
	"github.com/noah-isme/exam-planner-api/internal/planner"
	appErrors "github.com/noah-isme/exam-planner-api/pkg/errors"
)

type examDetailReader interface {
	FindDetailByID(ctx context.Context, exec sqlx.ExtContext, id string) (*models.ExamDetail, error)
}

type rosterReader interface {
	ListByCourse(ctx context.Context, courseID string) ([]models.Student, error)
}

// SeatingService lays out the roster of a roomed exam on its room's desk grid.
type SeatingService struct {
	exams      examDetailReader
	classrooms classroomReader
	students   rosterReader
	logger     *zap.Logger
}

// NewSeatingService constructs the service.
func NewSeatingService(exams examDetailReader, classrooms classroomReader, students rosterReader, logger *zap.Logger) *SeatingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SeatingService{exams: exams, classrooms: classrooms, students: students, logger: logger}
}

// Plan seats the exam roster. Students beyond the grid capacity are listed as
// unseated.
func (s *SeatingService) Plan(ctx context.Context, examID string) (*dto.SeatingPlanResponse, error) {
	exam, err := s.exams.FindDetailByID(ctx, nil, examID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "exam not found")
		}
		return nil, appErrors.Internal(err, "failed to load exam")
	}
	if exam.RoomID == nil || *exam.RoomID == "" {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "exam has no room assigned")
	}

	room, err := s.classrooms.FindByID(ctx, nil, *exam.RoomID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "room not found")
		}
		return nil, appErrors.Internal(err, "failed to load room")
	}

	students, err := s.students.ListByCourse(ctx, exam.CourseID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load roster")
	}
	roster := make([]planner.RosterEntry, 0, len(students))
	for _, st := range students {
		roster = append(roster, planner.RosterEntry{StudentID: st.ID, Number: st.Number, FullName: st.FullName})
	}

	plan, err := planner.PlanSeats(roster, planner.SeatGrid{Rows: room.Rows, Cols: room.Cols, SeatsPerDesk: room.SeatsPerDesk})
	if err != nil {
		if errors.Is(err, planner.ErrInvalidGrid) {
			return nil, appErrors.Clone(appErrors.ErrValidation, err.Error())
		}
		return nil, appErrors.Internal(err, "failed to plan seats")
	}
	if len(plan.Unseated) > 0 {
		s.logger.Sugar().Warnw("roster exceeds room grid", "exam_id", examID, "room", room.Code, "unseated", len(plan.Unseated))
	}

	return &dto.SeatingPlanResponse{
		ExamID:     exam.ID,
		CourseCode: exam.CourseCode,
		Start:      exam.Start,
		RoomID:     room.ID,
		RoomCode:   room.Code,
		Plan:       plan,
	}, nil
}
