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
)

const (
	auditCachePrefix  = "exam-audit:"
	auditCachePattern = auditCachePrefix + "*"
)

func auditCacheKey(departmentID string) string {
	return auditCachePrefix + departmentID
}

type auditExamReader interface {
	ListByDepartment(ctx context.Context, exec sqlx.ExtContext, departmentID string) ([]models.ExamDetail, error)
	ListRoomBookings(ctx context.Context, exec sqlx.ExtContext) ([]models.RoomBooking, error)
}

type studentDirectory interface {
	ListEnrolledInDepartment(ctx context.Context, departmentID string) ([]models.Student, error)
}

type reportCache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// ConflictAuditService re-derives student and room conflicts from the
// persisted exams of a department.
type ConflictAuditService struct {
	departments departmentReader
	exams       auditExamReader
	enrollments enrollmentReader
	students    studentDirectory
	cache       reportCache
	ttl         time.Duration
	logger      *zap.Logger
}

// NewConflictAuditService constructs the audit service. cache may be nil.
func NewConflictAuditService(departments departmentReader, exams auditExamReader, enrollments enrollmentReader, students studentDirectory, cache reportCache, ttl time.Duration, logger *zap.Logger) *ConflictAuditService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConflictAuditService{
		departments: departments,
		exams:       exams,
		enrollments: enrollments,
		students:    students,
		cache:       cache,
		ttl:         ttl,
		logger:      logger,
	}
}

// Audit returns the conflict report of a department. Cached reports are served
// until a write invalidates them unless fresh is set.
func (s *ConflictAuditService) Audit(ctx context.Context, departmentID string, fresh bool) (*dto.ConflictReportResponse, error) {
	if departmentID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "department id is required")
	}
	key := auditCacheKey(departmentID)

	if !fresh && s.cache != nil {
		var cached planner.AuditReport
		if hit, err := s.cache.Get(ctx, key, &cached); err == nil && hit {
			return &dto.ConflictReportResponse{DepartmentID: departmentID, Cached: true, Report: cached}, nil
		}
	}

	if _, err := s.departments.FindByID(ctx, departmentID); err != nil {
		return nil, departmentLookupError(err)
	}

	details, err := s.exams.ListByDepartment(ctx, nil, departmentID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load exams")
	}
	bookings, err := s.exams.ListRoomBookings(ctx, nil)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load room bookings")
	}
	pairs, err := s.enrollments.ListByDepartment(ctx, nil, departmentID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load enrollments")
	}
	students, err := s.students.ListEnrolledInDepartment(ctx, departmentID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load students")
	}

	input := planner.AuditInput{
		Exams:        make([]planner.ExamRecord, 0, len(details)),
		RoomBookings: make([]planner.ExamRecord, 0, len(bookings)),
		Enrollments:  toEnrollmentSet(pairs),
		Students:     make(map[string]planner.StudentInfo, len(students)),
	}
	for _, d := range details {
		input.Exams = append(input.Exams, toExamRecord(d))
	}
	for _, b := range bookings {
		input.RoomBookings = append(input.RoomBookings, planner.ExamRecord{
			ID:         b.ExamID,
			CourseID:   b.CourseID,
			CourseCode: b.CourseCode,
			Start:      b.Start,
			RoomID:     b.RoomID,
			RoomCode:   b.RoomCode,
		})
	}
	for _, st := range students {
		input.Students[st.ID] = planner.StudentInfo{ID: st.ID, Number: st.Number, FullName: st.FullName}
	}

	report := planner.Audit(input)
	s.logger.Sugar().Infow("exam conflicts audited",
		"department_id", departmentID,
		"exams", len(details),
		"student_conflicts", report.StudentConflictCount,
		"room_conflicts", report.RoomConflictCount,
	)

	if s.cache != nil {
		_ = s.cache.Set(ctx, key, report, s.ttl)
	}
	return &dto.ConflictReportResponse{DepartmentID: departmentID, Report: report}, nil
}

func toExamRecord(d models.ExamDetail) planner.ExamRecord {
	record := planner.ExamRecord{
		ID:         d.ID,
		CourseID:   d.CourseID,
		CourseCode: d.CourseCode,
		ClassYear:  d.ClassYear,
		Start:      d.Start,
	}
	if d.RoomID != nil {
		record.RoomID = *d.RoomID
	}
	if d.RoomCode != nil {
		record.RoomCode = *d.RoomCode
	}
	return record
}
