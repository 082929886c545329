package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/exam-planner-api/internal/models"
)

const examDetailSelect = `SELECT x.id, x.course_id, x.exam_start, x.duration_min, x.room_id, x.exam_type, x.created_at, x.updated_at,
c.department_id, c.code AS course_code, c.name AS course_name, c.class_year, r.code AS room_code
FROM exams x
JOIN courses c ON c.id = x.course_id
LEFT JOIN classrooms r ON r.id = x.room_id`

// ExamRepository persists exams.
type ExamRepository struct {
	db *sqlx.DB
}

// NewExamRepository constructs the repository.
func NewExamRepository(db *sqlx.DB) *ExamRepository {
	return &ExamRepository{db: db}
}

func (r *ExamRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// ListByDepartment returns the department exams with course and room labels,
// ordered by start then course code.
func (r *ExamRepository) ListByDepartment(ctx context.Context, exec sqlx.ExtContext, departmentID string) ([]models.ExamDetail, error) {
	var exams []models.ExamDetail
	query := examDetailSelect + ` WHERE c.department_id = $1 ORDER BY x.exam_start, c.code`
	if err := sqlx.SelectContext(ctx, r.exec(exec), &exams, query, departmentID); err != nil {
		return nil, fmt.Errorf("list exams: %w", err)
	}
	return exams, nil
}

// FindDetailByID returns one exam with labels or sql.ErrNoRows.
func (r *ExamRepository) FindDetailByID(ctx context.Context, exec sqlx.ExtContext, id string) (*models.ExamDetail, error) {
	var exam models.ExamDetail
	query := examDetailSelect + ` WHERE x.id = $1`
	if err := sqlx.GetContext(ctx, r.exec(exec), &exam, query, id); err != nil {
		return nil, err
	}
	return &exam, nil
}

// ListRoomBookings returns every room-bound exam across all departments.
func (r *ExamRepository) ListRoomBookings(ctx context.Context, exec sqlx.ExtContext) ([]models.RoomBooking, error) {
	var bookings []models.RoomBooking
	const query = `SELECT x.id AS exam_id, x.course_id, c.code AS course_code, x.room_id, r.code AS room_code, x.exam_start
FROM exams x
JOIN courses c ON c.id = x.course_id
JOIN classrooms r ON r.id = x.room_id
WHERE x.room_id IS NOT NULL
ORDER BY x.exam_start, r.code`
	if err := sqlx.SelectContext(ctx, r.exec(exec), &bookings, query); err != nil {
		return nil, fmt.Errorf("list room bookings: %w", err)
	}
	return bookings, nil
}

// ListUnroomedByDepartment returns department exams without a room and the
// number of seats each needs.
func (r *ExamRepository) ListUnroomedByDepartment(ctx context.Context, exec sqlx.ExtContext, departmentID string) ([]models.UnroomedExam, error) {
	var exams []models.UnroomedExam
	const query = `SELECT x.id AS exam_id, x.course_id, c.code AS course_code, c.class_year, x.exam_start,
(SELECT COUNT(*) FROM enrollments e WHERE e.course_id = x.course_id) AS required_seats
FROM exams x
JOIN courses c ON c.id = x.course_id
WHERE c.department_id = $1 AND x.room_id IS NULL
ORDER BY x.exam_start, c.class_year, c.code`
	if err := sqlx.SelectContext(ctx, r.exec(exec), &exams, query, departmentID); err != nil {
		return nil, fmt.Errorf("list unroomed exams: %w", err)
	}
	return exams, nil
}

// DeleteByDepartment removes every exam of every course in the department.
func (r *ExamRepository) DeleteByDepartment(ctx context.Context, exec sqlx.ExtContext, departmentID string) (int64, error) {
	const query = `DELETE FROM exams WHERE course_id IN (SELECT id FROM courses WHERE department_id = $1)`
	result, err := r.exec(exec).ExecContext(ctx, query, departmentID)
	if err != nil {
		return 0, fmt.Errorf("delete department exams: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete department exams rows affected: %w", err)
	}
	return affected, nil
}

// BulkInsert stores exams in a single statement, filling ids and timestamps.
func (r *ExamRepository) BulkInsert(ctx context.Context, exec sqlx.ExtContext, exams []models.Exam) error {
	if len(exams) == 0 {
		return nil
	}

	now := time.Now().UTC()
	const cols = 8
	placeholders := make([]string, 0, len(exams))
	args := make([]interface{}, 0, len(exams)*cols)
	for i := range exams {
		exam := &exams[i]
		if exam.ID == "" {
			exam.ID = uuid.NewString()
		}
		if exam.CreatedAt.IsZero() {
			exam.CreatedAt = now
		}
		exam.UpdatedAt = now

		base := i * cols
		placeholders = append(placeholders, fmt.Sprintf("($%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d)",
			base+1, base+2, base+3, base+4, base+5, base+6, base+7, base+8))
		args = append(args, exam.ID, exam.CourseID, exam.Start, exam.DurationMin, exam.RoomID, exam.ExamType, exam.CreatedAt, exam.UpdatedAt)
	}

	query := `INSERT INTO exams (id, course_id, exam_start, duration_min, room_id, exam_type, created_at, updated_at) VALUES ` + strings.Join(placeholders, ", ")
	if _, err := r.exec(exec).ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("bulk insert exams: %w", err)
	}
	return nil
}

// UpdateRoom binds an exam to a room.
func (r *ExamRepository) UpdateRoom(ctx context.Context, exec sqlx.ExtContext, examID, roomID string) error {
	const query = `UPDATE exams SET room_id = $1, updated_at = $2 WHERE id = $3`
	result, err := r.exec(exec).ExecContext(ctx, query, roomID, time.Now().UTC(), examID)
	if err != nil {
		return fmt.Errorf("update exam room: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update exam room rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Update applies a manual edit. Returns sql.ErrNoRows for unknown exams.
func (r *ExamRepository) Update(ctx context.Context, exec sqlx.ExtContext, examID string, update models.ExamUpdate) error {
	sets := make([]string, 0, 5)
	args := make([]interface{}, 0, 6)
	add := func(column string, value interface{}) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if update.Start != nil {
		add("exam_start", *update.Start)
	}
	switch {
	case update.ClearRoom:
		sets = append(sets, "room_id = NULL")
	case update.RoomID != nil:
		add("room_id", *update.RoomID)
	}
	if update.DurationMin != nil {
		add("duration_min", *update.DurationMin)
	}
	if update.ExamType != nil {
		add("exam_type", *update.ExamType)
	}
	add("updated_at", time.Now().UTC())

	args = append(args, examID)
	query := fmt.Sprintf("UPDATE exams SET %s WHERE id = $%d", strings.Join(sets, ", "), len(args))

	result, err := r.exec(exec).ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update exam: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update exam rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
