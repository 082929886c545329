package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/exam-planner-api/internal/models"
)

// DepartmentRepository reads departments and their planning summary.
type DepartmentRepository struct {
	db *sqlx.DB
}

// NewDepartmentRepository constructs the repository.
func NewDepartmentRepository(db *sqlx.DB) *DepartmentRepository {
	return &DepartmentRepository{db: db}
}

// FindByID returns a department or sql.ErrNoRows.
func (r *DepartmentRepository) FindByID(ctx context.Context, id string) (*models.Department, error) {
	var dept models.Department
	if err := r.db.GetContext(ctx, &dept, `SELECT id, name FROM departments WHERE id = $1`, id); err != nil {
		return nil, err
	}
	return &dept, nil
}

// Status counts the planning inputs and outputs of a department in one round trip.
func (r *DepartmentRepository) Status(ctx context.Context, departmentID string) (*models.ExamPlanStatus, error) {
	const query = `SELECT $1::text AS department_id,
(SELECT COUNT(*) FROM courses c WHERE c.department_id = $1) AS courses,
(SELECT COUNT(*) FROM students s WHERE s.department_id = $1) AS students,
(SELECT COUNT(*) FROM enrollments e JOIN courses c ON c.id = e.course_id WHERE c.department_id = $1) AS enrollments,
(SELECT COUNT(*) FROM classrooms r WHERE r.department_id = $1) AS classrooms,
(SELECT COUNT(*) FROM exams x JOIN courses c ON c.id = x.course_id WHERE c.department_id = $1) AS exams,
(SELECT COUNT(*) FROM exams x JOIN courses c ON c.id = x.course_id WHERE c.department_id = $1 AND x.room_id IS NULL) AS exams_without_room,
(SELECT COUNT(*) FROM courses c LEFT JOIN exams x ON x.course_id = c.id WHERE c.department_id = $1 AND x.id IS NULL) AS courses_without_exam`

	var status models.ExamPlanStatus
	if err := r.db.GetContext(ctx, &status, query, departmentID); err != nil {
		return nil, fmt.Errorf("exam plan status: %w", err)
	}
	return &status, nil
}
