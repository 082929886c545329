package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/exam-planner-api/internal/models"
)

// StudentRepository reads students for rosters and conflict reports.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs the repository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// ListByCourse returns the roster of a course ordered by student number.
func (r *StudentRepository) ListByCourse(ctx context.Context, courseID string) ([]models.Student, error) {
	var students []models.Student
	const query = `SELECT s.id, s.department_id, s.number, s.full_name, s.class_year FROM students s JOIN enrollments e ON e.student_id = s.id WHERE e.course_id = $1 ORDER BY s.number, s.id`
	if err := r.db.SelectContext(ctx, &students, query, courseID); err != nil {
		return nil, fmt.Errorf("list course roster: %w", err)
	}
	return students, nil
}

// ListEnrolledInDepartment returns every student enrolled in at least one
// course of the department.
func (r *StudentRepository) ListEnrolledInDepartment(ctx context.Context, departmentID string) ([]models.Student, error) {
	var students []models.Student
	const query = `SELECT DISTINCT s.id, s.department_id, s.number, s.full_name, s.class_year FROM students s JOIN enrollments e ON e.student_id = s.id JOIN courses c ON c.id = e.course_id WHERE c.department_id = $1 ORDER BY s.number, s.id`
	if err := r.db.SelectContext(ctx, &students, query, departmentID); err != nil {
		return nil, fmt.Errorf("list department students: %w", err)
	}
	return students, nil
}
