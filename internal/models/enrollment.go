package models

// Enrollment is the student/course relation conflicts are derived from.
type Enrollment struct {
	StudentID string `db:"student_id" json:"student_id"`
	CourseID  string `db:"course_id" json:"course_id"`
}
