package models

// Student is a learner that can be enrolled in department courses.
type Student struct {
	ID           string `db:"id" json:"id"`
	DepartmentID string `db:"department_id" json:"department_id"`
	Number       string `db:"number" json:"number"`
	FullName     string `db:"full_name" json:"full_name"`
	ClassYear    int    `db:"class_year" json:"class_year"`
}
