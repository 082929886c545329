package models

// Course is a department course that receives at most one exam.
type Course struct {
	ID           string `db:"id" json:"id"`
	DepartmentID string `db:"department_id" json:"department_id"`
	Code         string `db:"code" json:"code"`
	Name         string `db:"name" json:"name"`
	ClassYear    int    `db:"class_year" json:"class_year"`
}
