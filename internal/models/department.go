package models

// Department owns courses, students and classrooms.
type Department struct {
	ID   string `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}

// ExamPlanStatus summarises the data a department has for exam planning.
type ExamPlanStatus struct {
	DepartmentID       string `db:"department_id" json:"department_id"`
	Courses            int    `db:"courses" json:"courses"`
	Students           int    `db:"students" json:"students"`
	Enrollments        int    `db:"enrollments" json:"enrollments"`
	Classrooms         int    `db:"classrooms" json:"classrooms"`
	Exams              int    `db:"exams" json:"exams"`
	ExamsWithoutRoom   int    `db:"exams_without_room" json:"exams_without_room"`
	CoursesWithoutExam int    `db:"courses_without_exam" json:"courses_without_exam"`
}
