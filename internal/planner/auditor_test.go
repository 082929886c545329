package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func auditFixture() AuditInput {
	return AuditInput{
		Enrollments: NewEnrollmentSet([]Enrollment{
			{StudentID: "s1", CourseID: "A"},
			{StudentID: "s2", CourseID: "A"},
			{StudentID: "s2", CourseID: "B"},
			{StudentID: "s3", CourseID: "B"},
			{StudentID: "s1", CourseID: "C"},
			{StudentID: "s2", CourseID: "C"},
		}),
		Students: map[string]StudentInfo{
			"s1": {ID: "s1", Number: "1001", FullName: "Ada"},
			"s2": {ID: "s2", Number: "1002", FullName: "Brook"},
			"s3": {ID: "s3", Number: "1003", FullName: "Cem"},
		},
	}
}

func TestAuditCleanScheduleHasNoConflicts(t *testing.T) {
	in := auditFixture()
	in.Exams = []ExamRecord{
		{ID: "e1", CourseID: "A", CourseCode: "A101", Start: "2026-01-12 09:00", RoomID: "r1"},
		{ID: "e2", CourseID: "B", CourseCode: "B101", Start: "2026-01-12 11:00", RoomID: "r1"},
		{ID: "e3", CourseID: "C", CourseCode: "C101", Start: "2026-01-12 13:30"},
	}

	report := Audit(in)
	assert.Zero(t, report.Total)
	assert.Empty(t, report.StudentConflicts)
	assert.Empty(t, report.RoomConflicts)
	assert.Empty(t, report.PerSlot)
}

func TestAuditReportsDuplicatedSlotPairs(t *testing.T) {
	in := auditFixture()
	in.Exams = []ExamRecord{
		{ID: "e3", CourseID: "C", CourseCode: "C101", Start: "2026-01-12 09:00"},
		{ID: "e1", CourseID: "A", CourseCode: "A101", Start: "2026-01-12 09:00"},
		{ID: "e2", CourseID: "B", CourseCode: "B101", Start: "2026-01-12 09:00"},
	}

	report := Audit(in)
	require.Equal(t, 4, report.StudentConflictCount)
	assert.Equal(t, 4, report.Total)
	assert.Equal(t, []SlotCount{{Slot: "2026-01-12 09:00", Count: 4}}, report.PerSlot)

	type pair struct{ number, a, b string }
	var got []pair
	for _, c := range report.StudentConflicts {
		got = append(got, pair{c.Student.Number, c.CourseA, c.CourseB})
	}
	assert.Equal(t, []pair{
		{"1001", "A101", "C101"},
		{"1002", "A101", "B101"},
		{"1002", "A101", "C101"},
		{"1002", "B101", "C101"},
	}, got)
	assert.Len(t, report.StudentConflictSample, 4)
}

func TestAuditUsesExactStartEquality(t *testing.T) {
	in := auditFixture()
	in.Exams = []ExamRecord{
		{ID: "e1", CourseID: "A", CourseCode: "A101", Start: "2026-01-12 09:00"},
		{ID: "e2", CourseID: "B", CourseCode: "B101", Start: "2026-01-12 09:01"},
	}
	assert.Zero(t, Audit(in).Total)
}

func TestAuditRoomConflictsIncludeOtherDepartments(t *testing.T) {
	in := auditFixture()
	in.Exams = []ExamRecord{
		{ID: "e1", CourseID: "A", CourseCode: "A101", Start: "2026-01-12 09:00", RoomID: "r1", RoomCode: "D-101"},
		{ID: "e2", CourseID: "B", CourseCode: "B101", Start: "2026-01-12 11:00", RoomID: "r2", RoomCode: "D-102"},
	}
	in.RoomBookings = []ExamRecord{
		in.Exams[0],
		{ID: "x1", CourseID: "X", CourseCode: "PHY200", Start: "2026-01-12 09:00", RoomID: "r1", RoomCode: "D-101"},
		{ID: "x2", CourseID: "Y", CourseCode: "ECO100", Start: "2026-01-12 13:30", RoomID: "r9", RoomCode: "E-1"},
		{ID: "x3", CourseID: "Z", CourseCode: "ECO200", Start: "2026-01-12 13:30", RoomID: "r9", RoomCode: "E-1"},
	}

	report := Audit(in)
	require.Len(t, report.RoomConflicts, 1)
	conflict := report.RoomConflicts[0]
	assert.Equal(t, "D-101", conflict.RoomCode)
	assert.Equal(t, "2026-01-12 09:00", conflict.Slot)
	assert.Equal(t, []string{"A101", "PHY200"}, conflict.CourseCodes)
	assert.Equal(t, 1, report.Total)
	assert.Equal(t, 1, report.RoomConflictCount)
}

func TestAuditSamplesAreBounded(t *testing.T) {
	in := AuditInput{Enrollments: EnrollmentSet{}, Students: map[string]StudentInfo{}}
	for _, id := range []string{"a", "b", "c", "d", "e", "f", "g"} {
		in.Enrollments.Add(id, "shared")
		in.Exams = append(in.Exams, ExamRecord{ID: "e" + id, CourseID: id, CourseCode: id, Start: "2026-01-12 09:00"})
	}

	report := Audit(in)
	assert.Equal(t, 21, report.StudentConflictCount)
	assert.Len(t, report.StudentConflictSample, sampleLimit)
	assert.Equal(t, "shared", report.StudentConflicts[0].Student.ID)
}
