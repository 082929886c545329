package planner

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func slotsAt(t *testing.T, raw ...string) []time.Time {
	t.Helper()
	out := make([]time.Time, 0, len(raw))
	for _, r := range raw {
		ts, err := ParseSlot(r)
		require.NoError(t, err)
		out = append(out, ts)
	}
	return out
}

func byCourse(result ScheduleResult) map[string]Placement {
	out := make(map[string]Placement, len(result.Placements))
	for _, p := range result.Placements {
		out[p.CourseID] = p
	}
	return out
}

func threeCourseFixture() ([]Course, EnrollmentSet) {
	courses := []Course{
		{ID: "A", Code: "A101", ClassYear: 1},
		{ID: "B", Code: "B101", ClassYear: 1},
		{ID: "C", Code: "C101", ClassYear: 1},
	}
	enrollments := NewEnrollmentSet([]Enrollment{
		{StudentID: "1", CourseID: "A"},
		{StudentID: "2", CourseID: "A"},
		{StudentID: "2", CourseID: "B"},
		{StudentID: "3", CourseID: "B"},
		{StudentID: "4", CourseID: "C"},
	})
	return courses, enrollments
}

func TestScheduleSeparatesConflictingCoursesWithTwoSlots(t *testing.T) {
	courses, enrollments := threeCourseFixture()
	policy := DefaultPolicy()
	policy.CooldownMinutes = 0

	result, err := Schedule(ScheduleInput{
		Courses:     courses,
		Enrollments: enrollments,
		Slots:       slotsAt(t, "2026-01-12 09:00", "2026-01-12 11:00"),
		Policy:      policy,
	})
	require.NoError(t, err)

	placed := byCourse(result)
	require.Len(t, placed, 3)
	assert.NotEqual(t, placed["A"].Start, placed["B"].Start)
	assert.Zero(t, result.ForcedCount)
	assert.Equal(t, 1, result.EdgeCount)
}

func TestScheduleNeverCollidesWhenPoolIsLarge(t *testing.T) {
	courses := []Course{
		{ID: "c1", Code: "MAT101", ClassYear: 1},
		{ID: "c2", Code: "PHY101", ClassYear: 1},
		{ID: "c3", Code: "CHE101", ClassYear: 1},
		{ID: "c4", Code: "BIO201", ClassYear: 2},
		{ID: "c5", Code: "HIS201", ClassYear: 2},
	}
	var pairs []Enrollment
	// every course shares student s0, so the graph is complete
	for _, c := range courses {
		pairs = append(pairs, Enrollment{StudentID: "s0", CourseID: c.ID})
	}
	pairs = append(pairs, Enrollment{StudentID: "s1", CourseID: "c1"}, Enrollment{StudentID: "s2", CourseID: "c4"})
	enrollments := NewEnrollmentSet(pairs)

	start, end := time.Date(2026, 1, 12, 0, 0, 0, 0, time.Local), time.Date(2026, 1, 13, 0, 0, 0, 0, time.Local)
	slots, err := GenerateSlotPool(SlotPoolConfig{DateStart: &start, DateEnd: &end}, time.Now())
	require.NoError(t, err)

	result, err := Schedule(ScheduleInput{Courses: courses, Enrollments: enrollments, Slots: slots, Policy: DefaultPolicy()})
	require.NoError(t, err)
	require.Len(t, result.Placements, len(courses))
	assert.Zero(t, result.ForcedCount)

	graph := BuildConflictGraph(courses, enrollments)
	for i, a := range result.Placements {
		for _, b := range result.Placements[i+1:] {
			if graph.HasEdge(a.CourseID, b.CourseID) {
				assert.NotEqual(t, a.Start, b.Start, "%s and %s share a student", a.CourseCode, b.CourseCode)
			}
		}
	}
}

func TestScheduleForcesIntoLastSlotWhenPoolExhausted(t *testing.T) {
	courses := []Course{{ID: "A", Code: "A"}, {ID: "B", Code: "B"}, {ID: "C", Code: "C"}}
	enrollments := NewEnrollmentSet([]Enrollment{
		{StudentID: "1", CourseID: "A"},
		{StudentID: "1", CourseID: "B"},
		{StudentID: "1", CourseID: "C"},
	})
	slots := slotsAt(t, "2026-01-12 09:00", "2026-01-12 11:00")
	policy := DefaultPolicy()
	policy.CooldownMinutes = 0

	result, err := Schedule(ScheduleInput{Courses: courses, Enrollments: enrollments, Slots: slots, Policy: policy})
	require.NoError(t, err)

	require.Len(t, result.Placements, 3)
	assert.Equal(t, 1, result.ForcedCount)
	assert.Equal(t, 1, result.PhaseCounts.Forced)
	last := result.Placements[2]
	assert.Equal(t, "C", last.CourseID)
	assert.True(t, last.Forced)
	assert.Equal(t, PhaseForced, last.Phase)
	assert.Equal(t, "2026-01-12 11:00", last.Start)
	assert.Equal(t, []string{"C"}, result.ForcedCourseCodes())
}

func TestScheduleOrdersBySizeThenDegreeThenCode(t *testing.T) {
	courses := []Course{
		{ID: "z", Code: "ZZZ"},
		{ID: "y", Code: "YYY"},
		{ID: "x", Code: "XXX"},
		{ID: "w", Code: "AAA"},
	}
	enrollments := NewEnrollmentSet([]Enrollment{
		{StudentID: "1", CourseID: "z"}, {StudentID: "2", CourseID: "z"}, {StudentID: "3", CourseID: "z"},
		{StudentID: "4", CourseID: "y"}, {StudentID: "5", CourseID: "y"},
		{StudentID: "4", CourseID: "x"}, {StudentID: "6", CourseID: "x"},
		{StudentID: "7", CourseID: "w"}, {StudentID: "8", CourseID: "w"},
	})

	result, err := Schedule(ScheduleInput{
		Courses:     courses,
		Enrollments: enrollments,
		Slots:       slotsAt(t, "2026-01-12 09:00", "2026-01-12 11:00", "2026-01-12 13:30"),
		Policy:      DefaultPolicy(),
	})
	require.NoError(t, err)

	var order []string
	for _, p := range result.Placements {
		order = append(order, p.CourseCode)
	}
	// size 3 first; x and y have degree 1 and beat w; x before y by code
	assert.Equal(t, []string{"ZZZ", "XXX", "YYY", "AAA"}, order)
}

func TestScheduleSpreadsClassYearAcrossDays(t *testing.T) {
	courses := []Course{
		{ID: "a", Code: "A", ClassYear: 2},
		{ID: "b", Code: "B", ClassYear: 2},
		{ID: "c", Code: "C", ClassYear: 3},
	}
	slots := slotsAt(t, "2026-01-12 09:00", "2026-01-12 11:00", "2026-01-13 09:00")

	result, err := Schedule(ScheduleInput{Courses: courses, Enrollments: EnrollmentSet{}, Slots: slots, Policy: DefaultPolicy()})
	require.NoError(t, err)

	placed := byCourse(result)
	assert.Equal(t, "2026-01-12 09:00", placed["a"].Start)
	assert.Equal(t, "2026-01-13 09:00", placed["b"].Start)
	assert.Equal(t, "2026-01-12 09:00", placed["c"].Start)
	assert.Equal(t, 3, result.PhaseCounts.Spread)
}

func TestScheduleFallsBackToFirstFitWhenDaysRunOut(t *testing.T) {
	courses := []Course{{ID: "a", Code: "A", ClassYear: 1}, {ID: "b", Code: "B", ClassYear: 1}}
	slots := slotsAt(t, "2026-01-12 09:00", "2026-01-12 11:00")

	result, err := Schedule(ScheduleInput{Courses: courses, Enrollments: EnrollmentSet{}, Slots: slots, Policy: DefaultPolicy()})
	require.NoError(t, err)

	placed := byCourse(result)
	assert.Equal(t, PhaseSpread, placed["a"].Phase)
	assert.Equal(t, PhaseFirstFit, placed["b"].Phase)
	assert.Equal(t, "2026-01-12 09:00", placed["b"].Start)
}

func TestScheduleSingleExamAtATime(t *testing.T) {
	courses := []Course{{ID: "a", Code: "A"}, {ID: "b", Code: "B"}}
	slots := slotsAt(t, "2026-01-12 09:00", "2026-01-12 11:00")
	policy := DefaultPolicy()
	policy.SingleExamAtATime = true

	result, err := Schedule(ScheduleInput{Courses: courses, Enrollments: EnrollmentSet{}, Slots: slots, Policy: policy})
	require.NoError(t, err)

	placed := byCourse(result)
	assert.Equal(t, "2026-01-12 09:00", placed["a"].Start)
	assert.Equal(t, "2026-01-12 11:00", placed["b"].Start)
}

func TestScheduleCooldownIsRecencyOnly(t *testing.T) {
	slots := slotsAt(t, "2026-01-12 09:00", "2026-01-12 09:10", "2026-01-12 11:00")
	courses := []Course{{ID: "a", Code: "A"}, {ID: "b", Code: "B"}}
	enrollments := NewEnrollmentSet([]Enrollment{{StudentID: "1", CourseID: "a"}, {StudentID: "1", CourseID: "b"}})

	policy := DefaultPolicy()
	policy.CooldownMinutes = 30
	result, err := Schedule(ScheduleInput{Courses: courses, Enrollments: enrollments, Slots: slots, Policy: policy})
	require.NoError(t, err)
	placed := byCourse(result)
	assert.Equal(t, "2026-01-12 09:00", placed["a"].Start)
	// 09:10 is 10 minutes after a, inside the cooldown
	assert.Equal(t, "2026-01-12 11:00", placed["b"].Start)

	// without a cooldown only the shared slot itself is forbidden
	policy.CooldownMinutes = 0
	result, err = Schedule(ScheduleInput{Courses: courses, Enrollments: enrollments, Slots: slots, Policy: policy})
	require.NoError(t, err)
	assert.Equal(t, "2026-01-12 09:10", byCourse(result)["b"].Start)
}

func TestScheduleSkipsExcludedCourses(t *testing.T) {
	courses, enrollments := threeCourseFixture()
	policy := DefaultPolicy()
	policy.ExcludedCourses = map[string]struct{}{"B": {}}

	result, err := Schedule(ScheduleInput{
		Courses:     courses,
		Enrollments: enrollments,
		Slots:       slotsAt(t, "2026-01-12 09:00"),
		Policy:      policy,
	})
	require.NoError(t, err)

	placed := byCourse(result)
	assert.Len(t, placed, 2)
	assert.NotContains(t, placed, "B")
	assert.Zero(t, result.ForcedCount)
}

func TestScheduleIsDeterministic(t *testing.T) {
	courses, enrollments := threeCourseFixture()
	in := ScheduleInput{
		Courses:     courses,
		Enrollments: enrollments,
		Slots:       slotsAt(t, "2026-01-12 09:00", "2026-01-12 11:00", "2026-01-13 09:00"),
		Policy:      DefaultPolicy(),
	}

	first, err := Schedule(in)
	require.NoError(t, err)
	second, err := Schedule(in)
	require.NoError(t, err)

	assert.Equal(t, len(courses), len(second.Placements))
	assert.Equal(t, first.Placements, second.Placements)
}

func TestScheduleRequiresSlots(t *testing.T) {
	courses, enrollments := threeCourseFixture()
	_, err := Schedule(ScheduleInput{Courses: courses, Enrollments: enrollments, Policy: DefaultPolicy()})
	assert.ErrorIs(t, err, ErrEmptySlotPool)

	result, err := Schedule(ScheduleInput{Policy: DefaultPolicy()})
	require.NoError(t, err)
	assert.Empty(t, result.Placements)
}

func TestParseExamType(t *testing.T) {
	assert.Equal(t, ExamTypeFinal, ParseExamType("final"))
	assert.Equal(t, ExamTypeMakeup, ParseExamType(" Makeup "))
	assert.Equal(t, ExamTypeMidterm, ParseExamType("quiz"))
	assert.Equal(t, ExamTypeMidterm, ParseExamType(""))
}
