package planner

import "fmt"

// SeatGrid describes the desk layout of a room.
type SeatGrid struct {
	Rows         int `json:"rows"`
	Cols         int `json:"cols"`
	SeatsPerDesk int `json:"seats_per_desk"`
}

// Capacity is rows × cols × seats per desk.
func (g SeatGrid) Capacity() int {
	return g.Rows * g.Cols * g.SeatsPerDesk
}

// Validate rejects non-positive dimensions.
func (g SeatGrid) Validate() error {
	if g.Rows <= 0 || g.Cols <= 0 || g.SeatsPerDesk <= 0 {
		return fmt.Errorf("%w: rows=%d cols=%d seats_per_desk=%d", ErrInvalidGrid, g.Rows, g.Cols, g.SeatsPerDesk)
	}
	return nil
}

// RosterEntry is one student sitting an exam.
type RosterEntry struct {
	StudentID string `json:"student_id"`
	Number    string `json:"number"`
	FullName  string `json:"full_name"`
}

// SeatAssignment places a student. Row, Col and Seat are 1-based.
type SeatAssignment struct {
	Student RosterEntry `json:"student"`
	Row     int         `json:"row"`
	Col     int         `json:"col"`
	Seat    int         `json:"seat"`
}

// SeatPlan is the outcome of seating a roster.
type SeatPlan struct {
	Grid     SeatGrid         `json:"grid"`
	Capacity int              `json:"capacity"`
	Seated   []SeatAssignment `json:"seated"`
	Unseated []RosterEntry    `json:"unseated"`
}

// PlanSeats fills the grid one layer at a time: every desk receives its first
// student, in row-major order, before any desk receives a second one. Students
// beyond capacity are returned in Unseated in roster order.
func PlanSeats(roster []RosterEntry, grid SeatGrid) (SeatPlan, error) {
	if err := grid.Validate(); err != nil {
		return SeatPlan{}, err
	}

	capacity := grid.Capacity()
	seatedCount := min(len(roster), capacity)
	desks := grid.Rows * grid.Cols

	plan := SeatPlan{
		Grid:     grid,
		Capacity: capacity,
		Seated:   make([]SeatAssignment, 0, seatedCount),
		Unseated: append(make([]RosterEntry, 0, len(roster)-seatedCount), roster[seatedCount:]...),
	}

	for i := 0; i < seatedCount; i++ {
		layer := i / desks
		desk := i % desks
		plan.Seated = append(plan.Seated, SeatAssignment{
			Student: roster[i],
			Row:     desk/grid.Cols + 1,
			Col:     desk%grid.Cols + 1,
			Seat:    layer + 1,
		})
	}
	return plan, nil
}
