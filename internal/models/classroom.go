package models

// Classroom is a bookable exam room with a desk grid.
type Classroom struct {
	ID               string `db:"id" json:"id"`
	DepartmentID     string `db:"department_id" json:"department_id"`
	Code             string `db:"code" json:"code"`
	Name             string `db:"name" json:"name"`
	Rows             int    `db:"rows" json:"rows"`
	Cols             int    `db:"cols" json:"cols"`
	SeatsPerDesk     int    `db:"seats_per_desk" json:"seats_per_desk"`
	Capacity         int    `db:"capacity" json:"capacity"`
	CapacityOverride *int   `db:"capacity_override" json:"capacity_override,omitempty"`
}

// EffectiveCapacity returns the manual override when set, otherwise the
// computed capacity.
func (c Classroom) EffectiveCapacity() int {
	if c.CapacityOverride != nil {
		return *c.CapacityOverride
	}
	return c.Capacity
}
