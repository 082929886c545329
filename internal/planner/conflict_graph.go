package planner

import "sort"

// ConflictGraph is an undirected graph over courses. An edge joins two
// courses whose enrolled student sets intersect.
type ConflictGraph struct {
	Courses   []string
	Adjacency map[string]map[string]struct{}
}

// BuildConflictGraph tests every course pair for a shared student.
func BuildConflictGraph(courses []Course, enrollments EnrollmentSet) *ConflictGraph {
	g := &ConflictGraph{
		Courses:   make([]string, 0, len(courses)),
		Adjacency: make(map[string]map[string]struct{}, len(courses)),
	}
	for _, c := range courses {
		if _, seen := g.Adjacency[c.ID]; seen {
			continue
		}
		g.Courses = append(g.Courses, c.ID)
		g.Adjacency[c.ID] = make(map[string]struct{})
	}

	for i := 0; i < len(g.Courses); i++ {
		a := g.Courses[i]
		if enrollments.Size(a) == 0 {
			continue
		}
		for j := i + 1; j < len(g.Courses); j++ {
			b := g.Courses[j]
			if enrollments.Size(b) == 0 {
				continue
			}
			if enrollments.Shared(a, b) {
				g.Adjacency[a][b] = struct{}{}
				g.Adjacency[b][a] = struct{}{}
			}
		}
	}
	return g
}

// Neighbors returns the courses adjacent to id in ascending id order.
func (g *ConflictGraph) Neighbors(id string) []string {
	out := make([]string, 0, len(g.Adjacency[id]))
	for nb := range g.Adjacency[id] {
		out = append(out, nb)
	}
	sort.Strings(out)
	return out
}

// Degree returns the number of courses conflicting with id.
func (g *ConflictGraph) Degree(id string) int {
	return len(g.Adjacency[id])
}

// HasEdge reports whether a and b conflict.
func (g *ConflictGraph) HasEdge(a, b string) bool {
	_, ok := g.Adjacency[a][b]
	return ok
}

// EdgeCount returns the number of undirected edges.
func (g *ConflictGraph) EdgeCount() int {
	total := 0
	for _, nbs := range g.Adjacency {
		total += len(nbs)
	}
	return total / 2
}
