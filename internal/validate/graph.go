package validate

import (
	"fmt"

	"github.com/calvinalkan/taskvault/internal/entity"
)

// CheckCircularDependencies detects cycles in the dependency graph derived
// from milestone/task co-membership.
//
// For every task attached to a known project, the first milestone listing
// the task contributes its remaining task references as that task's
// dependency list. Co-membership is symmetric, so any milestone holding two
// or more tasks forms a mutual cycle by construction, and a task listed
// twice in the same milestone depends on itself. Callers rely on this
// over-approximation; do not weaken it.
//
// Traversal is an explicit-stack depth-first search with the classic
// white/gray/black coloring, shared across all starting tasks. Once a cycle
// is found the gray marks along the losing path are kept, so every task on
// a cyclic path reports, not just the first one walked.
func CheckCircularDependencies(
	milestones []entity.Milestone, tasks []entity.Task, projects []entity.Project,
) Result {
	var result Result

	walker := &cycleWalker{
		deps:    buildDependencies(milestones, tasks, projects),
		visited: make(map[string]bool),
		onPath:  make(map[string]bool),
	}

	for i := range tasks {
		if walker.hasCycle(tasks[i].ID) {
			result.addError("circularDependency", fmt.Sprintf(
				"task %q is part of a circular dependency chain", tasks[i].Title))
		}
	}

	return result
}

// buildDependencies maps each task to the co-members of the first milestone
// that lists it. One occurrence of the task's own ID is dropped, so a
// single-task milestone yields no edges while a duplicated ID keeps a
// self-edge.
func buildDependencies(
	milestones []entity.Milestone, tasks []entity.Task, projects []entity.Project,
) map[string][]string {
	deps := make(map[string][]string, len(tasks))

	for i := range tasks {
		task := &tasks[i]
		if task.ProjectID == "" {
			continue
		}

		if entity.FindProject(projects, task.ProjectID) == nil {
			continue
		}

		for _, milestone := range milestones {
			if !contains(milestone.TaskIDs, task.ID) {
				continue
			}

			deps[task.ID] = withoutFirst(milestone.TaskIDs, task.ID)

			break
		}
	}

	return deps
}

func contains(ids []string, id string) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}

	return false
}

// withoutFirst returns ids with the first occurrence of id removed.
func withoutFirst(ids []string, id string) []string {
	out := make([]string, 0, len(ids))
	skipped := false

	for _, candidate := range ids {
		if !skipped && candidate == id {
			skipped = true

			continue
		}

		out = append(out, candidate)
	}

	return out
}

// cycleWalker holds the shared traversal state. visited is the black set,
// onPath the gray set.
type cycleWalker struct {
	deps    map[string][]string
	visited map[string]bool
	onPath  map[string]bool
}

// dfsFrame tracks one node on the explicit DFS stack together with the index
// of the next dependency edge to examine.
type dfsFrame struct {
	id   string
	next int
}

// hasCycle reports whether a cycle is reachable from start. Gray marks stay
// in place on the found-cycle return path so subsequent starting tasks on
// the same cycle also report.
func (w *cycleWalker) hasCycle(start string) bool {
	if w.onPath[start] {
		return true
	}

	if w.visited[start] {
		return false
	}

	w.visited[start] = true
	w.onPath[start] = true

	stack := []dfsFrame{{id: start}}

	for len(stack) > 0 {
		frame := &stack[len(stack)-1]
		edges := w.deps[frame.id]

		if frame.next < len(edges) {
			dep := edges[frame.next]
			frame.next++

			if w.onPath[dep] {
				return true
			}

			if w.visited[dep] {
				continue
			}

			w.visited[dep] = true
			w.onPath[dep] = true

			stack = append(stack, dfsFrame{id: dep})

			continue
		}

		w.onPath[frame.id] = false
		stack = stack[:len(stack)-1]
	}

	return false
}
