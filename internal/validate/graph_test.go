package validate

import (
	"strings"
	"testing"

	"github.com/calvinalkan/taskvault/internal/entity"
)

func graphFixture(taskIDs ...string) ([]entity.Milestone, []entity.Task, []entity.Project) {
	milestones := []entity.Milestone{
		{ID: "m1", Title: "Sprint", TaskIDs: taskIDs},
	}
	projects := []entity.Project{{ID: "p1", Name: "App", GoalID: "g1"}}

	seen := make(map[string]bool)

	var tasks []entity.Task

	for _, id := range taskIDs {
		if seen[id] {
			continue
		}

		seen[id] = true
		tasks = append(tasks, entity.Task{
			ID: id, Title: "Task " + id, Status: entity.StatusTodo,
			Priority: entity.PriorityMedium, ProjectID: "p1",
		})
	}

	return milestones, tasks, projects
}

func TestCheckCircularDependencies(t *testing.T) {
	t.Parallel()

	t.Run("two co-members form a mutual cycle", func(t *testing.T) {
		t.Parallel()

		milestones, tasks, projects := graphFixture("a", "b")

		result := CheckCircularDependencies(milestones, tasks, projects)
		if result.IsValid() {
			t.Fatal("expected cycle errors for a two-task milestone")
		}

		for _, issue := range result.Errors {
			if issue.Field != "circularDependency" {
				t.Errorf("error field = %q, want circularDependency", issue.Field)
			}
		}

		// Both tasks sit on the cycle, so both report.
		if len(result.Errors) != 2 {
			t.Errorf("got %d errors, want 2: %v", len(result.Errors), result.Errors)
		}
	})

	t.Run("single task milestone has no cycle", func(t *testing.T) {
		t.Parallel()

		milestones, tasks, projects := graphFixture("a")

		result := CheckCircularDependencies(milestones, tasks, projects)
		if !result.IsValid() {
			t.Fatalf("expected no cycle, got %v", result.Errors)
		}
	})

	t.Run("duplicated id is a self cycle", func(t *testing.T) {
		t.Parallel()

		milestones, tasks, projects := graphFixture("a", "a")

		result := CheckCircularDependencies(milestones, tasks, projects)
		if result.IsValid() {
			t.Fatal("expected a self-referential cycle")
		}

		if !strings.Contains(result.Errors[0].Message, "Task a") {
			t.Errorf("error %q does not name the task", result.Errors[0].Message)
		}
	})

	t.Run("task without project is skipped", func(t *testing.T) {
		t.Parallel()

		milestones := []entity.Milestone{{ID: "m1", Title: "Sprint", TaskIDs: []string{"a", "b"}}}
		tasks := []entity.Task{
			{ID: "a", Title: "Task a", Status: entity.StatusTodo, Priority: entity.PriorityLow},
			{ID: "b", Title: "Task b", Status: entity.StatusTodo, Priority: entity.PriorityLow},
		}

		result := CheckCircularDependencies(milestones, tasks, nil)
		if !result.IsValid() {
			t.Fatalf("tasks without projects must not join the graph, got %v", result.Errors)
		}
	})

	t.Run("unknown project is skipped", func(t *testing.T) {
		t.Parallel()

		milestones := []entity.Milestone{{ID: "m1", Title: "Sprint", TaskIDs: []string{"a", "b"}}}
		tasks := []entity.Task{
			{ID: "a", Title: "Task a", Status: entity.StatusTodo, Priority: entity.PriorityLow, ProjectID: "ghost"},
			{ID: "b", Title: "Task b", Status: entity.StatusTodo, Priority: entity.PriorityLow, ProjectID: "ghost"},
		}

		result := CheckCircularDependencies(milestones, tasks, []entity.Project{{ID: "p1"}})
		if !result.IsValid() {
			t.Fatalf("tasks with unresolvable projects must not join the graph, got %v", result.Errors)
		}
	})

	t.Run("disjoint single-task milestones stay acyclic", func(t *testing.T) {
		t.Parallel()

		milestones := []entity.Milestone{
			{ID: "m1", Title: "One", TaskIDs: []string{"a"}},
			{ID: "m2", Title: "Two", TaskIDs: []string{"b"}},
		}
		tasks := []entity.Task{
			{ID: "a", Title: "Task a", Status: entity.StatusTodo, Priority: entity.PriorityLow, ProjectID: "p1"},
			{ID: "b", Title: "Task b", Status: entity.StatusTodo, Priority: entity.PriorityLow, ProjectID: "p1"},
		}
		projects := []entity.Project{{ID: "p1", Name: "App", GoalID: "g1"}}

		result := CheckCircularDependencies(milestones, tasks, projects)
		if !result.IsValid() {
			t.Fatalf("expected no cycles, got %v", result.Errors)
		}
	})

	t.Run("first listing milestone wins", func(t *testing.T) {
		t.Parallel()

		// Task a appears alone in m1 and with b in m2; the first match (m1,
		// no co-members) defines a's dependency list, so only b picks up
		// edges and no closed walk exists.
		milestones := []entity.Milestone{
			{ID: "m1", Title: "Solo", TaskIDs: []string{"a"}},
			{ID: "m2", Title: "Pair", TaskIDs: []string{"a", "b"}},
		}
		tasks := []entity.Task{
			{ID: "a", Title: "Task a", Status: entity.StatusTodo, Priority: entity.PriorityLow, ProjectID: "p1"},
			{ID: "b", Title: "Task b", Status: entity.StatusTodo, Priority: entity.PriorityLow, ProjectID: "p1"},
		}
		projects := []entity.Project{{ID: "p1", Name: "App", GoalID: "g1"}}

		result := CheckCircularDependencies(milestones, tasks, projects)
		if !result.IsValid() {
			t.Fatalf("expected no cycles, got %v", result.Errors)
		}
	})
}

func TestBuildDependenciesDropsOneSelfReference(t *testing.T) {
	t.Parallel()

	milestones, tasks, projects := graphFixture("a", "a", "b")

	deps := buildDependencies(milestones, tasks, projects)

	wantA := []string{"a", "b"}
	if len(deps["a"]) != len(wantA) || deps["a"][0] != "a" || deps["a"][1] != "b" {
		t.Errorf("deps[a] = %v, want %v", deps["a"], wantA)
	}

	wantB := []string{"a", "a"}
	if len(deps["b"]) != len(wantB) || deps["b"][0] != "a" || deps["b"][1] != "a" {
		t.Errorf("deps[b] = %v, want %v", deps["b"], wantB)
	}
}
