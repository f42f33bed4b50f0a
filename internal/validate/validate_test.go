package validate

import (
	"strings"
	"testing"
	"time"

	"github.com/calvinalkan/taskvault/internal/entity"
)

func timePtr(t time.Time) *time.Time {
	return &t
}

func TestTaskData(t *testing.T) {
	t.Parallel()

	past := time.Now().Add(-24 * time.Hour)
	future := time.Now().Add(24 * time.Hour)

	tests := []struct {
		name         string
		task         entity.Task
		wantValid    bool
		wantErrField string
		wantWarns    int
	}{
		{
			name: "valid task",
			task: entity.Task{
				ID: "t1", Title: "Write report", Priority: entity.PriorityMedium,
				Status: entity.StatusTodo, DueDate: timePtr(future), CreatedAt: time.Now(),
			},
			wantValid: true,
		},
		{
			name: "missing title",
			task: entity.Task{
				ID: "t1", Title: "   ", Priority: entity.PriorityLow, Status: entity.StatusTodo,
			},
			wantValid:    false,
			wantErrField: "title",
		},
		{
			name: "invalid priority",
			task: entity.Task{
				ID: "t1", Title: "Ship it", Priority: "urgent", Status: entity.StatusTodo,
			},
			wantValid:    false,
			wantErrField: "priority",
		},
		{
			name: "invalid status",
			task: entity.Task{
				ID: "t1", Title: "Ship it", Priority: entity.PriorityHigh, Status: "done",
			},
			wantValid:    false,
			wantErrField: "status",
		},
		{
			name: "past due date warns",
			task: entity.Task{
				ID: "t1", Title: "Overdue", Priority: entity.PriorityHigh,
				Status: entity.StatusTodo, DueDate: timePtr(past),
			},
			wantValid: true,
			wantWarns: 1,
		},
		{
			name: "completed without timestamp warns",
			task: entity.Task{
				ID: "t1", Title: "Done-ish", Priority: entity.PriorityLow,
				Status: entity.StatusCompleted,
			},
			wantValid: true,
			wantWarns: 1,
		},
	}

	for _, testCase := range tests {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			result := TaskData(testCase.task)

			if result.IsValid() != testCase.wantValid {
				t.Fatalf("IsValid() = %v, want %v (errors: %v)",
					result.IsValid(), testCase.wantValid, result.Errors)
			}

			if testCase.wantErrField != "" && !hasIssueField(result.Errors, testCase.wantErrField) {
				t.Errorf("missing error on field %q, got %v", testCase.wantErrField, result.Errors)
			}

			if testCase.wantWarns > 0 && len(result.Warnings) < testCase.wantWarns {
				t.Errorf("got %d warnings, want at least %d", len(result.Warnings), testCase.wantWarns)
			}
		})
	}
}

func TestMilestoneData(t *testing.T) {
	t.Parallel()

	now := time.Now()

	tests := []struct {
		name         string
		milestone    entity.Milestone
		wantValid    bool
		wantErrField string
		wantWarns    int
	}{
		{
			name:      "valid milestone",
			milestone: entity.Milestone{ID: "m1", Title: "Sprint 1", CompletionType: entity.CompletionAuto},
			wantValid: true,
		},
		{
			name:         "blank title",
			milestone:    entity.Milestone{ID: "m1", Title: "\t "},
			wantValid:    false,
			wantErrField: "title",
		},
		{
			name:      "short title warns",
			milestone: entity.Milestone{ID: "m1", Title: "v1"},
			wantValid: true,
			wantWarns: 1,
		},
		{
			name:      "completed without timestamp warns",
			milestone: entity.Milestone{ID: "m1", Title: "Launch", Completed: true},
			wantValid: true,
			wantWarns: 1,
		},
		{
			name: "timestamp without completed is an error",
			milestone: entity.Milestone{
				ID: "m1", Title: "Launch", Completed: false, CompletedAt: timePtr(now),
			},
			wantValid:    false,
			wantErrField: "completedAt",
		},
		{
			name: "duplicate task references",
			milestone: entity.Milestone{
				ID: "m1", Title: "Launch", TaskIDs: []string{"t1", "t2", "t1"},
			},
			wantValid:    false,
			wantErrField: "taskIds",
		},
		{
			name: "invalid completion type",
			milestone: entity.Milestone{
				ID: "m1", Title: "Launch", CompletionType: "magic",
			},
			wantValid:    false,
			wantErrField: "completionType",
		},
	}

	for _, testCase := range tests {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			result := MilestoneData(testCase.milestone)

			if result.IsValid() != testCase.wantValid {
				t.Fatalf("IsValid() = %v, want %v (errors: %v)",
					result.IsValid(), testCase.wantValid, result.Errors)
			}

			if testCase.wantErrField != "" && !hasIssueField(result.Errors, testCase.wantErrField) {
				t.Errorf("missing error on field %q, got %v", testCase.wantErrField, result.Errors)
			}

			if testCase.wantWarns > 0 && len(result.Warnings) < testCase.wantWarns {
				t.Errorf("got %d warnings, want at least %d", len(result.Warnings), testCase.wantWarns)
			}
		})
	}
}

func TestMilestoneTaskAssociation(t *testing.T) {
	t.Parallel()

	completedTask := entity.Task{
		ID: "t1", Title: "Ship UI", Status: entity.StatusCompleted,
		Priority: entity.PriorityHigh, ProjectID: "p1",
	}
	openTask := entity.Task{
		ID: "t2", Title: "Write docs", Status: entity.StatusTodo,
		Priority: entity.PriorityLow, ProjectID: "p2",
	}
	all := []entity.Task{completedTask, openTask}

	t.Run("missing task is an error", func(t *testing.T) {
		t.Parallel()

		result := MilestoneTaskAssociation(entity.Milestone{ID: "m1", Title: "MS"}, nil, all)
		if result.IsValid() {
			t.Fatal("expected invalid result for nil task")
		}

		if !hasIssueField(result.Errors, "taskId") {
			t.Errorf("expected taskId error, got %v", result.Errors)
		}
	})

	t.Run("project mismatch is an error", func(t *testing.T) {
		t.Parallel()

		milestone := entity.Milestone{ID: "m1", Title: "MS", ProjectID: "p1"}

		result := MilestoneTaskAssociation(milestone, &openTask, all)
		if result.IsValid() {
			t.Fatal("expected invalid result for project mismatch")
		}

		if !hasIssueField(result.Errors, "projectId") {
			t.Errorf("expected projectId error, got %v", result.Errors)
		}
	})

	t.Run("completed task on open milestone warns", func(t *testing.T) {
		t.Parallel()

		milestone := entity.Milestone{ID: "m1", Title: "MS", ProjectID: "p1"}

		result := MilestoneTaskAssociation(milestone, &completedTask, all)
		if !result.IsValid() {
			t.Fatalf("expected valid result, errors: %v", result.Errors)
		}

		if !hasIssueField(result.Warnings, "completion") {
			t.Errorf("expected completion warning, got %v", result.Warnings)
		}

		// The duplicate-association heuristic also fires for completed tasks.
		if !hasIssueField(result.Warnings, "taskId") {
			t.Errorf("expected duplicate-association warning, got %v", result.Warnings)
		}
	})
}

func TestMilestoneTaskConsistency(t *testing.T) {
	t.Parallel()

	tasks := []entity.Task{
		{ID: "t1", Title: "Design", Status: entity.StatusCompleted},
		{ID: "t2", Title: "Build", Status: entity.StatusCompleted},
		{ID: "t3", Title: "Test", Status: entity.StatusInProgress},
	}

	t.Run("no task ids is trivially valid", func(t *testing.T) {
		t.Parallel()

		result := MilestoneTaskConsistency(entity.Milestone{ID: "m1", Title: "Empty"}, tasks)
		if !result.IsValid() || len(result.Warnings) != 0 {
			t.Fatalf("expected clean result, got errors=%v warnings=%v", result.Errors, result.Warnings)
		}
	})

	t.Run("orphaned references warn but stay valid", func(t *testing.T) {
		t.Parallel()

		milestone := entity.Milestone{ID: "m1", Title: "Ghost", TaskIDs: []string{"nope", "missing"}}

		result := MilestoneTaskConsistency(milestone, tasks)
		if !result.IsValid() {
			t.Fatalf("expected valid result, errors: %v", result.Errors)
		}

		if !hasIssueField(result.Warnings, "taskIds") {
			t.Errorf("expected orphaned-reference warning, got %v", result.Warnings)
		}
	})

	t.Run("all tasks completed forces milestone completion", func(t *testing.T) {
		t.Parallel()

		milestone := entity.Milestone{
			ID: "m1", Title: "Sprint 1", TaskIDs: []string{"t1", "t2"}, Completed: false,
		}

		result := MilestoneTaskConsistency(milestone, tasks)
		if result.IsValid() {
			t.Fatal("expected invalid result")
		}

		if len(result.Errors) != 1 {
			t.Fatalf("expected exactly one error, got %v", result.Errors)
		}

		issue := result.Errors[0]
		if issue.Field != "completion" {
			t.Errorf("error field = %q, want %q", issue.Field, "completion")
		}

		if !strings.Contains(issue.Message, "Sprint 1") {
			t.Errorf("error message %q does not mention the milestone title", issue.Message)
		}
	})

	t.Run("completed milestone with open task is an error", func(t *testing.T) {
		t.Parallel()

		milestone := entity.Milestone{
			ID: "m1", Title: "Sprint 2", TaskIDs: []string{"t1", "t3"}, Completed: true,
		}

		result := MilestoneTaskConsistency(milestone, tasks)
		if result.IsValid() {
			t.Fatal("expected invalid result")
		}

		if !hasIssueField(result.Errors, "completion") {
			t.Errorf("expected completion error, got %v", result.Errors)
		}
	})
}

func TestGoalData(t *testing.T) {
	t.Parallel()

	future := time.Now().Add(30 * 24 * time.Hour)

	t.Run("missing target date is an error", func(t *testing.T) {
		t.Parallel()

		result := GoalData(entity.Goal{ID: "g1", Title: "Q3"}, nil, nil)
		if result.IsValid() {
			t.Fatal("expected invalid result")
		}

		if !hasIssueField(result.Errors, "targetDate") {
			t.Errorf("expected targetDate error, got %v", result.Errors)
		}
	})

	t.Run("past target date warns only", func(t *testing.T) {
		t.Parallel()

		goal := entity.Goal{
			ID: "g1", Title: "Q1", TargetDate: time.Now().Add(-time.Hour), Progress: 50,
		}

		result := GoalData(goal, nil, nil)
		if !result.IsValid() {
			t.Fatalf("expected valid result, errors: %v", result.Errors)
		}

		if !hasIssueField(result.Warnings, "targetDate") {
			t.Errorf("expected targetDate warning, got %v", result.Warnings)
		}
	})

	t.Run("progress out of range", func(t *testing.T) {
		t.Parallel()

		goal := entity.Goal{ID: "g1", Title: "Q3", TargetDate: future, Progress: 120}

		result := GoalData(goal, nil, nil)
		if hasIssueField(result.Errors, "progress") == false {
			t.Errorf("expected progress error, got %v", result.Errors)
		}
	})

	t.Run("milestone issues get indexed prefixes", func(t *testing.T) {
		t.Parallel()

		goal := entity.Goal{
			ID: "g1", Title: "Q3", TargetDate: future,
			Milestones: []entity.Milestone{
				{ID: "m0", Title: "OK"},
				{ID: "m1", Title: ""},
			},
		}

		result := GoalData(goal, nil, nil)
		if result.IsValid() {
			t.Fatal("expected invalid result")
		}

		if !hasIssueField(result.Errors, "milestone[1].title") {
			t.Errorf("expected milestone[1].title error, got %v", result.Errors)
		}
	})

	t.Run("cycle errors are appended", func(t *testing.T) {
		t.Parallel()

		tasks := []entity.Task{
			{ID: "t1", Title: "A", Status: entity.StatusTodo, Priority: entity.PriorityLow, ProjectID: "p1"},
			{ID: "t2", Title: "B", Status: entity.StatusTodo, Priority: entity.PriorityLow, ProjectID: "p1"},
		}
		projects := []entity.Project{{ID: "p1", Name: "App", GoalID: "g1"}}
		goal := entity.Goal{
			ID: "g1", Title: "Q3", TargetDate: future,
			Milestones: []entity.Milestone{
				{ID: "m0", Title: "Sprint", TaskIDs: []string{"t1", "t2"}},
			},
		}

		result := GoalData(goal, tasks, projects)
		if !hasIssueField(result.Errors, "circularDependency") {
			t.Errorf("expected circularDependency error, got %v", result.Errors)
		}
	})
}

func hasIssueField(issues []Issue, field string) bool {
	for _, issue := range issues {
		if issue.Field == field {
			return true
		}
	}

	return false
}
