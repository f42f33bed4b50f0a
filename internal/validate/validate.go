package validate

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/calvinalkan/taskvault/internal/entity"
)

// minTitleRunes is the threshold below which a title draws a style warning.
const minTitleRunes = 3

// MilestoneTaskAssociation checks whether a single task may be associated
// with a milestone. The task pointer is the resolved task (nil if the
// reference did not resolve); allTasks is the full task set used for the
// duplicate-association heuristic.
func MilestoneTaskAssociation(milestone entity.Milestone, task *entity.Task, allTasks []entity.Task) Result {
	var result Result

	if task == nil {
		result.addError("taskId", "task does not exist")

		return result
	}

	if milestone.ProjectID != "" && task.ProjectID != "" && milestone.ProjectID != task.ProjectID {
		result.addError("projectId", fmt.Sprintf(
			"task %q belongs to a different project than the milestone", task.Title))
	}

	if task.Status == entity.StatusCompleted && !milestone.Completed {
		result.addWarning("completion", fmt.Sprintf(
			"task %q is completed but the milestone is not", task.Title))
	}

	// Heuristic only: a completed task in the global set is likely already
	// driving some other milestone's completion state.
	existing := entity.FindTask(allTasks, task.ID)
	if existing != nil && existing.Status == entity.StatusCompleted {
		result.addWarning("taskId", fmt.Sprintf(
			"task %q may already be associated with another milestone", task.Title))
	}

	return result
}

// MilestoneTaskConsistency enforces the two-way completion invariant between
// a milestone and its referenced tasks: if every resolved task is completed
// the milestone must be too, and a completed milestone must not reference
// unfinished tasks. Unresolvable references downgrade to a warning.
func MilestoneTaskConsistency(milestone entity.Milestone, tasks []entity.Task) Result {
	var result Result

	if len(milestone.TaskIDs) == 0 {
		return result
	}

	var resolved []*entity.Task

	for _, id := range milestone.TaskIDs {
		if task := entity.FindTask(tasks, id); task != nil {
			resolved = append(resolved, task)
		}
	}

	if len(resolved) == 0 {
		result.addWarning("taskIds", fmt.Sprintf(
			"milestone %q references only orphaned tasks", milestone.Title))

		return result
	}

	allCompleted := true

	for _, task := range resolved {
		if task.Status != entity.StatusCompleted {
			allCompleted = false

			break
		}
	}

	if allCompleted && !milestone.Completed {
		result.addError("completion", fmt.Sprintf(
			"milestone %q should be completed: all associated tasks are completed", milestone.Title))
	}

	if milestone.Completed && !allCompleted {
		result.addError("completion", fmt.Sprintf(
			"milestone %q is marked completed but not all associated tasks are completed", milestone.Title))
	}

	return result
}

// MilestoneData checks a milestone's own fields, independent of any task set.
func MilestoneData(milestone entity.Milestone) Result {
	var result Result

	title := strings.TrimSpace(milestone.Title)

	switch {
	case title == "":
		result.addError("title", "milestone title is required")
	case utf8.RuneCountInString(title) < minTitleRunes:
		result.addWarning("title", "milestone title is very short")
	}

	if milestone.Completed && milestone.CompletedAt == nil {
		result.addWarning("completedAt", fmt.Sprintf(
			"milestone %q is completed but has no completion timestamp", milestone.Title))
	}

	if !milestone.Completed && milestone.CompletedAt != nil {
		result.addError("completedAt", fmt.Sprintf(
			"milestone %q has a completion timestamp but is not completed", milestone.Title))
	}

	if !milestone.CompletionType.Valid() {
		result.addError("completionType", fmt.Sprintf(
			"invalid completion type %q", string(milestone.CompletionType)))
	}

	seen := make(map[string]bool, len(milestone.TaskIDs))

	for _, id := range milestone.TaskIDs {
		if seen[id] {
			result.addError("taskIds", fmt.Sprintf("duplicate task reference %q", id))

			break
		}

		seen[id] = true
	}

	return result
}

// TaskData checks a task's own fields.
func TaskData(task entity.Task) Result {
	var result Result

	if strings.TrimSpace(task.Title) == "" {
		result.addError("title", "task title is required")
	}

	if !task.Priority.Valid() {
		result.addError("priority", fmt.Sprintf("invalid priority %q", string(task.Priority)))
	}

	if !task.Status.Valid() {
		result.addError("status", fmt.Sprintf("invalid status %q", string(task.Status)))
	}

	if task.DueDate != nil && task.DueDate.Before(time.Now()) {
		result.addWarning("dueDate", fmt.Sprintf("task %q is past its due date", task.Title))
	}

	if task.Status == entity.StatusCompleted && task.CompletedAt == nil {
		result.addWarning("completedAt", fmt.Sprintf(
			"task %q is completed but has no completion timestamp", task.Title))
	}

	return result
}

// GoalData checks a goal and everything under it: its own fields, each
// milestone (data, task associations, completion consistency, with field
// paths prefixed milestone[i].*) and finally the dependency graph derived
// from the whole milestone set.
func GoalData(goal entity.Goal, allTasks []entity.Task, allProjects []entity.Project) Result {
	var result Result

	if strings.TrimSpace(goal.Title) == "" {
		result.addError("title", "goal title is required")
	}

	switch {
	case goal.TargetDate.IsZero():
		result.addError("targetDate", "goal target date is required")
	case goal.TargetDate.Before(time.Now()):
		result.addWarning("targetDate", fmt.Sprintf("goal %q is past its target date", goal.Title))
	}

	if goal.Progress < 0 || goal.Progress > 100 {
		result.addError("progress", fmt.Sprintf("progress must be between 0 and 100, got %d", goal.Progress))
	}

	for i, milestone := range goal.Milestones {
		prefix := fmt.Sprintf("milestone[%d]", i)

		result.merge(prefix, MilestoneData(milestone))

		for _, id := range milestone.TaskIDs {
			task := entity.FindTask(allTasks, id)
			result.merge(prefix, MilestoneTaskAssociation(milestone, task, allTasks))
		}

		result.merge(prefix, MilestoneTaskConsistency(milestone, allTasks))
	}

	result.merge("", CheckCircularDependencies(goal.Milestones, allTasks, allProjects))

	return result
}
