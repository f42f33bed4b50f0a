// Package entity defines the plain data shapes of the application core.
//
// Entities carry no behavior beyond enum validity helpers. They are created
// and mutated by the UI layer and passed into the validation and persistence
// subsystems by value; nothing here retains references between calls.
package entity

import (
	"slices"
	"time"
)

// Priority is a task priority level.
type Priority string

// Priority constants.
const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// validPriorities are the allowed task priorities.
var validPriorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh}

// Valid reports whether p is one of the allowed priorities.
func (p Priority) Valid() bool {
	return slices.Contains(validPriorities, p)
}

// Status is a task lifecycle state.
type Status string

// Status constants.
const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
)

// validStatuses are the allowed task statuses.
var validStatuses = []Status{StatusTodo, StatusInProgress, StatusCompleted}

// Valid reports whether s is one of the allowed statuses.
func (s Status) Valid() bool {
	return slices.Contains(validStatuses, s)
}

// CompletionType controls how a milestone transitions to completed.
// Empty means the milestone predates the field and has no declared mode.
type CompletionType string

// CompletionType constants.
const (
	CompletionAuto   CompletionType = "auto"
	CompletionManual CompletionType = "manual"
	CompletionUnset  CompletionType = ""
)

// Valid reports whether c is auto, manual, or unset.
func (c CompletionType) Valid() bool {
	return c == CompletionAuto || c == CompletionManual || c == CompletionUnset
}

// Task is a single unit of work, optionally attached to a project.
type Task struct {
	ID          string
	Title       string
	Description string
	Priority    Priority
	Status      Status
	DueDate     *time.Time
	ProjectID   string
	CreatedAt   time.Time
	CompletedAt *time.Time
	Tags        []string
}

// Project groups tasks under a goal. Progress is a percentage in [0,100].
type Project struct {
	ID        string
	Name      string
	Color     string
	GoalID    string
	CreatedAt time.Time
	Progress  int
}

// Milestone is a checkpoint within a goal, optionally backed by a set of
// tasks whose completion should drive its own completion state.
// A nil TaskIDs means the milestone has no task associations at all;
// duplicates in TaskIDs are a validation error, not a codec concern.
type Milestone struct {
	ID             string
	Title          string
	Completed      bool
	CompletedAt    *time.Time
	TaskIDs        []string
	ProjectID      string
	CompletionType CompletionType
}

// Goal is a long-horizon objective with milestones and a denormalized cache
// of its projects. Progress is a percentage in [0,100].
type Goal struct {
	ID         string
	Title      string
	TargetDate time.Time
	Progress   int
	Milestones []Milestone
	Projects   []Project
	CreatedAt  time.Time
}

// UserSettings holds per-user display preferences.
type UserSettings struct {
	Theme         string
	ShowCompleted bool
	WeekStart     int
}

// Authentication is the session snapshot the UI hands to persistence.
// The core never interprets it; it only has to survive the round trip.
type Authentication struct {
	Authenticated bool
	Username      string
	LastLogin     *time.Time
}

// AppState is the aggregate snapshot the UI assembles for persistence.
// It is the serialization unit; it owns nothing exclusively.
type AppState struct {
	Tasks            []Task
	Projects         []Project
	Goals            []Goal
	Analytics        map[string]float64
	SearchQuery      string
	SelectedProject  string
	SelectedPriority string
	UserSettings     UserSettings
	Authentication   Authentication
}

// FindTask returns the task with the given ID, or nil if absent.
func FindTask(tasks []Task, id string) *Task {
	for i := range tasks {
		if tasks[i].ID == id {
			return &tasks[i]
		}
	}

	return nil
}

// FindProject returns the project with the given ID, or nil if absent.
func FindProject(projects []Project, id string) *Project {
	for i := range projects {
		if projects[i].ID == id {
			return &projects[i]
		}
	}

	return nil
}
