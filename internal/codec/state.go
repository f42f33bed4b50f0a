package codec

import (
	"fmt"
	"math"
	"time"

	"github.com/calvinalkan/taskvault/internal/entity"
)

// encodeState walks the snapshot into a Value tree. Optional time fields
// encode as null when unset; slices always encode as arrays so the decoder
// never has to guess between "absent" and "empty".
func encodeState(state *entity.AppState) Value {
	tasks := make([]Value, len(state.Tasks))
	for i := range state.Tasks {
		tasks[i] = encodeTask(&state.Tasks[i])
	}

	projects := make([]Value, len(state.Projects))
	for i := range state.Projects {
		projects[i] = encodeProject(&state.Projects[i])
	}

	goals := make([]Value, len(state.Goals))
	for i := range state.Goals {
		goals[i] = encodeGoal(&state.Goals[i])
	}

	analytics := make(map[string]Value, len(state.Analytics))
	for key, metric := range state.Analytics {
		analytics[key] = NumberValue(metric)
	}

	return ObjectValue(map[string]Value{
		"tasks":            ArrayValue(tasks),
		"projects":         ArrayValue(projects),
		"goals":            ArrayValue(goals),
		"analytics":        ObjectValue(analytics),
		"searchQuery":      StringValue(state.SearchQuery),
		"selectedProject":  StringValue(state.SelectedProject),
		"selectedPriority": StringValue(state.SelectedPriority),
		"userSettings": ObjectValue(map[string]Value{
			"theme":         StringValue(state.UserSettings.Theme),
			"showCompleted": BoolValue(state.UserSettings.ShowCompleted),
			"weekStart":     NumberValue(float64(state.UserSettings.WeekStart)),
		}),
		"authentication": ObjectValue(map[string]Value{
			"authenticated": BoolValue(state.Authentication.Authenticated),
			"username":      StringValue(state.Authentication.Username),
			"lastLogin":     optionalTime(state.Authentication.LastLogin),
		}),
	})
}

func encodeTask(task *entity.Task) Value {
	tags := make([]Value, len(task.Tags))
	for i, tag := range task.Tags {
		tags[i] = StringValue(tag)
	}

	return ObjectValue(map[string]Value{
		"id":          StringValue(task.ID),
		"title":       StringValue(task.Title),
		"description": StringValue(task.Description),
		"priority":    StringValue(string(task.Priority)),
		"status":      StringValue(string(task.Status)),
		"dueDate":     optionalTime(task.DueDate),
		"projectId":   StringValue(task.ProjectID),
		"createdAt":   TimeValue(task.CreatedAt),
		"completedAt": optionalTime(task.CompletedAt),
		"tags":        ArrayValue(tags),
	})
}

func encodeProject(project *entity.Project) Value {
	return ObjectValue(map[string]Value{
		"id":        StringValue(project.ID),
		"name":      StringValue(project.Name),
		"color":     StringValue(project.Color),
		"goalId":    StringValue(project.GoalID),
		"createdAt": TimeValue(project.CreatedAt),
		"progress":  NumberValue(float64(project.Progress)),
	})
}

func encodeMilestone(milestone *entity.Milestone) Value {
	fields := map[string]Value{
		"id":             StringValue(milestone.ID),
		"title":          StringValue(milestone.Title),
		"completed":      BoolValue(milestone.Completed),
		"completedAt":    optionalTime(milestone.CompletedAt),
		"projectId":      StringValue(milestone.ProjectID),
		"completionType": StringValue(string(milestone.CompletionType)),
	}

	// nil TaskIDs means "never associated", which is distinct from an empty
	// association list and must survive the round trip.
	if milestone.TaskIDs != nil {
		ids := make([]Value, len(milestone.TaskIDs))
		for i, id := range milestone.TaskIDs {
			ids[i] = StringValue(id)
		}

		fields["taskIds"] = ArrayValue(ids)
	} else {
		fields["taskIds"] = Null()
	}

	return ObjectValue(fields)
}

func encodeGoal(goal *entity.Goal) Value {
	milestones := make([]Value, len(goal.Milestones))
	for i := range goal.Milestones {
		milestones[i] = encodeMilestone(&goal.Milestones[i])
	}

	projects := make([]Value, len(goal.Projects))
	for i := range goal.Projects {
		projects[i] = encodeProject(&goal.Projects[i])
	}

	return ObjectValue(map[string]Value{
		"id":         StringValue(goal.ID),
		"title":      StringValue(goal.Title),
		"targetDate": TimeValue(goal.TargetDate),
		"progress":   NumberValue(float64(goal.Progress)),
		"milestones": ArrayValue(milestones),
		"projects":   ArrayValue(projects),
		"createdAt":  TimeValue(goal.CreatedAt),
	})
}

func optionalTime(t *time.Time) Value {
	if t == nil {
		return Null()
	}

	return TimeValue(*t)
}

// --- Decoding ---

func decodeState(root Value) (*entity.AppState, error) {
	state := &entity.AppState{}

	taskValues, err := fieldArray(root, "tasks")
	if err != nil {
		return nil, err
	}

	state.Tasks = make([]entity.Task, len(taskValues))

	for i, taskValue := range taskValues {
		state.Tasks[i], err = decodeTask(taskValue)
		if err != nil {
			return nil, fmt.Errorf("tasks[%d]: %w", i, err)
		}
	}

	projectValues, err := fieldArray(root, "projects")
	if err != nil {
		return nil, err
	}

	state.Projects = make([]entity.Project, len(projectValues))

	for i, projectValue := range projectValues {
		state.Projects[i], err = decodeProject(projectValue)
		if err != nil {
			return nil, fmt.Errorf("projects[%d]: %w", i, err)
		}
	}

	goalValues, err := fieldArray(root, "goals")
	if err != nil {
		return nil, err
	}

	state.Goals = make([]entity.Goal, len(goalValues))

	for i, goalValue := range goalValues {
		state.Goals[i], err = decodeGoal(goalValue)
		if err != nil {
			return nil, fmt.Errorf("goals[%d]: %w", i, err)
		}
	}

	analytics, err := fieldObject(root, "analytics")
	if err != nil {
		return nil, err
	}

	state.Analytics = make(map[string]float64, len(analytics))

	for key, metric := range analytics {
		if metric.Kind != KindNumber {
			return nil, fmt.Errorf("analytics[%q]: not a number", key)
		}

		state.Analytics[key] = metric.Number
	}

	state.SearchQuery, err = optionalString(root, "searchQuery")
	if err != nil {
		return nil, err
	}

	state.SelectedProject, err = optionalString(root, "selectedProject")
	if err != nil {
		return nil, err
	}

	state.SelectedPriority, err = optionalString(root, "selectedPriority")
	if err != nil {
		return nil, err
	}

	settings, err := fieldObjectValue(root, "userSettings")
	if err != nil {
		return nil, err
	}

	state.UserSettings, err = decodeUserSettings(settings)
	if err != nil {
		return nil, fmt.Errorf("userSettings: %w", err)
	}

	auth, err := fieldObjectValue(root, "authentication")
	if err != nil {
		return nil, err
	}

	state.Authentication, err = decodeAuthentication(auth)
	if err != nil {
		return nil, fmt.Errorf("authentication: %w", err)
	}

	return state, nil
}

func decodeTask(value Value) (entity.Task, error) {
	if value.Kind != KindObject {
		return entity.Task{}, fmt.Errorf("task is not an object")
	}

	task := entity.Task{
		ID:          stringField(value, "id"),
		Title:       stringField(value, "title"),
		Description: stringField(value, "description"),
		Priority:    entity.Priority(stringField(value, "priority")),
		Status:      entity.Status(stringField(value, "status")),
		ProjectID:   stringField(value, "projectId"),
	}

	createdAt, err := timeField(value, "createdAt")
	if err != nil {
		return entity.Task{}, err
	}

	task.CreatedAt = createdAt

	task.DueDate, err = optionalTimeField(value, "dueDate")
	if err != nil {
		return entity.Task{}, err
	}

	task.CompletedAt, err = optionalTimeField(value, "completedAt")
	if err != nil {
		return entity.Task{}, err
	}

	if tags, ok := value.Object["tags"]; ok && tags.Kind == KindArray {
		task.Tags = make([]string, len(tags.Array))

		for i, tag := range tags.Array {
			if tag.Kind != KindString {
				return entity.Task{}, fmt.Errorf("tags[%d]: not a string", i)
			}

			task.Tags[i] = tag.Str
		}
	}

	return task, nil
}

func decodeProject(value Value) (entity.Project, error) {
	if value.Kind != KindObject {
		return entity.Project{}, fmt.Errorf("project is not an object")
	}

	project := entity.Project{
		ID:     stringField(value, "id"),
		Name:   stringField(value, "name"),
		Color:  stringField(value, "color"),
		GoalID: stringField(value, "goalId"),
	}

	createdAt, err := timeField(value, "createdAt")
	if err != nil {
		return entity.Project{}, err
	}

	project.CreatedAt = createdAt

	progress, err := intField(value, "progress")
	if err != nil {
		return entity.Project{}, err
	}

	project.Progress = progress

	return project, nil
}

func decodeMilestone(value Value) (entity.Milestone, error) {
	if value.Kind != KindObject {
		return entity.Milestone{}, fmt.Errorf("milestone is not an object")
	}

	milestone := entity.Milestone{
		ID:             stringField(value, "id"),
		Title:          stringField(value, "title"),
		ProjectID:      stringField(value, "projectId"),
		CompletionType: entity.CompletionType(stringField(value, "completionType")),
	}

	if completed, ok := value.Object["completed"]; ok && completed.Kind == KindBool {
		milestone.Completed = completed.Bool
	}

	var err error

	milestone.CompletedAt, err = optionalTimeField(value, "completedAt")
	if err != nil {
		return entity.Milestone{}, err
	}

	ids, ok := value.Object["taskIds"]
	if ok && ids.Kind == KindArray {
		milestone.TaskIDs = make([]string, len(ids.Array))

		for i, id := range ids.Array {
			if id.Kind != KindString {
				return entity.Milestone{}, fmt.Errorf("taskIds[%d]: not a string", i)
			}

			milestone.TaskIDs[i] = id.Str
		}
	}

	return milestone, nil
}

func decodeGoal(value Value) (entity.Goal, error) {
	if value.Kind != KindObject {
		return entity.Goal{}, fmt.Errorf("goal is not an object")
	}

	goal := entity.Goal{
		ID:    stringField(value, "id"),
		Title: stringField(value, "title"),
	}

	targetDate, err := timeField(value, "targetDate")
	if err != nil {
		return entity.Goal{}, err
	}

	goal.TargetDate = targetDate

	createdAt, err := timeField(value, "createdAt")
	if err != nil {
		return entity.Goal{}, err
	}

	goal.CreatedAt = createdAt

	progress, err := intField(value, "progress")
	if err != nil {
		return entity.Goal{}, err
	}

	goal.Progress = progress

	milestoneValues, err := fieldArray(value, "milestones")
	if err != nil {
		return entity.Goal{}, err
	}

	goal.Milestones = make([]entity.Milestone, len(milestoneValues))

	for i, milestoneValue := range milestoneValues {
		goal.Milestones[i], err = decodeMilestone(milestoneValue)
		if err != nil {
			return entity.Goal{}, fmt.Errorf("milestones[%d]: %w", i, err)
		}
	}

	projectValues, err := fieldArray(value, "projects")
	if err != nil {
		return entity.Goal{}, err
	}

	goal.Projects = make([]entity.Project, len(projectValues))

	for i, projectValue := range projectValues {
		goal.Projects[i], err = decodeProject(projectValue)
		if err != nil {
			return entity.Goal{}, fmt.Errorf("projects[%d]: %w", i, err)
		}
	}

	return goal, nil
}

func decodeUserSettings(value Value) (entity.UserSettings, error) {
	settings := entity.UserSettings{
		Theme: stringField(value, "theme"),
	}

	if show, ok := value.Object["showCompleted"]; ok && show.Kind == KindBool {
		settings.ShowCompleted = show.Bool
	}

	if weekStart, ok := value.Object["weekStart"]; ok && weekStart.Kind == KindNumber {
		settings.WeekStart = int(math.Round(weekStart.Number))
	}

	return settings, nil
}

func decodeAuthentication(value Value) (entity.Authentication, error) {
	auth := entity.Authentication{
		Username: stringField(value, "username"),
	}

	if flag, ok := value.Object["authenticated"]; ok && flag.Kind == KindBool {
		auth.Authenticated = flag.Bool
	}

	var err error

	auth.LastLogin, err = optionalTimeField(value, "lastLogin")
	if err != nil {
		return entity.Authentication{}, err
	}

	return auth, nil
}

// --- Field helpers ---

func fieldArray(obj Value, key string) ([]Value, error) {
	field, ok := obj.Object[key]
	if !ok || field.Kind == KindNull {
		return nil, nil
	}

	if field.Kind != KindArray {
		return nil, fmt.Errorf("%q: not an array", key)
	}

	return field.Array, nil
}

func fieldObject(obj Value, key string) (map[string]Value, error) {
	field, ok := obj.Object[key]
	if !ok || field.Kind == KindNull {
		return nil, nil
	}

	if field.Kind != KindObject {
		return nil, fmt.Errorf("%q: not an object", key)
	}

	return field.Object, nil
}

func fieldObjectValue(obj Value, key string) (Value, error) {
	field, ok := obj.Object[key]
	if !ok || field.Kind == KindNull {
		return ObjectValue(map[string]Value{}), nil
	}

	if field.Kind != KindObject {
		return Value{}, fmt.Errorf("%q: not an object", key)
	}

	return field, nil
}

func optionalString(obj Value, key string) (string, error) {
	field, ok := obj.Object[key]
	if !ok || field.Kind == KindNull {
		return "", nil
	}

	if field.Kind != KindString {
		return "", fmt.Errorf("%q: not a string", key)
	}

	return field.Str, nil
}

// stringField returns the string at key, or "" when absent or mistyped.
// String fields degrade to empty; temporal and structural fields fail hard.
func stringField(obj Value, key string) string {
	if field, ok := obj.Object[key]; ok && field.Kind == KindString {
		return field.Str
	}

	return ""
}

func intField(obj Value, key string) (int, error) {
	field, ok := obj.Object[key]
	if !ok {
		return 0, nil
	}

	if field.Kind != KindNumber {
		return 0, fmt.Errorf("%q: not a number", key)
	}

	return int(math.Round(field.Number)), nil
}

func timeField(obj Value, key string) (time.Time, error) {
	field, ok := obj.Object[key]
	if !ok || field.Kind != KindTime {
		return time.Time{}, fmt.Errorf("%q: not a tagged date", key)
	}

	return field.Time, nil
}

func optionalTimeField(obj Value, key string) (*time.Time, error) {
	field, ok := obj.Object[key]
	if !ok || field.Kind == KindNull {
		return nil, nil
	}

	if field.Kind != KindTime {
		return nil, fmt.Errorf("%q: not a tagged date", key)
	}

	t := field.Time

	return &t, nil
}
