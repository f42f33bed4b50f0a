package cli

import (
	"errors"
	"fmt"
	"os"

	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/taskvault/internal/codec"
	"github.com/calvinalkan/taskvault/internal/entity"
	"github.com/calvinalkan/taskvault/internal/validate"
)

var (
	errFileRequired     = errors.New("state file is required")
	errValidationFailed = errors.New("validation failed")
)

// ValidateCmd returns the validate command.
func ValidateCmd() *Command {
	flags := flag.NewFlagSet("validate", flag.ContinueOnError)
	strict := flags.Bool("strict", false, "Treat warnings as failures")

	return &Command{
		Flags: flags,
		Usage: "validate <state.json>",
		Short: "Validate a serialized state file",
		Long: "Deserialize a state file and run every integrity check over its\n" +
			"entities: per-field validation, milestone/task completion\n" +
			"consistency, and dependency cycle detection.",
		Exec: func(o *IO, args []string) error {
			return execValidate(o, args, *strict)
		},
	}
}

func execValidate(o *IO, args []string, strict bool) error {
	if len(args) == 0 {
		return errFileRequired
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read state file: %w", err)
	}

	state, err := codec.Deserialize(string(data))
	if err != nil {
		return err
	}

	result := validateState(state)

	for _, issue := range result.Errors {
		o.Printf("error   %-40s %s\n", issue.Field, issue.Message)
	}

	for _, issue := range result.Warnings {
		o.Printf("warning %-40s %s\n", issue.Field, issue.Message)
	}

	o.Printf("%d errors, %d warnings\n", len(result.Errors), len(result.Warnings))

	if !result.IsValid() || (strict && len(result.Warnings) > 0) {
		return errValidationFailed
	}

	return nil
}

// validateState runs every check over a full snapshot, prefixing issue
// paths with the owning entity.
func validateState(state *entity.AppState) validate.Result {
	var result validate.Result

	for i := range state.Tasks {
		taskResult := validate.TaskData(state.Tasks[i])
		mergeInto(&result, fmt.Sprintf("task[%d]", i), taskResult)
	}

	for i := range state.Goals {
		goalResult := validate.GoalData(state.Goals[i], state.Tasks, state.Projects)
		mergeInto(&result, fmt.Sprintf("goal[%d]", i), goalResult)
	}

	return result
}

func mergeInto(dst *validate.Result, prefix string, src validate.Result) {
	for _, issue := range src.Errors {
		issue.Field = prefix + "." + issue.Field
		dst.Errors = append(dst.Errors, issue)
	}

	for _, issue := range src.Warnings {
		issue.Field = prefix + "." + issue.Field
		dst.Warnings = append(dst.Warnings, issue)
	}
}
