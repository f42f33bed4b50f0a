// vaultsh is an interactive inspector for taskvault state directories.
//
// Usage:
//
//	vaultsh [opts] <vault-dir>
//
// Options:
//
//	-b, --backend   Primary backend, "file" or "sqlite" (default: file)
//	-k, --key       State key (default: appState)
//
// Commands (in REPL):
//
//	get                 Load the current state and print it as JSON
//	put <file>          Save a state snapshot from a JSON file
//	del                 Clear the current state
//	keys                List raw backend keys
//	size                Show state size and the total across all keys
//	mode [real|demo]    Show or switch the active namespace
//	validate            Run the validation rules against the stored state
//	help                Show this help
//	exit / quit / q     Exit
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"

	"github.com/calvinalkan/taskvault/internal/codec"
	"github.com/calvinalkan/taskvault/internal/entity"
	"github.com/calvinalkan/taskvault/internal/validate"
	"github.com/calvinalkan/taskvault/internal/vault"
)

func main() {
	err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	fs := flag.NewFlagSet("vaultsh", flag.ExitOnError)

	backend := fs.String("b", "file", `primary backend, "file" or "sqlite"`)
	fs.StringVar(backend, "backend", "file", `primary backend, "file" or "sqlite"`)

	stateKey := fs.String("k", "appState", "state key")
	fs.StringVar(stateKey, "key", "appState", "state key")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: vaultsh [options] <vault-dir>\n\n")
		fmt.Fprintf(os.Stderr, "Open a taskvault state directory for interactive inspection.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(os.Args[1:]); err != nil {
		return err
	}

	if fs.NArg() < 1 {
		fs.Usage()
		return errors.New("missing vault directory path")
	}

	vaultDir := fs.Arg(0)

	if err := os.MkdirAll(vaultDir, 0o750); err != nil {
		return fmt.Errorf("creating vault directory: %w", err)
	}

	store, closeStore, err := openStore(vaultDir, *backend)
	if err != nil {
		return err
	}
	defer closeStore()

	repl := &REPL{
		store:    store,
		stateKey: *stateKey,
		mode:     vault.ModeReal,
		backend:  *backend,
	}

	return repl.Run()
}

// openStore mirrors the backend chain the taskvault CLI uses: the chosen
// primary with the other backend kind as fallback.
func openStore(vaultDir, backend string) (*vault.Store, func(), error) {
	if backend == "sqlite" {
		primary, err := vault.OpenSQLite(filepath.Join(vaultDir, "vault.db"))
		if err != nil {
			return nil, nil, fmt.Errorf("opening sqlite backend: %w", err)
		}

		secondary, err := vault.NewFileBackend(filepath.Join(vaultDir, "spill"))
		if err != nil {
			_ = primary.Close()
			return nil, nil, fmt.Errorf("opening file backend: %w", err)
		}

		return vault.New(primary, secondary), func() { _ = primary.Close() }, nil
	}

	primary, err := vault.NewFileBackend(vaultDir)
	if err != nil {
		return nil, nil, fmt.Errorf("opening file backend: %w", err)
	}

	secondary, err := vault.OpenSQLite(filepath.Join(vaultDir, "fallback.db"))
	if err != nil {
		return nil, nil, fmt.Errorf("opening sqlite fallback: %w", err)
	}

	return vault.New(primary, secondary), func() { _ = secondary.Close() }, nil
}

// REPL is the interactive command loop.
type REPL struct {
	store    *vault.Store
	stateKey string
	mode     vault.Mode
	backend  string
	liner    *liner.State
}

// historyFile returns the path to the history file.
func historyFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	return filepath.Join(home, ".vaultsh_history")
}

// Run starts the REPL loop.
func (r *REPL) Run() error {
	r.liner = liner.NewLiner()
	defer r.liner.Close()

	r.liner.SetCtrlCAborts(true)
	r.liner.SetCompleter(r.completer)

	if f, err := os.Open(historyFile()); err == nil {
		r.liner.ReadHistory(f)
		f.Close()
	}

	fmt.Printf("vaultsh - taskvault inspector (backend=%s, key=%s)\n", r.backend, r.stateKey)
	fmt.Println("Type 'help' for available commands.")
	fmt.Println()

	for {
		line, err := r.liner.Prompt(r.prompt())
		if err != nil {
			if err == liner.ErrPromptAborted || err == io.EOF {
				fmt.Println("\nBye!")

				break
			}

			return fmt.Errorf("reading input: %w", err)
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		r.liner.AppendHistory(line)

		parts := strings.Fields(line)
		cmd := strings.ToLower(parts[0])
		args := parts[1:]

		switch cmd {
		case "exit", "quit", "q":
			fmt.Println("Bye!")

			r.saveHistory()

			return nil

		case "help", "?":
			r.printHelp()

		case "get":
			r.cmdGet()

		case "put":
			r.cmdPut(args)

		case "del", "delete", "clear":
			r.cmdDel()

		case "keys", "ls", "list":
			r.cmdKeys()

		case "size":
			r.cmdSize()

		case "mode":
			r.cmdMode(args)

		case "validate":
			r.cmdValidate()

		case "cls":
			fmt.Print("\033[H\033[2J")

		default:
			fmt.Printf("Unknown command: %s (type 'help' for commands)\n", cmd)
		}
	}

	r.saveHistory()

	return nil
}

func (r *REPL) prompt() string {
	if r.mode == vault.ModeDemo {
		return "vaultsh(demo)> "
	}

	return "vaultsh> "
}

// saveHistory persists command history to disk.
func (r *REPL) saveHistory() {
	if path := historyFile(); path != "" {
		if f, err := os.Create(path); err == nil {
			r.liner.WriteHistory(f)
			f.Close()
		}
	}
}

// completer provides tab completion for commands.
func (r *REPL) completer(line string) []string {
	commands := []string{
		"get", "put", "del", "delete", "clear",
		"keys", "ls", "list", "size", "mode",
		"validate", "cls",
		"help", "exit", "quit", "q",
	}

	var completions []string

	lower := strings.ToLower(line)
	for _, cmd := range commands {
		if strings.HasPrefix(cmd, lower) {
			completions = append(completions, cmd)
		}
	}

	return completions
}

func (r *REPL) printHelp() {
	fmt.Println("Commands:")
	fmt.Println("  get                 Load the current state and print it as JSON")
	fmt.Println("  put <file>          Save a state snapshot from a JSON file")
	fmt.Println("  del                 Clear the current state")
	fmt.Println("  keys                List raw backend keys")
	fmt.Println("  size                Show state size and the total across all keys")
	fmt.Println("  mode [real|demo]    Show or switch the active namespace")
	fmt.Println("  validate            Run the validation rules against the stored state")
	fmt.Println("  help                Show this help")
	fmt.Println("  exit / quit / q     Exit")
}

func (r *REPL) load() (*entity.AppState, bool) {
	state, err := r.store.Load(r.stateKey, r.mode)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return nil, false
	}

	if state == nil {
		fmt.Printf("No state stored under %q.\n", vault.EffectiveKey(r.stateKey, r.mode))
		return nil, false
	}

	return state, true
}

func (r *REPL) cmdGet() {
	state, ok := r.load()
	if !ok {
		return
	}

	raw, err := codec.Serialize(state)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	fmt.Println(raw)
}

func (r *REPL) cmdPut(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: put <file>")
		return
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	state, err := codec.Deserialize(string(data))
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	err = r.store.Save(r.stateKey, r.mode, state)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	size, err := r.store.Size(r.stateKey, r.mode)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	fmt.Printf("Saved %q (%d bytes).\n", vault.EffectiveKey(r.stateKey, r.mode), size)
}

func (r *REPL) cmdDel() {
	err := r.store.Clear(r.stateKey, r.mode)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	fmt.Printf("Cleared %q.\n", vault.EffectiveKey(r.stateKey, r.mode))
}

func (r *REPL) cmdKeys() {
	keys, err := r.store.Keys()
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	if len(keys) == 0 {
		fmt.Println("(no keys)")
		return
	}

	for _, k := range keys {
		fmt.Println(k)
	}
}

func (r *REPL) cmdSize() {
	size, err := r.store.Size(r.stateKey, r.mode)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	total, err := r.store.TotalSize()
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	fmt.Printf("State:   %d bytes\n", size)
	fmt.Printf("Total:   %d bytes\n", total)
	fmt.Printf("Ceiling: %d bytes\n", vault.MaxStateBytes)
}

func (r *REPL) cmdMode(args []string) {
	if len(args) == 0 {
		fmt.Printf("Mode: %s\n", r.mode)
		return
	}

	switch strings.ToLower(args[0]) {
	case "real":
		r.mode = vault.ModeReal
	case "demo":
		r.mode = vault.ModeDemo
	default:
		fmt.Println("Usage: mode [real|demo]")
		return
	}

	fmt.Printf("Mode: %s\n", r.mode)
}

func (r *REPL) cmdValidate() {
	state, ok := r.load()
	if !ok {
		return
	}

	var result validate.Result

	for i, task := range state.Tasks {
		mergeResult(&result, fmt.Sprintf("task[%d]", i), validate.TaskData(task))
	}

	for i, goal := range state.Goals {
		mergeResult(&result, fmt.Sprintf("goal[%d]", i), validate.GoalData(goal, state.Tasks, state.Projects))
	}

	for _, issue := range result.Errors {
		fmt.Printf("error    %-40s %s\n", issue.Field, issue.Message)
	}

	for _, issue := range result.Warnings {
		fmt.Printf("warning  %-40s %s\n", issue.Field, issue.Message)
	}

	fmt.Printf("%d error(s), %d warning(s)\n", len(result.Errors), len(result.Warnings))
}

func mergeResult(dst *validate.Result, prefix string, src validate.Result) {
	for _, issue := range src.Errors {
		dst.Errors = append(dst.Errors, prefixed(prefix, issue))
	}

	for _, issue := range src.Warnings {
		dst.Warnings = append(dst.Warnings, prefixed(prefix, issue))
	}
}

func prefixed(prefix string, issue validate.Issue) validate.Issue {
	if issue.Field != "" {
		issue.Field = prefix + "." + issue.Field
	} else {
		issue.Field = prefix
	}

	return issue
}
