package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/calvinalkan/taskvault/internal/vault"
)

// Flag parse errors.
var (
	errFlagRequiresArg = errors.New("flag requires an argument")
	errUnknownFlag     = errors.New("unknown flag")
)

const helpFlag = "--help"

// globalFlags are the options accepted before the command name.
type globalFlags struct {
	workDir             string
	configPath          string
	vaultDir            string
	hasVaultDirOverride bool
	demo                bool
	remaining           []string
}

// parseGlobalFlags consumes leading global flags; everything from the first
// non-flag argument on belongs to the command.
func parseGlobalFlags(args []string) (globalFlags, error) {
	var flags globalFlags

	i := 0

	for i < len(args) {
		arg := args[i]

		switch arg {
		case "-C", "--chdir":
			if i+1 >= len(args) {
				return globalFlags{}, fmt.Errorf("%w: %s", errFlagRequiresArg, arg)
			}

			flags.workDir = args[i+1]
			i += 2
		case "--config":
			if i+1 >= len(args) {
				return globalFlags{}, fmt.Errorf("%w: %s", errFlagRequiresArg, arg)
			}

			flags.configPath = args[i+1]
			i += 2
		case "--vault-dir":
			if i+1 >= len(args) {
				return globalFlags{}, fmt.Errorf("%w: %s", errFlagRequiresArg, arg)
			}

			flags.vaultDir = args[i+1]
			flags.hasVaultDirOverride = true
			i += 2
		case "--demo":
			flags.demo = true
			i++
		default:
			if arg != "-h" && arg != helpFlag && len(arg) > 1 && arg[0] == '-' {
				return globalFlags{}, fmt.Errorf("%w: %s", errUnknownFlag, arg)
			}

			flags.remaining = args[i:]

			return flags, nil
		}
	}

	return flags, nil
}

// cmdEnv carries the resolved configuration into command constructors.
type cmdEnv struct {
	cfg         Config
	vaultDirAbs string
	mode        vault.Mode
}

// Run is the main entry point. Returns exit code.
func Run(_ io.Reader, out io.Writer, errOut io.Writer, args []string, env map[string]string) int {
	o := NewIO(out, errOut)

	if len(args) < 2 {
		printUsage(o)

		return 0
	}

	flags, err := parseGlobalFlags(args[1:])
	if err != nil {
		o.ErrPrintln("error:", err)

		return 1
	}

	workDir := flags.workDir
	if workDir == "" {
		workDir, err = os.Getwd()
		if err != nil {
			o.ErrPrintln("error: cannot get working directory:", err)

			return 1
		}
	}

	cliOverrides := Config{VaultDir: flags.vaultDir, DemoMode: flags.demo}

	cfg, sources, err := LoadConfig(workDir, flags.configPath, cliOverrides, flags.hasVaultDirOverride, env)
	if err != nil {
		o.ErrPrintln("error:", err)

		return 1
	}

	vaultDirAbs := cfg.VaultDir
	if !filepath.IsAbs(vaultDirAbs) {
		vaultDirAbs = filepath.Join(workDir, vaultDirAbs)
	}

	if len(flags.remaining) == 0 {
		printUsage(o)

		return 0
	}

	name := flags.remaining[0]
	if name == "-h" || name == helpFlag {
		printUsage(o)

		return 0
	}

	mode := vault.ModeReal
	if cfg.DemoMode {
		mode = vault.ModeDemo
	}

	ce := cmdEnv{cfg: cfg, vaultDirAbs: vaultDirAbs, mode: mode}

	var cmd *Command

	switch name {
	case "validate":
		cmd = ValidateCmd()
	case "save":
		cmd = SaveCmd(ce)
	case "load":
		cmd = LoadCmd(ce)
	case "clear":
		cmd = ClearCmd(ce)
	case "stat":
		cmd = StatCmd(ce)
	case "print-config":
		cmd = PrintConfigCmd(cfg, sources)
	default:
		o.ErrPrintln("error: unknown command:", name)
		printUsage(o)

		return 1
	}

	return cmd.Run(o, flags.remaining[1:])
}

func printUsage(o *IO) {
	o.Println("Usage: taskvault [global flags] <command> [args]")
	o.Println()
	o.Println("Commands:")

	for _, cmd := range []*Command{
		ValidateCmd(),
		SaveCmd(cmdEnv{}),
		LoadCmd(cmdEnv{}),
		ClearCmd(cmdEnv{}),
		StatCmd(cmdEnv{}),
		PrintConfigCmd(Config{}, ConfigSources{}),
	} {
		o.Println(cmd.HelpLine())
	}

	o.Println()
	o.Println("Global flags:")
	o.Println("  -C, --chdir <dir>        Run as if started in <dir>")
	o.Println("  --config <file>          Explicit config file")
	o.Println("  --vault-dir <dir>        Override the vault directory")
	o.Println("  --demo                   Use the demo namespace")
}

// openStore builds the backend chain the config asks for. The returned
// closer must be called when the command finishes.
func openStore(ce cmdEnv) (*vault.Store, func(), error) {
	err := os.MkdirAll(ce.vaultDirAbs, 0o750)
	if err != nil {
		return nil, nil, fmt.Errorf("create vault directory: %w", err)
	}

	switch ce.cfg.Backend {
	case BackendSQLite:
		primary, openErr := vault.OpenSQLite(filepath.Join(ce.vaultDirAbs, "vault.db"))
		if openErr != nil {
			return nil, nil, openErr
		}

		secondary, fileErr := vault.NewFileBackend(filepath.Join(ce.vaultDirAbs, "spill"))
		if fileErr != nil {
			_ = primary.Close()

			return nil, nil, fileErr
		}

		return vault.New(primary, secondary), func() { _ = primary.Close() }, nil
	default:
		primary, fileErr := vault.NewFileBackend(ce.vaultDirAbs)
		if fileErr != nil {
			return nil, nil, fileErr
		}

		secondary, openErr := vault.OpenSQLite(filepath.Join(ce.vaultDirAbs, "fallback.db"))
		if openErr != nil {
			return nil, nil, openErr
		}

		return vault.New(primary, secondary), func() { _ = secondary.Close() }, nil
	}
}
