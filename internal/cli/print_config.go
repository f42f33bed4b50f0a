package cli

import (
	flag "github.com/spf13/pflag"
)

// PrintConfigCmd returns the print-config command.
func PrintConfigCmd(cfg Config, sources ConfigSources) *Command {
	return &Command{
		Flags: flag.NewFlagSet("print-config", flag.ContinueOnError),
		Usage: "print-config",
		Short: "Print the resolved configuration",
		Exec: func(o *IO, args []string) error {
			execPrintConfig(o, cfg, sources)

			return nil
		},
	}
}

func execPrintConfig(o *IO, cfg Config, sources ConfigSources) {
	o.Printf("vault_dir:  %s\n", cfg.VaultDir)
	o.Printf("backend:    %s\n", cfg.Backend)
	o.Printf("state_key:  %s\n", cfg.StateKey)
	o.Printf("demo_mode:  %v\n", cfg.DemoMode)

	if sources.Global != "" {
		o.Printf("global config:  %s\n", sources.Global)
	} else {
		o.Println("global config:  (none)")
	}

	if sources.Project != "" {
		o.Printf("project config: %s\n", sources.Project)
	} else {
		o.Println("project config: (none)")
	}
}
