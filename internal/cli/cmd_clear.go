package cli

import (
	flag "github.com/spf13/pflag"
)

// ClearCmd returns the clear command.
func ClearCmd(ce cmdEnv) *Command {
	return &Command{
		Flags: flag.NewFlagSet("clear", flag.ContinueOnError),
		Usage: "clear",
		Short: "Remove the stored state",
		Long: "Remove the entry under the configured state key from the primary\n" +
			"backend. Only the active namespace is touched.",
		Exec: func(o *IO, args []string) error {
			return execClear(o, ce)
		},
	}
}

func execClear(o *IO, ce cmdEnv) error {
	store, closeStore, err := openStore(ce)
	if err != nil {
		return err
	}

	defer closeStore()

	err = store.Clear(ce.cfg.StateKey, ce.mode)
	if err != nil {
		return err
	}

	o.Printf("cleared %s (%s)\n", ce.cfg.StateKey, ce.mode)

	return nil
}
