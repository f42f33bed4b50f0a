package cli

import (
	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/taskvault/internal/codec"
)

// LoadCmd returns the load command.
func LoadCmd(ce cmdEnv) *Command {
	return &Command{
		Flags: flag.NewFlagSet("load", flag.ContinueOnError),
		Usage: "load",
		Short: "Print the stored state as JSON",
		Long: "Load the snapshot stored under the configured state key and print\n" +
			"its serialized form. A corrupted entry is removed and reported as\n" +
			"missing rather than failing the command.",
		Exec: func(o *IO, args []string) error {
			return execLoad(o, ce)
		},
	}
}

func execLoad(o *IO, ce cmdEnv) error {
	store, closeStore, err := openStore(ce)
	if err != nil {
		return err
	}

	defer closeStore()

	state, err := store.Load(ce.cfg.StateKey, ce.mode)
	if err != nil {
		return err
	}

	if state == nil {
		o.Println("no state found")

		return nil
	}

	serialized, err := codec.Serialize(state)
	if err != nil {
		return err
	}

	o.Println(serialized)

	return nil
}
