package cli

import (
	"fmt"
	"os"

	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/taskvault/internal/codec"
)

// SaveCmd returns the save command.
func SaveCmd(ce cmdEnv) *Command {
	return &Command{
		Flags: flag.NewFlagSet("save", flag.ContinueOnError),
		Usage: "save <state.json>",
		Short: "Store a state file in the vault",
		Long: "Deserialize a state file (rejecting corrupted input) and persist\n" +
			"it under the configured state key. Demo mode writes to the demo\n" +
			"namespace and leaves real data untouched.",
		Exec: func(o *IO, args []string) error {
			return execSave(o, ce, args)
		},
	}
}

func execSave(o *IO, ce cmdEnv, args []string) error {
	if len(args) == 0 {
		return errFileRequired
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read state file: %w", err)
	}

	// Round through the codec so only well-formed snapshots reach storage.
	state, err := codec.Deserialize(string(data))
	if err != nil {
		return err
	}

	store, closeStore, err := openStore(ce)
	if err != nil {
		return err
	}

	defer closeStore()

	err = store.Save(ce.cfg.StateKey, ce.mode, state)
	if err != nil {
		return err
	}

	size, err := store.Size(ce.cfg.StateKey, ce.mode)
	if err != nil {
		return err
	}

	o.Printf("saved %s (%s, %d bytes)\n", ce.cfg.StateKey, ce.mode, size)

	return nil
}
