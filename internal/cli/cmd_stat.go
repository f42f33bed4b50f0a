package cli

import (
	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/taskvault/internal/vault"
)

// StatCmd returns the stat command.
func StatCmd(ce cmdEnv) *Command {
	return &Command{
		Flags: flag.NewFlagSet("stat", flag.ContinueOnError),
		Usage: "stat",
		Short: "Show storage availability and sizes",
		Exec: func(o *IO, args []string) error {
			return execStat(o, ce)
		},
	}
}

func execStat(o *IO, ce cmdEnv) error {
	store, closeStore, err := openStore(ce)
	if err != nil {
		return err
	}

	defer closeStore()

	o.Printf("available:  %v\n", store.Available())

	realSize, err := store.Size(ce.cfg.StateKey, vault.ModeReal)
	if err != nil {
		return err
	}

	demoSize, err := store.Size(ce.cfg.StateKey, vault.ModeDemo)
	if err != nil {
		return err
	}

	total, err := store.TotalSize()
	if err != nil {
		return err
	}

	o.Printf("real size:  %d bytes\n", realSize)
	o.Printf("demo size:  %d bytes\n", demoSize)
	o.Printf("total size: %d bytes\n", total)
	o.Printf("ceiling:    %d bytes\n", vault.MaxStateBytes)

	return nil
}
