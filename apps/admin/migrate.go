package main

import (
	"github.com/spf13/cobra"

	"github.com/trezcool/masomo-portal/storage/database"
)

var migrateFunc = database.Migrate // mockable

func (cli *commandLine) migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "migrate COMMAND [VERSION]",
		Short:   "Migrate the tenant catalog (up, up-by-one, up-to, down, down-to, redo)",
		Args:    cobra.RangeArgs(1, 2),
		PreRunE: cli.connect,
		RunE: func(cmd *cobra.Command, args []string) error {
			return migrateFunc(cli.db, args[0], args[1:]...)
		},
	}
}
