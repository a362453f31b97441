package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var removeCmd = &cobra.Command{
	Use:     "remove <file> [module-path]",
	Aliases: []string{"rm"},
	Short:   "Remove a dependency from a file",
	Args:    cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		session, buf, err := openFile(args[0])
		if err != nil {
			return err
		}
		defer closeSession(session)

		pair, err := session.PickDeclared(buf, pickerFor(cmd, args))
		if err != nil {
			return err
		}
		if err := session.Remove(buf, pair.Path); err != nil {
			return err
		}
		if err := buf.Save(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", pair.Path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(removeCmd)
}
