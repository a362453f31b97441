package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var addCmd = &cobra.Command{
	Use:   "add <file> [module-path]",
	Short: "Add a project module to a file's dependencies",
	Long: `Indexes the project the file belongs to and adds the chosen module to its
define call together with a suggested parameter name. Without a module path
the candidates are listed and one is picked interactively.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		session, buf, err := openFile(args[0])
		if err != nil {
			return err
		}
		defer closeSession(session)

		mod, err := session.PickCandidate(buf, pickerFor(cmd, args))
		if err != nil {
			return err
		}
		if err := session.Add(buf, mod); err != nil {
			return err
		}
		if err := buf.Save(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Added %s as %s\n", mod.Path, mod.Name)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(addCmd)
}
