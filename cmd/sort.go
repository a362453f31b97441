package cmd

import (
	"github.com/spf13/cobra"
)

var sortCmd = &cobra.Command{
	Use:   "sort <file>...",
	Short: "Sort the dependencies of files by module path",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, file := range args {
			if err := sortFile(file); err != nil {
				return err
			}
		}
		return nil
	},
}

func sortFile(file string) error {
	session, buf, err := openFile(file)
	if err != nil {
		return err
	}
	defer closeSession(session)

	before := buf.Text()
	if err := session.Sort(buf); err != nil {
		return err
	}
	if buf.Text() == before {
		return nil
	}
	return buf.Save()
}

func init() {
	rootCmd.AddCommand(sortCmd)
}
