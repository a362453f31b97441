package cmd

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
)

var showCandidates bool

var listCmd = &cobra.Command{
	Use:   "list <file>",
	Short: "List the dependencies of a file",
	Long: `Lists the module paths and parameter names declared by the file. With
--candidates the indexed project modules that could still be added are listed
instead.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		session, buf, err := openFile(args[0])
		if err != nil {
			return err
		}
		defer closeSession(session)

		var rows [][]string
		if showCandidates {
			modules, err := session.Candidates(buf)
			if err != nil {
				return err
			}
			for _, m := range modules {
				rows = append(rows, []string{m.Path, m.Name})
			}
		} else {
			pairs, err := session.Pairs(buf)
			if err != nil {
				return err
			}
			for _, p := range pairs {
				rows = append(rows, []string{p.Path, p.Name})
			}
		}

		if len(rows) == 0 {
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), moduleTable(rows))
		return nil
	},
}

func moduleTable(rows [][]string) string {
	return table.New().
		Border(lipgloss.HiddenBorder()).
		BorderTop(false).
		BorderBottom(false).
		BorderLeft(false).
		BorderRight(false).
		BorderHeader(false).
		Headers("PATH", "NAME").
		Rows(rows...).
		String()
}

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().BoolVar(&showCandidates, "candidates", false, "List modules that can be added instead")
}
