/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/tristendillon/amdbutler/core/config"
	"github.com/tristendillon/amdbutler/core/logger"
)

var (
	force bool
)

var initCmd = &cobra.Command{
	Use:   "init [dir]",
	Short: "Write a default amdbutler.yaml",
	Long:  `Creates an amdbutler.yaml with the default settings in the given directory, or the current one.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger.Debug("init called")
		dir := "."
		if len(args) == 1 {
			dir = args[0]
		}
		if _, err := os.Stat(filepath.Join(dir, config.FileName)); err == nil {
			if !force {
				fmt.Fprintf(cmd.OutOrStdout(), "%s already exists in %s. Use --force to overwrite.\n", config.FileName, dir)
				return nil
			}
			logger.Debug("%s already exists in %s. Overwriting.", config.FileName, dir)
		}

		if err := os.MkdirAll(dir, os.ModePerm); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
		target, err := config.Write(dir, config.Default())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Successfully wrote %s\n", target)

		fmt.Fprintf(cmd.OutOrStdout(), "Next Steps:\n")
		fmt.Fprintf(cmd.OutOrStdout(), "  - adjust base_folders and requirejs_config_file\n")
		fmt.Fprintf(cmd.OutOrStdout(), "  - amdbutler add <file>\n")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().BoolVar(&force, "force", false, "Force overwrite an existing config file")
}
