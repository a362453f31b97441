/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/tristendillon/amdbutler/core/ast"
	"github.com/tristendillon/amdbutler/core/butler"
	"github.com/tristendillon/amdbutler/core/config"
	"github.com/tristendillon/amdbutler/core/document"
	"github.com/tristendillon/amdbutler/core/logger"
	"golang.org/x/term"
)

var rootCmd = &cobra.Command{
	Use:   "amdbutler",
	Short: "Manage the dependency list of AMD modules.",
	Long: `amdbutler keeps the dependency array of a define or require call and the
parameters of its callback in sync. It indexes the modules of your project,
suggests parameter names and adds, removes or sorts dependencies in place.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger.SetVerbose(verbose)
		if logfile == "" {
			return nil
		}
		f, err := os.OpenFile(logfile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		logger.AddWriterForAll(f)
		logger.SetColor(false)
		return nil
	},
}

var logfile string
var verbose bool
var configFile string

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logfile, "logfile", "", "File to write logs to")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Verbose output")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Path to "+config.FileName+" (searched upward from the file by default)")
}

// loadConfig honours --config, otherwise searches from the directory of file.
func loadConfig(file string) (*config.Config, error) {
	if configFile != "" {
		return config.LoadFile(configFile)
	}
	return config.Load(filepath.Dir(file))
}

// openFile loads file and starts a session for it. The caller closes the session.
func openFile(file string) (*butler.Session, *document.TextBuffer, error) {
	cfg, err := loadConfig(file)
	if err != nil {
		return nil, nil, err
	}
	buf, err := document.LoadFile(file)
	if err != nil {
		return nil, nil, err
	}
	return butler.NewSession(cfg, ast.NewDefineFinder()), buf, nil
}

func closeSession(session *butler.Session) {
	if err := session.Close(); err != nil {
		logger.Debug("Closing session: %v", err)
	}
}

// pickerFor matches query when one was given and prompts otherwise.
func pickerFor(cmd *cobra.Command, args []string) butler.Picker {
	if len(args) > 1 {
		return &butler.MatchPicker{Query: args[1]}
	}
	in := cmd.InOrStdin()
	return &butler.PromptPicker{In: in, Out: cmd.OutOrStdout(), Accessible: !isTerminal(in)}
}

// isTerminal is false for pipes and command substitution, where the
// interactive select cannot run.
func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
