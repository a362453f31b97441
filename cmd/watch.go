package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/tristendillon/amdbutler/core/index"
	"github.com/tristendillon/amdbutler/core/logger"
	"github.com/tristendillon/amdbutler/core/models"
)

var pollInterval time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch <file>",
	Short: "Index a project and report module changes as they happen",
	Long: `Crawls the project the file belongs to, then keeps the index current while
files in the file's package are created, renamed or deleted. Changes to the
index are printed until interrupted.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		session, _, err := openFile(args[0])
		if err != nil {
			return err
		}
		defer closeSession(session)

		if err := session.EnsureModulesLoaded(args[0]); err != nil {
			return err
		}
		known := snapshot(session.Index())
		fmt.Fprintf(cmd.OutOrStdout(), "Watching %d modules, press Ctrl+C to stop\n", len(known))

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		reportChanges(ctx, session.Index(), known, pollInterval, cmd.OutOrStdout())

		session.Index().LogStats()
		logger.Info("Stopped watching")
		return nil
	},
}

// reportChanges prints the modules that appear in or vanish from idx, compared
// with known, until ctx is done.
func reportChanges(ctx context.Context, idx *index.ModuleIndex, known map[string]models.Module, interval time.Duration, out io.Writer) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			current := snapshot(idx)
			for path, m := range current {
				if _, ok := known[path]; !ok {
					fmt.Fprintf(out, "+ %s (%s)\n", path, m.Name)
				}
			}
			for path := range known {
				if _, ok := current[path]; !ok {
					fmt.Fprintf(out, "- %s\n", path)
				}
			}
			known = current
		}
	}
}

func snapshot(idx *index.ModuleIndex) map[string]models.Module {
	all := idx.All()
	byPath := make(map[string]models.Module, len(all))
	for _, m := range all {
		byPath[m.Path] = m
	}
	return byPath
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().DurationVar(&pollInterval, "interval", 500*time.Millisecond, "How often index changes are reported")
}
