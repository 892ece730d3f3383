package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"hosereport/internal/logging"
	"hosereport/internal/pipeline"
	"hosereport/internal/watch"
)

func newWatchCmd(a *app) *cobra.Command {
	var (
		dir    string
		outDir string
	)
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Render reports for inspection files as they appear in a directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext()
			defer cancel()

			if outDir == "" {
				outDir = dir
			}
			out := cmd.OutOrStdout()

			gen, cleanup := newGenerator(a.cfg, nil)
			defer cleanup()

			runner := &pipeline.Runner{Generator: gen, Metrics: newMetrics(), Source: "watch"}
			if st := openHistory(a.cfg); st != nil {
				defer st.Close()
				runner.History = st
			}

			w, err := watch.New(dir, a.cfg.GetDebounce(), func(ctx context.Context, path string) error {
				res, err := runner.ExportFile(ctx, path, outDir)
				if err != nil {
					fmt.Fprintf(out, "%s %s: %v\n", errorStyle.Render("failed"), path, err)
					return err
				}
				fmt.Fprintf(out, "%s %s -> %s (%d pages)\n", successStyle.Render("saved"), path, res.FileName, res.Document.Pages)
				return nil
			})
			if err != nil {
				return err
			}
			if err := w.Start(ctx); err != nil {
				return err
			}
			fmt.Fprintf(out, "%s %s\n", mutedStyle.Render("watching"), dir)

			<-ctx.Done()
			w.Stop()
			st := w.Stats()
			logging.Watch("stopped: %d events, %d handled, %d errors", st.Events, st.Handled, st.Errors)
			return nil
		},
	}
	cmd.Flags().StringVarP(&dir, "dir", "d", ".", "Directory to watch")
	cmd.Flags().StringVarP(&outDir, "output", "o", "", "Output directory (default: the watched directory)")
	return cmd
}
