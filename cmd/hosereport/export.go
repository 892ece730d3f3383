package main

import (
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"hosereport/internal/logging"
	"hosereport/internal/pipeline"
	"hosereport/internal/store"
)

func newExportCmd(a *app) *cobra.Command {
	var (
		input  string
		outDir string
		quiet  bool
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Render one inspection document to a PDF",
		Example: `  hosereport export -i inspection.json
  hosereport export -i inspection.yaml -o reports --engine vector`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext()
			defer cancel()

			if outDir == "" {
				outDir = a.cfg.Report.OutputDir
			}
			out := cmd.OutOrStdout()

			onPage := func(page, total int) {
				if !quiet {
					fmt.Fprintf(out, "%s page %d/%d\n", mutedStyle.Render("rendering"), page, total)
				}
			}
			gen, cleanup := newGenerator(a.cfg, onPage)
			defer cleanup()

			runner := &pipeline.Runner{Generator: gen, Metrics: newMetrics(), Source: "cli"}
			if st := openHistory(a.cfg); st != nil {
				defer st.Close()
				runner.History = st
			}

			res, err := runner.ExportFile(ctx, input, outDir)
			if err != nil {
				logging.ReportError("export %s: %v", input, err)
				return err
			}
			fmt.Fprint(out, exportSummary(res))
			return nil
		},
	}
	cmd.Flags().StringVarP(&input, "input", "i", "", "Inspection document (.json, .yaml or .yml)")
	cmd.Flags().StringVarP(&outDir, "output", "o", "", "Output directory (default from config)")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Do not print page progress")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}

func exportSummary(res *pipeline.Result) string {
	path := res.Path
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	t := newTable("", "File", "Items", "Pages", "Size", "Checksum")
	doc := res.Document
	t.addRow(res.FileName, strconv.Itoa(doc.Items), strconv.Itoa(doc.Pages), humanBytes(len(doc.PDF)), doc.Checksum)
	return successStyle.Render("saved ") + path + "\n" + t.String()
}

func humanBytes(n int) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MiB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KiB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}

// statusText styles an export status for terminal output.
func statusText(status string) string {
	if status == store.StatusOK {
		return successStyle.Render(status)
	}
	return errorStyle.Render(status)
}
