package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"hosereport/internal/report"
)

func newColumnsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "columns",
		Short: "Show the report table layout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprint(cmd.OutOrStdout(), columnsTable(report.Columns()))
			return nil
		},
	}
}

func columnsTable(cols []report.Column) string {
	t := newTable(report.ReportTitle+" columns", "Key", "Label", "Width", "Rotated")
	total := 0
	for _, c := range cols {
		rotated := ""
		if c.Rotated {
			rotated = "yes"
		}
		t.addRow(c.Key, c.Label, strconv.Itoa(c.WidthPx)+"px", rotated)
		total += c.WidthPx
	}
	t.addRow("", "", strconv.Itoa(total)+"px", "")
	return t.String()
}
