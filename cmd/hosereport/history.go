package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"hosereport/internal/store"
)

func newHistoryCmd(a *app) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent exports",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !a.cfg.IsHistoryEnabled() {
				return errors.New("export history is disabled (store.database_path is empty)")
			}
			st, err := store.NewStore(a.cfg.Store.DatabasePath)
			if err != nil {
				return err
			}
			defer st.Close()

			exports, err := st.List(context.Background(), limit)
			if err != nil {
				return err
			}
			if len(exports) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), mutedStyle.Render("no exports recorded"))
				return nil
			}
			fmt.Fprint(cmd.OutOrStdout(), historyTable(exports))
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of exports to show")
	return cmd
}

func historyTable(exports []store.Export) string {
	t := newTable("Recent exports", "When", "Client", "Source", "Engine", "Status", "Pages", "File")
	for _, e := range exports {
		file := e.FileName
		if e.Status != store.StatusOK {
			file = warnStyle.Render(e.Error)
		}
		t.addRow(
			e.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			e.Client,
			e.Source,
			e.Engine,
			statusText(e.Status),
			strconv.Itoa(e.Pages),
			file,
		)
	}
	return t.String()
}
