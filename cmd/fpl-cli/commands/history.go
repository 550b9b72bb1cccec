package commands

import (
	"os"
	"strconv"

	"fplassist-backend/lib/planstore"
	"fplassist-backend/lib/serviceutil"
	"fplassist-backend/lib/sqliteutil"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(historyCmd)
}

var historyCmd = &cobra.Command{
	Use:   "history <entry id>",
	Short: "Prints every transfer plan previously submitted for an entry.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		cfg := readConfig()

		entry, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			serviceutil.Fatal("invalid entry id", err)
		}

		db, err := sqliteutil.OpenDB(planstore.Schema, cfg.Database)
		if err != nil {
			serviceutil.Fatal("failed to open plan store", err)
		}
		defer db.Close()

		records, err := planstore.NewStore(db).Pull(ctx, entry)
		if err != nil {
			serviceutil.Fatal("failed to read plan store", err)
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"Submitted", "Event", "In", "Out"})
		for _, record := range records {
			for _, tr := range record.Transfers {
				t.AppendRow(table.Row{
					record.SubmittedAt.Format("2006-01-02 15:04"),
					record.Event,
					tr.ElementIn,
					tr.ElementOut,
				})
			}
		}
		t.SetStyle(table.StyleRounded)
		t.Render()
	},
}
