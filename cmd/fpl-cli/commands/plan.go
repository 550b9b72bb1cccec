package commands

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"fplassist-backend/lib/planner"
	"fplassist-backend/lib/planstore"
	"fplassist-backend/lib/scrapers/fpl"
	"fplassist-backend/lib/serviceutil"
	"fplassist-backend/lib/sqliteutil"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var planSubmit *bool

func init() {
	planSubmit = planCmd.Flags().Bool("submit", false, "Submit the computed transfers upstream.")
	rootCmd.AddCommand(planCmd)
}

// readTargetSquad loads the desired squad as a json array of element
// ids and resolves each against the bootstrap dataset.
func readTargetSquad(path string, bootstrap fpl.Bootstrap) ([]planner.Candidate, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var ids []int64
	err = json.Unmarshal(contents, &ids)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	elements := map[int64]fpl.Element{}
	for _, e := range bootstrap.Elements {
		elements[e.ID] = e
	}

	target := make([]planner.Candidate, len(ids))
	for i, id := range ids {
		element, ok := elements[id]
		if !ok {
			return nil, fmt.Errorf("unknown element id %d in %s", id, path)
		}
		target[i] = element.Candidate()
	}
	return target, nil
}

var planCmd = &cobra.Command{
	Use:   "plan <path/to/target-squad.json> [--submit]",
	Short: "Computes the transfers needed to reach a target squad.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		cfg := readConfig()

		client, session := login(ctx, cfg)

		squad, err := client.GetTransfersSquad(ctx)
		if err != nil {
			serviceutil.Fatal("failed to fetch squad", err)
		}
		bootstrap, err := client.GetAllPlayerData(ctx)
		if err != nil {
			serviceutil.Fatal("failed to fetch player data", err)
		}
		target, err := readTargetSquad(args[0], bootstrap)
		if err != nil {
			serviceutil.Fatal("failed to read target squad", err)
		}

		plan, err := planner.Compute(squad, target, planner.Meta{
			Entry: session.EntryID,
			Event: session.NextEvent,
		})
		if err != nil {
			serviceutil.Fatal("failed to compute transfer plan", err)
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"In", "Purchase Price", "Out", "Selling Price"})
		for _, tr := range plan.Transfers {
			t.AppendRow(table.Row{
				tr.ElementIn,
				formatPrice(tr.PurchasePrice),
				tr.ElementOut,
				formatPrice(tr.SellingPrice),
			})
		}
		t.SetStyle(table.StyleRounded)
		t.Render()

		if !*planSubmit {
			return
		}

		result, err := client.MakeTransfers(ctx, session, plan)
		if err != nil {
			serviceutil.Fatal("failed to submit transfers", err)
		}
		if result.NoOp {
			slog.Info("squad already matches target, nothing submitted")
			return
		}
		slog.Info("transfers submitted", "status", result.StatusCode, "count", len(plan.Transfers))

		db, err := sqliteutil.OpenDB(planstore.Schema, cfg.Database)
		if err != nil {
			serviceutil.Fatal("failed to open plan store", err)
		}
		defer db.Close()

		err = planstore.NewStore(db).Push(ctx, time.Now(), plan)
		if err != nil {
			serviceutil.Fatal("failed to record submitted plan", err)
		}
	},
}
