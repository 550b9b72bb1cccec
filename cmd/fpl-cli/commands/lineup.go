package commands

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"fplassist-backend/lib/scrapers/fpl"
	"fplassist-backend/lib/serviceutil"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(lineupCmd)
}

var lineupCmd = &cobra.Command{
	Use:   "lineup <path/to/lineup.json>",
	Short: "Sets the starting lineup from a picks file.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		cfg := readConfig()

		contents, err := os.ReadFile(args[0])
		if err != nil {
			serviceutil.Fatal("failed to read lineup file", err)
		}
		var lineup fpl.Lineup
		err = json.Unmarshal(contents, &lineup)
		if err != nil {
			serviceutil.Fatal("failed to parse lineup file", err)
		}
		if len(lineup.Picks) == 0 {
			serviceutil.Fatal("invalid lineup", fmt.Errorf("%s contains no picks", args[0]))
		}

		client, session := login(ctx, cfg)
		err = client.SetStartingLineup(ctx, session, lineup)
		if err != nil {
			serviceutil.Fatal("failed to set starting lineup", err)
		}
		slog.Info("starting lineup submitted", "picks", len(lineup.Picks))
	},
}
