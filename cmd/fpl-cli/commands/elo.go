package commands

import (
	"os"
	"sort"
	"time"

	"fplassist-backend/lib/scrapers/clubelo"
	"fplassist-backend/lib/serviceutil"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(eloCmd)
}

var eloCmd = &cobra.Command{
	Use:   "elo",
	Short: "Prints current Elo ratings for every fantasy club.",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		client := newClient()
		bootstrap, err := client.GetAllPlayerData(ctx)
		if err != nil {
			serviceutil.Fatal("failed to fetch player data", err)
		}

		elo, err := clubelo.NewClient(clubelo.ClientOptions{})
		if err != nil {
			serviceutil.Fatal("failed to initialize clubelo client", err)
		}
		ratings, err := elo.Ratings(ctx, time.Now(), bootstrap.Teams)
		if err != nil {
			serviceutil.Fatal("failed to fetch elo ratings", err)
		}

		teams := bootstrap.Teams
		sort.Slice(teams, func(i, j int) bool {
			return ratings[teams[i].ID] > ratings[teams[j].ID]
		})

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"Team", "Elo"})
		for _, team := range teams {
			rating, ok := ratings[team.ID]
			if !ok {
				continue
			}
			t.AppendRow(table.Row{team.Name, rating})
		}
		t.SetStyle(table.StyleRounded)
		t.Render()
	},
}
