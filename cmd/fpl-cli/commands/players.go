package commands

import (
	"fmt"
	"os"
	"strconv"

	"fplassist-backend/lib/serviceutil"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(playersCmd)
	rootCmd.AddCommand(fixturesCmd)
}

// upstream prices are tenths of a million
func formatPrice(tenths int) string {
	return fmt.Sprintf("%.1f", float64(tenths)/10)
}

var playersCmd = &cobra.Command{
	Use:   "players",
	Short: "Prints every player record from the fantasy api.",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		client := newClient()
		bootstrap, err := client.GetAllPlayerData(ctx)
		if err != nil {
			serviceutil.Fatal("failed to fetch player data", err)
		}

		teams := map[int]string{}
		for _, team := range bootstrap.Teams {
			teams[team.ID] = team.Name
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"Id", "Name", "Position", "Cost", "Team"})
		for _, e := range bootstrap.Elements {
			t.AppendRow(table.Row{
				e.ID,
				e.WebName,
				positionNames[e.ElementType],
				formatPrice(e.NowCost),
				teams[e.Team],
			})
		}
		t.SetStyle(table.StyleRounded)
		t.Render()
	},
}

var fixturesCmd = &cobra.Command{
	Use:   "fixtures <player id>",
	Short: "Prints a single player's history and upcoming fixtures.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		playerId, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			serviceutil.Fatal("invalid player id", err)
		}

		client := newClient()
		detail, err := client.GetPlayerFixtures(ctx, playerId)
		if err != nil {
			serviceutil.Fatal("failed to fetch player fixtures", err)
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"Round", "Points", "Minutes"})
		for _, h := range detail.History {
			t.AppendRow(table.Row{h.Round, h.TotalPoints, h.Minutes})
		}
		t.SetStyle(table.StyleRounded)
		t.Render()

		t = table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"Fixture", "Difficulty", "Home"})
		for _, f := range detail.Fixtures {
			t.AppendRow(table.Row{f.EventName, f.Difficulty, f.IsHome})
		}
		t.SetStyle(table.StyleRounded)
		t.Render()
	},
}
