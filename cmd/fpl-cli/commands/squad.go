package commands

import (
	"os"

	"fplassist-backend/lib/scrapers/fpl"
	"fplassist-backend/lib/serviceutil"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(squadCmd)
}

var positionNames = map[int]string{
	1: "GK",
	2: "DEF",
	3: "MID",
	4: "FWD",
}

var squadCmd = &cobra.Command{
	Use:   "squad",
	Short: "Prints the currently selected squad with selling prices.",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		cfg := readConfig()

		client, _ := login(ctx, cfg)

		squad, err := client.GetTransfersSquad(ctx)
		if err != nil {
			serviceutil.Fatal("failed to fetch squad", err)
		}
		bootstrap, err := client.GetAllPlayerData(ctx)
		if err != nil {
			serviceutil.Fatal("failed to fetch player data", err)
		}

		elements := map[int64]fpl.Element{}
		for _, e := range bootstrap.Elements {
			elements[e.ID] = e
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"Id", "Name", "Position", "Selling Price"})
		for _, pick := range squad {
			element := elements[pick.Element]
			t.AppendRow(table.Row{
				pick.Element,
				element.WebName,
				positionNames[element.ElementType],
				formatPrice(pick.SellingPrice),
			})
		}
		t.SetStyle(table.StyleRounded)
		t.Render()
	},
}
