package main

import (
	"fplassist-backend/cmd/fpl-cli/commands"
	"fplassist-backend/lib/serviceutil"
)

func main() {
	ctx := serviceutil.SignalContext()
	commands.ExecuteContext(ctx)
}
