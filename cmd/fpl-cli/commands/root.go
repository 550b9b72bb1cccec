package commands

import (
	"context"
	"fmt"
	"os"

	"fplassist-backend/lib/configutil"
	"fplassist-backend/lib/notify"
	"fplassist-backend/lib/restyutil"
	"fplassist-backend/lib/scrapers/fpl"
	"fplassist-backend/lib/serviceutil"
	"fplassist-backend/lib/telemetry"

	"github.com/spf13/cobra"
)

type Config struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	// planstore path, supports the <dev_state> prefix
	Database    string            `json:"database"`
	Smtp        notify.SmtpConfig `json:"smtp"`
	NotifyEmail string            `json:"notify_email"`
}

var verbose *bool

var rootCmd = &cobra.Command{
	Use:   "fpl-cli",
	Short: "fpl-cli automates squad management on fantasy.premierleague.com.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		telemetry.InitSlog(*verbose)
		telemetry.SetupFromEnv(cmd.Context(), "fpl-cli")
		telemetry.InstrumentPerfStats(cmd.Context())
		if *verbose {
			fpl.SetRestyInstrumentOutput(restyutil.NewFilesystemOutput("<dev_state>/resty/fpl-cli"))
		}
	},
}

func init() {
	verbose = rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging/instrumentation.")
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func readConfig() Config {
	cfg, err := configutil.ReadConfig[Config]("config.json5")
	if err != nil {
		serviceutil.Fatal("failed to read config", err)
	}
	if cfg.Database == "" {
		cfg.Database = "<dev_state>/plans.db"
	}
	return cfg
}

func newClient() *fpl.Client {
	client, err := fpl.NewClient(fpl.ClientOptions{})
	if err != nil {
		serviceutil.Fatal("failed to initialize fpl client", err)
	}
	return client
}

// login builds a client and authenticates it with the configured
// credentials.
func login(ctx context.Context, cfg Config) (*fpl.Client, fpl.Session) {
	client := newClient()
	session, err := client.Login(ctx, cfg.Email, cfg.Password)
	if err != nil {
		serviceutil.Fatal("failed to login", err)
	}
	return client, session
}
