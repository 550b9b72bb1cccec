package commands

import (
	"fmt"
	"log/slog"

	"fplassist-backend/lib/notify"
	"fplassist-backend/lib/serviceutil"

	"github.com/spf13/cobra"
)

var deadlineNotify *bool

func init() {
	deadlineNotify = deadlineCmd.Flags().Bool("notify", false, "Email the deadline to the configured address.")
	rootCmd.AddCommand(deadlineCmd)
}

var deadlineCmd = &cobra.Command{
	Use:   "deadline [--notify]",
	Short: "Prints the next deadline for submitting transfers/team choice.",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		client := newClient()
		deadline, err := client.GetDeadline(ctx)
		if err != nil {
			serviceutil.Fatal("failed to fetch deadline", err)
		}

		fmt.Println(deadline.Format("Monday, 2 January 2006 at 15:04 MST"))

		if !*deadlineNotify {
			return
		}
		cfg := readConfig()
		if cfg.NotifyEmail == "" {
			serviceutil.Fatal("cannot notify", fmt.Errorf("notify_email is not configured"))
		}
		notifier := notify.NewNotifier(cfg.Smtp)
		err = notifier.SendDeadlineReminder(ctx, cfg.NotifyEmail, deadline)
		if err != nil {
			serviceutil.Fatal("failed to send reminder", err)
		}
		slog.Info("sent deadline reminder", "to", cfg.NotifyEmail)
	},
}
