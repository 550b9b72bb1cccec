// Package notify sends transfer deadline reminder emails.
package notify

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
	"time"

	"github.com/jordan-wright/email"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("notify")

type SmtpConfig struct {
	Server       string `json:"server"`
	Port         int    `json:"port"`
	EmailAddress string `json:"email_address"`
	Password     string `json:"password"`
}

type Notifier struct {
	config SmtpConfig
}

func NewNotifier(config SmtpConfig) Notifier {
	return Notifier{config: config}
}

// SendDeadlineReminder mails the next transfer deadline to the given
// address.
func (n Notifier) SendDeadlineReminder(ctx context.Context, to string, deadline time.Time) error {
	_, span := tracer.Start(ctx, "notify:SendDeadlineReminder")
	defer span.End()

	mail := email.NewEmail()
	mail.From = fmt.Sprintf("FPL Assist <%s>", n.config.EmailAddress)
	mail.To = []string{to}
	mail.Subject = "Upcoming transfer deadline"

	body := fmt.Sprintf(`The next transfer deadline is %s.

Make sure your transfers and starting lineup are submitted before then.`,
		deadline.Format("Monday, 2 January 2006 at 15:04 MST"))
	mail.Text = []byte(body)

	addr := fmt.Sprintf("%s:%d", n.config.Server, n.config.Port)
	err := mail.Send(
		addr,
		smtp.PlainAuth("", n.config.EmailAddress, n.config.Password, n.config.Server),
	)
	if err != nil && strings.Contains(err.Error(), "server doesn't support AUTH") {
		err = mail.Send(addr, nil)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to send email")
		return err
	}

	return nil
}
