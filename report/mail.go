package report

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	mailgun "github.com/mailgun/mailgun-go/v3"

	"gitlab.com/lologarithm/greenlife/control"
	"gitlab.com/lologarithm/greenlife/greenlife"
)

// MailgunConfig is the alert mail account.
type MailgunConfig struct {
	Domain     string   `json:"domain"`
	APIKey     string   `json:"api_key"`
	Sender     string   `json:"sender"`
	Recipients []string `json:"recipients"`
}

// Enabled reports whether alerts can be sent.
func (mc MailgunConfig) Enabled() bool {
	return mc.Domain != "" && mc.APIKey != "" && len(mc.Recipients) > 0
}

// Mailer emails an alert when the alarm trips.
type Mailer struct {
	log *slog.Logger
	mc  MailgunConfig
	mg  mailgun.Mailgun
}

// NewMailer builds a mailer for the account.
func NewMailer(log *slog.Logger, mc MailgunConfig) *Mailer {
	return &Mailer{log: log, mc: mc, mg: mailgun.NewMailgun(mc.Domain, mc.APIKey)}
}

// AlarmTransition sends an alert on trips. It has the node's alarm hook
// signature and does not block the loop.
func (m *Mailer) AlarmTransition(tr control.Transition, st greenlife.Status) {
	if tr != control.Tripped {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
		defer cancel()
		if err := m.Send(ctx, st); err != nil {
			m.log.Error("failed to send alert", "err", err)
		}
	}()
}

// Send mails the alert for st.
func (m *Mailer) Send(ctx context.Context, st greenlife.Status) error {
	subj, body := alertMessage(st)
	message := m.mg.NewMessage(m.mc.Sender, subj, body, m.mc.Recipients...)
	resp, id, err := m.mg.Send(ctx, message)
	if err != nil {
		return err
	}
	if id == "" {
		return fmt.Errorf("invalid message id: %s", resp)
	}
	m.log.Info("alert sent", "id", id)
	return nil
}

func alertMessage(st greenlife.Status) (subj, body string) {
	name := st.Node
	if name == "" {
		name = "plant"
	}
	subj = fmt.Sprintf("Green Life alarm: %s", name)
	body = fmt.Sprintf("%s\n\nTemperature: %.1f C\nHumidity: %.1f %%\nMode: %s\nTime: %s\n\n%s\n",
		greenlife.Text(greenlife.Danger),
		st.Reading.Temp, st.Reading.Humidity,
		st.Mode.Label(),
		st.Time.Format(time.RFC1123),
		greenlife.Text(greenlife.AlarmActive),
	)
	return subj, body
}
