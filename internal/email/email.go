// Package email sends visit confirmation messages to contacts. Delivery is
// best-effort: a failed send is logged and never blocks the visit mutation,
// the same policy as calendar sync.
package email

import (
	"fmt"
	"log/slog"
	"strconv"

	"github.com/inbucket/html2text"
	"github.com/wneessen/go-mail"
)

type SMTPConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
}

type Mailer struct {
	cfg    SMTPConfig
	logger *slog.Logger
}

func NewMailer(cfg SMTPConfig) *Mailer {
	return &Mailer{
		cfg:    cfg,
		logger: slog.With("component", "email"),
	}
}

// VisitConfirmation describes the appointment details sent to the contact.
type VisitConfirmation struct {
	To      string
	Name    string
	Title   string
	Date    string // DD/MM/YYYY, already formatted for display
	Start   string
	End     string
	Address string // optional
}

const confirmationHTML = `<html><body>
<p>Hola %s,</p>
<p>Te confirmamos la cita <strong>%s</strong> para el día <strong>%s</strong> de %s a %s.</p>
%s
<p>Si no podés asistir, por favor avisanos con anticipación.</p>
</body></html>`

// SendVisitConfirmation sends the confirmation mail. Errors are returned for
// logging only; callers must not fail the request on them.
func (m *Mailer) SendVisitConfirmation(v VisitConfirmation) error {
	addressLine := ""
	if v.Address != "" {
		addressLine = fmt.Sprintf("<p>Dirección: %s</p>", v.Address)
	}

	html := fmt.Sprintf(confirmationHTML, v.Name, v.Title, v.Date, v.Start, v.End, addressLine)

	text, err := html2text.FromString(html, html2text.Options{OmitLinks: false})
	if err != nil {
		m.logger.Error("failed to convert HTML to text", "error", err)
		text = ""
	}

	msg := mail.NewMsg()
	if err := msg.From(m.cfg.From); err != nil {
		return fmt.Errorf("invalid from address: %w", err)
	}
	if err := msg.To(v.To); err != nil {
		return fmt.Errorf("invalid recipient: %w", err)
	}
	msg.Subject("Confirmación de cita: " + v.Title)
	msg.SetBodyString(mail.TypeTextPlain, text)
	msg.AddAlternativeString(mail.TypeTextHTML, html)

	opts := []mail.Option{mail.WithPort(m.cfg.Port)}
	if m.cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(m.cfg.Username),
			mail.WithPassword(m.cfg.Password))
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.NoTLS))
	}

	client, err := mail.NewClient(m.cfg.Host, opts...)
	if err != nil {
		return fmt.Errorf("failed to create mail client: %w", err)
	}

	m.logger.Debug("Sending visit confirmation",
		"to", v.To, "title", v.Title, "smtp", m.cfg.Host+":"+strconv.Itoa(m.cfg.Port))

	return client.DialAndSend(msg)
}
