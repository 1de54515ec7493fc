package smtp

import (
	"fmt"
	"html"
	"net/smtp"
	"strings"

	"github.com/go-matchmaker/internal/config"
	"github.com/jhillyerd/enmime"
)

// Mailer sends emails.
type Mailer interface {
	SendEmail(to, subject, body string) error
}

type mailer struct {
	from     string
	fromName string
	sender   enmime.Sender
}

func NewMailer(cfg *config.Config) Mailer {
	addr := fmt.Sprintf("%s:%s", cfg.SMTP.Host, cfg.SMTP.Port)

	var auth smtp.Auth
	if cfg.SMTP.Username != "" {
		auth = smtp.PlainAuth("", cfg.SMTP.Username, cfg.SMTP.Password, cfg.SMTP.Host)
	}
	return newMailer(cfg.SMTP.From, cfg.SMTP.FromName, enmime.NewSMTP(addr, auth))
}

func newMailer(from, fromName string, sender enmime.Sender) *mailer {
	return &mailer{from: from, fromName: fromName, sender: sender}
}

// SendEmail delivers body as a multipart/alternative message with a plain
// text part and an HTML rendering of the same text.
func (m *mailer) SendEmail(to, subject, body string) error {
	err := enmime.Builder().
		From(m.fromName, m.from).
		To("", to).
		Subject(subject).
		Text([]byte(body)).
		HTML([]byte(toHTML(body))).
		Send(m.sender)
	if err != nil {
		return fmt.Errorf("send email to %s: %w", to, err)
	}
	return nil
}

func toHTML(body string) string {
	var b strings.Builder
	b.WriteString("<html><body>")
	for i, line := range strings.Split(body, "\n") {
		if i > 0 {
			b.WriteString("<br>")
		}
		b.WriteString(html.EscapeString(line))
	}
	b.WriteString("</body></html>")
	return b.String()
}
