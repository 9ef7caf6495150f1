package notifiers

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/smtp"
	"time"

	"github.com/kova98/feedgrep.dataset/models"
)

//go:embed templates/run_summary.html
var emailTemplates embed.FS

var summaryTemplate = template.Must(template.ParseFS(emailTemplates, "templates/run_summary.html"))

type Mailer struct {
	smtpHost string
	smtpPort string
	from     string
	password string
}

func NewMailer(smtpHost, smtpPort, from, password string) *Mailer {
	return &Mailer{
		smtpHost: smtpHost,
		smtpPort: smtpPort,
		from:     from,
		password: password,
	}
}

func (h *Mailer) RunSummaryEmail(email string, summary models.RunSummary) (models.Email, error) {
	if len(summary.Keywords) == 0 {
		return models.Email{}, fmt.Errorf("run summary has no keywords")
	}

	tmplData := struct {
		models.RunSummary
		Started  string
		Duration string
	}{
		RunSummary: summary,
		Started:    summary.StartedAt.UTC().Format(time.RFC1123),
		Duration:   summary.Duration.Round(time.Second).String(),
	}

	var buf bytes.Buffer
	if err := summaryTemplate.Execute(&buf, tmplData); err != nil {
		return models.Email{}, fmt.Errorf("render run summary template: %w", err)
	}

	return models.Email{
		To:      email,
		Subject: fmt.Sprintf("feedgrep: dataset ready (%d comments)", summary.MergedRows),
		Body:    buf.String(),
	}, nil
}

func (h *Mailer) Send(mail models.Email) error {
	message := fmt.Sprintf(`From: feedgrep <%s>
To: %s
Subject: %s
MIME-Version: 1.0
Content-Type: text/html; charset=UTF-8

%s`, h.from, mail.To, mail.Subject, mail.Body)

	var auth smtp.Auth
	if h.password != "" {
		auth = smtp.PlainAuth("", h.from, h.password, h.smtpHost)
	}
	addr := fmt.Sprintf("%s:%s", h.smtpHost, h.smtpPort)
	err := smtp.SendMail(addr, auth, h.from, []string{mail.To}, []byte(message))
	if err != nil {
		slog.Error("Failed to send email", "error", err)
		return err
	}

	slog.Info("email sent", "recipient", mail.To, "subject", mail.Subject)
	return nil
}
