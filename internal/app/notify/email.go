package notify

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/smtp"
	"strings"

	"go.uber.org/zap"
)

// SMTPConfig holds the outbound mail settings.
type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Pass     string
	From     string
	FromName string
	SiteName string
}

// EmailSender delivers credentials over SMTP.
type EmailSender struct {
	cfg SMTPConfig
	log *zap.Logger

	// send is swappable for tests; defaults to smtp.SendMail.
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewEmailSender(cfg SMTPConfig, logger *zap.Logger) *EmailSender {
	return &EmailSender{cfg: cfg, log: logger, send: smtp.SendMail}
}

// credentialEmailData feeds the credential email templates.
type credentialEmailData struct {
	SiteName string
	Username string
	Secret   string
}

// SendCredential sends a username/secret pair as a plain+HTML message.
func (e *EmailSender) SendCredential(ctx context.Context, dest Destination, username, secret string) error {
	if dest.Channel != ChannelEmail {
		return fmt.Errorf("email sender got %q destination", dest.Channel)
	}
	if e.cfg.Host == "" {
		return fmt.Errorf("smtp is not configured")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	data := credentialEmailData{SiteName: e.cfg.SiteName, Username: username, Secret: secret}

	var msg bytes.Buffer
	fmt.Fprintf(&msg, "From: %s <%s>\r\n", e.cfg.FromName, e.cfg.From)
	fmt.Fprintf(&msg, "To: %s\r\n", dest.To)
	fmt.Fprintf(&msg, "Subject: Your %s login credentials\r\n", e.cfg.SiteName)
	msg.WriteString("MIME-Version: 1.0\r\nContent-Type: text/html; charset=UTF-8\r\n\r\n")
	msg.WriteString(buildCredentialHTML(data))

	var auth smtp.Auth
	if e.cfg.User != "" {
		auth = smtp.PlainAuth("", e.cfg.User, e.cfg.Pass, e.cfg.Host)
	}

	addr := fmt.Sprintf("%s:%d", e.cfg.Host, e.cfg.Port)
	if err := e.send(addr, auth, e.cfg.From, []string{dest.To}, msg.Bytes()); err != nil {
		e.log.Warn("credential email delivery failed",
			zap.String("to", dest.To),
			zap.Error(err))
		return fmt.Errorf("email delivery: %w", err)
	}

	e.log.Info("credential email sent", zap.String("to", dest.To))
	return nil
}

func buildCredentialHTML(data credentialEmailData) string {
	tmpl := template.Must(template.New("credential").Parse(credentialHTMLTemplate))
	var buf strings.Builder
	_ = tmpl.Execute(&buf, data)
	return buf.String()
}

const credentialHTMLTemplate = `<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"><title>Login Credentials</title></head>
<body style="margin: 0; padding: 0; font-family: -apple-system, 'Segoe UI', Roboto, Arial, sans-serif; background-color: #f3f4f6;">
  <table role="presentation" width="100%" cellspacing="0" cellpadding="0">
    <tr>
      <td align="center" style="padding: 40px 20px;">
        <table role="presentation" width="100%" cellspacing="0" cellpadding="0" style="max-width: 480px; background-color: #ffffff; border-radius: 8px;">
          <tr>
            <td style="padding: 32px 32px 24px; text-align: center; border-bottom: 1px solid #e5e7eb;">
              <h1 style="margin: 0; font-size: 24px; font-weight: 600; color: #166534;">{{.SiteName}}</h1>
            </td>
          </tr>
          <tr>
            <td style="padding: 32px;">
              <p style="margin: 0 0 24px; font-size: 16px; color: #374151;">እንኳን ደህና መጡ! የመግቢያ መረጃዎ:</p>
              <div style="background-color: #f3f4f6; border-radius: 8px; padding: 24px; margin-bottom: 24px;">
                <p style="margin: 0 0 8px; font-size: 14px; color: #6b7280;">የተጠቃሚ ስም</p>
                <p style="margin: 0 0 16px; font-size: 18px; font-weight: 700; color: #1f2937; font-family: 'Courier New', monospace;">{{.Username}}</p>
                <p style="margin: 0 0 8px; font-size: 14px; color: #6b7280;">የይለፍ ቃል</p>
                <p style="margin: 0; font-size: 18px; font-weight: 700; color: #1f2937; font-family: 'Courier New', monospace;">{{.Secret}}</p>
              </div>
              <p style="margin: 0; font-size: 13px; color: #9ca3af;">በመጀመሪያው ሎግኢን የይለፍ ቃልዎን እንዲቀይሩ እንመክራለን።</p>
            </td>
          </tr>
        </table>
      </td>
    </tr>
  </table>
</body>
</html>`
