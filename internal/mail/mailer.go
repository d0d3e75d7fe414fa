package mail

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/rs/zerolog"

	"github.com/velora/commerce/internal/config"
	"github.com/velora/commerce/internal/log"
)

// Mailer sends account mail over plain SMTP. Bodies are plain text; the
// storefront links carry a one-time token as a query parameter.
type Mailer struct {
	cfg     config.Smtp
	baseURL string
}

func NewMailer(cfg config.Smtp, baseURL string) *Mailer {
	return &Mailer{cfg: cfg, baseURL: baseURL}
}

func (m *Mailer) SendVerificationEmail(c context.Context, to string, token string) error {
	link := fmt.Sprintf("%s/verifyemail?token=%s", m.baseURL, token)
	body := fmt.Sprintf(
		"Welcome to Velora!\r\n\r\nVerify your email by opening the link below:\r\n%s\r\n\r\nThe link expires in 24 hours.\r\n",
		link,
	)
	return m.send(c, to, "Verify your email", body)
}

func (m *Mailer) SendPasswordResetEmail(c context.Context, to string, token string) error {
	link := fmt.Sprintf("%s/resetpassword?token=%s", m.baseURL, token)
	body := fmt.Sprintf(
		"A password reset was requested for your account.\r\n\r\nReset your password by opening the link below:\r\n%s\r\n\r\nThe link expires in 1 hour. If you did not request this, ignore this mail.\r\n",
		link,
	)
	return m.send(c, to, "Reset your password", body)
}

func (m *Mailer) send(c context.Context, to string, subject string, body string) error {
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "Mailer send").
		Str(log.KeyEmail, to).
		Logger()

	msg := strings.Join([]string{
		"From: " + m.cfg.From,
		"To: " + to,
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=utf-8",
		"",
		body,
	}, "\r\n")

	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)
	auth := smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	err := smtp.SendMail(addr, auth, m.cfg.From, []string{to}, []byte(msg))
	if err != nil {
		err = fmt.Errorf("failed sending mail with error=%w", err)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	logger.Info().Msgf("sent mail subject=%q", subject)
	return nil
}
