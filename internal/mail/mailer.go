package mail

import (
	"fmt"
	"log"
	"strings"

	"gopkg.in/gomail.v2"

	"betips/internal/config"
)

// Mailer sends transactional email.
type Mailer interface {
	SendPasswordReset(toEmail, resetURL string) error
}

// SMTPMailer delivers mail over SMTP.
type SMTPMailer struct {
	cfg *config.Config
}

// NewSMTPMailer creates a new SMTP mailer.
func NewSMTPMailer(cfg *config.Config) *SMTPMailer {
	return &SMTPMailer{cfg: cfg}
}

// SendPasswordReset mails the reset link. When SMTP is not configured the
// send is skipped so local environments work without a mail server.
func (m *SMTPMailer) SendPasswordReset(toEmail, resetURL string) error {
	if m.cfg.SMTPHost == "" || m.cfg.SMTPUser == "" {
		log.Println("smtp config missing, skipping password reset email")
		return nil
	}
	if strings.TrimSpace(toEmail) == "" {
		return fmt.Errorf("empty recipient")
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.cfg.FromEmail)
	msg.SetHeader("To", toEmail)
	msg.SetHeader("Subject", "Recuperação de Senha")
	msg.SetBody("text/html", fmt.Sprintf(`
        <h1>Recuperação de Senha</h1>
        <p>Você solicitou a recuperação de senha. Clique no link abaixo para redefinir sua senha:</p>
        <a href="%s">Redefinir Senha</a>
        <p>Este link expira em 1 hora.</p>
        <p>Se você não solicitou esta recuperação, ignore este email.</p>
    `, resetURL))

	dialer := gomail.NewDialer(m.cfg.SMTPHost, m.cfg.SMTPPort, m.cfg.SMTPUser, m.cfg.SMTPPass)
	if err := dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	return nil
}
