package email

import (
	"fmt"

	"github.com/rs/zerolog"
	"gopkg.in/gomail.v2"

	"github.com/labloom/marketplace-api/config"
)

// Service sends transactional mail. The SMTP implementation is used when a
// host is configured; otherwise mails are logged and dropped.
type Service interface {
	Send(to, subject, body string) error
}

type smtpService struct {
	dialer *gomail.Dialer
	from   string
}

type logService struct {
	logger *zerolog.Logger
}

func NewService(cfg config.SMTPConfig, logger *zerolog.Logger) Service {
	if cfg.Host == "" {
		return &logService{logger: logger}
	}
	return &smtpService{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
	}
}

func (s *smtpService) Send(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

func (s *logService) Send(to, subject, body string) error {
	s.logger.Info().Str("to", to).Str("subject", subject).Msg("email suppressed, no SMTP host configured")
	return nil
}

// ApprovalBody renders the approval decision mail for a facility or doctor.
func ApprovalBody(name string, approved bool) (subject, body string) {
	if approved {
		return "Your account has been approved",
			fmt.Sprintf("<p>Hi %s,</p><p>Your account has been approved. You can now log in and start using the platform.</p>", name)
	}
	return "Your account application was declined",
		fmt.Sprintf("<p>Hi %s,</p><p>Unfortunately your account application was declined. Contact support for details.</p>", name)
}
