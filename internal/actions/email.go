package actions

import (
	"context"
	"fmt"
	"strings"

	"github.com/vietddude/autodash/internal/core/domain"
	"github.com/vietddude/autodash/internal/infra/mail"
)

// MsgMailNotConfigured is returned when SMTP credentials are missing.
const MsgMailNotConfigured = "Please set your mail username and app password (mail.username / mail.password) for email sending."

// EmailRequest is a single-recipient plain-text message.
type EmailRequest struct {
	To      string
	Subject string
	Body    string
}

// SendEmail sends req once. Sends are never retried; each carries a fresh Message-ID so a
// duplicate delivery can be recognised downstream.
func (s *Service) SendEmail(ctx context.Context, req EmailRequest) domain.Result {
	if s.cfg.Mail.Username == "" || s.cfg.Mail.Password == "" || s.deps.Mailer == nil {
		return domain.Failure(domain.ActionEmail, domain.KindConfig, MsgMailNotConfigured)
	}
	if strings.TrimSpace(req.To) == "" || strings.TrimSpace(req.Body) == "" {
		return domain.Failure(domain.ActionEmail, domain.KindInput, "Please fill in recipient and message for the email.")
	}

	msg := mail.Message{
		To:        strings.TrimSpace(req.To),
		Subject:   req.Subject,
		Body:      req.Body,
		MessageID: s.deps.NewID(),
	}
	if err := s.deps.Mailer.Send(ctx, msg); err != nil {
		kind := domain.KindOf(err)
		if kind == domain.KindNone {
			kind = domain.KindNetwork
		}
		return domain.Failure(domain.ActionEmail, kind, fmt.Sprintf(
			"Error sending email: %v. Please check your Gmail credentials and 'App passwords' settings (if using 2FA) "+
			"or ensure Less Secure App Access is enabled (for older setups).", err))
	}

	return domain.Success(domain.ActionEmail, "Email sent successfully!")
}
