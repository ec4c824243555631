// internal/notify/notify.go

// Package notify delivers rendered documents to employees by email and
// raises operational alerts. Both paths are feature-flagged so local
// environments run without AWS credentials.
package notify

import (
	"context"

	"hrdesk-automation/internal/common/errors"
	"hrdesk-automation/internal/common/logger"
)

// EmailSender is the slice of the SES wrapper the mailer needs.
type EmailSender interface {
	SendSimple(ctx context.Context, from, to, subject, body string) error
}

// TopicPublisher is the slice of the SNS wrapper the alerter needs.
type TopicPublisher interface {
	PublishToTopic(ctx context.Context, topicARN, subject, message string) error
}

// ==========================
// Mailer
// ==========================

// Mailer emails rendered documents to the employee's address on file.
type Mailer struct {
	ses       EmailSender
	fromEmail string
	enabled   bool
	logger    logger.Logger
}

func NewMailer(ses EmailSender, fromEmail string, enabled bool, log logger.Logger) *Mailer {
	return &Mailer{
		ses:       ses,
		fromEmail: fromEmail,
		enabled:   enabled,
		logger:    log.WithFields(map[string]interface{}{"component": "mailer"}),
	}
}

// SendDocument emails one document. With delivery disabled it logs and
// returns nil; the document stays in the spool and the ticket still gets
// its reference, so nothing is lost silently.
func (m *Mailer) SendDocument(ctx context.Context, to, subject, body string) error {
	if !m.enabled {
		m.logger.Warn("email delivery disabled, skipping send", map[string]interface{}{
			"to":      to,
			"subject": subject,
		})
		return nil
	}
	if err := m.ses.SendSimple(ctx, m.fromEmail, to, subject, body); err != nil {
		return errors.NewNotificationSendError("email", err)
	}
	m.logger.Info("document emailed", map[string]interface{}{
		"to":      to,
		"subject": subject,
	})
	return nil
}

// ==========================
// Alerter
// ==========================

// Alerter publishes operational alerts, currently used when ticket
// reporting exhausts its resends.
type Alerter struct {
	sns      TopicPublisher
	topicARN string
	enabled  bool
	logger   logger.Logger
}

func NewAlerter(sns TopicPublisher, topicARN string, enabled bool, log logger.Logger) *Alerter {
	return &Alerter{
		sns:      sns,
		topicARN: topicARN,
		enabled:  enabled,
		logger:   log.WithFields(map[string]interface{}{"component": "alerter"}),
	}
}

// Alert publishes one ops alert. Best effort: failures are returned for
// logging but never block the caller's main path.
func (a *Alerter) Alert(ctx context.Context, subject, message string) error {
	if !a.enabled {
		a.logger.Warn("ops alerts disabled, dropping alert", map[string]interface{}{
			"subject": subject,
		})
		return nil
	}
	if err := a.sns.PublishToTopic(ctx, a.topicARN, subject, message); err != nil {
		return errors.NewNotificationSendError("sns", err)
	}
	return nil
}
