// Package delivery forwards generated documents to the configured
// recipient over SMTP. Pure coordination: one blocking send, no retry.
package delivery

import (
	"fmt"
	"io"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

// Config holds the SMTP settings and the single configured recipient.
type Config struct {
	Host      string
	Port      int
	Username  string
	Password  string
	Sender    string
	Recipient string
}

// Dispatcher sends document attachments by email.
type Dispatcher struct {
	dialer    *gomail.Dialer
	sender    string
	recipient string
	logger    *zap.Logger
}

// NewDispatcher builds the dispatcher from SMTP settings.
func NewDispatcher(cfg Config, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		dialer:    gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		sender:    cfg.Sender,
		recipient: cfg.Recipient,
		logger:    logger,
	}
}

// Send mails the document to the configured recipient with a fixed
// subject. A failure is reported to the caller; the cached artifact is
// unaffected.
func (d *Dispatcher) Send(data []byte, filename, submitter, department string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", d.sender)
	m.SetHeader("To", d.recipient)
	m.SetHeader("Subject", "Leave Letter Submission")
	m.SetBody("text/plain", fmt.Sprintf(
		"Please find attached the leave letter submitted by %s (%s).\n", submitter, department))
	m.Attach(filename, gomail.SetCopyFunc(func(w io.Writer) error {
		_, err := w.Write(data)
		return err
	}))

	if err := d.dialer.DialAndSend(m); err != nil {
		d.logger.Error("Failed to send leave letter",
			zap.String("recipient", d.recipient),
			zap.String("filename", filename),
			zap.Error(err))
		return fmt.Errorf("failed to send email: %w", err)
	}

	d.logger.Info("Leave letter sent",
		zap.String("recipient", d.recipient),
		zap.String("filename", filename),
		zap.String("submitter", submitter))
	return nil
}
