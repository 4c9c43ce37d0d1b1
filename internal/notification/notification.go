// Package notification delivers fire-and-forget emails on workflow events.
// Delivery failures are logged, never surfaced to the triggering request.
package notification

import (
	"fmt"
	"strings"

	"github.com/emersion/go-sasl"
	"github.com/emersion/go-smtp"
	log "github.com/sirupsen/logrus"
)

// Event types emitted by the engine controllers
const (
	EventCriterionVerified = "criterion_verified"
	EventCriterionRejected = "criterion_rejected"
	EventJobReadyApproved  = "job_ready_approved"
	EventSkillDecided      = "skill_decided"
	EventProfileRevision   = "profile_revision_requested"
	EventInterestDecided   = "interest_decided"
)

// Event is one notification to one recipient
type Event struct {
	Type      string
	Recipient string
	Subject   string
	Message   string
}

// Notifier sends workflow notifications
type Notifier interface {
	Notify(event Event) error
}

// SMTPNotifier sends events as plain-text email over SMTP
type SMTPNotifier struct {
	From       string
	User       string
	Password   string
	Host       string
	Port       string
	TLSEnabled bool
}

// Notify sends the event email. An unconfigured notifier silently drops
// events so local setups work without an SMTP server.
func (n *SMTPNotifier) Notify(event Event) error {
	if n.Host == "" || n.Port == "" || n.User == "" {
		log.WithField("event", event.Type).Debug("SMTP not configured, dropping notification")
		return nil
	}
	if event.Recipient == "" {
		log.WithField("event", event.Type).Debug("no recipient address, dropping notification")
		return nil
	}

	auth := sasl.NewPlainClient("", n.User, n.Password)
	headers := "MIME-version: 1.0;\nContent-Type: text/plain; charset=\"UTF-8\";\r\n"
	body := strings.NewReader(fmt.Sprintf("Subject: CampusReady - %s\n%s\r\n%s\r\n", event.Subject, headers, event.Message))

	addr := n.Host + ":" + n.Port
	var err error
	if n.TLSEnabled {
		err = smtp.SendMailTLS(addr, auth, n.From, []string{event.Recipient}, body)
	} else {
		err = smtp.SendMail(addr, auth, n.From, []string{event.Recipient}, body)
	}
	if err != nil {
		return err
	}
	log.WithFields(log.Fields{"event": event.Type, "recipient": event.Recipient}).Info("notification sent")
	return nil
}

// Noop is a Notifier that discards every event; used in tests
type Noop struct{}

// Notify discards the event
func (Noop) Notify(Event) error { return nil }

// Dispatch sends the event in the background. Failures are non-fatal to the
// operation that triggered them.
func Dispatch(n Notifier, event Event) {
	if n == nil {
		return
	}
	go func() {
		if err := n.Notify(event); err != nil {
			log.WithError(err).WithField("event", event.Type).Error("failed to deliver notification")
		}
	}()
}
