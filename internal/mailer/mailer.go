// Package mailer composes and delivers the transactional welcome email.
// Delivery is decoupled from the request path: handlers enqueue onto a
// worker that sends with a retry policy, so mail outcomes never affect the
// HTTP response.
package mailer

import (
	"context"
	"errors"
	"fmt"

	"github.com/wneessen/go-mail"
)

// Message is a single outbound email.
type Message struct {
	To      string
	Subject string
	HTML    string
}

// Sender delivers a single message.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

const welcomeSubject = "Welcome note from Eventrite"

const welcomeBody = `<h3>Welcome note from Eventrite</h3>
<h6>Hello %s</h6>
<p>You are getting this mail because you created an account with us here at Eventrite.</p>
<p>Our main objective is to make events easier to host and reach its targeted audiences and help in publicity.</p>
<br>
<h6>We sincerely hope you enjoy our services.</h6>
<h6>We welcome you again and we are happy to have you from everyone at Eventrite.</h6>`

// Welcome builds the fixed-template welcome note for a new account.
func Welcome(to, username string) Message {
	return Message{
		To:      to,
		Subject: welcomeSubject,
		HTML:    fmt.Sprintf(welcomeBody, username),
	}
}

// SMTPSender delivers mail over SMTP with injected credentials.
type SMTPSender struct {
	client *mail.Client
	from   string
}

func NewSMTPSender(host string, port int, username, password, from string) (*SMTPSender, error) {
	if host == "" || from == "" {
		return nil, errors.New("smtp host and from address are required")
	}
	opts := []mail.Option{
		mail.WithPort(port),
		mail.WithTLSPortPolicy(mail.TLSMandatory),
	}
	if username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(username),
			mail.WithPassword(password),
		)
	}
	client, err := mail.NewClient(host, opts...)
	if err != nil {
		return nil, fmt.Errorf("smtp client: %w", err)
	}
	return &SMTPSender{client: client, from: from}, nil
}

func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	m := mail.NewMsg()
	if err := m.From(s.from); err != nil {
		return fmt.Errorf("set from: %w", err)
	}
	if err := m.To(msg.To); err != nil {
		return fmt.Errorf("set to: %w", err)
	}
	m.Subject(msg.Subject)
	m.SetBodyString(mail.TypeTextHTML, msg.HTML)
	if err := s.client.DialAndSendWithContext(ctx, m); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	return nil
}
