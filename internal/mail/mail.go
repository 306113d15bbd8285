// Package mail is the outbound notification sink. Delivery is best effort:
// failures are logged and swallowed so a mail outage can never block a
// domain operation.
package mail

import (
	"fmt"
	"log"
	"sync"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

// Sender delivers one message to one recipient.
type Sender interface {
	Send(to, subject, body string)
}

// SendGridSender delivers through the SendGrid v3 API.
type SendGridSender struct {
	client  *sendgrid.Client
	from    *sgmail.Email
	appName string
}

func NewSendGridSender(apiKey, appName, fromEmail string) *SendGridSender {
	return &SendGridSender{
		client:  sendgrid.NewSendClient(apiKey),
		from:    sgmail.NewEmail(appName, fromEmail),
		appName: appName,
	}
}

func (s *SendGridSender) Send(to, subject, body string) {
	msg := sgmail.NewSingleEmail(s.from, subject, sgmail.NewEmail("", to), body, "")
	resp, err := s.client.Send(msg)
	if err != nil {
		log.Printf("❌ Failed to send email to %s: %v", to, err)
		return
	}
	if resp.StatusCode >= 300 {
		log.Printf("❌ SendGrid rejected email to %s: status %d", to, resp.StatusCode)
	}
}

// ConsoleSender writes messages to the log. Used when no API key is
// configured, and by tests to assert on what was sent.
type ConsoleSender struct {
	mu   sync.Mutex
	sent []Message
}

type Message struct {
	To      string
	Subject string
	Body    string
}

func NewConsoleSender() *ConsoleSender {
	return &ConsoleSender{}
}

func (s *ConsoleSender) Send(to, subject, body string) {
	log.Printf("📧 [console mail] to=%s subject=%q\n%s", to, subject, body)
	s.mu.Lock()
	s.sent = append(s.sent, Message{To: to, Subject: subject, Body: body})
	s.mu.Unlock()
}

// Sent returns a copy of everything delivered so far.
func (s *ConsoleSender) Sent() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Message, len(s.sent))
	copy(out, s.sent)
	return out
}

// OTPBody is the verification mail sent at signup.
func OTPBody(otp int) (subject, body string) {
	return "Your OTP for BRACU Routine", fmt.Sprintf("Your OTP is %d. It will expire in 10 minutes.", otp)
}
