// Package notify delivers league notifications over email and SMS.
package notify

import "context"

// EmailSender delivers a single email with HTML and plain-text parts.
type EmailSender interface {
	Send(ctx context.Context, recipient, subject, htmlBody, textBody string) error
}

// SMSSender delivers a single text message to an E.164 phone number.
type SMSSender interface {
	SendSMS(ctx context.Context, phone, message string) error
}
