package notify

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
)

type sesAPI interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// SESSender sends email through Amazon SES v2.
type SESSender struct {
	client sesAPI
	sender string
}

func NewSESSender(cfg aws.Config, sender string) (*SESSender, error) {
	if sender == "" {
		return nil, fmt.Errorf("ses sender is required")
	}
	return newSESSender(sesv2.NewFromConfig(cfg), sender), nil
}

func newSESSender(client sesAPI, sender string) *SESSender {
	return &SESSender{client: client, sender: sender}
}

func (s *SESSender) Send(ctx context.Context, recipient, subject, htmlBody, textBody string) error {
	if recipient == "" {
		return fmt.Errorf("recipient is required")
	}

	body := &types.Body{}
	if htmlBody != "" {
		body.Html = &types.Content{Data: aws.String(htmlBody), Charset: aws.String("UTF-8")}
	}
	if textBody != "" {
		body.Text = &types.Content{Data: aws.String(textBody), Charset: aws.String("UTF-8")}
	}

	input := &sesv2.SendEmailInput{
		Destination: &types.Destination{
			ToAddresses: []string{recipient},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(subject), Charset: aws.String("UTF-8")},
				Body:    body,
			},
		},
		FromEmailAddress: aws.String(s.sender),
	}

	if _, err := s.client.SendEmail(ctx, input); err != nil {
		slog.Error("failed to send SES email",
			slog.String("recipient", recipient),
			slog.String("subject", subject),
			slog.Any("error", err))
		return fmt.Errorf("send ses email: %w", err)
	}
	return nil
}
