package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
)

type snsAPI interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// SNSSender sends transactional SMS through Amazon SNS. The sender is either
// an E.164 origination number or an alphanumeric sender id.
type SNSSender struct {
	client snsAPI
	sender string
}

func NewSNSSender(cfg aws.Config, sender string) (*SNSSender, error) {
	if sender == "" {
		return nil, fmt.Errorf("sns sender id is required")
	}
	return newSNSSender(sns.NewFromConfig(cfg), sender), nil
}

func newSNSSender(client snsAPI, sender string) *SNSSender {
	return &SNSSender{client: client, sender: sender}
}

func (s *SNSSender) SendSMS(ctx context.Context, phone, message string) error {
	if phone == "" {
		return fmt.Errorf("phone number is required")
	}

	senderAttribute := "AWS.SNS.SMS.SenderID"
	if strings.HasPrefix(s.sender, "+") {
		senderAttribute = "AWS.MM.SMS.OriginationNumber"
	}

	input := &sns.PublishInput{
		PhoneNumber: aws.String(phone),
		Message:     aws.String(message),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"AWS.SNS.SMS.SMSType": {
				DataType:    aws.String("String"),
				StringValue: aws.String("Transactional"),
			},
			senderAttribute: {
				DataType:    aws.String("String"),
				StringValue: aws.String(s.sender),
			},
		},
	}

	if _, err := s.client.Publish(ctx, input); err != nil {
		slog.Error("failed to send SNS SMS", slog.String("phone", maskPhone(phone)), slog.Any("error", err))
		return fmt.Errorf("send sns sms: %w", err)
	}
	return nil
}

// maskPhone keeps the last four digits for log lines.
func maskPhone(phone string) string {
	if len(phone) <= 4 {
		return "****"
	}
	return strings.Repeat("*", len(phone)-4) + phone[len(phone)-4:]
}
