package email

import (
	"context"

	"github.com/resendlabs/resend-go"
	"go.uber.org/zap"
)

type ResendSender struct {
	client   *resend.Client
	from     string
	fromName string
	log      *zap.Logger
}

func NewResendSender(apiKey, from, fromName string, log *zap.Logger) *ResendSender {
	return &ResendSender{
		client:   resend.NewClient(apiKey),
		from:     from,
		fromName: fromName,
		log:      log,
	}
}

func (s *ResendSender) Send(ctx context.Context, msg Message) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	params := &resend.SendEmailRequest{
		From:    s.fromName + " <" + s.from + ">",
		To:      []string{msg.To},
		Subject: msg.Subject,
		Html:    msg.HTML,
		Text:    msg.Text,
	}

	resp, err := s.client.Emails.Send(params)
	if err != nil {
		s.log.Warn("Failed to send email", zap.String("to", msg.To), zap.Error(err))
		return "", err
	}

	s.log.Info("Sent email", zap.String("to", msg.To), zap.String("message_id", resp.Id))
	return resp.Id, nil
}
