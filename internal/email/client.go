package email

import (
	"context"

	"github.com/netspire/billing/internal/config"
	ierr "github.com/netspire/billing/internal/errors"
	"github.com/netspire/billing/internal/logger"
	"github.com/resend/resend-go/v2"
)

// Transport delivers outbound email. Implementations must not mutate the
// message.
type Transport interface {
	Send(ctx context.Context, msg *Message) (*SendResult, error)
	IsEnabled() bool
	FromAddress() string
	ReplyTo() string
}

type resendTransport struct {
	client      *resend.Client
	logger      *logger.Logger
	enabled     bool
	fromAddress string
	replyTo     string
}

// NewTransport creates a Resend-backed transport. A disabled configuration
// (or a missing API key) yields a transport that rejects sends; callers can
// check IsEnabled before building a message.
func NewTransport(cfg *config.Configuration, logger *logger.Logger) Transport {
	if !cfg.Email.Enabled || cfg.Email.APIKey == "" {
		return &resendTransport{
			logger:  logger,
			enabled: false,
		}
	}

	return &resendTransport{
		client:      resend.NewClient(cfg.Email.APIKey),
		logger:      logger,
		enabled:     true,
		fromAddress: cfg.Email.FromAddress,
		replyTo:     cfg.Email.ReplyTo,
	}
}

func (t *resendTransport) IsEnabled() bool {
	return t.enabled
}

func (t *resendTransport) FromAddress() string {
	return t.fromAddress
}

func (t *resendTransport) ReplyTo() string {
	return t.replyTo
}

func (t *resendTransport) Send(ctx context.Context, msg *Message) (*SendResult, error) {
	if !t.enabled {
		return nil, ierr.NewError("email transport is disabled").
			WithHint("Email delivery is not configured").
			Mark(ierr.ErrDispatch)
	}

	params := &resend.SendEmailRequest{
		From:    msg.From,
		To:      []string{msg.To},
		Subject: msg.Subject,
		Text:    msg.Text,
		Html:    msg.HTML,
	}
	if msg.ReplyTo != "" {
		params.ReplyTo = msg.ReplyTo
	}

	for _, att := range msg.Attachments {
		params.Attachments = append(params.Attachments, &resend.Attachment{
			Filename:    att.Filename,
			Content:     att.Content,
			Path:        att.URL,
			ContentType: att.ContentType,
		})
	}

	sent, err := t.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to send email").
			WithReportableDetails(map[string]any{
				"to":      msg.To,
				"subject": msg.Subject,
			}).
			Mark(ierr.ErrDispatch)
	}

	t.logger.Infow("email sent",
		"message_id", sent.Id,
		"to", msg.To,
		"subject", msg.Subject,
	)

	return &SendResult{MessageID: sent.Id}, nil
}
