// Package notify sends operational mail for the intake pipeline: a
// heads-up per newly written lead and an alert for swallowed write
// failures. Delivery is fire-and-forget: a notification error is logged
// and never propagated into the request path.
package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"

	awsclient "sei-core/internal/common/aws"
	"sei-core/internal/common/config"
	"sei-core/internal/common/logger"
)

const sendTimeout = 10 * time.Second

type EmailNotifier struct {
	client *awsclient.SESClient
	cfg    config.NotificationConfig
	logger logger.Logger
}

// NewEmailNotifier returns nil when email notifications are disabled;
// callers treat a nil notifier as no-op.
func NewEmailNotifier(ctx context.Context, cfg config.NotificationConfig, log logger.Logger) (*EmailNotifier, error) {
	if !cfg.Email.Enabled {
		return nil, nil
	}
	client, err := awsclient.NewSESClient(ctx, cfg.AWS.Region)
	if err != nil {
		return nil, fmt.Errorf("init ses client: %w", err)
	}
	return &EmailNotifier{client: client, cfg: cfg, logger: log}, nil
}

// NotifyLeadCreated emails the ops address about a newly written lead.
func (n *EmailNotifier) NotifyLeadCreated(ctx context.Context, channel, leadID string) {
	subject := fmt.Sprintf("[sei-core] new lead via %s channel", channel)
	body := fmt.Sprintf(
		"A new lead was written to the backing store at %s.\n\nChannel: %s\nLead: %s",
		time.Now().UTC().Format(time.RFC3339), channel, leadID,
	)
	n.send(ctx, channel, subject, body)
}

// NotifyWriteFailure emails the ops address about a lead write that was
// swallowed on the public path or surfaced on the agent path.
func (n *EmailNotifier) NotifyWriteFailure(ctx context.Context, channel string, cause error) {
	subject := fmt.Sprintf("[sei-core] lead write failure on %s channel", channel)
	body := fmt.Sprintf(
		"A lead write to the backing store failed at %s.\n\nChannel: %s\nError: %v\n\nThe submission was acknowledged to the caller; the lead is lost unless resubmitted.",
		time.Now().UTC().Format(time.RFC3339), channel, cause,
	)
	n.send(ctx, channel, subject, body)
}

func (n *EmailNotifier) send(ctx context.Context, channel, subject, body string) {
	sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sendTimeout)
	defer cancel()

	_, err := n.client.SendEmail(sendCtx, &ses.SendEmailInput{
		Source: aws.String(n.cfg.Email.FromEmail),
		Destination: &types.Destination{
			ToAddresses: []string{n.cfg.Email.OpsEmail},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(subject)},
			Body: &types.Body{
				Text: &types.Content{Data: aws.String(body)},
			},
		},
	})
	if err != nil {
		n.logger.WithError(err).Warn("ops notification not sent", map[string]interface{}{
			"channel": channel,
			"subject": subject,
		})
	}
}
