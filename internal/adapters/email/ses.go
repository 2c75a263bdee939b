package email

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"

	"eventrsvp/internal/domain"
)

// SESConfig holds configuration for the AWS SES provider.
type SESConfig struct {
	Region             string
	AccessKeyID        string
	SecretAccessKey    string
	FromAddress        string
	FromName           string
	InsecureSkipVerify bool
}

type sesProvider struct {
	client      *ses.Client
	fromAddress string
	fromName    string
	logger      *slog.Logger
}

// NewSESProvider returns a Provider that delivers through AWS SES.
// SendRawEmail is used because the invite travels as a MIME attachment.
func NewSESProvider(cfg SESConfig, logger *slog.Logger) domain.Provider {
	if cfg.InsecureSkipVerify {
		logger.Warn("TLS certificate verification is disabled for SES. Use only in development.")
	}
	httpClient := &http.Client{
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{
				InsecureSkipVerify: cfg.InsecureSkipVerify,
				MinVersion:         tls.VersionTLS12,
			},
		},
	}
	awsCfg := aws.Config{
		Region: cfg.Region,
		Credentials: aws.NewCredentialsCache(
			credentials.NewStaticCredentialsProvider(
				cfg.AccessKeyID,
				cfg.SecretAccessKey,
				"",
			),
		),
		HTTPClient: httpClient,
	}
	return &sesProvider{
		client:      ses.NewFromConfig(awsCfg),
		fromAddress: cfg.FromAddress,
		fromName:    cfg.FromName,
		logger:      logger,
	}
}

func (p *sesProvider) Name() string { return "ses" }

func (p *sesProvider) Send(ctx context.Context, msg *domain.Message) error {
	var buf bytes.Buffer
	if _, err := buildMIME(p.fromAddress, p.fromName, msg).WriteTo(&buf); err != nil {
		return fmt.Errorf("build mime message: %w", err)
	}

	source := p.fromAddress
	if p.fromName != "" {
		source = fmt.Sprintf("%s <%s>", p.fromName, p.fromAddress)
	}
	input := &ses.SendRawEmailInput{
		Source:       aws.String(source),
		Destinations: []string{msg.To},
		RawMessage:   &types.RawMessage{Data: buf.Bytes()},
	}
	result, err := p.client.SendRawEmail(ctx, input)
	if err != nil {
		return fmt.Errorf("failed to send email via SES: %w", err)
	}
	p.logger.Info("email sent via SES", "to", msg.To, "message_id", aws.ToString(result.MessageId))
	return nil
}
