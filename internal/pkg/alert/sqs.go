package alert

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/sony/gobreaker"
)

// SQSClient is the part of the SQS API the alerter needs.
type SQSClient interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

// SQSAlerter publishes alerts to an SQS queue behind a circuit breaker.
// Every alert is also written to the log so it is never lost when the queue is unreachable.
type SQSAlerter struct {
	client   SQSClient
	queueURL string
	cb       *gobreaker.CircuitBreaker
	log      *LogAlerter
}

func NewSQSAlerter(client SQSClient, queueURL string, logger *slog.Logger) *SQSAlerter {
	settings := gobreaker.Settings{
		Name:        "alert-queue",
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
	}

	return &SQSAlerter{
		client:   client,
		queueURL: queueURL,
		cb:       gobreaker.NewCircuitBreaker(settings),
		log:      NewLogAlerter(logger),
	}
}

func (s *SQSAlerter) Alert(ctx context.Context, a Alert) error {
	_ = s.log.Alert(ctx, a)

	body, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("failed to marshal alert: %w", err)
	}

	_, err = s.cb.Execute(func() (interface{}, error) {
		out, err := s.client.SendMessage(ctx, &sqs.SendMessageInput{
			QueueUrl:    aws.String(s.queueURL),
			MessageBody: aws.String(string(body)),
			MessageAttributes: map[string]types.MessageAttributeValue{
				"AlertType": {
					DataType:    aws.String("String"),
					StringValue: aws.String(a.Type),
				},
				"Severity": {
					DataType:    aws.String("String"),
					StringValue: aws.String(string(a.Severity)),
				},
			},
		})
		return out, err
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return fmt.Errorf("alert queue unavailable: %w", err)
		}
		return fmt.Errorf("failed to send alert to queue: %w", err)
	}
	return nil
}

// State exposes the breaker state, mostly for health output and tests.
func (s *SQSAlerter) State() gobreaker.State {
	return s.cb.State()
}

// NewSQSClient builds an SQS client. A non-empty endpoint routes calls to it
// with static test credentials, which is how LocalStack is reached in development.
func NewSQSClient(ctx context.Context, region, endpoint string) (*sqs.Client, error) {
	if endpoint != "" {
		cfg, err := awsConfig.LoadDefaultConfig(ctx,
			awsConfig.WithRegion(region),
			awsConfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider("test", "test", "")),
		)
		if err != nil {
			return nil, fmt.Errorf("load aws config: %w", err)
		}
		return sqs.NewFromConfig(cfg, func(o *sqs.Options) {
			o.BaseEndpoint = aws.String(endpoint)
		}), nil
	}

	cfg, err := awsConfig.LoadDefaultConfig(ctx, awsConfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return sqs.NewFromConfig(cfg), nil
}
