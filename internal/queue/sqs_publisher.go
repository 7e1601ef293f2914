package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"

	"traffic_violation/internal/domain"
)

// SQSAPI is the subset of the SQS client used by the publisher.
type SQSAPI interface {
	SendMessage(ctx context.Context, in *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

// SQSPublisher announces stored violations to downstream consumers
// (dashboards, enforcement back offices).
type SQSPublisher struct {
	sqsClient SQSAPI
	queueURL  string
}

func NewSQSPublisher(client SQSAPI, queueURL string) *SQSPublisher {
	return &SQSPublisher{sqsClient: client, queueURL: queueURL}
}

func (p *SQSPublisher) PublishViolationReported(ctx context.Context, event domain.ViolationReportedEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("sqs: marshal event: %w", err)
	}

	_, err = p.sqsClient.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(p.queueURL),
		MessageBody: aws.String(string(body)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"event_type": {DataType: aws.String("String"), StringValue: aws.String("violation_reported")},
		},
	})
	if err != nil {
		return fmt.Errorf("sqs SendMessage: %w", err)
	}
	return nil
}
