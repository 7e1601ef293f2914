package dynamodb

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"

	"traffic_violation/internal/domain"
	"traffic_violation/internal/repository"
)

// API is the subset of the DynamoDB client used by the repositories.
type API interface {
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(ctx context.Context, in *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
}

type violationItem struct {
	ViolationID   string `dynamodbav:"violation_id"`
	LicensePlate  string `dynamodbav:"license_plate"`
	Description   string `dynamodbav:"description"`
	ViolationType string `dynamodbav:"violation_type"`
	Username      string `dynamodbav:"username"`
	Email         string `dynamodbav:"email,omitempty"`
	Timestamp     string `dynamodbav:"timestamp"`
	ImageKey      string `dynamodbav:"image_key,omitempty"`
}

type violationRepository struct {
	api   API
	table string
}

func NewViolationRepository(api API, table string) repository.ViolationRepository {
	return &violationRepository{api: api, table: table}
}

func (r *violationRepository) Create(ctx context.Context, record *domain.ViolationRecord) error {
	item, err := attributevalue.MarshalMap(violationItem{
		ViolationID:   record.ViolationID,
		LicensePlate:  record.LicensePlate,
		Description:   record.Description,
		ViolationType: record.ViolationType,
		Username:      record.Username,
		Email:         record.Email.ValueOrZero(),
		Timestamp:     record.Timestamp,
		ImageKey:      record.ImageKey.ValueOrZero(),
	})
	if err != nil {
		return fmt.Errorf("ViolationRepository.Create: marshal: %w", err)
	}

	_, err = r.api.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.table),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("ViolationRepository.Create: %w", err)
	}
	return nil
}
