package dynamodb

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"traffic_violation/internal/domain"
	"traffic_violation/internal/repository"
)

type ownerRepository struct {
	api   API
	table string
}

func NewOwnerRepository(api API, table string) repository.OwnerRepository {
	return &ownerRepository{api: api, table: table}
}

func (r *ownerRepository) FindByPlate(ctx context.Context, licensePlate string) (*domain.VehicleOwner, error) {
	out, err := r.api.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.table),
		Key: map[string]types.AttributeValue{
			"license_plate": &types.AttributeValueMemberS{Value: licensePlate},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("OwnerRepository.FindByPlate: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, repository.ErrNotFound
	}

	return &domain.VehicleOwner{
		LicensePlate:  licensePlate,
		ContactNumber: scalar(out.Item["contact_number"]),
		Email:         scalar(out.Item["email"]),
		Name:          scalar(out.Item["name"]),
	}, nil
}

// scalar renders string and number attributes as text; owner tables are
// maintained by hand and store contact_number either way.
func scalar(av types.AttributeValue) string {
	switch v := av.(type) {
	case *types.AttributeValueMemberS:
		return v.Value
	case *types.AttributeValueMemberN:
		return v.Value
	default:
		return ""
	}
}
