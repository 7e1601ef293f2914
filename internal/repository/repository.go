package repository

import (
	"context"
	"errors"

	"traffic_violation/internal/domain"
)

var ErrNotFound = errors.New("record not found")

// ViolationRepository is write-once: records are never updated or deleted.
type ViolationRepository interface {
	Create(ctx context.Context, record *domain.ViolationRecord) error
}

// OwnerRepository is read-only; owner data is maintained elsewhere.
type OwnerRepository interface {
	FindByPlate(ctx context.Context, licensePlate string) (*domain.VehicleOwner, error)
}
