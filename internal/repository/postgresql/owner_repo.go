package postgresql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"gopkg.in/guregu/null.v4"

	"traffic_violation/internal/domain"
	"traffic_violation/internal/repository"
)

type pgOwnerRepository struct {
	db *sql.DB
}

func NewPgOwnerRepository(db *sql.DB) repository.OwnerRepository {
	return &pgOwnerRepository{db: db}
}

func (r *pgOwnerRepository) FindByPlate(ctx context.Context, licensePlate string) (*domain.VehicleOwner, error) {
	query := `SELECT license_plate, contact_number, email, name FROM vehicle_owners WHERE license_plate = $1`

	var contact, email, name null.String
	owner := &domain.VehicleOwner{}
	err := r.db.QueryRowContext(ctx, query, licensePlate).Scan(&owner.LicensePlate, &contact, &email, &name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("OwnerRepository.FindByPlate: %w", err)
	}
	owner.ContactNumber = contact.ValueOrZero()
	owner.Email = email.ValueOrZero()
	owner.Name = name.ValueOrZero()
	return owner, nil
}
