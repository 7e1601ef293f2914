package postgresql

import (
	"context"
	"database/sql"
	"fmt"

	"traffic_violation/internal/domain"
	"traffic_violation/internal/repository"
)

type pgViolationRepository struct {
	db *sql.DB
}

func NewPgViolationRepository(db *sql.DB) repository.ViolationRepository {
	return &pgViolationRepository{db: db}
}

func (r *pgViolationRepository) Create(ctx context.Context, record *domain.ViolationRecord) error {
	query := `INSERT INTO violation_records
		(violation_id, license_plate, description, violation_type, username, email, reported_at, image_key)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.db.ExecContext(ctx, query,
		record.ViolationID, record.LicensePlate, record.Description, record.ViolationType,
		record.Username, record.Email, record.Timestamp, record.ImageKey,
	)
	if err != nil {
		return fmt.Errorf("ViolationRepository.Create: %w", err)
	}
	return nil
}
