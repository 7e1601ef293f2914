package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gopkg.in/guregu/null.v4"

	"traffic_violation/internal/domain"
	"traffic_violation/internal/repository"
)

// Asia/Kolkata has had no DST since 1945, so a fixed zone needs no tzdata.
var istLocation = time.FixedZone("IST", 5*60*60+30*60)

type RecordService struct {
	violations repository.ViolationRepository
	owners     repository.OwnerRepository
	logger     *zap.Logger

	now   func() time.Time
	newID func() string
}

func NewRecordService(violations repository.ViolationRepository, owners repository.OwnerRepository, logger *zap.Logger) *RecordService {
	return &RecordService{
		violations: violations,
		owners:     owners,
		logger:     logger,
		now:        time.Now,
		newID:      func() string { return uuid.NewString() },
	}
}

// StoreViolation assigns an id and IST timestamp and writes the record.
// Repeated reports of one plate produce independent records.
func (s *RecordService) StoreViolation(ctx context.Context, v domain.NewViolation) (*domain.ViolationRecord, error) {
	username := v.Username
	if username == "" {
		username = domain.UnknownUser
	}

	record := &domain.ViolationRecord{
		ViolationID:   s.newID(),
		LicensePlate:  v.LicensePlate,
		Description:   v.Description,
		ViolationType: v.ViolationType,
		Username:      username,
		Email:         null.NewString(v.Email, v.Email != ""),
		Timestamp:     s.now().In(istLocation).Format(domain.TimestampLayout),
		ImageKey:      null.NewString(v.ImageKey, v.ImageKey != ""),
	}

	if err := s.violations.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("store violation: %w", err)
	}
	s.logger.Info("violation stored",
		zap.String("violation_id", record.ViolationID),
		zap.String("license_plate", record.LicensePlate),
		zap.String("username", record.Username))
	return record, nil
}

// LookupOwner reports a missing owner as found=false, not as an error.
func (s *RecordService) LookupOwner(ctx context.Context, licensePlate string) (*domain.VehicleOwner, bool, error) {
	owner, err := s.owners.FindByPlate(ctx, licensePlate)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("lookup owner: %w", err)
	}
	return owner, true, nil
}
