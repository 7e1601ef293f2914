package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"traffic_violation/internal/domain"
)

func TestStoreViolation_AssignsIDAndISTTimestamp(t *testing.T) {
	repo := &fakeViolationRepo{}
	s := NewRecordService(repo, &fakeOwnerRepo{}, zap.NewNop())
	s.now = func() time.Time { return time.Date(2025, 1, 1, 18, 45, 30, 0, time.UTC) }

	rec, err := s.StoreViolation(context.Background(), domain.NewViolation{
		LicensePlate:  "MH12AB1234",
		Description:   "Helmetless riding",
		ViolationType: "Helmetless Riding",
		Username:      "Alice",
		Email:         "a@x.com",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, rec.ViolationID)
	assert.Equal(t, "2025-01-02 00:15:30", rec.Timestamp)
	assert.Equal(t, "Helmetless riding", rec.Description)
	assert.Equal(t, "Helmetless Riding", rec.ViolationType)
	assert.Equal(t, "a@x.com", rec.Email.String)
	assert.False(t, rec.ImageKey.Valid)
	require.Len(t, repo.records, 1)
	assert.Same(t, rec, repo.records[0])
}

func TestStoreViolation_UniqueIDsForIdenticalInput(t *testing.T) {
	repo := &fakeViolationRepo{}
	s := NewRecordService(repo, &fakeOwnerRepo{}, zap.NewNop())
	in := domain.NewViolation{LicensePlate: "MH12AB1234", ViolationType: "Triple Riding", Username: "Alice"}

	first, err := s.StoreViolation(context.Background(), in)
	require.NoError(t, err)
	second, err := s.StoreViolation(context.Background(), in)
	require.NoError(t, err)

	assert.NotEqual(t, first.ViolationID, second.ViolationID)
	assert.Len(t, repo.records, 2)
}

func TestStoreViolation_Defaults(t *testing.T) {
	s := NewRecordService(&fakeViolationRepo{}, &fakeOwnerRepo{}, zap.NewNop())

	rec, err := s.StoreViolation(context.Background(), domain.NewViolation{LicensePlate: domain.UnknownPlate})
	require.NoError(t, err)
	assert.Equal(t, domain.UnknownUser, rec.Username)
	assert.False(t, rec.Email.Valid)
}

func TestStoreViolation_RepositoryError(t *testing.T) {
	s := NewRecordService(&fakeViolationRepo{err: errTransport}, &fakeOwnerRepo{}, zap.NewNop())

	_, err := s.StoreViolation(context.Background(), domain.NewViolation{})
	assert.ErrorIs(t, err, errTransport)
}

func TestLookupOwner(t *testing.T) {
	owner := &domain.VehicleOwner{LicensePlate: "MH12AB1234", Email: "owner@example.com"}
	s := NewRecordService(&fakeViolationRepo{}, &fakeOwnerRepo{owners: map[string]*domain.VehicleOwner{"MH12AB1234": owner}}, zap.NewNop())

	got, found, err := s.LookupOwner(context.Background(), "MH12AB1234")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, owner, got)

	got, found, err = s.LookupOwner(context.Background(), domain.UnknownPlate)
	require.NoError(t, err, "a miss is not an error")
	assert.False(t, found)
	assert.Nil(t, got)
}

func TestLookupOwner_TransportError(t *testing.T) {
	s := NewRecordService(&fakeViolationRepo{}, &fakeOwnerRepo{err: errTransport}, zap.NewNop())

	_, found, err := s.LookupOwner(context.Background(), "MH12AB1234")
	assert.False(t, found)
	assert.ErrorIs(t, err, errTransport)
}
