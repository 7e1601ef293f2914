package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"traffic_violation/internal/domain"
)

var ErrUnauthenticated = errors.New("session is not authenticated")

const (
	msgStored       = "Violation record saved."
	msgNoOwner      = "No owner info found for this license plate."
	msgNoticeSent   = "Email notification sent to the vehicle owner."
	msgNoticeFailed = "Failed to send email notification."
	notFound        = "Not Found"
)

type Notifier interface {
	SendViolationNotice(ctx context.Context, notice domain.ViolationNotice) bool
}

// EvidenceStore archives the reported image and returns its key.
type EvidenceStore interface {
	Put(ctx context.Context, image []byte) (string, error)
	Delete(ctx context.Context, key string) error
}

type EventPublisher interface {
	PublishViolationReported(ctx context.Context, event domain.ViolationReportedEvent) error
}

// ReportService runs one report end to end for an authenticated session.
type ReportService struct {
	plates     *LPRService
	violations *ViolationService
	records    *RecordService
	notifier   Notifier
	evidence   EvidenceStore  // nil disables archiving
	events     EventPublisher // nil disables publishing
	logger     *zap.Logger
}

func NewReportService(
	plates *LPRService,
	violations *ViolationService,
	records *RecordService,
	notifier Notifier,
	evidence EvidenceStore,
	events EventPublisher,
	logger *zap.Logger,
) *ReportService {
	return &ReportService{
		plates:     plates,
		violations: violations,
		records:    records,
		notifier:   notifier,
		evidence:   evidence,
		events:     events,
		logger:     logger,
	}
}

// Report processes one image. Each stage result is passed to emit as soon as
// it is known. A pipeline or storage failure emits an error event and aborts
// before anything is persisted past that point; owner, notice, evidence and
// event problems are only warnings.
func (s *ReportService) Report(ctx context.Context, session *domain.Session, image []byte, emit func(domain.ReportEvent)) (*domain.ReportOutcome, error) {
	if session == nil || !session.Authenticated {
		return nil, ErrUnauthenticated
	}
	if emit == nil {
		emit = func(domain.ReportEvent) {}
	}
	log := s.logger.With(zap.String("username", session.Username))
	outcome := &domain.ReportOutcome{}

	fail := func(stage domain.ReportStage, err error) (*domain.ReportOutcome, error) {
		log.Error("report aborted", zap.String("stage", string(stage)), zap.Error(err))
		emit(domain.ReportEvent{Stage: stage, Level: domain.LevelError, Message: err.Error()})
		return nil, fmt.Errorf("report %s: %w", stage, err)
	}
	warn := func(stage domain.ReportStage, msg string) {
		outcome.Warnings = append(outcome.Warnings, msg)
		emit(domain.ReportEvent{Stage: stage, Level: domain.LevelWarning, Message: msg})
	}

	plate, err := s.plates.DetectPlate(ctx, image)
	if err != nil {
		return fail(domain.StagePlate, err)
	}
	emit(domain.ReportEvent{Stage: domain.StagePlate, Level: domain.LevelInfo, Message: "Detected License Plate", Value: plate})

	narrative, err := s.violations.DescribeViolations(ctx, image)
	if err != nil {
		return fail(domain.StageDescription, err)
	}
	emit(domain.ReportEvent{Stage: domain.StageDescription, Level: domain.LevelInfo, Message: "Description Generated", Value: narrative})

	label, err := s.violations.Classify(ctx, narrative)
	if err != nil {
		return fail(domain.StageClassification, err)
	}
	emit(domain.ReportEvent{Stage: domain.StageClassification, Level: domain.LevelInfo, Message: "Violation Type", Value: label})

	var imageKey string
	if s.evidence != nil {
		imageKey, err = s.evidence.Put(ctx, image)
		if err != nil {
			log.Warn("evidence archive failed", zap.Error(err))
			warn(domain.StageEvidence, "Evidence image could not be archived.")
		}
	}

	record, err := s.records.StoreViolation(ctx, domain.NewViolation{
		LicensePlate:  plate,
		Description:   narrative,
		ViolationType: label,
		Username:      session.Username,
		Email:         session.Email,
		ImageKey:      imageKey,
	})
	if err != nil {
		s.discardEvidence(ctx, log, imageKey)
		return fail(domain.StageStored, err)
	}
	outcome.Record = record
	emit(domain.ReportEvent{Stage: domain.StageStored, Level: domain.LevelSuccess, Message: msgStored, Value: record.ViolationID})

	if s.events != nil {
		if err := s.events.PublishViolationReported(ctx, domain.ViolationReportedEvent{
			ViolationID:   record.ViolationID,
			LicensePlate:  record.LicensePlate,
			ViolationType: record.ViolationType,
			ReportedBy:    record.Username,
			Timestamp:     record.Timestamp,
		}); err != nil {
			log.Warn("violation event not published", zap.String("violation_id", record.ViolationID), zap.Error(err))
			warn(domain.StageStored, "Violation event could not be published.")
		}
	}

	owner, found, err := s.records.LookupOwner(ctx, plate)
	if err != nil {
		return fail(domain.StageOwner, err)
	}
	if !found {
		warn(domain.StageOwner, msgNoOwner)
		return outcome, nil
	}
	outcome.Owner = owner
	emit(domain.ReportEvent{
		Stage:   domain.StageOwner,
		Level:   domain.LevelInfo,
		Message: fmt.Sprintf("Owner Details: Phone: %s, Email: %s", orNotFound(owner.ContactNumber), orNotFound(owner.Email)),
		Owner:   owner,
	})

	outcome.NoticeSent = s.notifier.SendViolationNotice(ctx, domain.ViolationNotice{
		To:            owner.Email,
		LicensePlate:  plate,
		ViolationType: label,
		Description:   narrative,
	})
	if outcome.NoticeSent {
		emit(domain.ReportEvent{Stage: domain.StageNotice, Level: domain.LevelSuccess, Message: msgNoticeSent})
	} else {
		warn(domain.StageNotice, msgNoticeFailed)
	}

	log.Info("report completed",
		zap.String("violation_id", record.ViolationID),
		zap.Bool("notice_sent", outcome.NoticeSent))
	return outcome, nil
}

// discardEvidence removes an archived image that no record points to.
func (s *ReportService) discardEvidence(ctx context.Context, log *zap.Logger, key string) {
	if s.evidence == nil || key == "" {
		return
	}
	if err := s.evidence.Delete(ctx, key); err != nil {
		log.Warn("orphaned evidence not removed", zap.String("image_key", key), zap.Error(err))
	}
}

func orNotFound(v string) string {
	if v == "" {
		return notFound
	}
	return v
}
