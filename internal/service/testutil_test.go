package service

import (
	"context"
	"errors"
	"sync"

	"traffic_violation/internal/domain"
	"traffic_violation/internal/repository"
)

// --- fakes shared by the service tests ---

type fakeTextDetector struct {
	detections []domain.TextDetection
	err        error
	calls      int
}

func (f *fakeTextDetector) DetectText(context.Context, []byte) ([]domain.TextDetection, error) {
	f.calls++
	return f.detections, f.err
}

type fakeLabelDetector struct {
	labels []domain.ImageLabel
	query  domain.LabelQuery
	err    error
}

func (f *fakeLabelDetector) DetectLabels(_ context.Context, _ []byte, q domain.LabelQuery) ([]domain.ImageLabel, error) {
	f.query = q
	return f.labels, f.err
}

// fakeGenerator answers prompts in order.
type fakeGenerator struct {
	outputs  []string
	err      error
	requests []domain.GenerationRequest
}

func (f *fakeGenerator) Generate(_ context.Context, req domain.GenerationRequest) (string, error) {
	f.requests = append(f.requests, req)
	if f.err != nil {
		return "", f.err
	}
	if len(f.outputs) == 0 {
		return "", nil
	}
	out := f.outputs[0]
	f.outputs = f.outputs[1:]
	return out, nil
}

type fakeViolationRepo struct {
	mu      sync.Mutex
	records []*domain.ViolationRecord
	err     error
}

func (f *fakeViolationRepo) Create(_ context.Context, r *domain.ViolationRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.records = append(f.records, r)
	return nil
}

type fakeOwnerRepo struct {
	owners map[string]*domain.VehicleOwner
	err    error
}

func (f *fakeOwnerRepo) FindByPlate(_ context.Context, plate string) (*domain.VehicleOwner, error) {
	if f.err != nil {
		return nil, f.err
	}
	if o, ok := f.owners[plate]; ok {
		return o, nil
	}
	return nil, repository.ErrNotFound
}

type fakeNotifier struct {
	ok      bool
	notices []domain.ViolationNotice
}

func (f *fakeNotifier) SendViolationNotice(_ context.Context, n domain.ViolationNotice) bool {
	f.notices = append(f.notices, n)
	return f.ok
}

type fakeEvidence struct {
	key       string
	err       error
	calls     int
	deleted   []string
	deleteErr error
}

func (f *fakeEvidence) Put(context.Context, []byte) (string, error) {
	f.calls++
	return f.key, f.err
}

func (f *fakeEvidence) Delete(_ context.Context, key string) error {
	f.deleted = append(f.deleted, key)
	return f.deleteErr
}

type fakePublisher struct {
	events []domain.ViolationReportedEvent
	err    error
}

func (f *fakePublisher) PublishViolationReported(_ context.Context, e domain.ViolationReportedEvent) error {
	f.events = append(f.events, e)
	return f.err
}

var errTransport = errors.New("transport failure")
