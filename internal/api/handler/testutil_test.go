package handler

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"traffic_violation/internal/api/middleware"
	"traffic_violation/internal/domain"
	"traffic_violation/internal/identity"
	"traffic_violation/internal/repository"
	"traffic_violation/internal/service"
)

// pngImage passes content sniffing as image/png.
var pngImage = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR-test-image")

const testMaxUpload = 1 << 20

type stubIdentity struct {
	mu        sync.Mutex
	passwords map[string]string
	confirmed map[string]bool
}

func newStubIdentity() *stubIdentity {
	return &stubIdentity{passwords: map[string]string{}, confirmed: map[string]bool{}}
}

func (s *stubIdentity) SignUp(_ context.Context, email, password, _ string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.passwords[email]; ok {
		return &identity.Error{Kind: identity.ErrAccountExists, Message: "User already exists"}
	}
	s.passwords[email] = password
	return nil
}

func (s *stubIdentity) ConfirmSignUp(_ context.Context, email, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.confirmed[email] {
		return &identity.Error{Kind: identity.ErrAlreadyConfirmed, Message: "Current status is CONFIRMED"}
	}
	if code != "123456" {
		return &identity.Error{Kind: identity.ErrCodeMismatch, Message: "Invalid verification code provided, please try again."}
	}
	s.confirmed[email] = true
	return nil
}

func (s *stubIdentity) Authenticate(_ context.Context, email, password string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if pw, ok := s.passwords[email]; !ok || pw != password || !s.confirmed[email] {
		return "", &identity.Error{Kind: identity.ErrNotAuthorized, Message: "Incorrect username or password."}
	}
	return "access", nil
}

func (s *stubIdentity) GetUserAttributes(context.Context, string) ([]domain.UserAttribute, error) {
	return []domain.UserAttribute{{Name: "name", Value: "Alice"}}, nil
}

type stubPipeline struct{}

func (stubPipeline) DetectText(context.Context, []byte) ([]domain.TextDetection, error) {
	return []domain.TextDetection{{Text: "MH12AB1234", Type: domain.TextTypeLine}}, nil
}

func (stubPipeline) DetectLabels(context.Context, []byte, domain.LabelQuery) ([]domain.ImageLabel, error) {
	return []domain.ImageLabel{{Name: "Motorcycle", Confidence: 95}}, nil
}

// Generate answers the narrative prompt and the classification prompt.
func (stubPipeline) Generate(_ context.Context, req domain.GenerationRequest) (string, error) {
	if req.MaxGenLen <= 50 {
		return "triple riding", nil
	}
	return "Three people on one motorcycle.", nil
}

type stubRecords struct {
	mu      sync.Mutex
	records []*domain.ViolationRecord
}

func (s *stubRecords) Create(_ context.Context, r *domain.ViolationRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, r)
	return nil
}

func (s *stubRecords) FindByPlate(context.Context, string) (*domain.VehicleOwner, error) {
	return nil, repository.ErrNotFound
}

type stubNotifier struct{}

func (stubNotifier) SendViolationNotice(context.Context, domain.ViolationNotice) bool { return true }

type testEnv struct {
	auth     *service.AuthService
	reports  *service.ReportService
	identity *stubIdentity
	records  *stubRecords
	sessions *SessionManager
	engine   *gin.Engine
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := zap.NewNop()

	idp := newStubIdentity()
	records := &stubRecords{}
	auth := service.NewAuthService(idp, logger, "test-secret", time.Hour)
	reports := service.NewReportService(
		service.NewLPRService(stubPipeline{}, logger),
		service.NewViolationService(stubPipeline{}, stubPipeline{}, service.NewLabelExtractor(), logger),
		service.NewRecordService(records, records, logger),
		stubNotifier{},
		nil,
		nil,
		logger,
	)
	sessions := NewSessionManager(logger)

	r := gin.New()
	authH := NewAuthHandler(auth)
	r.POST("/auth/register", authH.Register)
	r.POST("/auth/confirm", authH.Confirm)
	r.POST("/auth/login", authH.Login)
	r.GET("/healthz", NewHealthHandler(sessions).Check)
	r.GET("/ws/session", NewWebSocketHandler(auth, reports, sessions, testMaxUpload, logger).HandleWebSocket)
	v1 := r.Group("/api/v1", middleware.NewAuthMiddleware(auth).Authenticate())
	v1.POST("/reports", NewReportHandler(reports, testMaxUpload, logger).Create)

	return &testEnv{auth: auth, reports: reports, identity: idp, records: records, sessions: sessions, engine: r}
}

// confirmedUser registers and confirms a@x.com with password "pw".
func (e *testEnv) confirmedUser(t *testing.T) {
	t.Helper()
	e.identity.passwords["a@x.com"] = "pw"
	e.identity.confirmed["a@x.com"] = true
}

func (e *testEnv) token(t *testing.T) string {
	t.Helper()
	e.confirmedUser(t)
	resp, err := e.auth.Login(context.Background(), domain.LoginUserDTO{Email: "a@x.com", Password: "pw"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	return resp.Token
}

func (s *stubRecords) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}
