package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"traffic_violation/internal/api"
	"traffic_violation/internal/api/handler"
	"traffic_violation/internal/api/middleware"
	"traffic_violation/internal/config"
	"traffic_violation/internal/identity"
	"traffic_violation/internal/llm"
	"traffic_violation/internal/logging"
	"traffic_violation/internal/notify"
	"traffic_violation/internal/queue"
	"traffic_violation/internal/repository"
	ddbrepo "traffic_violation/internal/repository/dynamodb"
	"traffic_violation/internal/repository/postgresql"
	"traffic_violation/internal/service"
	"traffic_violation/internal/storage"
	"traffic_violation/internal/vision"
)

func newLogger(lc fx.Lifecycle, cfg *config.Config) (*zap.Logger, error) {
	logger, err := logging.NewLogger(cfg.ServiceName, cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			_ = logger.Sync()
			return nil
		},
	})
	return logger, nil
}

func newAWSConfig(cfg *config.Config, logger *zap.Logger) (aws.Config, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), awsconfig.WithRegion(cfg.AWSRegion))
	if err != nil {
		return aws.Config{}, err
	}
	logger.Info("aws sdk config loaded", zap.String("region", cfg.AWSRegion))
	return awsCfg, nil
}

// newRepositories selects the record store backend.
func newRepositories(lc fx.Lifecycle, cfg *config.Config, awsCfg aws.Config, logger *zap.Logger) (repository.ViolationRepository, repository.OwnerRepository, error) {
	if cfg.StoreBackend == config.StoreBackendPostgres {
		db, err := postgresql.NewDB(cfg.PostgresDSN())
		if err != nil {
			return nil, nil, err
		}
		lc.Append(fx.Hook{
			OnStop: func(context.Context) error {
				logger.Info("closing database connection")
				return db.Close()
			},
		})
		logger.Info("record store: postgres", zap.String("host", cfg.DBHost), zap.String("database", cfg.DBName))
		return postgresql.NewPgViolationRepository(db), postgresql.NewPgOwnerRepository(db), nil
	}

	client := dynamodb.NewFromConfig(awsCfg)
	logger.Info("record store: dynamodb",
		zap.String("violations_table", cfg.ViolationsTable),
		zap.String("owners_table", cfg.OwnersTable))
	return ddbrepo.NewViolationRepository(client, cfg.ViolationsTable), ddbrepo.NewOwnerRepository(client, cfg.OwnersTable), nil
}

func newIdentityProvider(cfg *config.Config, awsCfg aws.Config) service.IdentityProvider {
	client := cognitoidentityprovider.NewFromConfig(awsCfg)
	return identity.NewCognitoProvider(client, cfg.CognitoUserPoolID, cfg.CognitoClientID, cfg.CognitoClientSecret)
}

func newAuthService(provider service.IdentityProvider, cfg *config.Config, logger *zap.Logger) *service.AuthService {
	return service.NewAuthService(provider, logger, cfg.JWTSecret, cfg.JWTExpirationHours)
}

func newVisionClient(awsCfg aws.Config) *vision.RekognitionClient {
	return vision.NewRekognitionClient(rekognition.NewFromConfig(awsCfg))
}

func newGenerator(cfg *config.Config, awsCfg aws.Config) *llm.BedrockGenerator {
	return llm.NewBedrockGenerator(bedrockruntime.NewFromConfig(awsCfg), cfg.BedrockModelID)
}

func newLPRService(rek *vision.RekognitionClient, logger *zap.Logger) *service.LPRService {
	return service.NewLPRService(rek, logger)
}

func newViolationService(rek *vision.RekognitionClient, gen *llm.BedrockGenerator, extractor *service.LabelExtractor, logger *zap.Logger) *service.ViolationService {
	return service.NewViolationService(rek, gen, extractor, logger)
}

func newNotifier(cfg *config.Config, logger *zap.Logger) (service.Notifier, error) {
	client, err := notify.NewSMTPClient(notify.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUser,
		Password: cfg.SMTPPassword,
	})
	if err != nil {
		return nil, err
	}
	if cfg.SMTPUser == "" {
		logger.Warn("GMAIL_USER is not set, violation notices will fail to send")
	}
	return notify.NewMailer(client, cfg.SMTPUser, logger), nil
}

// newEvidenceStore returns nil when EVIDENCE_BUCKET is unset.
func newEvidenceStore(cfg *config.Config, awsCfg aws.Config, logger *zap.Logger) service.EvidenceStore {
	if cfg.EvidenceBucket == "" {
		logger.Info("evidence archiving disabled")
		return nil
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
			o.UsePathStyle = true
		}
		if cfg.S3AccessKeyID != "" {
			o.Credentials = credentials.NewStaticCredentialsProvider(cfg.S3AccessKeyID, cfg.S3SecretAccessKey, "")
		}
	})
	return storage.NewEvidenceStore(client, cfg.EvidenceBucket)
}

// newEventPublisher returns nil when REPORT_EVENTS_QUEUE_URL is unset.
func newEventPublisher(cfg *config.Config, awsCfg aws.Config, logger *zap.Logger) service.EventPublisher {
	if cfg.ReportEventsQueue == "" {
		logger.Info("report events disabled")
		return nil
	}
	return queue.NewSQSPublisher(sqs.NewFromConfig(awsCfg), cfg.ReportEventsQueue)
}

func newRouter(cfg *config.Config, as *service.AuthService, rs *service.ReportService,
	authMw *middleware.AuthMiddleware, sessions *handler.SessionManager, logger *zap.Logger) *gin.Engine {
	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	return api.SetupRouter(as, rs, authMw, sessions, cfg.MaxUploadBytes(), logger)
}

func startServer(lc fx.Lifecycle, cfg *config.Config, router *gin.Engine, sessions *handler.SessionManager, logger *zap.Logger) {
	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			ln, err := net.Listen("tcp", srv.Addr)
			if err != nil {
				return err
			}
			go func() {
				if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Error("http server stopped", zap.Error(err))
				}
			}()
			logger.Info("server listening", zap.String("port", cfg.ServerPort))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("shutting down server")
			// hijacked websocket connections are not covered by Shutdown
			sessions.CloseAll()
			return srv.Shutdown(ctx)
		},
	})
}
