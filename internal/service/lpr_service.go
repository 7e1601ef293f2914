package service

import (
	"context"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"go.uber.org/zap"

	"traffic_violation/internal/domain"
)

// TextDetector reads text lines out of an image.
type TextDetector interface {
	DetectText(ctx context.Context, image []byte) ([]domain.TextDetection, error)
}

const minPlateLength = 6

type LPRService struct {
	detector TextDetector
	logger   *zap.Logger
}

func NewLPRService(detector TextDetector, logger *zap.Logger) *LPRService {
	return &LPRService{detector: detector, logger: logger}
}

// DetectPlate returns the first full LINE detection that has a digit and at
// least six characters, in detector order, or domain.UnknownPlate.
func (s *LPRService) DetectPlate(ctx context.Context, image []byte) (string, error) {
	detections, err := s.detector.DetectText(ctx, image)
	if err != nil {
		return "", fmt.Errorf("detect plate: %w", err)
	}
	s.logger.Debug("text detections received", zap.Int("count", len(detections)))

	for _, d := range detections {
		if isPlateCandidate(d) {
			s.logger.Info("license plate detected", zap.String("plate", d.Text), zap.Float32("confidence", d.Confidence))
			return d.Text, nil
		}
	}

	s.logger.Info("no license plate candidate in image")
	return domain.UnknownPlate, nil
}

func isPlateCandidate(d domain.TextDetection) bool {
	return d.Type == domain.TextTypeLine &&
		utf8.RuneCountInString(d.Text) >= minPlateLength &&
		strings.IndexFunc(d.Text, unicode.IsDigit) >= 0
}
