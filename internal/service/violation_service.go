package service

import (
	"context"
	"encoding/json"
	"fmt"
	"math"

	"go.uber.org/zap"

	"traffic_violation/internal/domain"
)

// LabelDetector lists the objects and scene labels found in an image.
type LabelDetector interface {
	DetectLabels(ctx context.Context, image []byte, q domain.LabelQuery) ([]domain.ImageLabel, error)
}

// TextGenerator runs one prompt through a generative text model.
type TextGenerator interface {
	Generate(ctx context.Context, req domain.GenerationRequest) (string, error)
}

var labelQuery = domain.LabelQuery{MaxLabels: 20, MinConfidence: 70}

const narrativePrompt = `
You are an AI system trained to analyze traffic images for violations.

Here is the detailed information detected in the image:
%s

Based on this data, determine if any traffic violations are clearly visible. Focus on:
- Helmetless riding
- Triple riding
- Overloading
- Minor riding
- Mobile usage while riding
- Signal jumping

Return a **clean comma-separated list** of only the violations. If no violations are seen, return:
` + "`No violations detected`" + `
`

const classificationPrompt = `
You are a strict traffic rule classification AI.

From the following description:
"%s"

Extract and return only the violation label(s), such as:
- Helmetless riding
- Triple riding
- Signal breaking
- Mobile usage while driving

If multiple violations are mentioned, return a comma-separated list.

Do NOT include any explanation or extra text.
Only return the labels.
`

type labelSummary struct {
	Label      string   `json:"Label"`
	Confidence float64  `json:"Confidence"`
	Instances  int      `json:"Instances"`
	Parents    []string `json:"Parents"`
}

type imageSummary struct {
	DetectedObjects []labelSummary `json:"detected_objects"`
}

type ViolationService struct {
	labels    LabelDetector
	generator TextGenerator
	extractor *LabelExtractor
	logger    *zap.Logger
}

func NewViolationService(labels LabelDetector, generator TextGenerator, extractor *LabelExtractor, logger *zap.Logger) *ViolationService {
	return &ViolationService{
		labels:    labels,
		generator: generator,
		extractor: extractor,
		logger:    logger,
	}
}

// DescribeViolations turns the image labels into a violation narrative. The
// model output is returned as-is; it is not validated here.
func (s *ViolationService) DescribeViolations(ctx context.Context, image []byte) (string, error) {
	labels, err := s.labels.DetectLabels(ctx, image, labelQuery)
	if err != nil {
		return "", fmt.Errorf("describe violations: %w", err)
	}

	summary, err := summarizeLabels(labels)
	if err != nil {
		return "", fmt.Errorf("describe violations: %w", err)
	}

	narrative, err := s.generator.Generate(ctx, domain.GenerationRequest{
		Prompt:      fmt.Sprintf(narrativePrompt, summary),
		MaxGenLen:   300,
		Temperature: 0.3,
		TopP:        0.9,
	})
	if err != nil {
		return "", fmt.Errorf("describe violations: %w", err)
	}
	s.logger.Info("violation narrative generated", zap.Int("labels", len(labels)))
	return narrative, nil
}

// Classify maps a narrative onto the closed label vocabulary, falling back
// to domain.UnknownViolation.
func (s *ViolationService) Classify(ctx context.Context, narrative string) (string, error) {
	raw, err := s.generator.Generate(ctx, domain.GenerationRequest{
		Prompt:      fmt.Sprintf(classificationPrompt, narrative),
		MaxGenLen:   50,
		Temperature: 0.2,
		TopP:        0.9,
	})
	if err != nil {
		return "", fmt.Errorf("classify violation: %w", err)
	}

	label := s.extractor.Normalize(raw)
	if label == "" {
		s.logger.Info("classifier output matched no label", zap.String("raw", raw))
		return domain.UnknownViolation, nil
	}
	return label, nil
}

func summarizeLabels(labels []domain.ImageLabel) (string, error) {
	summary := imageSummary{DetectedObjects: make([]labelSummary, 0, len(labels))}
	for _, l := range labels {
		parents := l.Parents
		if parents == nil {
			parents = []string{}
		}
		summary.DetectedObjects = append(summary.DetectedObjects, labelSummary{
			Label:      l.Name,
			Confidence: math.Round(float64(l.Confidence)*100) / 100,
			Instances:  l.Instances,
			Parents:    parents,
		})
	}

	b, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal label summary: %w", err)
	}
	return string(b), nil
}
