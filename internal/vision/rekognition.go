package vision

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/rekognition/types"

	"traffic_violation/internal/domain"
)

// RekognitionAPI is the subset of the Rekognition client used here.
type RekognitionAPI interface {
	DetectText(ctx context.Context, in *rekognition.DetectTextInput, optFns ...func(*rekognition.Options)) (*rekognition.DetectTextOutput, error)
	DetectLabels(ctx context.Context, in *rekognition.DetectLabelsInput, optFns ...func(*rekognition.Options)) (*rekognition.DetectLabelsOutput, error)
}

type RekognitionClient struct {
	api RekognitionAPI
}

func NewRekognitionClient(api RekognitionAPI) *RekognitionClient {
	return &RekognitionClient{api: api}
}

// DetectText returns every text detection in Rekognition's native order.
func (c *RekognitionClient) DetectText(ctx context.Context, image []byte) ([]domain.TextDetection, error) {
	out, err := c.api.DetectText(ctx, &rekognition.DetectTextInput{
		Image: &types.Image{Bytes: image},
	})
	if err != nil {
		return nil, fmt.Errorf("rekognition DetectText: %w", err)
	}

	detections := make([]domain.TextDetection, 0, len(out.TextDetections))
	for _, td := range out.TextDetections {
		detections = append(detections, domain.TextDetection{
			Text:       aws.ToString(td.DetectedText),
			Type:       domain.TextType(td.Type),
			Confidence: aws.ToFloat32(td.Confidence),
		})
	}
	return detections, nil
}

// DetectLabels returns general-purpose labels only.
func (c *RekognitionClient) DetectLabels(ctx context.Context, image []byte, q domain.LabelQuery) ([]domain.ImageLabel, error) {
	out, err := c.api.DetectLabels(ctx, &rekognition.DetectLabelsInput{
		Image:         &types.Image{Bytes: image},
		MaxLabels:     aws.Int32(q.MaxLabels),
		MinConfidence: aws.Float32(q.MinConfidence),
		Features:      []types.DetectLabelsFeatureName{types.DetectLabelsFeatureNameGeneralLabels},
	})
	if err != nil {
		return nil, fmt.Errorf("rekognition DetectLabels: %w", err)
	}

	labels := make([]domain.ImageLabel, 0, len(out.Labels))
	for _, l := range out.Labels {
		parents := make([]string, 0, len(l.Parents))
		for _, p := range l.Parents {
			parents = append(parents, aws.ToString(p.Name))
		}
		labels = append(labels, domain.ImageLabel{
			Name:       aws.ToString(l.Name),
			Confidence: aws.ToFloat32(l.Confidence),
			Instances:  len(l.Instances),
			Parents:    parents,
		})
	}
	return labels, nil
}
