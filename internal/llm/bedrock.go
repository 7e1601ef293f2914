package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"

	"traffic_violation/internal/domain"
)

// BedrockAPI is the subset of the Bedrock runtime client used here.
type BedrockAPI interface {
	InvokeModel(ctx context.Context, in *bedrockruntime.InvokeModelInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error)
}

// Request and response bodies of the Llama text-generation models.
type generationBody struct {
	Prompt      string  `json:"prompt"`
	MaxGenLen   int     `json:"max_gen_len"`
	Temperature float64 `json:"temperature"`
	TopP        float64 `json:"top_p"`
}

type generationResult struct {
	Generation string `json:"generation"`
}

type BedrockGenerator struct {
	api     BedrockAPI
	modelID string
}

func NewBedrockGenerator(api BedrockAPI, modelID string) *BedrockGenerator {
	return &BedrockGenerator{api: api, modelID: modelID}
}

// Generate sends one prompt and returns the trimmed generation text.
func (g *BedrockGenerator) Generate(ctx context.Context, req domain.GenerationRequest) (string, error) {
	body, err := json.Marshal(generationBody{
		Prompt:      req.Prompt,
		MaxGenLen:   req.MaxGenLen,
		Temperature: req.Temperature,
		TopP:        req.TopP,
	})
	if err != nil {
		return "", fmt.Errorf("bedrock: marshal request: %w", err)
	}

	out, err := g.api.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(g.modelID),
		Body:        body,
		ContentType: aws.String("application/json"),
		Accept:      aws.String("application/json"),
	})
	if err != nil {
		return "", fmt.Errorf("bedrock InvokeModel %s: %w", g.modelID, err)
	}

	var result generationResult
	if err := json.Unmarshal(out.Body, &result); err != nil {
		return "", fmt.Errorf("bedrock: decode response: %w", err)
	}
	return strings.TrimSpace(result.Generation), nil
}
