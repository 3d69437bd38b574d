package router

import (
	"context"
	"fmt"
	"strings"

	"medirouter/models"

	genai "github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const intentPrompt = `Classify the healthcare request below into exactly one of:
booking, comparison, emergency, diagnostic, general.
Answer with the single word only.

Request: %s`

// GeminiClassifier delegates intent classification to Gemini. The raw
// answer is clamped to the known intent set with the same priority
// order as the keyword classifier, so the router's contract (one
// dispatch target, deterministic tie-break) holds regardless of model
// output.
type GeminiClassifier struct {
	model    *genai.GenerativeModel
	Fallback bool
}

func NewGeminiClassifier(apiKey string, fallback bool) (*GeminiClassifier, error) {
	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	model := client.GenerativeModel("models/gemini-1.5-pro")
	return &GeminiClassifier{model: model, Fallback: fallback}, nil
}

func (g *GeminiClassifier) Classify(ctx context.Context, text string) (models.Intent, error) {
	resp, err := g.model.GenerateContent(ctx, genai.Text(fmt.Sprintf(intentPrompt, text)))
	if err != nil {
		return "", fmt.Errorf("gemini classify error: %w", err)
	}

	var sb strings.Builder
	if len(resp.Candidates) > 0 && resp.Candidates[0].Content != nil {
		for _, part := range resp.Candidates[0].Content.Parts {
			if textPart, ok := part.(genai.Text); ok {
				sb.WriteString(string(textPart))
			}
		}
	}
	return clampIntent(sb.String(), g.Fallback)
}
