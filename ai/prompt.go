package ai

import (
	"context"
	"fmt"
	"log"
	"strings"

	"google.golang.org/genai"
)

const refineModel = "gemini-2.5-flash"

func injectSysPrompt(prompt string) string {
	return fmt.Sprintf(`You rewrite short object descriptions for an image editing model. The description identifies an object in a photo that will be removed or recolored. Rewrite the user's description to be:

- Specific about the object (shape, position, distinguishing features)
- Free of instructions or verbs; a noun phrase only
- One line, under 15 words

User description: %s`, prompt)
}

// PromptRefiner rewrites remove/recolor object prompts so the image
// provider targets the right object. Refinement is best-effort: any
// failure falls back to the raw prompt.
type PromptRefiner struct {
	client *genai.Client
}

func NewPromptRefiner(ctx context.Context) (*PromptRefiner, error) {
	client, err := genai.NewClient(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("genai client: %w", err)
	}
	return &PromptRefiner{client: client}, nil
}

func (r *PromptRefiner) Refine(ctx context.Context, prompt string) string {
	if prompt == "" {
		return prompt
	}

	result, err := r.client.Models.GenerateContent(
		ctx,
		refineModel,
		genai.Text(injectSysPrompt(prompt)),
		&genai.GenerateContentConfig{},
	)
	if err != nil {
		log.Printf("prompt refinement failed: %v", err)
		return prompt
	}

	if len(result.Candidates) == 0 || result.Candidates[0].Content == nil {
		return prompt
	}
	for _, part := range result.Candidates[0].Content.Parts {
		if part.Text != "" {
			return strings.TrimSpace(part.Text)
		}
	}
	return prompt
}
