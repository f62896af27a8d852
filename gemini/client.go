package gemini

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"

	"github.com/autosocial/modbot/model"
)

type Client struct {
	client    *genai.Client
	modelName string
}

func NewClient(ctx context.Context, apiKey string, modelName string) (*Client, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, err
	}
	return &Client{
		client:    client,
		modelName: modelName,
	}, nil
}

/*
Classify sends one comment plus the knowledge-base blob to Gemini and parses
the structured verdict out of the response. Errors here mean the model was
unreachable or answered with something that isn't a Decision; callers are
expected to fall back to an inert decision rather than propagate.
*/
func (c *Client) Classify(ctx context.Context, comment string, knowledge string) (*model.Decision, error) {
	prompt := buildPrompt(comment, knowledge)

	result, err := c.client.Models.GenerateContent(ctx, c.modelName, genai.Text(prompt), nil)
	if err != nil {
		return nil, err
	}
	if result == nil || len(result.Candidates) == 0 ||
		result.Candidates[0].Content == nil || len(result.Candidates[0].Content.Parts) == 0 {
		return nil, errors.New("empty response from model")
	}

	decision, err := ParseDecision(result.Candidates[0].Content.Parts[0].Text)
	if err != nil {
		return nil, fmt.Errorf("parsing model response: %w", err)
	}
	return decision, nil
}
