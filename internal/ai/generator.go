// Package ai is the client for the narrative-generation collaborator.
// The call is blocking and single-shot: failures are surfaced as a typed
// Result, never retried.
package ai

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

const systemInstruction = "You generate professional leave letters following standard academic letter writing formats."

// Config holds the narrative service settings. BaseURL defaults to the
// Groq OpenAI-compatible endpoint.
type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float32
}

// Result is the typed outcome of a generation call. A failed call still
// carries display text so the document pipeline can proceed, but Failed
// keeps the failure distinguishable from real letter content.
type Result struct {
	Text   string
	Failed bool
	Reason string
}

// Generator submits letter-writing instructions to the narrative
// service.
type Generator struct {
	client *openai.Client
	model  string
	temp   float32
	logger *zap.Logger
}

// NewGenerator builds a generator. An empty API key is allowed; calls
// then degrade to a failure Result.
func NewGenerator(cfg Config, logger *zap.Logger) *Generator {
	var client *openai.Client
	if cfg.APIKey != "" {
		clientCfg := openai.DefaultConfig(cfg.APIKey)
		if cfg.BaseURL != "" {
			clientCfg.BaseURL = cfg.BaseURL
		}
		client = openai.NewClientWithConfig(clientCfg)
	}
	return &Generator{
		client: client,
		model:  cfg.Model,
		temp:   cfg.Temperature,
		logger: logger,
	}
}

// Generate sends the constructed user instruction and returns the
// narrative text. Missing credentials and transport failures produce a
// failure Result whose text is the visible error notice.
func (g *Generator) Generate(ctx context.Context, instruction string) Result {
	if g.client == nil {
		g.logger.Warn("Narrative generation skipped: missing API key")
		return failure("missing narrative service API key")
	}

	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       g.model,
		Temperature: g.temp,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemInstruction},
			{Role: openai.ChatMessageRoleUser, Content: instruction},
		},
	})
	if err != nil {
		g.logger.Error("Narrative generation failed", zap.Error(err))
		return failure(err.Error())
	}
	if len(resp.Choices) == 0 {
		g.logger.Error("Narrative service returned no choices")
		return failure("empty response from narrative service")
	}

	g.logger.Info("Narrative generated",
		zap.String("model", g.model),
		zap.Int("length", len(resp.Choices[0].Message.Content)))
	return Result{Text: resp.Choices[0].Message.Content}
}

func failure(reason string) Result {
	return Result{
		Text:   fmt.Sprintf("Error: could not generate the letter (%s)", reason),
		Failed: true,
		Reason: reason,
	}
}
