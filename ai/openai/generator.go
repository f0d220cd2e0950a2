package openai

import (
	"context"
	"log/slog"

	"github.com/ganarajpr/rgfe-sub000/ai"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"golang.org/x/time/rate"
)

// Generator implements ai.Generator using OpenAI-compatible chat APIs.
type Generator struct {
	client  llms.Model
	limiter *rate.Limiter
	logger  *slog.Logger
}

// newGenerator is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newGenerator(config *ai.Config, limiter *rate.Limiter) (*Generator, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	// Use "none" as token for local OpenAI-compatible services that don't require authentication
	client, err := openai.New(
		openai.WithBaseURL(config.GeneratorHost),
		openai.WithToken("none"),
		openai.WithModel(config.GeneratorModel),
	)
	if err != nil {
		return nil, err
	}

	return &Generator{
		client:  client,
		limiter: limiter,
		logger:  slog.Default().With("component", "openai-generator"),
	}, nil
}

// NewGenerator creates a new generator using the provided configuration.
//
// Returns ai.Generator interface to enforce abstraction.
func NewGenerator(config *ai.Config) (ai.Generator, error) {
	var limiter *rate.Limiter
	if config.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(config.RequestsPerSecond), 1)
	}
	return newGenerator(config, limiter)
}

// Generate returns the full completion for a prompt.
func (g *Generator) Generate(ctx context.Context, prompt string, opts ...ai.GenerateOption) (string, error) {
	if err := g.wait(ctx); err != nil {
		return "", err
	}

	response, err := g.client.GenerateContent(ctx, promptContent(prompt), callOptions(opts)...)
	if err != nil {
		g.logger.Error("failed to generate content", "err", err)
		return "", err
	}
	if len(response.Choices) < 1 {
		g.logger.Debug("no choices returned from model")
		return "", nil
	}
	return response.Choices[0].Content, nil
}

// GenerateStream delivers the completion incrementally through fn.
func (g *Generator) GenerateStream(ctx context.Context, prompt string, fn ai.StreamFunc, opts ...ai.GenerateOption) error {
	if err := g.wait(ctx); err != nil {
		return err
	}

	callOpts := append(callOptions(opts), llms.WithStreamingFunc(func(ctx context.Context, chunk []byte) error {
		return fn(ctx, chunk)
	}))

	_, err := g.client.GenerateContent(ctx, promptContent(prompt), callOpts...)
	if err != nil {
		g.logger.Error("failed to stream content", "err", err)
	}
	return err
}

func (g *Generator) wait(ctx context.Context) error {
	if g.limiter == nil {
		return nil
	}
	return g.limiter.Wait(ctx)
}

func promptContent(prompt string) []llms.MessageContent {
	return []llms.MessageContent{
		{
			Role: llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{
				llms.TextPart(prompt),
			},
		},
	}
}

func callOptions(opts []ai.GenerateOption) []llms.CallOption {
	resolved := ai.ResolveGenerateOptions(opts...)
	callOpts := []llms.CallOption{llms.WithTemperature(resolved.Temperature)}
	if resolved.JSONMode {
		callOpts = append(callOpts, llms.WithJSONMode())
	}
	return callOpts
}
