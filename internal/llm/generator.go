package llm

import (
	"context"
	"fmt"
	"net/http"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"

	"github.com/spherical/question-agent/internal/config"
)

// Generator produces a completion for a single prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// ModelGenerator adapts a langchaingo model to Generator.
type ModelGenerator struct {
	model llms.Model
	opts  []llms.CallOption
}

// NewModelGenerator wraps model. opts are applied to every call.
func NewModelGenerator(model llms.Model, opts ...llms.CallOption) *ModelGenerator {
	return &ModelGenerator{model: model, opts: opts}
}

// Generate implements Generator.
func (g *ModelGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, g.model, prompt, g.opts...)
}

// NewOllama creates a generator for a local Ollama server that asks for JSON
// output.
func NewOllama(model, serverURL string, httpClient *http.Client) (*ModelGenerator, error) {
	opts := []ollama.Option{
		ollama.WithModel(model),
		ollama.WithFormat("json"),
	}
	if serverURL != "" {
		opts = append(opts, ollama.WithServerURL(serverURL))
	}
	if httpClient != nil {
		opts = append(opts, ollama.WithHTTPClient(httpClient))
	}

	m, err := ollama.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("create ollama client: %w", err)
	}
	return NewModelGenerator(m, llms.WithTemperature(0)), nil
}

// NewGenerator builds the generator selected by cfg.Provider.
func NewGenerator(cfg config.LLMConfig) (Generator, error) {
	httpClient := &http.Client{Timeout: cfg.Timeout}

	switch cfg.Provider {
	case config.ProviderOllama:
		return NewOllama(cfg.Model, cfg.BaseURL, httpClient)
	case config.ProviderOpenRouter:
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("OPENROUTER_API_KEY is required for the openrouter provider")
		}
		model, baseURL := cfg.Model, cfg.BaseURL
		// ollama defaults mean nothing to openrouter
		if model == config.DefaultOllamaModel {
			model = ""
		}
		if baseURL == config.DefaultOllamaURL {
			baseURL = ""
		}
		return NewOpenRouter(cfg.APIKey, model, baseURL, httpClient), nil
	default:
		return nil, fmt.Errorf("unsupported llm provider: %s", cfg.Provider)
	}
}
