package gemini

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/botcraft/internal/logging"
	"google.golang.org/genai"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-2.5-flash"

// Texts returned instead of an error so the chat UI always has a reply.
const (
	FallbackEmpty = "I'm sorry, I couldn't process that request."
	FallbackError = "An error occurred while connecting to the AI engine. Please try again."
)

// Generator is the part of the genai client the provider needs.
type Generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Provider generates bot replies.
type Provider struct {
	gen    Generator
	model  string
	now    func() time.Time
	logger *slog.Logger
}

// Option configures a Provider.
type Option func(*Provider)

// WithModel selects the Gemini model.
func WithModel(model string) Option {
	return func(p *Provider) {
		if model != "" {
			p.model = model
		}
	}
}

// WithLogger sets the logger for the provider.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Provider) {
		p.logger = logger
	}
}

// WithClock overrides the time source used for the instruction date.
func WithClock(now func() time.Time) Option {
	return func(p *Provider) {
		p.now = now
	}
}

// New creates a provider backed by the Gemini API.
func New(ctx context.Context, apiKey string, opts ...Option) (*Provider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini: API key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("error creating Gemini client: %w", err)
	}
	return NewWithGenerator(client.Models, opts...), nil
}

// NewWithGenerator creates a provider over any Generator.
func NewWithGenerator(gen Generator, opts ...Option) *Provider {
	p := &Provider{
		gen:    gen,
		model:  DefaultModel,
		now:    time.Now,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Chat answers message as the configured bot, given the prior history.
// Provider failures are logged and turned into a fallback reply.
func (p *Provider) Chat(ctx context.Context, cfg BotConfig, history []Message, message string) string {
	contents := make([]*genai.Content, 0, len(history)+1)
	for _, m := range history {
		role := genai.RoleUser
		if m.Role == RoleModel {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(m.Content, genai.Role(role)))
	}
	contents = append(contents, genai.NewContentFromText(message, genai.RoleUser))

	resp, err := p.gen.GenerateContent(ctx, p.model, contents, &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(BuildSystemInstruction(cfg, p.now()), genai.RoleUser),
		Temperature:       genai.Ptr[float32](0.7),
		TopP:              genai.Ptr[float32](0.95),
		TopK:              genai.Ptr[float32](40),
	})
	if err != nil {
		p.logger.Error("Gemini chat failed", "error", err, "model", p.model)
		return FallbackError
	}
	if text := resp.Text(); text != "" {
		return text
	}
	return FallbackEmpty
}

// ExtractContentFromURL asks the model, grounded with Google Search, to pull the
// business information and FAQs out of a web page.
func (p *Provider) ExtractContentFromURL(ctx context.Context, url string) (string, error) {
	prompt := "Analyze this URL and extract the core business information and FAQs as if you were a web crawler: " + url
	resp, err := p.gen.GenerateContent(ctx, p.model, genai.Text(prompt), &genai.GenerateContentConfig{
		Tools: []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}},
	})
	if err != nil {
		return "", fmt.Errorf("gemini: extract %s: %w", url, err)
	}
	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("gemini: no content extracted from %s", url)
	}
	return text, nil
}
