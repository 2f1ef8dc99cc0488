package intent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"go.uber.org/zap"

	"github.com/octobees/leadscout/internal/entity"
)

// Completer sends one system+user exchange to a language model and returns the text reply.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// AnthropicCompleter implements Completer with the Anthropic Messages API.
type AnthropicCompleter struct {
	client    sdk.Client
	model     string
	maxTokens int64
}

// NewAnthropicCompleter creates a completer for the given model.
func NewAnthropicCompleter(apiKey, model string) *AnthropicCompleter {
	return &AnthropicCompleter{
		client:    sdk.NewClient(option.WithAPIKey(apiKey)),
		model:     model,
		maxTokens: 512,
	}
}

// Complete implements Completer.
func (c *AnthropicCompleter) Complete(ctx context.Context, system, user string) (string, error) {
	msg, err := c.client.Messages.New(ctx, sdk.MessageNewParams{
		Model:       sdk.Model(c.model),
		MaxTokens:   c.maxTokens,
		System:      []sdk.TextBlockParam{{Text: system}},
		Messages:    []sdk.MessageParam{sdk.NewUserMessage(sdk.NewTextBlock(user))},
		Temperature: sdk.Float(0),
	})
	if err != nil {
		return "", fmt.Errorf("anthropic: create message: %w", err)
	}

	var b strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	return b.String(), nil
}

const extractPrompt = `You extract lead search parameters from an operator's request.
Default location: %s, %s.

Reply with JSON only:
{
  "niche": string | null,
  "city": string | null,
  "state": string | null,
  "maxLeads": number | null,
  "filters": {
    "minRating": number | null,
    "minReviews": number | null,
    "requireNoWebsite": boolean,
    "requireWebsite": boolean
  },
  "isGibberish": boolean
}
Set isGibberish to true when the request is not a search for local businesses.
Use two-letter US state codes.`

const verifyPrompt = `You check an extraction of lead search parameters.

Operator request: %q
Extracted parameters: %s

If the extraction is accurate, reply with the same JSON.
If it is inaccurate or invents filters the operator did not ask for, reply with the corrected JSON.
If the request cannot be turned into a business search, reply with {"error": "invalid"}.
Reply with JSON only.`

type extraction struct {
	Niche    *string `json:"niche"`
	City     *string `json:"city"`
	State    *string `json:"state"`
	MaxLeads *int    `json:"maxLeads"`
	Filters  struct {
		MinRating        *float64 `json:"minRating"`
		MinReviews       *int     `json:"minReviews"`
		RequireNoWebsite bool     `json:"requireNoWebsite"`
		RequireWebsite   bool     `json:"requireWebsite"`
	} `json:"filters"`
	IsGibberish bool   `json:"isGibberish"`
	Error       string `json:"error"`
}

// LLMParser extracts parameters with a language model in two passes (extract, then
// verify). Model or transport failures fall back to the rule parser; a request the
// model rejects is reported as ErrUnparseable.
type LLMParser struct {
	completer Completer
	fallback  Parser
	logger    *zap.Logger
}

// NewLLMParser wires an LLMParser. A nil fallback uses RuleParser.
func NewLLMParser(completer Completer, fallback Parser, logger *zap.Logger) *LLMParser {
	if fallback == nil {
		fallback = NewRuleParser()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LLMParser{completer: completer, fallback: fallback, logger: logger}
}

// Parse implements Parser.
func (p *LLMParser) Parse(ctx context.Context, text string, base entity.RunConfig) (entity.RunConfig, error) {
	prompt := strings.TrimSpace(text)
	if prompt == "" {
		return entity.RunConfig{}, fmt.Errorf("%w: empty request", ErrUnparseable)
	}
	base = base.WithDefaults()

	first, raw, err := p.ask(ctx, fmt.Sprintf(extractPrompt, base.City, base.State), prompt)
	if err != nil {
		return p.fallBack(ctx, prompt, base, err)
	}
	if first.IsGibberish || first.Niche == nil || strings.TrimSpace(*first.Niche) == "" {
		return entity.RunConfig{}, fmt.Errorf("%w: %q", ErrUnparseable, prompt)
	}

	final, _, err := p.ask(ctx, fmt.Sprintf(verifyPrompt, prompt, raw), "Verify and finalize the parameters.")
	if err != nil {
		return p.fallBack(ctx, prompt, base, err)
	}
	if final.Error != "" || final.IsGibberish || final.Niche == nil || strings.TrimSpace(*final.Niche) == "" {
		return entity.RunConfig{}, fmt.Errorf("%w: rejected on verification", ErrUnparseable)
	}

	cfg := final.apply(base)
	if err := cfg.Validate(); err != nil {
		return p.fallBack(ctx, prompt, base, err)
	}
	return cfg, nil
}

func (p *LLMParser) ask(ctx context.Context, system, user string) (extraction, string, error) {
	reply, err := p.completer.Complete(ctx, system, user)
	if err != nil {
		return extraction{}, "", err
	}
	raw, err := jsonObject(reply)
	if err != nil {
		return extraction{}, "", err
	}
	var out extraction
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return extraction{}, "", fmt.Errorf("decode model reply: %w", err)
	}
	return out, raw, nil
}

func (p *LLMParser) fallBack(ctx context.Context, prompt string, base entity.RunConfig, cause error) (entity.RunConfig, error) {
	if errors.Is(cause, context.Canceled) || errors.Is(cause, context.DeadlineExceeded) {
		return entity.RunConfig{}, cause
	}
	p.logger.Warn("intent model failed, using rule parser", zap.Error(cause))
	return p.fallback.Parse(ctx, prompt, base)
}

func (e extraction) apply(base entity.RunConfig) entity.RunConfig {
	cfg := base
	cfg.Filters = entity.Filters{
		MinRating:        e.Filters.MinRating,
		MinReviews:       e.Filters.MinReviews,
		RequireNoWebsite: e.Filters.RequireNoWebsite,
		RequireWebsite:   e.Filters.RequireWebsite && !e.Filters.RequireNoWebsite,
	}
	cfg.Niche = strings.ToLower(strings.TrimSpace(*e.Niche))
	if e.City != nil && strings.TrimSpace(*e.City) != "" {
		cfg.City = strings.TrimSpace(*e.City)
	}
	if e.State != nil && strings.TrimSpace(*e.State) != "" {
		cfg.State = strings.ToUpper(strings.TrimSpace(*e.State))
	}
	if e.MaxLeads != nil && *e.MaxLeads > 0 {
		cfg.MaxLeads = min(*e.MaxLeads, entity.MaxLeadsLimit)
	}
	return cfg
}

// jsonObject returns the outermost {...} in a model reply, which may be wrapped in
// prose or a code fence.
func jsonObject(reply string) (string, error) {
	start := strings.Index(reply, "{")
	end := strings.LastIndex(reply, "}")
	if start < 0 || end <= start {
		return "", errors.New("model reply contains no JSON object")
	}
	return reply[start : end+1], nil
}
