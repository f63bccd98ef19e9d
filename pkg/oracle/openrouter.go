package oracle

import (
	"context"
	"time"

	"github.com/failsafe-go/failsafe-go"
	"github.com/revrost/go-openrouter"

	"github.com/subx-cli/subx/pkg/subxerr"
)

// OpenRouterConfig carries the knobs the OpenRouter backend needs.
type OpenRouterConfig struct {
	APIKey         string
	Model          string
	Temperature    float64
	MaxTokens      int
	RetryAttempts  int
	RetryDelay     time.Duration
	RequestTimeout time.Duration
}

// OpenRouterOracle implements Oracle against OpenRouter's chat completions
// endpoint via the official revrost/go-openrouter client.
type OpenRouterOracle struct {
	client *openrouter.Client
	cfg    OpenRouterConfig
}

func NewOpenRouterOracle(cfg OpenRouterConfig) *OpenRouterOracle {
	return &OpenRouterOracle{client: openrouter.NewClient(cfg.APIKey), cfg: cfg}
}

func (o *OpenRouterOracle) ModelID() string { return o.cfg.Model }

func (o *OpenRouterOracle) Pair(ctx context.Context, videos, subtitles []FileRef) ([]Pairing, error) {
	prompt := buildPrompt(videos, subtitles)
	req := openrouter.ChatCompletionRequest{
		Model: o.cfg.Model,
		Messages: []openrouter.ChatCompletionMessage{
			{Role: openrouter.ChatMessageRoleSystem, Content: openrouter.Content{Text: pairingSystemPrompt}},
			{Role: openrouter.ChatMessageRoleUser, Content: openrouter.Content{Text: prompt}},
		},
		Temperature:         float32(o.cfg.Temperature),
		MaxCompletionTokens: o.cfg.MaxTokens,
	}

	policy := buildRetryPolicy[openrouter.ChatCompletionResponse](o.cfg.RetryAttempts, o.cfg.RetryDelay)
	resp, err := failsafe.Get(func() (openrouter.ChatCompletionResponse, error) {
		attemptCtx, cancel := context.WithTimeout(ctx, o.cfg.RequestTimeout)
		defer cancel()
		return o.client.CreateChatCompletion(attemptCtx, req)
	}, policy)
	if err != nil {
		return nil, classifyTransportError(err)
	}
	if len(resp.Choices) == 0 {
		return nil, subxerr.New(subxerr.KindOracleProtocol, "oracle response had no choices")
	}
	return parsePairingResponse(resp.Choices[0].Message.Content.Text)
}
