package oracle

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/failsafe-go/failsafe-go"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/azure"
	"github.com/openai/openai-go/option"

	"github.com/subx-cli/subx/pkg/subxerr"
)

// OpenAIConfig carries exactly the knobs the OpenAI/Azure-OpenAI backend
// needs, decoupled from pkg/config so this package never imports it.
type OpenAIConfig struct {
	APIKey                string
	Model                 string
	BaseURL               string
	APIVersion            string // non-empty selects the Azure OpenAI client
	DeploymentID          string
	Temperature           float64
	MaxTokens             int64
	RetryAttempts         int
	RetryDelay            time.Duration
	RequestTimeout        time.Duration
}

// OpenAIOracle implements Oracle against OpenAI's chat completions API, or
// Azure OpenAI when cfg.APIVersion is set.
type OpenAIOracle struct {
	client openai.Client
	cfg    OpenAIConfig
}

func NewOpenAIOracle(cfg OpenAIConfig) *OpenAIOracle {
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	var client openai.Client
	if cfg.APIVersion != "" {
		opts = append(opts,
			azure.WithEndpoint(cfg.BaseURL, cfg.APIVersion),
			azure.WithAPIKey(cfg.APIKey),
		)
		client = openai.NewClient(opts...)
	} else {
		if cfg.BaseURL != "" {
			opts = append(opts, option.WithBaseURL(cfg.BaseURL))
		}
		client = openai.NewClient(opts...)
	}
	return &OpenAIOracle{client: client, cfg: cfg}
}

func (o *OpenAIOracle) ModelID() string {
	if o.cfg.DeploymentID != "" {
		return o.cfg.DeploymentID
	}
	return o.cfg.Model
}

func (o *OpenAIOracle) Pair(ctx context.Context, videos, subtitles []FileRef) ([]Pairing, error) {
	prompt := buildPrompt(videos, subtitles)
	policy := buildRetryPolicy[*openai.ChatCompletion](o.cfg.RetryAttempts, o.cfg.RetryDelay)

	resp, err := failsafe.Get(func() (*openai.ChatCompletion, error) {
		attemptCtx, cancel := context.WithTimeout(ctx, o.cfg.RequestTimeout)
		defer cancel()

		return o.client.Chat.Completions.New(attemptCtx, openai.ChatCompletionNewParams{
			Model: o.cfg.Model,
			Messages: []openai.ChatCompletionMessageParamUnion{
				openai.SystemMessage(pairingSystemPrompt),
				openai.UserMessage(prompt),
			},
			Temperature: openai.Float(o.cfg.Temperature),
			MaxTokens:   openai.Int(o.cfg.MaxTokens),
		})
	}, policy)
	if err != nil {
		return nil, classifyTransportError(err)
	}
	if len(resp.Choices) == 0 {
		return nil, subxerr.New(subxerr.KindOracleProtocol, "oracle response had no choices")
	}
	return parsePairingResponse(resp.Choices[0].Message.Content)
}

const pairingSystemPrompt = `You pair video files with subtitle files. You will receive a list of video ` +
	`files and a list of subtitle files, each as "ID:<id> | Name:<name> | Path:<path>". Respond with ONLY ` +
	`a JSON array of objects: {"video_id":"...","subtitle_id":"...","confidence":0.0-1.0,"reasoning":["..."]}. ` +
	`Reference files by id only.`

func buildPrompt(videos, subtitles []FileRef) string {
	var b strings.Builder
	b.WriteString("Videos:\n")
	for _, v := range videos {
		b.WriteString(formatFileLine(v))
		b.WriteString("\n")
	}
	b.WriteString("\nSubtitles:\n")
	for _, s := range subtitles {
		b.WriteString(formatFileLine(s))
		b.WriteString("\n")
	}
	return b.String()
}

var jsonArrayRe = regexp.MustCompile(`(?s)\[.*\]`)

type wirePairing struct {
	VideoID    string   `json:"video_id"`
	SubtitleID string   `json:"subtitle_id"`
	Confidence float64  `json:"confidence"`
	Reasoning  []string `json:"reasoning"`
}

func parsePairingResponse(content string) ([]Pairing, error) {
	match := jsonArrayRe.FindString(content)
	if match == "" {
		return nil, subxerr.New(subxerr.KindOracleProtocol, "oracle response did not contain a JSON array")
	}
	var wire []wirePairing
	if err := json.Unmarshal([]byte(match), &wire); err != nil {
		return nil, subxerr.Wrap(subxerr.KindOracleProtocol, "oracle response failed schema validation", err)
	}
	out := make([]Pairing, len(wire))
	for i, w := range wire {
		out[i] = Pairing{VideoID: w.VideoID, SubtitleID: w.SubtitleID, Confidence: w.Confidence, Reasoning: w.Reasoning}
	}
	return out, nil
}

// classifyTransportError distinguishes a retry-exhausted transient failure
// from an authentication/protocol failure that should never have been
// retried; by the time this runs the retry policy has already made that
// call for in-flight attempts, so this only relabels the final error kind
// for callers that branch on subxerr.Kind.
func classifyTransportError(err error) error {
	msg := err.Error()
	lower := strings.ToLower(msg)
	if strings.Contains(lower, "401") || strings.Contains(lower, "403") || strings.Contains(lower, "unauthorized") {
		return subxerr.Wrap(subxerr.KindOracleProtocol, "oracle authentication failed", err)
	}
	return subxerr.Wrap(subxerr.KindOracleTransient, fmt.Sprintf("oracle call failed: %s", msg), err)
}
