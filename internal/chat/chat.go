package chat

import (
	"context"
	"errors"
	"fmt"
	log "log/slog"
	"net/http"
	"strings"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

var ErrEmptyReply = errors.New("empty reply")

type Options struct {
	APIKey     string
	Model      string
	BaseURL    string
	HTTPClient *http.Client
}

// Client sends single-turn prompts to a chat completion endpoint.
type Client struct {
	api   openai.Client
	model openai.ChatModel
}

func New(opt Options) *Client {
	opts := []option.RequestOption{
		option.WithAPIKey(opt.APIKey),
		option.WithMaxRetries(0),
	}
	if opt.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(opt.HTTPClient))
	}
	if opt.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(opt.BaseURL))
	}

	model := openai.ChatModel(opt.Model)
	if model == "" {
		model = openai.ChatModelGPT3_5Turbo
	}

	return &Client{
		api:   openai.NewClient(opts...),
		model: model,
	}
}

// Complete sends prompt as the only user message and returns the text of
// the first choice.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := c.api.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		Model: c.model,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices in response: %w", ErrEmptyReply)
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", fmt.Errorf("empty message content: %w", ErrEmptyReply)
	}

	log.Debug("Chat reply", "model", c.model, "chars", len(content))

	return content, nil
}
