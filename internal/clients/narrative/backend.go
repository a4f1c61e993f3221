// Package narrative talks to the LLM game master. A Router walks an ordered
// list of backend tiers, falling back on failure and returning to the primary
// tier after a cooldown.
package narrative

//go:generate mockgen -destination=mock/mock_backend.go -package=narrativemock github.com/KirkDiggler/rpg-narrator/internal/clients/narrative Backend

import (
	"context"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sashabaranov/go-openai/jsonschema"

	"github.com/KirkDiggler/rpg-narrator/internal/entities"
	"github.com/KirkDiggler/rpg-narrator/internal/errors"
)

// Message is one conversation turn sent to a backend
type Message struct {
	Role entities.ChatRole
	Text string
}

// Request is one completion call. When Schema is set the backend is asked for
// JSON and the Router validates the reply against it.
type Request struct {
	Operation  string
	System     string
	Messages   []Message
	Schema     *jsonschema.Definition
	SchemaName string
}

// Backend is one narrative tier
type Backend interface {
	Name() string
	Complete(ctx context.Context, req *Request) (string, error)
}

// OpenAIConfig configures an OpenAI-compatible chat completion tier
type OpenAIConfig struct {
	Name        string
	Model       string
	BaseURL     string
	APIKey      string
	Temperature float32
	Timeout     time.Duration
}

// Validate validates the config
func (c *OpenAIConfig) Validate() error {
	if c == nil {
		return errors.InvalidArgument("config cannot be nil")
	}
	vb := errors.NewValidationBuilder()
	errors.ValidateRequired("name", c.Name, vb)
	errors.ValidateRequired("model", c.Model, vb)
	errors.ValidateRequired("api_key", c.APIKey, vb)
	return vb.Build()
}

type openAIBackend struct {
	name        string
	model       string
	temperature float32
	timeout     time.Duration
	client      *openai.Client
}

// NewOpenAI creates a tier backed by go-openai; BaseURL selects any
// OpenAI-compatible provider.
func NewOpenAI(cfg *OpenAIConfig) (Backend, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 90 * time.Second
	}

	return &openAIBackend{
		name:        cfg.Name,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		timeout:     timeout,
		client:      openai.NewClientWithConfig(clientCfg),
	}, nil
}

func (b *openAIBackend) Name() string {
	return b.name
}

func (b *openAIBackend) Complete(ctx context.Context, req *Request) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	messages := make([]openai.ChatCompletionMessage, 0, len(req.Messages)+1)
	if req.System != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.System,
		})
	}
	for _, m := range req.Messages {
		role := openai.ChatMessageRoleUser
		if m.Role == entities.ChatRoleModel {
			role = openai.ChatMessageRoleAssistant
		}
		messages = append(messages, openai.ChatCompletionMessage{Role: role, Content: m.Text})
	}

	creq := openai.ChatCompletionRequest{
		Model:       b.model,
		Messages:    messages,
		Temperature: b.temperature,
	}
	if req.Schema != nil {
		creq.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:   req.SchemaName,
				Schema: req.Schema,
				Strict: false,
			},
		}
	}

	resp, err := b.client.CreateChatCompletion(ctx, creq)
	if err != nil {
		return "", errors.WrapWithCodef(err, errors.CodeUnavailable, "%s: completion failed", b.name)
	}
	if len(resp.Choices) == 0 {
		return "", errors.Unavailablef("%s: empty response", b.name)
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", errors.Unavailablef("%s: empty response", b.name)
	}
	return text, nil
}
