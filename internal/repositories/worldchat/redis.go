package worldchat

import (
	"context"
	"encoding/json"
	"log/slog"

	redis "github.com/redis/go-redis/v9"

	"github.com/KirkDiggler/rpg-narrator/internal/entities"
	"github.com/KirkDiggler/rpg-narrator/internal/errors"
	redisclient "github.com/KirkDiggler/rpg-narrator/internal/redis"
)

const (
	// DefaultHistorySize is how many lines the shard keeps
	DefaultHistorySize = 50
	subscriberBuffer   = 32
)

// RedisConfig contains configuration for the Redis world chat
type RedisConfig struct {
	Client      redisclient.Client
	Keyspace    redisclient.Keyspace
	HistorySize int
	Logger      *slog.Logger
}

// Validate validates the config
func (cfg *RedisConfig) Validate() error {
	if cfg == nil {
		return errors.InvalidArgument("config cannot be nil")
	}
	vb := errors.NewValidationBuilder()
	if cfg.Client == nil {
		vb.RequiredField("client")
	}
	errors.ValidateRequired("keyspace", string(cfg.Keyspace), vb)
	if cfg.HistorySize < 0 {
		vb.Field("history_size", "must not be negative")
	}
	return vb.Build()
}

type redisRepository struct {
	client  redisclient.Client
	listKey string
	channel string
	size    int
	logger  *slog.Logger
}

// NewRedis creates a world chat on a capped list plus a pub/sub channel
func NewRedis(cfg *RedisConfig) (Repository, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	size := cfg.HistorySize
	if size == 0 {
		size = DefaultHistorySize
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &redisRepository{
		client:  cfg.Client,
		listKey: cfg.Keyspace.Key("chat", "history"),
		channel: cfg.Keyspace.Key("chat", "events"),
		size:    size,
		logger:  logger,
	}, nil
}

var _ Repository = (*redisRepository)(nil)

// Post pushes to the head of the list, trims it and publishes in one MULTI
func (r *redisRepository) Post(ctx context.Context, input PostInput) (*PostOutput, error) {
	if input.Message == nil {
		return nil, errors.InvalidArgument("message cannot be nil")
	}

	payload, err := json.Marshal(input.Message)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal chat message")
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.LPush(ctx, r.listKey, payload)
		pipe.LTrim(ctx, r.listKey, 0, int64(r.size-1))
		pipe.Publish(ctx, r.channel, payload)
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to post chat message")
	}

	return &PostOutput{Message: input.Message}, nil
}

func (r *redisRepository) List(ctx context.Context, input ListInput) (*ListOutput, error) {
	limit := input.Limit
	if limit <= 0 || limit > r.size {
		limit = r.size
	}

	raw, err := r.client.LRange(ctx, r.listKey, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, errors.Wrap(err, "failed to read chat history")
	}

	// the list is newest first
	messages := make([]*entities.ChatMessage, 0, len(raw))
	for i := len(raw) - 1; i >= 0; i-- {
		var msg entities.ChatMessage
		if err := json.Unmarshal([]byte(raw[i]), &msg); err != nil {
			r.logger.Warn("skipping malformed chat message", "error", err)
			continue
		}
		messages = append(messages, &msg)
	}

	return &ListOutput{Messages: messages}, nil
}

func (r *redisRepository) Subscribe(ctx context.Context, _ SubscribeInput) (*SubscribeOutput, error) {
	pubsub := r.client.Subscribe(ctx, r.channel)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, errors.WrapWithCode(err, errors.CodeUnavailable, "failed to subscribe to world chat")
	}

	out := make(chan *entities.ChatMessage, subscriberBuffer)
	go func() {
		defer close(out)
		defer func() { _ = pubsub.Close() }()

		messages := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case m, ok := <-messages:
				if !ok {
					return
				}
				var msg entities.ChatMessage
				if err := json.Unmarshal([]byte(m.Payload), &msg); err != nil {
					r.logger.Warn("dropping malformed chat event", "error", err)
					continue
				}
				select {
				case out <- &msg:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return &SubscribeOutput{Messages: out, Close: pubsub.Close}, nil
}
