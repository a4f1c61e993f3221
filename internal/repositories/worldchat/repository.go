// Package worldchat keeps the shard-wide chat history and fans out new lines
package worldchat

import (
	"context"

	"github.com/KirkDiggler/rpg-narrator/internal/entities"
)

// PostInput contains a message to append
type PostInput struct {
	Message *entities.ChatMessage
}

// PostOutput contains the stored message
type PostOutput struct {
	Message *entities.ChatMessage
}

// ListInput contains parameters for reading recent history
type ListInput struct {
	Limit int
}

// ListOutput contains messages, oldest first
type ListOutput struct {
	Messages []*entities.ChatMessage
}

// SubscribeInput is empty; every subscriber sees the whole shard
type SubscribeInput struct{}

// SubscribeOutput contains the live feed. Messages is closed when the
// subscription ends.
type SubscribeOutput struct {
	Messages <-chan *entities.ChatMessage
	Close    func() error
}

// Repository is the world chat of one server shard
type Repository interface {
	Post(ctx context.Context, input PostInput) (*PostOutput, error)
	List(ctx context.Context, input ListInput) (*ListOutput, error)
	Subscribe(ctx context.Context, input SubscribeInput) (*SubscribeOutput, error)
}
