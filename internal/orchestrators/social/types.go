package social

import "github.com/KirkDiggler/rpg-narrator/internal/entities"

// PostChatInput is one world chat line from the caller
type PostChatInput struct {
	Caller string
	Text   string
}

// PostChatOutput contains the stored line
type PostChatOutput struct {
	Message *entities.ChatMessage
}

// ListChatInput reads recent world chat
type ListChatInput struct {
	Caller string
	Limit  int
}

// ListChatOutput contains messages, oldest first
type ListChatOutput struct {
	Messages []*entities.ChatMessage
}

// SubscribeChatInput names the caller
type SubscribeChatInput struct {
	Caller string
}

// SubscribeChatOutput is the live world chat feed
type SubscribeChatOutput struct {
	Messages <-chan *entities.ChatMessage
	Close    func() error
}

// LeaderboardInput reads the ranking. Caller is optional; when set the
// caller's own entry is returned as well.
type LeaderboardInput struct {
	Caller string
	Limit  int
}

// LeaderboardOutput contains the ranking, rank 1 first
type LeaderboardOutput struct {
	Entries []*entities.LeaderboardEntry
	Caller  *entities.LeaderboardEntry
}
