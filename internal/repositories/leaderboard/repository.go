// Package leaderboard ranks accounts by power in a Redis sorted set
package leaderboard

import (
	"context"

	"github.com/KirkDiggler/rpg-narrator/internal/entities"
)

// Score is one account's ranking input
type Score struct {
	Username string
	Power    int64
	GodMode  bool
}

// UpsertInput contains one score to store
type UpsertInput struct {
	Score Score
}

// UpsertOutput is empty
type UpsertOutput struct{}

// RemoveInput contains parameters for dropping an account from the ranking
type RemoveInput struct {
	Username string
}

// RemoveOutput is empty
type RemoveOutput struct{}

// ReplaceInput contains the full set of scores
type ReplaceInput struct {
	Scores []Score
}

// ReplaceOutput is empty
type ReplaceOutput struct{}

// TopInput contains parameters for reading the top of the ranking
type TopInput struct {
	Limit int
}

// TopOutput contains ranked entries, rank 1 first
type TopOutput struct {
	Entries []*entities.LeaderboardEntry
}

// RankInput contains parameters for one account's rank
type RankInput struct {
	Username string
}

// RankOutput contains the entry; NotFound when the account is unranked
type RankOutput struct {
	Entry *entities.LeaderboardEntry
}

// Repository is the power ranking of one server shard
type Repository interface {
	Upsert(ctx context.Context, input UpsertInput) (*UpsertOutput, error)
	Remove(ctx context.Context, input RemoveInput) (*RemoveOutput, error)
	Replace(ctx context.Context, input ReplaceInput) (*ReplaceOutput, error)
	Top(ctx context.Context, input TopInput) (*TopOutput, error)
	Rank(ctx context.Context, input RankInput) (*RankOutput, error)
}
