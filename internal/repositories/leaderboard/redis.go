package leaderboard

import (
	"context"
	"math"

	redis "github.com/redis/go-redis/v9"

	"github.com/KirkDiggler/rpg-narrator/internal/entities"
	"github.com/KirkDiggler/rpg-narrator/internal/errors"
	redisclient "github.com/KirkDiggler/rpg-narrator/internal/redis"
)

const defaultTopLimit = 50

// RedisConfig contains configuration for the Redis leaderboard
type RedisConfig struct {
	Client   redisclient.Client
	Keyspace redisclient.Keyspace
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
	return vb.Build()
}

type redisRepository struct {
	client redisclient.Client
	key    string
}

// NewRedis creates a leaderboard on a sorted set. God mode is stored as a
// +inf score so it outranks every finite power.
func NewRedis(cfg *RedisConfig) (Repository, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &redisRepository{client: cfg.Client, key: cfg.Keyspace.Key("leaderboard")}, nil
}

var _ Repository = (*redisRepository)(nil)

func member(s Score) redis.Z {
	score := float64(s.Power)
	if s.GodMode {
		score = math.Inf(1)
	}
	return redis.Z{Score: score, Member: s.Username}
}

func toEntry(rank int, z redis.Z) *entities.LeaderboardEntry {
	name, _ := z.Member.(string)
	entry := &entities.LeaderboardEntry{Rank: rank, Username: name}
	if math.IsInf(z.Score, 1) {
		entry.GodMode = true
	} else {
		entry.Power = int64(z.Score)
	}
	return entry
}

func (r *redisRepository) Upsert(ctx context.Context, input UpsertInput) (*UpsertOutput, error) {
	if input.Score.Username == "" {
		return nil, errors.InvalidArgument("username cannot be empty")
	}
	if err := r.client.ZAdd(ctx, r.key, member(input.Score)).Err(); err != nil {
		return nil, errors.Wrapf(err, "failed to rank %s", input.Score.Username)
	}
	return &UpsertOutput{}, nil
}

func (r *redisRepository) Remove(ctx context.Context, input RemoveInput) (*RemoveOutput, error) {
	if input.Username == "" {
		return nil, errors.InvalidArgument("username cannot be empty")
	}
	if err := r.client.ZRem(ctx, r.key, input.Username).Err(); err != nil {
		return nil, errors.Wrapf(err, "failed to unrank %s", input.Username)
	}
	return &RemoveOutput{}, nil
}

// Replace swaps the whole ranking atomically
func (r *redisRepository) Replace(ctx context.Context, input ReplaceInput) (*ReplaceOutput, error) {
	members := make([]redis.Z, 0, len(input.Scores))
	for _, s := range input.Scores {
		if s.Username != "" {
			members = append(members, member(s))
		}
	}

	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, r.key)
		if len(members) > 0 {
			pipe.ZAdd(ctx, r.key, members...)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to rebuild leaderboard")
	}
	return &ReplaceOutput{}, nil
}

func (r *redisRepository) Top(ctx context.Context, input TopInput) (*TopOutput, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = defaultTopLimit
	}

	members, err := r.client.ZRevRangeWithScores(ctx, r.key, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, errors.Wrap(err, "failed to read leaderboard")
	}

	entries := make([]*entities.LeaderboardEntry, 0, len(members))
	for i, z := range members {
		entries = append(entries, toEntry(i+1, z))
	}
	return &TopOutput{Entries: entries}, nil
}

func (r *redisRepository) Rank(ctx context.Context, input RankInput) (*RankOutput, error) {
	if input.Username == "" {
		return nil, errors.InvalidArgument("username cannot be empty")
	}

	rank, err := r.client.ZRevRank(ctx, r.key, input.Username).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, errors.NotFoundf("%s is not ranked", input.Username)
		}
		return nil, errors.Wrapf(err, "failed to rank %s", input.Username)
	}

	score, err := r.client.ZScore(ctx, r.key, input.Username).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read score of %s", input.Username)
	}

	return &RankOutput{Entry: toEntry(int(rank)+1, redis.Z{Score: score, Member: input.Username})}, nil
}
