package battles

import (
	"context"
	"encoding/json"
	"log/slog"
	"sort"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/KirkDiggler/rpg-narrator/internal/entities"
	"github.com/KirkDiggler/rpg-narrator/internal/errors"
	redisclient "github.com/KirkDiggler/rpg-narrator/internal/redis"
)

const (
	defaultHistoryTTL = 7 * 24 * time.Hour
	maxCASAttempts    = 5
	subscriberBuffer  = 16

	errIDEmpty       = "battle ID cannot be empty"
	errUsernameEmpty = "username cannot be empty"
)

// RedisConfig contains configuration for the Redis battle repository
type RedisConfig struct {
	Client   redisclient.Client
	Keyspace redisclient.Keyspace
	// HistoryTTL is how long FINISHED and DECLINED records are retained
	HistoryTTL time.Duration
	Logger     *slog.Logger
}

// Validate validates the RedisConfig
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
	client     redisclient.Client
	keys       redisclient.Keyspace
	historyTTL time.Duration
	logger     *slog.Logger
}

// NewRedis creates a Redis-backed battle repository. Records are JSON strings;
// transitions run under WATCH so concurrent writers cannot both advance a turn.
func NewRedis(cfg *RedisConfig) (Repository, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	ttl := cfg.HistoryTTL
	if ttl == 0 {
		ttl = defaultHistoryTTL
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &redisRepository{
		client:     cfg.Client,
		keys:       cfg.Keyspace,
		historyTTL: ttl,
		logger:     logger,
	}, nil
}

var _ Repository = (*redisRepository)(nil)

func (r *redisRepository) recordKey(id string) string {
	return r.keys.Key("battle", id)
}

func (r *redisRepository) activeKey(username string) string {
	return r.keys.Key("battle", "active", username)
}

func (r *redisRepository) recentKey() string {
	return r.keys.Key("battle", "recent")
}

func (r *redisRepository) channel(username string) string {
	return r.keys.Key("battle", "events", username)
}

// Create stores a new record built under the participants' active index
func (r *redisRepository) Create(ctx context.Context, input CreateInput) (*CreateOutput, error) {
	if input.Challenger == "" || input.Target == "" {
		return nil, errors.InvalidArgument(errUsernameEmpty)
	}
	if input.Build == nil {
		return nil, errors.InvalidArgument("build func cannot be nil")
	}

	var created *entities.BattleRecord
	txf := func(tx *redis.Tx) error {
		challengerBusy, err := r.hasActive(ctx, tx, input.Challenger)
		if err != nil {
			return err
		}
		targetBusy, err := r.hasActive(ctx, tx, input.Target)
		if err != nil {
			return err
		}

		rec, err := input.Build(challengerBusy, targetBusy)
		if err != nil {
			return err
		}
		rec.Version = 1

		payload, err := json.Marshal(rec)
		if err != nil {
			return errors.Wrap(err, "failed to marshal battle")
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, r.recordKey(rec.ID), payload, 0)
			pipe.SAdd(ctx, r.activeKey(rec.Challenger), rec.ID)
			pipe.SAdd(ctx, r.activeKey(rec.Target), rec.ID)
			pipe.ZAdd(ctx, r.recentKey(), redis.Z{Score: float64(rec.CreatedAt.UnixNano()), Member: rec.ID})
			r.publish(ctx, pipe, rec, payload)
			return nil
		})
		if err != nil {
			return err
		}
		created = rec
		return nil
	}

	if err := r.watch(ctx, txf, r.activeKey(input.Challenger), r.activeKey(input.Target)); err != nil {
		return nil, err
	}

	return &CreateOutput{Record: created}, nil
}

// Get loads one record
func (r *redisRepository) Get(ctx context.Context, input GetInput) (*GetOutput, error) {
	if input.ID == "" {
		return nil, errors.InvalidArgument(errIDEmpty)
	}

	rec, err := r.load(ctx, r.client, input.ID)
	if err != nil {
		return nil, err
	}

	return &GetOutput{Record: rec}, nil
}

// Update applies Mutate under WATCH. A concurrent write to the same record
// aborts the transaction and the mutation is re-run against the fresh record.
func (r *redisRepository) Update(ctx context.Context, input UpdateInput) (*UpdateOutput, error) {
	if input.ID == "" {
		return nil, errors.InvalidArgument(errIDEmpty)
	}
	if input.Mutate == nil {
		return nil, errors.InvalidArgument("mutate func cannot be nil")
	}

	key := r.recordKey(input.ID)
	var stored *entities.BattleRecord
	txf := func(tx *redis.Tx) error {
		current, err := r.load(ctx, tx, input.ID)
		if err != nil {
			return err
		}

		next, err := input.Mutate(current.Clone())
		if err != nil {
			return err
		}
		if next == nil {
			stored = current
			return nil
		}
		next.Version = current.Version + 1

		payload, err := json.Marshal(next)
		if err != nil {
			return errors.Wrap(err, "failed to marshal battle")
		}

		var ttl time.Duration
		if next.IsTerminal() {
			ttl = r.historyTTL
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, payload, ttl)
			if next.IsTerminal() {
				pipe.SRem(ctx, r.activeKey(next.Challenger), next.ID)
				pipe.SRem(ctx, r.activeKey(next.Target), next.ID)
			}
			r.publish(ctx, pipe, next, payload)
			return nil
		})
		if err != nil {
			return err
		}
		stored = next
		return nil
	}

	if err := r.watch(ctx, txf, key); err != nil {
		return nil, err
	}

	return &UpdateOutput{Record: stored}, nil
}

// Delete removes a record and its index entries
func (r *redisRepository) Delete(ctx context.Context, input DeleteInput) (*DeleteOutput, error) {
	if input.ID == "" {
		return nil, errors.InvalidArgument(errIDEmpty)
	}

	rec, err := r.load(ctx, r.client, input.ID)
	if err != nil {
		return nil, err
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, r.recordKey(rec.ID))
		pipe.SRem(ctx, r.activeKey(rec.Challenger), rec.ID)
		pipe.SRem(ctx, r.activeKey(rec.Target), rec.ID)
		pipe.ZRem(ctx, r.recentKey(), rec.ID)
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to delete battle %s", input.ID)
	}

	return &DeleteOutput{}, nil
}

// ListActive returns the user's non-terminal battles, oldest first
func (r *redisRepository) ListActive(ctx context.Context, input ListActiveInput) (*ListActiveOutput, error) {
	if input.Username == "" {
		return nil, errors.InvalidArgument(errUsernameEmpty)
	}

	ids, err := r.client.SMembers(ctx, r.activeKey(input.Username)).Result()
	if err != nil {
		return nil, errors.Wrap(err, "failed to list active battles")
	}

	records, err := r.loadMany(ctx, r.client, ids)
	if err != nil {
		return nil, err
	}

	active := make([]*entities.BattleRecord, 0, len(records))
	for _, rec := range records {
		if rec.IsActive() {
			active = append(active, rec)
		}
	}
	sort.Slice(active, func(i, j int) bool {
		return active[i].CreatedAt.Before(active[j].CreatedAt)
	})

	return &ListActiveOutput{Records: active}, nil
}

// ListRecent returns the newest battles, newest first
func (r *redisRepository) ListRecent(ctx context.Context, input ListRecentInput) (*ListRecentOutput, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = 50
	}

	ids, err := r.client.ZRevRange(ctx, r.recentKey(), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, errors.Wrap(err, "failed to list recent battles")
	}

	records, err := r.loadMany(ctx, r.client, ids)
	if err != nil {
		return nil, err
	}

	return &ListRecentOutput{Records: records}, nil
}

// Subscribe opens the user's push channel. The subscription is confirmed
// before returning, so any write after Subscribe returns is delivered.
func (r *redisRepository) Subscribe(ctx context.Context, input SubscribeInput) (*SubscribeOutput, error) {
	if input.Username == "" {
		return nil, errors.InvalidArgument(errUsernameEmpty)
	}

	pubsub := r.client.Subscribe(ctx, r.channel(input.Username))
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, errors.WrapWithCode(err, errors.CodeUnavailable, "failed to subscribe to battle updates")
	}

	out := make(chan *entities.BattleRecord, subscriberBuffer)
	go func() {
		defer close(out)
		defer func() { _ = pubsub.Close() }()

		messages := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-messages:
				if !ok {
					return
				}
				var rec entities.BattleRecord
				if err := json.Unmarshal([]byte(msg.Payload), &rec); err != nil {
					r.logger.Warn("dropping malformed battle event",
						"channel", msg.Channel,
						"error", err)
					continue
				}
				select {
				case out <- &rec:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return &SubscribeOutput{Updates: out, Close: pubsub.Close}, nil
}

// cmdable is the read surface shared by *redis.Tx and the client
type cmdable interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	MGet(ctx context.Context, keys ...string) *redis.SliceCmd
	SMembers(ctx context.Context, key string) *redis.StringSliceCmd
}

func (r *redisRepository) load(ctx context.Context, c cmdable, id string) (*entities.BattleRecord, error) {
	data, err := c.Get(ctx, r.recordKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, errors.NotFoundf("battle %s not found", id)
		}
		return nil, errors.Wrapf(err, "failed to load battle %s", id)
	}

	var rec entities.BattleRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, errors.Wrapf(err, "failed to unmarshal battle %s", id)
	}
	return &rec, nil
}

// loadMany skips ids whose record expired or was deleted
func (r *redisRepository) loadMany(ctx context.Context, c cmdable, ids []string) ([]*entities.BattleRecord, error) {
	if len(ids) == 0 {
		return []*entities.BattleRecord{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = r.recordKey(id)
	}

	values, err := c.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load battles")
	}

	records := make([]*entities.BattleRecord, 0, len(values))
	for i, v := range values {
		s, ok := v.(string)
		if !ok {
			continue
		}
		var rec entities.BattleRecord
		if err := json.Unmarshal([]byte(s), &rec); err != nil {
			r.logger.Warn("skipping malformed battle", "battle_id", ids[i], "error", err)
			continue
		}
		records = append(records, &rec)
	}
	return records, nil
}

func (r *redisRepository) hasActive(ctx context.Context, tx *redis.Tx, username string) (bool, error) {
	ids, err := tx.SMembers(ctx, r.activeKey(username)).Result()
	if err != nil {
		return false, errors.Wrap(err, "failed to read active battles")
	}
	records, err := r.loadMany(ctx, tx, ids)
	if err != nil {
		return false, err
	}
	for _, rec := range records {
		if rec.IsActive() {
			return true, nil
		}
	}
	return false, nil
}

func (r *redisRepository) publish(ctx context.Context, pipe redis.Pipeliner, rec *entities.BattleRecord, payload []byte) {
	pipe.Publish(ctx, r.channel(rec.Challenger), payload)
	pipe.Publish(ctx, r.channel(rec.Target), payload)
}

func (r *redisRepository) watch(ctx context.Context, fn func(*redis.Tx) error, keys ...string) error {
	for attempt := 0; attempt < maxCASAttempts; attempt++ {
		err := r.client.Watch(ctx, fn, keys...)
		if !errors.Is(err, redis.TxFailedErr) {
			return err
		}
		r.logger.Debug("battle transaction conflict, retrying", "keys", keys, "attempt", attempt+1)
	}
	return errors.Aborted("battle was modified concurrently, please retry")
}
