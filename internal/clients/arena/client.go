// Package arena is the player-side gRPC client of the arena service. It
// carries the player's identity on every call and adapts the battle stream to
// a channel for the battle session.
package arena

import (
	"context"
	"io"
	"log/slog"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"

	"github.com/KirkDiggler/rpg-narrator/internal/entities"
	"github.com/KirkDiggler/rpg-narrator/internal/errors"
	"github.com/KirkDiggler/rpg-narrator/internal/handlers/v1alpha1"
	"github.com/KirkDiggler/rpg-narrator/internal/session"
)

const watchBuffer = 16

// Config holds the connection and identity of one player
type Config struct {
	Conn     grpc.ClientConnInterface
	Username string
	Logger   *slog.Logger
}

// Validate validates the config
func (c *Config) Validate() error {
	if c == nil {
		return errors.InvalidArgument("config cannot be nil")
	}
	vb := errors.NewValidationBuilder()
	if c.Conn == nil {
		vb.RequiredField("conn")
	}
	errors.ValidateRequired("username", c.Username, vb)
	return vb.Build()
}

// Client implements session.Arena over gRPC
type Client struct {
	arena    *v1alpha1.ArenaClient
	username string
	logger   *slog.Logger
}

var _ session.Arena = (*Client)(nil)

// New creates a client for one player
func New(cfg *Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		arena:    v1alpha1.NewArenaClient(cfg.Conn),
		username: cfg.Username,
		logger:   logger,
	}, nil
}

// Dial opens a plaintext connection to addr
func Dial(addr string, opts ...grpc.DialOption) (*grpc.ClientConn, error) {
	opts = append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)
	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to connect to %s", addr)
	}
	return conn, nil
}

func (c *Client) outgoing(ctx context.Context) context.Context {
	return metadata.AppendToOutgoingContext(ctx, v1alpha1.UserHeader, c.username)
}

func record(resp *v1alpha1.BattleResponse, err error) (*entities.BattleRecord, error) {
	if err != nil {
		return nil, errors.FromGRPCError(err)
	}
	return resp.Battle, nil
}

// Watch opens the battle stream. The returned channel closes when the
// stream ends for any reason; the caller resubscribes.
func (c *Client) Watch(ctx context.Context) (<-chan *entities.BattleRecord, error) {
	stream, err := c.arena.SubscribeBattles(c.outgoing(ctx), &v1alpha1.SubscribeBattlesRequest{})
	if err != nil {
		return nil, errors.FromGRPCError(err)
	}

	out := make(chan *entities.BattleRecord, watchBuffer)
	go func() {
		defer close(out)
		for {
			resp, err := stream.Recv()
			if err != nil {
				if err != io.EOF && ctx.Err() == nil {
					c.logger.Warn("battle stream ended", "error", errors.FromGRPCError(err))
				}
				return
			}
			if resp.Battle == nil {
				continue
			}
			select {
			case out <- resp.Battle:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

// Current returns the player's pending and running battles
func (c *Client) Current(ctx context.Context) ([]*entities.BattleRecord, error) {
	resp, err := c.arena.Current(c.outgoing(ctx), &v1alpha1.CurrentRequest{})
	if err != nil {
		return nil, errors.FromGRPCError(err)
	}
	return resp.Battles, nil
}

func (c *Client) Get(ctx context.Context, battleID string) (*entities.BattleRecord, error) {
	return record(c.arena.GetBattle(c.outgoing(ctx), &v1alpha1.BattleRequest{BattleID: battleID}))
}

func (c *Client) Challenge(ctx context.Context, target string) (*entities.BattleRecord, error) {
	return record(c.arena.Challenge(c.outgoing(ctx), &v1alpha1.ChallengeRequest{Target: target}))
}

func (c *Client) Accept(ctx context.Context, battleID string) (*entities.BattleRecord, error) {
	return record(c.arena.Accept(c.outgoing(ctx), &v1alpha1.BattleRequest{BattleID: battleID}))
}

func (c *Client) Decline(ctx context.Context, battleID string) (*entities.BattleRecord, error) {
	return record(c.arena.Decline(c.outgoing(ctx), &v1alpha1.BattleRequest{BattleID: battleID}))
}

func (c *Client) Act(ctx context.Context, battleID, skill string) (*entities.BattleRecord, error) {
	return record(c.arena.Act(c.outgoing(ctx), &v1alpha1.ActRequest{BattleID: battleID, Skill: skill}))
}

func (c *Client) Surrender(ctx context.Context, battleID string) (*entities.BattleRecord, error) {
	return record(c.arena.Surrender(c.outgoing(ctx), &v1alpha1.BattleRequest{BattleID: battleID}))
}
