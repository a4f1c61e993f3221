package v1alpha1

import (
	"context"
	"log/slog"

	"google.golang.org/grpc"

	"github.com/KirkDiggler/rpg-narrator/internal/entities"
	"github.com/KirkDiggler/rpg-narrator/internal/errors"
	"github.com/KirkDiggler/rpg-narrator/internal/orchestrators/battle"
)

// ArenaServiceName is the fully qualified arena service name
const ArenaServiceName = packageName + "ArenaService"

// ChallengeRequest challenges another player
type ChallengeRequest struct {
	Target string `json:"target"`
}

// BattleRequest names one battle
type BattleRequest struct {
	BattleID string `json:"battle_id"`
}

// ActRequest is one move
type ActRequest struct {
	BattleID string `json:"battle_id"`
	Skill    string `json:"skill"`
}

// AdminSetHPRequest overrides both sides' hp
type AdminSetHPRequest struct {
	BattleID string `json:"battle_id"`
	P1HP     int    `json:"p1_hp"`
	P2HP     int    `json:"p2_hp"`
}

// CurrentRequest asks for the caller's active battles
type CurrentRequest struct{}

// SubscribeBattlesRequest opens the caller's battle stream
type SubscribeBattlesRequest struct{}

// ListRecentRequest lists the newest battles on the shard
type ListRecentRequest struct {
	Limit int `json:"limit"`
}

// BattleResponse carries one battle record
type BattleResponse struct {
	Battle         *entities.BattleRecord `json:"battle"`
	PenaltyApplied bool                   `json:"penalty_applied,omitempty"`
}

// BattlesResponse carries a list of battle records
type BattlesResponse struct {
	Battles []*entities.BattleRecord `json:"battles"`
}

// Empty is the response of calls with no result
type Empty struct{}

// ArenaServer is the server API for ArenaService
type ArenaServer interface {
	Challenge(context.Context, *ChallengeRequest) (*BattleResponse, error)
	Accept(context.Context, *BattleRequest) (*BattleResponse, error)
	Decline(context.Context, *BattleRequest) (*BattleResponse, error)
	Act(context.Context, *ActRequest) (*BattleResponse, error)
	Surrender(context.Context, *BattleRequest) (*BattleResponse, error)
	GetBattle(context.Context, *BattleRequest) (*BattleResponse, error)
	Current(context.Context, *CurrentRequest) (*BattlesResponse, error)
	SubscribeBattles(*SubscribeBattlesRequest, grpc.ServerStreamingServer[BattleResponse]) error
	AdminStop(context.Context, *BattleRequest) (*BattleResponse, error)
	AdminDelete(context.Context, *BattleRequest) (*Empty, error)
	AdminSetHP(context.Context, *AdminSetHPRequest) (*BattleResponse, error)
	ListRecent(context.Context, *ListRecentRequest) (*BattlesResponse, error)
}

// ArenaServiceDesc describes ArenaService for grpc.ServiceRegistrar
var ArenaServiceDesc = grpc.ServiceDesc{
	ServiceName: ArenaServiceName,
	HandlerType: (*ArenaServer)(nil),
	Methods: []grpc.MethodDesc{
		unary(ArenaServiceName, "Challenge", ArenaServer.Challenge),
		unary(ArenaServiceName, "Accept", ArenaServer.Accept),
		unary(ArenaServiceName, "Decline", ArenaServer.Decline),
		unary(ArenaServiceName, "Act", ArenaServer.Act),
		unary(ArenaServiceName, "Surrender", ArenaServer.Surrender),
		unary(ArenaServiceName, "GetBattle", ArenaServer.GetBattle),
		unary(ArenaServiceName, "Current", ArenaServer.Current),
		unary(ArenaServiceName, "AdminStop", ArenaServer.AdminStop),
		unary(ArenaServiceName, "AdminDelete", ArenaServer.AdminDelete),
		unary(ArenaServiceName, "AdminSetHP", ArenaServer.AdminSetHP),
		unary(ArenaServiceName, "ListRecent", ArenaServer.ListRecent),
	},
	Streams: []grpc.StreamDesc{
		{
			StreamName: "SubscribeBattles",
			Handler: func(srv any, stream grpc.ServerStream) error {
				in := new(SubscribeBattlesRequest)
				if err := stream.RecvMsg(in); err != nil {
					return err
				}
				return srv.(ArenaServer).SubscribeBattles(in, &grpc.GenericServerStream[SubscribeBattlesRequest, BattleResponse]{ServerStream: stream})
			},
			ServerStreams: true,
		},
	},
	Metadata: "rpgnarrator/v1alpha1/arena",
}

// RegisterArenaServer registers srv on s
func RegisterArenaServer(s grpc.ServiceRegistrar, srv ArenaServer) {
	s.RegisterService(&ArenaServiceDesc, srv)
}

// ArenaHandlerConfig holds dependencies for the arena handler
type ArenaHandlerConfig struct {
	BattleService battle.Service
	Logger        *slog.Logger
}

// Validate ensures all required dependencies are present
func (c *ArenaHandlerConfig) Validate() error {
	if c == nil {
		return errors.InvalidArgument("config cannot be nil")
	}
	if c.BattleService == nil {
		return errors.InvalidArgument("battle service is required")
	}
	return nil
}

// ArenaHandler implements ArenaServer on the battle orchestrator
type ArenaHandler struct {
	battles battle.Service
	logger  *slog.Logger
}

var _ ArenaServer = (*ArenaHandler)(nil)

// NewArenaHandler creates a new arena handler with the given configuration
func NewArenaHandler(cfg *ArenaHandlerConfig) (*ArenaHandler, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &ArenaHandler{battles: cfg.BattleService, logger: logger}, nil
}

func battleResponse(out *battle.BattleOutput, err error) (*BattleResponse, error) {
	if err != nil {
		return nil, errors.ToGRPCError(err)
	}
	return &BattleResponse{Battle: out.Record}, nil
}

// Challenge sends a challenge from the caller
func (h *ArenaHandler) Challenge(ctx context.Context, req *ChallengeRequest) (*BattleResponse, error) {
	caller, err := CallerFrom(ctx)
	if err != nil {
		return nil, errors.ToGRPCError(err)
	}
	if req.Target == "" {
		return nil, errors.ToGRPCError(errors.InvalidArgument("target is required"))
	}
	return battleResponse(h.battles.Challenge(ctx, &battle.ChallengeInput{Caller: caller, Target: req.Target}))
}

func (h *ArenaHandler) battleInput(ctx context.Context, req *BattleRequest) (*battle.BattleInput, error) {
	caller, err := CallerFrom(ctx)
	if err != nil {
		return nil, err
	}
	if req.BattleID == "" {
		return nil, errors.InvalidArgument("battle_id is required")
	}
	return &battle.BattleInput{Caller: caller, BattleID: req.BattleID}, nil
}

// Accept starts a pending battle addressed to the caller
func (h *ArenaHandler) Accept(ctx context.Context, req *BattleRequest) (*BattleResponse, error) {
	in, err := h.battleInput(ctx, req)
	if err != nil {
		return nil, errors.ToGRPCError(err)
	}
	return battleResponse(h.battles.Accept(ctx, in))
}

// Decline refuses a pending battle addressed to the caller
func (h *ArenaHandler) Decline(ctx context.Context, req *BattleRequest) (*BattleResponse, error) {
	in, err := h.battleInput(ctx, req)
	if err != nil {
		return nil, errors.ToGRPCError(err)
	}
	return battleResponse(h.battles.Decline(ctx, in))
}

// Act submits the caller's move
func (h *ArenaHandler) Act(ctx context.Context, req *ActRequest) (*BattleResponse, error) {
	in, err := h.battleInput(ctx, &BattleRequest{BattleID: req.BattleID})
	if err != nil {
		return nil, errors.ToGRPCError(err)
	}
	return battleResponse(h.battles.Act(ctx, &battle.ActInput{
		Caller:   in.Caller,
		BattleID: in.BattleID,
		Skill:    req.Skill,
	}))
}

// Surrender ends the battle in the opponent's favour
func (h *ArenaHandler) Surrender(ctx context.Context, req *BattleRequest) (*BattleResponse, error) {
	in, err := h.battleInput(ctx, req)
	if err != nil {
		return nil, errors.ToGRPCError(err)
	}
	out, err := h.battles.Surrender(ctx, in)
	if err != nil {
		return nil, errors.ToGRPCError(err)
	}
	return &BattleResponse{Battle: out.Record, PenaltyApplied: out.PenaltyApplied}, nil
}

// GetBattle returns one battle the caller can see
func (h *ArenaHandler) GetBattle(ctx context.Context, req *BattleRequest) (*BattleResponse, error) {
	in, err := h.battleInput(ctx, req)
	if err != nil {
		return nil, errors.ToGRPCError(err)
	}
	return battleResponse(h.battles.GetBattle(ctx, in))
}

// Current returns the caller's pending and running battles
func (h *ArenaHandler) Current(ctx context.Context, _ *CurrentRequest) (*BattlesResponse, error) {
	caller, err := CallerFrom(ctx)
	if err != nil {
		return nil, errors.ToGRPCError(err)
	}
	out, err := h.battles.Current(ctx, &battle.CurrentInput{Caller: caller})
	if err != nil {
		return nil, errors.ToGRPCError(err)
	}
	return &BattlesResponse{Battles: out.Records}, nil
}

// SubscribeBattles streams every write to a battle involving the caller
// until the client goes away
func (h *ArenaHandler) SubscribeBattles(_ *SubscribeBattlesRequest, stream grpc.ServerStreamingServer[BattleResponse]) error {
	ctx := stream.Context()
	caller, err := CallerFrom(ctx)
	if err != nil {
		return errors.ToGRPCError(err)
	}

	sub, err := h.battles.Subscribe(ctx, &battle.SubscribeInput{Caller: caller})
	if err != nil {
		return errors.ToGRPCError(err)
	}
	defer func() {
		if err := sub.Close(); err != nil {
			h.logger.Warn("failed to close battle subscription", "caller", caller, "error", err)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case rec, ok := <-sub.Updates:
			if !ok {
				return nil
			}
			if err := stream.Send(&BattleResponse{Battle: rec}); err != nil {
				return err
			}
		}
	}
}

// AdminStop force-finishes a battle
func (h *ArenaHandler) AdminStop(ctx context.Context, req *BattleRequest) (*BattleResponse, error) {
	in, err := h.battleInput(ctx, req)
	if err != nil {
		return nil, errors.ToGRPCError(err)
	}
	return battleResponse(h.battles.AdminStop(ctx, in))
}

// AdminDelete removes a battle record
func (h *ArenaHandler) AdminDelete(ctx context.Context, req *BattleRequest) (*Empty, error) {
	in, err := h.battleInput(ctx, req)
	if err != nil {
		return nil, errors.ToGRPCError(err)
	}
	if err := h.battles.AdminDelete(ctx, in); err != nil {
		return nil, errors.ToGRPCError(err)
	}
	return &Empty{}, nil
}

// AdminSetHP overrides both sides' hp
func (h *ArenaHandler) AdminSetHP(ctx context.Context, req *AdminSetHPRequest) (*BattleResponse, error) {
	in, err := h.battleInput(ctx, &BattleRequest{BattleID: req.BattleID})
	if err != nil {
		return nil, errors.ToGRPCError(err)
	}
	return battleResponse(h.battles.AdminSetHP(ctx, &battle.AdminSetHPInput{
		Caller:   in.Caller,
		BattleID: in.BattleID,
		P1HP:     req.P1HP,
		P2HP:     req.P2HP,
	}))
}

// ListRecent lists the newest battles for admins
func (h *ArenaHandler) ListRecent(ctx context.Context, req *ListRecentRequest) (*BattlesResponse, error) {
	caller, err := CallerFrom(ctx)
	if err != nil {
		return nil, errors.ToGRPCError(err)
	}
	out, err := h.battles.ListRecent(ctx, &battle.ListRecentInput{Caller: caller, Limit: req.Limit})
	if err != nil {
		return nil, errors.ToGRPCError(err)
	}
	return &BattlesResponse{Battles: out.Records}, nil
}

// ArenaClient is the client API for ArenaService
type ArenaClient struct {
	cc grpc.ClientConnInterface
}

// NewArenaClient wraps a connection
func NewArenaClient(cc grpc.ClientConnInterface) *ArenaClient {
	return &ArenaClient{cc: cc}
}

func (c *ArenaClient) Challenge(ctx context.Context, in *ChallengeRequest, opts ...grpc.CallOption) (*BattleResponse, error) {
	return invoke[ChallengeRequest, BattleResponse](ctx, c.cc, ArenaServiceName, "Challenge", in, opts...)
}

func (c *ArenaClient) Accept(ctx context.Context, in *BattleRequest, opts ...grpc.CallOption) (*BattleResponse, error) {
	return invoke[BattleRequest, BattleResponse](ctx, c.cc, ArenaServiceName, "Accept", in, opts...)
}

func (c *ArenaClient) Decline(ctx context.Context, in *BattleRequest, opts ...grpc.CallOption) (*BattleResponse, error) {
	return invoke[BattleRequest, BattleResponse](ctx, c.cc, ArenaServiceName, "Decline", in, opts...)
}

func (c *ArenaClient) Act(ctx context.Context, in *ActRequest, opts ...grpc.CallOption) (*BattleResponse, error) {
	return invoke[ActRequest, BattleResponse](ctx, c.cc, ArenaServiceName, "Act", in, opts...)
}

func (c *ArenaClient) Surrender(ctx context.Context, in *BattleRequest, opts ...grpc.CallOption) (*BattleResponse, error) {
	return invoke[BattleRequest, BattleResponse](ctx, c.cc, ArenaServiceName, "Surrender", in, opts...)
}

func (c *ArenaClient) GetBattle(ctx context.Context, in *BattleRequest, opts ...grpc.CallOption) (*BattleResponse, error) {
	return invoke[BattleRequest, BattleResponse](ctx, c.cc, ArenaServiceName, "GetBattle", in, opts...)
}

func (c *ArenaClient) Current(ctx context.Context, in *CurrentRequest, opts ...grpc.CallOption) (*BattlesResponse, error) {
	return invoke[CurrentRequest, BattlesResponse](ctx, c.cc, ArenaServiceName, "Current", in, opts...)
}

func (c *ArenaClient) AdminStop(ctx context.Context, in *BattleRequest, opts ...grpc.CallOption) (*BattleResponse, error) {
	return invoke[BattleRequest, BattleResponse](ctx, c.cc, ArenaServiceName, "AdminStop", in, opts...)
}

func (c *ArenaClient) AdminDelete(ctx context.Context, in *BattleRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[BattleRequest, Empty](ctx, c.cc, ArenaServiceName, "AdminDelete", in, opts...)
}

func (c *ArenaClient) AdminSetHP(ctx context.Context, in *AdminSetHPRequest, opts ...grpc.CallOption) (*BattleResponse, error) {
	return invoke[AdminSetHPRequest, BattleResponse](ctx, c.cc, ArenaServiceName, "AdminSetHP", in, opts...)
}

func (c *ArenaClient) ListRecent(ctx context.Context, in *ListRecentRequest, opts ...grpc.CallOption) (*BattlesResponse, error) {
	return invoke[ListRecentRequest, BattlesResponse](ctx, c.cc, ArenaServiceName, "ListRecent", in, opts...)
}

// SubscribeBattles opens the caller's battle stream
func (c *ArenaClient) SubscribeBattles(ctx context.Context, in *SubscribeBattlesRequest, opts ...grpc.CallOption) (grpc.ServerStreamingClient[BattleResponse], error) {
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	stream, err := c.cc.NewStream(ctx, &ArenaServiceDesc.Streams[0], "/"+ArenaServiceName+"/SubscribeBattles", opts...)
	if err != nil {
		return nil, err
	}
	x := &grpc.GenericClientStream[SubscribeBattlesRequest, BattleResponse]{ClientStream: stream}
	if err := x.ClientStream.SendMsg(in); err != nil {
		return nil, err
	}
	if err := x.ClientStream.CloseSend(); err != nil {
		return nil, err
	}
	return x, nil
}
