package v1alpha1

import (
	"context"

	"google.golang.org/grpc"

	"github.com/KirkDiggler/rpg-narrator/internal/entities"
	"github.com/KirkDiggler/rpg-narrator/internal/errors"
	"github.com/KirkDiggler/rpg-narrator/internal/orchestrators/social"
)

// SocialServiceName is the fully qualified social service name
const SocialServiceName = packageName + "SocialService"

// PostChatRequest posts to world chat
type PostChatRequest struct {
	Text string `json:"text"`
}

// ChatMessageResponse carries one stored message
type ChatMessageResponse struct {
	Message *entities.ChatMessage `json:"message"`
}

// ListChatRequest reads recent world chat
type ListChatRequest struct {
	Limit int `json:"limit"`
}

// ListChatResponse carries messages, oldest first
type ListChatResponse struct {
	Messages []*entities.ChatMessage `json:"messages"`
}

// LeaderboardRequest reads the top of the ranking
type LeaderboardRequest struct {
	Limit int `json:"limit"`
}

// LeaderboardResponse carries the ranking and the caller's own entry
type LeaderboardResponse struct {
	Entries []*entities.LeaderboardEntry `json:"entries"`
	Caller  *entities.LeaderboardEntry   `json:"caller,omitempty"`
}

// SocialServer is the server API for SocialService
type SocialServer interface {
	PostChat(context.Context, *PostChatRequest) (*ChatMessageResponse, error)
	ListChat(context.Context, *ListChatRequest) (*ListChatResponse, error)
	Leaderboard(context.Context, *LeaderboardRequest) (*LeaderboardResponse, error)
}

// SocialServiceDesc describes SocialService for grpc.ServiceRegistrar
var SocialServiceDesc = grpc.ServiceDesc{
	ServiceName: SocialServiceName,
	HandlerType: (*SocialServer)(nil),
	Methods: []grpc.MethodDesc{
		unary(SocialServiceName, "PostChat", SocialServer.PostChat),
		unary(SocialServiceName, "ListChat", SocialServer.ListChat),
		unary(SocialServiceName, "Leaderboard", SocialServer.Leaderboard),
	},
	Metadata: "rpgnarrator/v1alpha1/social",
}

// RegisterSocialServer registers srv on s
func RegisterSocialServer(s grpc.ServiceRegistrar, srv SocialServer) {
	s.RegisterService(&SocialServiceDesc, srv)
}

// SocialHandlerConfig holds dependencies for the social handler
type SocialHandlerConfig struct {
	SocialService social.Service
}

// Validate ensures all required dependencies are present
func (c *SocialHandlerConfig) Validate() error {
	if c == nil {
		return errors.InvalidArgument("config cannot be nil")
	}
	if c.SocialService == nil {
		return errors.InvalidArgument("social service is required")
	}
	return nil
}

// SocialHandler implements SocialServer on the social orchestrator
type SocialHandler struct {
	social social.Service
}

var _ SocialServer = (*SocialHandler)(nil)

// NewSocialHandler creates a new social handler with the given configuration
func NewSocialHandler(cfg *SocialHandlerConfig) (*SocialHandler, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &SocialHandler{social: cfg.SocialService}, nil
}

// PostChat posts the caller's message
func (h *SocialHandler) PostChat(ctx context.Context, req *PostChatRequest) (*ChatMessageResponse, error) {
	caller, err := CallerFrom(ctx)
	if err != nil {
		return nil, errors.ToGRPCError(err)
	}
	out, err := h.social.PostChat(ctx, &social.PostChatInput{Caller: caller, Text: req.Text})
	if err != nil {
		return nil, errors.ToGRPCError(err)
	}
	return &ChatMessageResponse{Message: out.Message}, nil
}

// ListChat returns recent world chat
func (h *SocialHandler) ListChat(ctx context.Context, req *ListChatRequest) (*ListChatResponse, error) {
	caller, err := CallerFrom(ctx)
	if err != nil {
		return nil, errors.ToGRPCError(err)
	}
	out, err := h.social.ListChat(ctx, &social.ListChatInput{Caller: caller, Limit: req.Limit})
	if err != nil {
		return nil, errors.ToGRPCError(err)
	}
	return &ListChatResponse{Messages: out.Messages}, nil
}

// Leaderboard returns the ranking with the caller's own rank
func (h *SocialHandler) Leaderboard(ctx context.Context, req *LeaderboardRequest) (*LeaderboardResponse, error) {
	caller, err := CallerFrom(ctx)
	if err != nil {
		return nil, errors.ToGRPCError(err)
	}
	out, err := h.social.Leaderboard(ctx, &social.LeaderboardInput{Caller: caller, Limit: req.Limit})
	if err != nil {
		return nil, errors.ToGRPCError(err)
	}
	return &LeaderboardResponse{Entries: out.Entries, Caller: out.Caller}, nil
}

// SocialClient is the client API for SocialService
type SocialClient struct {
	cc grpc.ClientConnInterface
}

// NewSocialClient wraps a connection
func NewSocialClient(cc grpc.ClientConnInterface) *SocialClient {
	return &SocialClient{cc: cc}
}

func (c *SocialClient) PostChat(ctx context.Context, in *PostChatRequest, opts ...grpc.CallOption) (*ChatMessageResponse, error) {
	return invoke[PostChatRequest, ChatMessageResponse](ctx, c.cc, SocialServiceName, "PostChat", in, opts...)
}

func (c *SocialClient) ListChat(ctx context.Context, in *ListChatRequest, opts ...grpc.CallOption) (*ListChatResponse, error) {
	return invoke[ListChatRequest, ListChatResponse](ctx, c.cc, SocialServiceName, "ListChat", in, opts...)
}

func (c *SocialClient) Leaderboard(ctx context.Context, in *LeaderboardRequest, opts ...grpc.CallOption) (*LeaderboardResponse, error) {
	return invoke[LeaderboardRequest, LeaderboardResponse](ctx, c.cc, SocialServiceName, "Leaderboard", in, opts...)
}
