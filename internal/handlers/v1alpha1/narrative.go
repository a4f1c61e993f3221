package v1alpha1

import (
	"context"
	"time"

	"google.golang.org/grpc"

	narrativeclient "github.com/KirkDiggler/rpg-narrator/internal/clients/narrative"
	"github.com/KirkDiggler/rpg-narrator/internal/entities"
	"github.com/KirkDiggler/rpg-narrator/internal/errors"
	"github.com/KirkDiggler/rpg-narrator/internal/orchestrators/narrative"
)

// NarrativeServiceName is the fully qualified narrative service name
const NarrativeServiceName = packageName + "NarrativeService"

// StartGameRequest creates the caller's character
type StartGameRequest struct {
	Name        string `json:"name"`
	Race        string `json:"race"`
	UniqueSkill string `json:"unique_skill"`
	Location    string `json:"location"`
	Difficulty  string `json:"difficulty"`
}

// SubmitRequest is one free-text turn or command
type SubmitRequest struct {
	Message string `json:"message"`
}

// GameRequest names no more than the caller
type GameRequest struct{}

// UseSkillRequest activates a learned skill
type UseSkillRequest struct {
	Skill string `json:"skill"`
}

// UseItemRequest consumes one item
type UseItemRequest struct {
	Item string `json:"item"`
}

// EquipSkillsRequest replaces the equipped set
type EquipSkillsRequest struct {
	Skills []string `json:"skills"`
}

// AnalyzeEntityRequest names a term from the story
type AnalyzeEntityRequest struct {
	Term string `json:"term"`
}

// GameState is the wire form of a single-player game
type GameState struct {
	Character entities.Character  `json:"character"`
	History   []entities.ChatTurn `json:"history"`
	Settings  entities.Settings   `json:"settings"`
	Dead      bool                `json:"dead"`
	LastSaved time.Time           `json:"last_saved"`
}

// GameStateResponse carries the game state
type GameStateResponse struct {
	State    *GameState `json:"state"`
	Degraded bool       `json:"degraded,omitempty"`
}

// TurnResponse is the result of one turn
type TurnResponse struct {
	State    *GameState        `json:"state"`
	Reply    string            `json:"reply"`
	Degraded bool              `json:"degraded,omitempty"`
	Command  bool              `json:"command,omitempty"`
	Notices  []entities.Notice `json:"notices,omitempty"`
	Died     bool              `json:"died,omitempty"`
}

// SaveResponse carries the save time
type SaveResponse struct {
	LastSaved time.Time `json:"last_saved"`
}

// AppraiseResponse carries an appraisal
type AppraiseResponse struct {
	Appraisal *narrativeclient.Appraisal `json:"appraisal"`
}

// ScanResponse carries a radar reading
type ScanResponse struct {
	Entities []narrativeclient.RadarEntity `json:"entities"`
}

// AnalyzeEntityResponse carries an explanation
type AnalyzeEntityResponse struct {
	Entity *narrativeclient.EntityAnalysis `json:"entity"`
}

// NarrativeServer is the server API for NarrativeService
type NarrativeServer interface {
	StartGame(context.Context, *StartGameRequest) (*GameStateResponse, error)
	Submit(context.Context, *SubmitRequest) (*TurnResponse, error)
	GetState(context.Context, *GameRequest) (*GameStateResponse, error)
	UseSkill(context.Context, *UseSkillRequest) (*TurnResponse, error)
	UseItem(context.Context, *UseItemRequest) (*TurnResponse, error)
	EquipSkills(context.Context, *EquipSkillsRequest) (*GameStateResponse, error)
	Save(context.Context, *GameRequest) (*SaveResponse, error)
	AcknowledgeDeath(context.Context, *GameRequest) (*Empty, error)
	Appraise(context.Context, *GameRequest) (*AppraiseResponse, error)
	Scan(context.Context, *GameRequest) (*ScanResponse, error)
	AnalyzeEntity(context.Context, *AnalyzeEntityRequest) (*AnalyzeEntityResponse, error)
}

// NarrativeServiceDesc describes NarrativeService for grpc.ServiceRegistrar
var NarrativeServiceDesc = grpc.ServiceDesc{
	ServiceName: NarrativeServiceName,
	HandlerType: (*NarrativeServer)(nil),
	Methods: []grpc.MethodDesc{
		unary(NarrativeServiceName, "StartGame", NarrativeServer.StartGame),
		unary(NarrativeServiceName, "Submit", NarrativeServer.Submit),
		unary(NarrativeServiceName, "GetState", NarrativeServer.GetState),
		unary(NarrativeServiceName, "UseSkill", NarrativeServer.UseSkill),
		unary(NarrativeServiceName, "UseItem", NarrativeServer.UseItem),
		unary(NarrativeServiceName, "EquipSkills", NarrativeServer.EquipSkills),
		unary(NarrativeServiceName, "Save", NarrativeServer.Save),
		unary(NarrativeServiceName, "AcknowledgeDeath", NarrativeServer.AcknowledgeDeath),
		unary(NarrativeServiceName, "Appraise", NarrativeServer.Appraise),
		unary(NarrativeServiceName, "Scan", NarrativeServer.Scan),
		unary(NarrativeServiceName, "AnalyzeEntity", NarrativeServer.AnalyzeEntity),
	},
	Metadata: "rpgnarrator/v1alpha1/narrative",
}

// RegisterNarrativeServer registers srv on s
func RegisterNarrativeServer(s grpc.ServiceRegistrar, srv NarrativeServer) {
	s.RegisterService(&NarrativeServiceDesc, srv)
}

// NarrativeHandlerConfig holds dependencies for the narrative handler
type NarrativeHandlerConfig struct {
	NarrativeService narrative.Service
}

// Validate ensures all required dependencies are present
func (c *NarrativeHandlerConfig) Validate() error {
	if c == nil {
		return errors.InvalidArgument("config cannot be nil")
	}
	if c.NarrativeService == nil {
		return errors.InvalidArgument("narrative service is required")
	}
	return nil
}

// NarrativeHandler implements NarrativeServer on the narrative orchestrator
type NarrativeHandler struct {
	narrative narrative.Service
}

var _ NarrativeServer = (*NarrativeHandler)(nil)

// NewNarrativeHandler creates a new narrative handler with the given configuration
func NewNarrativeHandler(cfg *NarrativeHandlerConfig) (*NarrativeHandler, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &NarrativeHandler{narrative: cfg.NarrativeService}, nil
}

func toGameState(s *narrative.GameState) *GameState {
	if s == nil {
		return nil
	}
	return &GameState{
		Character: s.Character,
		History:   s.History,
		Settings:  s.Settings,
		Dead:      s.Dead,
		LastSaved: s.LastSaved,
	}
}

func turnResponse(out *narrative.TurnOutput, err error) (*TurnResponse, error) {
	if err != nil {
		return nil, errors.ToGRPCError(err)
	}
	return &TurnResponse{
		State:    toGameState(out.State),
		Reply:    out.Reply,
		Degraded: out.Degraded,
		Command:  out.Command,
		Notices:  out.Notices,
		Died:     out.Died,
	}, nil
}

// StartGame creates the caller's character and plays the intro
func (h *NarrativeHandler) StartGame(ctx context.Context, req *StartGameRequest) (*GameStateResponse, error) {
	caller, err := CallerFrom(ctx)
	if err != nil {
		return nil, errors.ToGRPCError(err)
	}
	out, err := h.narrative.StartGame(ctx, &narrative.StartGameInput{
		Username:    caller,
		Name:        req.Name,
		Race:        req.Race,
		UniqueSkill: req.UniqueSkill,
		Location:    req.Location,
		Difficulty:  req.Difficulty,
	})
	if err != nil {
		return nil, errors.ToGRPCError(err)
	}
	return &GameStateResponse{State: toGameState(out.State), Degraded: out.Degraded}, nil
}

// Submit plays one turn
func (h *NarrativeHandler) Submit(ctx context.Context, req *SubmitRequest) (*TurnResponse, error) {
	caller, err := CallerFrom(ctx)
	if err != nil {
		return nil, errors.ToGRPCError(err)
	}
	return turnResponse(h.narrative.Submit(ctx, &narrative.SubmitInput{Username: caller, Message: req.Message}))
}

// GetState returns the caller's game
func (h *NarrativeHandler) GetState(ctx context.Context, _ *GameRequest) (*GameStateResponse, error) {
	caller, err := CallerFrom(ctx)
	if err != nil {
		return nil, errors.ToGRPCError(err)
	}
	out, err := h.narrative.GetState(ctx, &narrative.GetStateInput{Username: caller})
	if err != nil {
		return nil, errors.ToGRPCError(err)
	}
	return &GameStateResponse{State: toGameState(out.State)}, nil
}

// UseSkill activates a skill as a turn
func (h *NarrativeHandler) UseSkill(ctx context.Context, req *UseSkillRequest) (*TurnResponse, error) {
	caller, err := CallerFrom(ctx)
	if err != nil {
		return nil, errors.ToGRPCError(err)
	}
	return turnResponse(h.narrative.UseSkill(ctx, &narrative.UseSkillInput{Username: caller, Skill: req.Skill}))
}

// UseItem consumes an item as a turn
func (h *NarrativeHandler) UseItem(ctx context.Context, req *UseItemRequest) (*TurnResponse, error) {
	caller, err := CallerFrom(ctx)
	if err != nil {
		return nil, errors.ToGRPCError(err)
	}
	return turnResponse(h.narrative.UseItem(ctx, &narrative.UseItemInput{Username: caller, Item: req.Item}))
}

// EquipSkills replaces the equipped skills
func (h *NarrativeHandler) EquipSkills(ctx context.Context, req *EquipSkillsRequest) (*GameStateResponse, error) {
	caller, err := CallerFrom(ctx)
	if err != nil {
		return nil, errors.ToGRPCError(err)
	}
	out, err := h.narrative.EquipSkills(ctx, &narrative.EquipSkillsInput{Username: caller, Skills: req.Skills})
	if err != nil {
		return nil, errors.ToGRPCError(err)
	}
	return &GameStateResponse{State: toGameState(out.State)}, nil
}

// Save persists the caller's game now
func (h *NarrativeHandler) Save(ctx context.Context, _ *GameRequest) (*SaveResponse, error) {
	caller, err := CallerFrom(ctx)
	if err != nil {
		return nil, errors.ToGRPCError(err)
	}
	out, err := h.narrative.Save(ctx, &narrative.SaveInput{Username: caller})
	if err != nil {
		return nil, errors.ToGRPCError(err)
	}
	return &SaveResponse{LastSaved: out.LastSaved}, nil
}

// AcknowledgeDeath deletes a dead character's save
func (h *NarrativeHandler) AcknowledgeDeath(ctx context.Context, _ *GameRequest) (*Empty, error) {
	caller, err := CallerFrom(ctx)
	if err != nil {
		return nil, errors.ToGRPCError(err)
	}
	if _, err := h.narrative.AcknowledgeDeath(ctx, &narrative.AcknowledgeDeathInput{Username: caller}); err != nil {
		return nil, errors.ToGRPCError(err)
	}
	return &Empty{}, nil
}

// Appraise asks for an appraisal of the current scene
func (h *NarrativeHandler) Appraise(ctx context.Context, _ *GameRequest) (*AppraiseResponse, error) {
	caller, err := CallerFrom(ctx)
	if err != nil {
		return nil, errors.ToGRPCError(err)
	}
	out, err := h.narrative.Appraise(ctx, &narrative.AppraiseInput{Username: caller})
	if err != nil {
		return nil, errors.ToGRPCError(err)
	}
	return &AppraiseResponse{Appraisal: out.Appraisal}, nil
}

// Scan asks for a radar reading
func (h *NarrativeHandler) Scan(ctx context.Context, _ *GameRequest) (*ScanResponse, error) {
	caller, err := CallerFrom(ctx)
	if err != nil {
		return nil, errors.ToGRPCError(err)
	}
	out, err := h.narrative.Scan(ctx, &narrative.ScanInput{Username: caller})
	if err != nil {
		return nil, errors.ToGRPCError(err)
	}
	return &ScanResponse{Entities: out.Entities}, nil
}

// AnalyzeEntity explains a term from the story
func (h *NarrativeHandler) AnalyzeEntity(ctx context.Context, req *AnalyzeEntityRequest) (*AnalyzeEntityResponse, error) {
	caller, err := CallerFrom(ctx)
	if err != nil {
		return nil, errors.ToGRPCError(err)
	}
	out, err := h.narrative.AnalyzeEntity(ctx, &narrative.AnalyzeEntityInput{Username: caller, Term: req.Term})
	if err != nil {
		return nil, errors.ToGRPCError(err)
	}
	return &AnalyzeEntityResponse{Entity: out.Entity}, nil
}

// NarrativeClient is the client API for NarrativeService
type NarrativeClient struct {
	cc grpc.ClientConnInterface
}

// NewNarrativeClient wraps a connection
func NewNarrativeClient(cc grpc.ClientConnInterface) *NarrativeClient {
	return &NarrativeClient{cc: cc}
}

func (c *NarrativeClient) StartGame(ctx context.Context, in *StartGameRequest, opts ...grpc.CallOption) (*GameStateResponse, error) {
	return invoke[StartGameRequest, GameStateResponse](ctx, c.cc, NarrativeServiceName, "StartGame", in, opts...)
}

func (c *NarrativeClient) Submit(ctx context.Context, in *SubmitRequest, opts ...grpc.CallOption) (*TurnResponse, error) {
	return invoke[SubmitRequest, TurnResponse](ctx, c.cc, NarrativeServiceName, "Submit", in, opts...)
}

func (c *NarrativeClient) GetState(ctx context.Context, in *GameRequest, opts ...grpc.CallOption) (*GameStateResponse, error) {
	return invoke[GameRequest, GameStateResponse](ctx, c.cc, NarrativeServiceName, "GetState", in, opts...)
}

func (c *NarrativeClient) UseSkill(ctx context.Context, in *UseSkillRequest, opts ...grpc.CallOption) (*TurnResponse, error) {
	return invoke[UseSkillRequest, TurnResponse](ctx, c.cc, NarrativeServiceName, "UseSkill", in, opts...)
}

func (c *NarrativeClient) UseItem(ctx context.Context, in *UseItemRequest, opts ...grpc.CallOption) (*TurnResponse, error) {
	return invoke[UseItemRequest, TurnResponse](ctx, c.cc, NarrativeServiceName, "UseItem", in, opts...)
}

func (c *NarrativeClient) EquipSkills(ctx context.Context, in *EquipSkillsRequest, opts ...grpc.CallOption) (*GameStateResponse, error) {
	return invoke[EquipSkillsRequest, GameStateResponse](ctx, c.cc, NarrativeServiceName, "EquipSkills", in, opts...)
}

func (c *NarrativeClient) Save(ctx context.Context, in *GameRequest, opts ...grpc.CallOption) (*SaveResponse, error) {
	return invoke[GameRequest, SaveResponse](ctx, c.cc, NarrativeServiceName, "Save", in, opts...)
}

func (c *NarrativeClient) AcknowledgeDeath(ctx context.Context, in *GameRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[GameRequest, Empty](ctx, c.cc, NarrativeServiceName, "AcknowledgeDeath", in, opts...)
}

func (c *NarrativeClient) Appraise(ctx context.Context, in *GameRequest, opts ...grpc.CallOption) (*AppraiseResponse, error) {
	return invoke[GameRequest, AppraiseResponse](ctx, c.cc, NarrativeServiceName, "Appraise", in, opts...)
}

func (c *NarrativeClient) Scan(ctx context.Context, in *GameRequest, opts ...grpc.CallOption) (*ScanResponse, error) {
	return invoke[GameRequest, ScanResponse](ctx, c.cc, NarrativeServiceName, "Scan", in, opts...)
}

func (c *NarrativeClient) AnalyzeEntity(ctx context.Context, in *AnalyzeEntityRequest, opts ...grpc.CallOption) (*AnalyzeEntityResponse, error) {
	return invoke[AnalyzeEntityRequest, AnalyzeEntityResponse](ctx, c.cc, NarrativeServiceName, "AnalyzeEntity", in, opts...)
}
