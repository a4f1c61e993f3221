package narrative

//go:generate mockgen -destination=mock/mock_client.go -package=narrativemock github.com/KirkDiggler/rpg-narrator/internal/clients/narrative Client

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/sashabaranov/go-openai/jsonschema"

	"github.com/KirkDiggler/rpg-narrator/internal/entities"
	"github.com/KirkDiggler/rpg-narrator/internal/errors"
	"github.com/KirkDiggler/rpg-narrator/internal/pkg/clock"
)

// DefaultCooldown is how long the primary tier rests after a failure
const DefaultCooldown = 60 * time.Second

// Client is what the game loop needs from the narrative backend
type Client interface {
	// Generate never fails on backend outage; it degrades to FallbackText
	Generate(ctx context.Context, input *GenerateInput) (*GenerateOutput, error)
	AnalyzeStatus(ctx context.Context, input *AnalyzeInput) (*AnalyzeOutput, error)
	Appraise(ctx context.Context, input *AppraiseInput) (*AppraiseOutput, error)
	Scan(ctx context.Context, input *ScanInput) (*ScanOutput, error)
	AnalyzeEntity(ctx context.Context, input *AnalyzeEntityInput) (*AnalyzeEntityOutput, error)
	// ActiveTier names the tier the next call starts from
	ActiveTier() string
}

// Recorder observes every tier call
type Recorder interface {
	ObserveBackendCall(tier, operation string, err error, elapsed time.Duration)
}

type noopRecorder struct{}

func (noopRecorder) ObserveBackendCall(string, string, error, time.Duration) {}

// RouterConfig configures the tier router
type RouterConfig struct {
	Tiers    []Backend
	Cooldown time.Duration
	Clock    clock.Clock
	Logger   *slog.Logger
	Recorder Recorder
}

// Validate validates the config
func (c *RouterConfig) Validate() error {
	if c == nil {
		return errors.InvalidArgument("config cannot be nil")
	}
	vb := errors.NewValidationBuilder()
	if len(c.Tiers) == 0 {
		vb.RequiredField("tiers")
	}
	for _, t := range c.Tiers {
		if t == nil {
			vb.Field("tiers", "must not contain nil backends")
			break
		}
	}
	if c.Cooldown < 0 {
		vb.Field("cooldown", "must not be negative")
	}
	return vb.Build()
}

// Router is the BackendRouter: an ordered tier list with sticky fallback.
// After a failure later calls start at the next tier; once the primary has
// rested for Cooldown it is tried first again.
type Router struct {
	tiers    []Backend
	cooldown time.Duration
	clock    clock.Clock
	logger   *slog.Logger
	recorder Recorder

	mu       sync.Mutex
	current  int
	failedAt []time.Time
}

// NewRouter creates a router over the given tiers
func NewRouter(cfg *RouterConfig) (Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	r := &Router{
		tiers:    append([]Backend(nil), cfg.Tiers...),
		cooldown: cfg.Cooldown,
		clock:    cfg.Clock,
		logger:   cfg.Logger,
		recorder: cfg.Recorder,
		failedAt: make([]time.Time, len(cfg.Tiers)),
	}
	if r.cooldown == 0 {
		r.cooldown = DefaultCooldown
	}
	if r.clock == nil {
		r.clock = clock.New()
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	if r.recorder == nil {
		r.recorder = noopRecorder{}
	}
	return r, nil
}

var _ Client = (*Router)(nil)

// ActiveTier names the tier the next call starts from, or "" when every tier
// is exhausted and the primary is still cooling down
func (r *Router) ActiveTier() string {
	i := r.begin()
	if i >= len(r.tiers) {
		return ""
	}
	return r.tiers[i].Name()
}

func (r *Router) begin() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.current > 0 && r.clock.Now().Sub(r.failedAt[0]) >= r.cooldown {
		r.current = 0
	}
	return r.current
}

func (r *Router) succeeded(i int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.current = i
}

func (r *Router) failed(i int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failedAt[i] = r.clock.Now()
	r.current = i + 1
}

// call runs req against the tiers in order. decode, when set, must accept the
// reply or the tier counts as failed.
func (r *Router) call(ctx context.Context, req *Request, decode func(string) error) (string, string, error) {
	start := r.begin()
	if start >= len(r.tiers) {
		return "", "", errors.Unavailable("all narrative tiers are cooling down")
	}

	var lastErr error
	for i := start; i < len(r.tiers); i++ {
		tier := r.tiers[i]
		began := r.clock.Now()

		text, err := tier.Complete(ctx, req)
		if err == nil && decode != nil {
			if derr := decode(stripFences(text)); derr != nil {
				err = errors.WrapWithCode(derr, errors.CodeUnavailable, "reply does not match schema")
			}
		}
		r.recorder.ObserveBackendCall(tier.Name(), req.Operation, err, r.clock.Now().Sub(began))

		if err == nil {
			r.succeeded(i)
			return tier.Name(), text, nil
		}

		r.logger.Warn("narrative tier failed",
			"operation", req.Operation,
			"tier", tier.Name(),
			"error", err)
		r.failed(i)
		lastErr = err

		if ctx.Err() != nil {
			break
		}
	}

	return "", "", errors.WrapWithCode(lastErr, errors.CodeUnavailable, "all narrative tiers failed")
}

// stripFences drops a markdown code fence some providers wrap JSON in
func stripFences(text string) string {
	t := strings.TrimSpace(text)
	if !strings.HasPrefix(t, "```") {
		return t
	}
	t = strings.TrimPrefix(t, "```")
	if nl := strings.IndexByte(t, '\n'); nl >= 0 {
		t = t[nl+1:]
	}
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(t), "```"))
}

func schemaDecoder[T any](schema *jsonschema.Definition, out *T) func(string) error {
	return func(text string) error {
		var v T
		if err := schema.Unmarshal(text, &v); err != nil {
			return err
		}
		*out = v
		return nil
	}
}

// GenerateInput contains one narrative turn
type GenerateInput struct {
	Character entities.Character
	History   []entities.ChatTurn
	Message   string
	Settings  entities.Settings
}

// GenerateOutput contains the narration. Degraded marks the fallback text.
type GenerateOutput struct {
	Text     string
	Tier     string
	Degraded bool
}

// Generate sends the system prompt, the last 20 turns and the new message
func (r *Router) Generate(ctx context.Context, input *GenerateInput) (*GenerateOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input cannot be nil")
	}

	system, err := SystemPrompt(input.Character, input.Settings)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build system prompt")
	}

	history := recent(input.History, generateHistoryLimit)
	messages := make([]Message, 0, len(history)+1)
	for _, turn := range history {
		messages = append(messages, Message{Role: turn.Role, Text: turn.Text})
	}
	messages = append(messages, Message{Role: entities.ChatRoleUser, Text: input.Message})

	tier, text, err := r.call(ctx, &Request{
		Operation: "generate",
		System:    system,
		Messages:  messages,
	}, nil)
	if err != nil {
		return &GenerateOutput{Text: FallbackText, Degraded: true}, nil
	}

	return &GenerateOutput{Text: text, Tier: tier}, nil
}

// AnalyzeInput contains the state an analysis starts from
type AnalyzeInput struct {
	Status   entities.CharacterStatus
	History  []entities.ChatTurn
	Firewall bool
}

// AnalyzeOutput contains the proposed status; it is untrusted
type AnalyzeOutput struct {
	Update *entities.StatusUpdate
	Tier   string
}

// AnalyzeStatus asks for a schema-conforming status update. Unlike Generate
// it reports Unavailable when every tier failed.
func (r *Router) AnalyzeStatus(ctx context.Context, input *AnalyzeInput) (*AnalyzeOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input cannot be nil")
	}

	prompt, err := analyzeRequestText(input.Status, input.History, input.Firewall)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build analyze prompt")
	}

	var update entities.StatusUpdate
	tier, _, err := r.call(ctx, &Request{
		Operation:  "analyze",
		Messages:   []Message{{Role: entities.ChatRoleUser, Text: prompt}},
		Schema:     statusSchema,
		SchemaName: "character_status",
	}, schemaDecoder(statusSchema, &update))
	if err != nil {
		return nil, err
	}

	return &AnalyzeOutput{Update: &update, Tier: tier}, nil
}

// AppraiseInput contains the story so far
type AppraiseInput struct {
	History []entities.ChatTurn
}

// AppraiseOutput contains the appraisal
type AppraiseOutput struct {
	Appraisal *Appraisal
}

func (r *Router) Appraise(ctx context.Context, input *AppraiseInput) (*AppraiseOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input cannot be nil")
	}

	prompt, err := render(appraiseTmpl, map[string]any{"History": transcript(input.History, contextHistoryLimit)})
	if err != nil {
		return nil, errors.Wrap(err, "failed to build appraise prompt")
	}

	var out Appraisal
	_, _, err = r.call(ctx, &Request{
		Operation:  "appraise",
		Messages:   []Message{{Role: entities.ChatRoleUser, Text: prompt}},
		Schema:     appraisalSchema,
		SchemaName: "appraisal",
	}, schemaDecoder(appraisalSchema, &out))
	if err != nil {
		return nil, err
	}
	return &AppraiseOutput{Appraisal: &out}, nil
}

// ScanInput contains the story so far
type ScanInput struct {
	History []entities.ChatTurn
}

// ScanOutput contains what the radar picked up
type ScanOutput struct {
	Entities []RadarEntity
}

func (r *Router) Scan(ctx context.Context, input *ScanInput) (*ScanOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input cannot be nil")
	}

	prompt, err := render(scanTmpl, map[string]any{"History": transcript(input.History, contextHistoryLimit)})
	if err != nil {
		return nil, errors.Wrap(err, "failed to build scan prompt")
	}

	var report radarReport
	_, _, err = r.call(ctx, &Request{
		Operation:  "scan",
		Messages:   []Message{{Role: entities.ChatRoleUser, Text: prompt}},
		Schema:     radarSchema,
		SchemaName: "radar_report",
	}, schemaDecoder(radarSchema, &report))
	if err != nil {
		return nil, err
	}
	if report.Entities == nil {
		report.Entities = []RadarEntity{}
	}
	return &ScanOutput{Entities: report.Entities}, nil
}

// AnalyzeEntityInput names the term to explain
type AnalyzeEntityInput struct {
	Term string
}

// AnalyzeEntityOutput contains the explanation
type AnalyzeEntityOutput struct {
	Entity *EntityAnalysis
}

func (r *Router) AnalyzeEntity(ctx context.Context, input *AnalyzeEntityInput) (*AnalyzeEntityOutput, error) {
	if input == nil || strings.TrimSpace(input.Term) == "" {
		return nil, errors.InvalidArgument("term cannot be empty")
	}

	prompt, err := render(entityTmpl, map[string]any{"Term": input.Term})
	if err != nil {
		return nil, errors.Wrap(err, "failed to build entity prompt")
	}

	var out EntityAnalysis
	_, _, err = r.call(ctx, &Request{
		Operation:  "entity",
		Messages:   []Message{{Role: entities.ChatRoleUser, Text: prompt}},
		Schema:     entitySchema,
		SchemaName: "entity_analysis",
	}, schemaDecoder(entitySchema, &out))
	if err != nil {
		return nil, err
	}
	return &AnalyzeEntityOutput{Entity: &out}, nil
}
