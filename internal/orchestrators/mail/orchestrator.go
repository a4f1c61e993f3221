// Package mail implements the mailbox use cases. Attachments reach the save
// through the narrative orchestrator's external write path, keyed per mail, so
// a claim grants at most once even across retries and concurrent claims.
package mail

//go:generate mockgen -destination=mock/mock_service.go -package=mailmock github.com/KirkDiggler/rpg-narrator/internal/orchestrators/mail Service

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/KirkDiggler/rpg-narrator/internal/authz"
	"github.com/KirkDiggler/rpg-narrator/internal/entities"
	"github.com/KirkDiggler/rpg-narrator/internal/errors"
	"github.com/KirkDiggler/rpg-narrator/internal/orchestrators/narrative"
	"github.com/KirkDiggler/rpg-narrator/internal/pkg/clock"
	"github.com/KirkDiggler/rpg-narrator/internal/pkg/idgen"
	"github.com/KirkDiggler/rpg-narrator/internal/reconciler"
	"github.com/KirkDiggler/rpg-narrator/internal/repositories/accounts"
	mailrepo "github.com/KirkDiggler/rpg-narrator/internal/repositories/mail"
)

const (
	maxTitleLength = 120
	maxBodyLength  = 4000
)

// Service defines the mailbox operations
type Service interface {
	Send(ctx context.Context, input *SendInput) (*SendOutput, error)
	List(ctx context.Context, input *ListInput) (*ListOutput, error)
	MarkRead(ctx context.Context, input *MailInput) (*MailOutput, error)
	Claim(ctx context.Context, input *MailInput) (*ClaimOutput, error)
	Delete(ctx context.Context, input *MailInput) error
}

// Config holds the dependencies for the mail orchestrator
type Config struct {
	Mail        mailrepo.Repository
	Accounts    accounts.Repository
	Authz       authz.Authorizer
	Saves       narrative.ExternalWriter
	Reconciler  *reconciler.Reconciler
	IDGenerator idgen.Generator
	Clock       clock.Clock
	ServerID    string
	Logger      *slog.Logger
}

// Validate ensures all required dependencies are provided
func (c *Config) Validate() error {
	if c == nil {
		return errors.InvalidArgument("config cannot be nil")
	}
	vb := errors.NewValidationBuilder()

	if c.Mail == nil {
		vb.RequiredField("Mail")
	}
	if c.Accounts == nil {
		vb.RequiredField("Accounts")
	}
	if c.Authz == nil {
		vb.RequiredField("Authz")
	}
	if c.Saves == nil {
		vb.RequiredField("Saves")
	}
	if c.Reconciler == nil {
		vb.RequiredField("Reconciler")
	}
	if c.IDGenerator == nil {
		vb.RequiredField("IDGenerator")
	}

	return vb.Build()
}

type orchestrator struct {
	mail       mailrepo.Repository
	accounts   accounts.Repository
	authz      authz.Authorizer
	saves      narrative.ExternalWriter
	reconciler *reconciler.Reconciler
	idGen      idgen.Generator
	clock      clock.Clock
	serverID   string
	logger     *slog.Logger
}

// NewOrchestrator creates a new mail orchestrator
func NewOrchestrator(cfg *Config) (Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	o := &orchestrator{
		mail:       cfg.Mail,
		accounts:   cfg.Accounts,
		authz:      cfg.Authz,
		saves:      cfg.Saves,
		reconciler: cfg.Reconciler,
		idGen:      cfg.IDGenerator,
		clock:      cfg.Clock,
		serverID:   cfg.ServerID,
		logger:     cfg.Logger,
	}
	if o.clock == nil {
		o.clock = clock.New()
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	return o, nil
}

func (o *orchestrator) Send(ctx context.Context, input *SendInput) (*SendOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if _, err := o.authz.RequireAdmin(ctx, input.Caller); err != nil {
		return nil, err
	}

	vb := errors.NewValidationBuilder()
	errors.ValidateRequired("recipient", input.Recipient, vb)
	errors.ValidateRequired("title", input.Title, vb)
	errors.ValidateMaxLength("title", input.Title, maxTitleLength, vb)
	errors.ValidateMaxLength("body", input.Body, maxBodyLength, vb)
	if a := input.Attachment; a != nil {
		errors.ValidateRequired("attachment.name", a.Name, vb)
		errors.ValidateEnum("attachment.type", string(a.Type),
			[]string{string(entities.AttachmentItem), string(entities.AttachmentSkill)}, vb)
		if entities.IsInfinityToken(a.Name) && a.Type != entities.AttachmentItem {
			vb.Field("attachment.type", "the Infinity Token is an item")
		}
	}
	if err := vb.Build(); err != nil {
		return nil, err
	}

	if _, err := o.accounts.Get(ctx, accounts.GetInput{Username: input.Recipient}); err != nil {
		if errors.IsNotFound(err) {
			return nil, errors.InvalidTarget(fmt.Sprintf("%s is not a player on this server", input.Recipient))
		}
		return nil, err
	}

	m := &entities.Mail{
		ID:        o.idGen.Generate(),
		ServerID:  o.serverID,
		Sender:    input.Caller,
		Recipient: input.Recipient,
		Title:     input.Title,
		Body:      input.Body,
		CreatedAt: o.clock.Now(),
	}
	if input.Attachment != nil {
		attachment := *input.Attachment
		m.Attachment = &attachment
	}

	out, err := o.mail.Create(ctx, mailrepo.CreateInput{Mail: m})
	if err != nil {
		return nil, err
	}

	o.logger.Info("mail sent",
		"mail_id", m.ID,
		"sender", input.Caller,
		"recipient", input.Recipient,
		"has_attachment", m.Attachment != nil)

	return &SendOutput{Mail: out.Mail}, nil
}

func (o *orchestrator) List(ctx context.Context, input *ListInput) (*ListOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if _, err := o.authz.RequirePlayer(ctx, input.Caller); err != nil {
		return nil, err
	}

	out, err := o.mail.List(ctx, mailrepo.ListInput{
		Recipient:  input.Caller,
		UnreadOnly: input.UnreadOnly,
		Limit:      input.Limit,
	})
	if err != nil {
		return nil, err
	}
	return &ListOutput{Mails: out.Mails}, nil
}

func (o *orchestrator) MarkRead(ctx context.Context, input *MailInput) (*MailOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if _, err := o.authz.RequirePlayer(ctx, input.Caller); err != nil {
		return nil, err
	}

	out, err := o.mail.MarkRead(ctx, mailrepo.MarkReadInput{ID: input.MailID, Recipient: input.Caller})
	if err != nil {
		return nil, err
	}
	return &MailOutput{Mail: out.Mail}, nil
}

// Claim grants the attachment into the caller's save. The ledger key is
// written first and the mail flag second; a retry after a failure between the
// two re-flags the mail and reports AlreadyClaimed without granting again.
func (o *orchestrator) Claim(ctx context.Context, input *MailInput) (*ClaimOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if _, err := o.authz.RequirePlayer(ctx, input.Caller); err != nil {
		return nil, err
	}

	got, err := o.mail.Get(ctx, mailrepo.GetInput{ID: input.MailID, Recipient: input.Caller})
	if err != nil {
		return nil, err
	}
	m := got.Mail
	if m.Attachment == nil {
		return nil, errors.FailedPrecondition("this mail has no attachment")
	}
	if m.IsClaimed {
		return nil, errors.AlreadyClaimed(m.ID)
	}

	trustToken := o.senderIsAdmin(ctx, m.Sender)

	var result *reconciler.Result
	written, err := o.saves.ApplyExternal(ctx, &narrative.ApplyExternalInput{
		Username: input.Caller,
		OnceKey:  "mail:" + m.ID,
		Mutate: func(cur *entities.SaveData) (*entities.SaveData, error) {
			result = o.grant(cur, m, trustToken)
			cur.Character.Status = result.Status
			cur.History = append(cur.History, entities.ChatTurn{
				Role:      entities.ChatRoleModel,
				Text:      grantText(m.Attachment, result.Status),
				Timestamp: o.clock.Now(),
			})
			return cur, nil
		},
	})
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, errors.FailedPrecondition("create a character before claiming attachments")
		}
		return nil, err
	}

	claimed, err := o.mail.MarkClaimed(ctx, mailrepo.MarkClaimedInput{ID: m.ID, Recipient: input.Caller})
	if err != nil {
		return nil, err
	}
	if !written.Applied {
		return nil, errors.AlreadyClaimed(m.ID)
	}

	o.logger.Info("mail attachment claimed",
		"mail_id", m.ID,
		"username", input.Caller,
		"attachment", m.Attachment.Name,
		"god_mode", written.Save.Character.Status.IsGodMode)

	return &ClaimOutput{
		Mail:    claimed.Mail,
		Status:  written.Save.Character.Status,
		Notices: result.Notices,
	}, nil
}

// grant adds the attachment and reconciles the result with the grant as
// trusted inventory. A token from a sender that is not an admin is left out
// of the trusted set, so the reconciler dissolves it.
func (o *orchestrator) grant(cur *entities.SaveData, m *entities.Mail, trustToken bool) *reconciler.Result {
	prev := cur.Character.Status
	next := prev.Clone()
	trusted := slices.Clone(prev.Inventory)

	a := m.Attachment
	switch a.Type {
	case entities.AttachmentSkill:
		if !next.HasSkill(a.Name) {
			next.Skills = append(next.Skills, a.Name)
		}
	default:
		next.Inventory = append(next.Inventory, a.Name)
		if !entities.IsInfinityToken(a.Name) || trustToken {
			trusted = append(trusted, a.Name)
		}
		if entities.IsInfinityToken(a.Name) && trustToken {
			next.IsGodMode = true
		}
	}

	return o.reconciler.Reconcile(&reconciler.Input{
		Previous:  prev,
		Proposed:  entities.UpdateFromStatus(next),
		Inventory: trusted,
	})
}

func (o *orchestrator) senderIsAdmin(ctx context.Context, sender string) bool {
	out, err := o.accounts.Get(ctx, accounts.GetInput{Username: sender})
	if err != nil {
		if !errors.IsNotFound(err) {
			o.logger.Warn("failed to load mail sender", "sender", sender, "error", err)
		}
		return false
	}
	return out.Account.IsAdmin() && !out.Account.Banned
}

func grantText(a *entities.Attachment, status entities.CharacterStatus) string {
	switch {
	case status.IsGodMode && entities.IsInfinityToken(a.Name):
		return fmt.Sprintf("[SYSTEM] Received %q. GOD MODE activated.", a.Name)
	case a.Type == entities.AttachmentSkill:
		return fmt.Sprintf("[SYSTEM] Acquired skill: %q.", a.Name)
	default:
		return fmt.Sprintf("[SYSTEM] Received item: %q.", a.Name)
	}
}

func (o *orchestrator) Delete(ctx context.Context, input *MailInput) error {
	if input == nil {
		return errors.InvalidArgument("input is required")
	}
	if _, err := o.authz.RequirePlayer(ctx, input.Caller); err != nil {
		return err
	}

	if _, err := o.mail.Delete(ctx, mailrepo.DeleteInput{ID: input.MailID, Recipient: input.Caller}); err != nil {
		return err
	}
	return nil
}
