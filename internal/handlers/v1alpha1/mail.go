package v1alpha1

import (
	"context"

	"google.golang.org/grpc"

	"github.com/KirkDiggler/rpg-narrator/internal/entities"
	"github.com/KirkDiggler/rpg-narrator/internal/errors"
	"github.com/KirkDiggler/rpg-narrator/internal/orchestrators/mail"
)

// MailServiceName is the fully qualified mail service name
const MailServiceName = packageName + "MailService"

// SendMailRequest is one admin-authored mail
type SendMailRequest struct {
	Recipient  string               `json:"recipient"`
	Title      string               `json:"title"`
	Body       string               `json:"body"`
	Attachment *entities.Attachment `json:"attachment,omitempty"`
}

// ListMailRequest lists the caller's mailbox
type ListMailRequest struct {
	UnreadOnly bool `json:"unread_only"`
	Limit      int  `json:"limit"`
}

// MailRequest names one mail
type MailRequest struct {
	MailID string `json:"mail_id"`
}

// MailResponse carries one mail
type MailResponse struct {
	Mail *entities.Mail `json:"mail"`
}

// ListMailResponse carries a mailbox page
type ListMailResponse struct {
	Mails []*entities.Mail `json:"mails"`
}

// ClaimResponse carries the claimed mail and the resulting status
type ClaimResponse struct {
	Mail    *entities.Mail           `json:"mail"`
	Status  entities.CharacterStatus `json:"status"`
	Notices []entities.Notice        `json:"notices,omitempty"`
}

// MailServer is the server API for MailService
type MailServer interface {
	Send(context.Context, *SendMailRequest) (*MailResponse, error)
	List(context.Context, *ListMailRequest) (*ListMailResponse, error)
	MarkRead(context.Context, *MailRequest) (*MailResponse, error)
	Claim(context.Context, *MailRequest) (*ClaimResponse, error)
	Delete(context.Context, *MailRequest) (*Empty, error)
}

// MailServiceDesc describes MailService for grpc.ServiceRegistrar
var MailServiceDesc = grpc.ServiceDesc{
	ServiceName: MailServiceName,
	HandlerType: (*MailServer)(nil),
	Methods: []grpc.MethodDesc{
		unary(MailServiceName, "Send", MailServer.Send),
		unary(MailServiceName, "List", MailServer.List),
		unary(MailServiceName, "MarkRead", MailServer.MarkRead),
		unary(MailServiceName, "Claim", MailServer.Claim),
		unary(MailServiceName, "Delete", MailServer.Delete),
	},
	Metadata: "rpgnarrator/v1alpha1/mail",
}

// RegisterMailServer registers srv on s
func RegisterMailServer(s grpc.ServiceRegistrar, srv MailServer) {
	s.RegisterService(&MailServiceDesc, srv)
}

// MailHandlerConfig holds dependencies for the mail handler
type MailHandlerConfig struct {
	MailService mail.Service
}

// Validate ensures all required dependencies are present
func (c *MailHandlerConfig) Validate() error {
	if c == nil {
		return errors.InvalidArgument("config cannot be nil")
	}
	if c.MailService == nil {
		return errors.InvalidArgument("mail service is required")
	}
	return nil
}

// MailHandler implements MailServer on the mail orchestrator
type MailHandler struct {
	mail mail.Service
}

var _ MailServer = (*MailHandler)(nil)

// NewMailHandler creates a new mail handler with the given configuration
func NewMailHandler(cfg *MailHandlerConfig) (*MailHandler, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &MailHandler{mail: cfg.MailService}, nil
}

func (h *MailHandler) mailInput(ctx context.Context, req *MailRequest) (*mail.MailInput, error) {
	caller, err := CallerFrom(ctx)
	if err != nil {
		return nil, err
	}
	if req.MailID == "" {
		return nil, errors.InvalidArgument("mail_id is required")
	}
	return &mail.MailInput{Caller: caller, MailID: req.MailID}, nil
}

// Send delivers a mail; admins only
func (h *MailHandler) Send(ctx context.Context, req *SendMailRequest) (*MailResponse, error) {
	caller, err := CallerFrom(ctx)
	if err != nil {
		return nil, errors.ToGRPCError(err)
	}
	out, err := h.mail.Send(ctx, &mail.SendInput{
		Caller:     caller,
		Recipient:  req.Recipient,
		Title:      req.Title,
		Body:       req.Body,
		Attachment: req.Attachment,
	})
	if err != nil {
		return nil, errors.ToGRPCError(err)
	}
	return &MailResponse{Mail: out.Mail}, nil
}

// List returns the caller's mailbox
func (h *MailHandler) List(ctx context.Context, req *ListMailRequest) (*ListMailResponse, error) {
	caller, err := CallerFrom(ctx)
	if err != nil {
		return nil, errors.ToGRPCError(err)
	}
	out, err := h.mail.List(ctx, &mail.ListInput{Caller: caller, UnreadOnly: req.UnreadOnly, Limit: req.Limit})
	if err != nil {
		return nil, errors.ToGRPCError(err)
	}
	return &ListMailResponse{Mails: out.Mails}, nil
}

// MarkRead flags a mail as read
func (h *MailHandler) MarkRead(ctx context.Context, req *MailRequest) (*MailResponse, error) {
	in, err := h.mailInput(ctx, req)
	if err != nil {
		return nil, errors.ToGRPCError(err)
	}
	out, err := h.mail.MarkRead(ctx, in)
	if err != nil {
		return nil, errors.ToGRPCError(err)
	}
	return &MailResponse{Mail: out.Mail}, nil
}

// Claim grants the attachment into the caller's save
func (h *MailHandler) Claim(ctx context.Context, req *MailRequest) (*ClaimResponse, error) {
	in, err := h.mailInput(ctx, req)
	if err != nil {
		return nil, errors.ToGRPCError(err)
	}
	out, err := h.mail.Claim(ctx, in)
	if err != nil {
		return nil, errors.ToGRPCError(err)
	}
	return &ClaimResponse{Mail: out.Mail, Status: out.Status, Notices: out.Notices}, nil
}

// Delete removes a mail from the caller's mailbox
func (h *MailHandler) Delete(ctx context.Context, req *MailRequest) (*Empty, error) {
	in, err := h.mailInput(ctx, req)
	if err != nil {
		return nil, errors.ToGRPCError(err)
	}
	if err := h.mail.Delete(ctx, in); err != nil {
		return nil, errors.ToGRPCError(err)
	}
	return &Empty{}, nil
}

// MailClient is the client API for MailService
type MailClient struct {
	cc grpc.ClientConnInterface
}

// NewMailClient wraps a connection
func NewMailClient(cc grpc.ClientConnInterface) *MailClient {
	return &MailClient{cc: cc}
}

func (c *MailClient) Send(ctx context.Context, in *SendMailRequest, opts ...grpc.CallOption) (*MailResponse, error) {
	return invoke[SendMailRequest, MailResponse](ctx, c.cc, MailServiceName, "Send", in, opts...)
}

func (c *MailClient) List(ctx context.Context, in *ListMailRequest, opts ...grpc.CallOption) (*ListMailResponse, error) {
	return invoke[ListMailRequest, ListMailResponse](ctx, c.cc, MailServiceName, "List", in, opts...)
}

func (c *MailClient) MarkRead(ctx context.Context, in *MailRequest, opts ...grpc.CallOption) (*MailResponse, error) {
	return invoke[MailRequest, MailResponse](ctx, c.cc, MailServiceName, "MarkRead", in, opts...)
}

func (c *MailClient) Claim(ctx context.Context, in *MailRequest, opts ...grpc.CallOption) (*ClaimResponse, error) {
	return invoke[MailRequest, ClaimResponse](ctx, c.cc, MailServiceName, "Claim", in, opts...)
}

func (c *MailClient) Delete(ctx context.Context, in *MailRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[MailRequest, Empty](ctx, c.cc, MailServiceName, "Delete", in, opts...)
}
