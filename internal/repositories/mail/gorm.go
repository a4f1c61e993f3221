package mail

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/KirkDiggler/rpg-narrator/internal/entities"
	"github.com/KirkDiggler/rpg-narrator/internal/errors"
)

const (
	defaultListLimit = 100

	errIDEmpty        = "mail ID cannot be empty"
	errRecipientEmpty = "recipient cannot be empty"
)

type mailModel struct {
	ID             string `gorm:"primaryKey;size:64"`
	ServerID       string `gorm:"size:64;index:idx_mail_recipient"`
	Recipient      string `gorm:"size:64;index:idx_mail_recipient"`
	Sender         string `gorm:"size:64"`
	Title          string `gorm:"size:255"`
	Body           string `gorm:"type:text"`
	AttachmentType string `gorm:"size:16"`
	AttachmentName string `gorm:"size:255"`
	IsRead         bool
	IsClaimed      bool
	CreatedAt      time.Time
}

func (mailModel) TableName() string { return "mails" }

func toModel(serverID string, m *entities.Mail) *mailModel {
	out := &mailModel{
		ID:        m.ID,
		ServerID:  serverID,
		Recipient: m.Recipient,
		Sender:    m.Sender,
		Title:     m.Title,
		Body:      m.Body,
		IsRead:    m.IsRead,
		IsClaimed: m.IsClaimed,
		CreatedAt: m.CreatedAt,
	}
	if m.Attachment != nil {
		out.AttachmentType = string(m.Attachment.Type)
		out.AttachmentName = m.Attachment.Name
	}
	return out
}

func (m *mailModel) toEntity() *entities.Mail {
	out := &entities.Mail{
		ID:        m.ID,
		ServerID:  m.ServerID,
		Sender:    m.Sender,
		Recipient: m.Recipient,
		Title:     m.Title,
		Body:      m.Body,
		IsRead:    m.IsRead,
		IsClaimed: m.IsClaimed,
		CreatedAt: m.CreatedAt,
	}
	if m.AttachmentName != "" {
		out.Attachment = &entities.Attachment{
			Type: entities.AttachmentType(m.AttachmentType),
			Name: m.AttachmentName,
		}
	}
	return out
}

// Migrate creates the mails table
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&mailModel{})
}

// Config contains configuration for the gorm mail repository
type Config struct {
	DB       *gorm.DB
	ServerID string
}

// Validate validates the config
func (c *Config) Validate() error {
	if c == nil {
		return errors.InvalidArgument("config cannot be nil")
	}
	vb := errors.NewValidationBuilder()
	if c.DB == nil {
		vb.RequiredField("db")
	}
	errors.ValidateRequired("server_id", c.ServerID, vb)
	return vb.Build()
}

type gormRepository struct {
	db       *gorm.DB
	serverID string
}

// NewGorm creates a mail repository on a relational database
func NewGorm(cfg *Config) (Repository, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &gormRepository{db: cfg.DB, serverID: cfg.ServerID}, nil
}

var _ Repository = (*gormRepository)(nil)

// owned scopes a query to one recipient's mail on this shard
func (r *gormRepository) owned(id, recipient string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("id = ? AND server_id = ? AND recipient = ?", id, r.serverID, recipient)
	}
}

func validateRef(id, recipient string) error {
	if id == "" {
		return errors.InvalidArgument(errIDEmpty)
	}
	if recipient == "" {
		return errors.InvalidArgument(errRecipientEmpty)
	}
	return nil
}

func (r *gormRepository) load(tx *gorm.DB, id, recipient string) (*mailModel, error) {
	var m mailModel
	if err := tx.Scopes(r.owned(id, recipient)).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.NotFoundf("mail %s not found", id)
		}
		return nil, errors.Wrapf(err, "failed to load mail %s", id)
	}
	return &m, nil
}

func (r *gormRepository) Create(ctx context.Context, input CreateInput) (*CreateOutput, error) {
	if input.Mail == nil {
		return nil, errors.InvalidArgument("mail cannot be nil")
	}
	if err := validateRef(input.Mail.ID, input.Mail.Recipient); err != nil {
		return nil, err
	}

	m := toModel(r.serverID, input.Mail)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, errors.AlreadyExists("mail " + m.ID + " already exists")
		}
		return nil, errors.Wrap(err, "failed to create mail")
	}
	return &CreateOutput{Mail: m.toEntity()}, nil
}

func (r *gormRepository) Get(ctx context.Context, input GetInput) (*GetOutput, error) {
	if err := validateRef(input.ID, input.Recipient); err != nil {
		return nil, err
	}

	m, err := r.load(r.db.WithContext(ctx), input.ID, input.Recipient)
	if err != nil {
		return nil, err
	}
	return &GetOutput{Mail: m.toEntity()}, nil
}

func (r *gormRepository) List(ctx context.Context, input ListInput) (*ListOutput, error) {
	if input.Recipient == "" {
		return nil, errors.InvalidArgument(errRecipientEmpty)
	}
	limit := input.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}

	q := r.db.WithContext(ctx).
		Where("server_id = ? AND recipient = ?", r.serverID, input.Recipient)
	if input.UnreadOnly {
		q = q.Where("is_read = ?", false)
	}

	var models []mailModel
	if err := q.Order("created_at DESC").Order("id").Limit(limit).Find(&models).Error; err != nil {
		return nil, errors.Wrap(err, "failed to list mail")
	}

	out := make([]*entities.Mail, 0, len(models))
	for i := range models {
		out = append(out, models[i].toEntity())
	}
	return &ListOutput{Mails: out}, nil
}

func (r *gormRepository) MarkRead(ctx context.Context, input MarkReadInput) (*MarkReadOutput, error) {
	if err := validateRef(input.ID, input.Recipient); err != nil {
		return nil, err
	}

	db := r.db.WithContext(ctx)
	res := db.Model(&mailModel{}).Scopes(r.owned(input.ID, input.Recipient)).Update("is_read", true)
	if res.Error != nil {
		return nil, errors.Wrapf(res.Error, "failed to mark mail %s read", input.ID)
	}

	m, err := r.load(db, input.ID, input.Recipient)
	if err != nil {
		return nil, err
	}
	return &MarkReadOutput{Mail: m.toEntity()}, nil
}

// MarkClaimed flips is_claimed with a conditional update, so of two racing
// callers exactly one sees Changed.
func (r *gormRepository) MarkClaimed(ctx context.Context, input MarkClaimedInput) (*MarkClaimedOutput, error) {
	if err := validateRef(input.ID, input.Recipient); err != nil {
		return nil, err
	}

	db := r.db.WithContext(ctx)
	res := db.Model(&mailModel{}).
		Scopes(r.owned(input.ID, input.Recipient)).
		Where("is_claimed = ?", false).
		Updates(map[string]any{"is_claimed": true, "is_read": true})
	if res.Error != nil {
		return nil, errors.Wrapf(res.Error, "failed to claim mail %s", input.ID)
	}

	m, err := r.load(db, input.ID, input.Recipient)
	if err != nil {
		return nil, err
	}
	return &MarkClaimedOutput{Mail: m.toEntity(), Changed: res.RowsAffected > 0}, nil
}

func (r *gormRepository) Delete(ctx context.Context, input DeleteInput) (*DeleteOutput, error) {
	if err := validateRef(input.ID, input.Recipient); err != nil {
		return nil, err
	}

	res := r.db.WithContext(ctx).Scopes(r.owned(input.ID, input.Recipient)).Delete(&mailModel{})
	if res.Error != nil {
		return nil, errors.Wrapf(res.Error, "failed to delete mail %s", input.ID)
	}
	if res.RowsAffected == 0 {
		return nil, errors.NotFoundf("mail %s not found", input.ID)
	}
	return &DeleteOutput{}, nil
}
