package accounts

import (
	"context"
	"slices"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/KirkDiggler/rpg-narrator/internal/entities"
	"github.com/KirkDiggler/rpg-narrator/internal/errors"
)

const errUsernameEmpty = "username cannot be empty"

type accountModel struct {
	ServerID  string `gorm:"primaryKey;size:64"`
	Username  string `gorm:"primaryKey;size:64"`
	Role      string `gorm:"size:16;not null;default:player"`
	Banned    bool   `gorm:"not null;default:false"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (accountModel) TableName() string { return "accounts" }

func (m *accountModel) toEntity() *entities.Account {
	return &entities.Account{
		Username:  m.Username,
		ServerID:  m.ServerID,
		Role:      entities.Role(m.Role),
		Banned:    m.Banned,
		CreatedAt: m.CreatedAt,
	}
}

// Migrate creates the accounts table
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&accountModel{})
}

// Config contains configuration for the gorm account repository
type Config struct {
	DB       *gorm.DB
	ServerID string
	// Admins are granted the admin role when their account is first created
	Admins []string
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
	admins   []string
}

// NewGorm creates an account repository on a relational database
func NewGorm(cfg *Config) (Repository, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &gormRepository{
		db:       cfg.DB,
		serverID: cfg.ServerID,
		admins:   slices.Clone(cfg.Admins),
	}, nil
}

var _ Repository = (*gormRepository)(nil)

func (r *gormRepository) load(tx *gorm.DB, username string) (*accountModel, error) {
	var m accountModel
	err := tx.Where("server_id = ? AND username = ?", r.serverID, username).First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.NotFoundf("account %s not found", username)
		}
		return nil, errors.Wrapf(err, "failed to load account %s", username)
	}
	return &m, nil
}

func (r *gormRepository) Get(ctx context.Context, input GetInput) (*GetOutput, error) {
	if input.Username == "" {
		return nil, errors.InvalidArgument(errUsernameEmpty)
	}

	m, err := r.load(r.db.WithContext(ctx), input.Username)
	if err != nil {
		return nil, err
	}
	return &GetOutput{Account: m.toEntity()}, nil
}

// Ensure returns the account, registering it on first sight
func (r *gormRepository) Ensure(ctx context.Context, input EnsureInput) (*EnsureOutput, error) {
	if input.Username == "" {
		return nil, errors.InvalidArgument(errUsernameEmpty)
	}

	role := entities.RolePlayer
	if slices.Contains(r.admins, input.Username) {
		role = entities.RoleAdmin
	}

	db := r.db.WithContext(ctx)
	res := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&accountModel{
		ServerID: r.serverID,
		Username: input.Username,
		Role:     string(role),
	})
	if res.Error != nil {
		return nil, errors.Wrapf(res.Error, "failed to register account %s", input.Username)
	}

	m, err := r.load(db, input.Username)
	if err != nil {
		return nil, err
	}
	return &EnsureOutput{Account: m.toEntity(), Created: res.RowsAffected > 0}, nil
}

func (r *gormRepository) SetRole(ctx context.Context, input SetRoleInput) (*SetRoleOutput, error) {
	if input.Username == "" {
		return nil, errors.InvalidArgument(errUsernameEmpty)
	}
	vb := errors.NewValidationBuilder()
	errors.ValidateEnum("role", string(input.Role),
		[]string{string(entities.RolePlayer), string(entities.RoleAdmin)}, vb)
	if err := vb.Build(); err != nil {
		return nil, err
	}

	m, err := r.update(ctx, input.Username, "role", string(input.Role))
	if err != nil {
		return nil, err
	}
	return &SetRoleOutput{Account: m.toEntity()}, nil
}

func (r *gormRepository) SetBanned(ctx context.Context, input SetBannedInput) (*SetBannedOutput, error) {
	if input.Username == "" {
		return nil, errors.InvalidArgument(errUsernameEmpty)
	}

	m, err := r.update(ctx, input.Username, "banned", input.Banned)
	if err != nil {
		return nil, err
	}
	return &SetBannedOutput{Account: m.toEntity()}, nil
}

func (r *gormRepository) update(ctx context.Context, username, column string, value any) (*accountModel, error) {
	db := r.db.WithContext(ctx)
	res := db.Model(&accountModel{}).
		Where("server_id = ? AND username = ?", r.serverID, username).
		Update(column, value)
	if res.Error != nil {
		return nil, errors.Wrapf(res.Error, "failed to update account %s", username)
	}
	if res.RowsAffected == 0 {
		return nil, errors.NotFoundf("account %s not found", username)
	}
	return r.load(db, username)
}

func (r *gormRepository) List(ctx context.Context, input ListInput) (*ListOutput, error) {
	q := r.db.WithContext(ctx).Where("server_id = ?", r.serverID).Order("username")
	if input.Limit > 0 {
		q = q.Limit(input.Limit)
	}

	var models []accountModel
	if err := q.Find(&models).Error; err != nil {
		return nil, errors.Wrap(err, "failed to list accounts")
	}

	out := make([]*entities.Account, 0, len(models))
	for i := range models {
		out = append(out, models[i].toEntity())
	}
	return &ListOutput{Accounts: out}, nil
}
