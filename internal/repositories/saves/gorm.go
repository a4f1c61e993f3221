package saves

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/KirkDiggler/rpg-narrator/internal/entities"
	"github.com/KirkDiggler/rpg-narrator/internal/errors"
	"github.com/KirkDiggler/rpg-narrator/internal/pkg/clock"
)

const errUsernameEmpty = "username cannot be empty"

type saveModel struct {
	ServerID  string              `gorm:"primaryKey;size:64"`
	Username  string              `gorm:"primaryKey;size:64"`
	Character entities.Character  `gorm:"column:character_data;serializer:json;type:text"`
	History   []entities.ChatTurn `gorm:"serializer:json;type:text"`
	Settings  entities.Settings   `gorm:"serializer:json;type:text"`
	LastSaved time.Time
	Revision  int64
}

func (saveModel) TableName() string { return "saves" }

func (m *saveModel) toEntity() *entities.SaveData {
	history := m.History
	if history == nil {
		history = []entities.ChatTurn{}
	}
	return &entities.SaveData{
		Username:  m.Username,
		ServerID:  m.ServerID,
		Character: m.Character,
		History:   history,
		Settings:  m.Settings,
		LastSaved: m.LastSaved,
	}
}

// grantModel is one ledger row; the unique index is what enforces once-only
type grantModel struct {
	ID        uint   `gorm:"primaryKey"`
	ServerID  string `gorm:"size:64;uniqueIndex:idx_save_grants_once"`
	OnceKey   string `gorm:"size:191;uniqueIndex:idx_save_grants_once"`
	Username  string `gorm:"size:64;index"`
	CreatedAt time.Time
}

func (grantModel) TableName() string { return "save_grants" }

// Migrate creates the saves and save_grants tables
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&saveModel{}, &grantModel{})
}

// Config contains configuration for the gorm save repository
type Config struct {
	DB       *gorm.DB
	ServerID string
	Clock    clock.Clock
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
	clock    clock.Clock
}

// NewGorm creates a save repository on a relational database
func NewGorm(cfg *Config) (Repository, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	clk := cfg.Clock
	if clk == nil {
		clk = clock.New()
	}
	return &gormRepository{db: cfg.DB, serverID: cfg.ServerID, clock: clk}, nil
}

var _ Repository = (*gormRepository)(nil)

func (r *gormRepository) scope(username string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("server_id = ? AND username = ?", r.serverID, username)
	}
}

func (r *gormRepository) load(tx *gorm.DB, username string) (*saveModel, error) {
	var m saveModel
	if err := tx.Scopes(r.scope(username)).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.NotFoundf("no save for %s", username)
		}
		return nil, errors.Wrapf(err, "failed to load save for %s", username)
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

	return &GetOutput{Save: m.toEntity()}, nil
}

// Put overwrites the whole save; saves are never merged
func (r *gormRepository) Put(ctx context.Context, input PutInput) (*PutOutput, error) {
	if input.Save == nil {
		return nil, errors.InvalidArgument("save cannot be nil")
	}
	if input.Save.Username == "" {
		return nil, errors.InvalidArgument(errUsernameEmpty)
	}

	m := r.toModel(input.Save)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var revision int64
		err := tx.Model(&saveModel{}).Scopes(r.scope(m.Username)).
			Select("revision").Scan(&revision).Error
		if err != nil {
			return errors.Wrap(err, "failed to read save revision")
		}
		m.Revision = revision + 1

		if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(m).Error; err != nil {
			return errors.Wrapf(err, "failed to store save for %s", m.Username)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &PutOutput{Save: m.toEntity()}, nil
}

// Update runs Mutate against the stored save inside one transaction. With a
// OnceKey the ledger row is inserted first; a duplicate key means the grant
// already happened and nothing is written.
func (r *gormRepository) Update(ctx context.Context, input UpdateInput) (*UpdateOutput, error) {
	if input.Username == "" {
		return nil, errors.InvalidArgument(errUsernameEmpty)
	}
	if input.Mutate == nil {
		return nil, errors.InvalidArgument("mutate func cannot be nil")
	}

	out := &UpdateOutput{}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if input.OnceKey != "" {
			res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&grantModel{
				ServerID: r.serverID,
				OnceKey:  input.OnceKey,
				Username: input.Username,
			})
			if res.Error != nil {
				return errors.Wrap(res.Error, "failed to record grant")
			}
			if res.RowsAffected == 0 {
				current, err := r.load(tx, input.Username)
				if err != nil {
					return err
				}
				out.Save = current.toEntity()
				return nil
			}
		}

		current, err := r.load(tx, input.Username)
		if err != nil {
			return err
		}

		next, err := input.Mutate(current.toEntity())
		if err != nil {
			return err
		}
		next.Username = input.Username

		m := r.toModel(next)
		m.Revision = current.Revision + 1
		res := tx.Model(&saveModel{}).
			Scopes(r.scope(input.Username)).
			Where("revision = ?", current.Revision).
			Select("character_data", "history", "settings", "last_saved", "revision").
			Updates(m)
		if res.Error != nil {
			return errors.Wrapf(res.Error, "failed to update save for %s", input.Username)
		}
		if res.RowsAffected == 0 {
			return errors.Abortedf("save for %s was modified concurrently", input.Username)
		}

		out.Save = m.toEntity()
		out.Applied = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	return out, nil
}

// Delete removes the save. Ledger rows are kept so a recreated character
// cannot claim the same grant twice.
func (r *gormRepository) Delete(ctx context.Context, input DeleteInput) (*DeleteOutput, error) {
	if input.Username == "" {
		return nil, errors.InvalidArgument(errUsernameEmpty)
	}

	res := r.db.WithContext(ctx).Scopes(r.scope(input.Username)).Delete(&saveModel{})
	if res.Error != nil {
		return nil, errors.Wrapf(res.Error, "failed to delete save for %s", input.Username)
	}
	if res.RowsAffected == 0 {
		return nil, errors.NotFoundf("no save for %s", input.Username)
	}

	return &DeleteOutput{}, nil
}

func (r *gormRepository) List(ctx context.Context, input ListInput) (*ListOutput, error) {
	q := r.db.WithContext(ctx).Where("server_id = ?", r.serverID).Order("username")
	if input.Limit > 0 {
		q = q.Limit(input.Limit)
	}

	var models []saveModel
	if err := q.Find(&models).Error; err != nil {
		return nil, errors.Wrap(err, "failed to list saves")
	}

	out := make([]*entities.SaveData, 0, len(models))
	for i := range models {
		out = append(out, models[i].toEntity())
	}
	return &ListOutput{Saves: out}, nil
}

func (r *gormRepository) toModel(s *entities.SaveData) *saveModel {
	return &saveModel{
		ServerID:  r.serverID,
		Username:  s.Username,
		Character: s.Character,
		History:   s.History,
		Settings:  s.Settings,
		LastSaved: r.clock.Now(),
	}
}
