// Package saves stores single-player save data and the grant ledger that makes
// out-of-band rewards and penalties exactly-once.
package saves

import (
	"context"

	"github.com/KirkDiggler/rpg-narrator/internal/entities"
)

//go:generate mockgen -destination=mock/mock_repository.go -package=savesmock github.com/KirkDiggler/rpg-narrator/internal/repositories/saves Repository

// MutateFunc computes the next save from the stored one. Returning an error
// rolls back the whole update, ledger row included.
type MutateFunc func(current *entities.SaveData) (*entities.SaveData, error)

// GetInput contains parameters for loading a save
type GetInput struct {
	Username string
}

// GetOutput contains the loaded save
type GetOutput struct {
	Save *entities.SaveData
}

// PutInput contains a save to store whole
type PutInput struct {
	Save *entities.SaveData
}

// PutOutput contains the stored save
type PutOutput struct {
	Save *entities.SaveData
}

// UpdateInput contains parameters for a read-modify-write of one save
type UpdateInput struct {
	Username string
	// OnceKey, when set, makes the update apply at most once per key
	OnceKey string
	Mutate  MutateFunc
}

// UpdateOutput contains the stored save. Applied is false when OnceKey had
// already been used; Save is then the current, unchanged record.
type UpdateOutput struct {
	Save    *entities.SaveData
	Applied bool
}

// DeleteInput contains parameters for deleting a save
type DeleteInput struct {
	Username string
}

// DeleteOutput is empty
type DeleteOutput struct{}

// ListInput contains parameters for listing saves
type ListInput struct {
	Limit int
}

// ListOutput contains saves ordered by username
type ListOutput struct {
	Saves []*entities.SaveData
}

// Repository is the save store of one server shard
type Repository interface {
	Get(ctx context.Context, input GetInput) (*GetOutput, error)
	Put(ctx context.Context, input PutInput) (*PutOutput, error)
	Update(ctx context.Context, input UpdateInput) (*UpdateOutput, error)
	Delete(ctx context.Context, input DeleteInput) (*DeleteOutput, error)
	List(ctx context.Context, input ListInput) (*ListOutput, error)
}
