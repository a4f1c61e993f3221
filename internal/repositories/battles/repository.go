// Package battles stores battle records and fans out their changes
package battles

import (
	"context"

	"github.com/KirkDiggler/rpg-narrator/internal/entities"
)

//go:generate mockgen -destination=mock/mock_repository.go -package=battlesmock github.com/KirkDiggler/rpg-narrator/internal/repositories/battles Repository

// BuildFunc creates the record for a new challenge. The busy flags are read
// inside the same transaction that stores the result.
type BuildFunc func(challengerBusy, targetBusy bool) (*entities.BattleRecord, error)

// MutateFunc computes the next record from the current one. Returning an
// error aborts the update without writing anything.
type MutateFunc func(current *entities.BattleRecord) (*entities.BattleRecord, error)

// CreateInput contains parameters for creating a battle
type CreateInput struct {
	Challenger string
	Target     string
	Build      BuildFunc
}

// CreateOutput contains the created battle
type CreateOutput struct {
	Record *entities.BattleRecord
}

// GetInput contains parameters for loading a battle
type GetInput struct {
	ID string
}

// GetOutput contains the loaded battle
type GetOutput struct {
	Record *entities.BattleRecord
}

// UpdateInput contains parameters for a compare-and-set update
type UpdateInput struct {
	ID     string
	Mutate MutateFunc
}

// UpdateOutput contains the stored record
type UpdateOutput struct {
	Record *entities.BattleRecord
}

// DeleteInput contains parameters for deleting a battle
type DeleteInput struct {
	ID string
}

// DeleteOutput is empty
type DeleteOutput struct{}

// ListActiveInput selects the active battles of one user
type ListActiveInput struct {
	Username string
}

// ListActiveOutput contains PENDING and IN_PROGRESS battles, oldest first
type ListActiveOutput struct {
	Records []*entities.BattleRecord
}

// ListRecentInput selects the newest battles on the shard
type ListRecentInput struct {
	Limit int
}

// ListRecentOutput contains battles, newest first
type ListRecentOutput struct {
	Records []*entities.BattleRecord
}

// SubscribeInput selects the push channel of one user
type SubscribeInput struct {
	Username string
}

// SubscribeOutput delivers every stored record involving the user. Updates is
// closed when the context ends or Close is called.
type SubscribeOutput struct {
	Updates <-chan *entities.BattleRecord
	Close   func() error
}

// Repository defines battle storage. Every write that changes a record bumps
// its Version and publishes it to both participants.
type Repository interface {
	// Create stores a new record built under the participants' active index
	Create(ctx context.Context, input CreateInput) (*CreateOutput, error)

	// Get loads one record
	Get(ctx context.Context, input GetInput) (*GetOutput, error)

	// Update applies Mutate atomically against the latest stored record
	Update(ctx context.Context, input UpdateInput) (*UpdateOutput, error)

	// Delete removes a record and its index entries
	Delete(ctx context.Context, input DeleteInput) (*DeleteOutput, error)

	// ListActive returns the user's non-terminal battles
	ListActive(ctx context.Context, input ListActiveInput) (*ListActiveOutput, error)

	// ListRecent returns the newest battles for admin tooling
	ListRecent(ctx context.Context, input ListRecentInput) (*ListRecentOutput, error)

	// Subscribe opens the user's push channel
	Subscribe(ctx context.Context, input SubscribeInput) (*SubscribeOutput, error)
}
