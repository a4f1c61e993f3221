// Package accounts stores player accounts and their roles
package accounts

import (
	"context"

	"github.com/KirkDiggler/rpg-narrator/internal/entities"
)

//go:generate mockgen -destination=mock/mock_repository.go -package=accountsmock github.com/KirkDiggler/rpg-narrator/internal/repositories/accounts Repository

// GetInput contains parameters for loading an account
type GetInput struct {
	Username string
}

// GetOutput contains the loaded account
type GetOutput struct {
	Account *entities.Account
}

// EnsureInput contains parameters for loading or registering an account
type EnsureInput struct {
	Username string
}

// EnsureOutput contains the account; Created is true on first sight
type EnsureOutput struct {
	Account *entities.Account
	Created bool
}

// SetRoleInput contains parameters for changing a role
type SetRoleInput struct {
	Username string
	Role     entities.Role
}

// SetRoleOutput contains the updated account
type SetRoleOutput struct {
	Account *entities.Account
}

// SetBannedInput contains parameters for (un)banning an account
type SetBannedInput struct {
	Username string
	Banned   bool
}

// SetBannedOutput contains the updated account
type SetBannedOutput struct {
	Account *entities.Account
}

// ListInput contains parameters for listing accounts
type ListInput struct {
	Limit int
}

// ListOutput contains accounts ordered by username
type ListOutput struct {
	Accounts []*entities.Account
}

// Repository is the account store of one server shard
type Repository interface {
	Get(ctx context.Context, input GetInput) (*GetOutput, error)
	Ensure(ctx context.Context, input EnsureInput) (*EnsureOutput, error)
	SetRole(ctx context.Context, input SetRoleInput) (*SetRoleOutput, error)
	SetBanned(ctx context.Context, input SetBannedInput) (*SetBannedOutput, error)
	List(ctx context.Context, input ListInput) (*ListOutput, error)
}
