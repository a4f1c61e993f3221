// Package authz decides what a caller may do. Identity itself is established
// by the transport; this package only looks at the account behind it.
package authz

import (
	"context"

	"github.com/KirkDiggler/rpg-narrator/internal/entities"
	"github.com/KirkDiggler/rpg-narrator/internal/errors"
	"github.com/KirkDiggler/rpg-narrator/internal/repositories/accounts"
)

// Authorizer gates calls on the caller's account
type Authorizer interface {
	// RequirePlayer registers the account on first sight and rejects banned ones
	RequirePlayer(ctx context.Context, username string) (*entities.Account, error)

	// RequireAdmin rejects callers without the admin role
	RequireAdmin(ctx context.Context, username string) (*entities.Account, error)
}

// Config holds the dependencies for the authorizer
type Config struct {
	Accounts accounts.Repository
}

// Validate validates the config
func (c *Config) Validate() error {
	if c == nil {
		return errors.InvalidArgument("config cannot be nil")
	}
	vb := errors.NewValidationBuilder()
	if c.Accounts == nil {
		vb.RequiredField("accounts")
	}
	return vb.Build()
}

type authorizer struct {
	accounts accounts.Repository
}

// New creates an authorizer backed by the account store
func New(cfg *Config) (Authorizer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &authorizer{accounts: cfg.Accounts}, nil
}

func (a *authorizer) RequirePlayer(ctx context.Context, username string) (*entities.Account, error) {
	if username == "" {
		return nil, errors.Unauthenticated("caller identity is required")
	}

	out, err := a.accounts.Ensure(ctx, accounts.EnsureInput{Username: username})
	if err != nil {
		return nil, errors.Wrap(err, "failed to load account")
	}
	if out.Account.Banned {
		return nil, errors.PermissionDeniedf("account %s is banned", username)
	}
	return out.Account, nil
}

func (a *authorizer) RequireAdmin(ctx context.Context, username string) (*entities.Account, error) {
	account, err := a.RequirePlayer(ctx, username)
	if err != nil {
		return nil, err
	}
	if !account.IsAdmin() {
		return nil, errors.PermissionDenied("admin role required")
	}
	return account, nil
}
