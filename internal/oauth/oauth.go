package oauth

import (
	"context"
	"errors"
)

var ErrNoIDToken = errors.New("token response contained no id_token")

// Identity is what a provider knows about the signed-in account.
type Identity struct {
	Email   string
	Name    string
	Picture string
}

// Provider abstracts an OAuth identity provider.
type Provider interface {
	// AuthURL returns the consent page URL the client is redirected to.
	AuthURL() string
	// ExchangeCode trades the callback code for the account identity.
	ExchangeCode(ctx context.Context, code string) (*Identity, error)
	Name() string
}
