package oauth

import (
	"context"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/dimitrije/accounts-api/internal/config"
)

type GoogleProvider struct {
	config *oauth2.Config
}

func NewGoogleProvider(cfg config.OAuthConfig) *GoogleProvider {
	return &GoogleProvider{
		config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes: []string{
				"https://www.googleapis.com/auth/userinfo.email",
				"https://www.googleapis.com/auth/userinfo.profile",
				"https://www.googleapis.com/auth/calendar.readonly",
			},
			Endpoint: google.Endpoint,
		},
	}
}

func (p *GoogleProvider) Name() string {
	return "google"
}

func (p *GoogleProvider) AuthURL() string {
	return p.config.AuthCodeURL("", oauth2.AccessTypeOffline)
}

// ExchangeCode reads the identity out of the id_token Google attaches to
// the token response. The id_token is decoded without signature
// verification; it arrived over the TLS channel to Google's token
// endpoint, not from the client.
func (p *GoogleProvider) ExchangeCode(ctx context.Context, code string) (*Identity, error) {
	token, err := p.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange code: %w", err)
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok || rawIDToken == "" {
		return nil, ErrNoIDToken
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(rawIDToken, claims); err != nil {
		return nil, fmt.Errorf("failed to decode id_token: %w", err)
	}

	identity := &Identity{}
	if email, ok := claims["email"].(string); ok {
		identity.Email = email
	}
	if name, ok := claims["name"].(string); ok {
		identity.Name = name
	}
	if picture, ok := claims["picture"].(string); ok {
		identity.Picture = picture
	}

	return identity, nil
}
