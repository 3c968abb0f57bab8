// Package auth obtains a bearer token for the document store through the
// OAuth 2.0 device authorization grant.
package auth

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/oauth2"
)

// Config describes the OAuth provider.
type Config struct {
	ClientID      string
	DeviceAuthURL string
	TokenURL      string
	Scopes        []string
}

// PromptFunc shows the user where to enter the code.
type PromptFunc func(verificationURI, userCode string)

// DeviceLogin runs the device flow and returns the access token. It blocks
// until the user approves, the code expires or ctx is done.
func DeviceLogin(ctx context.Context, cfg Config, prompt PromptFunc) (string, error) {
	if cfg.ClientID == "" {
		return "", errors.New("auth: client id is required")
	}
	oc := &oauth2.Config{
		ClientID: cfg.ClientID,
		Scopes:   cfg.Scopes,
		Endpoint: oauth2.Endpoint{
			DeviceAuthURL: cfg.DeviceAuthURL,
			TokenURL:      cfg.TokenURL,
			AuthStyle:     oauth2.AuthStyleInParams,
		},
	}

	da, err := oc.DeviceAuth(ctx)
	if err != nil {
		return "", fmt.Errorf("auth: requesting device code: %w", err)
	}
	uri := da.VerificationURIComplete
	if uri == "" {
		uri = da.VerificationURI
	}
	prompt(uri, da.UserCode)

	tok, err := oc.DeviceAccessToken(ctx, da)
	if err != nil {
		return "", fmt.Errorf("auth: waiting for approval: %w", err)
	}
	return tok.AccessToken, nil
}
