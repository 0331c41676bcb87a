package oidc

// Package oidc implements the IdentityProvider port against an OIDC/OAuth2
// identity provider using discovery.

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	gooidc "github.com/coreos/go-oidc/v3/oidc"
	jmespath "github.com/jmespath-community/go-jmespath"
	domainauth "github.com/pcagrade/planning-client/internal/domain/auth"
	"github.com/pcagrade/planning-client/internal/ports"
	"golang.org/x/oauth2"
)

// Provider implements the IdentityProvider port using OIDC/OAuth2.
type Provider struct {
	config     *oauth2.Config
	httpClient *http.Client

	logoutURL             string
	postLogoutRedirectURL string
	groupsExpr            string

	oidcProvider *gooidc.Provider
	verifier     *gooidc.IDTokenVerifier
}

var _ ports.IdentityProvider = (*Provider)(nil)

// ProviderConfig holds configuration for the OIDC provider.
type ProviderConfig struct {
	IssuerURL    string
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Scope        string

	// LogoutURL overrides the discovered end_session_endpoint when set.
	LogoutURL             string
	PostLogoutRedirectURL string

	// GroupsClaim is a JMESPath expression locating the groups claim within
	// the provider's claim set. Defaults to "groups".
	GroupsClaim string

	HTTPClient *http.Client // Optional, defaults to a 30s-timeout client
}

// discoveryClaims carries the non-standard discovery fields go-oidc does not
// surface directly.
type discoveryClaims struct {
	EndSessionEndpoint string `json:"end_session_endpoint"`
}

// NewProvider creates a new OIDC provider. It performs a single discovery
// fetch against the issuer.
func NewProvider(config ProviderConfig) (*Provider, error) {
	if config.IssuerURL == "" {
		return nil, errors.New("issuer URL is required")
	}
	if config.ClientID == "" {
		return nil, errors.New("client ID is required")
	}
	if config.RedirectURL == "" {
		return nil, errors.New("redirect URL is required")
	}

	groupsExpr := config.GroupsClaim
	if groupsExpr == "" {
		groupsExpr = "groups"
	}
	if _, err := jmespath.Compile(groupsExpr); err != nil {
		return nil, fmt.Errorf("invalid groups claim expression %q: %w", groupsExpr, err)
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	p := &Provider{
		httpClient:            httpClient,
		logoutURL:             config.LogoutURL,
		postLogoutRedirectURL: config.PostLogoutRedirectURL,
		groupsExpr:            groupsExpr,
	}

	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, httpClient)
	issuer := strings.TrimSuffix(config.IssuerURL, "/.well-known/openid-configuration")
	issuer = strings.TrimSuffix(issuer, "/")
	op, err := gooidc.NewProvider(ctx, issuer)
	if err != nil {
		return nil, fmt.Errorf("oidc new provider: %w", err)
	}
	p.oidcProvider = op
	p.verifier = op.Verifier(&gooidc.Config{ClientID: config.ClientID})

	if p.logoutURL == "" {
		var dc discoveryClaims
		if claimsErr := op.Claims(&dc); claimsErr == nil {
			p.logoutURL = dc.EndSessionEndpoint
		}
	}

	p.config = &oauth2.Config{
		ClientID:     config.ClientID,
		ClientSecret: config.ClientSecret,
		RedirectURL:  config.RedirectURL,
		Scopes:       strings.Fields(config.Scope),
		Endpoint:     op.Endpoint(),
	}

	return p, nil
}

// Begin returns the provider authorization URL with cryptographically secure
// state and nonce.
func (p *Provider) Begin(_ context.Context, in ports.BeginInput) (string, string, string, error) {
	state, err := generateRandomString(32)
	if err != nil {
		return "", "", "", fmt.Errorf("generate state: %w", err)
	}

	nonce, err := generateRandomString(32)
	if err != nil {
		return "", "", "", fmt.Errorf("generate nonce: %w", err)
	}

	opts := []oauth2.AuthCodeOption{
		oauth2.SetAuthURLParam("nonce", nonce),
		oauth2.SetAuthURLParam("response_type", "code"),
	}
	if in.Prompt != "" {
		opts = append(opts, oauth2.SetAuthURLParam("prompt", in.Prompt))
	}

	return p.config.AuthCodeURL(state, opts...), state, nonce, nil
}

// Exchange redeems the authorization code, verifies the ID token and nonce,
// and maps the provider claims into a domain identity.
func (p *Provider) Exchange(ctx context.Context, in ports.ExchangeInput) (domainauth.Identity, error) {
	if in.Code == "" {
		return domainauth.Identity{}, errors.New("authorization code is required")
	}
	if in.State == "" {
		return domainauth.Identity{}, errors.New("state is required")
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, p.httpClient)
	token, err := p.config.Exchange(ctx, in.Code)
	if err != nil {
		return domainauth.Identity{}, fmt.Errorf("exchange code for token: %w", err)
	}

	fields, err := p.extractFromIDToken(ctx, token, in.Nonce)
	if err != nil {
		return domainauth.Identity{}, fmt.Errorf("extract id_token: %w", err)
	}

	// Fill missing profile fields from the userinfo endpoint.
	if fields.subjectID == "" || fields.email == "" || len(fields.groups) == 0 {
		if fillErr := p.fillFromUserInfo(ctx, token.AccessToken, &fields); fillErr != nil {
			return domainauth.Identity{}, fmt.Errorf("get user info: %w", fillErr)
		}
	}

	expiresAt := time.Now().Add(time.Hour)
	if !token.Expiry.IsZero() {
		expiresAt = token.Expiry
	}

	return domainauth.Identity{
		SubjectID:   fields.subjectID,
		Email:       fields.email,
		DisplayName: displayName(fields),
		FirstName:   fields.givenName,
		LastName:    fields.familyName,
		Groups:      fields.groups,
		Credentials: domainauth.Credentials{
			AccessToken:  token.AccessToken,
			RefreshToken: token.RefreshToken,
			ExpiresAt:    expiresAt,
		},
	}, nil
}

// Refresh performs a refresh-token grant and returns the fresh credentials.
func (p *Provider) Refresh(ctx context.Context, refreshToken string) (domainauth.Credentials, error) {
	if refreshToken == "" {
		return domainauth.Credentials{}, errors.New("refresh token is required")
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, p.httpClient)
	source := p.config.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken})
	token, err := source.Token()
	if err != nil {
		return domainauth.Credentials{}, fmt.Errorf("refresh token grant: %w", err)
	}

	creds := domainauth.Credentials{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		ExpiresAt:    token.Expiry,
	}
	// Providers may rotate or withhold the refresh token; keep the old one
	// when no replacement is issued.
	if creds.RefreshToken == "" {
		creds.RefreshToken = refreshToken
	}
	return creds, nil
}

// EndSessionURL builds the provider end-session redirect. It fails only when
// neither a configured logout URL nor a discovered end_session_endpoint exists.
func (p *Provider) EndSessionURL() (string, error) {
	if p.logoutURL == "" {
		return "", errors.New("no end-session endpoint configured or discovered")
	}

	u, err := url.Parse(p.logoutURL)
	if err != nil {
		return "", fmt.Errorf("parse logout URL: %w", err)
	}
	q := u.Query()
	q.Set("client_id", p.config.ClientID)
	if p.postLogoutRedirectURL != "" {
		q.Set("post_logout_redirect_uri", p.postLogoutRedirectURL)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// UserInfo represents the user information from the OIDC userinfo endpoint.
type UserInfo struct {
	Subject           string `json:"sub"`
	Email             string `json:"email"`
	Name              string `json:"name"`
	PreferredUsername string `json:"preferred_username"`
	GivenName         string `json:"given_name"`
	FamilyName        string `json:"family_name"`
}

func (p *Provider) fillFromUserInfo(ctx context.Context, accessToken string, f *identityFields) error {
	ui, err := p.oidcProvider.UserInfo(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken}))
	if err != nil {
		return fmt.Errorf("fetch user info: %w", err)
	}

	var info UserInfo
	if claimsErr := ui.Claims(&info); claimsErr != nil {
		return fmt.Errorf("decode user info: %w", claimsErr)
	}

	var raw map[string]any
	if rawErr := ui.Claims(&raw); rawErr != nil {
		return fmt.Errorf("decode user info claims: %w", rawErr)
	}

	fillFromUserInfoClaims(f, info, p.extractGroups(raw))
	return nil
}

// identityFields collects claim values before they are assembled into an Identity.
type identityFields struct {
	subjectID         string
	email             string
	name              string
	preferredUsername string
	givenName         string
	familyName        string
	groups            []string
}

// idTokenClaims is the standard-claims shape of the ID token.
type idTokenClaims struct {
	Sub               string `json:"sub"`
	Email             string `json:"email"`
	Name              string `json:"name"`
	PreferredUsername string `json:"preferred_username"`
	GivenName         string `json:"given_name"`
	FamilyName        string `json:"family_name"`
	Nonce             string `json:"nonce"`
}

func (p *Provider) extractFromIDToken(ctx context.Context, tok *oauth2.Token, expectedNonce string) (identityFields, error) {
	var f identityFields
	if !p.hasOpenIDScope() {
		return f, nil
	}

	rawID, err := getIDTokenFromToken(tok)
	if err != nil {
		return f, err
	}
	idTok, err := p.verifier.Verify(ctx, rawID)
	if err != nil {
		return f, fmt.Errorf("verify id_token: %w", err)
	}

	var claims idTokenClaims
	if claimsErr := idTok.Claims(&claims); claimsErr != nil {
		return f, fmt.Errorf("parse id_token claims: %w", claimsErr)
	}
	if expectedNonce != "" && claims.Nonce != expectedNonce {
		return f, errors.New("invalid nonce")
	}

	var raw map[string]any
	if rawErr := idTok.Claims(&raw); rawErr != nil {
		return f, fmt.Errorf("parse raw id_token claims: %w", rawErr)
	}

	f = identityFields{
		subjectID:         claims.Sub,
		email:             claims.Email,
		name:              claims.Name,
		preferredUsername: claims.PreferredUsername,
		givenName:         claims.GivenName,
		familyName:        claims.FamilyName,
		groups:            p.extractGroups(raw),
	}
	return f, nil
}

// extractGroups evaluates the configured JMESPath expression against the raw
// claim set. Anything that is not a list of strings yields no groups.
func (p *Provider) extractGroups(claims map[string]any) []string {
	result, err := jmespath.Search(p.groupsExpr, claims)
	if err != nil || result == nil {
		return nil
	}

	items, ok := result.([]any)
	if !ok {
		// A single string claim is accepted as a one-element group list.
		if s, isStr := result.(string); isStr && s != "" {
			return []string{s}
		}
		return nil
	}

	groups := make([]string, 0, len(items))
	for _, item := range items {
		if s, isStr := item.(string); isStr && s != "" {
			groups = append(groups, s)
		}
	}
	return groups
}

// fillFromUserInfoClaims fills missing fields from a UserInfo payload.
func fillFromUserInfoClaims(f *identityFields, ui UserInfo, groups []string) {
	if f.subjectID == "" {
		f.subjectID = ui.Subject
	}
	if f.email == "" {
		f.email = ui.Email
	}
	if f.name == "" {
		f.name = ui.Name
	}
	if f.preferredUsername == "" {
		f.preferredUsername = ui.PreferredUsername
	}
	if f.givenName == "" {
		f.givenName = ui.GivenName
	}
	if f.familyName == "" {
		f.familyName = ui.FamilyName
	}
	if len(f.groups) == 0 {
		f.groups = groups
	}
}

// displayName resolves the display name with name > preferred_username >
// email local part precedence.
func displayName(f identityFields) string {
	if f.name != "" {
		return f.name
	}
	if f.preferredUsername != "" {
		return f.preferredUsername
	}
	if at := strings.IndexByte(f.email, '@'); at > 0 {
		return f.email[:at]
	}
	return f.email
}

// generateRandomString generates a cryptographically secure URL-safe random string of exact length.
func generateRandomString(length int) (string, error) {
	if length <= 0 {
		return "", nil
	}
	nBytes := (length*3 + 3) / 4
	b := make([]byte, nBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	s := base64.RawURLEncoding.EncodeToString(b)
	if len(s) < length {
		extra := make([]byte, 1)
		if _, err := rand.Read(extra); err != nil {
			return "", err
		}
		s += base64.RawURLEncoding.EncodeToString(extra)
	}
	return s[:length], nil
}

// hasOpenIDScope reports whether the configured scopes include "openid".
func (p *Provider) hasOpenIDScope() bool {
	for _, sc := range p.config.Scopes {
		if sc == "openid" {
			return true
		}
	}
	return false
}

// getIDTokenFromToken extracts the id_token from oauth2.Token.
func getIDTokenFromToken(tok *oauth2.Token) (string, error) {
	if tok == nil {
		return "", errors.New("nil token")
	}
	raw := tok.Extra("id_token")
	s, ok := raw.(string)
	if !ok || s == "" {
		return "", errors.New("missing id_token in token response")
	}
	return s, nil
}
