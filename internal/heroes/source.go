// Package heroes is the single translation boundary between the upstream hero
// APIs and the rest of herohub. Each provider fetches its own JSON layout and
// maps it into models.HeroSummary / models.Hero.
package heroes

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"herohub/pkg/models"
)

// DefaultSeedQuery stands in for "list all" on the token provider, which has
// no such endpoint. Token-mode browsing is therefore partial.
const DefaultSeedQuery = "a"

// Provider names the configured upstream API.
type Provider string

const (
	// ProviderToken is the token-gated, search-oriented API.
	ProviderToken Provider = "token"
	// ProviderOpen is the token-less API that dumps every record at once.
	ProviderOpen Provider = "open"
)

// Shape returns the record layout the provider is expected to return.
func (p Provider) Shape() Shape {
	switch p {
	case ProviderToken:
		return ShapeToken
	case ProviderOpen:
		return ShapeOpen
	default:
		return ShapeUnknown
	}
}

// RemoteSearch reports whether the provider can search by name upstream.
func (p Provider) RemoteSearch() bool { return p == ProviderToken }

// ResolveProvider turns a configured mode ("auto", "token", "open" or empty)
// into a concrete provider. Auto picks the token provider when a token is set.
func ResolveProvider(mode, token string) (Provider, error) {
	token = strings.TrimSpace(token)
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "", "auto":
		if token != "" {
			return ProviderToken, nil
		}
		return ProviderOpen, nil
	case string(ProviderToken):
		if token == "" {
			return "", &ConfigurationError{Reason: "token provider requires SUPERHERO_API_TOKEN"}
		}
		return ProviderToken, nil
	case string(ProviderOpen):
		return ProviderOpen, nil
	default:
		return "", &ConfigurationError{Reason: fmt.Sprintf("unknown provider mode %q", mode)}
	}
}

// Source is implemented by each upstream provider.
type Source interface {
	Provider() Provider
	// ListHeroes returns the browsable list. seedQuery is only used by the
	// token provider; empty falls back to the configured seed.
	ListHeroes(ctx context.Context, seedQuery string) ([]models.HeroSummary, error)
	GetHeroByID(ctx context.Context, id string) (models.Hero, error)
	// SearchHeroes searches upstream by name. Token provider only.
	SearchHeroes(ctx context.Context, query string) ([]models.HeroSummary, error)
}

// Config is built once at startup and injected into New.
type Config struct {
	BaseURL string
	Token   string
	// Provider is "token", "open" or empty for auto-detection from Token.
	Provider   Provider
	SeedQuery  string
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// New validates cfg and returns the Source for the resolved provider.
// It fails before any network call when the base URL is missing.
func New(cfg Config) (Source, error) {
	base := strings.TrimSpace(cfg.BaseURL)
	if base == "" {
		return nil, &ConfigurationError{Reason: "API_BASE_URL is not set"}
	}

	provider, err := ResolveProvider(string(cfg.Provider), cfg.Token)
	if err != nil {
		return nil, err
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("provider", string(provider)))

	switch provider {
	case ProviderToken:
		return NewTokenSource(base, strings.TrimSpace(cfg.Token), cfg.SeedQuery, cfg.HTTPClient, logger), nil
	default:
		return NewOpenSource(base, cfg.HTTPClient, logger), nil
	}
}
