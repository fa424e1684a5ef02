package heroes

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"herohub/pkg/models"
)

const responseError = "error"

// TokenSource talks to the token-gated provider:
//
//	GET {BaseURL}/{token}/search/{name} -> {"response", "results-for", "results" | "error"}
//	GET {BaseURL}/{token}/{id}          -> hero record or {"response":"error","error"}
type TokenSource struct {
	BaseURL   string
	Token     string
	SeedQuery string
	client    *client
}

// NewTokenSource creates a TokenSource. An empty seed defaults to DefaultSeedQuery.
func NewTokenSource(baseURL, token, seed string, hc *http.Client, logger *zap.Logger) *TokenSource {
	c := newClient(hc, logger, token)
	seed = strings.TrimSpace(seed)
	if seed == "" {
		seed = DefaultSeedQuery
	}
	return &TokenSource{BaseURL: baseURL, Token: token, SeedQuery: seed, client: c}
}

func (s *TokenSource) Provider() Provider { return ProviderToken }

type tokenSearchResponse struct {
	Response   string            `json:"response"`
	Error      string            `json:"error"`
	ResultsFor string            `json:"results-for"`
	Results    []json.RawMessage `json:"results"`
}

type tokenEnvelope struct {
	Response string `json:"response"`
	Error    string `json:"error"`
}

func (s *TokenSource) url(path string) string {
	return joinURL(s.BaseURL, "/"+url.PathEscape(s.Token)+"/"+strings.TrimLeft(path, "/"))
}

func (s *TokenSource) search(ctx context.Context, q string) (tokenSearchResponse, error) {
	var data tokenSearchResponse
	err := s.client.getJSON(ctx, s.url("/search/"+url.PathEscape(q)), &data)
	return data, err
}

// ListHeroes returns the results of a seed search, since the provider has
// no "list all" endpoint. An error envelope is returned as *UpstreamError.
func (s *TokenSource) ListHeroes(ctx context.Context, seedQuery string) ([]models.HeroSummary, error) {
	q := strings.TrimSpace(seedQuery)
	if q == "" {
		q = s.SeedQuery
	}

	data, err := s.search(ctx, q)
	if err != nil {
		return nil, err
	}
	if data.Response == responseError {
		return nil, upstreamError(data.Error)
	}
	return decodeSummaries(ProviderToken, data.Results)
}

// SearchHeroes searches by name. A blank query returns an empty result
// without a request, and an error envelope ("character with given name not
// found") is an empty result rather than a failure.
func (s *TokenSource) SearchHeroes(ctx context.Context, query string) ([]models.HeroSummary, error) {
	q := strings.TrimSpace(query)
	if q == "" {
		return []models.HeroSummary{}, nil
	}

	data, err := s.search(ctx, q)
	if err != nil {
		return nil, err
	}
	if data.Response == responseError {
		s.client.Logger.Debug("search returned no match", zap.String("query", q), zap.String("upstream", data.Error))
		return []models.HeroSummary{}, nil
	}
	return decodeSummaries(ProviderToken, data.Results)
}

func (s *TokenSource) GetHeroByID(ctx context.Context, id string) (models.Hero, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return models.Hero{}, ErrEmptyID
	}

	var raw json.RawMessage
	if err := s.client.getJSON(ctx, s.url("/"+url.PathEscape(id)), &raw); err != nil {
		return models.Hero{}, err
	}

	var env tokenEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return models.Hero{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if env.Response == responseError {
		return models.Hero{}, upstreamError(env.Error)
	}

	var rec tokenRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return models.Hero{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	h, err := rec.hero()
	if err != nil {
		return models.Hero{}, fmt.Errorf("hero %s: %w", id, err)
	}
	return h, nil
}

func upstreamError(msg string) error {
	if strings.TrimSpace(msg) == "" {
		msg = "upstream returned an error"
	}
	return &UpstreamError{Message: msg}
}
