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

// OpenSource talks to the token-less provider that serves the whole dataset:
//
//	GET {BaseURL}/all.json      -> [ {"id": 1, "name": "...", "images": {"xs","sm","md","lg"}, ...}, ... ]
//	GET {BaseURL}/id/{id}.json  -> single record
type OpenSource struct {
	BaseURL string
	client  *client
}

// NewOpenSource creates an OpenSource.
func NewOpenSource(baseURL string, hc *http.Client, logger *zap.Logger) *OpenSource {
	return &OpenSource{BaseURL: baseURL, client: newClient(hc, logger, "")}
}

func (s *OpenSource) Provider() Provider { return ProviderOpen }

// ListHeroes fetches the entire dataset. The seed query is ignored.
func (s *OpenSource) ListHeroes(ctx context.Context, _ string) ([]models.HeroSummary, error) {
	var records []json.RawMessage
	if err := s.client.getJSON(ctx, joinURL(s.BaseURL, "/all.json"), &records); err != nil {
		return nil, err
	}
	return decodeSummaries(ProviderOpen, records)
}

func (s *OpenSource) GetHeroByID(ctx context.Context, id string) (models.Hero, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return models.Hero{}, ErrEmptyID
	}

	var rec openRecord
	if err := s.client.getJSON(ctx, joinURL(s.BaseURL, "/id/"+url.PathEscape(id)+".json"), &rec); err != nil {
		return models.Hero{}, err
	}
	h, err := rec.hero()
	if err != nil {
		return models.Hero{}, fmt.Errorf("hero %s: %w", id, err)
	}
	return h, nil
}

// SearchHeroes is not available without a token; search is resolved
// locally over the full list instead.
func (s *OpenSource) SearchHeroes(context.Context, string) ([]models.HeroSummary, error) {
	return nil, &ConfigurationError{Reason: "remote search requires the token provider (SUPERHERO_API_TOKEN)"}
}
