package viewstate

import (
	"context"
	"errors"
	"strings"

	"herohub/pkg/models"
)

// ErrMissingID is reported when the detail route is reached without an id.
var ErrMissingID = errors.New("hero id is required")

// DetailSource is the subset of heroes.Source the detail view needs.
type DetailSource interface {
	GetHeroByID(ctx context.Context, id string) (models.Hero, error)
}

// DetailState is the outcome of loading one hero. Exactly one of Hero and
// Err is set.
type DetailState struct {
	ID    string       `json:"id"`
	Hero  *models.Hero `json:"hero,omitempty"`
	Error string       `json:"error,omitempty"`
	Err   error        `json:"-"`
}

// LoadDetail fetches one hero. A blank id fails without a request.
func LoadDetail(ctx context.Context, src DetailSource, id string) DetailState {
	id = strings.TrimSpace(id)
	if id == "" {
		return DetailState{Error: ErrMissingID.Error(), Err: ErrMissingID}
	}

	h, err := src.GetHeroByID(ctx, id)
	if err != nil {
		return DetailState{ID: id, Error: err.Error(), Err: err}
	}
	return DetailState{ID: id, Hero: &h}
}
