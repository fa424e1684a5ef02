// Package present turns list snapshots and hero details into the view models
// served by the HTTP, websocket and CLI surfaces.
package present

import (
	"fmt"
	"net/url"

	"herohub/internal/viewstate"
)

const emptyNotice = "No se encontraron héroes"

type Card struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	ImageURL string `json:"image_url,omitempty"`
	Href     string `json:"href"`
}

type ListPage struct {
	Query        string `json:"query"`
	Remote       bool   `json:"remote"`
	Cards        []Card `json:"cards"`
	Page         int    `json:"page"`
	TotalPages   int    `json:"total_pages"`
	Total        int    `json:"total"`
	PageLabel    string `json:"page_label"`
	PrevDisabled bool   `json:"prev_disabled"`
	NextDisabled bool   `json:"next_disabled"`
	Loading      bool   `json:"loading"`
	Error        string `json:"error,omitempty"`
	Empty        string `json:"empty,omitempty"`
}

// HeroHref is the detail link for a hero id.
func HeroHref(id string) string {
	return "/hero/" + url.PathEscape(id)
}

// PageLabel renders "Página X de Y".
func PageLabel(page, total int) string {
	return fmt.Sprintf("Página %d de %d", page, total)
}

func List(s viewstate.State) ListPage {
	cards := make([]Card, 0, len(s.Items))
	for _, h := range s.Items {
		cards = append(cards, Card{
			ID:       h.ID,
			Name:     h.Name,
			ImageURL: h.Image.URL,
			Href:     HeroHref(h.ID),
		})
	}

	p := ListPage{
		Query:        s.Query,
		Remote:       s.Remote,
		Cards:        cards,
		Page:         s.Page,
		TotalPages:   s.TotalPages,
		Total:        s.Total,
		PageLabel:    PageLabel(s.Page, s.TotalPages),
		PrevDisabled: !s.HasPrev(),
		NextDisabled: !s.HasNext(),
		Loading:      s.Loading,
		Error:        s.Error,
	}
	if !s.Loading && s.Error == "" && s.Total == 0 {
		p.Empty = emptyNotice
	}
	return p
}
