package present

import (
	"math"
	"strconv"
	"strings"

	"herohub/internal/viewstate"
	"herohub/pkg/models"
)

type Stat struct {
	Label   string `json:"label"`
	Percent int    `json:"percent"`
}

type Field struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

type Section struct {
	Title  string  `json:"title"`
	Fields []Field `json:"fields"`
}

type DetailPage struct {
	ID         string    `json:"id"`
	Name       string    `json:"name,omitempty"`
	ImageURL   string    `json:"image_url,omitempty"`
	Powerstats []Stat    `json:"powerstats,omitempty"`
	Sections   []Section `json:"sections,omitempty"`
	Error      string    `json:"error,omitempty"`
	BackHref   string    `json:"back_href"`
}

type fieldSpec struct{ label, key string }

var powerstatFields = []fieldSpec{
	{"Intelligence", "intelligence"},
	{"Strength", "strength"},
	{"Speed", "speed"},
	{"Durability", "durability"},
	{"Power", "power"},
	{"Combat", "combat"},
}

var (
	biographyFields = []fieldSpec{
		{"Nombre completo", "full-name"},
		{"Alter egos", "alter-egos"},
		{"Aliases", "aliases"},
		{"Lugar de nacimiento", "place-of-birth"},
		{"Primera aparición", "first-appearance"},
		{"Publisher", "publisher"},
		{"Alignment", "alignment"},
	}
	appearanceFields = []fieldSpec{
		{"Género", "gender"},
		{"Raza", "race"},
		{"Altura", "height"},
		{"Peso", "weight"},
		{"Color de ojos", "eye-color"},
		{"Color de cabello", "hair-color"},
	}
	workFields = []fieldSpec{
		{"Ocupación", "occupation"},
		{"Base", "base"},
	}
	connectionsFields = []fieldSpec{
		{"Grupo afiliado", "group-affiliation"},
		{"Parientes", "relatives"},
	}
)

// Detail renders a loaded (or failed) detail view.
func Detail(d viewstate.DetailState) DetailPage {
	p := DetailPage{ID: d.ID, Error: d.Error, BackHref: "/"}
	if d.Hero == nil || d.Error != "" {
		return p
	}
	h := d.Hero
	p.ID = h.ID
	p.Name = h.Name
	p.ImageURL = h.Image.URL
	p.Powerstats = Powerstats(h.Powerstats)
	p.Sections = Sections(h)
	return p
}

// Powerstats returns the displayable stats in fixed order.
func Powerstats(sec models.Section) []Stat {
	var out []Stat
	for _, f := range powerstatFields {
		if pct, ok := Percent(sec.Get(f.key)); ok {
			out = append(out, Stat{Label: f.label, Percent: pct})
		}
	}
	return out
}

// Percent parses a stat value into 0..100. Empty, "null", "unknown" and
// non-numeric values are not shown.
func Percent(v models.FieldValue) (int, bool) {
	raw := strings.TrimSpace(v.String())
	switch strings.ToLower(raw) {
	case "", "null", "unknown":
		return 0, false
	}
	n, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	n = math.Max(0, math.Min(100, n))
	return int(math.Round(n)), true
}

// Sections returns the labelled descriptive sections, skipping empty fields
// and sections with nothing left to show.
func Sections(h *models.Hero) []Section {
	var out []Section
	for _, s := range []struct {
		title  string
		data   models.Section
		fields []fieldSpec
	}{
		{"Biografía", h.Biography, biographyFields},
		{"Apariencia", h.Appearance, appearanceFields},
		{"Trabajo", h.Work, workFields},
		{"Conexiones", h.Connections, connectionsFields},
	} {
		if sec, ok := section(s.title, s.data, s.fields); ok {
			out = append(out, sec)
		}
	}
	return out
}

func section(title string, data models.Section, fields []fieldSpec) (Section, bool) {
	sec := Section{Title: title}
	for _, f := range fields {
		if v := data.Get(f.key).String(); v != "" {
			sec.Fields = append(sec.Fields, Field{Label: f.label, Value: v})
		}
	}
	return sec, len(sec.Fields) > 0
}
