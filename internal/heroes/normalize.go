package heroes

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"herohub/pkg/models"
)

// Shape identifies which upstream record layout a JSON object follows.
type Shape int

const (
	ShapeUnknown Shape = iota
	ShapeToken         // string id, image.url
	ShapeOpen          // numeric id, images.{sm,md,lg}
)

func (s Shape) String() string {
	switch s {
	case ShapeToken:
		return "token"
	case ShapeOpen:
		return "open"
	default:
		return "unknown"
	}
}

// DetectShape classifies a single upstream record by the JSON type of its
// "id" field: a number means the open provider, a string the token provider.
func DetectShape(record json.RawMessage) (Shape, error) {
	var probe struct {
		ID json.RawMessage `json:"id"`
	}
	if err := json.Unmarshal(record, &probe); err != nil {
		return ShapeUnknown, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return shapeOfID(probe.ID), nil
}

func shapeOfID(id json.RawMessage) Shape {
	b := bytes.TrimSpace(id)
	if len(b) == 0 {
		return ShapeUnknown
	}
	switch c := b[0]; {
	case c == '"':
		return ShapeToken
	case c == '-' || (c >= '0' && c <= '9'):
		return ShapeOpen
	default:
		return ShapeUnknown
	}
}

type rawSections struct {
	Powerstats  map[string]json.RawMessage `json:"powerstats"`
	Biography   map[string]json.RawMessage `json:"biography"`
	Appearance  map[string]json.RawMessage `json:"appearance"`
	Work        map[string]json.RawMessage `json:"work"`
	Connections map[string]json.RawMessage `json:"connections"`
}

func (r rawSections) apply(h *models.Hero) {
	h.Powerstats = normalizeSection(r.Powerstats)
	h.Biography = normalizeSection(r.Biography)
	h.Appearance = normalizeSection(r.Appearance)
	h.Work = normalizeSection(r.Work)
	h.Connections = normalizeSection(r.Connections)
}

// tokenRecord is the token provider's hero layout.
type tokenRecord struct {
	ID    json.RawMessage `json:"id"`
	Name  string          `json:"name"`
	Image *struct {
		URL string `json:"url"`
	} `json:"image"`
	rawSections
}

func (r tokenRecord) summary(index int) (models.HeroSummary, error) {
	if got := shapeOfID(r.ID); got != ShapeToken {
		return models.HeroSummary{}, &ShapeError{Provider: ProviderToken, Got: got, Index: index}
	}
	var id string
	if err := json.Unmarshal(r.ID, &id); err != nil {
		return models.HeroSummary{}, fmt.Errorf("%w: id: %v", ErrMalformedResponse, err)
	}

	url := ""
	if r.Image != nil {
		url = r.Image.URL
	}
	return models.HeroSummary{ID: id, Name: r.Name, Image: models.HeroImage{URL: url}}, nil
}

func (r tokenRecord) hero() (models.Hero, error) {
	s, err := r.summary(0)
	if err != nil {
		return models.Hero{}, err
	}
	h := models.Hero{HeroSummary: s}
	r.rawSections.apply(&h)
	return h, nil
}

// openRecord is the open provider's hero layout.
type openRecord struct {
	ID     json.RawMessage `json:"id"`
	Name   string          `json:"name"`
	Images *struct {
		XS string `json:"xs"`
		SM string `json:"sm"`
		MD string `json:"md"`
		LG string `json:"lg"`
	} `json:"images"`
	rawSections
}

func (r openRecord) summary(index int) (models.HeroSummary, error) {
	if got := shapeOfID(r.ID); got != ShapeOpen {
		return models.HeroSummary{}, &ShapeError{Provider: ProviderOpen, Got: got, Index: index}
	}
	id, err := numberString(r.ID)
	if err != nil {
		return models.HeroSummary{}, fmt.Errorf("%w: id: %v", ErrMalformedResponse, err)
	}

	url := ""
	if r.Images != nil {
		url = firstNonEmpty(r.Images.SM, r.Images.MD, r.Images.LG)
	}
	return models.HeroSummary{ID: id, Name: r.Name, Image: models.HeroImage{URL: url}}, nil
}

func (r openRecord) hero() (models.Hero, error) {
	s, err := r.summary(0)
	if err != nil {
		return models.Hero{}, err
	}
	h := models.Hero{HeroSummary: s}
	r.rawSections.apply(&h)
	return h, nil
}

// decodeSummaries decodes a batch of records of the provider's shape.
func decodeSummaries(p Provider, records []json.RawMessage) ([]models.HeroSummary, error) {
	out := make([]models.HeroSummary, 0, len(records))
	for i, raw := range records {
		var (
			s   models.HeroSummary
			err error
		)
		switch p {
		case ProviderToken:
			var rec tokenRecord
			if err := json.Unmarshal(raw, &rec); err != nil {
				return nil, fmt.Errorf("%w: record %d: %v", ErrMalformedResponse, i, err)
			}
			s, err = rec.summary(i)
		case ProviderOpen:
			var rec openRecord
			if err := json.Unmarshal(raw, &rec); err != nil {
				return nil, fmt.Errorf("%w: record %d: %v", ErrMalformedResponse, i, err)
			}
			s, err = rec.summary(i)
		default:
			return nil, &ConfigurationError{Reason: fmt.Sprintf("unknown provider %q", p)}
		}
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func normalizeSection(raw map[string]json.RawMessage) models.Section {
	if len(raw) == 0 {
		return nil
	}
	out := make(models.Section, len(raw))
	for k, v := range raw {
		if fv, ok := normalizeValue(v); ok {
			out[k] = fv
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// normalizeValue maps a section value to a FieldValue. Nulls and nested
// objects are dropped; arrays become lists without their null elements.
func normalizeValue(raw json.RawMessage) (models.FieldValue, bool) {
	b := bytes.TrimSpace(raw)
	if len(b) == 0 {
		return models.FieldValue{}, false
	}
	switch b[0] {
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(b, &items); err != nil {
			return models.FieldValue{}, false
		}
		list := make([]string, 0, len(items))
		for _, it := range items {
			if s, ok := scalarString(it); ok {
				list = append(list, s)
			}
		}
		return models.List(list...), true
	case '{':
		return models.FieldValue{}, false
	default:
		s, ok := scalarString(b)
		if !ok {
			return models.FieldValue{}, false
		}
		return models.Text(s), true
	}
}

func scalarString(raw json.RawMessage) (string, bool) {
	b := bytes.TrimSpace(raw)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return "", false
	}
	switch b[0] {
	case '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return "", false
		}
		return s, true
	case 't', 'f':
		var v bool
		if err := json.Unmarshal(b, &v); err != nil {
			return "", false
		}
		return strconv.FormatBool(v), true
	case '{', '[':
		return "", false
	default:
		var n json.Number
		if err := json.Unmarshal(b, &n); err != nil {
			return "", false
		}
		return n.String(), true
	}
}

func numberString(raw json.RawMessage) (string, error) {
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", err
	}
	if i, err := n.Int64(); err == nil {
		return strconv.FormatInt(i, 10), nil
	}
	f, err := n.Float64()
	if err != nil {
		return "", err
	}
	return strconv.FormatFloat(f, 'f', -1, 64), nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
