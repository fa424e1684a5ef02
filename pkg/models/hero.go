package models

// HeroImage holds the single image URL picked for a hero.
// An empty URL means the hero has no image.
type HeroImage struct {
	URL string `json:"url"`
}

// HeroSummary is the normalized, internal form of a hero list entry.
//
// Every upstream provider is mapped into this structure by the heroes
// package; nothing outside that package sees provider field names.
type HeroSummary struct {
	ID    string    `json:"id"`
	Name  string    `json:"name"`
	Image HeroImage `json:"image"`
}

// Hero is the full detail record: the summary plus optional free-form sections.
type Hero struct {
	HeroSummary
	Powerstats  Section `json:"powerstats,omitempty"`
	Biography   Section `json:"biography,omitempty"`
	Appearance  Section `json:"appearance,omitempty"`
	Work        Section `json:"work,omitempty"`
	Connections Section `json:"connections,omitempty"`
}

// Section maps a field name (e.g. "full-name", "eye-color") to its value.
type Section map[string]FieldValue

// Get returns the value stored under key, or the zero FieldValue.
func (s Section) Get(key string) FieldValue {
	if s == nil {
		return FieldValue{}
	}
	return s[key]
}
