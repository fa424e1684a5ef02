package models

import (
	"encoding/json"
	"strings"
)

// FieldValue is a section value: either a single string or a list of strings.
// A nil List means the value is a plain string.
type FieldValue struct {
	Text string
	List []string
}

// Text builds a plain string value.
func Text(s string) FieldValue { return FieldValue{Text: s} }

// List builds a list value.
func List(items ...string) FieldValue {
	if items == nil {
		items = []string{}
	}
	return FieldValue{List: items}
}

func (v FieldValue) IsList() bool { return v.List != nil }

// String renders the value for display: lists are joined with ", ",
// skipping empty entries.
func (v FieldValue) String() string {
	if !v.IsList() {
		return v.Text
	}
	parts := make([]string, 0, len(v.List))
	for _, item := range v.List {
		if item != "" {
			parts = append(parts, item)
		}
	}
	return strings.Join(parts, ", ")
}

func (v FieldValue) MarshalJSON() ([]byte, error) {
	if v.IsList() {
		return json.Marshal(v.List)
	}
	return json.Marshal(v.Text)
}

func (v *FieldValue) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '[' {
		var items []string
		if err := json.Unmarshal(data, &items); err != nil {
			return err
		}
		*v = List(items...)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*v = Text(s)
	return nil
}
