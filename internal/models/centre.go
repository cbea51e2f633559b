package models

import (
	"encoding/json"
	"strconv"
	"strings"

	"centre-block/internal/utils"
)

// CentreRecord is one raw entry from the upstream directory. Nothing about its
// shape is guaranteed beyond being a JSON object, so fields are read through
// the accessors below rather than bound to a struct.
type CentreRecord map[string]any

// ID returns the raw identifier value (string, json.Number or nil).
func (c CentreRecord) ID() any {
	return c["id"]
}

// IDString returns the identifier as text, "" when absent.
func (c CentreRecord) IDString() string {
	return utils.IDString(c["id"])
}

// Text returns a scalar field as a trimmed string. Blank strings and
// non-scalar values count as absent.
func (c CentreRecord) Text(key string) (string, bool) {
	return scalarText(c[key])
}

// NestedText reads a string under a nested object, e.g. location.address.
func (c CentreRecord) NestedText(parent, key string) (string, bool) {
	obj, ok := c[parent].(map[string]any)
	if !ok {
		return "", false
	}
	return scalarText(obj[key])
}

// Lines returns the elements of an array field in order. Strings are kept
// verbatim; numbers and booleans are written out as text. Null and nested
// objects or arrays have no line form and are skipped. A field that is
// missing or not an array yields nil.
func (c CentreRecord) Lines(key string) []string {
	items, ok := c[key].([]any)
	if !ok {
		return nil
	}
	lines := make([]string, 0, len(items))
	for _, item := range items {
		switch v := item.(type) {
		case string:
			lines = append(lines, v)
		case json.Number, float64:
			s, _ := scalarText(v)
			lines = append(lines, s)
		case bool:
			lines = append(lines, strconv.FormatBool(v))
		}
	}
	return lines
}

// Label is the picker text for a centre.
func (c CentreRecord) Label() string {
	if name, ok := c.Text("name"); ok {
		return name
	}
	if title, ok := c.Text("title"); ok {
		return title
	}
	return "Centre " + c.IDString()
}

func scalarText(v any) (string, bool) {
	var s string
	switch val := v.(type) {
	case string:
		s = strings.TrimSpace(val)
	case json.Number:
		s = val.String()
	case float64:
		s = strconv.FormatFloat(val, 'f', -1, 64)
	default:
		return "", false
	}
	return s, s != ""
}

// DisplayModel is the normalized, fallback-applied view of a CentreRecord that
// both the editor preview and the published markup are drawn from. Values are
// plain text; each presentation escapes them for its own target.
type DisplayModel struct {
	Name    string
	Address string
	Phone   string
	// PhoneHref is a tel: URI made only of digits and a leading '+'. Empty
	// when the phone is the fallback text or has no digits.
	PhoneHref string

	// Empty when the upstream field is absent; no fallback text.
	City     string
	Region   string
	PostCode string

	HoursLines []string
	MapsURL    string
}

// LocalityLines returns city, region and post code in that fixed order,
// skipping the absent ones.
func (d DisplayModel) LocalityLines() []string {
	var lines []string
	for _, s := range []string{d.City, d.Region, d.PostCode} {
		if s != "" {
			lines = append(lines, s)
		}
	}
	return lines
}

// HasHours reports whether an opening hours block should be shown.
func (d DisplayModel) HasHours() bool {
	return len(d.HoursLines) > 0
}
