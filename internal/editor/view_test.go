package editor

import (
	"testing"

	"centre-block/internal/models"
	"centre-block/internal/services"

	"github.com/stretchr/testify/assert"
)

func TestTermSafe(t *testing.T) {
	assert.Equal(t, "Red", termSafe("\x1b[31mRed\x1b[0m"))
	assert.NotContains(t, termSafe("a\x07b"), "\x07")
	assert.Equal(t, "Ōtāhuhu", termSafe("Ōtāhuhu"))
}

func TestRenderDisplay_MatchesPublishedSections(t *testing.T) {
	d := services.Format(models.CentreRecord{
		"id":            "1",
		"name":          "Hamilton",
		"address":       "9 Victoria St",
		"region":        "Waikato",
		"opening_hours": []any{"Mon-Fri 8am-4pm"},
	})

	out := renderDisplay(d)
	assert.Contains(t, out, "Hamilton")
	assert.Contains(t, out, "9 Victoria St")
	assert.Contains(t, out, "Waikato")
	assert.Contains(t, out, services.FallbackPhone)
	assert.Contains(t, out, "Opening Hours:")
	assert.Contains(t, out, "Mon-Fri 8am-4pm")
	assert.Contains(t, out, d.MapsURL)
}

func TestRenderDisplay_NoHoursSection(t *testing.T) {
	out := renderDisplay(services.Format(models.CentreRecord{"id": "1"}))
	assert.NotContains(t, out, "Opening Hours:")
	assert.Contains(t, out, services.FallbackName)
}

func TestOptions_LabelFallbacks(t *testing.T) {
	m := Model{centres: []models.CentreRecord{
		{"id": "1", "name": "Named"},
		{"id": "2", "title": "Titled"},
		{"id": "3"},
		{"id": "4", "name": "\x1b[2JWipe"},
	}}

	opts := m.options()
	assert.Equal(t, clearOption, opts[0].label)
	assert.Equal(t, "Named", opts[1].label)
	assert.Equal(t, "Titled", opts[2].label)
	assert.Equal(t, "Centre 3", opts[3].label)
	assert.Equal(t, "Wipe", opts[4].label)
}
