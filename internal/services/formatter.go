package services

import (
	"net/url"
	"strings"

	"centre-block/internal/models"
)

const (
	FallbackName    = "Collection Centre"
	FallbackAddress = "Address not available"
	FallbackPhone   = "Phone not available"

	MapsSearchBase = "https://www.google.com/maps/search/?api=1&query="
)

// Format normalizes a raw record. Each field falls back on its own; it never
// fails.
func Format(record models.CentreRecord) models.DisplayModel {
	d := models.DisplayModel{
		Name:    firstText(record, FallbackName, "name", "title"),
		Address: FallbackAddress,
		Phone:   FallbackPhone,
	}

	if addr, ok := record.Text("address"); ok {
		d.Address = addr
	} else if addr, ok := record.NestedText("location", "address"); ok {
		d.Address = addr
	}

	if phone, ok := record.Text("phone_number"); ok {
		d.Phone = phone
		d.PhoneHref = telHref(phone)
	}

	d.City, _ = record.Text("city")
	d.Region, _ = record.Text("region")
	d.PostCode, _ = record.Text("post_code")

	d.HoursLines = record.Lines("opening_hours")
	if d.HoursLines == nil {
		d.HoursLines = []string{}
	}

	// Still generated for the fallback address.
	d.MapsURL = MapsSearchBase + url.QueryEscape(d.Address)

	return d
}

func firstText(record models.CentreRecord, fallback string, keys ...string) string {
	for _, k := range keys {
		if s, ok := record.Text(k); ok {
			return s
		}
	}
	return fallback
}

// telHref keeps digits and a leading '+' so the link can never carry markup
// or another URI scheme.
func telHref(phone string) string {
	var b strings.Builder
	for i, r := range strings.TrimSpace(phone) {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '+' && i == 0:
			b.WriteRune(r)
		}
	}
	digits := strings.TrimPrefix(b.String(), "+")
	if digits == "" {
		return ""
	}
	return "tel:" + b.String()
}
