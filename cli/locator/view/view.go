package view

import (
	"github.com/daniil11ru/lastseen/cli/locator/model"
)

// View selects which canonical fields a caller receives.
type View string

const (
	Full   View = "full"
	GPS    View = "gps"
	Mobile View = "mobile"
)

// Parse maps a request parameter to a view. An empty or unrecognized value
// falls back to the full view; projection is total and never fails.
func Parse(s string) View {
	switch View(s) {
	case GPS:
		return GPS
	case Mobile:
		return Mobile
	default:
		return Full
	}
}

// FullPosition exposes every canonical field with the identifier renamed.
type FullPosition struct {
	ID          string                 `json:"id"`
	Lat         *float64               `json:"lat"`
	Lng         *float64               `json:"lng"`
	Timestamp   *string                `json:"timestamp"`
	ReceivedAt  *string                `json:"received_at"`
	UpdatedAt   *string                `json:"updated_at"`
	Metadata    map[string]interface{} `json:"metadata"`
	DisplayName *string                `json:"display_name"`
	RetrievedAt string                 `json:"retrieved_at"`
}

// GPSPosition is the bandwidth-minimal shape.
type GPSPosition struct {
	ID  string   `json:"id"`
	Lat *float64 `json:"lat"`
	Lng *float64 `json:"lng"`
}

// MobilePosition adds a display name, falling back to the identifier.
type MobilePosition struct {
	ID   string   `json:"id"`
	Lat  *float64 `json:"lat"`
	Lng  *float64 `json:"lng"`
	Name string   `json:"name"`
}

// Project trims a canonical record into the requested shape.
func Project(p *model.Position, v View) interface{} {
	switch v {
	case GPS:
		return GPSPosition{ID: p.EntityID, Lat: p.Lat, Lng: p.Lng}
	case Mobile:
		return MobilePosition{ID: p.EntityID, Lat: p.Lat, Lng: p.Lng, Name: p.Name()}
	default:
		return FullPosition{
			ID:          p.EntityID,
			Lat:         p.Lat,
			Lng:         p.Lng,
			Timestamp:   p.Timestamp,
			ReceivedAt:  p.ReceivedAt,
			UpdatedAt:   p.UpdatedAt,
			Metadata:    p.Metadata,
			DisplayName: p.DisplayName,
			RetrievedAt: p.RetrievedAt,
		}
	}
}

// ProjectAll projects a slice of records in order.
func ProjectAll(records []*model.Position, v View) []interface{} {
	projected := make([]interface{}, 0, len(records))
	for _, record := range records {
		projected = append(projected, Project(record, v))
	}
	return projected
}
