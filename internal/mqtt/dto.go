package mqtt

import (
	"time"

	"github.com/google/uuid"
	"github.com/tphakala/duckwatch/internal/sighting"
)

// SightingEventDTO is the JSON payload published when a sighting is created.
type SightingEventDTO struct {
	EventID     string `json:"eventId"`
	Species     string `json:"species"`
	Description string `json:"description"`
	DateTime    string `json:"dateTime"`
	Count       int    `json:"count"`
	PublishedAt string `json:"publishedAt"`
}

// NewSightingEvent builds the event for a created sighting.
func NewSightingEvent(req sighting.CreateRequest, now time.Time) SightingEventDTO {
	return SightingEventDTO{
		EventID:     uuid.NewString(),
		Species:     req.Species,
		Description: req.Description,
		DateTime:    req.DateTime,
		Count:       req.Count,
		PublishedAt: sighting.FormatTimestamp(now),
	}
}
