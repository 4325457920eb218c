package models

import (
	"errors"
	"fmt"
)

// EventType classifies a campaign attribution event.
type EventType string

const (
	// EventImpression is a render of a promoted service card.
	EventImpression EventType = "impression"
	// EventClick is an open of the promoted service's detail view.
	EventClick EventType = "click"
	// EventConversion is a high-intent action, e.g. initiating a phone call.
	EventConversion EventType = "conversion"
)

// Valid reports whether t is a known event type.
func (t EventType) Valid() bool {
	switch t {
	case EventImpression, EventClick, EventConversion:
		return true
	}
	return false
}

// CounterField returns the report counter incremented by this event type.
func (t EventType) CounterField() string {
	switch t {
	case EventImpression:
		return FieldImpressions
	case EventClick:
		return FieldClicks
	case EventConversion:
		return FieldConversions
	}
	return ""
}

// CampaignEvent is a single attribution event emitted while browsing the
// app. Events are never persisted as a log; their only effect is a counter
// increment on the campaign's report document.
type CampaignEvent struct {
	CampaignID     string    `json:"campaign_id"`
	ServiceID      string    `json:"service_id"`
	EntrepreneurID string    `json:"entrepreneur_id"`
	Type           EventType `json:"type"`
}

// Validate checks the correlation fields. An event failing validation is
// dropped whole; no partial write may occur.
func (e CampaignEvent) Validate() error {
	var missing []string
	if e.CampaignID == "" {
		missing = append(missing, "campaign_id")
	}
	if e.ServiceID == "" {
		missing = append(missing, "service_id")
	}
	if e.EntrepreneurID == "" {
		missing = append(missing, "entrepreneur_id")
	}
	if e.Type == "" {
		missing = append(missing, "type")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing fields: %v", missing)
	}
	if !e.Type.Valid() {
		return errors.New("unknown event type " + string(e.Type))
	}
	return nil
}
