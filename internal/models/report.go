package models

import (
	"time"

	"github.com/liljb23/promotrack/internal/docstore"
)

// ReportSummary is the derived, on-demand report for a service: counters
// summed across all of the service's campaign report documents, plus the
// reconciled metadata of one campaign. It is never persisted.
type ReportSummary struct {
	Impressions int64             `json:"impressions"`
	Clicks      int64             `json:"clicks"`
	Conversions int64             `json:"conversions"`
	Summary     *CampaignMetadata `json:"summary"`
}

// CampaignMetadata describes one campaign alongside the counters. Pointer
// fields are optional: nil means the value could not be resolved from any
// source and the presenter must render an explicit "not available" marker,
// never an empty string.
type CampaignMetadata struct {
	CampaignID     string `json:"campaign_id,omitempty"`
	ServiceID      string `json:"service_id,omitempty"`
	EntrepreneurID string `json:"entrepreneur_id,omitempty"`
	SubscriptionID string `json:"subscription_id,omitempty"`

	CampaignName *string    `json:"campaign_name,omitempty"`
	Price        *float64   `json:"price,omitempty"`
	Duration     *string    `json:"duration,omitempty"`
	StartDate    *time.Time `json:"start_date,omitempty"`
	EndDate      *time.Time `json:"end_date,omitempty"`
}

// MetadataFromReportDoc seeds campaign metadata from a raw report document.
// Report documents normally carry only identity fields, but older writers
// denormalized name/price/dates onto them, so those are picked up when
// present.
func MetadataFromReportDoc(doc docstore.Document) *CampaignMetadata {
	m := &CampaignMetadata{
		CampaignID:     doc.String(FieldCampaignID),
		ServiceID:      doc.String(FieldServiceID),
		EntrepreneurID: doc.String(FieldEntrepreneurID),
		SubscriptionID: doc.String(FieldSubscriptionID),
	}
	if name := doc.String("campaignName"); name != "" {
		m.CampaignName = &name
	}
	if price, ok := doc.Float64("price"); ok {
		m.Price = &price
	}
	if duration := doc.String("duration"); duration != "" {
		m.Duration = &duration
	}
	if start, ok := doc.Time("startDate"); ok {
		m.StartDate = &start
	}
	if end, ok := doc.Time("endDate"); ok {
		m.EndDate = &end
	}
	return m
}
