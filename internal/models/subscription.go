package models

import (
	"time"

	"github.com/liljb23/promotrack/internal/docstore"
)

// Subscription lifecycle states.
const (
	SubscriptionWaitingPayment = "waiting_payment"
	SubscriptionActive         = "active"
	SubscriptionInactive       = "inactive"
)

// CampaignSubscription is a purchased promotional placement for a service.
// It is written by the purchase flow and read-only for the attribution core.
type CampaignSubscription struct {
	ID             string    `json:"id,omitempty"`
	CampaignID     string    `json:"campaign_id"`
	ServiceID      string    `json:"service_id"`
	EntrepreneurID string    `json:"entrepreneur_id"`
	CampaignName   string    `json:"campaign_name"`
	Price          float64   `json:"price"`
	Duration       string    `json:"duration"`
	Days           int       `json:"days"`
	StartDate      time.Time `json:"start_date"`
	EndDate        time.Time `json:"end_date"`
	Status         string    `json:"status"`
}

// SubscriptionFromDocument maps a raw subscription document to the typed
// model, tolerating missing fields.
func SubscriptionFromDocument(doc docstore.Document) CampaignSubscription {
	sub := CampaignSubscription{
		ID:             doc.String("id"),
		CampaignID:     doc.String(FieldCampaignID),
		ServiceID:      doc.String(FieldServiceID),
		EntrepreneurID: doc.String(FieldOwnerID),
		CampaignName:   doc.String("campaignName"),
		Duration:       doc.String("duration"),
		Status:         doc.String(FieldStatus),
	}
	if price, ok := doc.Float64("price"); ok {
		sub.Price = price
	}
	if days, ok := doc.Float64("days"); ok {
		sub.Days = int(days)
	}
	if start, ok := doc.Time(FieldCreatedAt); ok {
		sub.StartDate = start
	}
	if end, ok := doc.Time("endDate"); ok {
		sub.EndDate = end
	}
	return sub
}

// Service is a directory listing owned by an entrepreneur.
type Service struct {
	ID             string `json:"id,omitempty"`
	Name           string `json:"name"`
	Category       string `json:"category"`
	EntrepreneurID string `json:"entrepreneur_id"`
	Phone          string `json:"phone,omitempty"`
	Image          string `json:"image,omitempty"`
	Location       string `json:"location,omitempty"`
	Status         string `json:"status,omitempty"`
}

// ServiceFromDocument maps a raw service document to the typed model.
func ServiceFromDocument(id string, doc docstore.Document) Service {
	return Service{
		ID:             id,
		Name:           doc.String("name"),
		Category:       doc.String("category"),
		EntrepreneurID: doc.String(FieldOwnerID),
		Phone:          doc.String("phone"),
		Image:          doc.String("image"),
		Location:       doc.String("location"),
		Status:         doc.String(FieldStatus),
	}
}
