package directory

import (
	"context"
	"errors"
	"fmt"

	"github.com/liljb23/promotrack/internal/docstore"
	"github.com/liljb23/promotrack/internal/models"
	"go.uber.org/zap"
)

// Feed builds the promoted-services rail shown on the app's home screen:
// services with an active campaign subscription, joined to their directory
// listing.
type Feed struct {
	store  docstore.Store
	logger *zap.Logger
}

// NewFeed constructs a Feed backed by the given store.
func NewFeed(store docstore.Store, logger *zap.Logger) *Feed {
	return &Feed{store: store, logger: logger}
}

// PromotedService is one feed entry. It carries the attribution correlation
// ids so the client can report impressions, clicks and conversions against
// the right campaign.
type PromotedService struct {
	CampaignID     string `json:"campaign_id"`
	ServiceID      string `json:"service_id"`
	EntrepreneurID string `json:"entrepreneur_id"`
	SubscriptionID string `json:"subscription_id,omitempty"`
	Name           string `json:"name"`
	Category       string `json:"category"`
	Image          string `json:"image,omitempty"`
	Phone          string `json:"phone,omitempty"`
	Location       string `json:"location,omitempty"`
}

// Promoted returns the active promoted services. Subscriptions without a
// resolvable service are skipped with a log line; a service promoted by
// several subscriptions appears once, first subscription wins.
func (f *Feed) Promoted(ctx context.Context) ([]PromotedService, error) {
	docs, err := f.store.QueryByEquality(ctx, models.CollectionSubscriptions, models.FieldStatus, models.SubscriptionActive)
	if err != nil {
		return nil, fmt.Errorf("failed to query active subscriptions: %w", err)
	}

	feed := make([]PromotedService, 0, len(docs))
	seen := make(map[string]bool, len(docs))
	for _, doc := range docs {
		sub := models.SubscriptionFromDocument(doc)
		if sub.ServiceID == "" {
			f.logger.Warn("active subscription missing serviceId",
				zap.String("subscription_id", sub.ID))
			continue
		}
		if seen[sub.ServiceID] {
			continue
		}

		svcDoc, err := f.store.Get(ctx, models.CollectionServices, sub.ServiceID)
		if errors.Is(err, docstore.ErrNotFound) {
			f.logger.Warn("promoted service not found in directory",
				zap.String("service_id", sub.ServiceID),
				zap.String("subscription_id", sub.ID))
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to load service %s: %w", sub.ServiceID, err)
		}
		svc := models.ServiceFromDocument(sub.ServiceID, svcDoc)

		owner := sub.EntrepreneurID
		if owner == "" {
			owner = svc.EntrepreneurID
		}

		feed = append(feed, PromotedService{
			CampaignID:     sub.CampaignID,
			ServiceID:      sub.ServiceID,
			EntrepreneurID: owner,
			SubscriptionID: sub.ID,
			Name:           svc.Name,
			Category:       svc.Category,
			Image:          svc.Image,
			Phone:          svc.Phone,
			Location:       svc.Location,
		})
		seen[sub.ServiceID] = true
	}
	return feed, nil
}
