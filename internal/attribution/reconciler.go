package attribution

import (
	"context"
	"errors"

	"github.com/liljb23/promotrack/internal/docstore"
	"github.com/liljb23/promotrack/internal/metrics"
	"github.com/liljb23/promotrack/internal/models"
	"go.uber.org/zap"
)

// Reconciler fills gaps in a report's campaign metadata from secondary
// sources, in strict priority order:
//
//  1. the subscription referenced by the report's subscriptionId,
//  2. the subscription matching (campaignId, serviceId),
//  3. the static campaign tier table.
//
// A later pass only fills fields still missing after earlier passes; it
// never overwrites. Each pass is independently fault-tolerant: not-found and
// transient lookup failures are logged and contribute nothing.
type Reconciler struct {
	store   docstore.Store
	logger  *zap.Logger
	metrics *metrics.Metrics
}

// NewReconciler constructs a Reconciler backed by the given store.
func NewReconciler(store docstore.Store, logger *zap.Logger, m *metrics.Metrics) *Reconciler {
	return &Reconciler{store: store, logger: logger, metrics: m}
}

// Reconcile enriches meta in place and returns it. Fields that remain nil
// after all passes are genuinely unavailable; the presenter renders them as
// an explicit "not available" marker.
func (rc *Reconciler) Reconcile(ctx context.Context, serviceID string, meta *models.CampaignMetadata) *models.CampaignMetadata {
	if meta == nil {
		return nil
	}
	rc.fillFromSubscriptionByID(ctx, meta)
	rc.fillFromSubscriptionQuery(ctx, serviceID, meta)
	rc.fillFromTierTable(meta)
	return meta
}

// Pass 1: direct subscription lookup by the denormalized subscriptionId.
func (rc *Reconciler) fillFromSubscriptionByID(ctx context.Context, meta *models.CampaignMetadata) {
	const pass = "subscription_by_id"

	if meta.SubscriptionID == "" {
		return
	}
	if meta.CampaignName != nil && meta.Price != nil {
		return
	}

	doc, err := rc.store.Get(ctx, models.CollectionSubscriptions, meta.SubscriptionID)
	if errors.Is(err, docstore.ErrNotFound) {
		rc.miss(pass, "not_found", meta.SubscriptionID, nil)
		return
	}
	if err != nil {
		rc.miss(pass, "store_error", meta.SubscriptionID, err)
		return
	}

	sub := models.SubscriptionFromDocument(doc)
	if meta.CampaignName == nil && sub.CampaignName != "" {
		meta.CampaignName = &sub.CampaignName
		rc.fill(pass)
	}
	if meta.Price == nil && sub.Price > 0 {
		price := sub.Price
		meta.Price = &price
		rc.fill(pass)
	}
}

// Pass 2: composite query on (campaignId, serviceId). Runs after pass 1 and
// can fill fields pass 1 does not carry (duration, end date), but never
// replaces a value pass 1 already filled.
func (rc *Reconciler) fillFromSubscriptionQuery(ctx context.Context, serviceID string, meta *models.CampaignMetadata) {
	const pass = "subscription_by_query"

	if meta.CampaignID == "" || serviceID == "" {
		return
	}
	if meta.CampaignName != nil && meta.Price != nil && meta.Duration != nil && meta.EndDate != nil {
		return
	}

	docs, err := rc.store.QueryByEqualityPair(ctx, models.CollectionSubscriptions, []docstore.Filter{
		{Field: models.FieldCampaignID, Value: meta.CampaignID},
		{Field: models.FieldServiceID, Value: serviceID},
	})
	if err != nil {
		rc.miss(pass, "store_error", meta.CampaignID, err)
		return
	}
	if len(docs) == 0 {
		rc.miss(pass, "not_found", meta.CampaignID, nil)
		return
	}

	sub := models.SubscriptionFromDocument(docs[0])
	if meta.Duration == nil && sub.Duration != "" {
		meta.Duration = &sub.Duration
		rc.fill(pass)
	}
	if meta.EndDate == nil && !sub.EndDate.IsZero() {
		end := sub.EndDate
		meta.EndDate = &end
		rc.fill(pass)
	}
	if meta.CampaignName == nil && sub.CampaignName != "" {
		meta.CampaignName = &sub.CampaignName
		rc.fill(pass)
	}
	if meta.Price == nil && sub.Price > 0 {
		price := sub.Price
		meta.Price = &price
		rc.fill(pass)
	}
}

// Pass 3: static tier table fallback keyed by the campaign tier id.
func (rc *Reconciler) fillFromTierTable(meta *models.CampaignMetadata) {
	const pass = "tier_table"

	if meta.CampaignName != nil && meta.Price != nil && meta.Duration != nil {
		return
	}
	tier, ok := models.LookupTier(meta.CampaignID)
	if !ok {
		if meta.CampaignID != "" {
			rc.miss(pass, "unknown_tier", meta.CampaignID, nil)
		}
		return
	}

	if meta.CampaignName == nil {
		name := tier.CampaignName
		meta.CampaignName = &name
		rc.fill(pass)
	}
	if meta.Price == nil {
		price := tier.Price
		meta.Price = &price
		rc.fill(pass)
	}
	if meta.Duration == nil {
		duration := tier.Duration
		meta.Duration = &duration
		rc.fill(pass)
	}
}

func (rc *Reconciler) fill(pass string) {
	if rc.metrics != nil {
		rc.metrics.ReconcileFills.WithLabelValues(pass).Inc()
	}
}

func (rc *Reconciler) miss(pass, reason, key string, err error) {
	if err != nil {
		rc.logger.Warn("reconciliation pass failed",
			zap.String("pass", pass),
			zap.String("key", key),
			zap.Error(err),
		)
	} else {
		rc.logger.Debug("reconciliation pass contributed nothing",
			zap.String("pass", pass),
			zap.String("reason", reason),
			zap.String("key", key),
		)
	}
	if rc.metrics != nil {
		rc.metrics.ReconcileMiss.WithLabelValues(pass, reason).Inc()
	}
}
