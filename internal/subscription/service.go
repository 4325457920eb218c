package subscription

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/liljb23/promotrack/internal/docstore"
	"github.com/liljb23/promotrack/internal/metrics"
	"github.com/liljb23/promotrack/internal/models"
	"go.uber.org/zap"
)

// ErrNotFound is returned when a subscription id does not exist.
var ErrNotFound = errors.New("subscription not found")

// ErrUnknownTier is returned when a purchase names a tier outside the
// static tier table.
var ErrUnknownTier = errors.New("unknown campaign tier")

// Service handles the campaign subscription purchase flow. Subscriptions
// created here are what the attribution reconciler later reads.
type Service struct {
	store   docstore.Store
	logger  *zap.Logger
	metrics *metrics.Metrics
	now     func() time.Time
	newID   func() string
}

// NewService constructs a subscription service backed by the given store.
func NewService(store docstore.Store, logger *zap.Logger, m *metrics.Metrics) *Service {
	return &Service{
		store:   store,
		logger:  logger,
		metrics: m,
		now:     time.Now,
		newID:   uuid.NewString,
	}
}

// PurchaseParams identifies what is being bought and by whom.
type PurchaseParams struct {
	EntrepreneurID string `json:"entrepreneur_id"`
	ServiceID      string `json:"service_id"`
	TierKey        string `json:"tier"`
}

// Purchase creates a subscription in waiting_payment state: tier-derived
// name, price and duration, end date computed from the tier's day count.
// Activation happens separately once payment confirms.
func (s *Service) Purchase(ctx context.Context, p PurchaseParams) (*models.CampaignSubscription, error) {
	if p.EntrepreneurID == "" || p.ServiceID == "" {
		return nil, errors.New("entrepreneur_id and service_id are required")
	}
	tier, ok := models.LookupTier(p.TierKey)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTier, p.TierKey)
	}

	now := s.now().UTC()
	end := now.AddDate(0, 0, tier.Days)
	id := s.newID()

	doc := docstore.Document{
		"id":                   id,
		models.FieldOwnerID:    p.EntrepreneurID,
		models.FieldServiceID:  p.ServiceID,
		models.FieldCampaignID: tier.Key,
		"campaignName":         tier.CampaignName,
		"price":                tier.Price,
		"duration":             tier.Duration,
		"days":                 tier.Days,
		models.FieldCreatedAt:  now,
		"endDate":              end,
		models.FieldStatus:     models.SubscriptionWaitingPayment,
	}
	if err := s.store.UpsertMerge(ctx, models.CollectionSubscriptions, id, doc); err != nil {
		return nil, fmt.Errorf("failed to create subscription: %w", err)
	}

	if s.metrics != nil {
		s.metrics.SubscriptionPurchases.WithLabelValues(tier.Key).Inc()
	}
	s.logger.Info("campaign subscription created",
		zap.String("subscription_id", id),
		zap.String("service_id", p.ServiceID),
		zap.String("tier", tier.Key),
	)

	return &models.CampaignSubscription{
		ID:             id,
		CampaignID:     tier.Key,
		ServiceID:      p.ServiceID,
		EntrepreneurID: p.EntrepreneurID,
		CampaignName:   tier.CampaignName,
		Price:          tier.Price,
		Duration:       tier.Duration,
		Days:           tier.Days,
		StartDate:      now,
		EndDate:        end,
		Status:         models.SubscriptionWaitingPayment,
	}, nil
}

// Activate marks a subscription active after payment confirmation. The
// service then starts appearing in the promoted feed.
func (s *Service) Activate(ctx context.Context, id string) error {
	_, err := s.store.Get(ctx, models.CollectionSubscriptions, id)
	if errors.Is(err, docstore.ErrNotFound) {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return fmt.Errorf("failed to load subscription %s: %w", id, err)
	}

	err = s.store.UpsertMerge(ctx, models.CollectionSubscriptions, id, docstore.Document{
		models.FieldStatus:    models.SubscriptionActive,
		models.FieldUpdatedAt: s.now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("failed to activate subscription %s: %w", id, err)
	}

	if s.metrics != nil {
		s.metrics.SubscriptionActivations.Inc()
	}
	s.logger.Info("campaign subscription activated", zap.String("subscription_id", id))
	return nil
}

// ListByEntrepreneur returns all subscriptions owned by an entrepreneur.
func (s *Service) ListByEntrepreneur(ctx context.Context, entrepreneurID string) ([]models.CampaignSubscription, error) {
	docs, err := s.store.QueryByEquality(ctx, models.CollectionSubscriptions, models.FieldOwnerID, entrepreneurID)
	if err != nil {
		return nil, fmt.Errorf("failed to list subscriptions for %s: %w", entrepreneurID, err)
	}
	subs := make([]models.CampaignSubscription, 0, len(docs))
	for _, doc := range docs {
		subs = append(subs, models.SubscriptionFromDocument(doc))
	}
	return subs, nil
}
