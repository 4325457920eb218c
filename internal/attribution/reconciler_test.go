package attribution

import (
	"context"
	"testing"
	"time"

	"github.com/liljb23/promotrack/internal/docstore"
	"github.com/liljb23/promotrack/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestReconciler_NilMetadata(t *testing.T) {
	rc := NewReconciler(docstore.NewMemoryStore(), zap.NewNop(), nil)
	assert.Nil(t, rc.Reconcile(context.Background(), "svc-1", nil))
}

func TestReconciler_SubscriptionByIDWinsOverTierTable(t *testing.T) {
	store := docstore.NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.UpsertMerge(ctx, models.CollectionSubscriptions, "sub-1", docstore.Document{
		"campaignName": "3 Stars - 3 Month",
		"price":        1200.0,
	}))

	rc := NewReconciler(store, zap.NewNop(), nil)
	meta := rc.Reconcile(ctx, "svc-1", &models.CampaignMetadata{
		CampaignID:     "3",
		SubscriptionID: "sub-1",
	})

	require.NotNil(t, meta.CampaignName)
	require.NotNil(t, meta.Price)
	// The subscription's values stick even though tier "3" carries 2500.
	assert.Equal(t, "3 Stars - 3 Month", *meta.CampaignName)
	assert.Equal(t, 1200.0, *meta.Price)
}

func TestReconciler_QueryPassFillsDurationAndEndDate(t *testing.T) {
	store := docstore.NewMemoryStore()
	ctx := context.Background()

	end := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, store.UpsertMerge(ctx, models.CollectionSubscriptions, "sub-1", docstore.Document{
		models.FieldCampaignID: "2",
		models.FieldServiceID:  "svc-1",
		"campaignName":         "3 Stars - 3 Month",
		"price":                1200.0,
		"duration":             "3 Month",
		"endDate":              end,
	}))

	rc := NewReconciler(store, zap.NewNop(), nil)
	meta := rc.Reconcile(ctx, "svc-1", &models.CampaignMetadata{CampaignID: "2"})

	require.NotNil(t, meta.Duration)
	assert.Equal(t, "3 Month", *meta.Duration)
	require.NotNil(t, meta.EndDate)
	assert.True(t, meta.EndDate.Equal(end))
	require.NotNil(t, meta.CampaignName)
	assert.Equal(t, "3 Stars - 3 Month", *meta.CampaignName)
}

func TestReconciler_EarlierFillNeverOverwritten(t *testing.T) {
	store := docstore.NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.UpsertMerge(ctx, models.CollectionSubscriptions, "sub-1", docstore.Document{
		"campaignName": "From Pass One",
		"price":        100.0,
	}))
	require.NoError(t, store.UpsertMerge(ctx, models.CollectionSubscriptions, "sub-2", docstore.Document{
		models.FieldCampaignID: "1",
		models.FieldServiceID:  "svc-1",
		"campaignName":         "From Pass Two",
		"price":                999.0,
		"duration":             "1 Month",
	}))

	rc := NewReconciler(store, zap.NewNop(), nil)
	meta := rc.Reconcile(ctx, "svc-1", &models.CampaignMetadata{
		CampaignID:     "1",
		SubscriptionID: "sub-1",
	})

	require.NotNil(t, meta.CampaignName)
	assert.Equal(t, "From Pass One", *meta.CampaignName)
	require.NotNil(t, meta.Price)
	assert.Equal(t, 100.0, *meta.Price)
	// Pass 2 still fills what pass 1 could not.
	require.NotNil(t, meta.Duration)
	assert.Equal(t, "1 Month", *meta.Duration)
}

func TestReconciler_ZeroPriceDoesNotFill(t *testing.T) {
	store := docstore.NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.UpsertMerge(ctx, models.CollectionSubscriptions, "sub-1", docstore.Document{
		"campaignName": "Free Placement",
		"price":        0.0,
	}))

	rc := NewReconciler(store, zap.NewNop(), nil)
	meta := rc.Reconcile(ctx, "svc-1", &models.CampaignMetadata{
		CampaignID:     "2",
		SubscriptionID: "sub-1",
	})

	// Zero price is treated as missing; the tier table supplies it instead.
	require.NotNil(t, meta.Price)
	assert.Equal(t, 1200.0, *meta.Price)
	require.NotNil(t, meta.CampaignName)
	assert.Equal(t, "Free Placement", *meta.CampaignName)
}

func TestReconciler_TierTableFallback(t *testing.T) {
	rc := NewReconciler(docstore.NewMemoryStore(), zap.NewNop(), nil)

	meta := rc.Reconcile(context.Background(), "svc-1", &models.CampaignMetadata{CampaignID: "1"})

	require.NotNil(t, meta.CampaignName)
	assert.Equal(t, "1 Star - 1 Month", *meta.CampaignName)
	require.NotNil(t, meta.Price)
	assert.Equal(t, 400.0, *meta.Price)
	require.NotNil(t, meta.Duration)
	assert.Equal(t, "1 Month", *meta.Duration)
}

func TestReconciler_TierTableNormalizesSeedKeys(t *testing.T) {
	rc := NewReconciler(docstore.NewMemoryStore(), zap.NewNop(), nil)

	meta := rc.Reconcile(context.Background(), "svc-1", &models.CampaignMetadata{CampaignID: "mock1"})

	require.NotNil(t, meta.CampaignName)
	assert.Equal(t, "1 Star - 1 Month", *meta.CampaignName)
}

func TestReconciler_UnknownTierLeavesFieldsNil(t *testing.T) {
	rc := NewReconciler(docstore.NewMemoryStore(), zap.NewNop(), nil)

	meta := rc.Reconcile(context.Background(), "svc-1", &models.CampaignMetadata{CampaignID: "custom-99"})

	assert.Nil(t, meta.CampaignName)
	assert.Nil(t, meta.Price)
	assert.Nil(t, meta.Duration)
}

func TestReconciler_StoreFailuresAreTolerated(t *testing.T) {
	store := &failingStore{Store: docstore.NewMemoryStore(), failGet: true, failQuery: true}
	rc := NewReconciler(store, zap.NewNop(), nil)

	meta := rc.Reconcile(context.Background(), "svc-1", &models.CampaignMetadata{
		CampaignID:     "1",
		SubscriptionID: "sub-1",
	})

	// Both lookup passes fail; the static table still resolves the tier.
	require.NotNil(t, meta.Price)
	assert.Equal(t, 400.0, *meta.Price)
}
