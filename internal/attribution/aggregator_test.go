package attribution

import (
	"context"
	"testing"

	"github.com/liljb23/promotrack/internal/docstore"
	"github.com/liljb23/promotrack/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestAggregator_NoReportsReturnsNil(t *testing.T) {
	agg := NewAggregator(docstore.NewMemoryStore(), zap.NewNop(), nil)

	report, err := agg.Aggregate(context.Background(), "svc-1")
	require.NoError(t, err)
	assert.Nil(t, report)
}

func TestAggregator_StoreErrorPropagates(t *testing.T) {
	store := &failingStore{Store: docstore.NewMemoryStore(), failQuery: true}
	agg := NewAggregator(store, zap.NewNop(), nil)

	_, err := agg.Aggregate(context.Background(), "svc-1")
	assert.ErrorIs(t, err, errStoreDown)
}

func TestAggregator_SumsAcrossCampaigns(t *testing.T) {
	store := docstore.NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.UpsertMerge(ctx, models.CollectionReports, "camp-a", docstore.Document{
		models.FieldServiceID:   "svc-1",
		models.FieldCampaignID:  "camp-a",
		models.FieldImpressions: int64(10),
		models.FieldClicks:      int64(3),
		models.FieldConversions: int64(1),
	}))
	require.NoError(t, store.UpsertMerge(ctx, models.CollectionReports, "camp-b", docstore.Document{
		models.FieldServiceID:   "svc-1",
		models.FieldCampaignID:  "camp-b",
		models.FieldImpressions: int64(5),
		models.FieldClicks:      int64(2),
	}))
	// A different service's report must not contribute.
	require.NoError(t, store.UpsertMerge(ctx, models.CollectionReports, "camp-c", docstore.Document{
		models.FieldServiceID:   "svc-2",
		models.FieldImpressions: int64(99),
	}))

	agg := NewAggregator(store, zap.NewNop(), nil)
	report, err := agg.Aggregate(ctx, "svc-1")
	require.NoError(t, err)
	require.NotNil(t, report)

	assert.Equal(t, int64(15), report.Impressions)
	assert.Equal(t, int64(5), report.Clicks)
	assert.Equal(t, int64(1), report.Conversions)

	// Summary seeded from the first document in stable id order.
	require.NotNil(t, report.Summary)
	assert.Equal(t, "camp-a", report.Summary.CampaignID)
}

func TestAggregator_LegacyCounterFallback(t *testing.T) {
	store := docstore.NewMemoryStore()
	ctx := context.Background()

	// Document written by an old client: counters under the legacy names.
	require.NoError(t, store.UpsertMerge(ctx, models.CollectionReports, "camp-old", docstore.Document{
		models.FieldServiceID:         "svc-1",
		models.FieldLegacyImpressions: int64(5),
		models.FieldLegacyClicks:      int64(4),
	}))

	agg := NewAggregator(store, zap.NewNop(), nil)
	report, err := agg.Aggregate(ctx, "svc-1")
	require.NoError(t, err)
	require.NotNil(t, report)

	assert.Equal(t, int64(5), report.Impressions)
	assert.Equal(t, int64(4), report.Clicks)
	assert.Equal(t, int64(0), report.Conversions)
}

func TestAggregator_NewCounterWinsOverLegacy(t *testing.T) {
	store := docstore.NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.UpsertMerge(ctx, models.CollectionReports, "camp-1", docstore.Document{
		models.FieldServiceID:         "svc-1",
		models.FieldImpressions:       int64(7),
		models.FieldLegacyImpressions: int64(100),
	}))

	agg := NewAggregator(store, zap.NewNop(), nil)
	report, err := agg.Aggregate(ctx, "svc-1")
	require.NoError(t, err)
	require.NotNil(t, report)
	assert.Equal(t, int64(7), report.Impressions)
}
