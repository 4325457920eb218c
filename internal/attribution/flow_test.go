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

// End-to-end flow through the attribution core: events in, reconciled report
// out, against a single shared store.
func TestAttributionFlow_RecordThenReport(t *testing.T) {
	store := docstore.NewMemoryStore()
	logger := zap.NewNop()
	ctx := context.Background()

	rec := NewRecorder(store, logger, nil)
	agg := NewAggregator(store, logger, nil)
	rc := NewReconciler(store, logger, nil)

	ev := models.CampaignEvent{
		CampaignID:     "1",
		ServiceID:      "svc-1",
		EntrepreneurID: "ent-1",
		Type:           models.EventImpression,
	}
	rec.Record(ctx, ev)
	ev.Type = models.EventClick
	rec.Record(ctx, ev)

	report, err := agg.Aggregate(ctx, "svc-1")
	require.NoError(t, err)
	require.NotNil(t, report)

	assert.Equal(t, int64(1), report.Impressions)
	assert.Equal(t, int64(1), report.Clicks)
	assert.Equal(t, int64(0), report.Conversions)

	report.Summary = rc.Reconcile(ctx, "svc-1", report.Summary)
	require.NotNil(t, report.Summary)

	// No subscription exists, so the tier table resolves campaign "1".
	require.NotNil(t, report.Summary.CampaignName)
	assert.Equal(t, "1 Star - 1 Month", *report.Summary.CampaignName)
	require.NotNil(t, report.Summary.Price)
	assert.Equal(t, 400.0, *report.Summary.Price)
}
