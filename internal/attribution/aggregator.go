package attribution

import (
	"context"
	"fmt"
	"time"

	"github.com/liljb23/promotrack/internal/docstore"
	"github.com/liljb23/promotrack/internal/metrics"
	"github.com/liljb23/promotrack/internal/models"
	"go.uber.org/zap"
)

// Aggregator computes a service's report on demand by summing the counters
// of all report documents attributed to it.
type Aggregator struct {
	store   docstore.Store
	logger  *zap.Logger
	metrics *metrics.Metrics
}

// NewAggregator constructs an Aggregator backed by the given store.
func NewAggregator(store docstore.Store, logger *zap.Logger, m *metrics.Metrics) *Aggregator {
	return &Aggregator{store: store, logger: logger, metrics: m}
}

// Aggregate returns the combined report for a service, or (nil, nil) when the
// service has no report documents yet — a valid terminal state the caller
// renders as "no report", distinct from a store failure which is returned as
// an error for the caller's retry affordance.
//
// Counter fields fall back to their legacy names (viewCount, clickCount)
// still present on old documents. The first document, in stable query order,
// seeds the summary metadata: when a service has several campaigns only that
// one's metadata is surfaced next to the combined counters. Known
// simplification carried over from the client.
func (a *Aggregator) Aggregate(ctx context.Context, serviceID string) (*models.ReportSummary, error) {
	start := time.Now()

	rows, err := a.store.QueryByEquality(ctx, models.CollectionReports, models.FieldServiceID, serviceID)
	if err != nil {
		a.metrics.RecordReport("error", time.Since(start))
		return nil, fmt.Errorf("failed to query campaign reports for service %s: %w", serviceID, err)
	}
	if len(rows) == 0 {
		a.logger.Debug("no campaign reports for service", zap.String("service_id", serviceID))
		a.metrics.RecordReport("empty", time.Since(start))
		return nil, nil
	}

	summary := &models.ReportSummary{}
	for _, row := range rows {
		summary.Impressions += row.Count(models.FieldImpressions, models.FieldLegacyImpressions)
		summary.Clicks += row.Count(models.FieldClicks, models.FieldLegacyClicks)
		summary.Conversions += row.Count(models.FieldConversions)
		if summary.Summary == nil {
			summary.Summary = models.MetadataFromReportDoc(row)
		}
	}

	a.metrics.RecordReport("ok", time.Since(start))
	return summary, nil
}
