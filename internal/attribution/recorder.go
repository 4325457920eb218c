package attribution

import (
	"context"
	"errors"
	"time"

	"github.com/liljb23/promotrack/internal/docstore"
	"github.com/liljb23/promotrack/internal/metrics"
	"github.com/liljb23/promotrack/internal/models"
	"go.uber.org/zap"
)

// Recorder turns campaign attribution events into counter increments on the
// campaign's report document. Events are best-effort telemetry: every
// failure is logged and swallowed, nothing propagates to the caller.
type Recorder struct {
	store   docstore.Store
	logger  *zap.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

// NewRecorder constructs a Recorder backed by the given store.
func NewRecorder(store docstore.Store, logger *zap.Logger, m *metrics.Metrics) *Recorder {
	return &Recorder{
		store:   store,
		logger:  logger,
		metrics: m,
		now:     time.Now,
	}
}

// Record validates ev and applies it to the report document keyed by the
// campaign id: identity fields are re-asserted via a merge write, and exactly
// one counter is incremented atomically. Concurrent calls for the same
// campaign all land because the increment happens at the storage backend,
// never as a read-modify-write here.
func (r *Recorder) Record(ctx context.Context, ev models.CampaignEvent) {
	if err := ev.Validate(); err != nil {
		r.logger.Warn("dropping invalid campaign event",
			zap.Error(err),
			zap.String("campaign_id", ev.CampaignID),
			zap.String("service_id", ev.ServiceID),
			zap.String("type", string(ev.Type)),
		)
		r.metrics.RecordDrop("validation")
		return
	}

	now := r.now().UTC()
	fields := docstore.Document{
		models.FieldCampaignID:     ev.CampaignID,
		models.FieldServiceID:      ev.ServiceID,
		models.FieldEntrepreneurID: ev.EntrepreneurID,
		models.FieldUpdatedAt:      now,
	}

	// createdAt is set once, on first write. The store has no set-on-create
	// primitive, so check existence first; the counters below stay atomic
	// regardless. Two concurrent first events can both pass this check and
	// both merge createdAt, last write winning by milliseconds; createdAt is
	// informational only, so the window is accepted, not serialized.
	_, err := r.store.Get(ctx, models.CollectionReports, ev.CampaignID)
	switch {
	case errors.Is(err, docstore.ErrNotFound):
		fields[models.FieldCreatedAt] = now
	case err != nil:
		r.dropOnStoreError(ev, "get", err)
		return
	}

	if err := r.store.UpsertMerge(ctx, models.CollectionReports, ev.CampaignID, fields); err != nil {
		r.dropOnStoreError(ev, "merge", err)
		return
	}

	if err := r.store.AtomicIncrement(ctx, models.CollectionReports, ev.CampaignID, ev.Type.CounterField(), 1); err != nil {
		r.dropOnStoreError(ev, "increment", err)
		return
	}

	r.metrics.RecordEvent(string(ev.Type))
	r.logger.Debug("campaign event recorded",
		zap.String("campaign_id", ev.CampaignID),
		zap.String("type", string(ev.Type)),
	)
}

func (r *Recorder) dropOnStoreError(ev models.CampaignEvent, op string, err error) {
	r.logger.Error("dropping campaign event on store failure",
		zap.Error(err),
		zap.String("op", op),
		zap.String("campaign_id", ev.CampaignID),
		zap.String("type", string(ev.Type)),
	)
	r.metrics.RecordDrop("store_error")
	if r.metrics != nil {
		r.metrics.StoreErrors.WithLabelValues(op).Inc()
	}
}
