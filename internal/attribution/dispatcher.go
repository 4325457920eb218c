package attribution

import (
	"context"
	"sync"

	"github.com/liljb23/promotrack/internal/metrics"
	"github.com/liljb23/promotrack/internal/models"
	"go.uber.org/zap"
)

// Dispatcher decouples event producers from the recorder with a bounded
// queue. Enqueue never blocks: render paths must not wait on telemetry, so a
// full queue drops the event instead of applying backpressure.
type Dispatcher struct {
	recorder *Recorder
	queue    chan models.CampaignEvent
	workers  int
	logger   *zap.Logger
	metrics  *metrics.Metrics

	mu        sync.RWMutex
	closed    bool
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewDispatcher creates a dispatcher with the given queue capacity and
// worker count. Call Start before enqueueing.
func NewDispatcher(recorder *Recorder, queueSize, workers int, logger *zap.Logger, m *metrics.Metrics) *Dispatcher {
	if queueSize <= 0 {
		queueSize = 1
	}
	if workers <= 0 {
		workers = 1
	}
	return &Dispatcher{
		recorder: recorder,
		queue:    make(chan models.CampaignEvent, queueSize),
		workers:  workers,
		logger:   logger,
		metrics:  m,
	}
}

// Start launches the worker pool. Workers run until Close is called and the
// queue drains.
func (d *Dispatcher) Start(ctx context.Context) {
	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go func() {
			defer d.wg.Done()
			for ev := range d.queue {
				d.recorder.Record(ctx, ev)
				if d.metrics != nil {
					d.metrics.QueueDepth.Set(float64(len(d.queue)))
				}
			}
		}()
	}
}

// Enqueue hands an event to the worker pool without blocking. Events beyond
// the queue capacity, or arriving after Close, are dropped and logged.
func (d *Dispatcher) Enqueue(ev models.CampaignEvent) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		d.logger.Warn("dispatcher closed, dropping event",
			zap.String("campaign_id", ev.CampaignID),
			zap.String("type", string(ev.Type)),
		)
		d.metrics.RecordDrop("shutdown")
		return
	}

	select {
	case d.queue <- ev:
		if d.metrics != nil {
			d.metrics.QueueDepth.Set(float64(len(d.queue)))
		}
	default:
		d.logger.Warn("event queue full, dropping event",
			zap.String("campaign_id", ev.CampaignID),
			zap.String("type", string(ev.Type)),
		)
		d.metrics.RecordDrop("queue_full")
	}
}

// Close stops accepting events and waits for queued events to be recorded.
func (d *Dispatcher) Close() {
	d.closeOnce.Do(func() {
		// Taking the write lock first means no Enqueue holds the read lock
		// with a send still pending when the channel closes.
		d.mu.Lock()
		d.closed = true
		d.mu.Unlock()
		close(d.queue)
	})
	d.wg.Wait()
}
