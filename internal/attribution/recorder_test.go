package attribution

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/liljb23/promotrack/internal/docstore"
	"github.com/liljb23/promotrack/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// failingStore wraps a real store and fails selected operations.
type failingStore struct {
	docstore.Store
	failGet       bool
	failMerge     bool
	failIncrement bool
	failQuery     bool
}

var errStoreDown = errors.New("store down")

func (f *failingStore) Get(ctx context.Context, collection, id string) (docstore.Document, error) {
	if f.failGet {
		return nil, errStoreDown
	}
	return f.Store.Get(ctx, collection, id)
}

func (f *failingStore) UpsertMerge(ctx context.Context, collection, id string, fields docstore.Document) error {
	if f.failMerge {
		return errStoreDown
	}
	return f.Store.UpsertMerge(ctx, collection, id, fields)
}

func (f *failingStore) AtomicIncrement(ctx context.Context, collection, id, field string, delta int64) error {
	if f.failIncrement {
		return errStoreDown
	}
	return f.Store.AtomicIncrement(ctx, collection, id, field, delta)
}

func (f *failingStore) QueryByEquality(ctx context.Context, collection, field, value string) ([]docstore.Document, error) {
	if f.failQuery {
		return nil, errStoreDown
	}
	return f.Store.QueryByEquality(ctx, collection, field, value)
}

func (f *failingStore) QueryByEqualityPair(ctx context.Context, collection string, filters []docstore.Filter) ([]docstore.Document, error) {
	if f.failQuery {
		return nil, errStoreDown
	}
	return f.Store.QueryByEqualityPair(ctx, collection, filters)
}

func validEvent(typ models.EventType) models.CampaignEvent {
	return models.CampaignEvent{
		CampaignID:     "camp-1",
		ServiceID:      "svc-1",
		EntrepreneurID: "ent-1",
		Type:           typ,
	}
}

func TestRecorder_RecordIncrementsCounter(t *testing.T) {
	store := docstore.NewMemoryStore()
	rec := NewRecorder(store, zap.NewNop(), nil)
	ctx := context.Background()

	rec.Record(ctx, validEvent(models.EventImpression))
	rec.Record(ctx, validEvent(models.EventImpression))
	rec.Record(ctx, validEvent(models.EventClick))

	doc, err := store.Get(ctx, models.CollectionReports, "camp-1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), doc.Count(models.FieldImpressions))
	assert.Equal(t, int64(1), doc.Count(models.FieldClicks))
	assert.Equal(t, int64(0), doc.Count(models.FieldConversions))
	assert.Equal(t, "svc-1", doc.String(models.FieldServiceID))
	assert.Equal(t, "ent-1", doc.String(models.FieldEntrepreneurID))
}

func TestRecorder_InvalidEventWritesNothing(t *testing.T) {
	store := docstore.NewMemoryStore()
	rec := NewRecorder(store, zap.NewNop(), nil)
	ctx := context.Background()

	ev := validEvent(models.EventClick)
	ev.ServiceID = ""
	rec.Record(ctx, ev)

	_, err := store.Get(ctx, models.CollectionReports, "camp-1")
	assert.ErrorIs(t, err, docstore.ErrNotFound)
}

func TestRecorder_UnknownTypeWritesNothing(t *testing.T) {
	store := docstore.NewMemoryStore()
	rec := NewRecorder(store, zap.NewNop(), nil)
	ctx := context.Background()

	ev := validEvent("hover")
	rec.Record(ctx, ev)

	_, err := store.Get(ctx, models.CollectionReports, "camp-1")
	assert.ErrorIs(t, err, docstore.ErrNotFound)
}

func TestRecorder_CreatedAtSetOnce(t *testing.T) {
	store := docstore.NewMemoryStore()
	rec := NewRecorder(store, zap.NewNop(), nil)
	ctx := context.Background()

	first := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	second := first.Add(time.Hour)

	rec.now = func() time.Time { return first }
	rec.Record(ctx, validEvent(models.EventImpression))

	rec.now = func() time.Time { return second }
	rec.Record(ctx, validEvent(models.EventImpression))

	doc, err := store.Get(ctx, models.CollectionReports, "camp-1")
	require.NoError(t, err)

	created, ok := doc.Time(models.FieldCreatedAt)
	require.True(t, ok)
	assert.True(t, created.Equal(first))

	updated, ok := doc.Time(models.FieldUpdatedAt)
	require.True(t, ok)
	assert.True(t, updated.Equal(second))
}

func TestRecorder_StoreFailureIsSwallowed(t *testing.T) {
	store := &failingStore{Store: docstore.NewMemoryStore(), failIncrement: true}
	rec := NewRecorder(store, zap.NewNop(), nil)

	// Must not panic and must not return anything to the caller.
	rec.Record(context.Background(), validEvent(models.EventImpression))
}

func TestRecorder_ConcurrentClicksAllLand(t *testing.T) {
	store := docstore.NewMemoryStore()
	rec := NewRecorder(store, zap.NewNop(), nil)
	ctx := context.Background()

	const n = 100
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			rec.Record(ctx, validEvent(models.EventClick))
		}()
	}
	wg.Wait()

	doc, err := store.Get(ctx, models.CollectionReports, "camp-1")
	require.NoError(t, err)
	assert.Equal(t, int64(n), doc.Count(models.FieldClicks))
}
