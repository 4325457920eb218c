package docstore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAsInt64(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want int64
		ok   bool
	}{
		{"int64", int64(7), 7, true},
		{"int", 7, 7, true},
		{"jsonb float", float64(7), 7, true},
		{"redis string", "7", 7, true},
		{"float string", "7.0", 7, true},
		{"garbage", "seven", 0, false},
		{"nil", nil, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := AsInt64(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAsFloat64(t *testing.T) {
	got, ok := AsFloat64("1200.5")
	assert.True(t, ok)
	assert.Equal(t, 1200.5, got)

	got, ok = AsFloat64(int64(400))
	assert.True(t, ok)
	assert.Equal(t, 400.0, got)

	_, ok = AsFloat64(nil)
	assert.False(t, ok)
}

func TestAsTime(t *testing.T) {
	ts := time.Date(2026, 3, 15, 12, 30, 0, 0, time.UTC)

	got, ok := AsTime(ts)
	assert.True(t, ok)
	assert.True(t, got.Equal(ts))

	got, ok = AsTime(ts.Format(time.RFC3339))
	assert.True(t, ok)
	assert.True(t, got.Equal(ts))

	_, ok = AsTime("not a timestamp")
	assert.False(t, ok)
}

func TestDocumentCount_LegacyFallback(t *testing.T) {
	// Old documents written before the counter rename carry viewCount only.
	doc := Document{"viewCount": float64(5)}
	assert.Equal(t, int64(5), doc.Count("impressions", "viewCount"))

	// New field wins when both are present.
	doc = Document{"impressions": int64(9), "viewCount": float64(5)}
	assert.Equal(t, int64(9), doc.Count("impressions", "viewCount"))

	// Neither present defaults to zero.
	assert.Equal(t, int64(0), Document{}.Count("impressions", "viewCount"))
}

func TestDocumentString_AbsentField(t *testing.T) {
	doc := Document{"campaignName": "Premium"}
	assert.Equal(t, "Premium", doc.String("campaignName"))
	assert.Equal(t, "", doc.String("missing"))
}

func TestDocumentClone(t *testing.T) {
	doc := Document{"a": 1}
	clone := doc.Clone()
	clone["a"] = 2
	assert.Equal(t, 1, doc["a"])
}
