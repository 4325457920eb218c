package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupTier(t *testing.T) {
	tests := []struct {
		key     string
		want    string
		wantHit bool
	}{
		{"1", "1 Star - 1 Month", true},
		{"2", "3 Stars - 3 Month", true},
		{"3", "5 Stars - 6 Month", true},
		{"mock1", "1 Star - 1 Month", true},
		{"mock3", "5 Stars - 6 Month", true},
		{"1.000000", "1 Star - 1 Month", true},
		{" 2 ", "3 Stars - 3 Month", true},
		{"4", "", false},
		{"", "", false},
		{"gold", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			tier, ok := LookupTier(tt.key)
			assert.Equal(t, tt.wantHit, ok)
			if tt.wantHit {
				assert.Equal(t, tt.want, tier.CampaignName)
			}
		})
	}
}

func TestTiersOrdered(t *testing.T) {
	tiers := Tiers()
	require.Len(t, tiers, 3)
	assert.Equal(t, "1", tiers[0].Key)
	assert.Equal(t, "2", tiers[1].Key)
	assert.Equal(t, "3", tiers[2].Key)
	assert.Equal(t, 400.0, tiers[0].Price)
	assert.Equal(t, 1200.0, tiers[1].Price)
	assert.Equal(t, 2500.0, tiers[2].Price)
}
