package models

import "strings"

// CampaignTier is one entry of the static placement tier table.
type CampaignTier struct {
	Key          string  `json:"key"`
	CampaignName string  `json:"campaign_name"`
	Price        float64 `json:"price"`
	Duration     string  `json:"duration"`
	Days         int     `json:"days"`
}

// campaignTiers is the process-wide tier lookup table. Loaded once,
// immutable.
var campaignTiers = map[string]CampaignTier{
	"1": {Key: "1", CampaignName: "1 Star - 1 Month", Price: 400, Duration: "1 Month", Days: 30},
	"2": {Key: "2", CampaignName: "3 Stars - 3 Month", Price: 1200, Duration: "3 Month", Days: 90},
	"3": {Key: "3", CampaignName: "5 Stars - 6 Month", Price: 2500, Duration: "6 Month", Days: 180},
}

// LookupTier resolves a tier by its campaign key. Keys arrive as numbers,
// numeric strings, or the seed data's "mock"-prefixed variants ("mock1");
// all normalize to the same canonical key.
func LookupTier(key string) (CampaignTier, bool) {
	k := strings.TrimPrefix(strings.TrimSpace(key), "mock")
	// Numeric keys round-trip through jsonb as "1.000000"-style floats.
	if i := strings.IndexByte(k, '.'); i >= 0 {
		k = k[:i]
	}
	tier, ok := campaignTiers[k]
	return tier, ok
}

// Tiers returns the tier table entries in key order.
func Tiers() []CampaignTier {
	return []CampaignTier{campaignTiers["1"], campaignTiers["2"], campaignTiers["3"]}
}
