package models

// Collection names match the mobile client's datastore so both sides can
// operate on the same documents.
const (
	CollectionReports       = "CampaignReports"
	CollectionSubscriptions = "CampaignSubscriptions"
	CollectionServices      = "Services"
)

// Shared field names. Subscriptions and services carry the owner under
// "EntrepreneurId" (capital E) while reports use "entrepreneurId"; the
// inconsistency is historical and baked into existing documents.
const (
	FieldCampaignID     = "campaignId"
	FieldServiceID      = "serviceId"
	FieldEntrepreneurID = "entrepreneurId"
	FieldOwnerID        = "EntrepreneurId"
	FieldSubscriptionID = "subscriptionId"
	FieldStatus         = "status"

	FieldImpressions = "impressions"
	FieldClicks      = "clicks"
	FieldConversions = "conversions"

	// Legacy counter names still present on old report documents.
	FieldLegacyImpressions = "viewCount"
	FieldLegacyClicks      = "clickCount"

	FieldCreatedAt = "createdAt"
	FieldUpdatedAt = "updatedAt"
)

// StoreIndexes lists the fields each collection must support equality
// queries on. Backends that need maintained secondary indexes (redis)
// consume this at construction.
var StoreIndexes = map[string][]string{
	CollectionReports:       {FieldServiceID, FieldCampaignID},
	CollectionSubscriptions: {FieldServiceID, FieldCampaignID, FieldOwnerID, FieldStatus},
	CollectionServices:      {FieldOwnerID, FieldStatus},
}
