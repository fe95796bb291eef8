package igsn

import "time"

// DataCiteSchemaVersion is the schema the metadata documents target.
const DataCiteSchemaVersion = "http://datacite.org/schema/kernel-4"

// MetadataDefaults carries the externally-configured boilerplate values.
type MetadataDefaults struct {
	Publisher  string
	ClientID   string
	ProviderID string
}

var metadataListFields = []string{
	"creators",
	"subjects",
	"contributors",
	"sizes",
	"formats",
	"rightsList",
	"descriptions",
	"geoLocations",
	"fundingReferences",
	"identifiers",
	"relatedIdentifiers",
	"relatedItems",
	"alternateIdentifiers",
}

// FillMetadata defaults the fixed set of optional DataCite-style fields in
// place. Present values are never overwritten, so repeated calls are
// no-ops after the first.
func FillMetadata(metadata map[string]interface{}, defaults MetadataDefaults, now time.Time) {
	if _, ok := metadata["types"]; !ok {
		metadata["types"] = map[string]interface{}{
			"schemaOrg":           "CreativeWork",
			"resourceType":        "material sample",
			"resourceTypeGeneral": "PhysicalObject",
		}
	}
	if _, ok := metadata["publisher"]; !ok {
		metadata["publisher"] = map[string]interface{}{
			"name": defaults.Publisher,
		}
	}
	if _, ok := metadata["dates"]; !ok {
		metadata["dates"] = []interface{}{
			map[string]interface{}{
				"date":     now.UTC().Format(time.RFC3339),
				"dateType": "Submitted",
			},
		}
	}
	if _, ok := metadata["publicationYear"]; !ok {
		metadata["publicationYear"] = now.UTC().Year()
	}
	for _, key := range metadataListFields {
		if _, ok := metadata[key]; !ok {
			metadata[key] = []interface{}{}
		}
	}
	if _, ok := metadata["schemaVersion"]; !ok {
		metadata["schemaVersion"] = DataCiteSchemaVersion
	}
	if _, ok := metadata["agency"]; !ok {
		metadata["agency"] = "datacite"
	}
	if _, ok := metadata["clientId"]; !ok {
		metadata["clientId"] = defaults.ClientID
	}
	if _, ok := metadata["providerId"]; !ok {
		metadata["providerId"] = defaults.ProviderID
	}
}
