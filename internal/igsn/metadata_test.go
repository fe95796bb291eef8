package igsn

import (
	"reflect"
	"testing"
	"time"
)

func TestFillMetadataDefaultsAllFields(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	defaults := MetadataDefaults{
		Publisher:  "Hopkins Extreme Materials Institute",
		ClientID:   "client-1",
		ProviderID: "provider-1",
	}
	metadata := map[string]interface{}{
		"titles": []interface{}{map[string]interface{}{"title": "Sample"}},
	}

	FillMetadata(metadata, defaults, now)

	if metadata["publicationYear"] != 2024 {
		t.Fatalf("publicationYear=%v, want 2024", metadata["publicationYear"])
	}
	if metadata["schemaVersion"] != DataCiteSchemaVersion {
		t.Fatalf("schemaVersion=%v", metadata["schemaVersion"])
	}
	if metadata["agency"] != "datacite" {
		t.Fatalf("agency=%v", metadata["agency"])
	}
	publisher, ok := metadata["publisher"].(map[string]interface{})
	if !ok || publisher["name"] != defaults.Publisher {
		t.Fatalf("publisher=%v", metadata["publisher"])
	}
	for _, key := range metadataListFields {
		list, ok := metadata[key].([]interface{})
		if !ok {
			t.Fatalf("%s=%T, want empty list", key, metadata[key])
		}
		if len(list) != 0 {
			t.Fatalf("%s has %d entries, want 0", key, len(list))
		}
	}
}

func TestFillMetadataIdempotent(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	defaults := MetadataDefaults{Publisher: "pub"}

	metadata := map[string]interface{}{}
	FillMetadata(metadata, defaults, now)

	snapshot := map[string]interface{}{}
	for k, v := range metadata {
		snapshot[k] = v
	}

	// A later call with a different clock must change nothing.
	FillMetadata(metadata, defaults, now.AddDate(1, 0, 0))
	if !reflect.DeepEqual(metadata, snapshot) {
		t.Fatalf("second FillMetadata changed the document:\n got %v\nwant %v", metadata, snapshot)
	}
}

func TestFillMetadataNeverOverwrites(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	metadata := map[string]interface{}{
		"publisher":       map[string]interface{}{"name": "existing"},
		"publicationYear": 1999,
		"creators":        []interface{}{map[string]interface{}{"name": "someone"}},
	}

	FillMetadata(metadata, MetadataDefaults{Publisher: "new"}, now)

	if metadata["publisher"].(map[string]interface{})["name"] != "existing" {
		t.Fatalf("publisher overwritten: %v", metadata["publisher"])
	}
	if metadata["publicationYear"] != 1999 {
		t.Fatalf("publicationYear overwritten: %v", metadata["publicationYear"])
	}
	if len(metadata["creators"].([]interface{})) != 1 {
		t.Fatalf("creators overwritten: %v", metadata["creators"])
	}
}
