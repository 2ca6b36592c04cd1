package store

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/xeipuuv/gojsonschema"
)

// Every artifact is wrapped in the pipeline's envelope. The envelope shape
// is checked with a JSON schema before any typed decoding happens; records
// that later fail typed required-field checks are dropped, never coerced.
const envelopeSchema = `{
  "type": "object",
  "required": ["metadata", "items"],
  "properties": {
    "metadata": {
      "type": "object",
      "required": ["artifact_type", "record_count"],
      "properties": {
        "artifact_type": {"type": "string", "minLength": 1},
        "schema_version": {"type": "string"},
        "record_count": {"type": "integer", "minimum": 0}
      }
    },
    "items": {"type": "array"}
  }
}`

var envelopeSchemaLoader = gojsonschema.NewStringLoader(envelopeSchema)

type envelope struct {
	Metadata envelopeMetadata  `json:"metadata"`
	Items    []json.RawMessage `json:"items"`
}

type envelopeMetadata struct {
	ArtifactType  string `json:"artifact_type"`
	SchemaVersion string `json:"schema_version"`
	RecordCount   int    `json:"record_count"`
}

// readEnvelope reads and schema-checks one artifact file.
func readEnvelope(path string) (*envelope, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	result, err := gojsonschema.Validate(envelopeSchemaLoader, gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return nil, fmt.Errorf("schema check failed for %s: %w", path, err)
	}
	if !result.Valid() {
		return nil, fmt.Errorf("artifact %s is not a valid envelope: %s", path, result.Errors()[0].String())
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return &env, nil
}

// decodeItems decodes envelope items into T, dropping any record that
// fails to decode or that valid() rejects. Returns kept records and the
// dropped count.
func decodeItems[T any](env *envelope, valid func(T) bool) ([]T, int) {
	kept := make([]T, 0, len(env.Items))
	dropped := 0
	for _, raw := range env.Items {
		var rec T
		if err := json.Unmarshal(raw, &rec); err != nil {
			dropped++
			continue
		}
		if !valid(rec) {
			dropped++
			continue
		}
		kept = append(kept, rec)
	}
	return kept, dropped
}
