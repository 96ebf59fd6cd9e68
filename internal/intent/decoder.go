// internal/intent/decoder.go
package intent

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/xeipuuv/gojsonschema"

	"bus-enquiry-engine/internal/models"
)

// The extraction service answers with a flat JSON object: a "Module Name"
// string plus the extracted parameters as sibling keys. Values are strings
// or numbers; the sentinel "none" marks parameters the speaker never said.
// Payloads are schema-checked before decoding so a malformed answer fails
// here, not deep inside the dispatcher.

const payloadSchema = `{
	"type": "object",
	"required": ["Module Name"],
	"properties": {
		"Module Name": {"type": "string", "minLength": 1}
	},
	"additionalProperties": {"type": ["string", "number"]}
}`

var schema = gojsonschema.NewStringLoader(payloadSchema)

// moduleNameKey is the extraction service's spelling, space included.
const moduleNameKey = "Module Name"

// Decode validates and decodes one extraction payload into an IntentRecord.
// Numeric parameter values are carried over as their decimal text.
func Decode(raw []byte) (models.IntentRecord, error) {
	result, err := gojsonschema.Validate(schema, gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return models.IntentRecord{}, fmt.Errorf("intent payload not valid JSON: %w", err)
	}
	if !result.Valid() {
		return models.IntentRecord{}, fmt.Errorf("intent payload rejected: %s", firstSchemaError(result))
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var fields map[string]interface{}
	if err := dec.Decode(&fields); err != nil {
		return models.IntentRecord{}, fmt.Errorf("decode intent payload: %w", err)
	}

	module, _ := fields[moduleNameKey].(string)
	delete(fields, moduleNameKey)

	params := make(map[string]string, len(fields))
	for k, v := range fields {
		switch t := v.(type) {
		case string:
			params[k] = t
		case json.Number:
			params[k] = t.String()
		}
	}

	return models.NewIntentRecord(models.ModuleID(module), params), nil
}

func firstSchemaError(result *gojsonschema.Result) string {
	for _, e := range result.Errors() {
		return e.String()
	}
	return "schema violation"
}
