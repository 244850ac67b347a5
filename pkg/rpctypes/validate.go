package rpctypes

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

// envelopeSchemaDoc is the JSON Schema for the raw POST /estimate body, checked before the
// payload is even unmarshaled into EstimateRequestJSON: it catches malformed hex strings and
// missing required top-level fields with a schema-validation error message instead of a generic
// JSON unmarshal failure.
const envelopeSchemaDoc = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "object",
	"required": ["userOperation", "entryPoint"],
	"properties": {
		"userOperation": {
			"type": "object",
			"required": ["sender", "nonce", "callData", "signature"],
			"properties": {
				"sender": {"type": "string", "pattern": "^0x[0-9a-fA-F]{40}$"},
				"nonce": {"type": "string", "pattern": "^0x[0-9a-fA-F]+$"},
				"initCode": {"type": "string", "pattern": "^0x[0-9a-fA-F]*$"},
				"callData": {"type": "string", "pattern": "^0x[0-9a-fA-F]*$"},
				"callGasLimit": {"type": "string", "pattern": "^0x[0-9a-fA-F]+$"},
				"verificationGasLimit": {"type": "string", "pattern": "^0x[0-9a-fA-F]+$"},
				"preVerificationGas": {"type": "string", "pattern": "^0x[0-9a-fA-F]+$"},
				"maxFeePerGas": {"type": "string", "pattern": "^0x[0-9a-fA-F]+$"},
				"maxPriorityFeePerGas": {"type": "string", "pattern": "^0x[0-9a-fA-F]+$"},
				"paymasterAndData": {"type": "string", "pattern": "^0x[0-9a-fA-F]*$"},
				"signature": {"type": "string", "pattern": "^0x[0-9a-fA-F]*$"}
			}
		},
		"entryPoint": {"type": "string", "pattern": "^0x[0-9a-fA-F]{40}$"},
		"useEntryPointV07": {"type": "boolean"}
	}
}`

const envelopeSchemaURL = "gasestimator://estimate-request.schema.json"

var (
	envelopeSchema = compileEnvelopeSchema()
	structValidate = validator.New()
)

func compileEnvelopeSchema() *jsonschema.Schema {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(envelopeSchemaURL, bytes.NewReader([]byte(envelopeSchemaDoc))); err != nil {
		panic(fmt.Errorf("rpctypes: invalid envelope schema: %w", err))
	}
	schema, err := compiler.Compile(envelopeSchemaURL)
	if err != nil {
		panic(fmt.Errorf("rpctypes: failed to compile envelope schema: %w", err))
	}
	return schema
}

// ValidateEnvelope checks raw request bytes against the JSON Schema before any typed unmarshal is
// attempted.
func ValidateEnvelope(raw []byte) error {
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("malformed JSON body: %w", err)
	}
	if err := envelopeSchema.Validate(doc); err != nil {
		return fmt.Errorf("request failed schema validation: %w", err)
	}
	return nil
}

// ValidateStruct applies struct-tag validation to an already-unmarshaled EstimateRequestJSON.
func ValidateStruct(req *EstimateRequestJSON) error {
	return structValidate.Struct(req)
}
