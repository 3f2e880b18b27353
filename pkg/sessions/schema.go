package sessions

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	invjsonschema "github.com/invopop/jsonschema"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:generate sh -c "cd ../.. && go run ./tools/schema-generator/"

//go:embed record.schema.json
var embeddedSchemaData []byte

// GenerateSchema reflects the Record struct into a JSON Schema document.
func GenerateSchema() ([]byte, error) {
	r := &invjsonschema.Reflector{
		AllowAdditionalProperties:  true,
		ExpandedStruct:             true,
		FieldNameTag:               "json",
		RequiredFromJSONSchemaTags: true,
	}

	schema := r.Reflect(&Record{})
	schema.Title = "remux Session Record"
	schema.Description = "One file per session in the remux session store."
	schema.Version = "http://json-schema.org/draft-07/schema#"

	return json.MarshalIndent(schema, "", "  ")
}

// EmbeddedSchema returns the schema compiled into the binary.
func EmbeddedSchema() []byte {
	return embeddedSchemaData
}

// Validator validates session records against the embedded JSON Schema.
type Validator struct {
	schema *jsonschema.Schema
}

// NewValidator creates a new schema validator, loading the embedded schema.
func NewValidator() (*Validator, error) {
	compiler := jsonschema.NewCompiler()
	compiler.AssertFormat = true
	if err := compiler.AddResource("record.json", strings.NewReader(string(embeddedSchemaData))); err != nil {
		return nil, fmt.Errorf("failed to add embedded schema resource: %w", err)
	}

	schema, err := compiler.Compile("record.json")
	if err != nil {
		return nil, fmt.Errorf("failed to compile embedded schema: %w", err)
	}

	return &Validator{schema: schema}, nil
}

// Validate validates a record value against the schema.
func (v *Validator) Validate(record Record) error {
	jsonData, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal record for validation: %w", err)
	}

	var raw interface{}
	if err := json.Unmarshal(jsonData, &raw); err != nil {
		return fmt.Errorf("failed to unmarshal JSON for validation: %w", err)
	}
	return v.ValidateRaw(raw)
}

// ValidateRaw validates decoded JSON (maps, slices and scalars).
func (v *Validator) ValidateRaw(raw interface{}) error {
	if err := v.schema.Validate(raw); err != nil {
		if validationErr, ok := err.(*jsonschema.ValidationError); ok {
			var errorMessages []string
			collectErrors(validationErr, &errorMessages)
			return fmt.Errorf("schema validation failed: %s", strings.Join(errorMessages, "; "))
		}
		return fmt.Errorf("schema validation failed: %w", err)
	}
	return nil
}

// collectErrors recursively collects all validation errors into a slice
func collectErrors(err *jsonschema.ValidationError, messages *[]string) {
	if len(err.Causes) == 0 {
		location := err.InstanceLocation
		if location == "" {
			location = "/"
		}
		*messages = append(*messages, fmt.Sprintf("%s: %s", location, err.Message))
	}
	for _, cause := range err.Causes {
		collectErrors(cause, messages)
	}
}
