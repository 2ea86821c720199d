package llm

import (
	"encoding/json"

	"github.com/invopop/jsonschema"
)

// CardListSchema returns the JSON schema of the object the model must return.
func CardListSchema() *jsonschema.Schema {
	r := &jsonschema.Reflector{
		DoNotReference:            true,
		ExpandedStruct:            true,
		AllowAdditionalProperties: true,
	}
	return r.Reflect(&CardList{})
}

// CardListSchemaJSON returns CardListSchema as indented JSON.
func CardListSchemaJSON() ([]byte, error) {
	return json.MarshalIndent(CardListSchema(), "", "  ")
}
