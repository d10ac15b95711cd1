package cards

import (
	"encoding/json"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/nrdb/cardlint/pkg/jsonfmt"
)

// Draft4URI is the $schema value of the scaffolded schemas.
const Draft4URI = "http://json-schema.org/draft-04/schema#"

// ScaffoldCycleSchema returns a starter cycle schema in canonical form.
func ScaffoldCycleSchema() ([]byte, error) {
	return scaffold[Cycle]("Cycle", "A cycle entry of cycles.json")
}

// ScaffoldPackSchema returns a starter pack schema in canonical form.
func ScaffoldPackSchema() ([]byte, error) {
	return scaffold[Pack]("Pack", "A pack entry of packs.json")
}

// ScaffoldCardSchema returns a starter card schema in canonical form.
func ScaffoldCardSchema() ([]byte, error) {
	return scaffold[Card]("Card", "A card entry of pack/<pack_code>.json")
}

// scaffold infers a schema from the record type. Extra properties stay
// allowed because real records carry many more fields than the identity ones.
func scaffold[T any](title, description string) ([]byte, error) {
	s, err := jsonschema.For[T](nil)
	if err != nil {
		return nil, fmt.Errorf("infer %s schema: %w", title, err)
	}
	s.Schema = Draft4URI
	s.Title = title
	s.Description = description
	s.AdditionalProperties = nil

	minLength := 1
	if code, ok := s.Properties["code"]; ok {
		code.MinLength = &minLength
	}

	raw, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("marshal %s schema: %w", title, err)
	}
	return jsonfmt.Format(raw)
}
