package cards

import (
	"encoding/json"
	"fmt"

	"github.com/nrdb/cardlint/pkg/schema"
)

// DecodeCycle converts a schema-validated document into a Cycle.
// The code must be present and a string.
func DecodeCycle(doc any) (Cycle, *schema.Violation) {
	obj, v := requireFields(doc, "code")
	if v != nil {
		return Cycle{}, v
	}
	return Cycle{
		Code: stringField(obj, "code"),
		Name: stringField(obj, "name"),
	}, nil
}

// DecodePack converts a schema-validated document into a Pack.
// The code and cycle_code must be present and strings.
func DecodePack(doc any) (Pack, *schema.Violation) {
	obj, v := requireFields(doc, "code", "cycle_code")
	if v != nil {
		return Pack{}, v
	}
	return Pack{
		Code:      stringField(obj, "code"),
		Name:      stringField(obj, "name"),
		CycleCode: stringField(obj, "cycle_code"),
	}, nil
}

// DecodeCard converts a schema-validated document into a Card.
// The code and pack_code must be present and strings.
func DecodeCard(doc any) (Card, *schema.Violation) {
	obj, v := requireFields(doc, "code", "pack_code")
	if v != nil {
		return Card{}, v
	}
	return Card{
		Code:     stringField(obj, "code"),
		Name:     stringField(obj, "name"),
		PackCode: stringField(obj, "pack_code"),
	}, nil
}

// PeekLabel returns a display label for a document that may not be valid,
// preferring its name and falling back to its code.
func PeekLabel(doc any) string {
	obj, ok := doc.(map[string]any)
	if !ok {
		return ""
	}
	return labelOf(stringField(obj, "name"), stringField(obj, "code"))
}

// PeekField returns a string field of a document that may not be valid.
func PeekField(doc any, field string) string {
	obj, ok := doc.(map[string]any)
	if !ok {
		return ""
	}
	return stringField(obj, field)
}

func requireFields(doc any, fields ...string) (map[string]any, *schema.Violation) {
	obj, ok := doc.(map[string]any)
	if !ok {
		return nil, schema.NewViolation("", "type", fmt.Sprintf("got %s, want object", jsonType(doc)))
	}

	var causes []*schema.Violation
	for _, field := range fields {
		val, present := obj[field]
		switch {
		case !present:
			causes = append(causes, schema.NewViolation("", "required", fmt.Sprintf("missing property '%s'", field)))
		case jsonType(val) != "string":
			causes = append(causes, schema.NewViolation("/"+field, "type", fmt.Sprintf("got %s, want string", jsonType(val))))
		}
	}

	switch len(causes) {
	case 0:
		return obj, nil
	case 1:
		return nil, causes[0]
	default:
		return nil, &schema.Violation{Message: "record is missing identity fields", Causes: causes}
	}
}

func stringField(obj map[string]any, field string) string {
	s, _ := obj[field].(string)
	return s
}

func jsonType(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case string:
		return "string"
	case json.Number, float64, int, int64:
		return "number"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}
