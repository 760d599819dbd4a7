package rpc

import (
	"context"
	"fmt"
	"strings"
)

// Parameter types accepted in declarations. Anything else collapses to
// string when the schema is built.
const (
	TypeString      = "string"
	TypeInteger     = "integer"
	TypeNumber      = "number"
	TypeBoolean     = "boolean"
	TypeStringArray = "array"
	TypeObject      = "object"
)

// Param declares one operation parameter. A parameter with a nil Default is
// required; setting any Default (including a zero value) marks it optional.
type Param struct {
	Name        string
	Type        string
	Description string
	Enum        []string
	Default     any
}

// Descriptor pairs a named operation with its declared parameters. Schemas
// are declared at registration, not reflected from the callable.
type Descriptor struct {
	Name        string
	Description string
	Params      []Param
	Invoke      func(ctx context.Context, args map[string]any) (string, error)

	creates bool
	schema  map[string]any
}

// Creates reports whether the operation allocates the primary document when
// it is absent from the backend.
func (d *Descriptor) Creates() bool { return d.creates }

// creationVerbs mark operations that may target a not-yet-stored document.
var creationVerbs = []string{"create", "add", "insert", "set", "copy"}

func isCreating(name string) bool {
	for _, verb := range creationVerbs {
		if strings.Contains(name, verb) {
			return true
		}
	}
	return false
}

// Two parameter names carry hardcoded presentation hints applied regardless
// of the declared type.
var enumHints = map[string][]string{
	"position":    {"before", "after"},
	"bullet_type": {"bullet", "number"},
}

var enumHintDescriptions = map[string]string{
	"position":    "Position relative to target: 'before' or 'after'",
	"bullet_type": "List type: 'bullet' for bullets or 'number' for numbered items",
}

func normalizeType(t string) string {
	switch t {
	case TypeString, TypeInteger, TypeNumber, TypeBoolean, TypeStringArray, TypeObject:
		return t
	default:
		return TypeString
	}
}

// buildSchema derives the JSON-schema object served by tools/list. Built
// once at registration; the result is shared across calls and must not be
// mutated.
func buildSchema(d *Descriptor) map[string]any {
	properties := make(map[string]any, len(d.Params))
	var required []string
	for _, p := range d.Params {
		prop := map[string]any{"type": normalizeType(p.Type)}
		if prop["type"] == TypeStringArray {
			prop["items"] = map[string]any{"type": TypeString}
		}
		desc := p.Description
		if hint, ok := enumHints[p.Name]; ok {
			prop["enum"] = hint
			if desc == "" {
				desc = enumHintDescriptions[p.Name]
			}
		} else if len(p.Enum) > 0 {
			prop["enum"] = p.Enum
		}
		if desc == "" {
			desc = fmt.Sprintf("Parameter: %s", p.Name)
		}
		prop["description"] = desc
		properties[p.Name] = prop
		if p.Default == nil {
			required = append(required, p.Name)
		}
	}
	schema := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}
