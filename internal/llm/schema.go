package llm

import (
	"encoding/json"
	"sort"

	"github.com/sashabaranov/go-openai/jsonschema"
	"google.golang.org/genai"
)

// toGenAISchema converts a JSON schema definition to the Gemini schema subset
func toGenAISchema(def *jsonschema.Definition) *genai.Schema {
	if def == nil {
		return nil
	}
	out := &genai.Schema{
		Description: def.Description,
		Required:    append([]string(nil), def.Required...),
		Enum:        append([]string(nil), def.Enum...),
	}
	switch def.Type {
	case jsonschema.Object:
		out.Type = genai.TypeObject
	case jsonschema.Array:
		out.Type = genai.TypeArray
	case jsonschema.Number:
		out.Type = genai.TypeNumber
	case jsonschema.Integer:
		out.Type = genai.TypeInteger
	case jsonschema.Boolean:
		out.Type = genai.TypeBoolean
	default:
		out.Type = genai.TypeString
	}
	if def.Items != nil {
		out.Items = toGenAISchema(def.Items)
	}
	if len(def.Properties) > 0 {
		out.Properties = make(map[string]*genai.Schema, len(def.Properties))
		for name, prop := range def.Properties {
			prop := prop
			out.Properties[name] = toGenAISchema(&prop)
		}
		out.PropertyOrdering = propertyOrder(def)
	}
	return out
}

// propertyOrder lists required properties first, in declaration order, then the rest sorted
func propertyOrder(def *jsonschema.Definition) []string {
	order := make([]string, 0, len(def.Properties))
	seen := make(map[string]bool, len(def.Properties))
	for _, name := range def.Required {
		if _, ok := def.Properties[name]; ok && !seen[name] {
			order = append(order, name)
			seen[name] = true
		}
	}
	var rest []string
	for name := range def.Properties {
		if !seen[name] {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	return append(order, rest...)
}

// schemaJSON renders a definition for providers that take raw JSON schema
func schemaJSON(def *jsonschema.Definition) (json.RawMessage, error) {
	if def == nil {
		return nil, nil
	}
	return json.Marshal(def)
}
