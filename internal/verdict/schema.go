package verdict

import "github.com/sashabaranov/go-openai/jsonschema"

// SchemaName labels the verdict schema for providers that need one
const SchemaName = "puppy_verdict"

// Schema returns a fresh copy of the verdict response schema.
// The OpenAI client mutates definitions while marshalling, so it is never shared.
func Schema() *jsonschema.Definition {
	return &jsonschema.Definition{
		Type: jsonschema.Object,
		Properties: map[string]jsonschema.Definition{
			"cuteOpening": {
				Type:        jsonschema.String,
				Description: "Opening sentence in Chinese. Cute: warm, starts with '汪～'. Toxic: roasting, starts with '哼唧～'.",
			},
			"coreConflict": {
				Type:        jsonschema.String,
				Description: "Concise summary of the conflict. Toxic: brutal honesty about the real issue.",
			},
			"eventAnalysis": {
				Type:        jsonschema.String,
				Description: "Detailed analysis. Cute: reconstruction and psychological needs. Toxic: exposing hidden calculations.",
			},
			"analysisPoints": {
				Type:        jsonschema.Array,
				Items:       &jsonschema.Definition{Type: jsonschema.String},
				Description: "Exactly 3 bullet points.",
			},
			"userPercentage": {
				Type:        jsonschema.Number,
				Description: "User's percentage, 0-100. Toxic: fault share. Cute: support share.",
			},
			"partnerPercentage": {
				Type:        jsonschema.Number,
				Description: "Partner's percentage. Must add up to 100 with userPercentage.",
			},
			"userSideSummary": {
				Type:        jsonschema.String,
				Description: "One sentence summarising the user's argument.",
			},
			"partnerSideSummary": {
				Type:        jsonschema.String,
				Description: "One sentence summarising the partner's argument.",
			},
			"shortAdvice": {
				Type:        jsonschema.String,
				Description: "Short term advice. Empty string when the instructions say so.",
			},
			"longAdvice": {
				Type:        jsonschema.String,
				Description: "Long term advice.",
			},
		},
		Required: []string{
			"cuteOpening", "coreConflict", "eventAnalysis", "analysisPoints",
			"userPercentage", "partnerPercentage", "userSideSummary",
			"partnerSideSummary", "shortAdvice", "longAdvice",
		},
		AdditionalProperties: false,
	}
}
