package config

// sweepSchema is the JSON Schema every sweep file must satisfy before it is
// decoded. Semantic checks that need the core count live in Validate.
const sweepSchema = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "object",
	"additionalProperties": false,
	"properties": {
		"name": {"type": "string"},
		"description": {"type": "string"},
		"lock": {"type": "string", "minLength": 1},
		"lockArgs": {"type": "array", "items": {"type": "string"}},
		"acquisitions": {"type": "integer", "minimum": 0},
		"threads": {"type": "array", "items": {"type": "integer", "minimum": 1}},
		"hold": {"type": "array", "items": {"type": "integer", "minimum": 0}},
		"post": {"type": "array", "items": {"type": "integer", "minimum": 0}},
		"settings": {
			"type": "object",
			"additionalProperties": false,
			"properties": {
				"noRealtime": {"type": "boolean"},
				"requireRealtime": {"type": "boolean"},
				"noPin": {"type": "boolean"}
			}
		},
		"thresholds": {"type": "array", "items": {"type": "string"}}
	}
}`
