package config

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

// documentSchema is the JSON Schema for a fakerest config file. It is the
// structural complement to Document.Validate: it rejects unknown keys and
// wrong types, which Go decoding silently ignores.
const documentSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "title": "fakerest configuration",
  "type": "object",
  "required": ["version"],
  "additionalProperties": false,
  "properties": {
    "version": {"type": "string"},
    "server": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "host": {"type": "string"},
        "port": {"type": "integer", "minimum": 0, "maximum": 65535},
        "readTimeout": {"type": "integer", "minimum": 0},
        "writeTimeout": {"type": "integer", "minimum": 0},
        "maxLineBytes": {"type": "integer", "minimum": 0},
        "maxHeaderCount": {"type": "integer", "minimum": 0},
        "maxConnections": {"type": "integer", "minimum": 0},
        "maxLogEntries": {"type": "integer", "minimum": 0},
        "logRequests": {"type": "boolean"},
        "errorMode": {"enum": ["respond", "abort"]},
        "baseDir": {"type": "string"}
      }
    },
    "routes": {
      "type": "array",
      "items": {"$ref": "#/$defs/route"}
    },
    "routeFiles": {
      "type": "array",
      "items": {"type": "string"}
    }
  },
  "$defs": {
    "route": {
      "type": "object",
      "required": ["path", "method"],
      "additionalProperties": false,
      "properties": {
        "path": {"type": "string", "pattern": "^/"},
        "method": {"enum": ["GET", "POST", "PUT", "PATCH", "OPTION", "DELETE"]},
        "headers": {"type": "array", "items": {"type": "string"}},
        "queries": {"type": "array", "items": {"type": "string"}},
        "statusCode": {"type": "integer"},
        "resultType": {"type": "string"},
        "result": {"type": "string"},
        "resultHeaders": {"type": "array", "items": {"type": "string"}}
      }
    }
  }
}`

var (
	schemaOnce    sync.Once
	schemaCached  *jsonschema.Schema
	schemaCompile error
)

func compiledDocumentSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft2020
		if err := compiler.AddResource("fakerest.schema.json", strings.NewReader(documentSchema)); err != nil {
			schemaCompile = err
			return
		}
		schemaCached, schemaCompile = compiler.Compile("fakerest.schema.json")
	})
	return schemaCached, schemaCompile
}

// SchemaError collects the structural problems found by ValidateSchema.
type SchemaError struct {
	Issues []Issue
}

func (e *SchemaError) Error() string {
	msgs := make([]string, len(e.Issues))
	for i, issue := range e.Issues {
		msgs[i] = issue.String()
	}
	return strings.Join(msgs, "\n")
}

// ValidateSchema checks raw config bytes against the embedded JSON Schema.
// The input may be YAML or JSON (YAML is the superset). Returns nil when the
// document conforms, a *SchemaError listing every violation otherwise.
func ValidateSchema(data []byte) error {
	var doc interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidYAML, err)
	}

	// Round-trip through JSON so the instance carries consistent types.
	jsonBytes, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("converting to JSON: %w", err)
	}
	var instance interface{}
	if err := json.Unmarshal(jsonBytes, &instance); err != nil {
		return fmt.Errorf("converting to JSON: %w", err)
	}

	schema, err := compiledDocumentSchema()
	if err != nil {
		return fmt.Errorf("compiling schema: %w", err)
	}

	if err := schema.Validate(instance); err != nil {
		if verr, ok := err.(*jsonschema.ValidationError); ok {
			se := &SchemaError{}
			flattenSchemaError(verr, se)
			return se
		}
		return err
	}
	return nil
}

// flattenSchemaError walks the validation error tree, keeping the leaves.
func flattenSchemaError(err *jsonschema.ValidationError, se *SchemaError) {
	if len(err.Causes) == 0 {
		se.Issues = append(se.Issues, Issue{
			Path:    pointerToPath(err.InstanceLocation),
			Message: err.Message,
		})
		return
	}
	for _, cause := range err.Causes {
		flattenSchemaError(cause, se)
	}
}

// pointerToPath converts a JSON Pointer like /routes/0/method into the dot
// notation the rest of the validation output uses.
func pointerToPath(ptr string) string {
	if ptr == "" || ptr == "/" {
		return "$"
	}
	ptr = strings.TrimPrefix(ptr, "/")
	return strings.ReplaceAll(ptr, "/", ".")
}
