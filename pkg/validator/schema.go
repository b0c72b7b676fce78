package validator

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/githubnext/yamlassist/internal/mapper"
	"github.com/githubnext/yamlassist/pkg/parser"
	"github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/santhosh-tekuri/jsonschema/v6/kind"
)

const schemaResourceURL = "http://yamlassist.local/schema.json"

// Schema is a compiled JSON Schema that YAML documents can be checked against
type Schema struct {
	schema *jsonschema.Schema
}

// CompileSchema compiles a JSON Schema document
func CompileSchema(schemaJSON string) (*Schema, error) {
	var schemaDoc any
	if err := json.Unmarshal([]byte(schemaJSON), &schemaDoc); err != nil {
		return nil, fmt.Errorf("failed to parse schema JSON: %w", err)
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(schemaResourceURL, schemaDoc); err != nil {
		return nil, fmt.Errorf("failed to add schema resource: %w", err)
	}
	schema, err := compiler.Compile(schemaResourceURL)
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}
	return &Schema{schema: schema}, nil
}

// Validate checks text against the schema. Unparseable or empty text yields the same
// errors Classify would report; schema violations are Structure errors positioned on the
// offending YAML node.
func (s *Schema) Validate(text string) []ValidationError {
	if strings.TrimSpace(text) == "" {
		return Classify(text).Errors
	}
	outcome := parser.Parse(text)
	if !outcome.OK() {
		return syntaxErrors(text, outcome.Failure)
	}

	// Round-trip through JSON so that numbers use the types the validator expects
	instance, err := normalizeInstance(outcome.Value.Interface())
	if err != nil {
		return []ValidationError{{
			Kind:       StructureError,
			Line:       1,
			Column:     1,
			Message:    fmt.Sprintf("Document cannot be checked against a JSON schema: %v", err),
			Suggestion: "Remove values that have no JSON representation such as .nan or .inf",
		}}
	}

	err = s.schema.Validate(instance)
	if err == nil {
		return []ValidationError{}
	}
	var valErr *jsonschema.ValidationError
	if !errors.As(err, &valErr) {
		return []ValidationError{{Kind: StructureError, Line: 1, Column: 1, Message: err.Error()}}
	}

	var errs []ValidationError
	for _, leaf := range leafErrors(valErr) {
		errs = append(errs, schemaError(text, leaf))
	}
	return errs
}

// ValidateSchema compiles schemaJSON and validates text against it
func ValidateSchema(text, schemaJSON string) ([]ValidationError, error) {
	schema, err := CompileSchema(schemaJSON)
	if err != nil {
		return nil, err
	}
	return schema.Validate(text), nil
}

func normalizeInstance(v any) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// leafErrors flattens the cause tree into its most specific failures
func leafErrors(err *jsonschema.ValidationError) []*jsonschema.ValidationError {
	if len(err.Causes) == 0 {
		return []*jsonschema.ValidationError{err}
	}
	var leaves []*jsonschema.ValidationError
	for _, cause := range err.Causes {
		leaves = append(leaves, leafErrors(cause)...)
	}
	return leaves
}

func schemaError(text string, leaf *jsonschema.ValidationError) ValidationError {
	meta := extractErrorMeta(leaf)
	span := mapper.Span{StartLine: 1, StartCol: 1}
	if spans, err := mapper.MapErrorToSpans([]byte(text), mapper.EncodeJSONPointer(leaf.InstanceLocation), meta); err == nil && len(spans) > 0 {
		span = spans[0]
	}
	line, column := clampPosition(SplitLines(text), span.StartLine, span.StartCol)

	return ValidationError{
		Kind:       StructureError,
		Line:       line,
		Column:     column,
		Message:    formatValidationMessage(leaf, meta),
		Suggestion: validationHint(meta),
	}
}

// extractErrorMeta reads the keyword and the property it concerns from a leaf failure
func extractErrorMeta(valErr *jsonschema.ValidationError) mapper.ErrorMeta {
	meta := mapper.ErrorMeta{Kind: "unknown"}
	if valErr.ErrorKind == nil {
		return meta
	}
	if path := valErr.ErrorKind.KeywordPath(); len(path) > 0 {
		meta.Kind = path[len(path)-1]
	}

	switch k := valErr.ErrorKind.(type) {
	case *kind.Required:
		if len(k.Missing) > 0 {
			meta.Property = k.Missing[0]
		}
	case *kind.AdditionalProperties:
		if len(k.Properties) > 0 {
			meta.Property = k.Properties[0]
		}
	default:
		if len(valErr.InstanceLocation) > 0 {
			meta.Property = valErr.InstanceLocation[len(valErr.InstanceLocation)-1]
		}
	}
	return meta
}

func formatValidationMessage(valErr *jsonschema.ValidationError, meta mapper.ErrorMeta) string {
	at := strings.Join(valErr.InstanceLocation, ".")
	if at == "" {
		at = "(root)"
	}
	switch meta.Kind {
	case "type":
		return fmt.Sprintf("Type mismatch at '%s'", at)
	case "required":
		return fmt.Sprintf("Missing required property '%s' at '%s'", meta.Property, at)
	case "additionalProperties":
		return fmt.Sprintf("Unexpected property '%s' at '%s'", meta.Property, at)
	case "enum", "const":
		return fmt.Sprintf("Value not allowed at '%s'", at)
	default:
		return fmt.Sprintf("Schema violation at '%s': %s", at, cleanJSONSchemaErrorMessage(valErr.Error()))
	}
}

func validationHint(meta mapper.ErrorMeta) string {
	switch meta.Kind {
	case "type":
		return "Check the data type: quote strings, leave numbers and booleans unquoted"
	case "required":
		return fmt.Sprintf("Add the required property '%s' to this object", meta.Property)
	case "additionalProperties":
		return fmt.Sprintf("Remove the property '%s' or check it for typos", meta.Property)
	case "enum", "const":
		return "Use one of the values allowed by the schema"
	default:
		return "Check the document against the schema requirements"
	}
}

// cleanJSONSchemaErrorMessage keeps the last meaningful line of a jsonschema error
func cleanJSONSchemaErrorMessage(errorMsg string) string {
	var cleaned []string
	for _, line := range strings.Split(errorMsg, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "jsonschema validation failed") {
			continue
		}
		if i := strings.Index(line, "': "); strings.HasPrefix(line, "- at '") && i > 0 {
			line = line[i+3:]
		}
		cleaned = append(cleaned, line)
	}
	if len(cleaned) == 0 {
		return "schema validation failed"
	}
	return cleaned[len(cleaned)-1]
}
