package report

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/tidwall/gjson"
)

//go:embed schema/report.schema.json
var reportSchema string

//go:embed schema/sweep.schema.json
var sweepSchema string

// SchemaErrors lists every violation found in a document.
type SchemaErrors []error

func (se SchemaErrors) Error() string {
	if len(se) == 0 {
		return ""
	}

	var sb strings.Builder
	for i, err := range se {
		if i > 0 {
			sb.WriteString("; ")
		}
		sb.WriteString(err.Error())
	}
	return sb.String()
}

// Kind names the document type detected by Validate.
type Kind string

const (
	KindRun   Kind = "run"
	KindSweep Kind = "sweep"
)

// Validate checks a saved report against its embedded JSON schema. Sweep
// reports are recognized by their steps array.
//
// A document that parses but violates the schema returns SchemaErrors.
func Validate(data []byte) (Kind, error) {
	if !gjson.ValidBytes(data) {
		return "", errors.New("invalid JSON")
	}

	kind, schemaText := KindRun, reportSchema
	if gjson.GetBytes(data, "steps").IsArray() {
		kind, schemaText = KindSweep, sweepSchema
	}

	schema, err := compileSchema(string(kind), schemaText)
	if err != nil {
		return kind, err
	}

	var doc interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return kind, fmt.Errorf("invalid JSON: %w", err)
	}

	if err := schema.Validate(doc); err != nil {
		var validationErr *jsonschema.ValidationError
		if errors.As(err, &validationErr) {
			return kind, extractValidationErrors(validationErr)
		}
		return kind, SchemaErrors{err}
	}
	return kind, nil
}

func compileSchema(name, text string) (*jsonschema.Schema, error) {
	url := name + ".schema.json"

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(url, strings.NewReader(text)); err != nil {
		return nil, fmt.Errorf("invalid schema: %w", err)
	}
	schema, err := compiler.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("invalid schema: %w", err)
	}
	return schema, nil
}

// extractValidationErrors flattens the leaf causes of a validation error.
func extractValidationErrors(err *jsonschema.ValidationError) SchemaErrors {
	if len(err.Causes) == 0 {
		location := err.InstanceLocation
		if location == "" {
			location = "/"
		}
		return SchemaErrors{fmt.Errorf("%s: %s", location, err.Message)}
	}

	var errs SchemaErrors
	for _, cause := range err.Causes {
		errs = append(errs, extractValidationErrors(cause)...)
	}
	return errs
}
