package statusreport

import (
	"encoding/json"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
)

const toolDescription = "Create a branded Weekly Status Report presentation with accomplishments, priorities, risks, and milestones"

// ToolDefinition describes a callable tool and the JSON schema of its arguments.
type ToolDefinition struct {
	Name        string             `json:"name"`
	Description string             `json:"description"`
	InputSchema *jsonschema.Schema `json:"inputSchema"`
}

// requestSchema is derived once from the ReportRequest struct tags.
var requestSchema = mustResolve[ReportRequest]()

func mustResolve[T any]() *jsonschema.Resolved {
	schema, err := jsonschema.For[T](nil)
	if err != nil {
		panic(fmt.Sprintf("statusreport: derive schema: %v", err))
	}
	resolved, err := schema.Resolve(nil)
	if err != nil {
		panic(fmt.Sprintf("statusreport: resolve schema: %v", err))
	}
	return resolved
}

// Tool returns the definition the builder is published under. The name
// follows the brand, e.g. create_tavant_status_report.
func (b *Builder) Tool() ToolDefinition {
	return ToolDefinition{
		Name:        b.brand.ToolName(),
		Description: toolDescription,
		InputSchema: requestSchema.Schema().CloneSchemas(),
	}
}

// Tools lists every tool the builder publishes.
func (b *Builder) Tools() []ToolDefinition {
	return []ToolDefinition{b.Tool()}
}

// DecodeRequest validates raw tool-call arguments against the request
// schema and decodes them.
func DecodeRequest(raw []byte) (ReportRequest, error) {
	var req ReportRequest

	var instance any
	if err := json.Unmarshal(raw, &instance); err != nil {
		return req, fmt.Errorf("invalid arguments: %w", err)
	}
	if err := requestSchema.Validate(instance); err != nil {
		return req, fmt.Errorf("invalid arguments: %w", err)
	}
	if err := json.Unmarshal(raw, &req); err != nil {
		return req, fmt.Errorf("invalid arguments: %w", err)
	}
	return req, nil
}

// Invoke decodes tool-call arguments and builds the deck. Arguments that
// are malformed or miss required fields are reported as a failed Result
// like any other build failure.
func Invoke(b *Builder, args json.RawMessage) Result {
	req, err := DecodeRequest(args)
	if err != nil {
		return Failed(err)
	}
	return b.Build(req)
}
