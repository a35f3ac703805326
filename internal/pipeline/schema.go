// internal/pipeline/schema.go
package pipeline

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	stderrors "autobuild/internal/common/errors"
)

// requirementSchema validates the inbound build-requirement payload before
// it reaches the pipeline.
const requirementSchema = `{
	"type": "object",
	"required": ["serviceName", "description"],
	"properties": {
		"serviceName": {
			"type": "string",
			"minLength": 1,
			"maxLength": 128
		},
		"description": {
			"type": "string",
			"minLength": 1
		},
		"features": {
			"type": "array",
			"items": {"type": "string"}
		},
		"configuration": {
			"type": "object",
			"additionalProperties": {"type": "string"}
		}
	},
	"additionalProperties": false
}`

var requirementSchemaLoader = gojsonschema.NewStringLoader(requirementSchema)

// ParseRequirement validates payload against the requirement schema and
// decodes it. Schema violations come back as a single invalid-requirement
// error listing every failed constraint.
func ParseRequirement(payload []byte) (*BuildRequirement, error) {
	result, err := gojsonschema.Validate(requirementSchemaLoader, gojsonschema.NewBytesLoader(payload))
	if err != nil {
		return nil, stderrors.NewRequirementInvalidError(fmt.Sprintf("payload is not valid JSON: %v", err))
	}

	if !result.Valid() {
		violations := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			violations = append(violations, desc.String())
		}
		return nil, stderrors.NewRequirementInvalidError(strings.Join(violations, "; "))
	}

	var req BuildRequirement
	if err := json.Unmarshal(payload, &req); err != nil {
		return nil, stderrors.NewRequirementInvalidError(err.Error())
	}
	return &req, nil
}
