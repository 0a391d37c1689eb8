// internal/workflow/validate.go
package workflow

import (
	"encoding/json"
	"fmt"

	"github.com/xeipuuv/gojsonschema"

	stderrors "helpdesk-automation/internal/common/errors"
	"helpdesk-automation/internal/models"
)

// definitionSchema checks the structural shape of an authored workflow
// before the semantic checks run.
const definitionSchema = `{
	"type": "object",
	"required": ["name", "trigger", "actions"],
	"properties": {
		"name": {"type": "string", "minLength": 1},
		"description": {"type": "string"},
		"enabled": {"type": "boolean"},
		"trigger": {
			"type": "object",
			"required": ["type"],
			"properties": {
				"type": {"type": "string"},
				"label": {"type": "string"}
			}
		},
		"conditions": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["field", "operator", "value"],
				"properties": {
					"field": {"type": "string", "minLength": 1},
					"operator": {"type": "string"},
					"value": {"type": "string"}
				}
			}
		},
		"actions": {
			"type": "array",
			"minItems": 1,
			"items": {
				"type": "object",
				"required": ["type"],
				"properties": {
					"type": {"type": "string"},
					"label": {"type": "string"},
					"config": {"type": "object"}
				}
			}
		}
	}
}`

// Validator checks workflow definitions on create and update.
type Validator struct {
	schema     *gojsonschema.Schema
	maxActions int
}

func NewValidator(maxActions int) (*Validator, error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(definitionSchema))
	if err != nil {
		return nil, fmt.Errorf("failed to compile workflow schema: %w", err)
	}
	return &Validator{schema: schema, maxActions: maxActions}, nil
}

// Validate runs schema validation over the definition's JSON form,
// then the semantic checks the schema cannot express.
func (v *Validator) Validate(workflow *models.Workflow) error {
	document, err := json.Marshal(workflow)
	if err != nil {
		return stderrors.NewWorkflowInvalidError(fmt.Sprintf("encode failed: %s", err))
	}

	result, err := v.schema.Validate(gojsonschema.NewBytesLoader(document))
	if err != nil {
		return stderrors.NewWorkflowInvalidError(fmt.Sprintf("schema validation error: %s", err))
	}
	if !result.Valid() {
		errs := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			errs[i] = desc.String()
		}
		return stderrors.NewWorkflowInvalidError(fmt.Sprintf("schema violations: %v", errs))
	}

	return v.validateSemantics(workflow)
}

func (v *Validator) validateSemantics(workflow *models.Workflow) error {
	if !workflow.Trigger.Type.Valid() {
		return stderrors.NewWorkflowInvalidError(
			fmt.Sprintf("unknown trigger type %q", workflow.Trigger.Type))
	}

	for _, condition := range workflow.Conditions {
		if !condition.Operator.Valid() {
			return stderrors.NewWorkflowInvalidError(
				fmt.Sprintf("unknown condition operator %q", condition.Operator))
		}
	}

	if len(workflow.Actions) == 0 {
		return stderrors.NewWorkflowInvalidError("workflow must declare at least one action")
	}
	if v.maxActions > 0 && len(workflow.Actions) > v.maxActions {
		return stderrors.NewWorkflowInvalidError(
			fmt.Sprintf("workflow declares %d actions, limit is %d", len(workflow.Actions), v.maxActions))
	}

	for _, action := range workflow.Actions {
		required, known := requiredConfigKeys[action.Type]
		if !known {
			return stderrors.NewWorkflowInvalidError(
				fmt.Sprintf("unknown action type %q", action.Type))
		}
		for _, key := range required {
			if action.Config[key] == "" {
				return stderrors.NewWorkflowInvalidError(
					fmt.Sprintf("action %q requires config field %q", action.Type, key))
			}
		}
	}

	return nil
}
