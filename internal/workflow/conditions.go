// internal/workflow/conditions.go
package workflow

import (
	"strconv"
	"strings"

	"helpdesk-automation/internal/models"
)

// evaluateCondition tests one predicate against the ticket. Unknown
// fields stringify to "", so equals/not_equals stay exact negations of
// each other even on bad field names.
func (e *Engine) evaluateCondition(ticket *models.Ticket, condition models.WorkflowCondition) bool {
	fieldValue := ticket.Field(condition.Field)

	switch condition.Operator {
	case models.OperatorEquals:
		return fieldValue == condition.Value

	case models.OperatorNotEquals:
		return fieldValue != condition.Value

	case models.OperatorContains:
		if e.opts.ContainsCaseSensitive {
			return strings.Contains(fieldValue, condition.Value)
		}
		return strings.Contains(strings.ToLower(fieldValue), strings.ToLower(condition.Value))

	case models.OperatorGreaterThan:
		left, right, ok := parseNumericPair(fieldValue, condition.Value)
		return ok && left > right

	case models.OperatorLessThan:
		left, right, ok := parseNumericPair(fieldValue, condition.Value)
		return ok && left < right
	}

	return false
}

// parseNumericPair parses both sides; either failing makes the
// comparison evaluate false rather than erroring.
func parseNumericPair(a, b string) (float64, float64, bool) {
	left, err := strconv.ParseFloat(strings.TrimSpace(a), 64)
	if err != nil {
		return 0, 0, false
	}
	right, err := strconv.ParseFloat(strings.TrimSpace(b), 64)
	if err != nil {
		return 0, 0, false
	}
	return left, right, true
}
