// Package route decides where a classified ticket goes: auto-resolve,
// a human agent, or the support chatbot.
package route

import (
	"strings"

	"helpdesk-automation/internal/classify"
	"helpdesk-automation/internal/common/logger"
	"helpdesk-automation/internal/models"
)

// Decision is the routing outcome for one classified ticket.
type Decision struct {
	ShouldAutoResolve   bool   `json:"shouldAutoResolve"`
	AssignToAgent       bool   `json:"assignToAgent"`
	AssignToChatbot     bool   `json:"assignToChatbot"`
	SuggestedAgentID    string `json:"suggestedAgentId,omitempty"`
	RoutingReason       string `json:"routingReason"`
	UrgencyScore        int    `json:"urgencyScore"`
	ComplexityScore     int    `json:"complexityScore"`
	AutomationPotential int    `json:"automationPotential"`
}

// Routing reasons surfaced to agents and audit logs.
const (
	ReasonSimpleChatbot     = "Simple issue suitable for AI chatbot resolution"
	ReasonPasswordReset     = "Common password reset - can be auto-resolved with self-service link"
	ReasonCriticalAgent     = "Critical priority - requires immediate agent attention"
	ReasonNegativeSentiment = "Negative sentiment detected - escalating to human agent"
	ReasonComplexAgent      = "Complex issue requiring specialized agent expertise"
	ReasonModerateChatbot   = "Attempting AI chatbot resolution with escalation option available"
)

// Router computes deterministic routing decisions. Agent suggestion
// reads a static category pool; production deployments would plug in
// availability and workload here.
type Router struct {
	log          logger.Logger
	agentPools   map[models.TicketCategory][]string
	defaultAgent string
}

// DefaultAgentPools maps categories to specialist agent IDs. Each pool
// currently holds one agent; the lookup always takes the first entry
// so decisions stay deterministic.
func DefaultAgentPools() map[models.TicketCategory][]string {
	return map[models.TicketCategory][]string{
		models.CategoryNetwork:  {"agent-network-1"},
		models.CategorySecurity: {"agent-security-1"},
		models.CategoryHardware: {"agent-hardware-1"},
		models.CategorySoftware: {"agent-software-1"},
		models.CategoryAccess:   {"agent-access-1"},
	}
}

const defaultGeneralAgent = "agent-general-1"

func NewRouter(log logger.Logger) *Router {
	return &Router{
		log:          log,
		agentPools:   DefaultAgentPools(),
		defaultAgent: defaultGeneralAgent,
	}
}

// NewRouterWithPools builds a router over a custom agent assignment table.
func NewRouterWithPools(log logger.Logger, pools map[models.TicketCategory][]string, defaultAgent string) *Router {
	return &Router{log: log, agentPools: pools, defaultAgent: defaultAgent}
}

// Route applies the decision rules in priority order. The ticket may be
// partial; only Title is consulted, for the password auto-resolve check.
func (r *Router) Route(classification classify.Result, ticket *models.Ticket) Decision {
	decision := Decision{
		UrgencyScore: urgencyScore(classification.Urgency),
	}
	decision.ComplexityScore, decision.AutomationPotential = complexityScores(classification.Complexity)

	title := ""
	if ticket != nil {
		title = ticket.Title
	}

	switch {
	case classification.Complexity == classify.ComplexitySimple && classification.Urgency != classify.UrgencyCritical:
		decision.AssignToChatbot = true
		decision.RoutingReason = ReasonSimpleChatbot

		if classification.Category == models.CategoryAccess &&
			strings.Contains(strings.ToLower(title), "password") &&
			classification.Urgency == classify.UrgencyLow {
			decision.ShouldAutoResolve = true
			decision.RoutingReason = ReasonPasswordReset
		}

	case classification.Urgency == classify.UrgencyCritical || classification.Sentiment == classify.SentimentNegative:
		decision.AssignToAgent = true
		if classification.Urgency == classify.UrgencyCritical {
			decision.RoutingReason = ReasonCriticalAgent
		} else {
			decision.RoutingReason = ReasonNegativeSentiment
		}
		decision.SuggestedAgentID = r.suggestAgent(classification.Category)

	case classification.Complexity == classify.ComplexityComplex:
		decision.AssignToAgent = true
		decision.RoutingReason = ReasonComplexAgent
		decision.SuggestedAgentID = r.suggestAgent(classification.Category)

	default:
		decision.AssignToChatbot = true
		decision.RoutingReason = ReasonModerateChatbot
	}

	r.log.Debug("Routing decision computed", map[string]interface{}{
		"autoResolve": decision.ShouldAutoResolve,
		"agent":       decision.AssignToAgent,
		"chatbot":     decision.AssignToChatbot,
		"reason":      decision.RoutingReason,
	})

	return decision
}

func (r *Router) suggestAgent(category models.TicketCategory) string {
	if pool, ok := r.agentPools[category]; ok && len(pool) > 0 {
		return pool[0]
	}
	return r.defaultAgent
}

func urgencyScore(urgency classify.Urgency) int {
	switch urgency {
	case classify.UrgencyCritical:
		return 100
	case classify.UrgencyHigh:
		return 75
	case classify.UrgencyMedium:
		return 50
	case classify.UrgencyLow:
		return 25
	}
	return 0
}

func complexityScores(complexity classify.Complexity) (complexityScore, automationPotential int) {
	switch complexity {
	case classify.ComplexitySimple:
		return 25, 80
	case classify.ComplexityModerate:
		return 50, 50
	case classify.ComplexityComplex:
		return 100, 20
	}
	return 0, 0
}
