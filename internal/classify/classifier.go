// Package classify implements keyword-based ticket analysis: batch
// classification, real-time suggestions, and sentiment monitoring.
package classify

import (
	"strings"

	"helpdesk-automation/internal/common/logger"
	"helpdesk-automation/internal/models"
)

// Sentiment is the detected emotional tone of ticket text.
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNeutral  Sentiment = "neutral"
	SentimentNegative Sentiment = "negative"
)

// Urgency mirrors priority levels for routing score computation.
type Urgency string

const (
	UrgencyLow      Urgency = "low"
	UrgencyMedium   Urgency = "medium"
	UrgencyHigh     Urgency = "high"
	UrgencyCritical Urgency = "critical"
)

// Complexity estimates how involved resolution is likely to be.
type Complexity string

const (
	ComplexitySimple   Complexity = "simple"
	ComplexityModerate Complexity = "moderate"
	ComplexityComplex  Complexity = "complex"
)

// Result is the derived classification of a ticket's text. It is
// recomputed per call and never persisted.
type Result struct {
	Category   models.TicketCategory `json:"category"`
	Priority   models.TicketPriority `json:"priority"`
	Sentiment  Sentiment             `json:"sentiment"`
	Urgency    Urgency               `json:"urgency"`
	Complexity Complexity            `json:"complexity"`
	Keywords   []string              `json:"keywords"`
	Confidence float64               `json:"confidence"`
}

// Engine classifies ticket text. All methods are pure functions of
// their input; the logger only records what was decided.
type Engine struct {
	log logger.Logger
}

func NewEngine(log logger.Logger) *Engine {
	return &Engine{log: log}
}

// categoryGroup pairs match patterns with the keywords recorded when
// the group hits. Groups are tried in declaration order; the first hit
// wins.
type categoryGroup struct {
	category models.TicketCategory
	patterns []string
	keywords []string

	// Some categories carry a preset the match applies directly.
	presetPriority   models.TicketPriority
	presetComplexity Complexity
}

var categoryGroups = []categoryGroup{
	{
		category: models.CategoryNetwork,
		patterns: []string{"network", "connectivity", "internet", "wifi", "vpn", "connection"},
		keywords: []string{"network", "connectivity"},
	},
	{
		category:         models.CategoryAccess,
		patterns:         []string{"password", "login", "access", "authentication", "account", "locked"},
		keywords:         []string{"access", "authentication"},
		presetComplexity: ComplexitySimple,
	},
	{
		category:       models.CategorySecurity,
		patterns:       []string{"virus", "malware", "security", "breach", "phishing", "suspicious"},
		keywords:       []string{"security", "threat"},
		presetPriority: models.PriorityHigh,
	},
	{
		category: models.CategoryHardware,
		patterns: []string{"hardware", "device", "computer", "laptop", "printer", "monitor", "keyboard"},
		keywords: []string{"hardware", "device"},
	},
	{
		category: models.CategorySoftware,
		patterns: []string{"software", "application", "install", "program", "app", "update"},
		keywords: []string{"software", "application"},
	},
	{
		category: models.CategoryEmail,
		patterns: []string{"email", "outlook", "mail", "exchange", "smtp", "imap"},
		keywords: []string{"email", "mailbox"},
	},
	{
		category: models.CategoryPrinter,
		patterns: []string{"print", "toner", "paper jam", "queue"},
		keywords: []string{"printer", "printing"},
	},
	{
		category: models.CategoryPerformance,
		patterns: []string{"slow", "performance", "lag", "freeze", "memory", "cpu"},
		keywords: []string{"performance", "degradation"},
	},
	{
		category: models.CategoryDatabase,
		patterns: []string{"database", "sql", "replication", "corruption", "backup"},
		keywords: []string{"database", "data"},
	},
	{
		category: models.CategorySystem,
		patterns: []string{"system", "server", "service", "kernel", "operating system", "reboot"},
		keywords: []string{"system", "server"},
	},
	{
		category: models.CategoryInfrastructure,
		patterns: []string{"infrastructure", "datacenter", "rack", "cooling", "capacity"},
		keywords: []string{"infrastructure", "capacity"},
	},
	{
		category: models.CategoryDisasterRecovery,
		patterns: []string{"disaster", "failover", "redundancy", "continuity"},
		keywords: []string{"disaster-recovery", "failover"},
	},
	{
		category: models.CategoryCloud,
		patterns: []string{"cloud", "aws", "azure", "gcp", "kubernetes", "docker"},
		keywords: []string{"cloud", "migration"},
	},
}

var (
	criticalPatterns = []string{"critical", "emergency", "urgent", "immediately", "asap", "production down", "cannot work"}
	highPatterns     = []string{"important", "high priority", "affecting team", "multiple users", "business impact"}
	lowPatterns      = []string{"minor", "low priority", "when possible", "not urgent", "convenience"}

	negativePatterns = []string{"frustrated", "angry", "unacceptable", "terrible", "worst", "disappointed", "furious"}
	positivePatterns = []string{"thank", "appreciate", "grateful", "please", "kindly", "hope"}

	simplePatterns  = []string{"simple", "just", "only", "quick", "reset", "restart"}
	complexPatterns = []string{"complex", "multiple", "integration", "custom", "advanced", "configuration"}
)

// Classify maps free ticket text to a full classification. Absent
// matches fall back to defaults: other/medium/neutral/moderate.
func (e *Engine) Classify(title, description string) Result {
	text := strings.ToLower(title + " " + description)

	result := Result{
		Category:   models.CategoryOther,
		Priority:   models.PriorityMedium,
		Sentiment:  SentimentNeutral,
		Urgency:    UrgencyMedium,
		Complexity: ComplexityModerate,
		Keywords:   []string{},
	}

	for _, group := range categoryGroups {
		if matchesAny(text, group.patterns) {
			result.Category = group.category
			result.Keywords = append(result.Keywords, group.keywords...)
			if group.presetPriority != "" {
				result.Priority = group.presetPriority
			}
			if group.presetComplexity != "" {
				result.Complexity = group.presetComplexity
			}
			break
		}
	}

	// Priority and urgency move together here; sentiment escalation
	// below adjusts priority alone.
	if matchesAny(text, criticalPatterns) {
		result.Priority = models.PriorityCritical
		result.Urgency = UrgencyCritical
		result.Keywords = append(result.Keywords, "urgent")
	} else if matchesAny(text, highPatterns) {
		result.Priority = models.PriorityHigh
		result.Urgency = UrgencyHigh
	} else if matchesAny(text, lowPatterns) {
		result.Priority = models.PriorityLow
		result.Urgency = UrgencyLow
	}

	if matchesAny(text, negativePatterns) {
		result.Sentiment = SentimentNegative
		// Negative sentiment bumps priority exactly one step and
		// never past high on its own.
		if result.Priority == models.PriorityLow {
			result.Priority = models.PriorityMedium
		} else if result.Priority == models.PriorityMedium {
			result.Priority = models.PriorityHigh
		}
	} else if matchesAny(text, positivePatterns) {
		result.Sentiment = SentimentPositive
	}

	if matchesAny(text, simplePatterns) {
		result.Complexity = ComplexitySimple
	} else if matchesAny(text, complexPatterns) {
		result.Complexity = ComplexityComplex
	}

	result.Confidence = confidenceFor(len(result.Keywords))

	e.log.Debug("Ticket classified", map[string]interface{}{
		"category":   result.Category,
		"priority":   result.Priority,
		"sentiment":  result.Sentiment,
		"urgency":    result.Urgency,
		"complexity": result.Complexity,
		"confidence": result.Confidence,
	})

	return result
}

func matchesAny(text string, patterns []string) bool {
	for _, pattern := range patterns {
		if strings.Contains(text, pattern) {
			return true
		}
	}
	return false
}

func confidenceFor(keywordCount int) float64 {
	confidence := 0.6 + 0.1*float64(keywordCount)
	if confidence > 0.95 {
		confidence = 0.95
	}
	return confidence
}
