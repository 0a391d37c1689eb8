// internal/classify/suggest.go
package classify

import (
	"fmt"
	"strings"

	"helpdesk-automation/internal/models"
)

// Suggestion is the real-time hint shown while a ticket is being typed.
type Suggestion struct {
	Category        models.TicketCategory `json:"category"`
	Priority        models.TicketPriority `json:"priority"`
	Confidence      float64               `json:"confidence"`
	Reasoning       string                `json:"reasoning"`
	RelatedArticles []string              `json:"relatedArticles"`
}

// scoredCategory is a keyword list scored by match ratio. The slice
// order is the tie-break: on equal scores the earliest entry wins.
type scoredCategory struct {
	category models.TicketCategory
	patterns []string
}

var suggestionCategories = []scoredCategory{
	{models.CategoryNetwork, []string{
		"network", "wifi", "internet", "connection", "connectivity", "vpn", "lan", "wan",
		"ethernet", "wireless", "router", "modem", "bandwidth", "speed", "timeout", "disconnect",
		"switch", "configuration", "monitoring",
	}},
	{models.CategoryAccess, []string{
		"password", "login", "access", "account", "authentication", "credentials", "locked out",
		"can't log in", "forgot password", "reset", "mfa", "2fa", "single sign on", "sso",
		"permissions", "shared drive", "provisioning",
	}},
	{models.CategorySoftware, []string{
		"software", "application", "app", "install", "installation", "update", "upgrade",
		"crash", "freeze", "not responding", "error", "bug", "feature", "license", "activation",
		"deployment", "automation", "management",
	}},
	{models.CategoryHardware, []string{
		"hardware", "device", "computer", "laptop", "desktop", "printer", "scanner", "monitor",
		"keyboard", "mouse", "camera", "microphone", "speaker", "broken", "not working", "malfunction",
	}},
	{models.CategorySecurity, []string{
		"security", "virus", "malware", "phishing", "spam", "firewall", "antivirus", "threat",
		"suspicious", "breach", "unauthorized", "hack", "intrusion", "vulnerability", "patch",
		"audit", "compliance", "rule",
	}},
	{models.CategoryEmail, []string{
		"email", "outlook", "mail", "exchange", "gmail", "smtp", "pop", "imap", "signature",
		"attachment", "spam", "inbox", "sent", "calendar", "contacts", "sync",
	}},
	{models.CategoryPrinter, []string{
		"printer", "print", "printing", "paper jam", "ink", "toner", "driver", "queue",
		"scanner", "copy", "fax", "wireless printer", "network printer",
	}},
	{models.CategoryPerformance, []string{
		"slow", "performance", "lag", "freeze", "hang", "memory", "cpu", "disk", "storage",
		"space", "ram", "speed", "optimization", "cleanup", "defrag", "monitoring", "metrics",
	}},
	{models.CategoryDatabase, []string{
		"database", "db", "sql", "backup", "restore", "query", "table", "index", "integrity",
		"verification", "corruption", "replication",
	}},
	{models.CategorySystem, []string{
		"system", "server", "service", "daemon", "process", "kernel", "os", "operating system",
		"upgrade", "patch", "maintenance", "reboot", "restart",
	}},
	{models.CategoryInfrastructure, []string{
		"infrastructure", "server", "datacenter", "rack", "power", "cooling", "backup",
		"storage", "san", "nas", "expansion", "capacity",
	}},
	{models.CategoryDisasterRecovery, []string{
		"disaster", "recovery", "backup", "restore", "failover", "redundancy", "plan",
		"procedure", "contact", "emergency", "continuity",
	}},
	{models.CategoryCloud, []string{
		"cloud", "aws", "azure", "gcp", "migration", "saas", "paas", "iaas", "virtual",
		"container", "kubernetes", "docker", "strategy", "planning",
	}},
}

// scoredPriority groups are checked in order; the first with any hit wins.
type scoredPriority struct {
	priority models.TicketPriority
	patterns []string
}

var suggestionPriorities = []scoredPriority{
	{models.PriorityCritical, []string{
		"critical", "urgent", "emergency", "down", "outage", "production down", "cannot work",
		"system down", "server down", "database down", "complete failure", "total loss",
	}},
	{models.PriorityHigh, []string{
		"important", "asap", "soon", "affecting", "multiple users", "team", "department",
		"business impact", "revenue", "customer", "client", "deadline", "blocking",
	}},
	{models.PriorityLow, []string{
		"minor", "small", "cosmetic", "nice to have", "when possible", "low priority",
		"non-critical", "optional", "enhancement", "improvement", "suggestion",
	}},
}

// Suggest computes a real-time category/priority hint by match-ratio
// scoring. Returns nil when the text carries too little signal.
func (e *Engine) Suggest(title, description string) *Suggestion {
	combined := strings.ToLower(title) + " " + strings.ToLower(description)

	bestCategory := models.CategoryOther
	bestConfidence := 0.0
	reasoning := ""

	for _, candidate := range suggestionCategories {
		var matches []string
		for _, pattern := range candidate.patterns {
			if strings.Contains(combined, pattern) {
				matches = append(matches, pattern)
			}
		}
		confidence := float64(len(matches)) / float64(len(candidate.patterns))

		if confidence > bestConfidence && len(matches) > 0 {
			bestCategory = candidate.category
			bestConfidence = confidence
			reasoning = "Detected keywords: " + strings.Join(matches, ", ")
		}
	}

	priority := models.PriorityMedium
	for _, candidate := range suggestionPriorities {
		var matches []string
		for _, pattern := range candidate.patterns {
			if strings.Contains(combined, pattern) {
				matches = append(matches, pattern)
			}
		}
		if len(matches) > 0 {
			priority = candidate.priority
			break
		}
	}

	if bestConfidence <= 0.1 && len(title) <= 10 {
		return nil
	}

	confidence := bestConfidence + 0.3
	if confidence > 0.95 {
		confidence = 0.95
	}
	if reasoning == "" {
		reasoning = fmt.Sprintf("Based on title analysis: %q", title)
	}

	return &Suggestion{
		Category:        bestCategory,
		Priority:        priority,
		Confidence:      confidence,
		Reasoning:       reasoning,
		RelatedArticles: RelatedArticles(bestCategory),
	}
}

var relatedArticles = map[models.TicketCategory][]string{
	models.CategoryNetwork: {
		"KB-001: Network Troubleshooting Guide",
		"KB-015: VPN Connection Issues",
		"KB-024: WiFi Setup Instructions",
		"KB-028: Network Performance Optimization",
	},
	models.CategoryAccess: {
		"KB-003: Password Reset Procedure",
		"KB-012: Account Access Issues",
		"KB-019: Multi-Factor Authentication Setup",
		"KB-025: Single Sign-On Configuration",
	},
	models.CategorySoftware: {
		"KB-005: Software Installation Guide",
		"KB-018: Common Software Issues",
		"KB-026: Application Troubleshooting",
		"KB-030: Software License Management",
	},
	models.CategoryHardware: {
		"KB-007: Hardware Troubleshooting",
		"KB-020: Device Setup Guide",
		"KB-027: Hardware Maintenance",
		"KB-031: Equipment Replacement Process",
	},
	models.CategorySecurity: {
		"KB-009: Security Best Practices",
		"KB-022: Malware Removal Guide",
		"KB-029: Security Incident Response",
		"KB-032: Vulnerability Management",
	},
	models.CategoryEmail: {
		"KB-006: Email Configuration Guide",
		"KB-014: Outlook Troubleshooting",
		"KB-021: Email Forwarding Setup",
		"KB-033: Email Security Best Practices",
	},
	models.CategoryPrinter: {
		"KB-008: Printer Setup Guide",
		"KB-016: Print Queue Issues",
		"KB-023: Network Printer Configuration",
		"KB-034: Printer Maintenance",
	},
	models.CategoryPerformance: {
		"KB-011: System Performance Optimization",
		"KB-017: Memory Management",
		"KB-024: Disk Cleanup Procedures",
		"KB-035: Performance Monitoring",
	},
	models.CategoryDatabase: {
		"KB-036: Database Backup Procedures",
		"KB-037: SQL Query Optimization",
		"KB-038: Database Maintenance Guide",
		"KB-039: Data Recovery Procedures",
	},
	models.CategorySystem: {
		"KB-040: System Administration Guide",
		"KB-041: Server Maintenance Procedures",
		"KB-042: Service Management",
		"KB-043: System Monitoring Setup",
	},
	models.CategoryInfrastructure: {
		"KB-044: Infrastructure Planning Guide",
		"KB-045: Data Center Management",
		"KB-046: Capacity Planning",
		"KB-047: Infrastructure Monitoring",
	},
	models.CategoryDisasterRecovery: {
		"KB-048: Disaster Recovery Planning",
		"KB-049: Backup and Restore Procedures",
		"KB-050: Business Continuity Planning",
		"KB-051: Emergency Response Procedures",
	},
	models.CategoryCloud: {
		"KB-052: Cloud Migration Guide",
		"KB-053: Cloud Security Best Practices",
		"KB-054: Container Management",
		"KB-055: Cloud Cost Optimization",
	},
}

// RelatedArticles returns the static article references for a category,
// falling back to the general FAQ entries.
func RelatedArticles(category models.TicketCategory) []string {
	if articles, ok := relatedArticles[category]; ok {
		result := make([]string, len(articles))
		copy(result, articles)
		return result
	}
	return []string{
		"KB-002: General IT Support FAQ",
		"KB-010: Common Issues and Solutions",
	}
}
