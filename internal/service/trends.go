// internal/service/trends.go
package service

import (
	"context"
	"sort"

	"helpdesk-automation/internal/models"
	"helpdesk-automation/internal/store"
)

// CommonIssue is one category's share of recent tickets.
type CommonIssue struct {
	Issue    string                `json:"issue"`
	Count    int                   `json:"count"`
	Category models.TicketCategory `json:"category"`
}

// TrendReport aggregates submission and resolution statistics.
type TrendReport struct {
	CommonIssues          []CommonIssue `json:"commonIssues"`
	PeakHours             []int         `json:"peakHours"`
	AverageResolutionTime float64       `json:"averageResolutionTime"`
	ChatbotSuccessRate    float64       `json:"chatbotSuccessRate"`
}

var issueLabels = map[models.TicketCategory]string{
	models.CategoryAccess:   "Password reset requests",
	models.CategoryNetwork:  "Network connectivity issues",
	models.CategorySoftware: "Software installation requests",
	models.CategoryHardware: "Hardware and device problems",
	models.CategoryPrinter:  "Printer configuration",
	models.CategoryEmail:    "Email delivery problems",
	models.CategorySecurity: "Security incidents",
}

// AnalyzeTrends computes the dashboard trend report from stored
// tickets. Resolution time is in hours.
func (s *Service) AnalyzeTrends(ctx context.Context) (*TrendReport, error) {
	tickets, err := s.tickets.List(ctx, store.TicketFilter{})
	if err != nil {
		return nil, err
	}

	categoryCounts := make(map[models.TicketCategory]int)
	hourCounts := make(map[int]int)
	var resolutionHours float64
	resolvedCount := 0
	chatbotTotal := 0
	chatbotResolved := 0

	for _, ticket := range tickets {
		categoryCounts[ticket.Category]++
		hourCounts[ticket.CreatedAt.Hour()]++

		if ticket.ResolvedAt != nil {
			resolutionHours += ticket.ResolvedAt.Sub(ticket.CreatedAt).Hours()
			resolvedCount++
		}
		if ticket.HasTag("chatbot") || ticket.HasTag("auto-resolved") {
			chatbotTotal++
			if ticket.Status.Terminal() {
				chatbotResolved++
			}
		}
	}

	report := &TrendReport{
		CommonIssues: topIssues(categoryCounts, 4),
		PeakHours:    topHours(hourCounts, 4),
	}
	if resolvedCount > 0 {
		report.AverageResolutionTime = resolutionHours / float64(resolvedCount)
	}
	if chatbotTotal > 0 {
		report.ChatbotSuccessRate = float64(chatbotResolved) / float64(chatbotTotal)
	}
	return report, nil
}

func topIssues(counts map[models.TicketCategory]int, limit int) []CommonIssue {
	issues := make([]CommonIssue, 0, len(counts))
	for category, count := range counts {
		label, ok := issueLabels[category]
		if !ok {
			label = "Other support requests"
		}
		issues = append(issues, CommonIssue{Issue: label, Count: count, Category: category})
	}

	sort.Slice(issues, func(i, j int) bool {
		if issues[i].Count != issues[j].Count {
			return issues[i].Count > issues[j].Count
		}
		return issues[i].Category < issues[j].Category
	})

	if len(issues) > limit {
		issues = issues[:limit]
	}
	return issues
}

func topHours(counts map[int]int, limit int) []int {
	hours := make([]int, 0, len(counts))
	for hour := range counts {
		hours = append(hours, hour)
	}

	sort.Slice(hours, func(i, j int) bool {
		if counts[hours[i]] != counts[hours[j]] {
			return counts[hours[i]] > counts[hours[j]]
		}
		return hours[i] < hours[j]
	})

	if len(hours) > limit {
		hours = hours[:limit]
	}
	sort.Ints(hours)
	return hours
}
