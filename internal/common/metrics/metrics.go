// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	TicketsClassified = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tickets_classified_total",
			Help: "Total number of tickets classified by category",
		},
		[]string{"category", "priority"},
	)

	RoutingDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "routing_decisions_total",
			Help: "Total number of routing decisions by target",
		},
		[]string{"route_to"},
	)

	WorkflowExecutions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "workflow_executions_total",
			Help: "Total number of workflow executions by outcome",
		},
		[]string{"workflow_id", "outcome"},
	)

	WorkflowActionsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "workflow_actions_failed_total",
			Help: "Total number of failed workflow actions",
		},
		[]string{"action_type", "error_code"},
	)

	TicketProcessingDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "ticket_processing_duration_seconds",
			Help: "Duration of the ticket intake pipeline in seconds",
		},
		[]string{"stage"},
	)

	NotificationsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_sent_total",
			Help: "Total number of notifications sent by channel",
		},
		[]string{"channel", "status"},
	)
)
