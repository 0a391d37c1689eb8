package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"helpdesk-automation/internal/api"
	"helpdesk-automation/internal/chatbot"
	"helpdesk-automation/internal/classify"
	"helpdesk-automation/internal/common/config"
	"helpdesk-automation/internal/common/database"
	"helpdesk-automation/internal/common/logger"
	"helpdesk-automation/internal/common/observability"
	"helpdesk-automation/internal/kb"
	"helpdesk-automation/internal/models"
	"helpdesk-automation/internal/notify"
	"helpdesk-automation/internal/route"
	"helpdesk-automation/internal/service"
	"helpdesk-automation/internal/store"
	"helpdesk-automation/internal/workflow"
)

// retryWithBackoff executes an operation with exponential backoff retry logic
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for attempt := 1; attempt <= maxRetries; attempt++ {
		err = operation()
		if err == nil {
			if attempt > 1 {
				log.Info("Operation succeeded after retry",
					zap.String("operation", operationName),
					zap.Int("attempt", attempt))
			}
			return nil
		}

		if attempt < maxRetries {
			log.Warn("Operation failed, retrying",
				zap.String("operation", operationName),
				zap.Int("attempt", attempt),
				zap.Int("max_retries", maxRetries),
				zap.Duration("retry_delay", delay),
				zap.Error(err))
			time.Sleep(delay)
			delay *= 2
		}
	}

	return err
}

func main() {
	zapLog := logger.New("info", "console")
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("Failed to load configuration", zap.Error(err))
	}

	zapLog = logger.New(cfg.Logging.Level, cfg.Logging.Format)
	log = logger.NewZapAdapter(zapLog)
	log.Info("Starting automation engine", map[string]interface{}{
		"app":         cfg.App.Name,
		"version":     cfg.App.Version,
		"environment": cfg.App.Environment,
		"backend":     cfg.Store.Backend,
	})

	obs := observability.New("automation-engine")
	defer obs.Shutdown()

	// Ticket storage. The workflow, user, notification, and chat stores
	// are in-memory in every deployment so far.
	var tickets store.TicketRepository
	if cfg.Store.Backend == "postgres" {
		var pg *database.PostgresClient
		err := retryWithBackoff(func() error {
			var initErr error
			pg, initErr = database.NewPostgres(cfg.Database.Postgres)
			return initErr
		}, 5, 2*time.Second, zapLog, "postgres_init")
		if err != nil {
			zapLog.Fatal("Failed to connect to PostgreSQL after retries", zap.Error(err))
		}
		defer pg.Close()
		tickets = store.NewPostgresTicketRepository(pg.GetDB())
		log.Info("PostgreSQL ticket store ready", map[string]interface{}{
			"host": cfg.Database.Postgres.Host,
		})
	} else {
		tickets = store.NewMemoryTicketRepository()
	}

	workflows := store.NewMemoryWorkflowStore()
	users := store.NewMemoryUserStore()
	notifications := store.NewMemoryNotificationStore()
	chats := store.NewMemoryChatStore()

	// Redis-backed classification cache, optional.
	var classificationCache *classify.Cache
	if cfg.Database.Redis.Address != "" {
		var rdb *database.RedisClient
		err := retryWithBackoff(func() error {
			var initErr error
			rdb, initErr = database.NewRedis(cfg.Database.Redis)
			return initErr
		}, 3, 1*time.Second, zapLog, "redis_init")
		if err != nil {
			log.Warn("Redis unavailable, classification cache disabled", map[string]interface{}{
				"error": err.Error(),
			})
		} else {
			defer rdb.Close()
			ttl := config.GetDuration(cfg.Engine.ClassificationCacheTTL)
			classificationCache = classify.NewCache(rdb.GetClient(), ttl, log)
		}
	}

	// Elasticsearch for knowledge base search, optional. The searcher
	// falls back to keyword matching when no client is wired.
	searcher := kb.NewSearcher(nil, cfg.Database.Elasticsearch.Index, log)
	if len(cfg.Database.Elasticsearch.Addresses) > 0 {
		var es *database.ElasticsearchClient
		err := retryWithBackoff(func() error {
			var initErr error
			es, initErr = database.NewElasticsearch(cfg.Database.Elasticsearch)
			if initErr != nil {
				return initErr
			}
			return es.Ping()
		}, 3, 2*time.Second, zapLog, "elasticsearch_init")
		if err != nil {
			log.Warn("Elasticsearch unavailable, using keyword fallback", map[string]interface{}{
				"error": err.Error(),
			})
		} else {
			searcher = kb.NewSearcher(es.Client, cfg.Database.Elasticsearch.Index, log)
		}
	}

	// Outbound notifications over SES and SNS when enabled.
	var notifier workflow.Notifier
	if cfg.Notifications.Email.Enabled || cfg.Notifications.SMS.Enabled {
		sender, err := notify.NewSender(context.Background(), notify.Config{
			EmailEnabled:         cfg.Notifications.Email.Enabled,
			SMSEnabled:           cfg.Notifications.SMS.Enabled,
			FromEmail:            cfg.Notifications.Email.FromEmail,
			AWSRegion:            cfg.Notifications.AWS.Region,
			SMSPriorityThreshold: models.TicketPriority(cfg.Notifications.SMS.PriorityThreshold),
		}, users, log)
		if err != nil {
			zapLog.Fatal("Failed to initialize notification sender", zap.Error(err))
		}
		notifier = sender
	}

	validator, err := workflow.NewValidator(cfg.Engine.MaxWorkflowActions)
	if err != nil {
		zapLog.Fatal("Failed to compile workflow schema", zap.Error(err))
	}

	engine := workflow.NewEngine(workflows, notifier, log, workflow.Options{
		ContainsCaseSensitive: cfg.Engine.ContainsCaseSensitive,
	})

	svc := service.New(service.Deps{
		Tickets:       tickets,
		Workflows:     workflows,
		Users:         users,
		Notifications: notifications,
		Classifier:    classify.NewEngine(log),
		Cache:         classificationCache,
		Router:        route.NewRouter(log),
		Engine:        engine,
		Validator:     validator,
		Logger:        log,
	})

	seedUsers(users, log)
	seedWorkflows(svc, log)

	responder := chatbot.NewResponder(chats, log)
	server := api.NewServer(svc, responder, searcher, notifications, log)

	httpServer := &http.Server{
		Addr:         cfg.HTTP.Address,
		Handler:      server.Routes(),
		ReadTimeout:  config.GetDuration(cfg.HTTP.ReadTimeout),
		WriteTimeout: config.GetDuration(cfg.HTTP.WriteTimeout),
	}

	go func() {
		log.Info("HTTP server listening", map[string]interface{}{
			"address": cfg.HTTP.Address,
		})
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLog.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	sig := <-sigCh
	log.Info("Shutdown signal received", map[string]interface{}{
		"signal": sig.String(),
	})

	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.GetDuration(cfg.HTTP.ShutdownTimeout))
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	log.Info("Automation engine stopped", nil)
}

// seedUsers loads a starter directory so routing targets and
// notification recipients resolve out of the box.
func seedUsers(users store.UserStore, log logger.Logger) {
	ctx := context.Background()
	seeded := []*models.User{
		{ID: "agent-general-1", Name: "Dana Reyes", Email: "dana.reyes@example.com", Phone: "+15550100", Role: models.RoleAgent},
		{ID: "agent-network-1", Name: "Priya Nair", Email: "priya.nair@example.com", Phone: "+15550101", Role: models.RoleAgent},
		{ID: "agent-security-1", Name: "Marcus Webb", Email: "marcus.webb@example.com", Phone: "+15550102", Role: models.RoleAgent},
		{ID: "agent-hardware-1", Name: "Lena Fischer", Email: "lena.fischer@example.com", Role: models.RoleAgent},
		{ID: "agent-software-1", Name: "Tom Okafor", Email: "tom.okafor@example.com", Role: models.RoleAgent},
		{ID: "agent-access-1", Name: "Sofia Marin", Email: "sofia.marin@example.com", Role: models.RoleAgent},
		{ID: "admin-1", Name: "Alex Chen", Email: "alex.chen@example.com", Role: models.RoleAdmin},
	}

	for _, user := range seeded {
		if err := users.Create(ctx, user); err != nil {
			log.Warn("Failed to seed user", map[string]interface{}{
				"user_id": user.ID,
				"error":   err.Error(),
			})
		}
	}
}

// seedWorkflows installs the default automation rules on a fresh
// workflow store. Validation runs through the normal create path.
func seedWorkflows(svc *service.Service, log logger.Logger) {
	ctx := context.Background()
	seeded := []*models.Workflow{
		{
			Name:        "Auto-assign Critical Network Issues",
			Description: "Routes critical network problems straight to the network team and pages on-call",
			Enabled:     true,
			Trigger: models.WorkflowTrigger{
				ID:    "trigger-1",
				Type:  models.TriggerTicketCreated,
				Label: "Ticket Created",
			},
			Conditions: []models.WorkflowCondition{
				{ID: "cond-1", Field: "category", Operator: models.OperatorEquals, Value: "network"},
				{ID: "cond-2", Field: "priority", Operator: models.OperatorEquals, Value: "critical"},
			},
			Actions: []models.WorkflowAction{
				{ID: "action-1", Type: models.ActionAssignAgent, Label: "Assign to network team", Config: map[string]string{"agentId": "agent-network-1"}},
				{ID: "action-2", Type: models.ActionSendEmail, Label: "Page on-call", Config: map[string]string{"template": "critical_alert"}},
			},
		},
		{
			Name:        "Password Reset Auto-Reply",
			Description: "Points password reset requests at the self-service portal",
			Enabled:     true,
			Trigger: models.WorkflowTrigger{
				ID:    "trigger-1",
				Type:  models.TriggerTicketCreated,
				Label: "Ticket Created",
			},
			Conditions: []models.WorkflowCondition{
				{ID: "cond-1", Field: "title", Operator: models.OperatorContains, Value: "password"},
				{ID: "cond-2", Field: "category", Operator: models.OperatorEquals, Value: "access"},
			},
			Actions: []models.WorkflowAction{
				{ID: "action-1", Type: models.ActionAutoReply, Label: "Send self-service link", Config: map[string]string{"message": "You can reset your password yourself at https://reset.example.com. If the portal does not work for you, an agent will follow up."}},
				{ID: "action-2", Type: models.ActionAddTag, Label: "Tag for reporting", Config: map[string]string{"tag": "auto-resolved"}},
			},
		},
	}

	for _, wf := range seeded {
		created, err := svc.CreateWorkflow(ctx, wf)
		if err != nil {
			log.Warn("Failed to seed workflow", map[string]interface{}{
				"workflow": wf.Name,
				"error":    err.Error(),
			})
			continue
		}
		log.Info("Seeded workflow", map[string]interface{}{
			"workflow_id": created.ID,
			"name":        created.Name,
		})
	}
}
