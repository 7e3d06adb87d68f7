package api

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	authDelivery "kanban-backend/internal/auth/delivery"
	authRepo "kanban-backend/internal/auth/repository"
	authUsecase "kanban-backend/internal/auth/usecase"
	automationDelivery "kanban-backend/internal/automation/delivery"
	automationRepo "kanban-backend/internal/automation/repository"
	automationUsecase "kanban-backend/internal/automation/usecase"
	boardDelivery "kanban-backend/internal/board/delivery"
	boardRepo "kanban-backend/internal/board/repository"
	"kanban-backend/internal/board/templates"
	boardUsecase "kanban-backend/internal/board/usecase"
	customFieldDelivery "kanban-backend/internal/customfield/delivery"
	customFieldRepo "kanban-backend/internal/customfield/repository"
	customFieldUsecase "kanban-backend/internal/customfield/usecase"
	dashboardDelivery "kanban-backend/internal/dashboard/delivery"
	dashboardUsecase "kanban-backend/internal/dashboard/usecase"
	"kanban-backend/internal/events"
	"kanban-backend/internal/notification"
	notificationDelivery "kanban-backend/internal/notification/delivery"
	notificationRepo "kanban-backend/internal/notification/repository"
	preferenceUsecase "kanban-backend/internal/preference/usecase"
	taskDelivery "kanban-backend/internal/task/delivery"
	taskRepo "kanban-backend/internal/task/repository"
	taskScheduler "kanban-backend/internal/task/scheduler"
	taskUsecase "kanban-backend/internal/task/usecase"
	teamDelivery "kanban-backend/internal/team/delivery"
	teamRepo "kanban-backend/internal/team/repository"
	teamUsecase "kanban-backend/internal/team/usecase"
	"kanban-backend/pkg/config"
	"kanban-backend/pkg/fcm"
	"kanban-backend/pkg/kvstore"
	"kanban-backend/pkg/mailer"
	"kanban-backend/pkg/pubsub"
	"kanban-backend/pkg/realtime"
	cronsched "kanban-backend/pkg/scheduler"
	"kanban-backend/pkg/telegram"

	"github.com/gin-gonic/gin"
	"github.com/redis/rueidis"
	"github.com/rs/cors"
	"gorm.io/gorm"
)

// reminderDedupeTTL outlives the overdue window so a task is never reminded
// twice for the same bucket.
const reminderDedupeTTL = 48 * time.Hour

const purgeInterval = time.Hour

type Handler struct {
	config *config.Config

	authUsecase authUsecase.AuthUsecase
	hub         *realtime.Hub
	publisher   *pubsub.Publisher
	redis       rueidis.Client

	reminders *taskScheduler.TaskReminderScheduler
	digest    *notification.Digest
	purger    kvstore.Purger

	authHandler         *authDelivery.AuthHandler
	boardHandler        *boardDelivery.BoardHandler
	taskHandler         *taskDelivery.TaskHandler
	teamHandler         *teamDelivery.TeamHandler
	automationHandler   *automationDelivery.AutomationHandler
	customFieldHandler  *customFieldDelivery.CustomFieldHandler
	notificationHandler *notificationDelivery.NotificationHandler
	dashboardHandler    *dashboardDelivery.DashboardHandler
	preferenceHandler   *PreferenceHandler
	realtimeHandler     *RealtimeHandler
}

// NewHandler wires repositories, usecases and the optional integrations. An
// integration that is not configured or fails to start is logged and left out.
func NewHandler(ctx context.Context, cfg *config.Config, db *gorm.DB) (*Handler, error) {
	h := &Handler{config: cfg}

	// Repositories
	userRepository := authRepo.NewUserRepository(db)
	deviceTokenRepository := authRepo.NewDeviceTokenRepository(db)
	profileRepository := authRepo.NewProfileRepository(db)
	boardRepository := boardRepo.NewBoardRepository(db)
	columnRepository := boardRepo.NewColumnRepository(db)
	labelRepository := boardRepo.NewLabelRepository(db)
	taskRepository := taskRepo.NewGormTaskRepository(db)
	projectRepository := teamRepo.NewProjectRepository(db)
	memberRepository := teamRepo.NewMemberRepository(db)
	invitationRepository := teamRepo.NewInvitationRepository(db)
	ruleRepository := automationRepo.NewRuleRepository(db)
	fieldRepository := customFieldRepo.NewCustomFieldRepository(db)
	notificationRepository := notificationRepo.NewNotificationRepository(db)

	// Preferences and reminder dedupe keys live in redis when configured,
	// otherwise in the user_settings table so they survive restarts.
	var store kvstore.Store = kvstore.NewGormStore(db)
	if cfg.RedisAddr != "" {
		client, err := kvstore.NewRedisClient(cfg.RedisAddr)
		if err != nil {
			log.Printf("[WARN] Failed to connect to redis at %s, using the database store: %v", cfg.RedisAddr, err)
		} else {
			h.redis = client
			store = kvstore.NewRedisStore(client, "kanban:")
		}
	}
	// Redis expires keys itself; the other stores are purged by a job.
	if p, ok := store.(kvstore.Purger); ok {
		h.purger = p
	}

	// Realtime hub and event bus
	h.hub = realtime.NewHub(originChecker(cfg.CORSOrigins))
	bus := events.NewBus()

	// Mail
	mail := mailer.New(mailer.Config{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.SMTPFrom,
	})
	if !mail.Enabled() {
		log.Printf("[WARN] SMTP_HOST not configured, invitation and digest e-mails disabled")
	}

	// Use cases
	sessions := authUsecase.NewSessionBroker()
	sessions.Subscribe(authUsecase.ProfileProvisioner(profileRepository))
	h.authUsecase = authUsecase.NewAuthUsecase(userRepository, deviceTokenRepository, profileRepository, sessions, cfg)

	teamUc := teamUsecase.NewTeamUsecase(projectRepository, memberRepository, invitationRepository, userRepository, mail, cfg.AppURL)

	tpls, err := templates.Load()
	if err != nil {
		return nil, fmt.Errorf("load board templates: %w", err)
	}
	boardUc := boardUsecase.NewBoardUsecase(boardRepository, columnRepository, labelRepository, teamUc, bus, tpls)
	fieldUc := customFieldUsecase.NewCustomFieldUsecase(fieldRepository, boardUc)
	taskUc := taskUsecase.NewTaskUsecase(taskRepository, boardUc, columnRepository, labelRepository, fieldRepository, teamUc, bus)
	automationUc := automationUsecase.NewAutomationUsecase(ruleRepository, boardUc)
	preferenceUc := preferenceUsecase.NewPreferenceUsecase(store)
	dashboardUc := dashboardUsecase.NewDashboardUsecase(boardUc, taskRepository, columnRepository)

	// Notification channels
	channels := notification.Channels{Live: h.hub}
	if cfg.FirebaseCredentials != "" {
		fcmClient, err := fcm.NewClient(ctx, cfg.FirebaseCredentials)
		if err != nil {
			log.Printf("[WARN] Failed to initialize FCM client (push notifications disabled): %v", err)
		} else {
			channels.Push = fcmClient
		}
	} else {
		log.Printf("[WARN] FIREBASE_CREDENTIALS not configured, push notifications disabled")
	}
	if cfg.TelegramToken != "" {
		sender, err := telegram.NewSender(cfg.TelegramToken)
		if err != nil {
			log.Printf("[WARN] Failed to initialize Telegram sender: %v", err)
		} else {
			channels.Chat = sender
		}
	}
	notificationService := notification.NewService(notificationRepository, deviceTokenRepository, profileRepository, preferenceUc, channels)

	// Background jobs
	h.reminders = taskScheduler.NewTaskReminderScheduler(taskRepository, notificationService, taskScheduler.NewDeduper(store, reminderDedupeTTL), cfg.AppURL)
	h.digest = notification.NewDigest(taskRepository, userRepository, preferenceUc, notificationService, mail, cfg.AppURL)

	// Event subscribers, in delivery order
	actions, err := taskUsecase.NewAutomationActions(taskUc)
	if err != nil {
		return nil, err
	}
	engine := automationUsecase.NewEngine(ruleRepository, actions, notificationService)
	bus.Subscribe(engine.Handle)
	bus.Subscribe(events.RealtimeHandler(h.hub))
	if cfg.GoogleProjectID != "" {
		publisher, err := pubsub.NewPublisher(ctx, cfg.GoogleProjectID, topicName(cfg.PubSubTopic), cfg.GoogleCredentials)
		if err != nil {
			log.Printf("[WARN] Failed to initialize Pub/Sub publisher (event forwarding disabled): %v", err)
		} else {
			h.publisher = publisher
			bus.Subscribe(events.ForwardHandler(publisher))
		}
	} else {
		log.Printf("[WARN] GOOGLE_PROJECT_ID not configured, event forwarding disabled")
	}

	// HTTP handlers
	h.authHandler = authDelivery.NewAuthHandler(h.authUsecase, cfg)
	h.boardHandler = boardDelivery.NewBoardHandler(boardUc)
	h.taskHandler = taskDelivery.NewTaskHandler(taskUc)
	h.teamHandler = teamDelivery.NewTeamHandler(teamUc)
	h.automationHandler = automationDelivery.NewAutomationHandler(automationUc)
	h.customFieldHandler = customFieldDelivery.NewCustomFieldHandler(fieldUc)
	h.notificationHandler = notificationDelivery.NewNotificationHandler(notificationService)
	h.dashboardHandler = dashboardDelivery.NewDashboardHandler(dashboardUc)
	h.preferenceHandler = NewPreferenceHandler(preferenceUc)
	h.realtimeHandler = NewRealtimeHandler(h.hub, boardUc)

	return h, nil
}

// topicName accepts either a short topic name or a full resource name.
func topicName(topic string) string {
	if parts := strings.Split(topic, "/"); len(parts) > 1 {
		return parts[len(parts)-1]
	}
	return topic
}

func originChecker(origins []string) func(r *http.Request) bool {
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
		allowed[o] = true
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || allowed[origin]
	}
}

// Engine builds the gin router wrapped in CORS handling.
func (h *Handler) Engine() http.Handler {
	r := gin.Default()
	SetupRoutes(r, h)

	return cors.New(cors.Options{
		AllowedOrigins:   h.config.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "Accept", "Origin", "Cache-Control", "X-Requested-With"},
		AllowCredentials: true,
	}).Handler(r)
}

// RunReminders performs a single reminder scan.
func (h *Handler) RunReminders(ctx context.Context) int {
	return h.reminders.RunOnce(ctx)
}

// Start serves HTTP and runs the hub and scheduled jobs until ctx is done,
// then shuts everything down within the configured timeout.
func (h *Handler) Start(ctx context.Context) error {
	hubCtx, stopHub := context.WithCancel(context.Background())
	defer stopHub()
	go h.hub.Run(hubCtx)

	jobs := cronsched.New(time.Local)
	if err := h.reminders.Register(jobs, h.config.ReminderInterval); err != nil {
		return err
	}
	if _, err := jobs.Daily(h.config.DigestTime, func() {
		sent, err := h.digest.Run(context.Background())
		if err != nil {
			log.Printf("[Digest] Run failed: %v", err)
			return
		}
		log.Printf("[Digest] Sent %d digest e-mails", sent)
	}); err != nil {
		return fmt.Errorf("register digest job: %w", err)
	}
	if h.purger != nil {
		if _, err := jobs.Every(purgeInterval, func() {
			removed, err := h.purger.Purge(context.Background())
			if err != nil {
				log.Printf("[Store] Purge failed: %v", err)
				return
			}
			if removed > 0 {
				log.Printf("[Store] Purged %d expired entries", removed)
			}
		}); err != nil {
			return fmt.Errorf("register purge job: %w", err)
		}
	}
	jobs.Start()
	log.Printf("[Scheduler] Reminders every %s, digest daily at %s", h.config.ReminderInterval, h.config.DigestTime)

	srv := &http.Server{
		Addr:              ":" + h.config.Port,
		Handler:           h.Engine(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Server starting on port %s", h.config.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	var serveErr error
	select {
	case <-ctx.Done():
	case serveErr = <-errCh:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), h.config.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("[Server] Shutdown error: %v", err)
	}
	jobs.Stop()
	stopHub()
	h.Close()

	log.Println("HTTP server and background jobs shut down gracefully")
	return serveErr
}

// Close releases the external clients.
func (h *Handler) Close() {
	if h.publisher != nil {
		if err := h.publisher.Close(); err != nil {
			log.Printf("[PubSub] Close error: %v", err)
		}
		h.publisher = nil
	}
	if h.redis != nil {
		h.redis.Close()
		h.redis = nil
	}
}
