package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/sossh/Work-Alone/internal/backup"
	"github.com/sossh/Work-Alone/internal/command"
	"github.com/sossh/Work-Alone/internal/config"
	"github.com/sossh/Work-Alone/internal/handler"
	"github.com/sossh/Work-Alone/internal/middleware"
	"github.com/sossh/Work-Alone/internal/monitor"
	"github.com/sossh/Work-Alone/internal/push"
	"github.com/sossh/Work-Alone/internal/schedule"
	"github.com/sossh/Work-Alone/internal/store"
	ws "github.com/sossh/Work-Alone/internal/websocket"
)

type Server struct {
	db          *sql.DB
	hub         *ws.Hub
	scheduler   *schedule.Scheduler
	monitor     *monitor.Service
	backupMgr   *backup.Manager
	rateLimiter *middleware.RateLimiter
	smsH        *handler.SMSHandler
	userH       *handler.UserHandler
	contactH    *handler.ContactHandler
	pushH       *handler.PushHandler
	logger      *slog.Logger
}

func New(db *sql.DB, notifier monitor.Notifier, cfg *config.Config, logger *slog.Logger) *Server {
	hub := ws.NewHub(logger.With("component", "websocket"))
	scheduler := schedule.New(logger.With("component", "scheduler"))

	users := store.NewUserStore(db)
	sessions := store.NewSessionStore(db)
	contacts := store.NewContactStore(db)
	logs := store.NewMessageLogStore(db)
	pushSt := store.NewPushStore(db)

	opts := []monitor.Option{monitor.WithEvents(hub)}

	var pushSvc *push.Service
	var pushH *handler.PushHandler
	if cfg.VAPIDPublicKey != "" && cfg.VAPIDPrivateKey != "" {
		pushSvc = push.NewService(cfg.VAPIDPublicKey, cfg.VAPIDPrivateKey)
		alerter := push.NewAlerter(pushSvc, pushSt, logger)
		opts = append(opts, monitor.WithPusher(alerter))
		pushH = handler.NewPushHandler(pushSt, pushSvc, logger.With("component", "push_handler"))
	}

	svc := monitor.New(users, sessions, contacts, logs, notifier, scheduler,
		logger.With("component", "monitor"), opts...)

	limiter := middleware.NewRateLimiter()

	mapper := command.NewMapper(command.HandlerFunc(svc.HandleDefault))
	mapper.Register("info", command.HandlerFunc(svc.Info))
	mapper.Register("begin", command.HandlerFunc(svc.Begin))
	mapper.Register("done", command.HandlerFunc(svc.End))
	mapper.Register("end", command.HandlerFunc(svc.End))
	mapper.Register("safe", command.HandlerFunc(svc.MarkSafe))

	backupMgr := backup.NewManager(backup.Config{
		S3: backup.S3Config{
			Endpoint:  cfg.BackupEndpoint,
			Bucket:    cfg.BackupBucket,
			Region:    cfg.BackupRegion,
			AccessKey: cfg.BackupAccessKey,
			SecretKey: cfg.BackupSecretKey,
		},
		DBPath:     cfg.DBPath,
		Passphrase: cfg.BackupPassphrase,
		Interval:   cfg.BackupInterval,
	}, db, logger)

	return &Server{
		db:          db,
		hub:         hub,
		scheduler:   scheduler,
		monitor:     svc,
		backupMgr:   backupMgr,
		rateLimiter: limiter,
		smsH:        handler.NewSMSHandler(mapper, limiter, cfg.TwilioAuthToken, cfg.PublicURL, logger),
		userH:       handler.NewUserHandler(users, sessions, logs, hub, logger.With("component", "user_handler")),
		contactH:    handler.NewContactHandler(contacts, users, hub, logger.With("component", "contact_handler")),
		pushH:       pushH,
		logger:      logger,
	}
}

// Scheduler returns the timer service for lifecycle management.
func (s *Server) Scheduler() *schedule.Scheduler {
	return s.scheduler
}

// Monitor returns the monitoring core for startup re-arming.
func (s *Server) Monitor() *monitor.Service {
	return s.monitor
}

// BackupManager returns the snapshot manager for lifecycle management.
func (s *Server) BackupManager() *backup.Manager {
	return s.backupMgr
}

// RateLimiter returns the webhook rate limiter for periodic cleanup.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /sms", s.smsH.Receive)
	mux.HandleFunc("GET /health", s.healthHandler)

	mux.HandleFunc("GET /api/users", s.userH.List)
	mux.HandleFunc("POST /api/users", s.userH.Create)
	mux.HandleFunc("GET /api/users/{id}", s.userH.Get)
	mux.HandleFunc("PATCH /api/users/{id}", s.userH.Update)
	mux.HandleFunc("DELETE /api/users/{id}", s.userH.Delete)
	mux.HandleFunc("GET /api/users/{id}/sessions/recent", s.userH.RecentSession)
	mux.HandleFunc("GET /api/users/{id}/messages", s.userH.Messages)

	mux.HandleFunc("GET /api/users/{id}/contacts", s.contactH.List)
	mux.HandleFunc("POST /api/users/{id}/contacts", s.contactH.Create)
	mux.HandleFunc("PATCH /api/users/{id}/contacts/{contact_id}", s.contactH.Update)
	mux.HandleFunc("DELETE /api/users/{id}/contacts/{contact_id}", s.contactH.Delete)

	mux.HandleFunc("GET /ws", ws.HandleWebSocket(s.hub, s.logger.With("component", "websocket")))

	if s.pushH != nil {
		mux.HandleFunc("GET /api/push/vapid-key", s.pushH.GetVAPIDKey)
		mux.HandleFunc("POST /api/push/subscribe", s.pushH.Subscribe)
		mux.HandleFunc("POST /api/push/unsubscribe", s.pushH.Unsubscribe)
	}

	return middleware.RequestLogger(s.logger.With("component", "http"))(mux)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
