package app

import (
	"context"
	"fmt"
	"os"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	redisclient "github.com/sproutly/sproutly-backend/internal/clients/redis"
	"github.com/sproutly/sproutly-backend/internal/db"
	"github.com/sproutly/sproutly-backend/internal/logger"
	"github.com/sproutly/sproutly-backend/internal/services"
)

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Router   *gin.Engine
	Cfg      Config
	Repos    Repos
	Services Services

	approvalFeed redisclient.ApprovalFeed
	cancel       context.CancelFunc
}

func New() (*App, error) {
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	log.Info("Loading environment variables...")
	cfg := LoadConfig(log)

	pg, err := db.NewPostgresService(log)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init postgres: %w", err)
	}
	if err := pg.AutoMigrateAll(); err != nil {
		log.Sync()
		return nil, fmt.Errorf("postgres automigrate: %w", err)
	}
	theDB := pg.DB()

	// Redis is optional: without it the balance cache is off and approvals
	// only arrive over HTTP.
	var cache services.BalanceCache
	var feed redisclient.ApprovalFeed
	if rdb, err := redisclient.NewClient(log); err != nil {
		log.Warn("Running without redis", "error", err)
	} else {
		if cache, err = redisclient.NewBalanceCache(log, rdb, cfg.BalanceCacheTTL); err != nil {
			log.Warn("Could not init balance cache", "error", err)
		}
		if feed, err = redisclient.NewApprovalFeed(log, rdb); err != nil {
			log.Warn("Could not init approval feed", "error", err)
		}
	}

	reposet := wireRepos(theDB, log)
	serviceset := wireServices(theDB, log, cfg, reposet, cache)
	handlerset := wireHandlers(log, serviceset)
	middlewareset := wireMiddleware(log, cfg)
	router := wireRouter(cfg, handlerset, middlewareset)

	return &App{
		Log:          log,
		DB:           theDB,
		Router:       router,
		Cfg:          cfg,
		Repos:        reposet,
		Services:     serviceset,
		approvalFeed: feed,
	}, nil
}

// Start begins consuming the external approval change feed, if configured.
func (a *App) Start() {
	if a == nil || a.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel

	if a.approvalFeed == nil {
		return
	}
	err := a.approvalFeed.StartForwarder(ctx, func(ev redisclient.ApprovalEvent) {
		_, applied, err := a.Services.Ledger.RecordApproval(ctx, ev.ChildID, ev.Points, ev.SubmissionID, nil)
		if err != nil {
			// The feed redelivers; the submission dedup makes the retry safe.
			a.Log.Error("Approval event failed", "event_id", ev.EventID, "child_id", ev.ChildID, "error", err)
			return
		}
		if !applied {
			a.Log.Debug("Approval event replayed, no credit applied", "event_id", ev.EventID)
		}
	})
	if err != nil {
		a.Log.Warn("Approval feed not started", "error", err)
	}
}

func (a *App) Run(addr string) error {
	if a == nil || a.Router == nil {
		return fmt.Errorf("app not initialized")
	}
	return a.Router.Run(addr)
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	if a.approvalFeed != nil {
		if err := a.approvalFeed.Close(); err != nil && a.Log != nil {
			a.Log.Warn("Approval feed close failed", "error", err)
		}
		a.approvalFeed = nil
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
