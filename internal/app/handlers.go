package app

import (
	"github.com/gin-gonic/gin"

	"github.com/sproutly/sproutly-backend/internal/handlers"
	"github.com/sproutly/sproutly-backend/internal/logger"
	"github.com/sproutly/sproutly-backend/internal/middleware"
	"github.com/sproutly/sproutly-backend/internal/server"
)

type Handlers struct {
	Child     *handlers.ChildHandler
	Ledger    *handlers.LedgerHandler
	Goal      *handlers.GoalHandler
	Evolution *handlers.EvolutionHandler
}

type Middleware struct {
	Auth *middleware.AuthMiddleware
}

func wireHandlers(log *logger.Logger, serviceset Services) Handlers {
	log.Info("Wiring handlers...")
	childHandler := handlers.NewChildHandler(log, serviceset.Child)
	return Handlers{
		Child:     childHandler,
		Ledger:    handlers.NewLedgerHandler(log, serviceset.Ledger, childHandler),
		Goal:      handlers.NewGoalHandler(log, serviceset.Goal, childHandler),
		Evolution: handlers.NewEvolutionHandler(log, serviceset.Evolution, childHandler),
	}
}

func wireMiddleware(log *logger.Logger, cfg Config) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{
		Auth: middleware.NewAuthMiddleware(log, cfg.JWTSecretKey),
	}
}

func wireRouter(cfg Config, handlerset Handlers, middlewareset Middleware) *gin.Engine {
	return server.NewRouter(server.RouterConfig{
		AuthMiddleware:   middlewareset.Auth,
		ChildHandler:     handlerset.Child,
		LedgerHandler:    handlerset.Ledger,
		GoalHandler:      handlerset.Goal,
		EvolutionHandler: handlerset.Evolution,
		AllowOrigins:     cfg.AllowOrigins,
	})
}
