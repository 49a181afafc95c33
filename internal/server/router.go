package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/sproutly/sproutly-backend/internal/handlers"
	"github.com/sproutly/sproutly-backend/internal/middleware"
)

type RouterConfig struct {
	AuthMiddleware   *middleware.AuthMiddleware
	ChildHandler     *handlers.ChildHandler
	LedgerHandler    *handlers.LedgerHandler
	GoalHandler      *handlers.GoalHandler
	EvolutionHandler *handlers.EvolutionHandler
	AllowOrigins     []string
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	// Cors
	allowOrigins := cfg.AllowOrigins
	if len(allowOrigins) == 0 {
		allowOrigins = []string{"http://localhost:3000", "http://localhost:5173"}
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     allowOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	// ===============
	// || Public    ||
	// ===============
	router.GET("/healthcheck", handlers.HealthCheck)

	// ===============
	// || Protected ||
	// ===============
	api := router.Group("/api/v1")
	api.Use(cfg.AuthMiddleware.RequireAuth())

	// Children
	api.GET("/children", cfg.ChildHandler.List)
	api.GET("/children/:id", cfg.ChildHandler.Get)

	// Ledger / balance
	api.GET("/children/:id/balance", cfg.LedgerHandler.Balance)
	api.GET("/children/:id/ledger", cfg.LedgerHandler.Entries)

	// Goal
	api.GET("/children/:id/goal", cfg.GoalHandler.Get)
	api.GET("/children/:id/goal/history", cfg.GoalHandler.History)

	// Evolution
	api.GET("/children/:id/evolution", cfg.EvolutionHandler.Overview)

	// Parent-only mutations
	parent := api.Group("/")
	parent.Use(cfg.AuthMiddleware.RequireParent())
	parent.POST("/children", cfg.ChildHandler.Create)
	parent.POST("/children/:id/ledger", cfg.LedgerHandler.Adjust)
	parent.POST("/approvals", cfg.LedgerHandler.Approve)
	parent.PUT("/children/:id/goal", cfg.GoalHandler.Update)

	return router
}
