package bootstrap

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	httpapi "github.com/audit-ai/cro-backend/internal/api/http"
	"github.com/audit-ai/cro-backend/internal/api/http/middleware"
	audithttp "github.com/audit-ai/cro-backend/internal/audit/http"
	auditrepo "github.com/audit-ai/cro-backend/internal/audit/repository"
	auditsvc "github.com/audit-ai/cro-backend/internal/audit/service"
	"github.com/audit-ai/cro-backend/internal/engine"
	"github.com/audit-ai/cro-backend/internal/shop"
	strategyhttp "github.com/audit-ai/cro-backend/internal/strategy/http"
	strategyrepo "github.com/audit-ai/cro-backend/internal/strategy/repository"
	strategysvc "github.com/audit-ai/cro-backend/internal/strategy/service"
)

type RouterDeps struct {
	ServiceName    string
	Version        string
	EngineURL      string
	AllowedOrigins []string
	SessionTTL     time.Duration
	DB             *pgxpool.Pool // optional; nil disables audit history and prompts
	Redis          *redis.Client
}

func BuildRouter(dep RouterDeps) *gin.Engine {
	r := gin.Default()

	corsCfg := cors.DefaultConfig()
	if len(dep.AllowedOrigins) == 1 && dep.AllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = dep.AllowedOrigins
	}
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, shop.HeaderShopDomain, "X-Request-Id")
	r.Use(cors.New(corsCfg))

	healthHandler := httpapi.NewHealthHandler(dep.ServiceName, dep.Version, dep.DB, dep.Redis)
	healthHandler.RegisterRoutes(r)

	engineClient := engine.NewClient(dep.EngineURL)
	sessionRepo := auditrepo.NewSessionRepository(dep.Redis, dep.SessionTTL)

	var recordRepo auditsvc.RecordStore
	var promptRepo strategysvc.PromptStore
	if dep.DB != nil {
		recordRepo = auditrepo.NewRecordRepository(dep.DB)
		promptRepo = strategyrepo.NewPromptRepository(dep.DB)
	}

	api := r.Group("/api/v1")
	api.Use(middleware.RequestID())
	api.Use(shop.Middleware())

	auditHandler := audithttp.New(auditsvc.NewService(engineClient, sessionRepo, recordRepo))
	auditHandler.Register(api)

	strategyHandler := strategyhttp.New(strategysvc.NewService(engineClient, promptRepo))
	strategyHandler.Register(api)

	return r
}
