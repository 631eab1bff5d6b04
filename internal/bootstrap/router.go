package bootstrap

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	httpapi "github.com/atelier-ops/projectflow/internal/api/http"
	"github.com/atelier-ops/projectflow/internal/api/http/middleware"
	"github.com/atelier-ops/projectflow/internal/webhook"
)

type RouterDeps struct {
	ServiceName    string
	Version        string
	WebhookSecret  string
	Store          *redis.Client
	WebhookHandler *webhook.Handler
}

func BuildRouter(dep RouterDeps) *gin.Engine {
	r := gin.Default()
	r.Use(cors.Default())

	healthHandler := httpapi.NewHealthHandler(dep.ServiceName, dep.Version, dep.Store)
	healthHandler.RegisterRoutes(r)

	api := r.Group("/api/v1")

	hooks := api.Group("/webhooks")
	hooks.Use(middleware.RequestIDMiddleware())
	hooks.Use(middleware.WebhookSecretMiddleware(dep.WebhookSecret))
	dep.WebhookHandler.Register(hooks)

	return r
}
