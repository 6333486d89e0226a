// Package http exposes the operational status API: a liveness probe and a
// small read-only status endpoint.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"warden/internal/automod/ratelimit"
	"warden/internal/discord"
	"warden/internal/shared/logger"
)

type Router struct {
	engine   *gin.Engine
	svc      *discord.Service
	limiters []*ratelimit.Limiter
	log      logger.Interface
}

func NewRouter(svc *discord.Service, limiters []*ratelimit.Limiter, log logger.Interface) *Router {
	return &Router{
		engine:   gin.New(),
		svc:      svc,
		limiters: limiters,
		log:      log.Named("http"),
	}
}

func (r *Router) SetupRoutes() {
	r.engine.Use(gin.Recovery())

	r.engine.GET("/healthz", r.health)
	r.engine.GET("/api/status", r.status)
}

func (r *Router) GetEngine() *gin.Engine {
	return r.engine
}

func (r *Router) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type limiterStatus struct {
	Rate       int `json:"rate"`
	PerSeconds int `json:"per_seconds"`
	Buckets    int `json:"buckets"`
}

func (r *Router) status(c *gin.Context) {
	limiters := make(map[string]limiterStatus, len(r.limiters))
	for _, l := range r.limiters {
		limiters[l.Name()] = limiterStatus{
			Rate:       l.Policy().Rate,
			PerSeconds: int(l.Policy().Per.Seconds()),
			Buckets:    l.Len(),
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"uptime_seconds": int(r.svc.Uptime().Seconds()),
		"guilds":         r.svc.GuildCount(),
		"limiters":       limiters,
	})
}
