package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/paiban/kebiao/internal/middleware"
)

// RouterConfig 路由依赖
type RouterConfig struct {
	Schedule    *ScheduleHandler
	System      *SystemHandler
	Metrics     http.Handler // 为 nil 时不暴露指标端点
	MetricsPath string
	Observer    middleware.RequestObserver
	RateLimiter *middleware.RateLimiter
}

// NewRouter 注册全部路由
//
// 中间件执行顺序：recovery -> requestID -> logging -> securityHeaders -> cors -> rateLimit(/api/v1) -> handler
func NewRouter(cfg RouterConfig) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recovery)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logging(cfg.Observer))
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.CORS)

	r.Get("/health", cfg.System.Health)
	r.Get("/version", cfg.System.Version)
	if cfg.Metrics != nil {
		path := cfg.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		r.Method(http.MethodGet, path, cfg.Metrics)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.RateLimit(cfg.RateLimiter))

		r.Get("/constraints/library", cfg.System.ConstraintLibrary)
		r.Route("/timetable", func(r chi.Router) {
			r.Post("/generate", cfg.Schedule.Generate)
			r.Post("/validate", cfg.Schedule.Validate)
			r.Post("/analyze", cfg.Schedule.Analyze)
			r.Post("/swap", cfg.Schedule.Swap)
			r.Post("/swap/recommend", cfg.Schedule.RecommendSwap)
		})
		r.Post("/plans/{planID}/generate", cfg.Schedule.GenerateFromPlan)
	})

	return r
}
