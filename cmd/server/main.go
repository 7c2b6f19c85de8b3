// KeBiao 排课引擎服务
// 主程序入口

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/paiban/kebiao/internal/config"
	"github.com/paiban/kebiao/internal/database"
	"github.com/paiban/kebiao/internal/handler"
	"github.com/paiban/kebiao/internal/metrics"
	"github.com/paiban/kebiao/internal/middleware"
	"github.com/paiban/kebiao/internal/repository"
	"github.com/paiban/kebiao/pkg/logger"
	"github.com/paiban/kebiao/pkg/scheduler"
	"github.com/paiban/kebiao/pkg/scheduler/constraint"
)

// 构建信息（通过 ldflags 注入）
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// apiRateLimit 每秒允许的 API 请求数
const apiRateLimit = 100

func main() {
	// .env 不存在时直接使用进程环境变量
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "无法加载配置: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.Log)

	fmt.Printf("KeBiao 排课引擎 v%s\n", Version)
	fmt.Printf("Build: %s (%s)\n", BuildTime, GitCommit)
	fmt.Println()

	// ========================================
	// 依赖
	// ========================================

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
	}

	rules := constraint.NewDefaultManager()
	logger.Info().Interface("constraints", rules.Summary()).Msg("排课约束已注册")

	engineOpts := []scheduler.Option{scheduler.WithConstraintManager(rules)}
	if m != nil {
		engineOpts = append(engineOpts, scheduler.WithObserver(m))
	}
	engine := scheduler.NewEngine(cfg.Scheduler.EngineOptions(), engineOpts...)

	var (
		db    *database.DB
		plans repository.PlanRepositoryInterface
		ping  handler.Pinger
	)
	if cfg.Database.Enabled() {
		db, err = database.New(context.Background(), &cfg.Database)
		if err != nil {
			logger.Fatal().Err(err).Msg("数据库初始化失败")
		}
		defer db.Close()
		plans = repository.NewPlanRepository(db)
		ping = db
	} else {
		logger.Warn().Msg("未配置数据库，按方案排课的接口不可用")
	}

	// ========================================
	// 路由
	// ========================================

	routerCfg := handler.RouterConfig{
		Schedule:    handler.NewScheduleHandler(engine, plans, cfg.API.MaxBodyBytes),
		System:      handler.NewSystemHandler(handler.BuildInfo{Version: Version, BuildTime: BuildTime, GitCommit: GitCommit}, ping, rules),
		MetricsPath: cfg.Metrics.Path,
		RateLimiter: middleware.NewRateLimiter(apiRateLimit),
	}
	if m != nil {
		routerCfg.Metrics = m.Handler()
		routerCfg.Observer = m
	}

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      handler.NewRouter(routerCfg),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.API.Timeout,
		IdleTimeout:  120 * time.Second,
	}

	// 启动服务器（非阻塞）
	go func() {
		opts := engine.Options()
		logger.Info().
			Int("port", cfg.App.Port).
			Str("version", Version).
			Str("env", cfg.App.Env).
			Dur("solve_timeout", opts.Timeout).
			Int("workers", opts.Workers).
			Bool("database", cfg.Database.Enabled()).
			Msg("服务器启动")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("服务器启动失败")
		}
	}()

	// 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("正在关闭服务器...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.API.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("服务器关闭失败")
		return
	}

	logger.Info().Msg("服务器已关闭")
}
