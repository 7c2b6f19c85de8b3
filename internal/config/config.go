// Package config 提供配置管理
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/paiban/kebiao/pkg/logger"
	"github.com/paiban/kebiao/pkg/scheduler"
)

// Config 应用配置
type Config struct {
	App       AppConfig       `envPrefix:"APP_"`
	Database  DatabaseConfig  `envPrefix:"DB_"`
	API       APIConfig       `envPrefix:"API_"`
	Scheduler SchedulerConfig `envPrefix:"SCHEDULER_"`
	Metrics   MetricsConfig   `envPrefix:"METRICS_"`
	Log       logger.Config   `envPrefix:"LOG_"`
}

// AppConfig 应用基础配置
type AppConfig struct {
	Name    string `env:"NAME" envDefault:"kebiao"`
	Env     string `env:"ENV" envDefault:"development"`
	Port    int    `env:"PORT" envDefault:"7012"`
	Version string `env:"VERSION" envDefault:"dev"`
}

// DatabaseConfig 数据库配置
//
// Host 为空时不连接数据库，只提供内联输入的排课接口。
type DatabaseConfig struct {
	Host            string        `env:"HOST"`
	Port            int           `env:"PORT" envDefault:"5432"`
	Name            string        `env:"NAME" envDefault:"kebiao"`
	User            string        `env:"USER" envDefault:"kebiao"`
	Password        string        `env:"PASSWORD"`
	SSLMode         string        `env:"SSL_MODE" envDefault:"disable"`
	MaxOpenConns    int           `env:"MAX_OPEN_CONNS" envDefault:"25"`
	MaxIdleConns    int           `env:"MAX_IDLE_CONNS" envDefault:"5"`
	ConnMaxLifetime time.Duration `env:"CONN_MAX_LIFETIME" envDefault:"5m"`
}

// DSN 返回数据库连接字符串
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

// Enabled 是否配置了数据库
func (c *DatabaseConfig) Enabled() bool {
	return c.Host != ""
}

// APIConfig API配置
type APIConfig struct {
	Timeout         time.Duration `env:"TIMEOUT" envDefault:"60s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
	MaxBodyBytes    int64         `env:"MAX_BODY_BYTES" envDefault:"1048576"`
}

// SchedulerConfig 排课引擎配置
type SchedulerConfig struct {
	Timeout          time.Duration `env:"TIMEOUT" envDefault:"30s"` // 输入未指定 max_solve_seconds 时的求解时限
	Workers          int           `env:"WORKERS" envDefault:"4"`
	SymmetryBreaking bool          `env:"SYMMETRY_BREAKING" envDefault:"true"`
	Verify           bool          `env:"VERIFY" envDefault:"true"`
}

// EngineOptions 转换为引擎配置
func (c SchedulerConfig) EngineOptions() scheduler.Options {
	return scheduler.Options{
		Timeout:          c.Timeout,
		Workers:          c.Workers,
		SymmetryBreaking: c.SymmetryBreaking,
		Verify:           c.Verify,
	}
}

// MetricsConfig 监控配置
type MetricsConfig struct {
	Enabled bool   `env:"ENABLED" envDefault:"true"`
	Path    string `env:"PATH" envDefault:"/metrics"`
}

// Load 从环境变量加载配置
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		var aggErr env.AggregateError
		if errors.As(err, &aggErr) && len(aggErr.Errors) > 0 {
			// 只返回第一个错误使得日志更清晰
			return nil, fmt.Errorf("加载配置失败: %w", aggErr.Errors[0])
		}
		return nil, fmt.Errorf("加载配置失败: %w", err)
	}

	if cfg.Scheduler.Workers < 1 {
		return nil, fmt.Errorf("SCHEDULER_WORKERS 必须大于 0，当前为 %d", cfg.Scheduler.Workers)
	}
	if cfg.Scheduler.Timeout <= 0 {
		return nil, fmt.Errorf("SCHEDULER_TIMEOUT 必须为正数，当前为 %s", cfg.Scheduler.Timeout)
	}

	return cfg, nil
}

// IsDevelopment 检查是否为开发环境
func (c *Config) IsDevelopment() bool {
	return c.App.Env == "development"
}

// IsProduction 检查是否为生产环境
func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}

// IsTest 检查是否为测试环境
func (c *Config) IsTest() bool {
	return c.App.Env == "test"
}
