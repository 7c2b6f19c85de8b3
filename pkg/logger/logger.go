// Package logger 提供统一的日志框架
package logger

import (
	"context"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

var (
	once        sync.Once
	initialized atomic.Bool
	logger      zerolog.Logger
)

// Level 日志级别
type Level = zerolog.Level

const (
	DebugLevel = zerolog.DebugLevel
	InfoLevel  = zerolog.InfoLevel
	WarnLevel  = zerolog.WarnLevel
	ErrorLevel = zerolog.ErrorLevel
	FatalLevel = zerolog.FatalLevel
)

type ctxKey string

// RequestIDKey 请求ID在 context 中的键
const RequestIDKey ctxKey = "request_id"

// Config 日志配置
type Config struct {
	Level      string `env:"LEVEL" envDefault:"info" json:"level"`
	Format     string `env:"FORMAT" envDefault:"console" json:"format"` // json/console
	Output     string `env:"OUTPUT" envDefault:"stdout" json:"output"`  // stdout/stderr/file
	FilePath   string `env:"FILE_PATH" json:"file_path,omitempty"`
	TimeFormat string `env:"TIME_FORMAT" envDefault:"2006-01-02T15:04:05Z07:00" json:"time_format,omitempty"`
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{
		Level:      "info",
		Format:     "console",
		Output:     "stdout",
		TimeFormat: time.RFC3339,
	}
}

// Init 初始化日志器
func Init(cfg Config) {
	once.Do(func() {
		level := parseLevel(cfg.Level)
		zerolog.SetGlobalLevel(level)

		var output io.Writer
		switch cfg.Output {
		case "stderr":
			output = os.Stderr
		case "file":
			output = os.Stdout
			if cfg.FilePath != "" {
				if f, err := os.OpenFile(cfg.FilePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644); err == nil {
					output = f
				}
			}
		case "discard":
			output = io.Discard
		default:
			output = os.Stdout
		}

		if cfg.Format == "console" {
			output = zerolog.ConsoleWriter{
				Out:        output,
				TimeFormat: cfg.TimeFormat,
			}
		}

		logger = zerolog.New(output).With().Timestamp().Logger()
		initialized.Store(true)
	})
}

// parseLevel 解析日志级别
func parseLevel(level string) zerolog.Level {
	switch level {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "fatal":
		return zerolog.FatalLevel
	default:
		return zerolog.InfoLevel
	}
}

// Get 获取日志器
func Get() *zerolog.Logger {
	if !initialized.Load() {
		Init(DefaultConfig())
	}
	return &logger
}

// ContextWithRequestID 将请求ID写入 context
func ContextWithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

// RequestID 从 context 读取请求ID
func RequestID(ctx context.Context) string {
	reqID, _ := ctx.Value(RequestIDKey).(string)
	return reqID
}

// WithContext 从上下文创建日志器
func WithContext(ctx context.Context) *zerolog.Logger {
	l := Get().With().Logger()

	if reqID := RequestID(ctx); reqID != "" {
		l = l.With().Str("request_id", reqID).Logger()
	}

	return &l
}

// Debug 记录调试日志
func Debug() *zerolog.Event {
	return Get().Debug()
}

// Info 记录信息日志
func Info() *zerolog.Event {
	return Get().Info()
}

// Warn 记录警告日志
func Warn() *zerolog.Event {
	return Get().Warn()
}

// Error 记录错误日志
func Error() *zerolog.Event {
	return Get().Error()
}

// Fatal 记录致命错误日志
func Fatal() *zerolog.Event {
	return Get().Fatal()
}

// WithError 添加错误信息
func WithError(err error) *zerolog.Event {
	return Get().Error().Err(err)
}

// WithField 添加字段
func WithField(key string, value interface{}) *zerolog.Logger {
	l := Get().With().Interface(key, value).Logger()
	return &l
}

// SchedulerLogger 排课引擎专用日志器
type SchedulerLogger struct {
	base *zerolog.Logger
}

// NewSchedulerLogger 创建排课引擎日志器
func NewSchedulerLogger(ctx context.Context) *SchedulerLogger {
	l := WithContext(ctx).With().Str("component", "scheduler").Logger()
	return &SchedulerLogger{base: &l}
}

// StartSolve 记录求解开始
func (l *SchedulerLogger) StartSolve(solveID string, occurrences, slots, days int) {
	l.base.Info().
		Str("solve_id", solveID).
		Int("occurrences", occurrences).
		Int("slots", slots).
		Int("days", days).
		Msg("开始生成课表")
}

// ModelBuilt 记录约束模型构建完成
func (l *SchedulerLogger) ModelBuilt(solveID string, constraints, forbiddenPairs int) {
	l.base.Debug().
		Str("solve_id", solveID).
		Int("constraints", constraints).
		Int("forbidden_pairs", forbiddenPairs).
		Msg("约束模型构建完成")
}

// InfeasibleDomain 记录空定义域
func (l *SchedulerLogger) InfeasibleDomain(solveID, subject, year, section string) {
	l.base.Warn().
		Str("solve_id", solveID).
		Str("subject", subject).
		Str("year", year).
		Str("section", section).
		Msg("课程没有合法的开始时段")
}

// SolveComplete 记录求解完成
func (l *SchedulerLogger) SolveComplete(solveID string, duration time.Duration, nodes, backtracks int64) {
	l.base.Info().
		Str("solve_id", solveID).
		Dur("duration", duration).
		Int64("nodes", nodes).
		Int64("backtracks", backtracks).
		Msg("课表生成完成")
}

// SolveFailed 记录求解失败
func (l *SchedulerLogger) SolveFailed(solveID, code string, duration time.Duration) {
	l.base.Warn().
		Str("solve_id", solveID).
		Str("code", code).
		Dur("duration", duration).
		Msg("课表生成失败")
}
