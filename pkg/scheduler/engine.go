// Package scheduler 组合排课流水线：时段表 -> 需求展开 -> 定义域 -> 约束模型 -> 搜索 -> 课表
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/paiban/kebiao/pkg/errors"
	"github.com/paiban/kebiao/pkg/logger"
	"github.com/paiban/kebiao/pkg/model"
	"github.com/paiban/kebiao/pkg/scheduler/assembler"
	"github.com/paiban/kebiao/pkg/scheduler/calendar"
	"github.com/paiban/kebiao/pkg/scheduler/constraint"
	"github.com/paiban/kebiao/pkg/scheduler/demand"
	"github.com/paiban/kebiao/pkg/scheduler/domain"
	"github.com/paiban/kebiao/pkg/scheduler/solver"
	"github.com/paiban/kebiao/pkg/validator"
)

// OutcomeSuccess 成功求解的结果标签
const OutcomeSuccess = "success"

// Options 引擎配置
type Options struct {
	Timeout          time.Duration // 输入未指定 max_solve_seconds 时使用
	Workers          int           // 并行搜索 worker 数，1 表示单线程回溯
	SymmetryBreaking bool
	Verify           bool // 求解后用冲突检测器复核课表
}

// DefaultOptions 返回默认配置
func DefaultOptions() Options {
	return Options{
		Timeout:          30 * time.Second,
		Workers:          4,
		SymmetryBreaking: true,
		Verify:           true,
	}
}

// Observer 求解结果观察者（指标采集）
type Observer interface {
	ObserveSolve(outcome string, duration time.Duration, stats model.Statistics)
}

// Engine 排课引擎，不在调用之间保存任何状态
type Engine struct {
	opts        Options
	constraints *constraint.Manager
	detector    *validator.ConflictDetector
	observer    Observer
}

// Option 引擎选项
type Option func(*Engine)

// WithObserver 设置观察者
func WithObserver(o Observer) Option {
	return func(e *Engine) { e.observer = o }
}

// WithConstraintManager 替换约束管理器
func WithConstraintManager(m *constraint.Manager) Option {
	return func(e *Engine) { e.constraints = m }
}

// NewEngine 创建排课引擎
func NewEngine(opts Options, options ...Option) *Engine {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultOptions().Timeout
	}
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	e := &Engine{
		opts:        opts,
		constraints: constraint.NewDefaultManager(),
		detector:    validator.NewConflictDetector(nil),
	}
	for _, o := range options {
		o(e)
	}
	return e
}

// Options 返回引擎配置
func (e *Engine) Options() Options {
	return e.opts
}

// Constraints 返回引擎使用的约束管理器
func (e *Engine) Constraints() *constraint.Manager {
	return e.constraints
}

func (e *Engine) solver() solver.Solver {
	if e.opts.Workers > 1 {
		return solver.NewParallelSolver(e.opts.Workers)
	}
	return solver.NewBacktrackSolver()
}

// Generate 生成课表；失败时不返回任何部分课表
func (e *Engine) Generate(ctx context.Context, in *model.Input) (*model.Result, error) {
	startTime := time.Now()
	solveID := uuid.New()
	log := logger.NewSchedulerLogger(ctx)
	stats := model.Statistics{}

	result, err := e.generate(ctx, in, solveID, log, &stats)
	duration := time.Since(startTime)

	outcome := OutcomeSuccess
	if err != nil {
		outcome = string(apperrors.GetCode(err))
		log.SolveFailed(solveID.String(), outcome, duration)
	} else {
		result.Duration = duration
		log.SolveComplete(solveID.String(), duration, stats.Nodes, stats.Backtracks)
	}
	if e.observer != nil {
		e.observer.ObserveSolve(outcome, duration, stats)
	}
	return result, err
}

func (e *Engine) generate(
	ctx context.Context,
	in *model.Input,
	solveID uuid.UUID,
	log *logger.SchedulerLogger,
	stats *model.Statistics,
) (*model.Result, error) {
	if in == nil {
		return nil, apperrors.ConfigError("输入为空")
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}

	cal, err := calendar.Build(in.WorkingDays)
	if err != nil {
		return nil, err
	}

	exp := demand.Expand(in, cal.Len())
	occs := exp.Occurrences
	stats.Occurrences = len(occs)
	stats.IdleOccurrences = exp.Idle
	stats.Slots = cal.Len()
	log.StartSolve(solveID.String(), len(occs), cal.Len(), len(cal.Days))

	if err := domain.Compute(cal, occs); err != nil {
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) && appErr.Code == apperrors.CodeInfeasibleDomain {
			log.InfeasibleDomain(solveID.String(),
				fmt.Sprint(appErr.Fields["subject"]), fmt.Sprint(appErr.Fields["year"]), fmt.Sprint(appErr.Fields["section"]))
		}
		return nil, err
	}

	m := e.constraints.Build(occs, constraint.BuildOptions{SymmetryBreaking: e.opts.SymmetryBreaking})
	stats.ConstraintPairs = m.Stats.Pairs
	stats.ForbiddenPairs = m.Stats.ForbiddenPairs
	log.ModelBuilt(solveID.String(), m.Stats.Pairs, int(m.Stats.ForbiddenPairs))

	timeout := e.opts.Timeout
	if in.MaxSolveSeconds > 0 {
		timeout = time.Duration(in.MaxSolveSeconds * float64(time.Second))
	}
	solveCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	res, err := e.solver().Solve(solveCtx, m)
	if err != nil {
		if apperrors.Is(err, apperrors.CodeTimeoutAbort) {
			return nil, apperrors.TimeoutAbort(timeout).WithCause(solveCtx.Err())
		}
		return nil, err
	}
	stats.Nodes = res.Statistics.Nodes
	stats.Backtracks = res.Statistics.Backtracks
	stats.RootBranches = res.Statistics.RootBranches
	stats.Workers = res.Statistics.Workers

	tt := assembler.Assemble(cal, exp.Sections, in.SectionIndex(), occs, res.Assignment)

	if e.opts.Verify {
		if conflicts := e.detector.DetectAll(tt, cal, in); len(conflicts) > 0 {
			return nil, apperrors.ScheduleConflict(conflicts[0].Message).
				WithField("conflicts", len(conflicts))
		}
	}

	return &model.Result{
		SolveID:    solveID,
		Days:       cal.DayLabels(),
		Timetable:  tt,
		Assignment: res.Assignment,
		Statistics: *stats,
	}, nil
}
