// Package solver 提供排课求解器
package solver

import (
	"context"
	stderrors "errors"
	"time"

	apperrors "github.com/paiban/kebiao/pkg/errors"
	"github.com/paiban/kebiao/pkg/model"
	"github.com/paiban/kebiao/pkg/scheduler/constraint"
)

// Solver 求解器接口
type Solver interface {
	// Solve 在约束模型上搜索一个完整可行解
	Solve(ctx context.Context, m *constraint.Model) (*Result, error)

	// Name 返回求解器名称
	Name() string
}

// Result 求解结果
type Result struct {
	Assignment model.Assignment `json:"assignment"`
	Statistics Statistics       `json:"statistics"`
	Duration   time.Duration    `json:"duration"`
}

// Statistics 搜索统计
type Statistics struct {
	Nodes        int64 `json:"nodes"`
	Backtracks   int64 `json:"backtracks"`
	RootBranches int   `json:"root_branches"`
	Workers      int   `json:"workers"`
}

var errAborted = stderrors.New("search aborted")

// abortError 根据 context 状态区分超时与取消
func abortError(ctx context.Context, start time.Time) error {
	err := ctx.Err()
	if err == nil {
		err = context.Canceled
	}
	return apperrors.FromContext(err, time.Since(start))
}

// contextStop 每个节点检查一次 context 是否结束
func contextStop(ctx context.Context) func() bool {
	done := ctx.Done()
	return func() bool {
		select {
		case <-done:
			return true
		default:
			return false
		}
	}
}
