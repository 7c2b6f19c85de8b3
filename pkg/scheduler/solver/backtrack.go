package solver

import (
	"context"
	"time"

	apperrors "github.com/paiban/kebiao/pkg/errors"
	"github.com/paiban/kebiao/pkg/scheduler/constraint"
)

// BacktrackSolver 单线程回溯求解器
//
// 每步选择剩余定义域最小的变量（编号小者优先），按升序尝试取值，
// 绑定后对互斥邻居做前向检查，任一定义域为空即回溯。
type BacktrackSolver struct{}

// NewBacktrackSolver 创建回溯求解器
func NewBacktrackSolver() *BacktrackSolver {
	return &BacktrackSolver{}
}

// Name 返回求解器名称
func (s *BacktrackSolver) Name() string {
	return "BacktrackSolver"
}

// Solve 搜索第一个可行解
func (s *BacktrackSolver) Solve(ctx context.Context, m *constraint.Model) (*Result, error) {
	start := time.Now()
	st := newState(m)

	found, err := st.search(contextStop(ctx))
	stats := Statistics{
		Nodes:      st.nodes,
		Backtracks: st.backtracks,
		Workers:    1,
	}
	if root := newState(m).selectVar(); root >= 0 {
		stats.RootBranches = len(m.Occurrences[root].Domain)
	}

	if err != nil {
		return nil, abortError(ctx, start)
	}
	if !found {
		return nil, apperrors.UnsatisfiableModel()
	}

	return &Result{
		Assignment: st.assignment(),
		Statistics: stats,
		Duration:   time.Since(start),
	}, nil
}
