package solver

import (
	"context"
	"math"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	apperrors "github.com/paiban/kebiao/pkg/errors"
	"github.com/paiban/kebiao/pkg/model"
	"github.com/paiban/kebiao/pkg/scheduler/constraint"
)

// ParallelSolver 并行回溯求解器
//
// 根节点变量的每个候选取值是一个独立任务，worker 按取值升序领取任务，
// 各自持有完整的部分赋值状态，只共享只读的约束模型和一个原子变量 best。
// best 记录已找到解的最小分支编号，编号更大的分支在下一个节点放弃搜索，
// 因此返回的解与单线程回溯找到的解相同。
type ParallelSolver struct {
	workers int
}

// NewParallelSolver 创建并行求解器
func NewParallelSolver(workers int) *ParallelSolver {
	if workers <= 0 {
		workers = 4
	}
	return &ParallelSolver{workers: workers}
}

// Name 返回求解器名称
func (s *ParallelSolver) Name() string {
	return "ParallelSolver"
}

type branchResult struct {
	assignment model.Assignment
	nodes      int64
	backtracks int64
	exhausted  bool // 完整搜索且无解
}

// Solve 并行搜索第一个可行解
func (s *ParallelSolver) Solve(ctx context.Context, m *constraint.Model) (*Result, error) {
	start := time.Now()

	root := newState(m).selectVar()
	if root < 0 {
		return &Result{
			Assignment: model.Assignment{},
			Statistics: Statistics{Nodes: 1, Workers: 1},
			Duration:   time.Since(start),
		}, nil
	}

	branches := m.Occurrences[root].Domain
	workers := min(s.workers, len(branches))
	if workers < 1 {
		workers = 1
	}

	var best atomic.Int64
	best.Store(math.MaxInt64)
	results := make([]branchResult, len(branches))
	jobs := make(chan int)

	var g errgroup.Group
	g.Go(func() error {
		defer close(jobs)
		for b := range branches {
			select {
			case jobs <- b:
			case <-ctx.Done():
				return nil
			}
		}
		return nil
	})
	for w := 0; w < workers; w++ {
		g.Go(func() error {
			for b := range jobs {
				if int64(b) > best.Load() {
					continue
				}
				results[b] = runBranch(ctx, m, root, b, branches[b], &best)
			}
			return nil
		})
	}
	_ = g.Wait()

	stats := Statistics{
		Nodes:        1,
		RootBranches: len(branches),
		Workers:      workers,
	}
	exhausted := 0
	for _, r := range results {
		stats.Nodes += r.nodes
		stats.Backtracks += r.backtracks
		if r.exhausted {
			exhausted++
		}
	}

	if b := best.Load(); b != math.MaxInt64 {
		return &Result{
			Assignment: results[b].assignment,
			Statistics: stats,
			Duration:   time.Since(start),
		}, nil
	}
	if exhausted == len(branches) {
		return nil, apperrors.UnsatisfiableModel()
	}
	return nil, abortError(ctx, start)
}

// runBranch 在独立状态上固定根变量取值后搜索
func runBranch(ctx context.Context, m *constraint.Model, root, branch, value int, best *atomic.Int64) branchResult {
	st := newState(m)
	ctxStop := contextStop(ctx)
	stop := func() bool {
		return best.Load() < int64(branch) || ctxStop()
	}

	var res branchResult
	if !st.assign(root, value) {
		res.backtracks = 1
		res.exhausted = true
		return res
	}

	found, err := st.search(stop)
	res.nodes = st.nodes
	res.backtracks = st.backtracks
	switch {
	case err != nil:
		return res
	case !found:
		res.backtracks++
		res.exhausted = true
		return res
	}

	res.assignment = st.assignment()
	for {
		cur := best.Load()
		if int64(branch) >= cur || best.CompareAndSwap(cur, int64(branch)) {
			break
		}
	}
	return res
}
