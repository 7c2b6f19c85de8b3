package solver

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/paiban/kebiao/pkg/errors"
	"github.com/paiban/kebiao/pkg/model"
	"github.com/paiban/kebiao/pkg/scheduler/constraint"
)

func occ(id int, section, teacher string, duration int, domain ...int) model.Occurrence {
	return model.Occurrence{
		ID: id, Subject: fmt.Sprintf("S%d", id), Year: "Year1", Section: section,
		Teacher: teacher, Duration: duration, Domain: domain,
	}
}

func rangeDomain(from, to int) []int {
	out := make([]int, 0, to-from)
	for v := from; v < to; v++ {
		out = append(out, v)
	}
	return out
}

// generated 构造一个可行实例：3 个班级各排满 8 个时段
//
// 第 k 节单课由教师 (sec+k)%4 讲授，两课时的连堂由班级专属教师讲授；
// 单课排在时段 k、连堂排在 6-7 即为一个解。同一班级同一教师的课互为对称变量。
func generated(symmetry bool) *constraint.Model {
	var occs []model.Occurrence
	teachers := []string{"Smith", "Lee", "Kim", "Wang"}
	for sec := 0; sec < 3; sec++ {
		section := string(rune('A' + sec))
		for k := 0; k < 6; k++ {
			teacher := teachers[(sec+k)%len(teachers)]
			o := occ(len(occs), section, teacher, 1, rangeDomain(0, 8)...)
			o.Subject = "C-" + teacher
			occs = append(occs, o)
		}
		occs = append(occs, occ(len(occs), section, "Lab-"+section, 2, 0, 2, 4, 6))
	}
	return constraint.Build(occs, constraint.Defaults(), constraint.BuildOptions{SymmetryBreaking: symmetry})
}

func assertValid(t *testing.T, m *constraint.Model, a model.Assignment) {
	t.Helper()
	require.Len(t, a, m.Size())
	for i, v := range a {
		assert.Contains(t, m.Occurrences[i].Domain, v, "变量 %d 的取值不在定义域内", i)
	}
	for _, p := range m.Pairs {
		assert.False(t, m.Conflicts(p.A, a[p.A], p.B, a[p.B]), "变量 %d 与 %d 冲突", p.A, p.B)
	}
	for i, n := range m.Next {
		if n >= 0 {
			assert.Less(t, a[i], a[n])
		}
	}
}

func TestBacktrackSolver_Solve(t *testing.T) {
	tests := []struct {
		name     string
		occs     []model.Occurrence
		expected model.Assignment
	}{
		{
			name:     "单个变量取最小值",
			occs:     []model.Occurrence{occ(0, "A", "Smith", 1, 0, 1, 2)},
			expected: model.Assignment{0},
		},
		{
			name: "同一教师错开",
			occs: []model.Occurrence{
				occ(0, "A", "Smith", 1, 0, 1, 2),
				occ(1, "B", "Smith", 1, 0, 1, 2),
			},
			expected: model.Assignment{0, 1},
		},
		{
			name: "最小定义域优先",
			occs: []model.Occurrence{
				occ(0, "A", "Smith", 1, 0, 1, 2),
				occ(1, "A", "Lee", 2, 0),
			},
			expected: model.Assignment{2, 0},
		},
		{
			name: "不同教师不同班级可以同时",
			occs: []model.Occurrence{
				occ(0, "A", "Smith", 1, 0, 1),
				occ(1, "B", "Lee", 1, 0, 1),
			},
			expected: model.Assignment{0, 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := constraint.Build(tt.occs, constraint.Defaults(), constraint.BuildOptions{})
			res, err := NewBacktrackSolver().Solve(context.Background(), m)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, res.Assignment)
			assertValid(t, m, res.Assignment)
		})
	}
}

func TestSolvers_Unsatisfiable(t *testing.T) {
	// 同一教师两节课只有一个共同时段
	occs := []model.Occurrence{
		occ(0, "A", "Smith", 1, 0),
		occ(1, "B", "Smith", 1, 0),
	}
	m := constraint.Build(occs, constraint.Defaults(), constraint.BuildOptions{})

	for _, s := range []Solver{NewBacktrackSolver(), NewParallelSolver(4)} {
		t.Run(s.Name(), func(t *testing.T) {
			_, err := s.Solve(context.Background(), m)
			require.Error(t, err)
			assert.True(t, apperrors.Is(err, apperrors.CodeUnsatisfiableModel))
		})
	}
}

func TestSolvers_Pigeonhole(t *testing.T) {
	// 5 节课挤 4 个时段，需要穷举才能证明无解
	var occs []model.Occurrence
	for i := 0; i < 5; i++ {
		occs = append(occs, occ(i, "A", "Smith", 1, rangeDomain(0, 4)...))
	}
	m := constraint.Build(occs, constraint.Defaults(), constraint.BuildOptions{})

	for _, s := range []Solver{NewBacktrackSolver(), NewParallelSolver(3)} {
		t.Run(s.Name(), func(t *testing.T) {
			_, err := s.Solve(context.Background(), m)
			assert.True(t, apperrors.Is(err, apperrors.CodeUnsatisfiableModel))
		})
	}
}

func TestSolvers_Deadline(t *testing.T) {
	m := generated(false)
	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()

	for _, s := range []Solver{NewBacktrackSolver(), NewParallelSolver(4)} {
		t.Run(s.Name(), func(t *testing.T) {
			_, err := s.Solve(ctx, m)
			require.Error(t, err)
			assert.True(t, apperrors.Is(err, apperrors.CodeTimeoutAbort))
		})
	}
}

func TestSolvers_Canceled(t *testing.T) {
	m := generated(false)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for _, s := range []Solver{NewBacktrackSolver(), NewParallelSolver(4)} {
		t.Run(s.Name(), func(t *testing.T) {
			_, err := s.Solve(ctx, m)
			assert.True(t, apperrors.Is(err, apperrors.CodeCanceled))
		})
	}
}

func TestParallelSolver_MatchesSequential(t *testing.T) {
	for _, symmetry := range []bool{false, true} {
		t.Run(fmt.Sprintf("symmetry=%t", symmetry), func(t *testing.T) {
			m := generated(symmetry)

			seq, err := NewBacktrackSolver().Solve(context.Background(), m)
			require.NoError(t, err)
			assertValid(t, m, seq.Assignment)

			for _, workers := range []int{1, 2, 8} {
				par, err := NewParallelSolver(workers).Solve(context.Background(), m)
				require.NoError(t, err)
				assert.Equal(t, seq.Assignment, par.Assignment, "workers=%d", workers)
				assert.LessOrEqual(t, par.Statistics.Workers, workers)
			}
		})
	}
}

func TestSolvers_Deterministic(t *testing.T) {
	m := generated(true)
	first, err := NewParallelSolver(4).Solve(context.Background(), m)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		again, err := NewParallelSolver(4).Solve(context.Background(), m)
		require.NoError(t, err)
		assert.Equal(t, first.Assignment, again.Assignment)
	}
}

func TestSolvers_EmptyModel(t *testing.T) {
	m := constraint.Build(nil, constraint.Defaults(), constraint.BuildOptions{})

	for _, s := range []Solver{NewBacktrackSolver(), NewParallelSolver(4)} {
		t.Run(s.Name(), func(t *testing.T) {
			res, err := s.Solve(context.Background(), m)
			require.NoError(t, err)
			assert.Empty(t, res.Assignment)
		})
	}
}

func TestState_UndoRestoresDomains(t *testing.T) {
	occs := []model.Occurrence{
		occ(0, "A", "Smith", 2, 0, 1, 2),
		occ(1, "A", "Lee", 1, 0, 1, 2, 3),
	}
	m := constraint.Build(occs, constraint.Defaults(), constraint.BuildOptions{})
	st := newState(m)

	mark := len(st.trail)
	require.True(t, st.assign(0, 1))
	assert.Equal(t, []int{0, 3}, st.candidates(1))

	st.undo(0, mark)
	assert.Equal(t, []int{0, 1, 2, 3}, st.candidates(1))
	assert.Equal(t, -1, st.assigned[0])
	assert.True(t, st.present(1, 2))
}
